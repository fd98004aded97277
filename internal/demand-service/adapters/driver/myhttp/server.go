package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"hatbazar/internal/config"
	"hatbazar/internal/demand-service/adapters/driven/bm"
	"hatbazar/internal/demand-service/adapters/driven/classifier"
	"hatbazar/internal/demand-service/adapters/driven/db"
	"hatbazar/internal/demand-service/adapters/driver/myhttp/handle"
	"hatbazar/internal/demand-service/adapters/driver/myhttp/middleware"
	"hatbazar/internal/demand-service/adapters/driver/myhttp/ws"
	"hatbazar/internal/demand-service/core/ports"
	"hatbazar/internal/demand-service/core/services"
	"hatbazar/internal/mylogger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ErrServerClosed = errors.New("Server closed")

const WaitTime = 10

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	mb     ports.INotificationBroker
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	s := &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}

	return s
}

// Run initializes routes and starts listening. It returns when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	// Initialize database connection
	db, err := db.New(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	mylog.Info("Successful database connection")

	// Initialize RabbitMQ connection
	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	// Configure routes and handlers
	s.Configure()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.DemandServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.DemandServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	s.wg.Wait()

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Error("Failed to close database", err)
			return fmt.Errorf("db close: %w", err)
		}
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure wires repositories, services and handlers onto the mux.
func (s *Server) Configure() {
	// Repositories
	demandRepo := db.NewDemandRepo(s.db)
	vendorRepo := db.NewVendorRepo(s.db)

	// driven adapters
	tagClassifier := classifier.New(s.cfg.App.ClassifierURL, s.mylog)
	dispatcher := ws.NewDispatcher(s.mylog)

	// services
	demandService := services.NewDemandService(s.appCtx, s.mylog, demandRepo, tagClassifier,
		s.cfg.App.NearestMaxRadiusMeters, s.cfg.App.NearestLimit)
	orderService := services.NewOrderService(s.appCtx, s.mylog, demandRepo, vendorRepo, s.mb, dispatcher,
		s.cfg.App.GeofenceRadiusMeters)

	// handlers
	demandHandler := handle.NewDemandHandler(demandService, s.mylog)
	vendorHandler := handle.NewVendorHandler(orderService, s.mylog)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	route := func(pattern, path, role string, h http.Handler) {
		s.mux.Handle(pattern, middleware.Metrics(path, authMiddleware.Wrap(role, h)))
	}

	// requester routes
	route("POST /demands", "/demands", "user", demandHandler.CreateDemand())
	route("GET /demands/users/{username}", "/demands/users/{username}", "user", demandHandler.MyDemands())

	// vendor routes
	route("POST /demands/nearby", "/demands/nearby", "vendor", demandHandler.NearbyDemands())
	route("POST /orders/{demand_id}/accept", "/orders/{demand_id}/accept", "vendor", vendorHandler.AcceptOrder())
	route("POST /orders/{demand_id}/deliver", "/orders/{demand_id}/deliver", "vendor", vendorHandler.DeliverOrder())
	route("GET /vendor/orders", "/vendor/orders", "vendor", vendorHandler.MyOrders())

	// websocket routes
	s.mux.Handle("/ws/users/{username}", authMiddleware.Wrap("user", dispatcher.WsHandler()))

	// operational routes
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.IsAlive(); err != nil {
			handle.JsonError(w, http.StatusServiceUnavailable, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
