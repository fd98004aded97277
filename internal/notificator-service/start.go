package notificatorservice

import (
	"context"
	"os/signal"
	"syscall"

	"hatbazar/internal/config"
	"hatbazar/internal/mylogger"
	"hatbazar/internal/notificator-service/adapters/driven/bm"
	"hatbazar/internal/notificator-service/adapters/driven/mail"
	"hatbazar/internal/notificator-service/core/services"
)

func Execute(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) error {
	newCtx, close := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer close()

	broker, err := bm.New(newCtx, *cfg.RabbitMq, mylog)
	if err != nil {
		return err
	}
	defer broker.Close()
	mylog.Info("Successful message broker connection")

	mailer := mail.New(cfg.Mail)
	svc := services.NewNotificatorService(newCtx, mylog, broker, mailer)

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- svc.Run()
	}()

	select {
	case <-newCtx.Done():
		mylog.Info("Shutdown signal received")
		return nil
	case err := <-runErrCh:
		if err != nil {
			mylog.Error("Notificator failed unexpectedly", err)
		}
		return err
	}
}
