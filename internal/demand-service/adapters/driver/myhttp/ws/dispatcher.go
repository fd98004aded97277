package ws

import (
	"net/http"
	"sync"

	"hatbazar/internal/demand-service/core/ports"
	"hatbazar/internal/mylogger"

	websocketdto "hatbazar/internal/demand-service/core/domain/websocket_dto"

	"github.com/gorilla/websocket"
)

var websocketUpgrader = websocket.Upgrader{
	// TODO: add checkOrigin once the frontend origin is fixed
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ClientList is a map used to help manage a map of clients
type ClientList map[*Client]bool

// Dispatcher holds the live websocket clients keyed by username and
// pushes demand status updates to them. A requester with no open socket
// simply misses the push; the demand row stays authoritative.
type Dispatcher struct {
	clients ClientList
	sync.RWMutex
	log mylogger.Logger
}

var _ ports.INotifyWebsocket = (*Dispatcher)(nil)

func NewDispatcher(log mylogger.Logger) *Dispatcher {
	return &Dispatcher{
		clients: make(ClientList),
		log:     log,
	}
}

// WsHandler upgrades the request and registers the client under the
// username from the route.
func (d *Dispatcher) WsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("ws_connect")
		username := r.PathValue("username")

		if username == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade", err)
			return
		}

		client := NewClient(r.Context(), conn, d, username)
		d.AddClient(client)
		go client.ReadMessage()
		go client.WriteMessage()

		log.With("username", username).Info("websocket client connected")
	}
}

// WriteToUser pushes an event to every open socket of the user.
// Best effort: a full egress buffer drops the event for that socket.
func (d *Dispatcher) WriteToUser(username string, msg websocketdto.Event) {
	d.RLock()
	defer d.RUnlock()

	for client := range d.clients {
		if client.username != username {
			continue
		}
		select {
		case client.egress <- msg:
		default:
			d.log.Action("ws_push").With("username", username).Warn("egress full, event dropped")
		}
	}
}

func (d *Dispatcher) AddClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	d.clients[client] = true
}

func (d *Dispatcher) RemoveClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.clients[client]; ok {
		client.conn.Close()
		delete(d.clients, client)
	}
}
