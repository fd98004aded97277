package ws

import (
	"context"
	"encoding/json"

	websocketdto "hatbazar/internal/demand-service/core/domain/websocket_dto"

	"github.com/gorilla/websocket"
)

type Client struct {
	ctx      context.Context
	conn     *websocket.Conn
	dis      *Dispatcher
	egress   chan websocketdto.Event
	username string
}

func NewClient(ctx context.Context, conn *websocket.Conn, dis *Dispatcher, username string) *Client {
	return &Client{
		ctx:      ctx,
		conn:     conn,
		dis:      dis,
		egress:   make(chan websocketdto.Event, 8),
		username: username,
	}
}

// ReadMessage drains the socket. Inbound frames are ignored, the
// channel is push-only, but the read loop is what detects a closed
// peer.
func (c *Client) ReadMessage() {
	defer c.dis.RemoveClient(c)

	c.conn.SetReadLimit(1024)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.dis.log.Action("ws_read").Error("unexpected close", err)
			}
			break
		}
	}
}

func (c *Client) WriteMessage() {
	for {
		select {
		case <-c.ctx.Done():
			c.dis.RemoveClient(c)
			return
		case event, ok := <-c.egress:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				c.dis.log.Action("ws_write").Error("marshal event", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.dis.RemoveClient(c)
				return
			}
		}
	}
}
