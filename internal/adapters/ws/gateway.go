package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/app"
	"github.com/love4pets/realtime/internal/core"
	"github.com/love4pets/realtime/internal/domain"
)

const sendBuffer = 32

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway owns the /notifications websocket endpoint: it upgrades
// connections, runs their pumps, and keeps the registry in sync with
// connect/disconnect and joinRoom/leaveRoom messages.
type Gateway struct {
	Registry *app.Registry

	readLimit  int64
	pingPeriod time.Duration
	joins      *joinLimiter
}

func NewGateway(reg *app.Registry, readLimit int64, pingPeriod time.Duration) *Gateway {
	return &Gateway{
		Registry:   reg,
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
		joins:      newJoinLimiter(20, 10*time.Second),
	}
}

// HandleNotifications upgrades the request and binds the connection. Each
// connection gets a fresh id; two browser tabs are two connections.
func (g *Gateway) HandleNotifications(ctx context.Context, c *gin.Context) {
	id := core.ConnID(uuid.NewString())
	log.Info().Str("module", "ws").Str("conn", string(id)).Str("session", c.GetString("client_token")).Msg("new connection")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}
	if g.readLimit > 0 {
		conn.SetReadLimit(g.readLimit)
	}

	client := newClient(id, conn, sendBuffer)
	g.Registry.Bind(id, client)

	ctx, cancel := context.WithCancel(ctx)
	go g.writePump(ctx, client)
	go g.readPump(ctx, cancel, client)
}

func (g *Gateway) writePump(ctx context.Context, c *Client) {
	ticker := time.NewTicker(g.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Debug().Err(err).Str("module", "ws").Str("conn", string(c.id)).Msg("ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "ws").Str("conn", string(c.id)).Msg("set write deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Str("conn", string(c.id)).Msg("write")
				return
			}
		}
	}
}

func (g *Gateway) readPump(ctx context.Context, cancel context.CancelFunc, c *Client) {
	defer func() {
		g.Registry.Unbind(c.id)
		g.joins.Forget(c.id)
		c.Close()
		cancel()
		log.Info().Str("module", "ws").Str("conn", string(c.id)).Msg("connection closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			g.handleMessage(c, data)
		}
	}
}

func (g *Gateway) handleMessage(c *Client, data []byte) {
	var frame domain.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("conn", string(c.id)).Msg("bad frame")
		return
	}

	switch frame.Event {
	case "joinRoom":
		if !g.joins.Allow(c.id) {
			log.Warn().Str("module", "ws").Str("conn", string(c.id)).Msg("join rate limited")
			return
		}
		if room, ok := roomName(frame.Data); ok {
			g.Registry.Join(c.id, room)
		}
	case "leaveRoom":
		if room, ok := roomName(frame.Data); ok {
			g.Registry.Leave(c.id, room)
		}
	case "ping":
		pong, _ := json.Marshal(domain.Frame{Event: "pong"})
		_ = c.TrySend(pong)
	default:
		log.Warn().Str("module", "ws").Str("event", frame.Event).Msg("unknown client event")
	}
}

// roomName accepts the room either as a JSON string ("refugio:5") or as a
// bare token, matching what dashboard clients actually send.
func roomName(data json.RawMessage) (string, bool) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil {
		room = string(data)
	}
	if room == "" {
		return "", false
	}
	return room, true
}
