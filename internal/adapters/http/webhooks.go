package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/domain"
)

var validate = validator.New()

// handleNotify is the generic webhook ingress: signature check over the
// exact raw body, then envelope construction and dispatch. The response is
// a synchronous ack; delivery itself is fire-and-forget.
func (a *API) handleNotify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if !a.Verifier.Verify(body, c.GetHeader("x-signature")) {
		log.Warn().Str("module", "adapters.http").Msg("invalid webhook signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	if env.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}
	if env.Target == nil {
		// compatibility with senders that put the room at top level
		var alias struct {
			Room string `json:"room"`
		}
		if json.Unmarshal(body, &alias) == nil && alias.Room != "" {
			env.Target = &domain.Target{Room: alias.Room}
		}
	}

	log.Info().Str("module", "adapters.http").Str("type", env.Type).Str("room", env.Room()).Msg("webhook event received")
	a.Dispatch.Dispatch(env)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connectedClients": a.Registry.Count(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

// handleEmit lets test tooling push arbitrary events without a signature.
func (a *API) handleEmit(c *gin.Context) {
	var req struct {
		Event string          `json:"event" binding:"required"`
		Data  json.RawMessage `json:"data" binding:"required"`
		Room  string          `json:"room"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event and data are required"})
		return
	}
	env := domain.Envelope{Type: req.Event, Payload: req.Data}
	if req.Room != "" {
		env.Target = &domain.Target{Room: req.Room}
	}
	a.Dispatch.Dispatch(env)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type entityEndpoint struct {
	path   string
	entity string
	decode func(json.RawMessage) error
}

func decodeInto[T any](raw json.RawMessage) error {
	var dto T
	if err := json.Unmarshal(raw, &dto); err != nil {
		return err
	}
	return validate.Struct(dto)
}

var entityEndpoints = []entityEndpoint{
	{"animals", "animal", decodeInto[domain.Animal]},
	{"publicaciones", "publicacion", decodeInto[domain.Publicacion]},
	{"adopciones", "adopcion", decodeInto[domain.Adopcion]},
	{"refugios", "refugio", decodeInto[domain.Refugio]},
	{"campanias", "campania", decodeInto[domain.Campania]},
	{"causas_urgentes", "causa_urgente", decodeInto[domain.CausaUrgente]},
}

func (a *API) registerEntityWebhooks(g *gin.RouterGroup) {
	for _, ep := range entityEndpoints {
		g.POST("/"+ep.path, a.entityWebhook(ep))
	}
}

// entityWebhook handles the per-entity ingress variant: same signature
// convention, but the event type must belong to the endpoint's entity.
func (a *API) entityWebhook(ep entityEndpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		if !a.Verifier.Verify(body, c.GetHeader("x-signature")) {
			log.Warn().Str("module", "adapters.http").Str("entity", ep.entity).Msg("invalid webhook signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		var event struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(body, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return
		}
		if !domain.ValidEntityEvent(ep.entity, event.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event type: " + event.Type})
			return
		}

		// Shape check only; payload stays opaque to the relay and a
		// mismatch is the upstream backend's bug, not a reason to drop
		// the notification.
		if ep.decode != nil && len(event.Payload) > 0 {
			if err := ep.decode(event.Payload); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Str("type", event.Type).Msg("payload shape mismatch")
			}
		}

		log.Info().Str("module", "adapters.http").Str("type", event.Type).Msg("webhook event received")
		a.Dispatch.Dispatch(domain.Envelope{Type: event.Type, Payload: event.Payload})
		c.JSON(http.StatusOK, gin.H{"success": true, "event": event.Type})
	}
}
