package http

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/adapters/ws"
	"github.com/love4pets/realtime/internal/app"
	"github.com/love4pets/realtime/internal/config"
	"github.com/love4pets/realtime/internal/core"
	"github.com/love4pets/realtime/internal/storage"
)

// API bundles the collaborators the HTTP handlers need.
type API struct {
	Registry *app.Registry
	Dispatch core.Dispatcher
	Verifier *app.Verifier
	Store    storage.Store
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, api *API, gateway *ws.Gateway) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "x-signature"},
		MaxAge:       12 * time.Hour,
	}
	if cfg.CORSOrigin == "*" || cfg.CORSOrigin == "" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSOrigin}
	}
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("Love4PetsSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.POST("/emit", api.handleEmit)

	r.GET("/notifications", func(c *gin.Context) {
		gateway.HandleNotifications(ctx, c)
	})

	wh := r.Group("/webhooks")
	wh.POST("/notify", api.handleNotify)
	wh.GET("/stats", api.handleStats)
	api.registerEntityWebhooks(wh)

	// legacy singular alias some senders still use
	r.POST("/webhook/notify", api.handleNotify)

	api.registerCRUD(r.Group("/api"))

	log.Info().Str("module", "adapters.http").Str("cors", cfg.CORSOrigin).Msg("router setup")
	return r
}
