package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/domain"
)

const channel = "love4pets:events"

// frame is the wire format on the backbone. Origin identifies the
// publishing instance so it can drop its own echoes; every other instance
// delivers the envelope to its local subscribers.
type frame struct {
	Origin   string          `json:"origin"`
	Envelope domain.Envelope `json:"envelope"`
}

// Redis mirrors dispatches across server instances over a shared redis
// pub/sub channel.
type Redis struct {
	ctx    context.Context
	rdb    *redis.Client
	sub    *redis.PubSub
	origin string
	local  LocalDeliverer
}

func newRedis(ctx context.Context, redisURL string, local LocalDeliverer) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping backbone: %w", err)
	}

	f := &Redis{
		ctx:    ctx,
		rdb:    rdb,
		origin: uuid.NewString(),
		local:  local,
	}
	f.sub = rdb.Subscribe(ctx, channel)
	go f.loop()
	log.Info().Str("module", "fanout").Str("origin", f.origin).Msg("cluster backbone connected")
	return f, nil
}

// Mirror republishes the envelope onto the backbone. Publish failures are
// logged and swallowed; local delivery already happened.
func (f *Redis) Mirror(env domain.Envelope) {
	b, err := json.Marshal(frame{Origin: f.origin, Envelope: env})
	if err != nil {
		log.Error().Err(err).Str("module", "fanout").Str("type", env.Type).Msg("marshal backbone frame")
		return
	}
	if err := f.rdb.Publish(f.ctx, channel, b).Err(); err != nil {
		log.Warn().Err(err).Str("module", "fanout").Str("type", env.Type).Msg("backbone publish failed")
	}
}

func (f *Redis) loop() {
	for msg := range f.sub.Channel() {
		f.handle(msg.Payload)
	}
	log.Info().Str("module", "fanout").Msg("backbone subscription closed")
}

func (f *Redis) handle(payload string) {
	var fr frame
	if err := json.Unmarshal([]byte(payload), &fr); err != nil {
		log.Warn().Err(err).Str("module", "fanout").Msg("bad backbone frame")
		return
	}
	if fr.Origin == f.origin {
		return
	}
	f.local.Deliver(fr.Envelope)
}

func (f *Redis) Close() error {
	if err := f.sub.Close(); err != nil {
		return err
	}
	return f.rdb.Close()
}
