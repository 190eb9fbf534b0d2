package fanout

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/core"
	"github.com/love4pets/realtime/internal/domain"
)

// LocalDeliverer is the broadcaster's local-only entry point. Envelopes
// arriving from the backbone go through it so they are not republished.
type LocalDeliverer interface {
	Deliver(env domain.Envelope)
}

// Null is the local-only fanout: dispatches stay in this process.
type Null struct{}

func (Null) Mirror(domain.Envelope) {}
func (Null) Close() error           { return nil }

// New selects the fanout adapter from configuration. The backbone is a
// soft dependency: no URL, a bad URL, or an unreachable server all degrade
// to local-only delivery with a warning, never a failure.
func New(ctx context.Context, redisURL string, local LocalDeliverer) core.Fanout {
	if redisURL == "" {
		log.Info().Str("module", "fanout").Msg("no backbone configured, local-only delivery")
		return Null{}
	}
	f, err := newRedis(ctx, redisURL, local)
	if err != nil {
		log.Warn().Err(err).Str("module", "fanout").Msg("cluster backbone unreachable, degrading to local-only delivery")
		return Null{}
	}
	return f
}
