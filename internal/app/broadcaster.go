package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/core"
	"github.com/love4pets/realtime/internal/domain"
)

// Broadcaster routes envelopes to subscribers: room-targeted envelopes go
// to the room's members, untargeted ones to every connection. Each
// delivery is doubled with a generic "notification" frame wrapping the
// envelope, so clients may listen to one channel for everything.
type Broadcaster struct {
	reg *Registry

	mu     sync.RWMutex
	fanout core.Fanout
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// SetFanout installs the cluster mirror. Optional; without it delivery is
// local-process-only.
func (b *Broadcaster) SetFanout(f core.Fanout) {
	b.mu.Lock()
	b.fanout = f
	b.mu.Unlock()
}

// Dispatch delivers the envelope locally and mirrors it to sibling
// instances. Fire-and-forget: it never fails and never blocks on a slow
// connection.
func (b *Broadcaster) Dispatch(env domain.Envelope) {
	b.Deliver(env)

	b.mu.RLock()
	f := b.fanout
	b.mu.RUnlock()
	if f != nil {
		f.Mirror(env)
	}
}

// Deliver performs local-only delivery. The fanout adapter calls this for
// envelopes received from the backbone, so they are not republished.
func (b *Broadcaster) Deliver(env domain.Envelope) {
	var targets []core.Sender
	if room := env.Room(); room != "" {
		targets = b.reg.MembersOf(room)
	} else {
		targets = b.reg.Snapshot()
	}
	if len(targets) == 0 {
		return
	}

	specific, err := json.Marshal(domain.Frame{Event: env.Type, Data: env.Payload})
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Str("type", env.Type).Msg("marshal frame")
		return
	}
	wrapped, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Str("type", env.Type).Msg("marshal envelope")
		return
	}
	generic, err := json.Marshal(domain.Frame{Event: domain.EventNotification, Data: wrapped})
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Str("type", env.Type).Msg("marshal notification frame")
		return
	}

	for _, s := range targets {
		// Per connection: the specific event first, then the generic
		// wrapper. A dead or slow connection is skipped, never retried.
		if err := s.TrySend(specific); err != nil {
			log.Debug().Err(err).Str("module", "app.broadcaster").Str("conn", string(s.ID())).Str("type", env.Type).Msg("skipped send")
			continue
		}
		if err := s.TrySend(generic); err != nil {
			log.Debug().Err(err).Str("module", "app.broadcaster").Str("conn", string(s.ID())).Msg("skipped notification send")
		}
	}
	log.Info().Str("module", "app.broadcaster").Str("type", env.Type).Str("room", env.Room()).Int("targets", len(targets)).Msg("dispatched")
}
