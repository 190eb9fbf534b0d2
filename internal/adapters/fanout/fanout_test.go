package fanout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/love4pets/realtime/internal/domain"
)

type spyDeliverer struct {
	envs []domain.Envelope
}

func (s *spyDeliverer) Deliver(env domain.Envelope) {
	s.envs = append(s.envs, env)
}

func TestNewWithoutURLIsLocalOnly(t *testing.T) {
	f := New(context.Background(), "", nil)
	assert.IsType(t, Null{}, f)

	// Null is inert
	f.Mirror(domain.Envelope{Type: "x"})
	assert.NoError(t, f.Close())
}

func TestNewWithBadURLIsLocalOnly(t *testing.T) {
	f := New(context.Background(), "not-a-url", nil)
	assert.IsType(t, Null{}, f)
}

func TestHandleDeliversRemoteFrames(t *testing.T) {
	spy := &spyDeliverer{}
	f := &Redis{origin: "instance-a", local: spy}

	env := domain.Envelope{
		Type:    "animal.created",
		Payload: json.RawMessage(`{"id_animal":1}`),
		Target:  &domain.Target{Room: "refugio:5"},
	}
	b, err := json.Marshal(frame{Origin: "instance-b", Envelope: env})
	require.NoError(t, err)

	f.handle(string(b))
	require.Len(t, spy.envs, 1)
	assert.Equal(t, env, spy.envs[0])
}

func TestHandleDropsOwnEcho(t *testing.T) {
	spy := &spyDeliverer{}
	f := &Redis{origin: "instance-a", local: spy}

	b, err := json.Marshal(frame{Origin: "instance-a", Envelope: domain.Envelope{Type: "x"}})
	require.NoError(t, err)

	f.handle(string(b))
	assert.Empty(t, spy.envs)
}

func TestHandleIgnoresGarbage(t *testing.T) {
	spy := &spyDeliverer{}
	f := &Redis{origin: "instance-a", local: spy}
	f.handle("{not json")
	assert.Empty(t, spy.envs)
}
