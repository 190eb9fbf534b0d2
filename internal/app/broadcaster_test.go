package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/love4pets/realtime/internal/core"
	"github.com/love4pets/realtime/internal/domain"
)

type recordingSender struct {
	id   core.ConnID
	fail bool

	mu     sync.Mutex
	frames []domain.Frame
}

func (s *recordingSender) ID() core.ConnID { return s.id }

func (s *recordingSender) TrySend(f core.Frame) error {
	if s.fail {
		return errors.New("connection closed")
	}
	var frame domain.Frame
	if err := json.Unmarshal(f, &frame); err != nil {
		return err
	}
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.mu.Unlock()
	return nil
}

func (s *recordingSender) Close() {}

func (s *recordingSender) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Event
	}
	return out
}

func newBroadcastFixture(t *testing.T) (*Broadcaster, *Registry) {
	t.Helper()
	reg := NewRegistry()
	return NewBroadcaster(reg), reg
}

func TestDispatchBroadcast(t *testing.T) {
	b, reg := newBroadcastFixture(t)
	a := &recordingSender{id: "a"}
	c := &recordingSender{id: "c"}
	reg.Bind("a", a)
	reg.Bind("c", c)

	b.Dispatch(domain.Envelope{Type: "animal.created", Payload: json.RawMessage(`{"id_animal":1}`)})

	for _, s := range []*recordingSender{a, c} {
		require.Equal(t, []string{"animal.created", "notification"}, s.events())
	}
}

func TestDispatchRoomTargeted(t *testing.T) {
	b, reg := newBroadcastFixture(t)
	in := &recordingSender{id: "in"}
	out := &recordingSender{id: "out"}
	reg.Bind("in", in)
	reg.Bind("out", out)
	reg.Join("in", "refugio:5")
	reg.Join("out", "refugio:9")

	payload := json.RawMessage(`{"id_animal":"1","nombre":"Luna"}`)
	b.Dispatch(domain.Envelope{
		Type:    "animal.created",
		Payload: payload,
		Target:  &domain.Target{Room: "refugio:5"},
	})

	require.Equal(t, []string{"animal.created", "notification"}, in.events())
	assert.Empty(t, out.events(), "a client joined only to another room receives nothing")

	// the generic frame wraps the full envelope
	var wrapped domain.Envelope
	require.NoError(t, json.Unmarshal(in.frames[1].Data, &wrapped))
	assert.Equal(t, "animal.created", wrapped.Type)
	assert.JSONEq(t, string(payload), string(wrapped.Payload))
	require.NotNil(t, wrapped.Target)
	assert.Equal(t, "refugio:5", wrapped.Target.Room)
}

func TestDispatchEmptyRoomIsNoOp(t *testing.T) {
	b, reg := newBroadcastFixture(t)
	bystander := &recordingSender{id: "a"}
	reg.Bind("a", bystander)

	b.Dispatch(domain.Envelope{Type: "x.created", Target: &domain.Target{Room: "empty"}})
	assert.Empty(t, bystander.events())
}

func TestDispatchSkipsDeadConnections(t *testing.T) {
	b, reg := newBroadcastFixture(t)
	dead := &recordingSender{id: "dead", fail: true}
	alive := &recordingSender{id: "alive"}
	reg.Bind("dead", dead)
	reg.Bind("alive", alive)

	b.Dispatch(domain.Envelope{Type: "refugio.updated"})

	assert.Equal(t, []string{"refugio.updated", "notification"}, alive.events())
}

type recordingFanout struct {
	mu   sync.Mutex
	envs []domain.Envelope
}

func (f *recordingFanout) Mirror(env domain.Envelope) {
	f.mu.Lock()
	f.envs = append(f.envs, env)
	f.mu.Unlock()
}

func (f *recordingFanout) Close() error { return nil }

func TestDispatchMirrorsToFanout(t *testing.T) {
	b, reg := newBroadcastFixture(t)
	s := &recordingSender{id: "a"}
	reg.Bind("a", s)

	fo := &recordingFanout{}
	b.SetFanout(fo)

	env := domain.Envelope{Type: "adopcion.created", Target: &domain.Target{Room: "usuario:7"}}
	b.Dispatch(env)
	require.Len(t, fo.envs, 1)
	assert.Equal(t, env, fo.envs[0])

	// Deliver (the backbone entry point) must not republish
	b.Deliver(env)
	assert.Len(t, fo.envs, 1)
}
