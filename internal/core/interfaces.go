package core

import "github.com/love4pets/realtime/internal/domain"

// Frame is a serialized message ready to be written to a client.
type Frame []byte

// ConnID identifies one live client connection.
type ConnID string

// Sender abstracts the transport endpoint of a connected client.
// Owned by the adapter; the adapter must Close() it.
type Sender interface {
	ID() ConnID
	TrySend(Frame) error
	Close()
}

// Dispatcher delivers a domain event to its subscribers.
type Dispatcher interface {
	Dispatch(env domain.Envelope)
}

// Fanout mirrors dispatches onto a shared backbone so sibling server
// instances can deliver to their own clients.
type Fanout interface {
	Mirror(env domain.Envelope)
	Close() error
}
