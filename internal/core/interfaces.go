package core

import "errors"

// Frame is a raw encoded message ready for the wire.
type Frame []byte

// SessionID identifies one live connection.
type SessionID string

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the gateway.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}
