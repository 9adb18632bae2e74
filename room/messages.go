package room

import "garden/game"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Connect registers a viewer. It receives every broadcast whether or not it
// ever joins.
type Connect struct {
	ConnID string
	Conn   Conn
}

// Join: issued once after the join message is parsed. Conn may be nil when
// the connection was already registered with Connect; an empty ConnID asks
// the room to assign one. Reply, if set, must be buffered.
type Join struct {
	ConnID string
	Conn   Conn
	Name   string
	Reply  chan<- JoinResult
}

type JoinResult struct {
	SessionID string
	Created   bool
}

// Input: latest input for a session
type Input struct {
	SessionID string
	Input     game.Intent
}

// Chat sets the session's transient annotation.
type Chat struct {
	SessionID string
	Text      string
}

// Leave: issued on disconnect
type Leave struct {
	SessionID string
}

// sendFailed is posted by a viewer's writer when its connection errors.
type sendFailed struct {
	ConnID string
	Err    error
}
