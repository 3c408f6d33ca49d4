// Package realtime delivers events to connected users on a best-effort basis.
package realtime

import "context"

// Conn is one live client connection.
type Conn interface {
	// Send queues payload for writing and reports whether it was accepted.
	Send(payload []byte) bool
	// Close stops the connection's writer.
	Close()
}

// Registry maps user ids to their live connection.
// Implementations must be safe for concurrent use.
type Registry interface {
	// Register binds conn to userID, replacing and closing any earlier connection.
	Register(userID string, conn Conn)
	// Unregister removes conn if it is still the one bound to userID.
	Unregister(userID string, conn Conn)
	// SendTo pushes event to userID and reports whether it was handed to a connection.
	// Undeliverable events are dropped.
	SendTo(ctx context.Context, userID string, event Event) bool
}
