package unibus

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrNotReady is returned when an operation needs a usable connection
	// and the current state is not Ready. It is never retried by this
	// layer; callers should watch for a Ready transition instead.
	ErrNotReady = errors.New("unibus: connection not ready")

	// ErrClosed is returned for operations attempted after an explicit
	// close. Closed is terminal.
	ErrClosed = errors.New("unibus: connection closed")

	// ErrClientClosed is returned by Open after Shutdown.
	ErrClientClosed = errors.New("unibus: client is shut down")
)

// ConnectError reports a failed attempt to establish a broker connection.
// It surfaces only through the state watcher; the supervisor absorbs it into
// the retry loop.
type ConnectError struct {
	URI string // sanitized
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("unibus: connect to %s failed: %v", e.URI, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ChannelError reports a failed channel-level operation on a live
// connection.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("unibus: %s failed: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// sanitizeURI redacts credentials before a URI reaches logs or errors.
func sanitizeURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
