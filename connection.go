package unibus

// Connection is the externally visible handle to one supervised connection.
// Usability is observed through StateWatcher; there is no polling API.
type Connection struct {
	id  string
	sup *supervisor
}

// ID returns the registry identifier of the connection.
func (c *Connection) ID() string {
	return c.id
}

// Name returns the configured connection name.
func (c *Connection) Name() string {
	return c.sup.cfg.name
}

// URI returns the configured broker URI with credentials redacted.
func (c *Connection) URI() string {
	return sanitizeURI(c.sup.cfg.uri)
}

// StateWatcher returns a fresh state subscription. Its first read reflects
// the current state without waiting.
func (c *Connection) StateWatcher() *StateWatcher {
	return c.sup.store.watch()
}

// CreateChannel opens a channel on the live connection. It fails with
// ErrNotReady (or ErrClosed) unless the current state is Ready; no transport
// call is attempted in that case.
func (c *Connection) CreateChannel() (Channel, error) {
	return c.sup.createChannel()
}

// Close runs the close protocol with the given AMQP reply code and reason.
// Closed is terminal: the handle is unusable afterwards and closing again is
// a no-op.
func (c *Connection) Close(code uint16, reason string) error {
	return c.sup.close(code, reason)
}
