package unibus

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/unibus-go/topology"
)

// supervisor owns one named connection's lifecycle: it runs the connect
// protocol, applies the topology on every successful (re)connect, watches
// for asynchronous transport failures and drives the fixed-interval retry
// loop. All state mutation is serialized through s.mu; the supervisor is the
// only writer of the state store and the only owner of the live connection.
type supervisor struct {
	cfg     *connectionConfig
	dialer  Dialer
	logger  *slog.Logger
	applier *topology.Applier
	store   *stateStore

	mu       sync.RWMutex
	conn     TransportConnection // non-nil iff state is Ready
	retrying bool                // single owner of "a retry sleep is pending"
}

func newSupervisor(cfg *connectionConfig, dialer Dialer, logger *slog.Logger) *supervisor {
	logger = logger.With("connection", cfg.name, "uri", sanitizeURI(cfg.uri))
	return &supervisor{
		cfg:     cfg,
		dialer:  dialer,
		logger:  logger,
		applier: topology.NewApplier(topology.WithApplierLogger(logger)),
		store:   newStateStore(logger, cfg.reconnectInterval),
	}
}

// start kicks off the first connect attempt in the background. Callers never
// block on it; they observe the outcome through the state watcher.
func (s *supervisor) start() {
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.connectLocked() {
			s.scheduleRetryLocked()
		}
	}()
}

// connectLocked runs one pass of the connect protocol. It reports true when
// no further attempts are needed, i.e. the connection ended up Ready or is
// Closed. Call with s.mu held for writing.
func (s *supervisor) connectLocked() bool {
	if st, _, _ := s.store.current(); st.Kind == StateReady || st.Kind == StateClosed {
		return true
	}

	conn, err := s.dialer.Dial(s.cfg.uri, s.cfg.amqpConfig())
	if err != nil {
		s.store.set(Failed(&ConnectError{URI: sanitizeURI(s.cfg.uri), Err: err}))
		return false
	}

	if len(s.cfg.topology) > 0 {
		if err := s.applyTopology(conn); err != nil {
			// A topology failure is a connect failure: the raw
			// connection is discarded, never promoted to Ready.
			if cerr := conn.Close(); cerr != nil {
				s.logger.Warn("discarding connection failed", "error", cerr)
			}
			s.store.set(Failed(err))
			return false
		}
	}

	s.monitor(conn)
	s.conn = conn
	s.store.set(Ready())
	return true
}

// applyTopology runs the full ordered topology over one fresh channel.
func (s *supervisor) applyTopology(conn TransportConnection) error {
	ch, err := conn.Channel()
	if err != nil {
		return &ChannelError{Op: "open topology channel", Err: err}
	}
	defer ch.Close()
	return s.applier.Apply(ch, s.cfg.topology)
}

// monitor watches a promoted connection for asynchronous shutdown. A
// notification for a connection the supervisor no longer owns is a no-op.
func (s *supervisor) monitor(conn TransportConnection) {
	closes := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		err, ok := <-closes
		if !ok || err == nil {
			// graceful close, handled by the close protocol
			return
		}
		s.onTransportError(conn, err)
	}()
}

// onTransportError handles the async failure signal: mark Fail, try one
// immediate reconnect as a latency optimization, and fall back to the
// backoff loop if that also fails.
func (s *supervisor) onTransportError(conn TransportConnection, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != conn {
		// stale: the connection was already replaced or closed
		return
	}
	s.conn = nil
	s.store.set(Failed(err))

	if !s.connectLocked() {
		s.scheduleRetryLocked()
	}
}

// scheduleRetryLocked starts the retry loop unless one is already pending or
// the connection is closed. Call with s.mu held for writing.
func (s *supervisor) scheduleRetryLocked() {
	if s.retrying {
		return
	}
	if st, _, _ := s.store.current(); st.Kind == StateClosed {
		return
	}
	s.retrying = true
	go s.retryLoop()
}

// retryLoop sleeps the reconnect interval between attempts and exits once an
// attempt reports done. A close during the sleep is only observed after
// waking, so shutdown latency is bounded by the interval remainder.
func (s *supervisor) retryLoop() {
	for {
		time.Sleep(s.cfg.reconnectInterval)

		s.mu.Lock()
		done := s.connectLocked()
		if done {
			s.retrying = false
		}
		s.mu.Unlock()

		if done {
			return
		}
	}
}

// close runs the close protocol: best-effort transport close when Ready,
// then the terminal state. Idempotent.
func (s *supervisor) close(code uint16, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, _, _ := s.store.current(); st.Kind == StateClosed {
		return nil
	}

	if s.conn != nil {
		s.logger.Info("closing connection", "code", code, "reason", reason)
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("transport close failed", "error", err)
		}
		s.conn = nil
	}
	s.store.set(Closed())
	return nil
}

// createChannel hands out a channel from the live connection. The state check
// runs before the lock so callers fail fast while a connect attempt is in
// flight; the read lock then lets concurrent channel creation proceed while
// excluding writers for the duration of the transient borrow.
func (s *supervisor) createChannel() (Channel, error) {
	if st, _, _ := s.store.current(); st.Kind != StateReady {
		return nil, stateError(st)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.conn == nil {
		// the connection went away between the check and the lock
		st, _, _ := s.store.current()
		return nil, stateError(st)
	}
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, &ChannelError{Op: "create channel", Err: err}
	}
	return ch, nil
}

// stateError translates a non-Ready state into the error a caller sees.
func stateError(st ConnectionState) error {
	switch st.Kind {
	case StateClosed:
		return ErrClosed
	case StateFail:
		return fmt.Errorf("%w: %v", ErrNotReady, st.Err)
	default:
		return ErrNotReady
	}
}
