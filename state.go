package unibus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StateKind identifies a connection lifecycle state.
type StateKind int

const (
	// StateUnknown is the initial state before the first connect attempt
	// resolves.
	StateUnknown StateKind = iota
	// StateReady means the connection is usable.
	StateReady
	// StateFail means the last connect attempt or the live connection
	// failed; a reconnect is pending.
	StateFail
	// StateClosed is terminal.
	StateClosed
)

func (k StateKind) String() string {
	switch k {
	case StateReady:
		return "READY"
	case StateFail:
		return "ERROR"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectionState is the externally observable lifecycle state of a
// supervised connection. The live transport handle is never part of it.
type ConnectionState struct {
	Kind StateKind
	Err  error // cause, set only when Kind is StateFail
}

// Unknown returns the initial state.
func Unknown() ConnectionState { return ConnectionState{Kind: StateUnknown} }

// Ready returns the usable state.
func Ready() ConnectionState { return ConnectionState{Kind: StateReady} }

// Closed returns the terminal state.
func Closed() ConnectionState { return ConnectionState{Kind: StateClosed} }

// Failed returns a failure state carrying its cause.
func Failed(err error) ConnectionState { return ConnectionState{Kind: StateFail, Err: err} }

// Equal compares states by kind; failure states compare by their rendered
// reason, since transport errors carry no stable identity.
func (s ConnectionState) Equal(other ConnectionState) bool {
	if s.Kind != other.Kind {
		return false
	}
	if s.Kind != StateFail {
		return true
	}
	return errText(s.Err) == errText(other.Err)
}

func (s ConnectionState) String() string {
	if s.Kind == StateFail {
		return "ERROR: " + errText(s.Err)
	}
	return s.Kind.String()
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// stateStore holds the current state of one connection and broadcasts
// changes to any number of watchers. The supervisor is its only writer.
type stateStore struct {
	logger    *slog.Logger
	reconnect time.Duration

	mu      sync.Mutex
	state   ConnectionState
	version uint64
	changed chan struct{} // closed and replaced on every accepted set
}

func newStateStore(logger *slog.Logger, reconnect time.Duration) *stateStore {
	return &stateStore{
		logger:    logger,
		reconnect: reconnect,
		state:     Unknown(),
		changed:   make(chan struct{}),
	}
}

// set updates the state and wakes watchers. Setting an equal state is a
// no-op: watchers see at most one notification per distinct transition.
func (st *stateStore) set(next ConnectionState) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.state.Equal(next) {
		return
	}

	switch next.Kind {
	case StateFail:
		st.logger.Error("connect error",
			"error", errText(next.Err),
			"retryIn", st.reconnect)
	case StateReady:
		st.logger.Warn("connected")
	case StateClosed:
		st.logger.Warn("closed")
	}

	st.state = next
	st.version++
	close(st.changed)
	st.changed = make(chan struct{})
}

// current returns the latest state together with its version and the channel
// that closes on the next change.
func (st *stateStore) current() (ConnectionState, uint64, <-chan struct{}) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state, st.version, st.changed
}

// watch returns a watcher whose first read reflects the current state.
func (st *stateStore) watch() *StateWatcher {
	st.mu.Lock()
	defer st.mu.Unlock()
	return &StateWatcher{store: st, seen: st.version}
}

// StateWatcher is a read-only subscription to a connection's state. Watchers
// are coalescing: a slow watcher sees the newest state, not necessarily every
// intermediate one. A watcher is not safe for concurrent use; take one per
// goroutine.
type StateWatcher struct {
	store *stateStore
	seen  uint64
}

// State returns the latest state without blocking and marks it seen.
func (w *StateWatcher) State() ConnectionState {
	state, version, _ := w.store.current()
	w.seen = version
	return state
}

// Changed blocks until the state differs from the last one seen, or the
// context is done. After it returns nil, State returns the new value.
func (w *StateWatcher) Changed(ctx context.Context) error {
	for {
		_, version, changed := w.store.current()
		if version != w.seen {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
