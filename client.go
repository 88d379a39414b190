// Copyright 2024 Unibus Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package unibus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// replyCodeShutdown is the AMQP reply code sent when the client closes its
// connections during Shutdown.
const replyCodeShutdown uint16 = 200

// Client supervises a set of named broker connections. Open starts a new
// supervised connection; Shutdown closes them all together.
type Client struct {
	logger *slog.Logger
	dialer Dialer

	mu     sync.Mutex
	conns  map[string]*Connection
	closed bool
}

// NewClient creates a client registry.
func NewClient(options ...ClientOption) *Client {
	cfg := &clientConfig{
		logger: slog.Default(),
		dialer: amqpDialer{},
	}
	for _, opt := range options {
		opt(cfg)
	}

	return &Client{
		logger: cfg.logger,
		dialer: cfg.dialer,
		conns:  make(map[string]*Connection),
	}
}

// Open starts supervising a new connection to the given broker URI and
// returns its handle immediately; the first connect attempt runs in the
// background and its outcome is observed through the handle's StateWatcher.
func (c *Client) Open(uri string, options ...ConnectionOption) (*Connection, error) {
	if uri == "" {
		return nil, errors.New("unibus: broker URI must not be empty")
	}

	cfg := newConnectionConfig(uri)
	for _, opt := range options {
		opt(cfg)
	}

	id := uuid.New().String()
	if cfg.name == "" {
		cfg.name = "connection-" + id[:8]
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	conn := &Connection{
		id:  id,
		sup: newSupervisor(cfg, c.dialer, c.logger),
	}
	c.conns[id] = conn
	c.mu.Unlock()

	conn.sup.start()
	return conn, nil
}

// Connections returns the handles of all connections opened so far,
// including ones already closed.
func (c *Client) Connections() []*Connection {
	c.mu.Lock()
	defer c.mu.Unlock()

	conns := make([]*Connection, 0, len(c.conns))
	for _, conn := range c.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Shutdown stops accepting new connections and closes every supervised
// connection. It returns once all of them have reached the Closed state.
// Shutting down twice is a no-op.
func (c *Client) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conns := make([]*Connection, 0, len(c.conns))
	for _, conn := range c.conns {
		conns = append(conns, conn)
	}
	c.mu.Unlock()

	c.logger.Info("shutting down", "connections", len(conns))

	g, _ := errgroup.WithContext(ctx)
	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			return conn.Close(replyCodeShutdown, "client shutdown")
		})
	}
	return g.Wait()
}
