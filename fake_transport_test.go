package unibus

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeChannel records declare/bind calls in order and fails the ones listed
// in failOn (keyed "op:name", e.g. "queue:q1").
type fakeChannel struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error
	closed bool
}

func (c *fakeChannel) record(op, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := op + ":" + name
	if err, ok := c.failOn[key]; ok {
		return err
	}
	c.calls = append(c.calls, key)
	return nil
}

func (c *fakeChannel) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	calls := make([]string, len(c.calls))
	copy(calls, c.calls)
	return calls
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return c.record("exchange", name)
}

func (c *fakeChannel) ExchangeDeclarePassive(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return c.record("exchange-passive", name)
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	err := c.record("queue", name)
	return amqp.Queue{Name: name}, err
}

func (c *fakeChannel) QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	err := c.record("queue-passive", name)
	return amqp.Queue{Name: name}, err
}

func (c *fakeChannel) ExchangeBind(destination, key, source string, noWait bool, args amqp.Table) error {
	return c.record("exchange-bind", destination)
}

func (c *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return c.record("queue-bind", name)
}

func (c *fakeChannel) ExchangeUnbind(destination, key, source string, noWait bool, args amqp.Table) error {
	return c.record("exchange-unbind", destination)
}

func (c *fakeChannel) QueueUnbind(name, key, exchange string, args amqp.Table) error {
	return c.record("queue-unbind", name)
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeConn is a controllable transport connection.
type fakeConn struct {
	mu       sync.Mutex
	closed   bool
	channels []*fakeChannel
	chanErr  error
	failOn   map[string]error
	notify   []chan *amqp.Error
}

func (c *fakeConn) Channel() (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chanErr != nil {
		return nil, c.chanErr
	}
	ch := &fakeChannel{failOn: c.failOn}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConn) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(receiver)
		return receiver
	}
	c.notify = append(c.notify, receiver)
	return receiver
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return amqp.ErrClosed
	}
	c.closed = true
	for _, n := range c.notify {
		close(n)
	}
	c.notify = nil
	return nil
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fail simulates an abnormal transport-level shutdown.
func (c *fakeConn) fail(err *amqp.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, n := range c.notify {
		n <- err
		close(n)
	}
	c.notify = nil
}

func (c *fakeConn) channelCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.channels)
}

// fakeDialer hands out fakeConns and can be switched between failing and
// succeeding while supervisors are running.
type fakeDialer struct {
	mu      sync.Mutex
	dialErr error
	chanErr error
	failOn  map[string]error
	conns   []*fakeConn
	tries   int
	dialing chan struct{} // when non-nil, Dial blocks until it is closed
}

func (d *fakeDialer) Dial(uri string, cfg amqp.Config) (TransportConnection, error) {
	d.mu.Lock()
	blocked := d.dialing
	d.mu.Unlock()
	if blocked != nil {
		<-blocked
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tries++
	if d.dialErr != nil {
		return nil, fmt.Errorf("dial %s: %w", sanitizeURI(uri), d.dialErr)
	}
	conn := &fakeConn{chanErr: d.chanErr, failOn: d.failOn}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) setDialErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialErr = err
}

func (d *fakeDialer) setFailOn(failOn map[string]error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOn = failOn
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) dialAttempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tries
}

func (d *fakeDialer) connAt(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *fakeDialer) lastConn() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// allDeclares flattens every declare recorded across all connections and
// channels, in creation order.
func (d *fakeDialer) allDeclares() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var calls []string
	for _, conn := range d.conns {
		conn.mu.Lock()
		channels := append([]*fakeChannel(nil), conn.channels...)
		conn.mu.Unlock()
		for _, ch := range channels {
			calls = append(calls, ch.recorded()...)
		}
	}
	return calls
}
