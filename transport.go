package unibus

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/unibus-go/topology"
)

// Channel is an AMQP channel as seen by callers of CreateChannel. With the
// default dialer the concrete type is *amqp.Channel.
type Channel interface {
	topology.Channel
	Close() error
}

// TransportConnection is one live broker connection. It is owned exclusively
// by the supervisor; only channels created from it are handed out.
type TransportConnection interface {
	// Channel opens a new channel on the connection.
	Channel() (Channel, error)
	// NotifyClose registers a listener for the connection shutting down.
	// On an abnormal shutdown the receiver gets the error; on a graceful
	// close it is closed without a value.
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	// Close shuts the connection down gracefully.
	Close() error
	// IsClosed reports whether the connection is no longer usable.
	IsClosed() bool
}

// Dialer establishes transport connections. The default implementation dials
// a real broker via amqp091-go; tests substitute fakes through WithDialer.
type Dialer interface {
	Dial(uri string, cfg amqp.Config) (TransportConnection, error)
}

// amqpDialer is the production dialer.
type amqpDialer struct{}

func (amqpDialer) Dial(uri string, cfg amqp.Config) (TransportConnection, error) {
	conn, err := amqp.DialConfig(uri, cfg)
	if err != nil {
		return nil, err
	}
	return &amqpConnection{conn: conn}, nil
}

type amqpConnection struct {
	conn *amqp.Connection
}

func (c *amqpConnection) Channel() (Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *amqpConnection) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	return c.conn.NotifyClose(receiver)
}

func (c *amqpConnection) Close() error {
	return c.conn.Close()
}

func (c *amqpConnection) IsClosed() bool {
	return c.conn.IsClosed()
}
