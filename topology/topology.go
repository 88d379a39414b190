package topology

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of AMQP channel operations topology items need.
// *amqp.Channel satisfies it; tests supply fakes.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	ExchangeDeclarePassive(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	ExchangeBind(destination, key, source string, noWait bool, args amqp.Table) error
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	ExchangeUnbind(destination, key, source string, noWait bool, args amqp.Table) error
	QueueUnbind(name, key, exchange string, args amqp.Table) error
}

// Item is a single broker-side declaration. Items are immutable once built
// and safe to apply repeatedly; re-declaring with identical attributes is a
// no-op on the broker, conflicting attributes fail per broker rules.
type Item interface {
	// Describe renders a human-readable description used in logs and errors.
	Describe() string
	// Apply performs the declaration on the given channel.
	Apply(ch Channel) error
}
