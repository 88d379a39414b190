package topology

import (
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TargetKind tells a binding whether its target is an exchange or a queue,
// which selects between exchange-bind and queue-bind on the wire.
type TargetKind int

const (
	TargetExchange TargetKind = iota
	TargetQueue
)

func (k TargetKind) String() string {
	if k == TargetQueue {
		return "queue"
	}
	return "exchange"
}

// Binding is a directed routing edge source -> target. The target kind is
// fixed at construction by BindExchange or BindQueue.
type Binding struct {
	source     string
	target     string
	kind       TargetKind
	routingKey string
	arguments  amqp.Table
}

// BindingOption configures a binding.
type BindingOption func(*Binding)

// WithRoutingKey sets the routing key the binding filters on.
func WithRoutingKey(key string) BindingOption {
	return func(b *Binding) {
		b.routingKey = key
	}
}

// WithBindingArguments sets broker-specific binding arguments.
func WithBindingArguments(args amqp.Table) BindingOption {
	return func(b *Binding) {
		b.arguments = args
	}
}

// BindExchange binds the source exchange to the target exchange.
func BindExchange(source, target string, options ...BindingOption) *Binding {
	return newBinding(source, target, TargetExchange, options)
}

// BindQueue binds the source exchange to the target queue.
func BindQueue(source, target string, options ...BindingOption) *Binding {
	return newBinding(source, target, TargetQueue, options)
}

func newBinding(source, target string, kind TargetKind, options []BindingOption) *Binding {
	b := &Binding{
		source: source,
		target: target,
		kind:   kind,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Source returns the source exchange name.
func (b *Binding) Source() string { return b.source }

// Target returns the target exchange or queue name.
func (b *Binding) Target() string { return b.target }

// Kind returns the target kind.
func (b *Binding) Kind() TargetKind { return b.kind }

// Unbind returns the inverse operation over the same fields.
func (b *Binding) Unbind() *Unbind {
	return &Unbind{binding: b}
}

// Describe renders e.g. "ex1 -> queue(q1), routing key: rk".
func (b *Binding) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -> %s(%s)", b.source, b.kind, b.target)
	if b.routingKey != "" {
		fmt.Fprintf(&sb, ", routing key: %s", b.routingKey)
	}
	if len(b.arguments) > 0 {
		fmt.Fprintf(&sb, ", arguments: %v", b.arguments)
	}
	return sb.String()
}

// Apply declares the binding on the channel.
func (b *Binding) Apply(ch Channel) error {
	if b.kind == TargetQueue {
		return ch.QueueBind(b.target, b.routingKey, b.source, false, b.arguments)
	}
	return ch.ExchangeBind(b.target, b.routingKey, b.source, false, b.arguments)
}

// Unbind removes a previously established binding.
type Unbind struct {
	binding *Binding
}

// Describe renders the underlying binding prefixed with "unbind:".
func (u *Unbind) Describe() string {
	return "unbind: " + u.binding.Describe()
}

// Apply removes the binding on the channel.
func (u *Unbind) Apply(ch Channel) error {
	b := u.binding
	if b.kind == TargetQueue {
		return ch.QueueUnbind(b.target, b.routingKey, b.source, b.arguments)
	}
	return ch.ExchangeUnbind(b.target, b.routingKey, b.source, false, b.arguments)
}
