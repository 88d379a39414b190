package topology

import (
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange declares an exchange, optionally with bindings from other
// exchanges. Durable by default.
type Exchange struct {
	name              string
	kind              string
	durable           bool
	autoDelete        bool
	internal          bool
	alternateExchange string
	bindings          []*Binding
}

// NewExchange creates a durable exchange declaration of the given kind
// (amqp.ExchangeDirect, amqp.ExchangeTopic, ...).
func NewExchange(name, kind string) *Exchange {
	return &Exchange{
		name:    name,
		kind:    kind,
		durable: true,
	}
}

// NonDurable makes the exchange transient.
func (e *Exchange) NonDurable() *Exchange {
	e.durable = false
	return e
}

// AutoDelete deletes the exchange when its last binding is removed.
func (e *Exchange) AutoDelete() *Exchange {
	e.autoDelete = true
	return e
}

// Internal hides the exchange from direct publishing.
func (e *Exchange) Internal() *Exchange {
	e.internal = true
	return e
}

// AlternateExchange routes unroutable messages to the named exchange.
func (e *Exchange) AlternateExchange(name string) *Exchange {
	e.alternateExchange = name
	return e
}

// BindTo adds a binding from the source exchange to this exchange. The
// binding target is always this exchange.
func (e *Exchange) BindTo(source string, options ...BindingOption) *Exchange {
	e.bindings = append(e.bindings, BindExchange(source, e.name, options...))
	return e
}

// Name returns the exchange name.
func (e *Exchange) Name() string { return e.name }

// Bindings returns the bindings declared together with the exchange.
func (e *Exchange) Bindings() []*Binding { return e.bindings }

// Describe renders e.g. "exchange(orders, topic, durable, bound to 2)".
func (e *Exchange) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "exchange(%s, %s", e.name, e.kind)
	if e.durable {
		sb.WriteString(", durable")
	}
	if e.autoDelete {
		sb.WriteString(", auto-delete")
	}
	if e.internal {
		sb.WriteString(", internal")
	}
	if e.alternateExchange != "" {
		fmt.Fprintf(&sb, ", alternate-exchange = %s", e.alternateExchange)
	}
	if len(e.bindings) > 0 {
		fmt.Fprintf(&sb, ", bound to %d", len(e.bindings))
	}
	sb.WriteString(")")
	return sb.String()
}

// Apply declares the exchange and then its bindings, in order.
func (e *Exchange) Apply(ch Channel) error {
	var args amqp.Table
	if e.alternateExchange != "" {
		args = amqp.Table{"alternate-exchange": e.alternateExchange}
	}
	err := ch.ExchangeDeclare(e.name, e.kind, e.durable, e.autoDelete, e.internal, false, args)
	if err != nil {
		return err
	}
	for _, b := range e.bindings {
		if err := b.Apply(ch); err != nil {
			return err
		}
	}
	return nil
}

// ExchangePassive asserts that an exchange already exists without mutating
// broker state.
type ExchangePassive struct {
	name string
}

// NewExchangePassive creates a passive exchange declaration.
func NewExchangePassive(name string) *ExchangePassive {
	return &ExchangePassive{name: name}
}

// Describe renders e.g. "exchange(orders, passive)".
func (e *ExchangePassive) Describe() string {
	return fmt.Sprintf("exchange(%s, passive)", e.name)
}

// Apply performs the existence check. The exchange kind is ignored by the
// broker on passive declares.
func (e *ExchangePassive) Apply(ch Channel) error {
	return ch.ExchangeDeclarePassive(e.name, amqp.ExchangeDirect, true, false, false, false, nil)
}
