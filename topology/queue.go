package topology

import (
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue declares a queue, optionally with bindings from exchanges. Durable
// by default. The optional limits and dead-letter settings are rendered into
// queue arguments at apply time.
type Queue struct {
	name                 string
	durable              bool
	exclusive            bool
	autoDelete           bool
	messageTTL           time.Duration
	expires              time.Duration
	maxPriority          uint8
	maxLength            int64
	deadLetterExchange   string
	deadLetterRoutingKey string
	bindings             []*Binding
}

// NewQueue creates a durable queue declaration.
func NewQueue(name string) *Queue {
	return &Queue{
		name:    name,
		durable: true,
	}
}

// NonDurable makes the queue transient.
func (q *Queue) NonDurable() *Queue {
	q.durable = false
	return q
}

// Exclusive restricts the queue to the declaring connection.
func (q *Queue) Exclusive() *Queue {
	q.exclusive = true
	return q
}

// AutoDelete deletes the queue when its last consumer disconnects.
func (q *Queue) AutoDelete() *Queue {
	q.autoDelete = true
	return q
}

// MessageTTL discards messages older than the given duration.
func (q *Queue) MessageTTL(ttl time.Duration) *Queue {
	q.messageTTL = ttl
	return q
}

// Expires deletes the queue after it has been unused for the given duration.
func (q *Queue) Expires(expires time.Duration) *Queue {
	q.expires = expires
	return q
}

// MaxPriority enables priority support up to the given level.
func (q *Queue) MaxPriority(priority uint8) *Queue {
	q.maxPriority = priority
	return q
}

// MaxLength caps the number of messages the queue holds.
func (q *Queue) MaxLength(length int64) *Queue {
	q.maxLength = length
	return q
}

// DeadLetterExchange routes dead-lettered messages to the named exchange.
func (q *Queue) DeadLetterExchange(exchange string) *Queue {
	q.deadLetterExchange = exchange
	return q
}

// DeadLetterRoutingKey overrides the routing key on dead-lettered messages.
func (q *Queue) DeadLetterRoutingKey(key string) *Queue {
	q.deadLetterRoutingKey = key
	return q
}

// BindTo adds a binding from the source exchange to this queue. The binding
// target is always this queue.
func (q *Queue) BindTo(source string, options ...BindingOption) *Queue {
	q.bindings = append(q.bindings, BindQueue(source, q.name, options...))
	return q
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Bindings returns the bindings declared together with the queue.
func (q *Queue) Bindings() []*Binding { return q.bindings }

// Describe renders e.g. "queue(orders.audit, durable, bound to 1)".
func (q *Queue) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "queue(%s", q.name)
	if q.durable {
		sb.WriteString(", durable")
	}
	if q.exclusive {
		sb.WriteString(", exclusive")
	}
	if q.autoDelete {
		sb.WriteString(", auto-delete")
	}
	if len(q.bindings) > 0 {
		fmt.Fprintf(&sb, ", bound to %d", len(q.bindings))
	}
	sb.WriteString(")")
	return sb.String()
}

// arguments renders the optional settings into a queue-arguments table.
func (q *Queue) arguments() amqp.Table {
	args := amqp.Table{}
	if q.messageTTL > 0 {
		args["x-message-ttl"] = q.messageTTL.Milliseconds()
	}
	if q.expires > 0 {
		args["x-expires"] = q.expires.Milliseconds()
	}
	if q.maxPriority > 0 {
		args["x-max-priority"] = int32(q.maxPriority)
	}
	if q.maxLength > 0 {
		args["x-max-length"] = q.maxLength
	}
	if q.deadLetterExchange != "" {
		args["x-dead-letter-exchange"] = q.deadLetterExchange
		if q.deadLetterRoutingKey != "" {
			args["x-dead-letter-routing-key"] = q.deadLetterRoutingKey
		}
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

// Apply declares the queue and then its bindings, in order.
func (q *Queue) Apply(ch Channel) error {
	_, err := ch.QueueDeclare(q.name, q.durable, q.autoDelete, q.exclusive, false, q.arguments())
	if err != nil {
		return err
	}
	for _, b := range q.bindings {
		if err := b.Apply(ch); err != nil {
			return err
		}
	}
	return nil
}

// QueuePassive asserts that a queue already exists without mutating broker
// state.
type QueuePassive struct {
	name string
}

// NewQueuePassive creates a passive queue declaration.
func NewQueuePassive(name string) *QueuePassive {
	return &QueuePassive{name: name}
}

// Describe renders e.g. "queue(orders.audit, passive)".
func (q *QueuePassive) Describe() string {
	return fmt.Sprintf("queue(%s, passive)", q.name)
}

// Apply performs the existence check.
func (q *QueuePassive) Apply(ch Channel) error {
	_, err := ch.QueueDeclarePassive(q.name, true, false, false, false, nil)
	return err
}
