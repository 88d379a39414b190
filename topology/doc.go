// Package topology describes RabbitMQ broker topology declaratively.
//
// A topology is an ordered list of items (exchanges, queues, bindings and
// their passive variants) built once before a connection starts and applied
// against a channel every time the connection becomes usable:
//
//	items := []topology.Item{
//		topology.NewExchange("orders", amqp.ExchangeTopic),
//		topology.NewQueue("orders.audit").
//			MessageTTL(time.Hour).
//			BindTo("orders", topology.WithRoutingKey("order.#")),
//	}
//
// Items are value objects: they carry no channel state and may be re-applied
// unmodified on every reconnect. The Applier runs them strictly in order and
// stops at the first failure.
package topology
