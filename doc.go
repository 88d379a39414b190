// Package unibus supervises RabbitMQ connections.
//
// This package includes:
//   - Client: a registry that opens and shuts down supervised connections
//   - Connection: the handle to one supervised connection
//   - StateWatcher: a coalescing subscription to connection state changes
//   - topology (subpackage): declarative exchanges, queues and bindings
//     re-applied on every successful (re)connect
//
// The implementation focuses on resilience:
//   - Automatic reconnection with a fixed backoff interval
//   - Topology applied exactly once per successful (re)connect, with a
//     failed declaration treated as a failed connect
//   - Race-free state observation: watchers never see a torn state and a
//     late transport error after close is a no-op
//
// A connection's usability is observed, not polled:
//
//	conn, _ := client.Open(uri, unibus.WithName("main"),
//		unibus.WithTopology(topology.NewQueue("q1")))
//	w := conn.StateWatcher()
//	for w.State().Kind != unibus.StateReady {
//		if err := w.Changed(ctx); err != nil {
//			return err
//		}
//	}
package unibus
