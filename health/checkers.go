package health

import (
	"context"
	"time"

	"github.com/glimte/unibus-go"
)

// ConnectionChecker checks the health of one supervised connection.
type ConnectionChecker struct {
	conn          *unibus.Connection
	probeExchange string
}

// ConnectionCheckerOption configures the checker.
type ConnectionCheckerOption func(*ConnectionChecker)

// WithProbeExchange sets the exchange whose existence is asserted as the
// liveness probe. Defaults to the broker-provided amq.direct.
func WithProbeExchange(name string) ConnectionCheckerOption {
	return func(c *ConnectionChecker) {
		c.probeExchange = name
	}
}

// NewConnectionChecker creates a health checker for a supervised connection.
func NewConnectionChecker(conn *unibus.Connection, options ...ConnectionCheckerOption) *ConnectionChecker {
	c := &ConnectionChecker{
		conn:          conn,
		probeExchange: "amq.direct",
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *ConnectionChecker) Name() string {
	return "rabbitmq"
}

// Check reports unhealthy while the connection is not Ready and degraded
// when it is Ready but the passive probe fails.
func (c *ConnectionChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      c.Name(),
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	state := c.conn.StateWatcher().State()
	result.Details["state"] = state.String()
	result.Details["connection"] = c.conn.Name()

	if state.Kind != unibus.StateReady {
		result.Status = StatusUnhealthy
		result.Message = "Connection is not ready"
		if state.Err != nil {
			result.Error = state.Err.Error()
		}
		result.Duration = time.Since(start)
		return result
	}

	ch, err := c.conn.CreateChannel()
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = "Failed to create channel"
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}
	defer ch.Close()

	// Perform a simple operation
	err = ch.ExchangeDeclarePassive(
		c.probeExchange,
		"direct", // type, ignored on passive declares
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		result.Status = StatusDegraded
		result.Message = "Exchange check failed"
		result.Error = err.Error()
	} else {
		result.Status = StatusHealthy
		result.Message = "Connection is healthy"
	}

	result.Duration = time.Since(start)
	result.Details["response_time_ms"] = result.Duration.Milliseconds()

	return result
}
