package unibus

import (
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/unibus-go/topology"
)

const (
	defaultReconnectInterval = 3 * time.Second
	defaultLocale            = "en-US"
	defaultHeartbeat         = 10 * time.Second
)

// connectionConfig holds per-connection configuration assembled from
// ConnectionOption values.
type connectionConfig struct {
	uri               string
	name              string
	reconnectInterval time.Duration
	locale            string
	clientProperties  amqp.Table
	heartbeat         time.Duration
	topology          []topology.Item
}

func newConnectionConfig(uri string) *connectionConfig {
	return &connectionConfig{
		uri:               uri,
		reconnectInterval: defaultReconnectInterval,
		locale:            defaultLocale,
		heartbeat:         defaultHeartbeat,
	}
}

// amqpConfig renders the transport-level connection properties. The
// connection name travels as the connection_name client property.
func (cfg *connectionConfig) amqpConfig() amqp.Config {
	props := amqp.Table{}
	for k, v := range cfg.clientProperties {
		props[k] = v
	}
	if cfg.name != "" {
		props["connection_name"] = cfg.name
	}
	return amqp.Config{
		Properties: props,
		Locale:     cfg.locale,
		Heartbeat:  cfg.heartbeat,
	}
}

// ConnectionOption configures one supervised connection.
type ConnectionOption func(*connectionConfig)

// WithName names the connection in logs and on the broker.
func WithName(name string) ConnectionOption {
	return func(cfg *connectionConfig) {
		cfg.name = name
	}
}

// WithReconnectInterval sets the fixed backoff between reconnect attempts.
func WithReconnectInterval(interval time.Duration) ConnectionOption {
	return func(cfg *connectionConfig) {
		cfg.reconnectInterval = interval
	}
}

// WithLocale sets the connection locale.
func WithLocale(locale string) ConnectionOption {
	return func(cfg *connectionConfig) {
		cfg.locale = locale
	}
}

// WithClientProperties sets opaque client properties passed through to the
// broker handshake.
func WithClientProperties(props amqp.Table) ConnectionOption {
	return func(cfg *connectionConfig) {
		cfg.clientProperties = props
	}
}

// WithHeartbeat sets the transport heartbeat interval.
func WithHeartbeat(interval time.Duration) ConnectionOption {
	return func(cfg *connectionConfig) {
		cfg.heartbeat = interval
	}
}

// WithTopology sets the ordered topology applied on every successful
// (re)connect.
func WithTopology(items ...topology.Item) ConnectionOption {
	return func(cfg *connectionConfig) {
		cfg.topology = append(cfg.topology, items...)
	}
}

// clientConfig holds registry-level configuration.
type clientConfig struct {
	logger *slog.Logger
	dialer Dialer
}

// ClientOption configures the client registry.
type ClientOption func(*clientConfig)

// WithLogger sets the logger for the client and all its connections.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithDialer substitutes the transport dialer. Intended for tests.
func WithDialer(dialer Dialer) ClientOption {
	return func(cfg *clientConfig) {
		cfg.dialer = dialer
	}
}
