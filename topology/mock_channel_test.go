package topology

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

// mockChannel mocks the Channel interface
type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	a := m.Called(name, kind, durable, autoDelete, internal, noWait, args)
	return a.Error(0)
}

func (m *mockChannel) ExchangeDeclarePassive(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	a := m.Called(name, kind, durable, autoDelete, internal, noWait, args)
	return a.Error(0)
}

func (m *mockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return a.Get(0).(amqp.Queue), a.Error(1)
}

func (m *mockChannel) QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable, autoDelete, exclusive, noWait, args)
	return a.Get(0).(amqp.Queue), a.Error(1)
}

func (m *mockChannel) ExchangeBind(destination, key, source string, noWait bool, args amqp.Table) error {
	a := m.Called(destination, key, source, noWait, args)
	return a.Error(0)
}

func (m *mockChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	a := m.Called(name, key, exchange, noWait, args)
	return a.Error(0)
}

func (m *mockChannel) ExchangeUnbind(destination, key, source string, noWait bool, args amqp.Table) error {
	a := m.Called(destination, key, source, noWait, args)
	return a.Error(0)
}

func (m *mockChannel) QueueUnbind(name, key, exchange string, args amqp.Table) error {
	a := m.Called(name, key, exchange, args)
	return a.Error(0)
}
