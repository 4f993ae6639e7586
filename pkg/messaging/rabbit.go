package messaging

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connect dials RabbitMQ and declares the list update exchange.
func Connect(cfg RabbitConfig) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(cfg.Url, amqp.Config{
		Vhost:      cfg.VHost,
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := DefineTopic(ch, cfg.Prefix, ListUpdated); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", getName(cfg.Prefix, ListUpdated), err)
	}
	return conn, nil
}

// RabbitSender publishes list updates on the list update exchange.
type RabbitSender struct {
	Conn   *amqp.Connection
	Prefix string
}

func (s *RabbitSender) Send(msg ListUpdateMessage) error {
	return SendChange(s.Conn, s.Prefix, ListUpdated, msg)
}

// Listen feeds list updates of other clients into bridge.
func Listen(conn *amqp.Connection, prefix string, bridge *Bridge) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	return ListenToTopic(ch, prefix, ListUpdated, bridge.Receive)
}
