package messaging

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeclareBindAndConsume binds an exclusive queue to the topic exchange and consumes it.
func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		true,
		false,
		false,
		nil,
	)
}

// ListenToTopic consumes topic until the channel closes. A delivery is acked
// when handler accepts it and dropped otherwise.
func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, handler func([]byte) error) error {
	msgs, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}
	go func() {
		defer ch.Close()
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				log.Printf("Error processing message: %v", err)
				if err := d.Nack(false, false); err != nil {
					log.Printf("failed to nack message: %v", err)
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				log.Printf("failed to ack message: %v", err)
			}
		}
	}()
	return nil
}
