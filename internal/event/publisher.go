package event

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

const (
	PresentationSaved   = "presentation.saved"
	PresentationUpdated = "presentation.updated"
	PresentationDeleted = "presentation.deleted"
)

// Publisher is what the gateway needs to announce changes
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

// EventPublisher sends JSON events to a topic exchange, routed by event type
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := Encode(eventType, payload)
	if err != nil {
		return err
	}

	return p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Encode builds the envelope every event is sent in
func Encode(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
}
