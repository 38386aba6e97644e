package queue

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/streadway/amqp"
)

// ExecutionJob is the wire shape of a campaign execution message.
type ExecutionJob struct {
	CampaignID string `json:"campaign_id"`
}

// AMQPQueue publishes jobs to RabbitMQ for the standalone worker. Implements
// the same Queue interface as the in-memory queue so wiring is a config
// choice, not a code change.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, eris.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, eris.Wrap(err, "amqp channel")
	}
	return &AMQPQueue{conn: conn, ch: ch}, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	campaignID, ok := payload.(string)
	if !ok {
		return fmt.Errorf("amqp publish: expected campaign ID string, got %T", payload)
	}

	queue, err := q.ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return eris.Wrap(err, "amqp queue declare")
	}

	body, err := json.Marshal(ExecutionJob{CampaignID: campaignID})
	if err != nil {
		return eris.Wrap(err, "amqp encode job")
	}

	err = q.ch.Publish("", queue.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return eris.Wrap(err, "amqp publish")
	}
	return nil
}

// Subscribe consumes a topic with manual acks; failed handlers requeue up to
// three times via the x-retry-count header.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	queue, err := q.ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return eris.Wrap(err, "amqp queue declare")
	}

	msgs, err := q.ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return eris.Wrap(err, "amqp consume")
	}

	go func() {
		for d := range msgs {
			var job ExecutionJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				d.Ack(false) // poison message, drop
				continue
			}

			if err := handler(job.CampaignID); err != nil {
				var retryCount int32
				if v, ok := d.Headers["x-retry-count"].(int32); ok {
					retryCount = v
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			}
			d.Ack(false)
		}
	}()
	return nil
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		return err
	}
	return q.conn.Close()
}
