package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

// message is the wire form of a submitted job.
type message struct {
	Job string `json:"job"`
}

// AMQPQueue publishes jobs to a durable RabbitMQ queue and consumes them, so
// any server instance may run a job submitted by another.
type AMQPQueue struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	runner *Runner
}

// DialAMQP connects and declares the queue.
func DialAMQP(url, queue string, r *Runner) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("mq connect: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq queue declare: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch, queue: queue, runner: r}, nil
}

// Submit publishes name. Publish failures are logged, not returned.
func (q *AMQPQueue) Submit(name string) {
	body, _ := json.Marshal(message{Job: name})
	err := q.ch.Publish("", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Warn().Err(err).Str("job", name).Msg("publish job")
	}
}

// Start consumes jobs until ctx is cancelled or the channel closes.
func (q *AMQPQueue) Start(ctx context.Context) error {
	msgs, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("mq consume: %w", err)
	}
	log.Info().Str("queue", q.queue).Msg("job consumer started")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					log.Warn().Msg("job channel closed")
					return
				}
				q.handle(ctx, d)
			}
		}
	}()
	return nil
}

func (q *AMQPQueue) handle(ctx context.Context, d amqp.Delivery) {
	var m message
	if err := json.Unmarshal(d.Body, &m); err != nil {
		log.Warn().Err(err).Msg("bad job message")
		_ = d.Nack(false, false)
		return
	}
	// Jobs are idempotent recomputations; a failed one is dropped, not requeued.
	if err := q.runner.Run(ctx, m.Job); err != nil {
		log.Warn().Err(err).Str("job", m.Job).Msg("job failed")
	}
	_ = d.Ack(false)
}

// Close shuts the channel and connection.
func (q *AMQPQueue) Close() error {
	_ = q.ch.Close()
	return q.conn.Close()
}
