package audit

import (
	"context"
	"encoding/json"

	"github.com/corray333/backend-labs/crm/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/crm/internal/service/models/jobrun"
	"github.com/streadway/amqp"
)

// RabbitMQAuditRepository publishes job run outcomes to a queue for
// downstream consumers. Best-effort only: the file log is the durable
// audit channel and a publish failure never fails a job.
type RabbitMQAuditRepository struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

// NewRabbitMQAuditRepository creates a new RabbitMQ audit repository.
func NewRabbitMQAuditRepository(client *rabbitmq.Client) *RabbitMQAuditRepository {
	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       "crm.jobs.outcome",
		Durable:    false,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &RabbitMQAuditRepository{
		client: client,
		queue:  queue,
	}
}

// PublishOutcome publishes one job run outcome as JSON.
func (r *RabbitMQAuditRepository) PublishOutcome(ctx context.Context, outcome jobrun.Outcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	return r.client.Channel().Publish(
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
