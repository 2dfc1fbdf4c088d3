// Package tasks dispatches background tasks through a RabbitMQ queue.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kcmvp/crm/jobs"
	amqp "github.com/rabbitmq/amqp091-go"
)

// GenerateReport runs the report job.
const GenerateReport = "generate_crm_report"

var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Channel is the part of *amqp.Channel the publisher and worker use.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

// Message is the JSON body of a queued task.
type Message struct {
	ID         string    `json:"id"`
	Task       string    `json:"task"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Dial connects to the broker and opens a channel. Closing the connection closes the channel.
func Dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func declare(ch Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return nil
}

type Publisher struct {
	ch    Channel
	queue string
}

// NewPublisher declares the durable queue and returns a publisher for it.
func NewPublisher(ch Channel, queue string) (*Publisher, error) {
	if err := declare(ch, queue); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

// Enqueue publishes a persistent message for task.
func (p *Publisher) Enqueue(ctx context.Context, task string) (Message, error) {
	msg := Message{ID: uuid.NewString(), Task: task, EnqueuedAt: time.Now().UTC()}
	body, err := json.Marshal(msg)
	if err != nil {
		return msg, err
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.EnqueuedAt,
		Type:         task,
		Body:         body,
	})
	if err != nil {
		return msg, fmt.Errorf("failed to publish %s: %w", task, err)
	}
	return msg, nil
}

type Handler func(ctx context.Context, msg Message) error

// ReportHandler runs the report job with cfg for every message.
func ReportHandler(cfg jobs.Config) Handler {
	return func(ctx context.Context, _ Message) error {
		return jobs.Report(ctx, cfg)
	}
}

// Worker consumes the queue and runs the handler registered for each task. Handled messages
// are acked; malformed, unknown or failed ones are dropped without requeueing.
type Worker struct {
	ch       Channel
	queue    string
	handlers map[string]Handler
	logger   *slog.Logger
}

func NewWorker(ch Channel, queue string, logger *slog.Logger) (*Worker, error) {
	if err := declare(ch, queue); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{ch: ch, queue: queue, handlers: map[string]Handler{}, logger: logger}, nil
}

func (w *Worker) Handle(task string, h Handler) {
	w.handlers[task] = h
}

// Run processes deliveries one at a time until ctx is done or the broker closes the channel.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.ch.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}
	w.logger.InfoContext(ctx, "worker waiting for tasks", "queue", w.queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			w.process(ctx, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.logger.ErrorContext(ctx, "malformed task message", "err", err)
		_ = d.Nack(false, false)
		return
	}
	h, ok := w.handlers[msg.Task]
	if !ok {
		w.logger.ErrorContext(ctx, "unknown task", "task", msg.Task, "id", msg.ID)
		_ = d.Nack(false, false)
		return
	}
	start := time.Now()
	if err := h(ctx, msg); err != nil {
		w.logger.ErrorContext(ctx, "task failed", "task", msg.Task, "id", msg.ID, "err", err)
		_ = d.Nack(false, false)
		return
	}
	w.logger.InfoContext(ctx, "task done", "task", msg.Task, "id", msg.ID, "dur", time.Since(start))
	_ = d.Ack(false)
}
