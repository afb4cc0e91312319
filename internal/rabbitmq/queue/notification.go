package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/recurring-notifier/internal/config"
)

const (
	headerNotBefore = "x-not-before" // unix milliseconds before which the job must not run
	headerAttempt   = "x-attempt"    // 1-based delivery attempt
	headerReason    = "x-dead-reason"
)

// ErrConsumerClosed is returned when the broker closes the delivery channel.
var ErrConsumerClosed = errors.New("consumer channel closed")

// NotificationMessage is the job payload exchanged between enqueuers and the delivery worker.
type NotificationMessage struct {
	JobID           uuid.UUID `json:"job_id" validate:"required"`
	NotificationID  uuid.UUID `json:"notification_id" validate:"required"`
	SenderEmail     string    `json:"sender_email" validate:"required,email"`
	ReceiverEmail   string    `json:"receiver_email" validate:"required,email"`
	Content         string    `json:"content" validate:"required"`
	Recurring       bool      `json:"recurring"`
	Frequency       string    `json:"frequency" validate:"required_if=Recurring true"`
	Date            string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time            string    `json:"time" validate:"omitempty,datetime=15:04"`
	ScheduleEntryID uuid.UUID `json:"schedule_entry_id,omitempty"`

	// Attempt is the delivery attempt, carried in the x-attempt header.
	Attempt int `json:"-"`
}

// NotificationQueue is a delayed job queue on top of RabbitMQ.
//
// Delays are served by a ladder of parking queues with fixed TTLs that
// dead-letter back into the main queue. A job parks in the longest step that
// does not overshoot its due time and hops down the ladder until it is due,
// so a long delay never holds up a short one behind it.
type NotificationQueue struct {
	ch       *rabbitmq.Channel
	cfg      config.RabbitMQ
	strategy retry.Strategy // publish retries and redelivery backoff
	steps    []time.Duration
	now      func() time.Time
}

// NewNotificationQueue declares the exchange, the main queue, the DLQ and the
// delay ladder, and binds the main queue to the exchange.
func NewNotificationQueue(ch *rabbitmq.Channel, cfg config.RabbitMQ, strategy retry.Strategy) (*NotificationQueue, error) {
	exchange := rabbitmq.NewExchange(cfg.Exchange, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	_, err := qm.DeclareQueue(cfg.DLQ, rabbitmq.QueueConfig{Durable: true})
	if err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	steps := sortedSteps(cfg.DelaySteps)

	for _, step := range steps {
		delayArgs := map[string]interface{}{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": cfg.Queue,
			"x-message-ttl":             step.Milliseconds(),
		}

		_, err = qm.DeclareQueue(delayQueueName(cfg.DelayPrefix, step), rabbitmq.QueueConfig{
			Durable: true,
			Args:    delayArgs,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to declare delay queue %s: %w", step, err)
		}
	}

	mainArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": cfg.DLQ,
	}

	mainQ, err := qm.DeclareQueue(cfg.Queue, rabbitmq.QueueConfig{
		Durable: true,
		Args:    mainArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare main queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, cfg.RoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind the exchange to the main queue: %w", err)
	}

	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	return &NotificationQueue{
		ch:       ch,
		cfg:      cfg,
		strategy: strategy,
		steps:    steps,
		now:      time.Now,
	}, nil
}

// Enqueue schedules msg to be handed to a worker no earlier than delay from now.
func (q *NotificationQueue) Enqueue(ctx context.Context, msg NotificationMessage, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}

	return q.publishAt(ctx, msg, q.now().Add(delay), 1)
}

// Job is a due job handed to a worker. It must be settled exactly once with
// Ack, Retry or Reject.
type Job interface {
	Payload() NotificationMessage
	Ack() error
	Retry(ctx context.Context, cause error) error
	Reject(ctx context.Context, cause error) error
	Exhausted() bool
}

// Consume delivers due jobs to out until ctx is done.
//
// Jobs that arrive before their due time are parked again; undecodable bodies
// go straight to the DLQ.
func (q *NotificationQueue) Consume(ctx context.Context, out chan<- Job) error {
	msgs, err := q.ch.Consume(q.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return ErrConsumerClosed
			}

			d, err := q.decode(m)
			if err != nil {
				zlog.Logger.Error().Err(err).Str("message_id", m.MessageId).Msg("failed to decode job, moving to DLQ")
				_ = q.deadLetter(ctx, m, err.Error())
				continue
			}

			if remaining := d.NotBefore.Sub(q.now()); remaining > 0 {
				q.repark(ctx, d)
				continue
			}

			select {
			case out <- d:
			case <-ctx.Done():
				_ = m.Nack(false, true)
				return nil
			}
		}
	}
}

func (q *NotificationQueue) decode(m amqp.Delivery) (*Delivery, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(m.Body, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	msg.Attempt = headerInt(m.Headers, headerAttempt, 1)

	d := &Delivery{
		Message: msg,
		Attempt: msg.Attempt,
		raw:     m,
		q:       q,
	}

	if ms := headerInt(m.Headers, headerNotBefore, 0); ms > 0 {
		d.NotBefore = time.UnixMilli(int64(ms))
	}

	return d, nil
}

func (q *NotificationQueue) repark(ctx context.Context, d *Delivery) {
	if err := q.publishAt(ctx, d.Message, d.NotBefore, d.Attempt); err != nil {
		zlog.Logger.Error().Err(err).Str("job_id", d.Message.JobID.String()).Msg("failed to re-park early job")
		_ = d.raw.Nack(false, true)
		return
	}

	_ = d.raw.Ack(false)
}

func (q *NotificationQueue) publishAt(ctx context.Context, msg NotificationMessage, notBefore time.Time, attempt int) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	exchange, key := q.cfg.Exchange, q.cfg.RoutingKey
	if step := pickStep(q.steps, notBefore.Sub(q.now())); step > 0 {
		exchange, key = "", delayQueueName(q.cfg.DelayPrefix, step)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.JobID.String(),
		Timestamp:    q.now(),
		Headers: amqp.Table{
			headerNotBefore: notBefore.UnixMilli(),
			headerAttempt:   int32(attempt),
		},
		Body: body,
	}

	return retry.Do(func() error {
		return q.ch.PublishWithContext(ctx, exchange, key, false, false, pub)
	}, q.strategy)
}

func (q *NotificationQueue) deadLetter(ctx context.Context, m amqp.Delivery, reason string) error {
	headers := amqp.Table{}
	for k, v := range m.Headers {
		headers[k] = v
	}
	headers[headerReason] = reason

	err := retry.Do(func() error {
		return q.ch.PublishWithContext(ctx, "", q.cfg.DLQ, false, false, amqp.Publishing{
			ContentType:  m.ContentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    m.MessageId,
			Timestamp:    q.now(),
			Headers:      headers,
			Body:         m.Body,
		})
	}, q.strategy)
	if err != nil {
		// The main queue dead-letters rejected messages into the DLQ as well.
		return m.Nack(false, false)
	}

	return m.Ack(false)
}

// Delivery is the Job read from RabbitMQ.
type Delivery struct {
	Message   NotificationMessage
	Attempt   int
	NotBefore time.Time

	raw amqp.Delivery
	q   *NotificationQueue
}

// Payload returns the decoded job payload.
func (d *Delivery) Payload() NotificationMessage {
	return d.Message
}

// Ack removes the job from the queue.
func (d *Delivery) Ack() error {
	return d.raw.Ack(false)
}

// Retry schedules the same job again after the backoff for its attempt, or
// moves it to the DLQ once the attempts of the retry strategy are spent.
func (d *Delivery) Retry(ctx context.Context, cause error) error {
	if d.Attempt >= d.q.strategy.Attempts {
		return d.q.deadLetter(ctx, d.raw, fmt.Sprintf("attempts exhausted: %v", cause))
	}

	delay := Backoff(d.q.strategy, d.Attempt)
	if err := d.q.publishAt(ctx, d.Message, d.q.now().Add(delay), d.Attempt+1); err != nil {
		_ = d.raw.Nack(false, true)
		return fmt.Errorf("failed to schedule retry: %w", err)
	}

	return d.raw.Ack(false)
}

// Reject moves the job to the DLQ without further attempts.
func (d *Delivery) Reject(ctx context.Context, cause error) error {
	return d.q.deadLetter(ctx, d.raw, cause.Error())
}

// Exhausted reports whether a failed attempt would dead-letter the job.
func (d *Delivery) Exhausted() bool {
	return d.Attempt >= d.q.strategy.Attempts
}

// Backoff returns the wait before the attempt following the given one:
// Delay * Backoff^(attempt-1).
func Backoff(s retry.Strategy, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	factor := s.Backoff
	if factor < 1 {
		factor = 1
	}

	d := float64(s.Delay) * math.Pow(factor, float64(attempt-1))
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(d)
}

// pickStep returns the longest ladder step not exceeding remaining, the
// shortest step when remaining is below all of them, or 0 when the job is due.
func pickStep(steps []time.Duration, remaining time.Duration) time.Duration {
	if remaining <= 0 || len(steps) == 0 {
		return 0
	}

	picked := steps[0]
	for _, s := range steps {
		if s > remaining {
			break
		}
		picked = s
	}

	return picked
}

func sortedSteps(steps []time.Duration) []time.Duration {
	out := make([]time.Duration, 0, len(steps))
	seen := make(map[time.Duration]bool, len(steps))

	for _, s := range steps {
		if s > 0 && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func delayQueueName(prefix string, step time.Duration) string {
	return fmt.Sprintf("%s-%dms", prefix, step.Milliseconds())
}

func headerInt(h amqp.Table, key string, def int) int {
	switch v := h[key].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint8:
		return int(v)
	default:
		return def
	}
}
