// Package observer reports delivery outcomes.
//
// Every event is written to the structured log. Events an operator has to act
// on, a dead-lettered job or a stopped recurrence chain, are also sent as
// Telegram alerts when a chat is configured, limited to a steady rate so a
// failing SMTP relay does not flood the chat.
package observer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
)

const alertTimeout = 5 * time.Second

type alertSender interface {
	Send(ctx context.Context, chatID string, msg string) error
}

// Observer is the log and alert sink of the delivery worker.
type Observer struct {
	log     zerolog.Logger
	alerts  alertSender
	chatID  string
	limiter *rate.Limiter
}

// New creates an Observer. alerts may be nil, which disables alerting.
func New(log zerolog.Logger, alerts alertSender, chatID string, ratePerSec float64) *Observer {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &Observer{
		log:     log,
		alerts:  alerts,
		chatID:  chatID,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (o *Observer) event(msg queue.NotificationMessage, level zerolog.Level) *zerolog.Event {
	return o.log.WithLevel(level).
		Str("job_id", msg.JobID.String()).
		Str("notification_id", msg.NotificationID.String()).
		Str("receiver", msg.ReceiverEmail)
}

func (o *Observer) Completed(msg queue.NotificationMessage) {
	o.event(msg, zerolog.InfoLevel).Msg("job completed")
}

func (o *Observer) Dropped(msg queue.NotificationMessage, reason error) {
	o.event(msg, zerolog.InfoLevel).AnErr("reason", reason).Msg("job dropped")
}

func (o *Observer) Failed(msg queue.NotificationMessage, err error) {
	o.event(msg, zerolog.WarnLevel).Err(err).Msg("job failed, will be retried")
}

func (o *Observer) DeadLettered(msg queue.NotificationMessage, err error) {
	o.event(msg, zerolog.ErrorLevel).Err(err).Msg("job dead-lettered")
	o.alert(fmt.Sprintf("Job %s of notification %s moved to DLQ: %v", msg.JobID, msg.NotificationID, err))
}

// ChainStopped records that a recurring notification will not be scheduled again.
func (o *Observer) ChainStopped(msg queue.NotificationMessage, err error) {
	o.event(msg, zerolog.ErrorLevel).
		Err(err).
		Str("frequency", msg.Frequency).
		Msg("recurrence stopped")
	o.alert(fmt.Sprintf("Recurrence of notification %s stopped (frequency %q): %v", msg.NotificationID, msg.Frequency, err))
}

func (o *Observer) alert(text string) {
	if o.alerts == nil || o.chatID == "" {
		return
	}

	if !o.limiter.Allow() {
		o.log.Warn().Msg("alert suppressed by rate limit")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
	defer cancel()

	if err := o.alerts.Send(ctx, o.chatID, text); err != nil {
		o.log.Error().Err(err).Msg("failed to send alert")
	}
}
