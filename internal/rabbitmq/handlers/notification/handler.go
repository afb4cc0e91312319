package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/recurring-notifier/internal/model"
	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
	"github.com/aliskhannn/recurring-notifier/internal/repository/notification"
	"github.com/aliskhannn/recurring-notifier/internal/schedule"
)

var (
	// ErrTransientDelivery wraps mail send failures and send timeouts.
	ErrTransientDelivery = errors.New("transient delivery failure")
	// ErrPersistence wraps record store failures, including a missing record.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidPayload marks jobs that can never succeed.
	ErrInvalidPayload = errors.New("invalid job payload")
)

// Namespaces of the continuation identifiers. A continuation is derived from
// the entry its parent delivered, so every redelivery of the same job, and any
// reconciler job for the same entry, yields the same successor.
var (
	continuationJobNS   = uuid.MustParse("6f1d3c2a-8a47-4c55-9b7e-2f0c3e1a9d10")
	continuationEntryNS = uuid.MustParse("b3e2a9f4-1c6d-4e8b-a0f7-5d9c8e7b6a21")
)

// Outcome tells the worker how to settle a delivery.
type Outcome int

const (
	OutcomeDone   Outcome = iota // delivered, ack
	OutcomeRetry                 // transient failure, redeliver with backoff
	OutcomeDrop                  // nothing to do, ack without delivering
	OutcomeReject                // can never succeed, dead-letter
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeRetry:
		return "retry"
	case OutcomeDrop:
		return "drop"
	case OutcomeReject:
		return "reject"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of one job invocation.
type Result struct {
	Outcome Outcome
	Err     error
	Next    *model.ScheduleEntry // continuation appended by this invocation, if any
}

func done() Result { return Result{Outcome: OutcomeDone} }

func retryLater(err error) Result { return Result{Outcome: OutcomeRetry, Err: err} }

func drop(reason error) Result { return Result{Outcome: OutcomeDrop, Err: reason} }

func reject(err error) Result { return Result{Outcome: OutcomeReject, Err: err} }

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/notification/mock.go -package=mocks

type notificationStore interface {
	GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error)
	MarkScheduleSent(ctx context.Context, notificationID, entryID uuid.UUID) (bool, error)
	AppendSchedule(ctx context.Context, notificationID uuid.UUID, e model.ScheduleEntry) (bool, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, msg queue.NotificationMessage, delay time.Duration) error
}

type mailSender interface {
	Send(ctx context.Context, subject, htmlBody, from, to string) error
}

type chainObserver interface {
	ChainStopped(msg queue.NotificationMessage, err error)
}

// Config holds delivery settings of the handler.
type Config struct {
	Location    *time.Location // zone of the date/time anchor fields
	SendTimeout time.Duration
	Subject     string
}

// Handler runs one delivery job: render, send, record, reschedule.
type Handler struct {
	store    notificationStore
	queue    jobQueue
	mail     mailSender
	observer chainObserver
	validate *validator.Validate
	cfg      Config
	now      func() time.Time
}

// NewHandler creates a delivery handler. The queue handle is the one
// continuation jobs are enqueued to.
func NewHandler(store notificationStore, q jobQueue, mail mailSender, observer chainObserver, cfg Config) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Handler{
		store:    store,
		queue:    q,
		mail:     mail,
		observer: observer,
		validate: validator.New(),
		cfg:      cfg,
		now:      time.Now,
	}
}

var bodyTemplate = template.Must(template.New("notification").Parse(
	`<div style="font-family: sans-serif">` +
		`<p>{{.Content}}</p>` +
		`<hr>` +
		`<p style="color: #666; font-size: 12px">Sent by {{.Sender}}</p>` +
		`</div>`,
))

// Render wraps content with sender attribution.
func Render(content, sender string) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, struct{ Content, Sender string }{content, sender}); err != nil {
		return "", fmt.Errorf("failed to render body: %w", err)
	}

	return buf.String(), nil
}

// HandleMessage processes one job and reports how it must be settled.
func (h *Handler) HandleMessage(ctx context.Context, msg queue.NotificationMessage) Result {
	if err := h.validate.Struct(msg); err != nil {
		return reject(fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}

	log := zlog.Logger.With().
		Str("job_id", msg.JobID.String()).
		Str("notification_id", msg.NotificationID.String()).
		Logger()

	n, err := h.store.GetNotification(ctx, msg.NotificationID)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			log.Warn().Msg("notification record is missing")
		}
		return retryLater(fmt.Errorf("%w: %w", ErrPersistence, err))
	}

	if n.Status == model.NotificationCancelled {
		log.Info().Msg("notification cancelled, dropping job")
		return drop(errors.New("notification cancelled"))
	}

	alreadySent := false
	if msg.ScheduleEntryID != uuid.Nil {
		if e, ok := n.Entry(msg.ScheduleEntryID); ok && e.Status == model.ScheduleSent {
			if !h.resumable(n, msg) {
				log.Info().Msg("occurrence already delivered, dropping duplicate job")
				return drop(errors.New("duplicate job"))
			}
			alreadySent = true
		}
	}

	if !alreadySent {
		body, err := Render(msg.Content, msg.SenderEmail)
		if err != nil {
			return reject(err)
		}

		if err := h.send(ctx, body, msg); err != nil {
			return retryLater(err)
		}

		log.Info().Msg("notification sent")

		if _, err := h.store.MarkScheduleSent(ctx, msg.NotificationID, msg.ScheduleEntryID); err != nil {
			return retryLater(fmt.Errorf("%w: failed to mark entry sent: %w", ErrPersistence, err))
		}
	} else {
		log.Info().Msg("occurrence already delivered, resuming rescheduling")
	}

	if !h.recurs(msg) {
		return done()
	}

	return h.reschedule(ctx, msg)
}

func (h *Handler) recurs(msg queue.NotificationMessage) bool {
	return msg.Recurring && msg.Frequency != ""
}

// resumable reports whether a job whose entry is already sent still has to
// finish rescheduling. That is the case when no continuation entry exists, or
// when a retried attempt appended the continuation but may have failed to
// enqueue its job. A first attempt finding a pending continuation is a
// duplicate: the continuation job is already in flight.
func (h *Handler) resumable(n model.Notification, msg queue.NotificationMessage) bool {
	if !h.recurs(msg) {
		return false
	}

	cont, ok := n.Entry(continuationEntryID(msg))
	if !ok {
		return true
	}

	return cont.Status == model.SchedulePending && msg.Attempt > 1
}

func (h *Handler) send(ctx context.Context, body string, msg queue.NotificationMessage) error {
	if h.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.SendTimeout)
		defer cancel()
	}

	if err := h.mail.Send(ctx, h.cfg.Subject, body, msg.SenderEmail, msg.ReceiverEmail); err != nil {
		return fmt.Errorf("%w: %w", ErrTransientDelivery, err)
	}

	return nil
}

func (h *Handler) reschedule(ctx context.Context, msg queue.NotificationMessage) Result {
	anchor, err := h.anchor(msg)
	if err != nil {
		h.observer.ChainStopped(msg, err)
		return done()
	}

	next, err := schedule.ComputeNextOccurrence(anchor, msg.Frequency)
	if err != nil {
		h.observer.ChainStopped(msg, err)
		return done()
	}

	entry := model.ScheduleEntry{
		ID:                continuationEntryID(msg),
		ScheduledDateTime: next.UTC(),
		Priority:          1,
		Status:            model.SchedulePending,
	}

	cont := msg
	cont.JobID = continuationJobID(msg)
	cont.ScheduleEntryID = entry.ID
	cont.Date = next.Format(schedule.DateLayout)
	cont.Time = next.Format(schedule.TimeLayout)
	cont.Attempt = 0

	delay := next.Sub(h.now())
	if delay < 0 {
		delay = 0
	}

	// The entry must exist before its job can run, or the job would find
	// nothing to mark sent.
	if _, err := h.store.AppendSchedule(ctx, msg.NotificationID, entry); err != nil {
		return retryLater(fmt.Errorf("%w: failed to append schedule entry: %w", ErrPersistence, err))
	}

	if err := h.queue.Enqueue(ctx, cont, delay); err != nil {
		return retryLater(fmt.Errorf("failed to enqueue continuation: %w", err))
	}

	zlog.Logger.Info().
		Str("notification_id", msg.NotificationID.String()).
		Str("entry_id", entry.ID.String()).
		Time("next", next).
		Msg("next occurrence scheduled")

	return Result{Outcome: OutcomeDone, Next: &entry}
}

// anchor builds the occurrence the next one is computed from: the payload date
// (or today) in the configured zone, with the payload time overlaid.
func (h *Handler) anchor(msg queue.NotificationMessage) (time.Time, error) {
	return schedule.Anchor(msg.Date, msg.Time, h.now(), h.cfg.Location)
}

func continuationSeed(msg queue.NotificationMessage) uuid.UUID {
	if msg.ScheduleEntryID != uuid.Nil {
		return msg.ScheduleEntryID
	}

	return msg.JobID
}

func continuationJobID(msg queue.NotificationMessage) uuid.UUID {
	seed := continuationSeed(msg)
	return uuid.NewSHA1(continuationJobNS, seed[:])
}

func continuationEntryID(msg queue.NotificationMessage) uuid.UUID {
	seed := continuationSeed(msg)
	return uuid.NewSHA1(continuationEntryNS, seed[:])
}
