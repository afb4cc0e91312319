package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/recurring-notifier/internal/model"
	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
	"github.com/aliskhannn/recurring-notifier/internal/schedule"
)

// ErrInvalidNotification is returned when a notification cannot be created as requested.
var ErrInvalidNotification = errors.New("invalid notification")

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks

type notificationQueue interface {
	Enqueue(ctx context.Context, msg queue.NotificationMessage, delay time.Duration) error
}

type notificationRepository interface {
	CreateNotification(context.Context, model.Notification) (uuid.UUID, error)
	GetNotification(context.Context, uuid.UUID) (model.Notification, error)
	GetNotificationStatusByID(context.Context, uuid.UUID) (string, error)
	UpdateStatus(context.Context, uuid.UUID, string) error
	GetAllNotifications(context.Context) ([]model.Notification, error)
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

type Service struct {
	repo  notificationRepository
	queue notificationQueue
	cache cache
	loc   *time.Location
	now   func() time.Time
}

func NewService(
	repo notificationRepository,
	queue notificationQueue,
	cache cache,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{repo: repo, queue: queue, cache: cache, loc: loc, now: time.Now}
}

// CreateNotification stores the notification and enqueues the job of its
// first occurrence.
//
// A recurring notification must carry a frequency that parses strictly; it is
// stored in canonical form. A future notification gets one pending entry at
// its date and time (now when both are empty); any other notification is
// delivered right away without a schedule entry.
func (s *Service) CreateNotification(ctx context.Context, strategy retry.Strategy, n model.Notification) (uuid.UUID, error) {
	if n.Recurring {
		f, err := schedule.ParseFrequency(n.Frequency)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
		}
		n.Frequency = f.String()
	}

	now := s.now()
	at, err := schedule.Anchor(n.Date, n.Time, now, s.loc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}

	n.Status = model.NotificationActive
	n.FutureSchedules = nil

	var entry model.ScheduleEntry
	if n.Future {
		entry = model.ScheduleEntry{
			ID:                uuid.New(),
			ScheduledDateTime: at.UTC(),
			Status:            model.SchedulePending,
		}
		n.FutureSchedules = []model.ScheduleEntry{entry}
	} else {
		at = now.In(s.loc)
	}

	id, err := s.repo.CreateNotification(ctx, n)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create notification: %w", err)
	}

	err = s.cache.SetWithRetry(ctx, strategy, id.String(), n.Status)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to cache notification")
	}

	msg := queue.NotificationMessage{
		JobID:           uuid.New(),
		NotificationID:  id,
		SenderEmail:     n.SenderEmail,
		ReceiverEmail:   n.ReceiverEmail,
		Content:         n.Content,
		Recurring:       n.Recurring,
		Frequency:       n.Frequency,
		Date:            at.Format(schedule.DateLayout),
		Time:            at.Format(schedule.TimeLayout),
		ScheduleEntryID: entry.ID,
	}

	delay := at.Sub(now)
	if delay < 0 {
		delay = 0
	}

	// The reconciler re-enqueues pending entries whose job never made it.
	if err = s.queue.Enqueue(ctx, msg, delay); err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to enqueue notification")
	}

	return id, nil
}

// GetNotification returns the notification with its schedule history.
func (s *Service) GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return model.Notification{}, fmt.Errorf("get notification: %w", err)
	}

	return n, nil
}

// GetNotificationStatusByID returns the liveness status, reading through the cache.
//
// strategy governs the cache calls only and must stay short: a miss (redis.Nil)
// runs through the same retry loop as a failure before the store is read.
func (s *Service) GetNotificationStatusByID(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (string, error) {
	status, err := s.cache.GetWithRetry(ctx, strategy, id.String())
	if err == nil {
		return status, nil
	}

	if !errors.Is(err, redis.Nil) {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get notification status from cache")
	}

	status, err = s.repo.GetNotificationStatusByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get notification status: %w", err)
	}

	err = s.cache.SetWithRetry(ctx, strategy, id.String(), status)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to cache notification")
	}

	return status, nil
}

func (s *Service) GetAllNotifications(ctx context.Context) ([]model.Notification, error) {
	notifications, err := s.repo.GetAllNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all notifications: %w", err)
	}

	return notifications, nil
}

// CancelNotification stops the recurrence chain. Jobs already in the queue are
// dropped by the worker when they come due.
func (s *Service) CancelNotification(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error {
	err := s.repo.UpdateStatus(ctx, id, model.NotificationCancelled)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}

	err = s.cache.SetWithRetry(ctx, strategy, id.String(), model.NotificationCancelled)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to cache notification")
	}

	return nil
}
