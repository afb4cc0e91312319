package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/recurring-notifier/internal/model"
)

// Store is the record store contract shared by the Postgres and in-memory repositories.
type Store interface {
	CreateNotification(ctx context.Context, n model.Notification) (uuid.UUID, error)
	GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error)
	GetNotificationStatusByID(ctx context.Context, id uuid.UUID) (string, error)
	GetAllNotifications(ctx context.Context) ([]model.Notification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AppendSchedule(ctx context.Context, notificationID uuid.UUID, e model.ScheduleEntry) (bool, error)
	MarkScheduleSent(ctx context.Context, notificationID, entryID uuid.UUID) (bool, error)
	ListOverdueSchedules(ctx context.Context, before time.Time, limit int) ([]model.OverdueSchedule, error)
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryRepository)(nil)
)
