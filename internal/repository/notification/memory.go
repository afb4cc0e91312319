package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/recurring-notifier/internal/model"
)

// MemoryRepository keeps notifications in process memory. It serves local runs
// without Postgres and tests that exercise the worker end to end.
//
// Every record carries its own lock; there is no lock shared across records on
// the mutation paths.
type MemoryRepository struct {
	records sync.Map // uuid.UUID -> *record
	now     func() time.Time
}

type record struct {
	mu sync.Mutex
	n  model.Notification
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) load(id uuid.UUID) (*record, error) {
	v, ok := r.records.Load(id)
	if !ok {
		return nil, ErrNotificationNotFound
	}

	return v.(*record), nil
}

// CreateNotification stores n and returns its ID, assigning one when n.ID is nil.
func (r *MemoryRepository) CreateNotification(_ context.Context, n model.Notification) (uuid.UUID, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	now := r.now()
	n.CreatedAt, n.UpdatedAt = now, now
	n.FutureSchedules = append([]model.ScheduleEntry(nil), n.FutureSchedules...)

	r.records.Store(n.ID, &record{n: n})

	return n.ID, nil
}

// GetNotification returns a copy of the notification.
func (r *MemoryRepository) GetNotification(_ context.Context, id uuid.UUID) (model.Notification, error) {
	rec, err := r.load(id)
	if err != nil {
		return model.Notification{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	return clone(rec.n), nil
}

// GetNotificationStatusByID returns the status of the notification.
func (r *MemoryRepository) GetNotificationStatusByID(_ context.Context, id uuid.UUID) (string, error) {
	rec, err := r.load(id)
	if err != nil {
		return "", err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	return rec.n.Status, nil
}

// GetAllNotifications returns all notifications, newest first, without schedules.
func (r *MemoryRepository) GetAllNotifications(_ context.Context) ([]model.Notification, error) {
	var notifications []model.Notification

	r.records.Range(func(_, v any) bool {
		rec := v.(*record)
		rec.mu.Lock()
		n := rec.n
		n.FutureSchedules = nil
		rec.mu.Unlock()

		notifications = append(notifications, n)
		return true
	})

	if len(notifications) == 0 {
		return nil, ErrNoNotificationsFound
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	return notifications, nil
}

// UpdateStatus sets the notification status.
func (r *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	rec, err := r.load(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.n.Status = status
	rec.n.UpdatedAt = r.now()

	return nil
}

// AppendSchedule adds e to the end of the schedule; a duplicate entry ID is a no-op.
func (r *MemoryRepository) AppendSchedule(_ context.Context, notificationID uuid.UUID, e model.ScheduleEntry) (bool, error) {
	rec, err := r.load(notificationID)
	if err != nil {
		return false, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if _, ok := rec.n.Entry(e.ID); ok {
		return false, nil
	}

	rec.n.FutureSchedules = append(rec.n.FutureSchedules, e)
	rec.n.UpdatedAt = r.now()

	return true, nil
}

// MarkScheduleSent flips the entry, or the first pending one for a nil entryID.
func (r *MemoryRepository) MarkScheduleSent(_ context.Context, notificationID, entryID uuid.UUID) (bool, error) {
	rec, err := r.load(notificationID)
	if err != nil {
		return false, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	idx := -1
	if entryID == uuid.Nil {
		idx = rec.n.FirstPending()
	} else {
		for i, e := range rec.n.FutureSchedules {
			if e.ID == entryID && e.Status == model.SchedulePending {
				idx = i
				break
			}
		}
	}

	if idx < 0 {
		return false, nil
	}

	now := r.now()
	rec.n.FutureSchedules[idx].Status = model.ScheduleSent
	rec.n.FutureSchedules[idx].SentAt = &now
	rec.n.UpdatedAt = now

	return true, nil
}

// ListOverdueSchedules returns pending entries of active future notifications
// scheduled before the given time, oldest first.
func (r *MemoryRepository) ListOverdueSchedules(_ context.Context, before time.Time, limit int) ([]model.OverdueSchedule, error) {
	var overdue []model.OverdueSchedule

	r.records.Range(func(_, v any) bool {
		rec := v.(*record)
		rec.mu.Lock()
		defer rec.mu.Unlock()

		if rec.n.Status != model.NotificationActive || !rec.n.Future {
			return true
		}

		for _, e := range rec.n.FutureSchedules {
			if e.Status == model.SchedulePending && e.ScheduledDateTime.Before(before) {
				n := rec.n
				n.FutureSchedules = nil
				overdue = append(overdue, model.OverdueSchedule{Notification: n, Entry: e})
			}
		}

		return true
	})

	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].Entry.ScheduledDateTime.Before(overdue[j].Entry.ScheduledDateTime)
	})

	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}

	return overdue, nil
}

func clone(n model.Notification) model.Notification {
	n.FutureSchedules = append([]model.ScheduleEntry(nil), n.FutureSchedules...)
	for i, e := range n.FutureSchedules {
		if e.SentAt != nil {
			t := *e.SentAt
			n.FutureSchedules[i].SentAt = &t
		}
	}

	return n
}
