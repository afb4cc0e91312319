package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/recurring-notifier/internal/config"
	"github.com/aliskhannn/recurring-notifier/internal/model"
	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
	repo "github.com/aliskhannn/recurring-notifier/internal/repository/notification"
)

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type recordingQueue struct {
	jobs   []queue.NotificationMessage
	delays []time.Duration
	err    error
}

func (q *recordingQueue) Enqueue(_ context.Context, msg queue.NotificationMessage, delay time.Duration) error {
	if q.err != nil {
		return q.err
	}

	q.jobs = append(q.jobs, msg)
	q.delays = append(q.delays, delay)

	return nil
}

func seed(t *testing.T, store *repo.MemoryRepository, status string, at time.Time, entryStatus string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	return seedNotification(t, store, true, status, at, entryStatus)
}

func seedNotification(t *testing.T, store *repo.MemoryRepository, recurring bool, status string, at time.Time, entryStatus string) (uuid.UUID, uuid.UUID) {
	t.Helper()

	frequency := ""
	if recurring {
		frequency = "1 day"
	}

	entryID := uuid.New()
	id, err := store.CreateNotification(context.Background(), model.Notification{
		SenderEmail:   "clinic@example.com",
		ReceiverEmail: "patient@example.com",
		Content:       "Take your pills",
		Future:        true,
		Recurring:     recurring,
		Frequency:     frequency,
		Status:        status,
		FutureSchedules: []model.ScheduleEntry{
			{ID: entryID, ScheduledDateTime: at, Priority: 1, Status: entryStatus},
		},
	})
	require.NoError(t, err)

	return id, entryID
}

func newReconciler(store *repo.MemoryRepository, q *recordingQueue, loc *time.Location) *Reconciler {
	r := New(store, q, config.Reconciler{Spec: "@every 10m", Grace: time.Hour, BatchSize: 10}, loc)
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestReconciler_SweepEnqueuesOverdueEntries(t *testing.T) {
	store := repo.NewMemoryRepository()
	q := &recordingQueue{}

	id, entryID := seed(t, store, model.NotificationActive, fixedNow.Add(-3*time.Hour), model.SchedulePending)

	// Inside the grace period, sent, or cancelled: left alone.
	seed(t, store, model.NotificationActive, fixedNow.Add(-30*time.Minute), model.SchedulePending)
	seed(t, store, model.NotificationActive, fixedNow.Add(-5*time.Hour), model.ScheduleSent)
	seed(t, store, model.NotificationCancelled, fixedNow.Add(-5*time.Hour), model.SchedulePending)

	n, err := newReconciler(store, q, time.UTC).Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	job := q.jobs[0]
	assert.Equal(t, id, job.NotificationID)
	assert.Equal(t, entryID, job.ScheduleEntryID)
	assert.NotEqual(t, uuid.Nil, job.JobID)
	assert.Equal(t, "2025-01-01", job.Date)
	assert.Equal(t, "09:00", job.Time)
	assert.Equal(t, "1 day", job.Frequency)
	assert.Equal(t, time.Duration(0), q.delays[0])
}

func TestReconciler_SweepIncludesOneShotFutureNotifications(t *testing.T) {
	store := repo.NewMemoryRepository()
	q := &recordingQueue{}

	id, entryID := seedNotification(t, store, false, model.NotificationActive, fixedNow.Add(-2*time.Hour), model.SchedulePending)

	n, err := newReconciler(store, q, time.UTC).Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	assert.Equal(t, id, q.jobs[0].NotificationID)
	assert.Equal(t, entryID, q.jobs[0].ScheduleEntryID)
	assert.False(t, q.jobs[0].Recurring)
	assert.Empty(t, q.jobs[0].Frequency)
}

func TestReconciler_SweepUsesLocation(t *testing.T) {
	store := repo.NewMemoryRepository()
	q := &recordingQueue{}
	loc := time.FixedZone("UTC+3", 3*60*60)

	seed(t, store, model.NotificationActive, fixedNow.Add(-3*time.Hour), model.SchedulePending)

	_, err := newReconciler(store, q, loc).Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, q.jobs, 1)

	assert.Equal(t, "12:00", q.jobs[0].Time)
}

func TestReconciler_SweepFreshJobIDs(t *testing.T) {
	store := repo.NewMemoryRepository()
	q := &recordingQueue{}
	r := newReconciler(store, q, time.UTC)

	seed(t, store, model.NotificationActive, fixedNow.Add(-3*time.Hour), model.SchedulePending)

	_, err := r.Sweep(context.Background())
	require.NoError(t, err)
	_, err = r.Sweep(context.Background())
	require.NoError(t, err)

	require.Len(t, q.jobs, 2)
	assert.NotEqual(t, q.jobs[0].JobID, q.jobs[1].JobID)
	assert.Equal(t, q.jobs[0].ScheduleEntryID, q.jobs[1].ScheduleEntryID)
}

func TestReconciler_SweepEnqueueError(t *testing.T) {
	store := repo.NewMemoryRepository()
	q := &recordingQueue{err: errors.New("broker down")}

	seed(t, store, model.NotificationActive, fixedNow.Add(-3*time.Hour), model.SchedulePending)

	n, err := newReconciler(store, q, time.UTC).Sweep(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestReconciler_RunInvalidSpec(t *testing.T) {
	r := New(repo.NewMemoryRepository(), &recordingQueue{}, config.Reconciler{Spec: "every now and then"}, nil)

	err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	r := New(repo.NewMemoryRepository(), &recordingQueue{}, config.Reconciler{Spec: "@every 1h"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop")
	}
}
