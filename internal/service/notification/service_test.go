package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/aliskhannn/recurring-notifier/internal/mocks/service/notification"
	"github.com/aliskhannn/recurring-notifier/internal/model"
	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
	repo "github.com/aliskhannn/recurring-notifier/internal/repository/notification"
	"github.com/aliskhannn/recurring-notifier/internal/schedule"
)

var fixedNow = time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MocknotificationRepository, *mocks.MocknotificationQueue, *mocks.Mockcache) {
	repoMock := mocks.NewMocknotificationRepository(ctrl)
	queueMock := mocks.NewMocknotificationQueue(ctrl)
	cacheMock := mocks.NewMockcache(ctrl)

	svc := NewService(repoMock, queueMock, cacheMock, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	return svc, repoMock, queueMock, cacheMock
}

func TestService_CreateNotification_RecurringFuture(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, queueMock, cacheMock := newTestService(ctrl)

	notificationID := uuid.New()
	strategy := retry.Strategy{}
	n := model.Notification{
		SenderEmail:   "clinic@example.com",
		ReceiverEmail: "patient@example.com",
		Content:       "Checkup",
		Date:          "2025-01-01",
		Time:          "09:00",
		Future:        true,
		Recurring:     true,
		Frequency:     "2 Days",
	}

	var entry model.ScheduleEntry
	repoMock.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, got model.Notification) (uuid.UUID, error) {
			assert.Equal(t, "2 days", got.Frequency)
			assert.Equal(t, model.NotificationActive, got.Status)
			require.Len(t, got.FutureSchedules, 1)
			entry = got.FutureSchedules[0]
			return notificationID, nil
		},
	)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), strategy, notificationID.String(), model.NotificationActive).Return(nil)
	queueMock.EXPECT().Enqueue(gomock.Any(), gomock.Any(), time.Hour).DoAndReturn(
		func(_ context.Context, msg queue.NotificationMessage, _ time.Duration) error {
			assert.Equal(t, notificationID, msg.NotificationID)
			assert.Equal(t, entry.ID, msg.ScheduleEntryID)
			assert.NotEqual(t, uuid.Nil, msg.JobID)
			assert.Equal(t, "2025-01-01", msg.Date)
			assert.Equal(t, "09:00", msg.Time)
			assert.Equal(t, "2 days", msg.Frequency)
			return nil
		},
	)

	id, err := svc.CreateNotification(context.Background(), strategy, n)
	require.NoError(t, err)
	assert.Equal(t, notificationID, id)

	assert.Equal(t, model.SchedulePending, entry.Status)
	assert.Equal(t, 0, entry.Priority)
	assert.Equal(t, time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC), entry.ScheduledDateTime)
}

func TestService_CreateNotification_Immediate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, queueMock, cacheMock := newTestService(ctrl)

	notificationID := uuid.New()
	n := model.Notification{
		SenderEmail:   "clinic@example.com",
		ReceiverEmail: "patient@example.com",
		Content:       "Results are ready",
	}

	repoMock.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, got model.Notification) (uuid.UUID, error) {
			assert.Empty(t, got.FutureSchedules)
			return notificationID, nil
		},
	)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), gomock.Any(), notificationID.String(), model.NotificationActive).Return(nil)
	queueMock.EXPECT().Enqueue(gomock.Any(), gomock.Any(), time.Duration(0)).DoAndReturn(
		func(_ context.Context, msg queue.NotificationMessage, _ time.Duration) error {
			assert.Equal(t, uuid.Nil, msg.ScheduleEntryID)
			return nil
		},
	)

	_, err := svc.CreateNotification(context.Background(), retry.Strategy{}, n)
	require.NoError(t, err)
}

func TestService_CreateNotification_PastDateIsDueNow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, queueMock, cacheMock := newTestService(ctrl)

	repoMock.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(uuid.New(), nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	queueMock.EXPECT().Enqueue(gomock.Any(), gomock.Any(), time.Duration(0)).Return(nil)

	_, err := svc.CreateNotification(context.Background(), retry.Strategy{}, model.Notification{
		SenderEmail:   "clinic@example.com",
		ReceiverEmail: "patient@example.com",
		Content:       "Overdue",
		Date:          "2024-12-01",
		Future:        true,
	})
	require.NoError(t, err)
}

func TestService_CreateNotification_InvalidFrequency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, _ := newTestService(ctrl)

	for _, freq := range []string{"", "soon", "0 days", "2days", "every 2 days"} {
		_, err := svc.CreateNotification(context.Background(), retry.Strategy{}, model.Notification{
			Recurring: true,
			Frequency: freq,
		})
		assert.ErrorIs(t, err, ErrInvalidNotification, freq)
		assert.ErrorIs(t, err, schedule.ErrInvalidFrequency, freq)
	}
}

func TestService_CreateNotification_InvalidDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, _ := newTestService(ctrl)

	_, err := svc.CreateNotification(context.Background(), retry.Strategy{}, model.Notification{
		Future: true,
		Date:   "01.02.2025",
	})
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestService_CreateNotification_EnqueueFailureKeepsRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, queueMock, cacheMock := newTestService(ctrl)

	notificationID := uuid.New()
	repoMock.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(notificationID, nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	queueMock.EXPECT().Enqueue(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	id, err := svc.CreateNotification(context.Background(), retry.Strategy{}, model.Notification{Future: true})
	require.NoError(t, err)
	assert.Equal(t, notificationID, id)
}

func TestService_CreateNotification_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, _ := newTestService(ctrl)

	repoMock.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(uuid.Nil, errors.New("db error"))

	_, err := svc.CreateNotification(context.Background(), retry.Strategy{}, model.Notification{})
	assert.Error(t, err)
}

func TestService_GetNotificationStatusByID_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _, cacheMock := newTestService(ctrl)

	id := uuid.New()
	strategy := retry.Strategy{}

	cacheMock.EXPECT().GetWithRetry(gomock.Any(), strategy, id.String()).Return(model.NotificationActive, nil)

	status, err := svc.GetNotificationStatusByID(context.Background(), strategy, id)
	assert.NoError(t, err)
	assert.Equal(t, model.NotificationActive, status)
}

func TestService_GetNotificationStatusByID_CacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, cacheMock := newTestService(ctrl)

	id := uuid.New()
	strategy := retry.Strategy{Attempts: 1}

	// A miss costs one cache round trip and one store read.
	cacheMock.EXPECT().GetWithRetry(gomock.Any(), strategy, id.String()).Return("", redis.Nil).Times(1)
	repoMock.EXPECT().GetNotificationStatusByID(gomock.Any(), id).Return(model.NotificationCancelled, nil).Times(1)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), strategy, id.String(), model.NotificationCancelled).Return(nil)

	status, err := svc.GetNotificationStatusByID(context.Background(), strategy, id)
	assert.NoError(t, err)
	assert.Equal(t, model.NotificationCancelled, status)
}

func TestService_GetNotificationStatusByID_CacheDownFallsBackToRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, cacheMock := newTestService(ctrl)

	id := uuid.New()

	cacheMock.EXPECT().GetWithRetry(gomock.Any(), gomock.Any(), id.String()).Return("", errors.New("redis down"))
	repoMock.EXPECT().GetNotificationStatusByID(gomock.Any(), id).Return(model.NotificationActive, nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), gomock.Any(), id.String(), model.NotificationActive).Return(errors.New("redis down"))

	status, err := svc.GetNotificationStatusByID(context.Background(), retry.Strategy{}, id)
	assert.NoError(t, err)
	assert.Equal(t, model.NotificationActive, status)
}

func TestService_GetNotificationStatusByID_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, cacheMock := newTestService(ctrl)

	id := uuid.New()

	cacheMock.EXPECT().GetWithRetry(gomock.Any(), gomock.Any(), id.String()).Return("", redis.Nil)
	repoMock.EXPECT().GetNotificationStatusByID(gomock.Any(), id).Return("", repo.ErrNotificationNotFound)

	_, err := svc.GetNotificationStatusByID(context.Background(), retry.Strategy{}, id)
	assert.ErrorIs(t, err, repo.ErrNotificationNotFound)
}

func TestService_GetNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, _ := newTestService(ctrl)

	n := model.Notification{ID: uuid.New(), Content: "hello"}
	repoMock.EXPECT().GetNotification(gomock.Any(), n.ID).Return(n, nil)

	got, err := svc.GetNotification(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	missing := uuid.New()
	repoMock.EXPECT().GetNotification(gomock.Any(), missing).Return(model.Notification{}, repo.ErrNotificationNotFound)

	_, err = svc.GetNotification(context.Background(), missing)
	assert.ErrorIs(t, err, repo.ErrNotificationNotFound)
}

func TestService_GetAllNotifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, _ := newTestService(ctrl)

	expected := []model.Notification{
		{ID: uuid.New(), Content: "Hello"},
		{ID: uuid.New(), Content: "World"},
	}

	repoMock.EXPECT().GetAllNotifications(gomock.Any()).Return(expected, nil)

	notifications, err := svc.GetAllNotifications(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, expected, notifications)
}

func TestService_CancelNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, cacheMock := newTestService(ctrl)

	id := uuid.New()
	strategy := retry.Strategy{}

	repoMock.EXPECT().UpdateStatus(gomock.Any(), id, model.NotificationCancelled).Return(nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), strategy, id.String(), model.NotificationCancelled).Return(nil)

	assert.NoError(t, svc.CancelNotification(context.Background(), strategy, id))
}

func TestService_CancelNotification_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repoMock, _, _ := newTestService(ctrl)

	id := uuid.New()
	repoMock.EXPECT().UpdateStatus(gomock.Any(), id, model.NotificationCancelled).Return(repo.ErrNotificationNotFound)

	err := svc.CancelNotification(context.Background(), retry.Strategy{}, id)
	assert.ErrorIs(t, err, repo.ErrNotificationNotFound)
}
