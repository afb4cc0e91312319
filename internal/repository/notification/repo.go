package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/recurring-notifier/internal/model"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoNotificationsFound = errors.New("no notifications found")
)

// Repository provides methods to interact with the notifications and
// notification_schedules tables.
//
// Schedule mutations are single conditional statements on one schedule row,
// so concurrent deliveries of different notifications never contend.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

const notificationColumns = `
	id, sender_email, receiver_email, content, date, time,
	future, recurring, frequency, status, created_at, updated_at`

// CreateNotification inserts a notification and its initial schedule entries
// in one transaction and returns the notification ID.
func (r *Repository) CreateNotification(ctx context.Context, n model.Notification) (uuid.UUID, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO notifications (
		    sender_email, receiver_email, content, date, time, future, recurring, frequency, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id;
    `

	err = tx.QueryRowContext(
		ctx, query, n.SenderEmail, n.ReceiverEmail, n.Content, n.Date, n.Time,
		n.Future, n.Recurring, n.Frequency, n.Status,
	).Scan(&n.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create notification: %w", err)
	}

	for _, e := range n.FutureSchedules {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notification_schedules (id, notification_id, scheduled_at, priority, status)
			VALUES ($1, $2, $3, $4, $5);
		`, e.ID, n.ID, e.ScheduledDateTime, e.Priority, e.Status)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create schedule entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit notification: %w", err)
	}

	return n.ID, nil
}

// GetNotification retrieves a notification with its schedule entries in insertion order.
//
// It always reads from the master: the worker must not mistake replica lag for a
// deleted record.
func (r *Repository) GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	query := `SELECT` + notificationColumns + `
		FROM notifications
		WHERE id = $1;
    `

	n, err := scanNotification(r.db.Master.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	rows, err := r.db.Master.QueryContext(ctx, `
		SELECT id, scheduled_at, priority, status, sent_at
		FROM notification_schedules
		WHERE notification_id = $1
		ORDER BY seq;
	`, id)
	if err != nil {
		return model.Notification{}, fmt.Errorf("failed to get schedule entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e      model.ScheduleEntry
			sentAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.ScheduledDateTime, &e.Priority, &e.Status, &sentAt); err != nil {
			return model.Notification{}, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		if sentAt.Valid {
			e.SentAt = &sentAt.Time
		}

		n.FutureSchedules = append(n.FutureSchedules, e)
	}

	if err := rows.Err(); err != nil {
		return model.Notification{}, fmt.Errorf("failed to read schedule entries: %w", err)
	}

	return n, nil
}

// GetNotificationStatusByID retrieves the status of a notification by its ID.
func (r *Repository) GetNotificationStatusByID(ctx context.Context, id uuid.UUID) (string, error) {
	query := `
		SELECT status
		FROM notifications
		WHERE id = $1;
    `

	var status string
	err := r.db.Master.QueryRowContext(ctx, query, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotificationNotFound
		}

		return "", fmt.Errorf("failed to get notification status: %w", err)
	}

	return status, nil
}

// GetAllNotifications retrieves all notifications ordered by creation time descending.
// Schedule entries are not loaded.
func (r *Repository) GetAllNotifications(ctx context.Context) ([]model.Notification, error) {
	query := `SELECT` + notificationColumns + `
		FROM notifications
		ORDER BY created_at DESC;
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	if len(notifications) == 0 {
		return nil, ErrNoNotificationsFound
	}

	return notifications, nil
}

// UpdateStatus updates the status of a notification by its ID.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE notifications
		SET status = $1, updated_at = now()
		WHERE id = $2;
    `

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// AppendSchedule adds an entry to the end of a notification's schedule.
//
// Appending an entry whose ID already exists is a no-op and reports false.
func (r *Repository) AppendSchedule(ctx context.Context, notificationID uuid.UUID, e model.ScheduleEntry) (bool, error) {
	query := `
		INSERT INTO notification_schedules (id, notification_id, scheduled_at, priority, status)
		SELECT $1, n.id, $3, $4, $5
		FROM notifications n
		WHERE n.id = $2
		ON CONFLICT (id) DO NOTHING;
    `

	res, err := r.db.ExecContext(ctx, query, e.ID, notificationID, e.ScheduledDateTime, e.Priority, e.Status)
	if err != nil {
		return false, fmt.Errorf("failed to append schedule entry: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows > 0 {
		return true, nil
	}

	if err := r.exists(ctx, notificationID); err != nil {
		return false, err
	}

	return false, nil
}

// MarkScheduleSent flips one pending entry to sent and reports whether it did.
//
// A nil entryID selects the first pending entry in insertion order. Finding no
// matching pending entry is not an error, so redelivered jobs stay harmless.
func (r *Repository) MarkScheduleSent(ctx context.Context, notificationID, entryID uuid.UUID) (bool, error) {
	var (
		res sql.Result
		err error
	)

	if entryID == uuid.Nil {
		res, err = r.db.ExecContext(ctx, `
			UPDATE notification_schedules
			SET status = 'sent', sent_at = now()
			WHERE id = (
			    SELECT id FROM notification_schedules
			    WHERE notification_id = $1 AND status = 'pending'
			    ORDER BY seq
			    LIMIT 1
			    FOR UPDATE
			) AND status = 'pending';
		`, notificationID)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE notification_schedules
			SET status = 'sent', sent_at = now()
			WHERE notification_id = $1 AND id = $2 AND status = 'pending';
		`, notificationID, entryID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to mark schedule entry sent: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows > 0, nil
}

// ListOverdueSchedules returns pending entries of active future notifications
// scheduled before the given time, oldest first.
func (r *Repository) ListOverdueSchedules(ctx context.Context, before time.Time, limit int) ([]model.OverdueSchedule, error) {
	query := `
		SELECT n.id, n.sender_email, n.receiver_email, n.content, n.date, n.time,
		       n.future, n.recurring, n.frequency, n.status, n.created_at, n.updated_at,
		       s.id, s.scheduled_at, s.priority, s.status
		FROM notification_schedules s
		JOIN notifications n ON n.id = s.notification_id
		WHERE s.status = 'pending' AND s.scheduled_at < $1
		  AND n.status = 'active' AND n.future
		ORDER BY s.scheduled_at
		LIMIT $2;
    `

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue schedules: %w", err)
	}
	defer rows.Close()

	var overdue []model.OverdueSchedule
	for rows.Next() {
		var o model.OverdueSchedule
		n := &o.Notification
		err := rows.Scan(
			&n.ID, &n.SenderEmail, &n.ReceiverEmail, &n.Content, &n.Date, &n.Time,
			&n.Future, &n.Recurring, &n.Frequency, &n.Status, &n.CreatedAt, &n.UpdatedAt,
			&o.Entry.ID, &o.Entry.ScheduledDateTime, &o.Entry.Priority, &o.Entry.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue schedule: %w", err)
		}

		overdue = append(overdue, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read overdue schedules: %w", err)
	}

	return overdue, nil
}

func (r *Repository) exists(ctx context.Context, id uuid.UUID) error {
	var ok bool
	err := r.db.Master.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1);`, id).Scan(&ok)
	if err != nil {
		return fmt.Errorf("failed to check notification: %w", err)
	}

	if !ok {
		return ErrNotificationNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(s scanner) (model.Notification, error) {
	var n model.Notification
	err := s.Scan(
		&n.ID, &n.SenderEmail, &n.ReceiverEmail, &n.Content, &n.Date, &n.Time,
		&n.Future, &n.Recurring, &n.Frequency, &n.Status, &n.CreatedAt, &n.UpdatedAt,
	)

	return n, err
}
