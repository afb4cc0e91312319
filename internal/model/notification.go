package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification statuses. A cancelled notification stops its recurrence chain
// at the next delivery attempt.
const (
	NotificationActive    = "active"
	NotificationCancelled = "cancelled"
)

// Schedule entry statuses. An entry moves from pending to sent exactly once.
const (
	SchedulePending = "pending"
	ScheduleSent    = "sent"
)

// Notification represents a notification record together with its delivery history.
type Notification struct {
	ID              uuid.UUID       `json:"id"`               // unique identifier for the notification
	SenderEmail     string          `json:"sender_email"`     // address the message is sent from
	ReceiverEmail   string          `json:"receiver_email"`   // address the message is sent to
	Content         string          `json:"content"`          // message body, wrapped by the delivery template
	Date            string          `json:"date"`             // anchor date, YYYY-MM-DD, optional
	Time            string          `json:"time"`             // anchor time of day, HH:MM, optional
	Future          bool            `json:"future"`           // whether the notification takes part in delayed scheduling
	Recurring       bool            `json:"recurring"`        // whether each delivery schedules the next one
	Frequency       string          `json:"frequency"`        // recurrence interval, e.g. "2 days"
	Status          string          `json:"status"`           // "active" or "cancelled"
	FutureSchedules []ScheduleEntry `json:"future_schedules"` // occurrences in insertion order
	CreatedAt       time.Time       `json:"created_at"`       // timestamp when the notification was created
	UpdatedAt       time.Time       `json:"updated_at"`       // timestamp when the notification was last updated
}

// ScheduleEntry is one concrete occurrence of a notification delivery.
type ScheduleEntry struct {
	ID                uuid.UUID  `json:"id"`
	ScheduledDateTime time.Time  `json:"scheduled_date_time"`
	Priority          int        `json:"priority"` // informational, never used to reorder delivery
	Status            string     `json:"status"`   // "pending" or "sent"
	SentAt            *time.Time `json:"sent_at,omitempty"`
}

// Entry returns the schedule entry with the given id.
func (n *Notification) Entry(id uuid.UUID) (ScheduleEntry, bool) {
	for _, e := range n.FutureSchedules {
		if e.ID == id {
			return e, true
		}
	}

	return ScheduleEntry{}, false
}

// FirstPending returns the index of the first pending entry in insertion order, or -1.
func (n *Notification) FirstPending() int {
	for i, e := range n.FutureSchedules {
		if e.Status == SchedulePending {
			return i
		}
	}

	return -1
}

// OverdueSchedule is a pending entry of an active future notification whose
// scheduled time has passed. One-shot future notifications are included: their
// only job can be lost the same way a continuation can.
type OverdueSchedule struct {
	Notification Notification
	Entry        ScheduleEntry
}
