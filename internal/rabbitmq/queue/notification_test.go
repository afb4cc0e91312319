package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

var ladder = []time.Duration{time.Second, 10 * time.Second, time.Minute, 10 * time.Minute, time.Hour, 24 * time.Hour}

func TestPickStep(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      time.Duration
	}{
		{0, 0},
		{-time.Minute, 0},
		{200 * time.Millisecond, time.Second},
		{time.Second, time.Second},
		{59 * time.Second, 10 * time.Second},
		{90 * time.Minute, time.Hour},
		{30 * 24 * time.Hour, 24 * time.Hour},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pickStep(ladder, tt.remaining), "remaining %s", tt.remaining)
	}
}

func TestPickStep_NeverOvershootsBeyondShortestStep(t *testing.T) {
	for remaining := time.Second; remaining < 48*time.Hour; remaining += 7*time.Minute + 13*time.Second {
		step := pickStep(ladder, remaining)
		assert.LessOrEqual(t, step, remaining)
	}
}

func TestSortedSteps(t *testing.T) {
	got := sortedSteps([]time.Duration{time.Hour, time.Second, 0, time.Hour, time.Minute})
	assert.Equal(t, []time.Duration{time.Second, time.Minute, time.Hour}, got)
}

func TestBackoff(t *testing.T) {
	s := retry.Strategy{Attempts: 5, Delay: 5 * time.Second, Backoff: 2}

	assert.Equal(t, 5*time.Second, Backoff(s, 1))
	assert.Equal(t, 10*time.Second, Backoff(s, 2))
	assert.Equal(t, 40*time.Second, Backoff(s, 4))
	assert.Equal(t, 5*time.Second, Backoff(s, 0))

	flat := retry.Strategy{Attempts: 3, Delay: time.Second}
	assert.Equal(t, time.Second, Backoff(flat, 3))
}

func TestDelayQueueName(t *testing.T) {
	assert.Equal(t, "notify-delay-60000ms", delayQueueName("notify-delay", time.Minute))
}

func TestHeaderInt(t *testing.T) {
	h := amqp.Table{"a": int32(3), "b": int64(1700000000000), "c": "x"}

	assert.Equal(t, 3, headerInt(h, "a", 1))
	assert.Equal(t, 1700000000000, headerInt(h, "b", 0))
	assert.Equal(t, 1, headerInt(h, "c", 1))
	assert.Equal(t, 1, headerInt(nil, "a", 1))
}

func TestDecode(t *testing.T) {
	q := &NotificationQueue{now: time.Now}
	msg := NotificationMessage{
		JobID:          uuid.New(),
		NotificationID: uuid.New(),
		SenderEmail:    "clinic@example.com",
		ReceiverEmail:  "patient@example.com",
		Content:        "hello",
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	due := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())
	d, err := q.decode(amqp.Delivery{
		Body:    body,
		Headers: amqp.Table{headerAttempt: int32(2), headerNotBefore: due.UnixMilli()},
	})
	require.NoError(t, err)
	msg.Attempt = 2
	assert.Equal(t, msg, d.Message)
	assert.Equal(t, 2, d.Attempt)
	assert.Equal(t, msg, d.Payload())
	assert.True(t, due.Equal(d.NotBefore))

	// Jobs published before the attempt header existed count as the first attempt.
	d, err = q.decode(amqp.Delivery{Body: body})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Payload().Attempt)

	_, err = q.decode(amqp.Delivery{Body: []byte("{")})
	assert.Error(t, err)
}

func TestNotificationMessage_Validation(t *testing.T) {
	v := validator.New()

	valid := NotificationMessage{
		JobID:          uuid.New(),
		NotificationID: uuid.New(),
		SenderEmail:    "clinic@example.com",
		ReceiverEmail:  "patient@example.com",
		Content:        "hello",
		Recurring:      true,
		Frequency:      "2 days",
		Date:           "2025-01-01",
		Time:           "09:00",
	}
	assert.NoError(t, v.Struct(valid))

	noFrequency := valid
	noFrequency.Frequency = ""
	assert.Error(t, v.Struct(noFrequency))

	badDate := valid
	badDate.Date = "01/01/2025"
	assert.Error(t, v.Struct(badDate))

	noJob := valid
	noJob.JobID = uuid.Nil
	assert.Error(t, v.Struct(noJob))

	oneOff := valid
	oneOff.Recurring, oneOff.Frequency, oneOff.Date, oneOff.Time = false, "", "", ""
	assert.NoError(t, v.Struct(oneOff))
}
