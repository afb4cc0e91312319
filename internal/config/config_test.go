package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"
)

func validConfig() Config {
	cfg := Config{
		Storage:    Storage{Driver: "memory"},
		RabbitMQ:   RabbitMQ{DelaySteps: []time.Duration{time.Second, time.Minute}},
		Retry:      retry.Strategy{Attempts: 3, Delay: time.Second, Backoff: 2},
		CacheRetry: retry.Strategy{Attempts: 1},
		Scheduler:  Scheduler{Timezone: "Europe/Moscow"},
	}
	cfg.Workers.Count = 2

	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr bool
	}{
		"valid":             {mutate: func(*Config) {}},
		"no workers":        {mutate: func(c *Config) { c.Workers.Count = 0 }, wantErr: true},
		"unknown storage":   {mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: true},
		"no delay steps":    {mutate: func(c *Config) { c.RabbitMQ.DelaySteps = nil }, wantErr: true},
		"zero delay step":   {mutate: func(c *Config) { c.RabbitMQ.DelaySteps = []time.Duration{0} }, wantErr: true},
		"no attempts":       {mutate: func(c *Config) { c.Retry.Attempts = 0 }, wantErr: true},
		"unknown timezone":  {mutate: func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, wantErr: true},
		"no cache attempts": {mutate: func(c *Config) { c.CacheRetry.Attempts = 0 }, wantErr: true},
		"short cache retry": {mutate: func(c *Config) {
			c.CacheRetry = retry.Strategy{Attempts: 3, Delay: 100 * time.Millisecond, Backoff: 2}
		}},
		"delivery retry on cache": {mutate: func(c *Config) { c.CacheRetry = c.Retry }, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryWait(t *testing.T) {
	assert.Equal(t, 155*time.Second, RetryWait(retry.Strategy{Attempts: 5, Delay: 5 * time.Second, Backoff: 2}))
	assert.Equal(t, time.Duration(0), RetryWait(retry.Strategy{Attempts: 1}))
	assert.Equal(t, 700*time.Millisecond, RetryWait(retry.Strategy{Attempts: 3, Delay: 100 * time.Millisecond, Backoff: 2}))
}

func TestScheduler_LocationDefaultsToUTC(t *testing.T) {
	loc, err := Scheduler{}.Location()
	assert.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestURLAndDSN(t *testing.T) {
	r := RabbitMQ{User: "guest", Password: "secret", Host: "mq", Port: 5672}
	assert.Equal(t, "amqp://guest:secret@mq:5672", r.URL())

	n := DatabaseNode{User: "u", Pass: "p", Host: "db", Port: "5432", Name: "notifier", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/notifier?sslmode=disable", n.DSN())
}
