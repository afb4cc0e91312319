// Package email sends HTML mail over SMTP.
package email

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/mail.v2"
)

const dialTimeout = 10 * time.Second

// Client sends HTML messages through one SMTP relay, at most ratePerSec per second.
type Client struct {
	dialer  *mail.Dialer
	limiter *rate.Limiter
}

// NewClient creates an SMTP client. A non-positive ratePerSec disables the limit.
func NewClient(smtpHost string, smtpPort int, username, password string, ratePerSec float64) *Client {
	dialer := mail.NewDialer(smtpHost, smtpPort, username, password)
	dialer.Timeout = dialTimeout

	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &Client{
		dialer:  dialer,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Send delivers htmlBody from one address to another.
//
// It returns ctx.Err() when ctx ends first; the SMTP exchange may still
// complete in the background, so a timed out send can be a delivered one.
func (c *Client) Send(ctx context.Context, subject, htmlBody, from, to string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	msg := newMessage(subject, htmlBody, from, to)

	done := make(chan error, 1)
	go func() {
		done <- c.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newMessage(subject, htmlBody, from, to string) *mail.Message {
	m := mail.NewMessage()

	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return m
}
