package amqp

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const maxBackoff = 30 * time.Second

// exponentialBackoff returns the wait before reconnect attempt n,
// doubling from one second and capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	backoff := time.Second << uint(attempt)
	if backoff <= 0 || backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

// isConnectionError reports whether err looks like a broken broker
// connection worth redialing for, as opposed to a handler failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"channel/connection is not open",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// ConsumeForever runs the consume loop and redials the broker with
// exponential backoff whenever the connection drops. It returns only
// when ctx is cancelled.
func ConsumeForever(ctx context.Context, url, exchange, queue string, prefetch int, handler func(*TransactionMessage) error) error {
	attempt := 0
	for {
		client, err := NewClient(url, exchange, queue)
		if err != nil {
			wait := exponentialBackoff(attempt)
			attempt++
			slog.ErrorContext(ctx, "Failed to connect to AMQP, retrying",
				"error", err,
				"attempt", attempt,
				"backoff", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		attempt = 0
		err = client.ConsumeTransactions(ctx, prefetch, handler)
		client.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) && err != nil {
			return err
		}

		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "AMQP consumption interrupted, reconnecting",
			"error", err,
			"backoff", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
