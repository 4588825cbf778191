package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// DeadLetterStore is the subset of the Redis client used for the dead-letter list.
type DeadLetterStore interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// DeadLetter is the record pushed for a message that exhausted its retries.
type DeadLetter struct {
	MessageID string                 `json:"messageId"`
	Fields    map[string]interface{} `json:"fields"`
	Error     string                 `json:"error"`
	Attempts  int                    `json:"attempts"`
	FailedAt  time.Time              `json:"failedAt"`
}

// RetryHandler retries failed work with exponential backoff and parks messages that keep
// failing on a dead-letter list.
type RetryHandler struct {
	store         DeadLetterStore
	deadLetterKey string
	maxAttempts   int
	baseDelay     time.Duration
	maxDelay      time.Duration
	permanent     []error
	sleep         func(ctx context.Context, d time.Duration) error
}

func NewRetryHandler(store DeadLetterStore, deadLetterKey string, permanent ...error) *RetryHandler {
	return &RetryHandler{
		store:         store,
		deadLetterKey: deadLetterKey,
		maxAttempts:   defaultMaxAttempts,
		baseDelay:     defaultBaseDelay,
		maxDelay:      defaultMaxDelay,
		permanent:     append([]error{ErrInvalidMessage}, permanent...),
		sleep:         sleepContext,
	}
}

// Backoff returns the delay before the given retry (1-based).
func (h *RetryHandler) Backoff(retry int) time.Duration {
	delay := h.baseDelay
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= h.maxDelay {
			return h.maxDelay
		}
	}
	return delay
}

// RetryWithBackoff runs fn until it succeeds, fails permanently or runs out of attempts.
// The last error is returned after the message has been dead-lettered.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var err error
	attempt := 0
	for attempt < h.maxAttempts {
		attempt++
		if err = fn(); err == nil {
			return nil
		}
		if h.isPermanent(err) || ctx.Err() != nil {
			break
		}
		if attempt == h.maxAttempts {
			break
		}

		delay := h.Backoff(attempt)
		log.Warn().
			Err(err).
			Str("message_id", messageID).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Processing failed, retrying")
		if sleepErr := h.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	if ctx.Err() != nil {
		// Leave the entry pending so it is reclaimed after restart
		return err
	}

	if dlqErr := h.deadLetter(ctx, messageID, fields, err, attempt); dlqErr != nil {
		log.Error().Err(dlqErr).Str("message_id", messageID).Msg("Failed to push message to dead-letter list")
		return errors.Join(err, dlqErr)
	}
	return err
}

func (h *RetryHandler) isPermanent(err error) bool {
	for _, target := range h.permanent {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *RetryHandler) deadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error, attempts int) error {
	payload, err := json.Marshal(DeadLetter{
		MessageID: messageID,
		Fields:    fields,
		Error:     cause.Error(),
		Attempts:  attempts,
		FailedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}

	if err := h.store.LPush(ctx, h.deadLetterKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to push dead letter: %w", err)
	}

	log.Error().
		Err(cause).
		Str("message_id", messageID).
		Int("attempts", attempts).
		Str("dead_letter_key", h.deadLetterKey).
		Msg("Message moved to dead-letter list")
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
