package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/foldercheck/internal/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statusTTL = 12 * time.Hour

// StatusStore is the subset of the Redis client used for check status keys.
type StatusStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

var validSteps = map[models.Step]bool{
	models.StepIdle:        true,
	models.StepInitiated:   true,
	models.StepExtracting:  true,
	models.StepNormalizing: true,
	models.StepComparing:   true,
	models.StepCompleted:   true,
	models.StepFailed:      true,
}

// StatusKey is the Redis key holding the current step of a project/promotion check.
func StatusKey(projectID, promotionID string) string {
	return "plagiarism_check_status:" + projectID + ":" + promotionID
}

// ClaimKey is the Redis key reserving a project/promotion for the check that currently owns it.
func ClaimKey(projectID, promotionID string) string {
	return "plagiarism_check_claim:" + projectID + ":" + promotionID
}

// ClaimCheck atomically reserves a project/promotion for a new check. It reports false when
// another check already holds the claim. The claim is dropped when the status reaches a
// terminal step, or by ReleaseCheck.
func ClaimCheck(ctx context.Context, store StatusStore, projectID, promotionID string) (bool, error) {
	claimed, err := store.SetNX(ctx, ClaimKey(projectID, promotionID), "1", statusTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim check in Redis: %w", err)
	}
	return claimed, nil
}

// ReleaseCheck drops a claim taken by ClaimCheck.
func ReleaseCheck(ctx context.Context, store StatusStore, projectID, promotionID string) error {
	if err := store.Del(ctx, ClaimKey(projectID, promotionID)).Err(); err != nil {
		return fmt.Errorf("failed to release check claim in Redis: %w", err)
	}
	return nil
}

func UpdateStatus(ctx context.Context, store StatusStore, projectID, promotionID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := StatusKey(projectID, promotionID)

	err := store.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("projectId", projectID).
			Str("promotionId", promotionID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("redisKey", rkey).
		Msg("Status updated in Redis")

	if step == models.StepCompleted || step == models.StepFailed {
		if err := ReleaseCheck(ctx, store, projectID, promotionID); err != nil {
			log.Warn().Err(err).Str("projectId", projectID).Str("promotionId", promotionID).Msg("Failed to release check claim")
		}
	}

	return nil
}

// GetStatus returns the stored step, or StepIdle when no check has been recorded.
func GetStatus(ctx context.Context, store StatusStore, projectID, promotionID string) (models.Step, error) {
	val, err := store.Get(ctx, StatusKey(projectID, promotionID)).Result()
	if errors.Is(err, goredis.Nil) {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
