package preprocess

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNoSubmissions is returned when a promotion has nothing to compare.
	ErrNoSubmissions = errors.New("no submissions found")
	// ErrInvalidID is returned for identifiers that would escape the storage root.
	ErrInvalidID = errors.New("invalid identifier")
)

// Service resolves the stored submissions of a project/promotion and lays them out as
// one directory per submission.
//
// Storage layout: <storageRoot>/project-<projectId>/promo-<promotionId>/ holding either
// <name>.zip archives or already-extracted <name>/ directories.
type Service struct {
	storageRoot   string
	extractRoot   string
	maxEntryBytes int64
}

func NewService(storageRoot, extractRoot string, maxEntryBytes int64) *Service {
	return &Service{
		storageRoot:   storageRoot,
		extractRoot:   extractRoot,
		maxEntryBytes: maxEntryBytes,
	}
}

// PromotionDir returns the storage directory of a project/promotion.
func (s *Service) PromotionDir(projectID, promotionID string) (string, error) {
	if err := validateID(projectID); err != nil {
		return "", err
	}
	if err := validateID(promotionID); err != nil {
		return "", err
	}
	return filepath.Join(s.storageRoot, "project-"+projectID, "promo-"+promotionID), nil
}

// Prepare extracts every submission into a fresh working directory and returns it with a
// cleanup func that removes it. A submission that cannot be extracted is skipped.
func (s *Service) Prepare(ctx context.Context, projectID, promotionID, checkID string) (string, func(), error) {
	srcDir, err := s.PromotionDir(projectID, promotionID)
	if err != nil {
		return "", nil, err
	}

	entries, err := os.ReadDir(srcDir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("%w: %s", ErrNoSubmissions, srcDir)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	if s.extractRoot != "" {
		if err := os.MkdirAll(s.extractRoot, 0o755); err != nil {
			return "", nil, fmt.Errorf("failed to create extract root: %w", err)
		}
	}
	workDir, err := os.MkdirTemp(s.extractRoot, "check-"+checkID+"-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn().Err(err).Str("dir", workDir).Msg("Failed to remove working directory")
		}
	}

	prepared := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			cleanup()
			return "", nil, err
		}

		name := entry.Name()
		src := filepath.Join(srcDir, name)
		switch {
		case entry.IsDir():
			err = copyDir(ctx, src, filepath.Join(workDir, name))
		case strings.EqualFold(filepath.Ext(name), ".zip"):
			name = strings.TrimSuffix(name, filepath.Ext(name))
			err = extractZip(ctx, src, filepath.Join(workDir, name), s.maxEntryBytes)
		default:
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				cleanup()
				return "", nil, ctx.Err()
			}
			log.Warn().Err(err).Str("submission", name).Msg("Failed to prepare submission, skipping")
			_ = os.RemoveAll(filepath.Join(workDir, name))
			continue
		}
		prepared++
	}

	if prepared == 0 {
		cleanup()
		return "", nil, fmt.Errorf("%w: %s", ErrNoSubmissions, srcDir)
	}

	log.Info().
		Str("projectId", projectID).
		Str("promotionId", promotionID).
		Int("submissions", prepared).
		Str("dir", workDir).
		Msg("Submissions prepared")

	return workDir, cleanup, nil
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
