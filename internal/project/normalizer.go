package project

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// ProcessProjectFolder walks root and builds the normalized view of one submission.
//
// Walk errors fail the whole project. Files that cannot be read or are not valid UTF-8
// are skipped with a warning.
func ProcessProjectFolder(ctx context.Context, root, projectID string) (*NormalizedProject, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat project %s: %w", projectID, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	ignore, err := BuildIgnoreSet(root)
	if err != nil {
		return nil, fmt.Errorf("failed to build ignore set for %s: %w", projectID, err)
	}

	project := &NormalizedProject{
		ProjectID: projectID,
		Root:      root,
		Files:     make(map[string]*ProcessedFile),
		Ignore:    ignore,
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if ignore.Matches(rel, d.IsDir()) {
			log.Trace().Str("projectId", projectID).Str("path", rel).Msg("Skipping ignored entry")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		file, ok := readFile(path, stripProjectPrefix(rel, projectID))
		if !ok {
			return nil
		}
		project.Files[file.RelativePath] = file
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk project %s: %w", projectID, err)
	}

	project.ConcatenatedSource, project.ConcatenatedHash = concatenate(project)

	log.Debug().
		Str("projectId", projectID).
		Int("files", len(project.Files)).
		Bool("hasSource", project.ConcatenatedSource != nil).
		Msg("Project normalized")

	return project, nil
}

// stripProjectPrefix drops a leading path component equal to the project id.
func stripProjectPrefix(rel, projectID string) string {
	first, rest, found := strings.Cut(rel, "/")
	if found && first == projectID {
		return rest
	}
	return rel
}

func readFile(path, rel string) (*ProcessedFile, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", rel).Msg("Failed to read file, skipping")
		return nil, false
	}
	if !utf8.Valid(data) {
		log.Warn().Str("path", rel).Msg("File is not valid UTF-8 text, skipping")
		return nil, false
	}

	content := string(data)
	return &ProcessedFile{
		RelativePath: rel,
		Content:      content,
		Language:     DetectLanguage(rel),
		SHA1:         SHA1Hex(content),
		CharLength:   utf8.RuneCountInString(content),
		LineCount:    CountLines(content),
	}, true
}

// concatenate joins source files in path order and hashes the result.
func concatenate(p *NormalizedProject) (*string, *string) {
	parts := make([]string, 0, len(p.Files))
	for _, rel := range p.SortedPaths() {
		file := p.Files[rel]
		if IsConcatenated(rel, file.Language) {
			parts = append(parts, file.Content)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	source := strings.Join(parts, ConcatSeparator)
	hash := SHA1Hex(source)
	return &source, &hash
}

// CountLines counts newline-terminated segments; a trailing segment without a newline counts as a line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// SHA1Hex returns the lower-case hex SHA-1 of s.
func SHA1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
