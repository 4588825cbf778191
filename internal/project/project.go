// Package project turns a submission directory into a NormalizedProject: every readable
// text file keyed by its project-relative path, plus a canonical concatenation of the
// recognised source files.
package project

import (
	"errors"
	"sort"
)

// ErrNotDirectory is returned when the submission path is not a directory.
var ErrNotDirectory = errors.New("submission path is not a directory")

// ConcatSeparator joins source files in the concatenated project source.
const ConcatSeparator = "\n\n---FILE_SEPARATOR---\n\n"

// ProcessedFile is one text file of a submission. It is never mutated after normalization.
type ProcessedFile struct {
	RelativePath string         `json:"relativePath" bson:"relativePath"`
	Content      string         `json:"-" bson:"-"`
	Language     SourceLanguage `json:"language" bson:"language"`
	SHA1         string         `json:"sha1" bson:"sha1"`
	CharLength   int            `json:"charLength" bson:"charLength"`
	LineCount    int            `json:"lineCount" bson:"lineCount"`
}

// NormalizedProject is a read-only snapshot of one submission directory.
type NormalizedProject struct {
	ProjectID string
	Root      string
	Files     map[string]*ProcessedFile
	Ignore    IgnoreSet

	// ConcatenatedSource and ConcatenatedHash are nil when the project has no source files.
	ConcatenatedSource *string
	ConcatenatedHash   *string
}

// SortedPaths returns the relative paths of all files in ascending order.
func (p *NormalizedProject) SortedPaths() []string {
	paths := make([]string, 0, len(p.Files))
	for path := range p.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
