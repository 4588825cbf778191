package project

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// defaultIgnores are matched as substrings of the root-relative path. Directory
// entries carry a trailing separator so that "target/" does not hit "target.rs".
var defaultIgnores = []string{
	"target/",
	"node_modules/",
	"dist/",
	"build/",
	".next/",
	".git/",
	".svn/",
	".hg/",
	".idea/",
	".vscode/",
	".github/",
	".exe",
	".DS_Store",
	".dll",
	".lock",
	".log",
	".zip",
	".md",
	"LICENSE",
}

// IgnoreSet holds path fragments; any path containing one of them is skipped.
type IgnoreSet map[string]struct{}

// BuildIgnoreSet returns the default ignore entries plus the literal lines of the
// project's root .gitignore. Comments, blank lines, globs and negations are not supported
// and are dropped.
func BuildIgnoreSet(root string) (IgnoreSet, error) {
	set := make(IgnoreSet, len(defaultIgnores))
	for _, entry := range defaultIgnores {
		set[entry] = struct{}{}
	}

	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if errors.Is(err, fs.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open .gitignore: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.ContainsAny(line, "*!") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	return set, nil
}

// Matches reports whether rel (slash-separated, relative to the project root) is ignored.
// Directories are tested with a trailing slash.
func (s IgnoreSet) Matches(rel string, isDir bool) bool {
	candidate := "/" + strings.TrimPrefix(rel, "/")
	if isDir {
		candidate += "/"
	}
	for entry := range s {
		if strings.Contains(candidate, entry) {
			return true
		}
	}
	return false
}

// Entries returns the set's fragments in sorted order.
func (s IgnoreSet) Entries() []string {
	entries := make([]string, 0, len(s))
	for entry := range s {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return entries
}
