package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]SourceLanguage{
		"src/main.rs":   LanguageRust,
		"app.py":        LanguagePython,
		"notes.txt":     LanguageText,
		"lib/hello.c":   LanguageText,
		"index.js":      LanguageUnknown,
		"Makefile":      LanguageUnknown,
		"archive.tar.c": LanguageText,
	}
	for name, want := range cases {
		if got := DetectLanguage(name); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestIsConcatenated(t *testing.T) {
	if !IsConcatenated("a.rs", LanguageRust) || !IsConcatenated("a.py", LanguagePython) {
		t.Fatal("rust and python sources must be concatenated")
	}
	if !IsConcatenated("a.c", LanguageText) {
		t.Fatal("c sources must be concatenated")
	}
	if IsConcatenated("a.txt", LanguageText) || IsConcatenated("a.js", LanguageUnknown) {
		t.Fatal("plain text and unknown files must not be concatenated")
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo", 2},
		{"Hello\nWorld\nTest\n", 3},
		{"\n\n", 2},
	}
	for _, tc := range cases {
		if got := CountLines(tc.in); got != tc.want {
			t.Errorf("CountLines(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBuildIgnoreSetReadsLiteralGitignoreLines(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		".gitignore": "# comment\n\nsecrets.txt\n*.tmp\n!keep.txt\n  venv/  \n",
	})

	set, err := BuildIgnoreSet(root)
	if err != nil {
		t.Fatalf("BuildIgnoreSet: %v", err)
	}
	for _, want := range []string{"secrets.txt", "venv/", "target/", "LICENSE"} {
		if _, ok := set[want]; !ok {
			t.Errorf("missing entry %q", want)
		}
	}
	for _, unwanted := range []string{"# comment", "*.tmp", "!keep.txt", ""} {
		if _, ok := set[unwanted]; ok {
			t.Errorf("unexpected entry %q", unwanted)
		}
	}
}

func TestIgnoreSetMatches(t *testing.T) {
	set, err := BuildIgnoreSet(t.TempDir())
	if err != nil {
		t.Fatalf("BuildIgnoreSet: %v", err)
	}
	cases := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"target", true, true},
		{"src/target", true, true},
		{"target_notes.txt", false, false},
		{"src/target.rs", false, false},
		{"node_modules/pkg/index.js", false, true},
		{"README.md", false, true},
		{"LICENSE", false, true},
		{".gitignore", false, false},
		{"src/main.rs", false, false},
	}
	for _, tc := range cases {
		if got := set.Matches(tc.rel, tc.isDir); got != tc.want {
			t.Errorf("Matches(%q, %v) = %v, want %v", tc.rel, tc.isDir, got, tc.want)
		}
	}
}

func TestProcessProjectFolder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/main.rs":           "fn main() {\n    println!(\"hi\");\n}\n",
		"src/util.py":           "def add(a, b):\n    return a + b\n",
		"lib/hello.c":           "int main(void) { return 0; }\n",
		"notes.txt":             "Hello\nWorld\nTest\n",
		"empty.py":              "",
		"README.md":             "# title\n",
		"target/debug/build.rs": "fn skipped() {}\n",
		"node_modules/x/i.js":   "module.exports = {}\n",
		"secret.rs":             "fn hidden() {}\n",
		".gitignore":            "secret.rs\n",
	})
	if err := os.WriteFile(filepath.Join(root, "blob.bin"), []byte{0xff, 0xfe, 0x00, 0x80}, 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ProcessProjectFolder(context.Background(), root, "alice")
	if err != nil {
		t.Fatalf("ProcessProjectFolder: %v", err)
	}

	wantPaths := []string{".gitignore", "empty.py", "lib/hello.c", "notes.txt", "src/main.rs", "src/util.py"}
	if got := p.SortedPaths(); !reflect.DeepEqual(got, wantPaths) {
		t.Fatalf("paths = %v, want %v", got, wantPaths)
	}

	notes := p.Files["notes.txt"]
	if notes.CharLength != 17 || notes.LineCount != 3 || notes.Language != LanguageText {
		t.Fatalf("notes.txt = %+v", notes)
	}
	if empty := p.Files["empty.py"]; empty.CharLength != 0 || empty.LineCount != 0 {
		t.Fatalf("empty.py = %+v", empty)
	}
	if p.Files["src/main.rs"].SHA1 != SHA1Hex(p.Files["src/main.rs"].Content) {
		t.Fatal("file hash does not match content")
	}

	if p.ConcatenatedSource == nil || p.ConcatenatedHash == nil {
		t.Fatal("expected a concatenated source")
	}
	want := strings.Join([]string{
		"",
		"int main(void) { return 0; }\n",
		"fn main() {\n    println!(\"hi\");\n}\n",
		"def add(a, b):\n    return a + b\n",
	}, ConcatSeparator)
	if *p.ConcatenatedSource != want {
		t.Fatalf("concatenation = %q, want %q", *p.ConcatenatedSource, want)
	}
	if *p.ConcatenatedHash != SHA1Hex(want) {
		t.Fatal("concatenation hash mismatch")
	}
}

func TestProcessProjectFolderStripsProjectIDPrefix(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"bob/src/main.rs": "fn main() {}\n",
	})

	p, err := ProcessProjectFolder(context.Background(), root, "bob")
	if err != nil {
		t.Fatalf("ProcessProjectFolder: %v", err)
	}
	if _, ok := p.Files["src/main.rs"]; !ok {
		t.Fatalf("expected src/main.rs, got %v", p.SortedPaths())
	}
}

func TestProcessProjectFolderWithoutSources(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"notes.txt": "just text\n"})

	p, err := ProcessProjectFolder(context.Background(), root, "carol")
	if err != nil {
		t.Fatalf("ProcessProjectFolder: %v", err)
	}
	if p.ConcatenatedSource != nil || p.ConcatenatedHash != nil {
		t.Fatal("plain text must not produce a concatenated source")
	}
}

func TestProcessProjectFolderErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.rs")
	writeFiles(t, root, map[string]string{"file.rs": "fn main() {}\n"})

	if _, err := ProcessProjectFolder(context.Background(), file, "x"); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
	if _, err := ProcessProjectFolder(context.Background(), filepath.Join(root, "missing"), "x"); err == nil {
		t.Fatal("expected an error for a missing directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ProcessProjectFolder(ctx, root, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
