package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RishiKendai/foldercheck/internal/models"
)

const sample = `fn fibonacci(n: u64) -> u64 {
    let mut a = 0;
    let mut b = 1;
    for _ in 0..n {
        let next = a + b;
        a = b;
        b = next;
    }
    a
}
`

func writeSubmissions(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	files := map[string]string{
		"alice/src/main.rs": sample,
		"bob/main.rs":       sample,
		"carol/main.py":     "def total(values):\n    return sum(values)\n\nprint(total([1, 2, 3]))\n",
	}
	for rel, content := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-dir", writeSubmissions(t), "-json", "-files", "-log-level", "error"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var report models.CheckReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if report.PairsCompared != 3 || len(report.FolderResults) != 3 {
		t.Fatalf("report = %+v", report)
	}
	alice := report.FolderResults[0]
	if alice.FolderName != "alice" || alice.PlagiarismPercentage != 100 || alice.Matches[0].MatchedFolder != "bob" {
		t.Fatalf("alice = %+v", alice)
	}
	if len(alice.Matches[0].FileComparisons) != 1 {
		t.Fatalf("file comparisons = %+v", alice.Matches[0].FileComparisons)
	}
}

func TestRunText(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-dir", writeSubmissions(t), "-log-level", "error"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"alice", "bob", "carol", "VERY_HIGH_SIMILARITY"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
}

func TestRunFind(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-dir", writeSubmissions(t), "-find", "let next = a + b;", "-log-level", "error"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"alice/src/main.rs: 96", "bob/main.rs: 96", "2 occurrences"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestRunRequiresDir(t *testing.T) {
	if err := run([]string{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error without -dir")
	}
}
