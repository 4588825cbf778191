package plagiarism

import (
	"math"
	"reflect"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/RishiKendai/foldercheck/internal/project"
)

const fibRust = `fn fibonacci(n: u64) -> u64 {
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

const sumPython = `def total(values):
    result = 0
    for value in values:
        result += value
    return result
`

const greetRust = `pub fn greet(name: &str) -> String {
    let mut out = String::from("Hello, ");
    out.push_str(name);
    out.push('!');
    out
}
`

// newProject builds a normalized project in memory, concatenating sources the way the normalizer does.
func newProject(id string, files map[string]string) *project.NormalizedProject {
	p := &project.NormalizedProject{ProjectID: id, Files: make(map[string]*project.ProcessedFile)}
	for rel, content := range files {
		p.Files[rel] = &project.ProcessedFile{
			RelativePath: rel,
			Content:      content,
			Language:     project.DetectLanguage(rel),
			SHA1:         project.SHA1Hex(content),
			CharLength:   utf8.RuneCountInString(content),
			LineCount:    project.CountLines(content),
		}
	}

	var parts []string
	for _, rel := range p.SortedPaths() {
		if f := p.Files[rel]; project.IsConcatenated(rel, f.Language) {
			parts = append(parts, f.Content)
		}
	}
	if len(parts) > 0 {
		src := strings.Join(parts, project.ConcatSeparator)
		hash := project.SHA1Hex(src)
		p.ConcatenatedSource, p.ConcatenatedHash = &src, &hash
	}
	return p
}

func pathsA(report *ProjectComparisonReport) []string {
	out := make([]string, 0, len(report.Files))
	for _, f := range report.Files {
		out = append(out, f.PathA)
	}
	sort.Strings(out)
	return out
}

func TestCombinedScoreIsWeightedAverage(t *testing.T) {
	opts := DefaultOptions()
	a := newProject("a", map[string]string{"lib.rs": fibRust, "util.py": sumPython})
	b := newProject("b", map[string]string{
		"lib.rs":  strings.Replace(fibRust, "let next = a + b;", "let tmp = a + b + 0;", 1),
		"util.py": sumPython,
	})

	report := CompareNormalizedProjects(a, b, opts)
	if len(report.Files) != 2 {
		t.Fatalf("expected 2 file results, got %d", len(report.Files))
	}
	for _, f := range report.Files {
		want := f.Moss.Similarity*0.6 + f.Bytes.Similarity*0.4
		if math.Abs(f.CombinedScore-want) > 1e-9 {
			t.Errorf("%s: combined %v, want %v", f.PathA, f.CombinedScore, want)
		}
	}

	if got := opts.CombinedScore(0.5, 0.25); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("CombinedScore(0.5, 0.25) = %v", got)
	}
	if got := (Options{}).CombinedScore(1, 1); got != 0 {
		t.Fatalf("zero weights should score 0, got %v", got)
	}
}

func TestFilesWithoutCounterpartAreNotCompared(t *testing.T) {
	a := newProject("a", map[string]string{"main.rs": fibRust, "only_here.py": sumPython})
	b := newProject("b", map[string]string{"other.rs": fibRust, "notes.txt": "line one\nline two\nline three\n"})

	report := CompareNormalizedProjects(a, b, DefaultOptions())
	if got := pathsA(report); !reflect.DeepEqual(got, []string{"main.rs"}) {
		t.Fatalf("compared files = %v, want [main.rs]", got)
	}
	if report.Files[0].PathB != "other.rs" {
		t.Fatalf("main.rs paired with %s", report.Files[0].PathB)
	}
	for _, f := range report.Files {
		if f.PathB == "notes.txt" {
			t.Fatal("B-only file appeared in a result")
		}
	}
}

func TestEligibilityHeuristics(t *testing.T) {
	opts := DefaultOptions()
	cases := []struct {
		name string
		a, b string
	}{
		{"a too short", "fn a() {}\n\n\n", fibRust},
		{"b too few lines", fibRust, strings.Repeat("x", 60) + "\n"},
		{"length ratio", "fn a() {\n    1 + 1;\n}\n", strings.Repeat(fibRust, 12)},
	}
	for _, tc := range cases {
		a := newProject("a", map[string]string{"f.rs": tc.a})
		b := newProject("b", map[string]string{"f.rs": tc.b})
		if report := CompareNormalizedProjects(a, b, opts); len(report.Files) != 0 {
			t.Errorf("%s: pair should have been skipped, got %+v", tc.name, report.Files)
		}
	}
}

func TestBestCandidateWins(t *testing.T) {
	a := newProject("a", map[string]string{"src/lib.rs": fibRust})
	b := newProject("b", map[string]string{
		"a_greet.rs": greetRust,
		"z_fib.rs":   fibRust,
	})

	report := CompareNormalizedProjects(a, b, DefaultOptions())
	if len(report.Files) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Files))
	}
	got := report.Files[0]
	if got.PathB != "z_fib.rs" || got.CombinedScore != 1.0 {
		t.Fatalf("best match = %s (%v), want z_fib.rs (1.0)", got.PathB, got.CombinedScore)
	}
	if got.CharLength != utf8.RuneCountInString(fibRust) || got.LineCount != 10 {
		t.Fatalf("A-side metadata = %d chars, %d lines", got.CharLength, got.LineCount)
	}
}

func TestHighConfidenceMatchConsumesCandidate(t *testing.T) {
	a := newProject("a", map[string]string{"a1.rs": fibRust, "a2.rs": fibRust})
	b := newProject("b", map[string]string{"b.rs": fibRust})

	report := CompareNormalizedProjects(a, b, DefaultOptions())
	if got := pathsA(report); !reflect.DeepEqual(got, []string{"a1.rs"}) {
		t.Fatalf("results for %v, want only a1.rs", got)
	}

	// Below the threshold nothing is consumed.
	opts := DefaultOptions()
	opts.HighConfidence = 1.0
	report = CompareNormalizedProjects(a, b, opts)
	if got := pathsA(report); !reflect.DeepEqual(got, []string{"a1.rs", "a2.rs"}) {
		t.Fatalf("results for %v, want both files", got)
	}
}

func TestHighConfidenceConsumesOnlyBestPartner(t *testing.T) {
	extended := fibRust + "// done\n"
	a := newProject("a", map[string]string{"x.rs": fibRust, "y.rs": extended})
	b := newProject("b", map[string]string{"x.rs": fibRust, "y.rs": extended})

	report := CompareNormalizedProjects(a, b, DefaultOptions())
	if len(report.Files) != 2 {
		t.Fatalf("expected a result per A file, got %+v", report.Files)
	}
	for _, f := range report.Files {
		if f.PathA != f.PathB || f.CombinedScore != 1.0 {
			t.Errorf("%s paired with %s (%v), want its own copy at 1.0", f.PathA, f.PathB, f.CombinedScore)
		}
	}
}

func TestShortUnrelatedFilesScoreZero(t *testing.T) {
	a := newProject("a", map[string]string{"x.py": "ab cd ef\ngh ij kl\nmn\n"})
	b := newProject("b", map[string]string{"x.py": "qr st uv\nwx yz zz\nyy\n"})

	report := CompareNormalizedProjects(a, b, DefaultOptions())
	if len(report.Files) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Files))
	}
	got := report.Files[0]
	if got.Bytes.Similarity != 0 || got.Moss.Similarity != 0 || got.CombinedScore != 0 {
		t.Fatalf("unrelated short files scored %+v", got)
	}
	if flags := Flags(got.Moss.Similarity*100, got.Bytes.Similarity*100); len(flags) != 0 {
		t.Fatalf("flags = %v", flags)
	}
}

func TestIgnoredFilesAreExcluded(t *testing.T) {
	a := newProject("a", map[string]string{"main.rs": fibRust, "generated.rs": greetRust})
	a.Ignore = project.IgnoreSet{"generated": {}}
	b := newProject("b", map[string]string{"main.rs": fibRust, "generated.rs": greetRust})

	report := CompareNormalizedProjects(a, b, DefaultOptions())
	if got := pathsA(report); !reflect.DeepEqual(got, []string{"main.rs"}) {
		t.Fatalf("compared %v, want [main.rs]", got)
	}
}

func TestWholeProjectComparison(t *testing.T) {
	a := newProject("a", map[string]string{"main.rs": fibRust})
	b := newProject("b", map[string]string{"main.rs": fibRust})

	report := CompareNormalizedProjects(a, b, DefaultOptions())
	if report.WholeMoss == nil || report.WholeByte == nil {
		t.Fatal("expected whole-project results")
	}
	if report.WholeMoss.Similarity != 1.0 || report.WholeByte.Similarity != 1.0 {
		t.Fatalf("whole project = %v / %v", report.WholeMoss.Similarity, report.WholeByte.Similarity)
	}

	textOnly := newProject("c", map[string]string{"notes.txt": "one\ntwo\nthree\nfour\n"})
	report = CompareNormalizedProjects(a, textOnly, DefaultOptions())
	if report.WholeMoss != nil || report.WholeByte != nil {
		t.Fatal("whole-project results require both concatenations")
	}

	tiny := newProject("d", map[string]string{"x.py": "a\nb\n"})
	report = CompareNormalizedProjects(a, tiny, DefaultOptions())
	if report.WholeMoss != nil {
		t.Fatal("whole-project results require the minimum length")
	}
}

func TestCompareIsDeterministic(t *testing.T) {
	files := map[string]string{
		"a.rs": fibRust, "b.rs": greetRust, "c.rs": fibRust + greetRust, "d.py": sumPython,
	}
	a := newProject("a", files)
	b := newProject("b", files)

	first := CompareNormalizedProjects(a, b, DefaultOptions())
	for i := 0; i < 5; i++ {
		if again := CompareNormalizedProjects(a, b, DefaultOptions()); !reflect.DeepEqual(first, again) {
			t.Fatal("comparison results differ between runs")
		}
	}
}
