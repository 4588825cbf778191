package plagiarism

import (
	"reflect"
	"testing"

	"github.com/RishiKendai/foldercheck/internal/project"
)

func TestAllPairs(t *testing.T) {
	projects := []*project.NormalizedProject{{ProjectID: "c"}, {ProjectID: "a"}, {ProjectID: "b"}}

	var got [][2]string
	for _, p := range AllPairs(projects) {
		got = append(got, [2]string{p.A.ProjectID, p.B.ProjectID})
	}
	want := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AllPairs = %v, want %v", got, want)
	}

	if n := len(AllPairs(projects[:1])); n != 0 {
		t.Fatalf("single project produced %d pairs", n)
	}
	if n := len(AllPairs(nil)); n != 0 {
		t.Fatalf("no projects produced %d pairs", n)
	}
}

func TestBuildHashIndex(t *testing.T) {
	same := newProject("zed", map[string]string{"main.rs": fibRust})
	twin := newProject("amy", map[string]string{"main.rs": fibRust})
	other := newProject("bo", map[string]string{"main.rs": greetRust})
	text := newProject("cy", map[string]string{"notes.txt": "a\nb\nc\n"})

	index := BuildHashIndex([]*project.NormalizedProject{same, other, twin, text})
	if len(index) != 1 {
		t.Fatalf("index = %v", index)
	}
	if got := index[*same.ConcatenatedHash]; !reflect.DeepEqual(got, []string{"amy", "zed"}) {
		t.Fatalf("identical folders = %v", got)
	}
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	if getPairKey("b", "a") != getPairKey("a", "b") || getPairKey("a", "b") != "a:b" {
		t.Fatal("pair keys differ by argument order")
	}
}
