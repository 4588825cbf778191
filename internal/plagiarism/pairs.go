package plagiarism

import (
	"sort"

	"github.com/RishiKendai/foldercheck/internal/project"
)

// Pair is an unordered pair of submissions to compare
type Pair struct {
	A *project.NormalizedProject
	B *project.NormalizedProject
}

// AllPairs returns every unordered pair once, A sorting before B by project id.
func AllPairs(projects []*project.NormalizedProject) []Pair {
	sorted := make([]*project.NormalizedProject, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProjectID < sorted[j].ProjectID
	})

	pairs := make([]Pair, 0, len(sorted)*(len(sorted)-1)/2)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			pairs = append(pairs, Pair{A: sorted[i], B: sorted[j]})
		}
	}
	return pairs
}

// HashIndex maps a concatenated-source hash to the projects sharing it
type HashIndex map[string][]string

// BuildHashIndex indexes projects by concatenated-source hash, keeping only hashes shared
// by two or more projects. Those are byte-identical submissions.
func BuildHashIndex(projects []*project.NormalizedProject) HashIndex {
	index := make(HashIndex)
	for _, p := range projects {
		if p.ConcatenatedHash == nil {
			continue
		}
		index[*p.ConcatenatedHash] = append(index[*p.ConcatenatedHash], p.ProjectID)
	}

	for hash, ids := range index {
		if len(ids) < 2 {
			delete(index, hash)
			continue
		}
		sort.Strings(ids)
	}
	return index
}

// getPairKey creates a sorted key for a pair to avoid duplicates
func getPairKey(id1, id2 string) string {
	if id1 < id2 {
		return id1 + ":" + id2
	}
	return id2 + ":" + id1
}
