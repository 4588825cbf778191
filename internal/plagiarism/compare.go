package plagiarism

import (
	"unicode/utf8"

	"github.com/RishiKendai/foldercheck/internal/fingerprint"
	"github.com/RishiKendai/foldercheck/internal/project"
	"github.com/rs/zerolog/log"
)

// Options holds the eligibility thresholds and algorithm parameters of a comparison.
type Options struct {
	MinCharLength  int
	MinLineCount   int
	MaxLengthRatio float64

	MossK      int
	MossWindow int
	ByteK      int

	MossWeight float64
	ByteWeight float64
	// HighConfidence is the combined score (0..1) above which a file pair is consumed.
	HighConfidence float64
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{
		MinCharLength:  20,
		MinLineCount:   3,
		MaxLengthRatio: 10,
		MossK:          fingerprint.DefaultMossK,
		MossWindow:     fingerprint.DefaultMossWindow,
		ByteK:          fingerprint.DefaultByteK,
		MossWeight:     0.6,
		ByteWeight:     0.4,
		HighConfidence: 0.8,
	}
}

// CombinedScore blends the two similarity scores by weight, normalised by the weight sum.
func (o Options) CombinedScore(moss, bytes float64) float64 {
	total := o.MossWeight + o.ByteWeight
	if total == 0 {
		return 0
	}
	return (moss*o.MossWeight + bytes*o.ByteWeight) / total
}

// eligible applies the size, line and length-ratio heuristics to a candidate pair.
func (o Options) eligible(a, b *project.ProcessedFile) bool {
	if a.CharLength < o.MinCharLength || b.CharLength < o.MinCharLength {
		return false
	}
	if a.LineCount < o.MinLineCount || b.LineCount < o.MinLineCount {
		return false
	}

	short, long := float64(a.CharLength), float64(b.CharLength)
	if short > long {
		short, long = long, short
	}
	if short > 0 && long/short > o.MaxLengthRatio {
		return false
	}
	return true
}

// FileComparisonResult is the best-matching B file for one file of project A.
type FileComparisonResult struct {
	PathA         string                 `json:"file1Path"`
	PathB         string                 `json:"file2Path"`
	Moss          fingerprint.MossResult `json:"mossResult"`
	Bytes         fingerprint.ByteResult `json:"rabinKarpResult"`
	CombinedScore float64                `json:"combinedScore"`
	CharLength    int                    `json:"charLength"`
	LineCount     int                    `json:"lineCount"`
}

// ProjectComparisonReport is the outcome of comparing two normalized projects.
type ProjectComparisonReport struct {
	ProjectA  string                  `json:"project1Id"`
	ProjectB  string                  `json:"project2Id"`
	Files     []FileComparisonResult  `json:"fileToFileComparisons"`
	WholeMoss *fingerprint.MossResult `json:"wholeProjectMossResult,omitempty"`
	WholeByte *fingerprint.ByteResult `json:"wholeProjectRabinKarpResult,omitempty"`
}

// CompareNormalizedProjects pairs every eligible file of a with same-extension files of b,
// keeps the best candidate per A file and compares the concatenated sources.
//
// Files are visited in path order. All bookkeeping is local to the call, so many pairs may be
// compared concurrently over the same projects.
func CompareNormalizedProjects(a, b *project.NormalizedProject, opts Options) *ProjectComparisonReport {
	report := &ProjectComparisonReport{
		ProjectA: a.ProjectID,
		ProjectB: b.ProjectID,
		Files:    []FileComparisonResult{},
	}

	ignore := ignoreSetFor(a)
	pathsB := b.SortedPaths()
	// Each A file is scanned once, so only B files need consumption tracking.
	consumed := make(map[string]struct{})

	for _, pathA := range a.SortedPaths() {
		if ignore.Matches(pathA, false) {
			continue
		}
		fileA := a.Files[pathA]
		extA := project.Extension(pathA)

		var best *FileComparisonResult
		for _, pathB := range pathsB {
			if _, done := consumed[pathB]; done {
				continue
			}
			if project.Extension(pathB) != extA || ignore.Matches(pathB, false) {
				continue
			}
			fileB := b.Files[pathB]
			if !opts.eligible(fileA, fileB) {
				continue
			}

			moss := fingerprint.CompareMoss(fileA.Content, fileB.Content, opts.MossK, opts.MossWindow)
			bytes := fingerprint.CompareBytes(fileA.Content, fileB.Content, opts.ByteK)
			combined := opts.CombinedScore(moss.Similarity, bytes.Similarity)

			if best == nil || combined > best.CombinedScore {
				best = &FileComparisonResult{
					PathA:         pathA,
					PathB:         pathB,
					Moss:          moss,
					Bytes:         bytes,
					CombinedScore: combined,
					CharLength:    fileA.CharLength,
					LineCount:     fileA.LineCount,
				}
			}
		}

		if best != nil {
			// Only the chosen partner is taken out of play, so other A files keep their own copies.
			if best.CombinedScore > opts.HighConfidence {
				consumed[best.PathB] = struct{}{}
			}
			report.Files = append(report.Files, *best)
		}
	}

	if src, ok := wholeProjectSources(a, b, opts.MinCharLength); ok {
		moss := fingerprint.CompareMoss(src[0], src[1], opts.MossK, opts.MossWindow)
		bytes := fingerprint.CompareBytes(src[0], src[1], opts.ByteK)
		report.WholeMoss = &moss
		report.WholeByte = &bytes
	}

	log.Debug().
		Str("projectA", a.ProjectID).
		Str("projectB", b.ProjectID).
		Int("fileMatches", len(report.Files)).
		Bool("wholeProject", report.WholeMoss != nil).
		Msg("Projects compared")

	return report
}

// wholeProjectSources returns both concatenated sources when each exists and meets the minimum length.
func wholeProjectSources(a, b *project.NormalizedProject, minChars int) ([2]string, bool) {
	if a.ConcatenatedSource == nil || b.ConcatenatedSource == nil {
		return [2]string{}, false
	}
	srcA, srcB := *a.ConcatenatedSource, *b.ConcatenatedSource
	if utf8.RuneCountInString(srcA) < minChars || utf8.RuneCountInString(srcB) < minChars {
		return [2]string{}, false
	}
	return [2]string{srcA, srcB}, true
}

func ignoreSetFor(p *project.NormalizedProject) project.IgnoreSet {
	if p.Ignore != nil || p.Root == "" {
		return p.Ignore
	}
	set, err := project.BuildIgnoreSet(p.Root)
	if err != nil {
		log.Warn().Err(err).Str("projectId", p.ProjectID).Msg("Failed to rebuild ignore set, comparing all files")
		return nil
	}
	return set
}
