package plagiarism

import (
	"sort"

	"github.com/RishiKendai/foldercheck/internal/models"
	"github.com/RishiKendai/foldercheck/internal/project"
)

// PairScores are the 0..1 scores that represent a whole project pair.
type PairScores struct {
	Moss     float64
	Bytes    float64
	Combined float64
}

// ScorePair picks the scores that stand for a compared pair: the whole-project results when
// present, otherwise the strongest file match, otherwise zero.
func ScorePair(report *ProjectComparisonReport, opts Options) PairScores {
	if report.WholeMoss != nil && report.WholeByte != nil {
		moss, bytes := report.WholeMoss.Similarity, report.WholeByte.Similarity
		return PairScores{Moss: moss, Bytes: bytes, Combined: opts.CombinedScore(moss, bytes)}
	}

	var best *FileComparisonResult
	for i := range report.Files {
		if best == nil || report.Files[i].CombinedScore > best.CombinedScore {
			best = &report.Files[i]
		}
	}
	if best == nil {
		return PairScores{}
	}
	return PairScores{Moss: best.Moss.Similarity, Bytes: best.Bytes.Similarity, Combined: best.CombinedScore}
}

// Flags derives qualitative labels from the MOSS and byte-level percentages.
func Flags(mossPct, bytesPct float64) []string {
	flags := []string{}
	if mossPct > 80 && bytesPct > 80 {
		flags = append(flags, models.FlagVeryHighSimilarity)
	} else if mossPct > 70 || bytesPct > 70 {
		flags = append(flags, models.FlagHighSimilarity)
	}
	if mossPct > 60 {
		flags = append(flags, models.FlagSignificantMossMatch)
	}
	if bytesPct > 60 {
		flags = append(flags, models.FlagSignificantRabinKarpMatch)
	}
	return flags
}

// BuildFolderResults turns pairwise reports into one result per project. Each report
// contributes a match to both of its projects. Folders are sorted by name, as are their matches.
func BuildFolderResults(
	projects []*project.NormalizedProject,
	reports []*ProjectComparisonReport,
	opts Options,
	includeFiles bool,
) []models.FolderResult {
	matches := make(map[string][]models.Match, len(projects))

	for _, report := range reports {
		scores := ScorePair(report, opts)
		base := models.Match{
			OverallMatchPercentage: scores.Combined * 100,
			CombinedScore:          scores.Combined * 100,
			MossScore:              scores.Moss * 100,
			RabinKarpScore:         scores.Bytes * 100,
			Flags:                  Flags(scores.Moss*100, scores.Bytes*100),
		}

		forA, forB := base, base
		forA.MatchedFolder = report.ProjectB
		forB.MatchedFolder = report.ProjectA
		forB.Flags = append([]string(nil), base.Flags...)
		if includeFiles {
			forA.FileComparisons = fileComparisons(report)
		}

		matches[report.ProjectA] = append(matches[report.ProjectA], forA)
		matches[report.ProjectB] = append(matches[report.ProjectB], forB)
	}

	results := make([]models.FolderResult, 0, len(projects))
	for _, p := range projects {
		folderMatches := matches[p.ProjectID]
		if folderMatches == nil {
			folderMatches = []models.Match{}
		}
		sort.Slice(folderMatches, func(i, j int) bool {
			return folderMatches[i].MatchedFolder < folderMatches[j].MatchedFolder
		})

		percentage := 0.0
		for _, m := range folderMatches {
			if m.OverallMatchPercentage > percentage {
				percentage = m.OverallMatchPercentage
			}
		}

		results = append(results, models.FolderResult{
			FolderName:           p.ProjectID,
			SHA1:                 p.ConcatenatedHash,
			PlagiarismPercentage: percentage,
			Matches:              folderMatches,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FolderName < results[j].FolderName
	})
	return results
}

// fileComparisons converts file-level results to percentages, oriented from project A.
func fileComparisons(report *ProjectComparisonReport) []models.FileComparison {
	out := make([]models.FileComparison, 0, len(report.Files))
	for _, f := range report.Files {
		out = append(out, models.FileComparison{
			File1Path:      f.PathA,
			File2Path:      f.PathB,
			MossScore:      f.Moss.Similarity * 100,
			RabinKarpScore: f.Bytes.Similarity * 100,
			CombinedScore:  f.CombinedScore * 100,
			CharLength:     f.CharLength,
			LineCount:      f.LineCount,
		})
	}
	return out
}
