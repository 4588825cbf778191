package plagiarism

import (
	"reflect"
	"testing"

	"github.com/RishiKendai/foldercheck/internal/fingerprint"
	"github.com/RishiKendai/foldercheck/internal/models"
	"github.com/RishiKendai/foldercheck/internal/project"
)

func TestFlags(t *testing.T) {
	cases := []struct {
		moss, bytes float64
		want        []string
	}{
		{100, 100, []string{models.FlagVeryHighSimilarity, models.FlagSignificantMossMatch, models.FlagSignificantRabinKarpMatch}},
		{80, 90, []string{models.FlagHighSimilarity, models.FlagSignificantMossMatch, models.FlagSignificantRabinKarpMatch}},
		{75, 10, []string{models.FlagHighSimilarity, models.FlagSignificantMossMatch}},
		{10, 65, []string{models.FlagSignificantRabinKarpMatch}},
		{60, 60, []string{}},
		{0, 0, []string{}},
	}
	for _, tc := range cases {
		if got := Flags(tc.moss, tc.bytes); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Flags(%v, %v) = %v, want %v", tc.moss, tc.bytes, got, tc.want)
		}
	}
}

func TestScorePair(t *testing.T) {
	opts := DefaultOptions()

	whole := &ProjectComparisonReport{
		WholeMoss: &fingerprint.MossResult{Similarity: 0.5},
		WholeByte: &fingerprint.ByteResult{Similarity: 0.25},
		Files: []FileComparisonResult{
			{CombinedScore: 0.99, Moss: fingerprint.MossResult{Similarity: 0.99}},
		},
	}
	if got := ScorePair(whole, opts); got.Moss != 0.5 || got.Bytes != 0.25 || got.Combined != opts.CombinedScore(0.5, 0.25) {
		t.Fatalf("whole-project scores not preferred: %+v", got)
	}

	files := &ProjectComparisonReport{
		Files: []FileComparisonResult{
			{CombinedScore: 0.3, Moss: fingerprint.MossResult{Similarity: 0.3}, Bytes: fingerprint.ByteResult{Similarity: 0.3}},
			{CombinedScore: 0.7, Moss: fingerprint.MossResult{Similarity: 0.9}, Bytes: fingerprint.ByteResult{Similarity: 0.4}},
		},
	}
	if got := ScorePair(files, opts); got != (PairScores{Moss: 0.9, Bytes: 0.4, Combined: 0.7}) {
		t.Fatalf("best file not used: %+v", got)
	}

	if got := ScorePair(&ProjectComparisonReport{}, opts); got != (PairScores{}) {
		t.Fatalf("empty report should score zero: %+v", got)
	}
}

func TestBuildFolderResults(t *testing.T) {
	opts := DefaultOptions()
	hash := "abc"
	projects := []*project.NormalizedProject{
		{ProjectID: "charlie"},
		{ProjectID: "alpha", ConcatenatedHash: &hash},
		{ProjectID: "bravo"},
		{ProjectID: "delta"},
	}
	reports := []*ProjectComparisonReport{
		{
			ProjectA: "alpha", ProjectB: "bravo",
			WholeMoss: &fingerprint.MossResult{Similarity: 1}, WholeByte: &fingerprint.ByteResult{Similarity: 1},
			Files: []FileComparisonResult{{PathA: "main.rs", PathB: "main.rs", CombinedScore: 1}},
		},
		{
			ProjectA: "alpha", ProjectB: "charlie",
			Files: []FileComparisonResult{{CombinedScore: 0.2, Moss: fingerprint.MossResult{Similarity: 0.2}, Bytes: fingerprint.ByteResult{Similarity: 0.2}}},
		},
		{ProjectA: "bravo", ProjectB: "charlie"},
	}

	results := BuildFolderResults(projects, reports, opts, true)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.FolderName)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "bravo", "charlie", "delta"}) {
		t.Fatalf("folders = %v", names)
	}

	alpha := results[0]
	if alpha.SHA1 == nil || *alpha.SHA1 != "abc" {
		t.Fatalf("alpha sha1 = %v", alpha.SHA1)
	}
	if alpha.PlagiarismPercentage != 100 || len(alpha.Matches) != 2 {
		t.Fatalf("alpha = %+v", alpha)
	}
	toBravo := alpha.Matches[0]
	if toBravo.MatchedFolder != "bravo" || toBravo.OverallMatchPercentage != 100 || toBravo.CombinedScore != 100 {
		t.Fatalf("alpha->bravo = %+v", toBravo)
	}
	if !reflect.DeepEqual(toBravo.Flags, []string{
		models.FlagVeryHighSimilarity, models.FlagSignificantMossMatch, models.FlagSignificantRabinKarpMatch,
	}) {
		t.Fatalf("alpha->bravo flags = %v", toBravo.Flags)
	}
	if len(toBravo.FileComparisons) != 1 || toBravo.FileComparisons[0].CombinedScore != 100 {
		t.Fatalf("alpha->bravo files = %+v", toBravo.FileComparisons)
	}

	bravo := results[1]
	if bravo.PlagiarismPercentage != 100 || bravo.Matches[0].MatchedFolder != "alpha" || bravo.Matches[1].MatchedFolder != "charlie" {
		t.Fatalf("bravo = %+v", bravo)
	}
	if bravo.Matches[1].OverallMatchPercentage != 0 || len(bravo.Matches[1].Flags) != 0 {
		t.Fatalf("bravo->charlie should be a zero match: %+v", bravo.Matches[1])
	}

	charlie := results[2]
	if charlie.PlagiarismPercentage < 19.999 || charlie.PlagiarismPercentage > 20.001 {
		t.Fatalf("charlie percentage = %v", charlie.PlagiarismPercentage)
	}
	if charlie.SHA1 != nil {
		t.Fatal("charlie has no source and must have no hash")
	}

	delta := results[3]
	if delta.PlagiarismPercentage != 0 || delta.Matches == nil || len(delta.Matches) != 0 {
		t.Fatalf("delta = %+v", delta)
	}

	without := BuildFolderResults(projects, reports, opts, false)
	if without[0].Matches[0].FileComparisons != nil {
		t.Fatal("file comparisons included when not requested")
	}
}

func TestFolderSummaries(t *testing.T) {
	hash := "abc"
	report := &models.CheckReport{
		CheckID: "c1", ProjectID: "p", PromotionID: "q",
		FolderResults: []models.FolderResult{
			{FolderName: "alpha", SHA1: &hash, PlagiarismPercentage: 90, Matches: []models.Match{
				{MatchedFolder: "bravo", OverallMatchPercentage: 10},
				{MatchedFolder: "charlie", OverallMatchPercentage: 90, Flags: []string{models.FlagVeryHighSimilarity}},
			}},
			{FolderName: "delta", Matches: []models.Match{}},
		},
	}

	summaries := FolderSummaries(report)
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries", len(summaries))
	}
	if s := summaries[0]; s.CheckID != "c1" || s.SHA1 != "abc" || s.TopMatch != "charlie" || len(s.Flags) != 1 {
		t.Fatalf("alpha summary = %+v", s)
	}
	if s := summaries[1]; s.TopMatch != "" || s.SHA1 != "" || s.Flags == nil {
		t.Fatalf("delta summary = %+v", s)
	}
}
