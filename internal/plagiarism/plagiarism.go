package plagiarism

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/RishiKendai/foldercheck/internal/metrics"
	"github.com/RishiKendai/foldercheck/internal/models"
	"github.com/RishiKendai/foldercheck/internal/project"
	"github.com/rs/zerolog/log"
)

// ReportStore persists finished check reports
type ReportStore interface {
	InsertCheckReport(ctx context.Context, report *models.CheckReport) error
}

// SummaryStore persists the per-folder rows of a check
type SummaryStore interface {
	ReplaceFolderSummaries(ctx context.Context, checkID string, summaries []*models.FolderSummary) error
}

// Deps are the collaborators of a check. Nil stores are skipped and a nil pool runs
// comparisons on the calling goroutine.
type Deps struct {
	Reports      ReportStore
	Summaries    SummaryStore
	Status       StatusStore
	Pool         *WorkerPool
	Options      Options
	IncludeFiles bool
}

// ComparisonJob compares one project pair on the worker pool
type ComparisonJob struct {
	Index      int
	Pair       Pair
	Options    Options
	ResultChan chan<- indexedReport
}

type indexedReport struct {
	index  int
	report *ProjectComparisonReport
}

// Execute executes the comparison job
func (j *ComparisonJob) Execute(ctx context.Context) error {
	report := CompareNormalizedProjects(j.Pair.A, j.Pair.B, j.Options)
	metrics.PairComparisons.Inc()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.ResultChan <- indexedReport{index: j.Index, report: report}:
		return nil
	}
}

// ComputePlagiarism normalizes every submission folder under baseDir, compares all pairs and
// stores the aggregated report. A folder that fails to normalize is listed as skipped, reported
// with no matches, and the check continues with the rest.
func ComputePlagiarism(
	ctx context.Context,
	req models.CheckRequest,
	checkID string,
	baseDir string,
	deps Deps,
) (*models.CheckReport, error) {
	start := time.Now()
	report, err := computePlagiarism(ctx, req, checkID, baseDir, deps)
	metrics.CheckDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ChecksTotal.WithLabelValues(string(models.StepFailed)).Inc()
		setStatus(ctx, deps.Status, req, models.StepFailed)
		return nil, err
	}

	metrics.ChecksTotal.WithLabelValues(string(models.StepCompleted)).Inc()
	setStatus(ctx, deps.Status, req, models.StepCompleted)
	return report, nil
}

func computePlagiarism(
	ctx context.Context,
	req models.CheckRequest,
	checkID string,
	baseDir string,
	deps Deps,
) (*models.CheckReport, error) {
	createdAt := time.Now().UTC()

	setStatus(ctx, deps.Status, req, models.StepNormalizing)
	projects, skipped, err := normalizeAll(ctx, baseDir)
	if err != nil {
		return nil, err
	}

	setStatus(ctx, deps.Status, req, models.StepComparing)
	pairs := AllPairs(projects)
	reports, err := comparePairs(ctx, pairs, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to compare submissions: %w", err)
	}

	for hash, folders := range BuildHashIndex(projects) {
		log.Info().
			Str("checkId", checkID).
			Str("sha1", hash).
			Strs("folders", folders).
			Msg("Identical submissions detected")
	}

	report := &models.CheckReport{
		CheckID:        checkID,
		ProjectID:      req.ProjectID,
		PromotionID:    req.PromotionID,
		Status:         models.StepCompleted,
		FolderResults:  withSkipped(BuildFolderResults(projects, reports, deps.Options, deps.IncludeFiles), skipped),
		SkippedFolders: skipped,
		PairsCompared:  len(reports),
		CreatedAt:      createdAt,
		CompletedAt:    time.Now().UTC(),
	}

	if deps.Reports != nil {
		if err := deps.Reports.InsertCheckReport(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to insert check report: %w", err)
		}
	}
	if deps.Summaries != nil {
		if err := deps.Summaries.ReplaceFolderSummaries(ctx, checkID, FolderSummaries(report)); err != nil {
			return nil, fmt.Errorf("failed to store folder summaries: %w", err)
		}
	}

	log.Info().
		Str("checkId", checkID).
		Str("projectId", req.ProjectID).
		Str("promotionId", req.PromotionID).
		Int("folders", len(projects)).
		Int("skipped", len(skipped)).
		Int("pairs", len(reports)).
		Msg("Computation completed successfully")

	return report, nil
}

// normalizeAll processes each subdirectory of baseDir in name order.
func normalizeAll(ctx context.Context, baseDir string) ([]*project.NormalizedProject, []string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	projects := make([]*project.NormalizedProject, 0, len(entries))
	skipped := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		name := entry.Name()
		p, err := project.ProcessProjectFolder(ctx, filepath.Join(baseDir, name), name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			log.Warn().Err(err).Str("folder", name).Msg("Failed to normalize submission, skipping")
			metrics.NormalizeFailures.Inc()
			skipped = append(skipped, name)
			continue
		}
		projects = append(projects, p)
	}

	return projects, skipped, nil
}

// comparePairs runs every pair comparison and returns the reports in pair order.
func comparePairs(ctx context.Context, pairs []Pair, deps Deps) ([]*ProjectComparisonReport, error) {
	reports := make([]*ProjectComparisonReport, len(pairs))
	if deps.Pool == nil {
		for i, pair := range pairs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			reports[i] = CompareNormalizedProjects(pair.A, pair.B, deps.Options)
			metrics.PairComparisons.Inc()
		}
		return reports, nil
	}

	resultChan := make(chan indexedReport, len(pairs))
	for i, pair := range pairs {
		job := &ComparisonJob{
			Index:      i,
			Pair:       pair,
			Options:    deps.Options,
			ResultChan: resultChan,
		}
		if err := deps.Pool.Submit(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to submit pair %s: %w", getPairKey(pair.A.ProjectID, pair.B.ProjectID), err)
		}
	}

	for received := 0; received < len(pairs); received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-resultChan:
			reports[result.index] = result.report
		}
	}

	return reports, nil
}

// withSkipped lists folders that failed to normalize as results with no matches, keeping name order.
func withSkipped(results []models.FolderResult, skipped []string) []models.FolderResult {
	if len(skipped) == 0 {
		return results
	}
	for _, name := range skipped {
		results = append(results, models.FolderResult{FolderName: name, Matches: []models.Match{}})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].FolderName < results[j].FolderName
	})
	return results
}

// FolderSummaries flattens a report into one row per folder.
func FolderSummaries(report *models.CheckReport) []*models.FolderSummary {
	summaries := make([]*models.FolderSummary, 0, len(report.FolderResults))
	for _, folder := range report.FolderResults {
		summary := &models.FolderSummary{
			CheckID:              report.CheckID,
			ProjectID:            report.ProjectID,
			PromotionID:          report.PromotionID,
			FolderName:           folder.FolderName,
			PlagiarismPercentage: folder.PlagiarismPercentage,
			Flags:                []string{},
			CreatedAt:            report.CompletedAt,
		}
		if folder.SHA1 != nil {
			summary.SHA1 = *folder.SHA1
		}

		var top *models.Match
		for i := range folder.Matches {
			if top == nil || folder.Matches[i].OverallMatchPercentage > top.OverallMatchPercentage {
				top = &folder.Matches[i]
			}
		}
		if top != nil {
			summary.TopMatch = top.MatchedFolder
			summary.Flags = top.Flags
		}

		summaries = append(summaries, summary)
	}
	return summaries
}

func setStatus(ctx context.Context, store StatusStore, req models.CheckRequest, step models.Step) {
	if store == nil {
		return
	}
	// Best effort: failures are logged only
	if err := UpdateStatus(context.WithoutCancel(ctx), store, req.ProjectID, req.PromotionID, step); err != nil {
		log.Warn().Err(err).Str("step", string(step)).Msg("Failed to update status")
	}
}
