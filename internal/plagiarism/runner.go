package plagiarism

import (
	"context"
	"fmt"

	"github.com/RishiKendai/foldercheck/internal/models"
)

// Preparer materialises the submissions of a project/promotion as subdirectories of a base directory.
type Preparer interface {
	Prepare(ctx context.Context, projectID, promotionID, checkID string) (baseDir string, cleanup func(), err error)
}

// Runner drives a full check: extraction, then ComputePlagiarism. It is shared by the HTTP
// handlers and the stream consumer.
type Runner struct {
	preparer Preparer
	deps     Deps
}

func NewRunner(preparer Preparer, deps Deps) *Runner {
	return &Runner{preparer: preparer, deps: deps}
}

// Run executes one check and returns its stored report.
func (r *Runner) Run(ctx context.Context, req models.CheckRequest, checkID string) (*models.CheckReport, error) {
	setStatus(ctx, r.deps.Status, req, models.StepExtracting)

	baseDir, cleanup, err := r.preparer.Prepare(ctx, req.ProjectID, req.PromotionID, checkID)
	if err != nil {
		setStatus(ctx, r.deps.Status, req, models.StepFailed)
		return nil, fmt.Errorf("failed to prepare submissions: %w", err)
	}
	defer cleanup()

	return ComputePlagiarism(ctx, req, checkID, baseDir, r.deps)
}

// MarkInitiated records that a check has been accepted.
func (r *Runner) MarkInitiated(ctx context.Context, req models.CheckRequest) {
	setStatus(ctx, r.deps.Status, req, models.StepInitiated)
}
