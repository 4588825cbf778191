package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/RishiKendai/foldercheck/internal/config"
	"github.com/RishiKendai/foldercheck/internal/models"
	"github.com/RishiKendai/foldercheck/internal/plagiarism"
	"github.com/RishiKendai/foldercheck/internal/preprocess"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var sha1Pattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// CheckRunner runs a check end to end.
type CheckRunner interface {
	MarkInitiated(ctx context.Context, req models.CheckRequest)
	Run(ctx context.Context, req models.CheckRequest, checkID string) (*models.CheckReport, error)
}

// ReportReader reads stored check reports.
type ReportReader interface {
	GetLatestReport(ctx context.Context, projectID, promotionID string) (*models.CheckReport, error)
	GetReportByCheckID(ctx context.Context, checkID string) (*models.CheckReport, error)
}

// SummaryReader reads per-folder summary rows.
type SummaryReader interface {
	GetFolderSummariesByCheckID(ctx context.Context, checkID string) ([]*models.FolderSummary, error)
	GetFolderSummariesBySHA1(ctx context.Context, sha1 string) ([]*models.FolderSummary, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	runner         CheckRunner
	reports        ReportReader
	summaries      SummaryReader
	status         plagiarism.StatusStore
	computeSem     chan struct{} // Semaphore for bounded concurrency
	computeTimeout time.Duration
	background     sync.WaitGroup
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	runner CheckRunner,
	reports ReportReader,
	summaries SummaryReader,
	status plagiarism.StatusStore,
) *Handler {
	return &Handler{
		runner:         runner,
		reports:        reports,
		summaries:      summaries,
		status:         status,
		computeSem:     make(chan struct{}, cfg.MaxConcurrentCompute),
		computeTimeout: cfg.ComputationTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// CreateCheck runs a check within the request and returns its report.
func (h *Handler) CreateCheck(c *gin.Context) {
	req, ok := h.bindCheckRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !h.acquire(ctx) {
		h.unclaim(req)
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}
	defer h.release()

	checkID := uuid.NewString()
	h.runner.MarkInitiated(ctx, req)

	runCtx, cancel := context.WithTimeout(ctx, h.computeTimeout)
	defer cancel()

	report, err := h.runner.Run(runCtx, req, checkID)
	if err != nil {
		log.Error().Err(err).Str("checkId", checkID).Str("projectId", req.ProjectID).Msg("Check failed")
		respondCheckError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// CreateCheckAsync accepts a check and runs it in the background.
func (h *Handler) CreateCheckAsync(c *gin.Context) {
	req, ok := h.bindCheckRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !h.acquire(ctx) {
		h.unclaim(req)
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	checkID := uuid.NewString()
	h.runner.MarkInitiated(ctx, req)

	c.JSON(http.StatusAccepted, models.CheckResponse{
		Step:    models.StepInitiated,
		CheckID: checkID,
	})

	h.background.Add(1)
	go h.processCheck(req, checkID)
}

// processCheck runs an accepted check detached from the request
func (h *Handler) processCheck(req models.CheckRequest, checkID string) {
	defer h.background.Done()
	defer h.release()

	ctx, cancel := context.WithTimeout(context.Background(), h.computeTimeout)
	defer cancel()

	if _, err := h.runner.Run(ctx, req, checkID); err != nil {
		log.Error().Err(err).Str("checkId", checkID).Str("projectId", req.ProjectID).Msg("Background check failed")
		return
	}

	log.Debug().Str("checkId", checkID).Msg("Background check completed")
}

// Wait blocks until background checks finish or ctx is done.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) GetLatestReport(c *gin.Context) {
	projectID, promotionID := c.Param("projectId"), c.Param("promotionId")

	report, err := h.reports.GetLatestReport(c.Request.Context(), projectID, promotionID)
	if err != nil {
		log.Error().Err(err).Str("projectId", projectID).Str("promotionId", promotionID).Msg("Failed to get latest report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No report found for project and promotion",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetStatus(c *gin.Context) {
	projectID, promotionID := c.Param("projectId"), c.Param("promotionId")

	step, err := plagiarism.GetStatus(c.Request.Context(), h.status, projectID, promotionID)
	if err != nil {
		log.Error().Err(err).Str("projectId", projectID).Str("promotionId", promotionID).Msg("Failed to get status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		ProjectID:   projectID,
		PromotionID: promotionID,
		Step:        step,
	})
}

func (h *Handler) GetReport(c *gin.Context) {
	checkID := c.Param("checkId")
	if _, err := uuid.Parse(checkID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "checkId must be a UUID",
			Code:  "INVALID_CHECK_ID",
		})
		return
	}

	report, err := h.reports.GetReportByCheckID(c.Request.Context(), checkID)
	if err != nil {
		log.Error().Err(err).Str("checkId", checkID).Msg("Failed to get report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Report not found",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetFolderSummaries(c *gin.Context) {
	checkID := c.Param("checkId")
	if _, err := uuid.Parse(checkID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "checkId must be a UUID",
			Code:  "INVALID_CHECK_ID",
		})
		return
	}

	summaries, err := h.summaries.GetFolderSummariesByCheckID(c.Request.Context(), checkID)
	if err != nil {
		log.Error().Err(err).Str("checkId", checkID).Msg("Failed to get folder summaries")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get folder summaries",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkId": checkID, "folders": summaries})
}

func (h *Handler) GetFoldersBySHA1(c *gin.Context) {
	hash := c.Param("sha1")
	if !sha1Pattern.MatchString(hash) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "sha1 must be 40 lowercase hex characters",
			Code:  "INVALID_SHA1",
		})
		return
	}

	summaries, err := h.summaries.GetFolderSummariesBySHA1(c.Request.Context(), hash)
	if err != nil {
		log.Error().Err(err).Str("sha1", hash).Msg("Failed to get folders by hash")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get folders",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sha1": hash, "folders": summaries})
}

// bindCheckRequest parses the body and rejects a project/promotion that already has a check running.
func (h *Handler) bindCheckRequest(c *gin.Context) (models.CheckRequest, bool) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return req, false
	}

	step, err := plagiarism.GetStatus(c.Request.Context(), h.status, req.ProjectID, req.PromotionID)
	if err != nil {
		log.Warn().Err(err).Str("projectId", req.ProjectID).Msg("Failed to read check status")
	} else if inProgress(step) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "A check is already running for this project and promotion",
			Code:  "CHECK_IN_PROGRESS",
		})
		return req, false
	}

	claimed, err := plagiarism.ClaimCheck(c.Request.Context(), h.status, req.ProjectID, req.PromotionID)
	if err != nil {
		log.Warn().Err(err).Str("projectId", req.ProjectID).Msg("Failed to claim check")
	} else if !claimed {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "A check is already running for this project and promotion",
			Code:  "CHECK_IN_PROGRESS",
		})
		return req, false
	}

	return req, true
}

// unclaim gives back the claim of a check that was accepted but never started.
func (h *Handler) unclaim(req models.CheckRequest) {
	if err := plagiarism.ReleaseCheck(context.Background(), h.status, req.ProjectID, req.PromotionID); err != nil {
		log.Warn().Err(err).Str("projectId", req.ProjectID).Msg("Failed to release check claim")
	}
}

func (h *Handler) acquire(ctx context.Context) bool {
	select {
	case h.computeSem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (h *Handler) release() {
	<-h.computeSem
}

func inProgress(step models.Step) bool {
	switch step {
	case models.StepInitiated, models.StepExtracting, models.StepNormalizing, models.StepComparing:
		return true
	}
	return false
}

func respondCheckError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, preprocess.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_ID"})
	case errors.Is(err, preprocess.ErrNoSubmissions):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NO_SUBMISSIONS"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Check timed out", Code: "CHECK_TIMEOUT"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Check failed", Code: "INTERNAL_ERROR"})
	}
}
