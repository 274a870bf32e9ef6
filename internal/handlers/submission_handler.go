package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/assessment-platform/internal/auth"
	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/oracle"
	"github.com/edupulse/assessment-platform/internal/services"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	reportService     services.ReportService
	oracle            oracle.Client
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	reportService services.ReportService,
	oracleClient oracle.Client,
	logger *slog.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		reportService:     reportService,
		oracle:            oracleClient,
	}
}

// SubmitAnswersRequest carries a student's answers keyed by question id
type SubmitAnswersRequest struct {
	Answers map[string]services.AnswerInput `json:"answers" binding:"required"`
}

// ApplyEvaluationRequest carries pre-scored verdicts for persistence
type ApplyEvaluationRequest struct {
	EvaluationResults []models.EvaluationResult `json:"evaluation_results" binding:"required"`
}

// SubmitAnswers records a student's answers onto an assessment
// @Summary Submit answers
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param answers body SubmitAnswersRequest true "Answers keyed by question id"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /submit/{id} [post]
func (h *SubmissionHandler) SubmitAnswers(c *gin.Context) {
	id := c.Param("id")

	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	principal, _ := auth.PrincipalFromContext(c)
	if err := h.submissionService.RecordSubmission(c.Request.Context(), id, req.Answers, principal); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Submission recorded"})
}

// EvaluateAssessment scores a submitted assessment. With a body of verdicts
// it persists those; without one it drives the full oracle evaluation.
// @Summary Evaluate assessment
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param results body ApplyEvaluationRequest false "Pre-scored verdicts"
// @Success 200 {object} services.EvaluationResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /evaluate/{id} [post]
func (h *SubmissionHandler) EvaluateAssessment(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Evaluating assessment", "assessment_id", id)
	principal, _ := auth.PrincipalFromContext(c)

	var (
		resp *services.EvaluationResponse
		err  error
	)
	if c.Request.ContentLength > 0 {
		var req ApplyEvaluationRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", bindErr, bindErr.Error())
			return
		}
		resp, err = h.submissionService.ApplyEvaluation(c.Request.Context(), id, req.EvaluationResults, principal)
	} else {
		resp, err = h.submissionService.Evaluate(c.Request.Context(), id, principal)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// EvalProxy forwards the request body to the oracle's evaluate endpoint and
// returns its payload verbatim
// @Summary Proxy to oracle evaluate
// @Tags oracle
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 502 {object} ErrorResponse
// @Router /eval-proxy [post]
func (h *SubmissionHandler) EvalProxy(c *gin.Context) {
	h.forward(c, oracle.EndpointEvaluate)
}

// SwotProxy forwards the request body to the oracle's SWOT endpoint
// @Summary Proxy to oracle SWOT
// @Tags oracle
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 502 {object} ErrorResponse
// @Router /swot-proxy [post]
func (h *SubmissionHandler) SwotProxy(c *gin.Context) {
	h.forward(c, oracle.EndpointSWOT)
}

func (h *SubmissionHandler) forward(c *gin.Context, endpoint string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	status, payload, err := h.oracle.Forward(c.Request.Context(), endpoint, body)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Oracle failures pass through with the oracle's own status and payload.
	c.Data(status, "application/json", payload)
}

// GetSwot returns the SWOT analysis generated for an assessment
// @Summary Get SWOT analysis
// @Tags submissions
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/swot [get]
func (h *SubmissionHandler) GetSwot(c *gin.Context) {
	swot, err := h.submissionService.GetSwot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: swot})
}

// ExportReport downloads an evaluated assessment as an xlsx workbook
// @Summary Export evaluation report
// @Tags submissions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Assessment ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /assessments/{id}/report [get]
func (h *SubmissionHandler) ExportReport(c *gin.Context) {
	id := c.Param("id")

	report, err := h.reportService.ExportEvaluationReport(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="assessment-%s-report.xlsx"`, id))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report)
}
