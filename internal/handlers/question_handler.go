package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/assessment-platform/internal/auth"
	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/services"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestionsRequest batch-creates questions attached to an assessment
type CreateQuestionsRequest struct {
	AssessmentID string                   `json:"assessment_id"`
	Questions    []services.QuestionInput `json:"questions" binding:"required"`
}

// CreateQuestions batch-creates questions and attaches them to an assessment
// @Summary Batch-create questions
// @Tags questions
// @Accept json
// @Produce json
// @Param questions body CreateQuestionsRequest true "Questions to create"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestions(c *gin.Context) {
	var req CreateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	principal, _ := auth.PrincipalFromContext(c)
	questions, err := h.questionService.CreateBatch(c.Request.Context(), req.AssessmentID, req.Questions, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Questions created",
		Data:    questions,
	})
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: question})
}

// ListQuestions returns questions, optionally filtered by assessment
// @Summary List questions
// @Tags questions
// @Produce json
// @Param assessment_id query string false "Filter by assessment"
// @Success 200 {object} SuccessResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var (
		questions []*models.Question
		err       error
	)
	if assessmentID := c.Query("assessment_id"); assessmentID != "" {
		questions, err = h.questionService.ListByAssessment(c.Request.Context(), assessmentID)
	} else {
		questions, err = h.questionService.ListAll(c.Request.Context())
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: questions})
}

// UpdateQuestion replaces a staged question record
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param question body models.Question true "Question data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	question.ID = c.Param("id")

	principal, _ := auth.PrincipalFromContext(c)
	if err := h.questionService.Update(c.Request.Context(), &question, principal); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question updated",
		Data:    question,
	})
}

// DeleteQuestion removes a staged question record
// @Summary Delete question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.questionService.Delete(c.Request.Context(), c.Param("id"), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}
