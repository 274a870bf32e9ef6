package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/assessment-platform/internal/oracle"
	"github.com/edupulse/assessment-platform/internal/services"
)

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	questionHandler   *QuestionHandler
	submissionHandler *SubmissionHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	oracleClient oracle.Client,
	logger *slog.Logger,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), serviceManager.Report(), oracleClient, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	assessments := router.Group("/assessments")
	{
		assessments.POST("", hm.assessmentHandler.CreateAssessment)
		assessments.GET("", hm.assessmentHandler.ListAssessments)
		assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
		assessments.PATCH("/:id", hm.assessmentHandler.UpdateAssessment)
		assessments.DELETE("/:id", hm.assessmentHandler.DeleteAssessment)
		assessments.GET("/:id/swot", hm.submissionHandler.GetSwot)
		assessments.GET("/:id/report", hm.submissionHandler.ExportReport)
	}

	questions := router.Group("/questions")
	{
		questions.POST("", hm.questionHandler.CreateQuestions)
		questions.GET("", hm.questionHandler.ListQuestions)
		questions.GET("/:id", hm.questionHandler.GetQuestion)
		questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
		questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
	}

	router.POST("/submit/:id", hm.submissionHandler.SubmitAnswers)
	router.POST("/evaluate/:id", hm.submissionHandler.EvaluateAssessment)
	router.POST("/eval-proxy", hm.submissionHandler.EvalProxy)
	router.POST("/swot-proxy", hm.submissionHandler.SwotProxy)
}
