package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/edupulse/assessment-platform/internal/auth"
	"github.com/edupulse/assessment-platform/internal/cache"
	"github.com/edupulse/assessment-platform/internal/events"
	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/oracle"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type QuestionInput struct {
	Type           models.QuestionType `json:"type" validate:"required,question_type"`
	Text           string              `json:"text" validate:"required"`
	ExpectedAnswer string              `json:"expected_answer" validate:"required"`
	Marks          int                 `json:"marks" validate:"required,min=1"`
	AnswerType     models.AnswerType   `json:"answer_type" validate:"omitempty,answer_type"`
	Options        []models.Option     `json:"options,omitempty"`
}

type CreateAssessmentRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description" validate:"omitempty,max=1000"`
	StartDate    time.Time       `json:"start_date" validate:"required"`
	EndDate      time.Time       `json:"end_date" validate:"required"`
	MaxScore     int             `json:"max_score" validate:"required,min=1"`
	PassingScore int             `json:"passing_score" validate:"min=0"`
	Subject      string          `json:"subject"`
	Class        string          `json:"class"`
	Questions    []QuestionInput `json:"questions,omitempty" validate:"omitempty,dive"`
}

// UpdateAssessmentRequest is the partial authoring-stage update; only
// supplied fields are merged. Lifecycle flags and evaluation results are not
// settable here, they flow through the submission engine.
type UpdateAssessmentRequest struct {
	Title             *string            `json:"title,omitempty" validate:"omitempty,max=200"`
	Description       *string            `json:"description,omitempty" validate:"omitempty,max=1000"`
	StartDate         *time.Time         `json:"start_date,omitempty"`
	EndDate           *time.Time         `json:"end_date,omitempty"`
	MaxScore          *int               `json:"max_score,omitempty" validate:"omitempty,min=1"`
	PassingScore      *int               `json:"passing_score,omitempty" validate:"omitempty,min=0"`
	Subject           *string            `json:"subject,omitempty"`
	Class             *string            `json:"class,omitempty"`
	Questions         *[]models.Question `json:"questions,omitempty"`
	StudentsAttempted *int               `json:"no_st_attempted,omitempty" validate:"omitempty,min=0"`
	StudentsPassed    *int               `json:"no_st_passed,omitempty" validate:"omitempty,min=0"`
}

// AnswerInput carries one submitted answer; Text and Image are independent
// so an image-only answer leaves prior text untouched.
type AnswerInput struct {
	Text  *string `json:"text,omitempty"`
	Image *string `json:"image,omitempty"`
}

// Reconciliation is the outcome of merging oracle verdicts into the
// assessment's question sequence.
type Reconciliation struct {
	Results     []models.EvaluationResult `json:"evaluation_results"`
	TotalMarks  float64                   `json:"total_marks"`
	Correctness map[string]bool           `json:"correctness_map"`
}

type EvaluationResponse struct {
	Success           bool                      `json:"success"`
	Evaluated         bool                      `json:"evaluated"`
	EvaluationResults []models.EvaluationResult `json:"evaluation_results"`
	TotalMarks        float64                   `json:"total_marks"`
	Correctness       map[string]bool           `json:"correctness_map"`
}

// ===== SERVICE INTERFACES =====

type AssessmentService interface {
	Create(ctx context.Context, req *CreateAssessmentRequest, principal *auth.Principal) (*models.Assessment, error)
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	List(ctx context.Context) ([]*models.Assessment, error)
	Update(ctx context.Context, id string, req *UpdateAssessmentRequest, principal *auth.Principal) (*models.Assessment, error)
	Delete(ctx context.Context, id string, principal *auth.Principal) error
}

type QuestionService interface {
	CreateBatch(ctx context.Context, assessmentID string, inputs []QuestionInput, principal *auth.Principal) ([]*models.Question, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question, principal *auth.Principal) error
	Delete(ctx context.Context, id string, principal *auth.Principal) error
	ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Question, error)
	ListAll(ctx context.Context) ([]*models.Question, error)
}

// SubmissionService is the core state machine: it records a student's
// answers, drives oracle evaluation, reconciles the verdicts and publishes
// the evaluated state.
type SubmissionService interface {
	RecordSubmission(ctx context.Context, assessmentID string, answers map[string]AnswerInput, principal *auth.Principal) error
	Evaluate(ctx context.Context, assessmentID string, principal *auth.Principal) (*EvaluationResponse, error)
	ApplyEvaluation(ctx context.Context, assessmentID string, results []models.EvaluationResult, principal *auth.Principal) (*EvaluationResponse, error)
	GetSwot(ctx context.Context, assessmentID string) (*models.SwotAnalysis, error)
}

type ReportService interface {
	ExportEvaluationReport(ctx context.Context, assessmentID string) ([]byte, error)
}

// ServiceManager wires the services over shared dependencies.
type ServiceManager interface {
	Assessment() AssessmentService
	Question() QuestionService
	Submission() SubmissionService
	Report() ReportService
}

type serviceManager struct {
	assessment AssessmentService
	question   QuestionService
	submission SubmissionService
	report     ReportService
}

func NewServiceManager(
	repo repositories.Repository,
	oracleClient oracle.Client,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	assessment := NewAssessmentService(repo, cacheService, logger, v)
	return &serviceManager{
		assessment: assessment,
		question:   NewQuestionService(repo, logger, v),
		submission: NewSubmissionService(repo, oracleClient, publisher, cacheService, logger),
		report:     NewReportService(repo, logger),
	}
}

func (m *serviceManager) Assessment() AssessmentService { return m.assessment }
func (m *serviceManager) Question() QuestionService     { return m.question }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Report() ReportService         { return m.report }
