package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/store"
)

// AssessmentPatch is a partial update: only non-nil fields are merged into
// the stored record, unspecified fields are left untouched.
type AssessmentPatch struct {
	Title             *string                    `json:"title,omitempty"`
	Description       *string                    `json:"description,omitempty"`
	StartDate         *time.Time                 `json:"start_date,omitempty"`
	EndDate           *time.Time                 `json:"end_date,omitempty"`
	MaxScore          *int                       `json:"max_score,omitempty"`
	PassingScore      *int                       `json:"passing_score,omitempty"`
	Subject           *string                    `json:"subject,omitempty"`
	Class             *string                    `json:"class,omitempty"`
	Questions         *[]models.Question         `json:"questions,omitempty"`
	Submitted         *bool                      `json:"submitted,omitempty"`
	Evaluated         *bool                      `json:"evaluated,omitempty"`
	EvaluationResults *[]models.EvaluationResult `json:"evaluation_results,omitempty"`
	StudentsAttempted *int                       `json:"no_st_attempted,omitempty"`
	StudentsPassed    *int                       `json:"no_st_passed,omitempty"`
	UpdatedAt         *time.Time                 `json:"updated_at,omitempty"`
}

// AssessmentRepository provides typed CRUD over assessment documents.
type AssessmentRepository interface {
	// Create assigns a new unique id and persists the record with
	// submitted=false, evaluated=false.
	Create(ctx context.Context, assessment *models.Assessment) (string, error)

	GetByID(ctx context.Context, id string) (*models.Assessment, error)

	// List returns all assessments; order is store-defined.
	List(ctx context.Context) ([]*models.Assessment, error)

	// Update merges the patch into the existing record. expectedVersion is
	// checked when >= 0; pass store.VersionAny to skip.
	Update(ctx context.Context, id string, patch *AssessmentPatch, expectedVersion int64) (int64, error)

	// Delete reports whether a record was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// QuestionRepository manages standalone question records used as a staging
// area during multi-step authoring, before embedding into an assessment.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) (string, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) (bool, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Question, error)
	ListAll(ctx context.Context) ([]*models.Question, error)
}

// SwotRepository stores SWOT analyses one-to-one with assessments.
type SwotRepository interface {
	Save(ctx context.Context, swot *models.SwotAnalysis) error
	GetByAssessment(ctx context.Context, assessmentID string) (*models.SwotAnalysis, error)
}

// Repository aggregates the typed repositories built over one document
// store.
type Repository interface {
	Assessment() AssessmentRepository
	Question() QuestionRepository
	Swot() SwotRepository
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// IsVersionMismatchError reports whether err represents a lost optimistic
// concurrency race.
func IsVersionMismatchError(err error) bool {
	return errors.Is(err, store.ErrVersionMismatch)
}
