package models

import "time"

// LifecycleState is the engine's view of where an assessment sits between
// creation and evaluation. It is derived from the persisted flags rather than
// stored, so the flags remain the single source of truth.
type LifecycleState string

const (
	StateCreated   LifecycleState = "created"
	StateAuthored  LifecycleState = "authored"
	StateSubmitted LifecycleState = "submitted"
	StateEvaluated LifecycleState = "evaluated"
)

// Assessment is the unit of work: a scheduled, gradeable collection of
// questions with scoring configuration. It exclusively owns its embedded
// question sequence and evaluation results.
type Assessment struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`

	// Scheduling
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Scoring configuration
	MaxScore     int `json:"max_score" validate:"required,min=1"`
	PassingScore int `json:"passing_score" validate:"min=0"`

	// Classification
	Subject string `json:"subject"`
	Class   string `json:"class"`

	// Questions in insertion order; insertion order is display and grading
	// order.
	Questions []Question `json:"questions"`

	// Lifecycle flags, both monotonic false -> true.
	Submitted bool `json:"submitted"`
	Evaluated bool `json:"evaluated"`

	// EvaluationResults is present iff Evaluated is true.
	EvaluationResults []EvaluationResult `json:"evaluation_results,omitempty"`

	// Aggregate counters maintained externally by reporting.
	StudentsAttempted int `json:"no_st_attempted"`
	StudentsPassed    int `json:"no_st_passed"`

	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is the document store's optimistic-concurrency counter. It is
	// carried on the aggregate for read-modify-write cycles but never
	// serialized into the document body.
	Version int64 `json:"-"`
}

// State derives the lifecycle state from the persisted flags.
func (a *Assessment) State() LifecycleState {
	switch {
	case a.Evaluated:
		return StateEvaluated
	case a.Submitted:
		return StateSubmitted
	case len(a.Questions) > 0:
		return StateAuthored
	default:
		return StateCreated
	}
}

// QuestionByID looks up an embedded question by id.
func (a *Assessment) QuestionByID(id string) (*Question, bool) {
	for i := range a.Questions {
		if a.Questions[i].ID == id {
			return &a.Questions[i], true
		}
	}
	return nil, false
}

// TotalQuestionMarks sums the marks of all embedded questions.
func (a *Assessment) TotalQuestionMarks() int {
	total := 0
	for i := range a.Questions {
		total += a.Questions[i].Marks
	}
	return total
}
