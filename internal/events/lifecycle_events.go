package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the lifecycle transition an event announces.
type EventType string

const (
	EventSubmissionReceived  EventType = "assessment.submission_received"
	EventEvaluationCompleted EventType = "assessment.evaluation_completed"
	EventSwotCompleted       EventType = "assessment.swot_completed"
)

// LifecycleEvent is the envelope published for assessment lifecycle
// transitions.
type LifecycleEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Data      any       `json:"data"`
}

// NewLifecycleEvent stamps an envelope for the given payload.
func NewLifecycleEvent(eventType EventType, data any) *LifecycleEvent {
	return &LifecycleEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "assessment-platform",
		Data:      data,
	}
}

// Event payloads.

type SubmissionReceivedEvent struct {
	AssessmentID     string `json:"assessment_id"`
	AnsweredCount    int    `json:"answered_count"`
	QuestionCount    int    `json:"question_count"`
	SubmittedBy      string `json:"submitted_by,omitempty"`
	AlreadySubmitted bool   `json:"already_submitted"`
}

type EvaluationCompletedEvent struct {
	AssessmentID string  `json:"assessment_id"`
	TotalMarks   float64 `json:"total_marks"`
	MaxScore     int     `json:"max_score"`
	PassingScore int     `json:"passing_score"`
	Passed       bool    `json:"passed"`
	ResultCount  int     `json:"result_count"`
}

type SwotCompletedEvent struct {
	AssessmentID string `json:"assessment_id"`
}
