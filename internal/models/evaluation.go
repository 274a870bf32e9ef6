package models

import "time"

// EvaluationResult is one scored verdict per question, produced by the
// reconciliation of oracle output.
type EvaluationResult struct {
	QuestionID string  `json:"question_id"`
	Marks      float64 `json:"marks"`
	IsCorrect  bool    `json:"is_correct"`
	Feedback   string  `json:"feedback,omitempty"`

	// Analysis is reserved for per-question deep analysis; the reconciliation
	// path always writes an empty string today.
	Analysis string `json:"analysis"`
}

// SwotAnalysis is the best-effort narrative feedback generated alongside
// evaluation, stored one-to-one with an assessment.
type SwotAnalysis struct {
	AssessmentID  string    `json:"assessment_id"`
	Strengths     string    `json:"strengths"`
	Weaknesses    string    `json:"weaknesses"`
	Opportunities string    `json:"opportunities"`
	Threats       string    `json:"threats"`
	Analysis      string    `json:"analysis,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
