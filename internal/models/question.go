package models

// QuestionType discriminates the three supported question variants.
type QuestionType string

const (
	MCQ         QuestionType = "mcq"
	ShortAnswer QuestionType = "short_answer"
	LongAnswer  QuestionType = "long_answer"
)

// AnswerType indicates how a student's answer is captured.
type AnswerType string

const (
	AnswerTypeText  AnswerType = "text"
	AnswerTypeImage AnswerType = "image"
)

// Option is one selectable choice of an MCQ question; the expected answer
// references an option by id.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one gradeable item. It lives either embedded in an
// assessment's question sequence, which is the authoritative copy, or as a
// standalone staging record during multi-step authoring.
type Question struct {
	ID string `json:"id"`

	Type           QuestionType `json:"type" validate:"required,question_type"`
	Text           string       `json:"text" validate:"required"`
	ExpectedAnswer string       `json:"expected_answer" validate:"required"`
	Marks          int          `json:"marks" validate:"required,min=1"`
	AnswerType     AnswerType   `json:"answer_type,omitempty" validate:"omitempty,answer_type"`

	// Options is populated for MCQ questions only.
	Options []Option `json:"options,omitempty"`

	// AssessmentID tags standalone staging records with their parent.
	AssessmentID string `json:"assessment_id,omitempty"`

	// Populated by submission: the student's answer and an optional image
	// reference.
	Answer   string `json:"answer,omitempty"`
	ImageRef string `json:"image_url,omitempty"`
}

// OptionByID looks up an MCQ option by id.
func (q *Question) OptionByID(id string) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// IsMCQ reports whether the question is multiple choice.
func (q *Question) IsMCQ() bool {
	return q.Type == MCQ
}
