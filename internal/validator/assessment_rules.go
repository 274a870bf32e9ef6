package validator

import (
	"fmt"

	"github.com/edupulse/assessment-platform/internal/apperrors"
	"github.com/edupulse/assessment-platform/internal/models"
)

// ValidateAssessment checks the business rules an assessment must satisfy at
// authoring time: a coherent schedule, a passing score inside the scoring
// range, per-type question content, and question marks summing to the
// maximum score.
func (v *Validator) ValidateAssessment(a *models.Assessment) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if a.EndDate.Before(a.StartDate) {
		errs = append(errs, *apperrors.NewValidationError("end_date", "must not be before start_date", a.EndDate))
	}
	if a.PassingScore < 0 || a.PassingScore > a.MaxScore {
		errs = append(errs, *apperrors.NewValidationError("passing_score", "must be between 0 and max_score", a.PassingScore))
	}

	for i := range a.Questions {
		errs = append(errs, v.ValidateQuestion(&a.Questions[i])...)
	}

	if len(a.Questions) > 0 {
		if total := a.TotalQuestionMarks(); total != a.MaxScore {
			errs = append(errs, *apperrors.NewValidationError(
				"questions",
				fmt.Sprintf("question marks sum to %d, expected max_score %d", total, a.MaxScore),
				total))
		}
	}

	return errs
}

// ValidateQuestion checks type-specific question content. The switch is
// exhaustive over the supported question types.
func (v *Validator) ValidateQuestion(q *models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if q.Text == "" {
		errs = append(errs, *apperrors.NewValidationError("text", "question text is required", nil))
	}
	if q.Marks <= 0 {
		errs = append(errs, *apperrors.NewValidationError("marks", "must be a positive integer", q.Marks))
	}
	if q.ExpectedAnswer == "" {
		errs = append(errs, *apperrors.NewValidationError("expected_answer", "expected answer is required", nil))
	}

	switch q.Type {
	case models.MCQ:
		if len(q.Options) < 2 {
			errs = append(errs, *apperrors.NewValidationError("options", "mcq questions need at least two options", len(q.Options)))
			break
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.ID == "" || opt.Text == "" {
				errs = append(errs, *apperrors.NewValidationError("options", "each option needs an id and text", opt))
			}
			if seen[opt.ID] {
				errs = append(errs, *apperrors.NewValidationError("options", "duplicate option id", opt.ID))
			}
			seen[opt.ID] = true
		}
		if q.ExpectedAnswer != "" {
			if _, ok := q.OptionByID(q.ExpectedAnswer); !ok {
				errs = append(errs, *apperrors.NewValidationError("expected_answer", "must reference an option id", q.ExpectedAnswer))
			}
		}
	case models.ShortAnswer, models.LongAnswer:
		if len(q.Options) > 0 {
			errs = append(errs, *apperrors.NewValidationError("options", "only mcq questions carry options", q.Type))
		}
	default:
		errs = append(errs, *apperrors.NewValidationError("type", "unknown question type", q.Type))
	}

	return errs
}
