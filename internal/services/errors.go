package services

import (
	"errors"
	"fmt"

	"github.com/edupulse/assessment-platform/internal/apperrors"
	"github.com/edupulse/assessment-platform/internal/oracle"
	"github.com/edupulse/assessment-platform/internal/repositories"
)

// ===== SERVICE ERRORS =====

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSwotNotFound       = errors.New("swot analysis not found")

	// ErrInvalidState marks an operation attempted from a lifecycle state
	// that forbids it.
	ErrInvalidState = errors.New("operation not allowed in current assessment state")

	// ErrConflict marks a write that lost an optimistic concurrency race.
	ErrConflict = errors.New("assessment was modified concurrently")

	ErrForbidden = errors.New("forbidden - insufficient role permissions")
)

// InvalidEvaluationError marks oracle output (or caller-supplied results)
// that fails reconciliation integrity checks.
type InvalidEvaluationError struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
}

func (e *InvalidEvaluationError) Error() string {
	return fmt.Sprintf("invalid evaluation result for question %q: %s", e.QuestionID, e.Reason)
}

// Shared validation error types.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError re-exports the constructor so callers of this package
// can build field errors without importing apperrors directly.
var NewValidationError = apperrors.NewValidationError

// ===== CLASSIFIERS =====

// IsNotFound reports whether err represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSwotNotFound) ||
		repositories.IsNotFoundError(err)
}

// IsInvalidState reports whether err represents a forbidden lifecycle
// transition.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsConflict reports whether err represents a concurrent-modification
// conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || repositories.IsVersionMismatchError(err)
}

// IsValidation reports whether err represents invalid input.
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	if errors.As(err, &single) {
		return true
	}
	var ie *InvalidEvaluationError
	return errors.As(err, &ie)
}

// IsEvaluationUnavailable reports an unreachable oracle.
func IsEvaluationUnavailable(err error) bool {
	return oracle.IsUnavailable(err)
}

// IsEvaluationRejected reports an oracle failure response.
func IsEvaluationRejected(err error) bool {
	return oracle.IsRejected(err)
}

// IsForbidden reports a role permission failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
