package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupulse/assessment-platform/internal/auth"
	"github.com/edupulse/assessment-platform/internal/cache"
	"github.com/edupulse/assessment-platform/internal/events"
	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/oracle"
	"github.com/edupulse/assessment-platform/internal/repositories"
)

const swotTimeout = 60 * time.Second

type submissionService struct {
	repo      repositories.Repository
	oracle    oracle.Client
	publisher events.EventPublisher
	cache     cache.CacheService
	logger    *slog.Logger
}

func NewSubmissionService(
	repo repositories.Repository,
	oracleClient oracle.Client,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	logger *slog.Logger,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		oracle:    oracleClient,
		publisher: publisher,
		cache:     cacheService,
		logger:    logger,
	}
}

// RecordSubmission writes a student's answers onto the assessment's embedded
// question sequence and raises the submitted flag. Re-submitting before
// evaluation overwrites the previous answers; once evaluated the assessment
// is immutable.
func (s *submissionService) RecordSubmission(ctx context.Context, assessmentID string, answers map[string]AnswerInput, principal *auth.Principal) error {
	assessment, err := s.loadAssessment(ctx, assessmentID)
	if err != nil {
		return err
	}
	if assessment.Evaluated {
		return fmt.Errorf("%w: assessment %s is already evaluated", ErrInvalidState, assessmentID)
	}
	if len(assessment.Questions) == 0 {
		return fmt.Errorf("%w: assessment %s has no questions to answer", ErrInvalidState, assessmentID)
	}

	for questionID := range answers {
		if _, ok := assessment.QuestionByID(questionID); !ok {
			return NewValidationError("answers", fmt.Sprintf("question %s does not belong to assessment %s", questionID, assessmentID), questionID)
		}
	}

	// Full rewrite of the question sequence; questions without a supplied
	// answer keep their prior values.
	questions := make([]models.Question, len(assessment.Questions))
	answered := 0
	for i, q := range assessment.Questions {
		if answer, ok := answers[q.ID]; ok {
			if answer.Text != nil {
				q.Answer = *answer.Text
			}
			if answer.Image != nil {
				q.ImageRef = *answer.Image
			}
			answered++
		}
		questions[i] = q
	}

	now := time.Now().UTC()
	submitted := true
	patch := &repositories.AssessmentPatch{
		Questions: &questions,
		Submitted: &submitted,
		UpdatedAt: &now,
	}
	if !assessment.Submitted {
		attempted := assessment.StudentsAttempted + 1
		patch.StudentsAttempted = &attempted
	}

	if _, err := s.repo.Assessment().Update(ctx, assessmentID, patch, assessment.Version); err != nil {
		switch {
		case repositories.IsNotFoundError(err):
			return fmt.Errorf("%w: %s", ErrAssessmentNotFound, assessmentID)
		case repositories.IsVersionMismatchError(err):
			return fmt.Errorf("%w: assessment %s was modified concurrently", ErrConflict, assessmentID)
		}
		return fmt.Errorf("failed to record submission for assessment %s: %w", assessmentID, err)
	}
	s.invalidate(ctx, assessmentID)

	s.publish(ctx, events.NewLifecycleEvent(events.EventSubmissionReceived, events.SubmissionReceivedEvent{
		AssessmentID:     assessmentID,
		AnsweredCount:    answered,
		QuestionCount:    len(questions),
		SubmittedBy:      principalID(principal),
		AlreadySubmitted: assessment.Submitted,
	}))

	s.logger.Info("submission recorded",
		"assessment_id", assessmentID,
		"answered", answered,
		"questions", len(questions),
		"resubmission", assessment.Submitted)
	return nil
}

// Reconcile converts oracle verdicts into the persisted evaluation shape. It
// is a pure function: validation failures report the offending question and
// leave no trace.
func Reconcile(assessment *models.Assessment, verdicts []oracle.Verdict) (*Reconciliation, error) {
	results := make([]models.EvaluationResult, 0, len(verdicts))
	correctness := make(map[string]bool, len(verdicts))
	seen := make(map[string]bool, len(verdicts))
	total := 0.0

	for _, v := range verdicts {
		question, ok := assessment.QuestionByID(v.QuestionID)
		if !ok {
			return nil, &InvalidEvaluationError{QuestionID: v.QuestionID, Reason: "no such question in assessment"}
		}
		if seen[v.QuestionID] {
			return nil, &InvalidEvaluationError{QuestionID: v.QuestionID, Reason: "duplicate verdict"}
		}
		seen[v.QuestionID] = true
		if v.Score < 0 || v.Score > float64(question.Marks) {
			return nil, &InvalidEvaluationError{
				QuestionID: v.QuestionID,
				Reason:     fmt.Sprintf("score %.2f outside [0, %d]", v.Score, question.Marks),
			}
		}

		results = append(results, models.EvaluationResult{
			QuestionID: v.QuestionID,
			Marks:      v.Score,
			IsCorrect:  v.Correct,
			Feedback:   v.Feedback,
			Analysis:   "",
		})
		correctness[v.QuestionID] = v.Correct
		total += v.Score
	}

	return &Reconciliation{
		Results:     results,
		TotalMarks:  total,
		Correctness: correctness,
	}, nil
}

// ApplyEvaluation persists caller-supplied verdicts for an assessment whose
// answers were scored out of band.
func (s *submissionService) ApplyEvaluation(ctx context.Context, assessmentID string, results []models.EvaluationResult, principal *auth.Principal) (*EvaluationResponse, error) {
	assessment, err := s.loadAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := guardEvaluable(assessment, assessmentID); err != nil {
		return nil, err
	}

	verdicts := make([]oracle.Verdict, 0, len(results))
	for _, r := range results {
		verdicts = append(verdicts, oracle.Verdict{
			QuestionID: r.QuestionID,
			Score:      r.Marks,
			Correct:    r.IsCorrect,
			Feedback:   r.Feedback,
		})
	}
	reconciliation, err := Reconcile(assessment, verdicts)
	if err != nil {
		return nil, err
	}

	if err := s.persistEvaluation(ctx, assessment, reconciliation); err != nil {
		return nil, err
	}
	return evaluationResponse(reconciliation), nil
}

// Evaluate drives the full flow: build oracle items from the submitted
// answers, score them, reconcile, persist, and kick off the best-effort SWOT
// companion.
func (s *submissionService) Evaluate(ctx context.Context, assessmentID string, principal *auth.Principal) (*EvaluationResponse, error) {
	assessment, err := s.loadAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := guardEvaluable(assessment, assessmentID); err != nil {
		return nil, err
	}

	items := evaluationItems(assessment)
	verdicts, err := s.oracle.Evaluate(ctx, items)
	if err != nil {
		// Submitted state is untouched; the caller can retry once the
		// oracle recovers.
		s.logger.Error("oracle evaluation failed",
			"assessment_id", assessmentID,
			"error", err)
		return nil, err
	}

	reconciliation, err := Reconcile(assessment, verdicts)
	if err != nil {
		return nil, err
	}
	if err := s.persistEvaluation(ctx, assessment, reconciliation); err != nil {
		return nil, err
	}

	go s.generateSwot(assessmentID, items)

	return evaluationResponse(reconciliation), nil
}

func (s *submissionService) GetSwot(ctx context.Context, assessmentID string) (*models.SwotAnalysis, error) {
	swot, err := s.repo.Swot().GetByAssessment(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: assessment %s", ErrSwotNotFound, assessmentID)
		}
		return nil, fmt.Errorf("failed to load swot analysis for assessment %s: %w", assessmentID, err)
	}
	return swot, nil
}

// persistEvaluation publishes evaluation_results and evaluated=true in one
// version-checked merge so readers never observe one without the other.
func (s *submissionService) persistEvaluation(ctx context.Context, assessment *models.Assessment, reconciliation *Reconciliation) error {
	now := time.Now().UTC()
	evaluated := true
	patch := &repositories.AssessmentPatch{
		Evaluated:         &evaluated,
		EvaluationResults: &reconciliation.Results,
		UpdatedAt:         &now,
	}
	if reconciliation.TotalMarks >= float64(assessment.PassingScore) {
		passed := assessment.StudentsPassed + 1
		patch.StudentsPassed = &passed
	}

	if _, err := s.repo.Assessment().Update(ctx, assessment.ID, patch, assessment.Version); err != nil {
		switch {
		case repositories.IsNotFoundError(err):
			return fmt.Errorf("%w: %s", ErrAssessmentNotFound, assessment.ID)
		case repositories.IsVersionMismatchError(err):
			return fmt.Errorf("%w: assessment %s was evaluated concurrently", ErrConflict, assessment.ID)
		}
		return fmt.Errorf("failed to persist evaluation for assessment %s: %w", assessment.ID, err)
	}
	s.invalidate(ctx, assessment.ID)

	s.publish(ctx, events.NewLifecycleEvent(events.EventEvaluationCompleted, events.EvaluationCompletedEvent{
		AssessmentID: assessment.ID,
		TotalMarks:   reconciliation.TotalMarks,
		MaxScore:     assessment.MaxScore,
		PassingScore: assessment.PassingScore,
		Passed:       reconciliation.TotalMarks >= float64(assessment.PassingScore),
		ResultCount:  len(reconciliation.Results),
	}))

	s.logger.Info("evaluation persisted",
		"assessment_id", assessment.ID,
		"total_marks", reconciliation.TotalMarks,
		"results", len(reconciliation.Results))
	return nil
}

// generateSwot runs detached from the request: SWOT is a best-effort
// companion and its failure never disturbs the evaluated state.
func (s *submissionService) generateSwot(assessmentID string, items []oracle.EvaluationItem) {
	ctx, cancel := context.WithTimeout(context.Background(), swotTimeout)
	defer cancel()

	report, err := s.oracle.GenerateSWOT(ctx, items)
	if err != nil {
		s.logger.Warn("swot generation failed",
			"assessment_id", assessmentID,
			"error", err)
		return
	}

	swot := &models.SwotAnalysis{
		AssessmentID:  assessmentID,
		Strengths:     report.Strengths,
		Weaknesses:    report.Weaknesses,
		Opportunities: report.Opportunities,
		Threats:       report.Threats,
		Analysis:      report.Analysis,
	}
	if err := s.repo.Swot().Save(ctx, swot); err != nil {
		s.logger.Warn("failed to save swot analysis",
			"assessment_id", assessmentID,
			"error", err)
		return
	}

	s.publish(ctx, events.NewLifecycleEvent(events.EventSwotCompleted, events.SwotCompletedEvent{
		AssessmentID: assessmentID,
	}))
	s.logger.Info("swot analysis saved", "assessment_id", assessmentID)
}

func (s *submissionService) loadAssessment(ctx context.Context, assessmentID string) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, assessmentID)
		}
		return nil, fmt.Errorf("failed to load assessment %s: %w", assessmentID, err)
	}
	return assessment, nil
}

func (s *submissionService) invalidate(ctx context.Context, assessmentID string) {
	if err := s.cache.Delete(ctx, assessmentCacheKey(assessmentID)); err != nil {
		s.logger.Warn("failed to invalidate assessment cache", "assessment_id", assessmentID, "error", err)
	}
}

func (s *submissionService) publish(ctx context.Context, event *events.LifecycleEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish lifecycle event",
			"event_type", event.Type,
			"error", err)
	}
}

func guardEvaluable(assessment *models.Assessment, assessmentID string) error {
	if !assessment.Submitted {
		return fmt.Errorf("%w: assessment %s has not been submitted", ErrInvalidState, assessmentID)
	}
	if assessment.Evaluated {
		return fmt.Errorf("%w: assessment %s is already evaluated", ErrInvalidState, assessmentID)
	}
	return nil
}

func evaluationItems(assessment *models.Assessment) []oracle.EvaluationItem {
	items := make([]oracle.EvaluationItem, 0, len(assessment.Questions))
	for _, q := range assessment.Questions {
		items = append(items, oracle.EvaluationItem{
			QuestionID:     q.ID,
			Question:       q.Text,
			ActualAnswer:   q.Answer,
			ExpectedAnswer: q.ExpectedAnswer,
		})
	}
	return items
}

func evaluationResponse(reconciliation *Reconciliation) *EvaluationResponse {
	return &EvaluationResponse{
		Success:           true,
		Evaluated:         true,
		EvaluationResults: reconciliation.Results,
		TotalMarks:        reconciliation.TotalMarks,
		Correctness:       reconciliation.Correctness,
	}
}

func principalID(principal *auth.Principal) string {
	if principal == nil {
		return ""
	}
	return principal.ID
}
