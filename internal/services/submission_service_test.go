package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/assessment-platform/internal/cache"
	"github.com/edupulse/assessment-platform/internal/events"
	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/oracle"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/repositories/docstore"
	"github.com/edupulse/assessment-platform/internal/store"
)

// policyOracle is a local stand-in implementing the grading policy a
// compatible oracle is expected to follow: exact option match for mcq,
// case-insensitive trimmed match for short answers, and a 50% length
// completeness heuristic for long answers.
type policyOracle struct {
	questions map[string]models.Question
	evalErr   error
	swotErr   error
}

func newPolicyOracle(questions []models.Question) *policyOracle {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &policyOracle{questions: byID}
}

func (o *policyOracle) Evaluate(ctx context.Context, items []oracle.EvaluationItem) ([]oracle.Verdict, error) {
	if o.evalErr != nil {
		return nil, o.evalErr
	}
	verdicts := make([]oracle.Verdict, 0, len(items))
	for _, item := range items {
		q := o.questions[item.QuestionID]
		var correct bool
		switch q.Type {
		case models.MCQ:
			correct = item.ActualAnswer == item.ExpectedAnswer
		case models.ShortAnswer:
			correct = strings.EqualFold(strings.TrimSpace(item.ActualAnswer), strings.TrimSpace(item.ExpectedAnswer))
		case models.LongAnswer:
			correct = len(item.ActualAnswer)*2 >= len(item.ExpectedAnswer)
		}
		verdict := oracle.Verdict{QuestionID: item.QuestionID, Correct: correct}
		if correct {
			verdict.Score = float64(q.Marks)
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts, nil
}

func (o *policyOracle) GenerateSWOT(ctx context.Context, items []oracle.EvaluationItem) (*oracle.SwotReport, error) {
	if o.swotErr != nil {
		return nil, o.swotErr
	}
	return &oracle.SwotReport{
		Strengths:  "consistent accuracy",
		Weaknesses: "none observed",
	}, nil
}

func (o *policyOracle) Forward(ctx context.Context, endpoint string, body []byte) (int, []byte, error) {
	return 0, nil, errors.New("not supported in tests")
}

type engineFixture struct {
	service   SubmissionService
	repo      repositories.Repository
	oracle    *policyOracle
	publisher *events.MockEventPublisher
}

func newEngineFixture(t *testing.T, questions []models.Question) (*engineFixture, string) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	repo := docstore.New(store.NewMemoryStore())
	stub := newPolicyOracle(questions)
	publisher := events.NewMockEventPublisher(logger)

	fixture := &engineFixture{
		service:   NewSubmissionService(repo, stub, publisher, cache.NoopCache{}, logger),
		repo:      repo,
		oracle:    stub,
		publisher: publisher,
	}

	id, err := repo.Assessment().Create(context.Background(), &models.Assessment{
		Title:        "Geography Basics",
		StartDate:    time.Now().UTC(),
		EndDate:      time.Now().UTC().Add(time.Hour),
		MaxScore:     100,
		PassingScore: 60,
		Subject:      "Geography",
		Questions:    questions,
	})
	require.NoError(t, err)
	return fixture, id
}

func standardQuestions() []models.Question {
	return []models.Question{
		{
			ID:             "q1",
			Type:           models.MCQ,
			Text:           "Which option is the capital of France?",
			ExpectedAnswer: "b",
			Marks:          50,
			Options: []models.Option{
				{ID: "a", Text: "London"},
				{ID: "b", Text: "Paris"},
			},
		},
		{
			ID:             "q2",
			Type:           models.ShortAnswer,
			Text:           "Name the capital of France.",
			ExpectedAnswer: "Paris",
			Marks:          50,
		},
	}
}

func answers(pairs ...string) map[string]AnswerInput {
	m := make(map[string]AnswerInput, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		text := pairs[i+1]
		m[pairs[i]] = AnswerInput{Text: &text}
	}
	return m
}

func (f *engineFixture) mustGet(t *testing.T, id string) *models.Assessment {
	t.Helper()
	assessment, err := f.repo.Assessment().GetByID(context.Background(), id)
	require.NoError(t, err)
	return assessment
}

func TestRecordSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("writes answers and raises submitted", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())

		err := f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil)
		require.NoError(t, err)

		assessment := f.mustGet(t, id)
		assert.True(t, assessment.Submitted)
		assert.False(t, assessment.Evaluated)
		assert.Equal(t, "b", assessment.Questions[0].Answer)
		assert.Equal(t, "paris", assessment.Questions[1].Answer)
		assert.Equal(t, 1, assessment.StudentsAttempted)
	})

	t.Run("unanswered questions keep prior values", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())

		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b"), nil))

		assessment := f.mustGet(t, id)
		assert.Equal(t, "b", assessment.Questions[0].Answer)
		assert.Empty(t, assessment.Questions[1].Answer)
	})

	t.Run("idempotent for identical answer maps", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())

		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))
		first := f.mustGet(t, id)
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))
		second := f.mustGet(t, id)

		assert.Equal(t, first.Questions, second.Questions)
		assert.True(t, second.Submitted)
		// The attempt counter only moves on the first submission.
		assert.Equal(t, 1, second.StudentsAttempted)
	})

	t.Run("rejects unknown question ids", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())

		err := f.service.RecordSubmission(ctx, id, answers("ghost", "x"), nil)
		assert.True(t, IsValidation(err))
	})

	t.Run("rejects submission after evaluation", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))
		_, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)

		err = f.service.RecordSubmission(ctx, id, answers("q1", "a"), nil)
		assert.True(t, IsInvalidState(err))
	})

	t.Run("missing assessment", func(t *testing.T) {
		f, _ := newEngineFixture(t, standardQuestions())

		err := f.service.RecordSubmission(ctx, "nope", answers("q1", "b"), nil)
		assert.True(t, IsNotFound(err))
	})

	t.Run("publishes submission event", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())

		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b"), nil))

		published := f.publisher.PublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSubmissionReceived, published[0].Type)
	})
}

func TestReconcile(t *testing.T) {
	assessment := &models.Assessment{
		ID:        "a1",
		MaxScore:  100,
		Questions: standardQuestions(),
	}

	t.Run("builds results, total and correctness map", func(t *testing.T) {
		reconciliation, err := Reconcile(assessment, []oracle.Verdict{
			{QuestionID: "q1", Score: 50, Correct: true, Feedback: "exact match"},
			{QuestionID: "q2", Score: 30, Correct: false},
		})
		require.NoError(t, err)

		assert.Equal(t, 80.0, reconciliation.TotalMarks)
		require.Len(t, reconciliation.Results, 2)
		assert.Equal(t, "q1", reconciliation.Results[0].QuestionID)
		assert.Equal(t, 50.0, reconciliation.Results[0].Marks)
		assert.Equal(t, "exact match", reconciliation.Results[0].Feedback)
		assert.Empty(t, reconciliation.Results[0].Analysis)
		assert.Equal(t, map[string]bool{"q1": true, "q2": false}, reconciliation.Correctness)
	})

	t.Run("rejects unknown question id", func(t *testing.T) {
		_, err := Reconcile(assessment, []oracle.Verdict{{QuestionID: "ghost", Score: 1}})
		var invalid *InvalidEvaluationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "ghost", invalid.QuestionID)
	})

	t.Run("rejects duplicate verdicts", func(t *testing.T) {
		_, err := Reconcile(assessment, []oracle.Verdict{
			{QuestionID: "q1", Score: 10, Correct: true},
			{QuestionID: "q1", Score: 20, Correct: true},
		})
		var invalid *InvalidEvaluationError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, invalid.Reason, "duplicate")
	})

	t.Run("rejects marks outside the question range", func(t *testing.T) {
		for _, score := range []float64{-1, 51} {
			_, err := Reconcile(assessment, []oracle.Verdict{{QuestionID: "q1", Score: score}})
			var invalid *InvalidEvaluationError
			require.ErrorAs(t, err, &invalid, "score %v", score)
		}
	})
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("all correct", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))

		resp, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)

		assert.True(t, resp.Evaluated)
		assert.Equal(t, 100.0, resp.TotalMarks)
		assert.Equal(t, map[string]bool{"q1": true, "q2": true}, resp.Correctness)

		assessment := f.mustGet(t, id)
		assert.True(t, assessment.Evaluated)
		require.Len(t, assessment.EvaluationResults, 2)
		assert.Equal(t, 1, assessment.StudentsPassed)
	})

	t.Run("all wrong", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "a", "q2", "London"), nil))

		resp, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)

		assert.Equal(t, 0.0, resp.TotalMarks)
		for _, r := range resp.EvaluationResults {
			assert.False(t, r.IsCorrect)
		}
		assert.Equal(t, 0, f.mustGet(t, id).StudentsPassed)
	})

	t.Run("unsubmitted assessment is rejected untouched", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())

		_, err := f.service.Evaluate(ctx, id, nil)
		assert.True(t, IsInvalidState(err))

		assessment := f.mustGet(t, id)
		assert.False(t, assessment.Submitted)
		assert.False(t, assessment.Evaluated)
		assert.Empty(t, assessment.EvaluationResults)
	})

	t.Run("already evaluated is rejected", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))
		_, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)

		_, err = f.service.Evaluate(ctx, id, nil)
		assert.True(t, IsInvalidState(err))
	})

	t.Run("oracle outage leaves state evaluable and retry succeeds", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))

		f.oracle.evalErr = fmt.Errorf("%w: timeout", oracle.ErrUnavailable)
		_, err := f.service.Evaluate(ctx, id, nil)
		assert.True(t, IsEvaluationUnavailable(err))

		assessment := f.mustGet(t, id)
		assert.True(t, assessment.Submitted)
		assert.False(t, assessment.Evaluated)

		f.oracle.evalErr = nil
		resp, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)
		assert.Equal(t, 100.0, resp.TotalMarks)
		assert.True(t, f.mustGet(t, id).Evaluated)
	})

	t.Run("publishes evaluation event", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))

		_, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)

		var evaluationEvents []events.LifecycleEvent
		for _, e := range f.publisher.PublishedEvents() {
			if e.Type == events.EventEvaluationCompleted {
				evaluationEvents = append(evaluationEvents, e)
			}
		}
		require.Len(t, evaluationEvents, 1)
		payload, ok := evaluationEvents[0].Data.(events.EvaluationCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, 100.0, payload.TotalMarks)
		assert.True(t, payload.Passed)
	})
}

func TestEvaluate_SwotCompanion(t *testing.T) {
	ctx := context.Background()

	t.Run("saved after evaluation", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))

		_, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			_, err := f.service.GetSwot(ctx, id)
			return err == nil
		}, 2*time.Second, 10*time.Millisecond)

		swot, err := f.service.GetSwot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, swot.AssessmentID)
		assert.Equal(t, "consistent accuracy", swot.Strengths)
	})

	t.Run("swot failure never blocks evaluation", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		f.oracle.swotErr = errors.New("swot model offline")
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))

		resp, err := f.service.Evaluate(ctx, id, nil)
		require.NoError(t, err)
		assert.True(t, resp.Evaluated)
		assert.True(t, f.mustGet(t, id).Evaluated)

		_, err = f.service.GetSwot(ctx, id)
		assert.True(t, IsNotFound(err))
	})
}

func TestApplyEvaluation(t *testing.T) {
	ctx := context.Background()

	t.Run("persists caller-supplied verdicts atomically", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))

		resp, err := f.service.ApplyEvaluation(ctx, id, []models.EvaluationResult{
			{QuestionID: "q1", Marks: 50, IsCorrect: true},
			{QuestionID: "q2", Marks: 25, IsCorrect: false, Feedback: "partially correct"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 75.0, resp.TotalMarks)

		assessment := f.mustGet(t, id)
		assert.True(t, assessment.Evaluated)
		require.Len(t, assessment.EvaluationResults, 2)
		assert.Equal(t, "partially correct", assessment.EvaluationResults[1].Feedback)
	})

	t.Run("guarded by submission state", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())

		_, err := f.service.ApplyEvaluation(ctx, id, []models.EvaluationResult{
			{QuestionID: "q1", Marks: 50, IsCorrect: true},
		}, nil)
		assert.True(t, IsInvalidState(err))
	})

	t.Run("invalid verdicts leave no trace", func(t *testing.T) {
		f, id := newEngineFixture(t, standardQuestions())
		require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b"), nil))

		_, err := f.service.ApplyEvaluation(ctx, id, []models.EvaluationResult{
			{QuestionID: "q1", Marks: 500, IsCorrect: true},
		}, nil)
		require.Error(t, err)

		assessment := f.mustGet(t, id)
		assert.False(t, assessment.Evaluated)
		assert.Empty(t, assessment.EvaluationResults)
	})
}

func TestEvaluate_ConcurrentLoserGetsConflict(t *testing.T) {
	ctx := context.Background()
	f, id := newEngineFixture(t, standardQuestions())
	require.NoError(t, f.service.RecordSubmission(ctx, id, answers("q1", "b", "q2", "paris"), nil))

	// Simulate a racing writer bumping the document version between the
	// engine's read and its merge.
	stale := f.mustGet(t, id)
	_, err := f.service.Evaluate(ctx, id, nil)
	require.NoError(t, err)

	reconciliation, err := Reconcile(stale, []oracle.Verdict{
		{QuestionID: "q1", Score: 50, Correct: true},
		{QuestionID: "q2", Score: 50, Correct: true},
	})
	require.NoError(t, err)

	evaluated := true
	_, err = f.repo.Assessment().Update(ctx, id, &repositories.AssessmentPatch{
		Evaluated:         &evaluated,
		EvaluationResults: &reconciliation.Results,
	}, stale.Version)
	assert.True(t, repositories.IsVersionMismatchError(err))
}
