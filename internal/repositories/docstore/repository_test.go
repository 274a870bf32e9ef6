package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/store"
)

func seedAssessment(t *testing.T, repo repositories.Repository) string {
	t.Helper()
	id, err := repo.Assessment().Create(context.Background(), &models.Assessment{
		Title:        "Unit Quiz",
		StartDate:    time.Now().UTC(),
		EndDate:      time.Now().UTC().Add(time.Hour),
		MaxScore:     20,
		PassingScore: 10,
		Subject:      "Physics",
		Questions: []models.Question{
			{ID: "q1", Type: models.ShortAnswer, Text: "F = ?", ExpectedAnswer: "ma", Marks: 20},
		},
	})
	require.NoError(t, err)
	return id
}

func TestAssessmentRepository_CreateResetsLifecycle(t *testing.T) {
	repo := New(store.NewMemoryStore())

	id, err := repo.Assessment().Create(context.Background(), &models.Assessment{
		Title:             "Tampered",
		StartDate:         time.Now().UTC(),
		EndDate:           time.Now().UTC().Add(time.Hour),
		MaxScore:          10,
		Submitted:         true,
		Evaluated:         true,
		EvaluationResults: []models.EvaluationResult{{QuestionID: "x"}},
	})
	require.NoError(t, err)

	created, err := repo.Assessment().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, created.Submitted)
	assert.False(t, created.Evaluated)
	assert.Empty(t, created.EvaluationResults)
	assert.NotZero(t, created.CreatedAt)
}

func TestAssessmentRepository_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore())
	id := seedAssessment(t, repo)

	title := "Unit Quiz v2"
	_, err := repo.Assessment().Update(ctx, id, &repositories.AssessmentPatch{Title: &title}, store.VersionAny)
	require.NoError(t, err)

	updated, err := repo.Assessment().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Unit Quiz v2", updated.Title)
	assert.Equal(t, "Physics", updated.Subject)
	require.Len(t, updated.Questions, 1)
	assert.Equal(t, "q1", updated.Questions[0].ID)
}

func TestAssessmentRepository_UpdateVersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore())
	id := seedAssessment(t, repo)

	current, err := repo.Assessment().GetByID(ctx, id)
	require.NoError(t, err)

	title := "first writer"
	_, err = repo.Assessment().Update(ctx, id, &repositories.AssessmentPatch{Title: &title}, current.Version)
	require.NoError(t, err)

	stale := "second writer"
	_, err = repo.Assessment().Update(ctx, id, &repositories.AssessmentPatch{Title: &stale}, current.Version)
	assert.True(t, repositories.IsVersionMismatchError(err))
}

func TestAssessmentRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore())
	id := seedAssessment(t, repo)

	deleted, err := repo.Assessment().Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Assessment().Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestQuestionRepository_Staging(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore())

	id, err := repo.Question().Create(ctx, &models.Question{
		Type:           models.ShortAnswer,
		Text:           "Unit of force?",
		ExpectedAnswer: "newton",
		Marks:          5,
		AssessmentID:   "a1",
	})
	require.NoError(t, err)

	_, err = repo.Question().Create(ctx, &models.Question{
		Type:           models.ShortAnswer,
		Text:           "Unit of energy?",
		ExpectedAnswer: "joule",
		Marks:          5,
		AssessmentID:   "a2",
	})
	require.NoError(t, err)

	staged, err := repo.Question().ListByAssessment(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, id, staged[0].ID)

	all, err := repo.Question().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSwotRepository_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore())

	require.NoError(t, repo.Swot().Save(ctx, &models.SwotAnalysis{
		AssessmentID: "a1",
		Strengths:    "initial",
	}))
	require.NoError(t, repo.Swot().Save(ctx, &models.SwotAnalysis{
		AssessmentID: "a1",
		Strengths:    "revised",
		Weaknesses:   "pacing",
	}))

	swot, err := repo.Swot().GetByAssessment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "revised", swot.Strengths)
	assert.Equal(t, "pacing", swot.Weaknesses)
	assert.NotZero(t, swot.UpdatedAt)

	_, err = repo.Swot().GetByAssessment(ctx, "missing")
	assert.True(t, repositories.IsNotFoundError(err))
}
