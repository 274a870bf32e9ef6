package validator

import (
	"testing"
	"time"

	"github.com/edupulse/assessment-platform/internal/models"
)

func baseAssessment() *models.Assessment {
	now := time.Now().UTC()
	return &models.Assessment{
		Title:        "Quiz",
		StartDate:    now,
		EndDate:      now.Add(time.Hour),
		MaxScore:     10,
		PassingScore: 5,
		Questions: []models.Question{
			{
				ID:             "q1",
				Type:           models.ShortAnswer,
				Text:           "2+2?",
				ExpectedAnswer: "4",
				Marks:          10,
			},
		},
	}
}

func TestValidateAssessment(t *testing.T) {
	v := New()

	if errs := v.ValidateAssessment(baseAssessment()); len(errs) != 0 {
		t.Fatalf("expected valid assessment, got %v", errs)
	}

	t.Run("end before start", func(t *testing.T) {
		a := baseAssessment()
		a.EndDate = a.StartDate.Add(-time.Minute)
		if errs := v.ValidateAssessment(a); len(errs) == 0 {
			t.Error("expected error for end date before start date")
		}
	})

	t.Run("passing score above max", func(t *testing.T) {
		a := baseAssessment()
		a.PassingScore = 11
		if errs := v.ValidateAssessment(a); len(errs) == 0 {
			t.Error("expected error for passing score above max score")
		}
	})

	t.Run("marks must sum to max score", func(t *testing.T) {
		a := baseAssessment()
		a.Questions[0].Marks = 7
		if errs := v.ValidateAssessment(a); len(errs) == 0 {
			t.Error("expected error for marks not summing to max score")
		}
	})

	t.Run("no questions skips the sum check", func(t *testing.T) {
		a := baseAssessment()
		a.Questions = nil
		if errs := v.ValidateAssessment(a); len(errs) != 0 {
			t.Errorf("expected no errors without questions, got %v", errs)
		}
	})
}

func TestValidateQuestion(t *testing.T) {
	v := New()

	mcq := func() *models.Question {
		return &models.Question{
			ID:             "q1",
			Type:           models.MCQ,
			Text:           "Pick one",
			ExpectedAnswer: "a",
			Marks:          5,
			Options: []models.Option{
				{ID: "a", Text: "first"},
				{ID: "b", Text: "second"},
			},
		}
	}

	if errs := v.ValidateQuestion(mcq()); len(errs) != 0 {
		t.Fatalf("expected valid mcq, got %v", errs)
	}

	t.Run("mcq needs at least two options", func(t *testing.T) {
		q := mcq()
		q.Options = q.Options[:1]
		if errs := v.ValidateQuestion(q); len(errs) == 0 {
			t.Error("expected error for single-option mcq")
		}
	})

	t.Run("mcq expected answer must reference an option", func(t *testing.T) {
		q := mcq()
		q.ExpectedAnswer = "z"
		if errs := v.ValidateQuestion(q); len(errs) == 0 {
			t.Error("expected error for expected answer not matching an option id")
		}
	})

	t.Run("duplicate option ids rejected", func(t *testing.T) {
		q := mcq()
		q.Options[1].ID = "a"
		q.ExpectedAnswer = "a"
		if errs := v.ValidateQuestion(q); len(errs) == 0 {
			t.Error("expected error for duplicate option ids")
		}
	})

	t.Run("short answers carry no options", func(t *testing.T) {
		q := &models.Question{
			ID:             "q2",
			Type:           models.ShortAnswer,
			Text:           "Capital of France?",
			ExpectedAnswer: "Paris",
			Marks:          5,
			Options:        []models.Option{{ID: "a", Text: "x"}},
		}
		if errs := v.ValidateQuestion(q); len(errs) == 0 {
			t.Error("expected error for short answer question with options")
		}
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		q := &models.Question{
			ID:             "q3",
			Type:           models.QuestionType("essay"),
			Text:           "Discuss.",
			ExpectedAnswer: "anything",
			Marks:          5,
		}
		if errs := v.ValidateQuestion(q); len(errs) == 0 {
			t.Error("expected error for unknown question type")
		}
	})
}
