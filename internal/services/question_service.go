package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupulse/assessment-platform/internal/auth"
	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *questionService) CreateBatch(ctx context.Context, assessmentID string, inputs []QuestionInput, principal *auth.Principal) ([]*models.Question, error) {
	if principal != nil && !principal.CanAuthor() {
		return nil, fmt.Errorf("%w: role %s cannot author questions", ErrForbidden, principal.Role)
	}
	if len(inputs) == 0 {
		return nil, NewValidationError("questions", "at least one question is required", nil)
	}

	if assessmentID != "" {
		if _, err := s.repo.Assessment().GetByID(ctx, assessmentID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, assessmentID)
			}
			return nil, fmt.Errorf("failed to load assessment %s: %w", assessmentID, err)
		}
	}

	questions := questionsFromInputs(inputs, assessmentID)
	created := make([]*models.Question, 0, len(questions))
	for i := range questions {
		q := questions[i]
		if err := s.validator.ValidateStruct(&inputs[i]); err != nil {
			return nil, err
		}
		if errs := s.validator.ValidateQuestion(&q); len(errs) > 0 {
			return nil, errs
		}
		id, err := s.repo.Question().Create(ctx, &q)
		if err != nil {
			return nil, fmt.Errorf("failed to create question: %w", err)
		}
		q.ID = id
		created = append(created, &q)
	}

	s.logger.Info("questions created",
		"assessment_id", assessmentID,
		"count", len(created))
	return created, nil
}

func (s *questionService) GetByID(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load question %s: %w", id, err)
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, question *models.Question, principal *auth.Principal) error {
	if principal != nil && !principal.CanAuthor() {
		return fmt.Errorf("%w: role %s cannot modify questions", ErrForbidden, principal.Role)
	}
	if question.ID == "" {
		return NewValidationError("id", "question id is required", nil)
	}
	if errs := s.validator.ValidateQuestion(question); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: %s", ErrQuestionNotFound, question.ID)
		}
		return fmt.Errorf("failed to update question %s: %w", question.ID, err)
	}
	s.logger.Info("question updated", "question_id", question.ID)
	return nil
}

func (s *questionService) Delete(ctx context.Context, id string, principal *auth.Principal) error {
	if principal != nil && !principal.CanAuthor() {
		return fmt.Errorf("%w: role %s cannot delete questions", ErrForbidden, principal.Role)
	}

	deleted, err := s.repo.Question().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete question %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	s.logger.Info("question deleted", "question_id", id)
	return nil
}

func (s *questionService) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Question, error) {
	questions, err := s.repo.Question().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for assessment %s: %w", assessmentID, err)
	}
	return questions, nil
}

func (s *questionService) ListAll(ctx context.Context) ([]*models.Question, error) {
	questions, err := s.repo.Question().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}
