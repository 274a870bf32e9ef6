package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/assessment-platform/internal/auth"
	"github.com/edupulse/assessment-platform/internal/cache"
	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/store"
	"github.com/edupulse/assessment-platform/internal/validator"
)

const assessmentCacheTTL = 5 * time.Minute

func assessmentCacheKey(id string) string {
	return "assessment:" + id
}

type assessmentService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssessmentService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, v *validator.Validator) AssessmentService {
	return &assessmentService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: v,
	}
}

func (s *assessmentService) Create(ctx context.Context, req *CreateAssessmentRequest, principal *auth.Principal) (*models.Assessment, error) {
	if principal != nil && !principal.CanAuthor() {
		return nil, fmt.Errorf("%w: role %s cannot author assessments", ErrForbidden, principal.Role)
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	assessment := &models.Assessment{
		Title:        req.Title,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		MaxScore:     req.MaxScore,
		PassingScore: req.PassingScore,
		Subject:      req.Subject,
		Class:        req.Class,
		Questions:    questionsFromInputs(req.Questions, ""),
	}
	if principal != nil {
		assessment.CreatedBy = principal.ID
	}
	if errs := s.validator.ValidateAssessment(assessment); len(errs) > 0 {
		return nil, errs
	}

	id, err := s.repo.Assessment().Create(ctx, assessment)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}
	s.logger.Info("assessment created",
		"assessment_id", id,
		"title", assessment.Title,
		"questions", len(assessment.Questions))
	return s.GetByID(ctx, id)
}

func (s *assessmentService) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	cacheKey := assessmentCacheKey(id)
	var cached models.Assessment
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, id)
		}
		return nil, fmt.Errorf("failed to load assessment %s: %w", id, err)
	}

	if err := s.cache.Set(ctx, cacheKey, assessment, assessmentCacheTTL); err != nil {
		s.logger.Warn("failed to cache assessment", "assessment_id", id, "error", err)
	}
	return assessment, nil
}

func (s *assessmentService) List(ctx context.Context) ([]*models.Assessment, error) {
	assessments, err := s.repo.Assessment().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

func (s *assessmentService) Update(ctx context.Context, id string, req *UpdateAssessmentRequest, principal *auth.Principal) (*models.Assessment, error) {
	if principal != nil && !principal.CanAuthor() {
		return nil, fmt.Errorf("%w: role %s cannot modify assessments", ErrForbidden, principal.Role)
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	current, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, id)
		}
		return nil, fmt.Errorf("failed to load assessment %s: %w", id, err)
	}

	if req.Questions != nil && current.Submitted {
		return nil, fmt.Errorf("%w: questions cannot change after submission", ErrInvalidState)
	}

	patched := projectUpdate(current, req)
	if errs := s.validator.ValidateAssessment(patched); len(errs) > 0 {
		return nil, errs
	}

	now := time.Now().UTC()
	patch := &repositories.AssessmentPatch{
		Title:             req.Title,
		Description:       req.Description,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		MaxScore:          req.MaxScore,
		PassingScore:      req.PassingScore,
		Subject:           req.Subject,
		Class:             req.Class,
		Questions:         req.Questions,
		StudentsAttempted: req.StudentsAttempted,
		StudentsPassed:    req.StudentsPassed,
		UpdatedAt:         &now,
	}
	if _, err := s.repo.Assessment().Update(ctx, id, patch, store.VersionAny); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, id)
		}
		return nil, fmt.Errorf("failed to update assessment %s: %w", id, err)
	}

	if err := s.cache.Delete(ctx, assessmentCacheKey(id)); err != nil {
		s.logger.Warn("failed to invalidate assessment cache", "assessment_id", id, "error", err)
	}
	s.logger.Info("assessment updated", "assessment_id", id)
	return s.repo.Assessment().GetByID(ctx, id)
}

func (s *assessmentService) Delete(ctx context.Context, id string, principal *auth.Principal) error {
	if principal != nil && !principal.CanAuthor() {
		return fmt.Errorf("%w: role %s cannot delete assessments", ErrForbidden, principal.Role)
	}

	deleted, err := s.repo.Assessment().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrAssessmentNotFound, id)
	}

	if err := s.cache.Delete(ctx, assessmentCacheKey(id)); err != nil {
		s.logger.Warn("failed to invalidate assessment cache", "assessment_id", id, "error", err)
	}
	s.logger.Info("assessment deleted", "assessment_id", id)
	return nil
}

// projectUpdate applies the patch to a copy of the current assessment so the
// merged document can be validated before anything is written.
func projectUpdate(current *models.Assessment, req *UpdateAssessmentRequest) *models.Assessment {
	patched := *current
	if req.Title != nil {
		patched.Title = *req.Title
	}
	if req.Description != nil {
		patched.Description = *req.Description
	}
	if req.StartDate != nil {
		patched.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		patched.EndDate = *req.EndDate
	}
	if req.MaxScore != nil {
		patched.MaxScore = *req.MaxScore
	}
	if req.PassingScore != nil {
		patched.PassingScore = *req.PassingScore
	}
	if req.Subject != nil {
		patched.Subject = *req.Subject
	}
	if req.Class != nil {
		patched.Class = *req.Class
	}
	if req.Questions != nil {
		patched.Questions = *req.Questions
	}
	return &patched
}

func questionsFromInputs(inputs []QuestionInput, assessmentID string) []models.Question {
	questions := make([]models.Question, 0, len(inputs))
	for _, in := range inputs {
		answerType := in.AnswerType
		if answerType == "" {
			answerType = models.AnswerTypeText
		}
		questions = append(questions, models.Question{
			ID:             uuid.NewString(),
			Type:           in.Type,
			Text:           in.Text,
			ExpectedAnswer: in.ExpectedAnswer,
			Marks:          in.Marks,
			AnswerType:     answerType,
			Options:        in.Options,
			AssessmentID:   assessmentID,
		})
	}
	return questions
}
