package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/store"
)

type assessmentDocstore struct {
	docs store.DocumentStore
}

func NewAssessmentRepository(docs store.DocumentStore) repositories.AssessmentRepository {
	return &assessmentDocstore{docs: docs}
}

func (r *assessmentDocstore) Create(ctx context.Context, assessment *models.Assessment) (string, error) {
	assessment.ID = uuid.NewString()
	assessment.Submitted = false
	assessment.Evaluated = false
	assessment.EvaluationResults = nil
	if assessment.Questions == nil {
		assessment.Questions = []models.Question{}
	}
	for i := range assessment.Questions {
		assessment.Questions[i].AssessmentID = assessment.ID
	}
	now := time.Now().UTC()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now

	data, err := json.Marshal(assessment)
	if err != nil {
		return "", fmt.Errorf("failed to encode assessment: %w", err)
	}

	version, err := r.docs.Put(ctx, assessmentsCollection, assessment.ID, data, 0)
	if err != nil {
		return "", fmt.Errorf("failed to create assessment: %w", err)
	}
	assessment.Version = version
	return assessment.ID, nil
}

func (r *assessmentDocstore) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	doc, err := r.docs.Get(ctx, assessmentsCollection, id)
	if err != nil {
		return nil, err
	}
	return decodeAssessment(doc)
}

func (r *assessmentDocstore) List(ctx context.Context) ([]*models.Assessment, error) {
	docs, err := r.docs.List(ctx, assessmentsCollection)
	if err != nil {
		return nil, err
	}
	assessments := make([]*models.Assessment, 0, len(docs))
	for _, doc := range docs {
		assessment, err := decodeAssessment(doc)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}
	return assessments, nil
}

func (r *assessmentDocstore) Update(ctx context.Context, id string, patch *repositories.AssessmentPatch, expectedVersion int64) (int64, error) {
	if patch.UpdatedAt == nil {
		now := time.Now().UTC()
		patch.UpdatedAt = &now
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return 0, fmt.Errorf("failed to encode assessment patch: %w", err)
	}
	return r.docs.Merge(ctx, assessmentsCollection, id, data, expectedVersion)
}

func (r *assessmentDocstore) Delete(ctx context.Context, id string) (bool, error) {
	return r.docs.Delete(ctx, assessmentsCollection, id)
}

func decodeAssessment(doc *store.Document) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := json.Unmarshal(doc.Data, &assessment); err != nil {
		return nil, fmt.Errorf("failed to decode assessment %s: %w", doc.Key, err)
	}
	assessment.ID = doc.Key
	assessment.Version = doc.Version
	return &assessment, nil
}
