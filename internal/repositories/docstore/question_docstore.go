package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/store"
)

type questionDocstore struct {
	docs store.DocumentStore
}

func NewQuestionRepository(docs store.DocumentStore) repositories.QuestionRepository {
	return &questionDocstore{docs: docs}
}

func (r *questionDocstore) Create(ctx context.Context, question *models.Question) (string, error) {
	question.ID = uuid.NewString()

	data, err := json.Marshal(question)
	if err != nil {
		return "", fmt.Errorf("failed to encode question: %w", err)
	}
	if _, err := r.docs.Put(ctx, questionsCollection, question.ID, data, 0); err != nil {
		return "", fmt.Errorf("failed to create question: %w", err)
	}
	return question.ID, nil
}

func (r *questionDocstore) GetByID(ctx context.Context, id string) (*models.Question, error) {
	doc, err := r.docs.Get(ctx, questionsCollection, id)
	if err != nil {
		return nil, err
	}
	return decodeQuestion(doc)
}

func (r *questionDocstore) Update(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		return fmt.Errorf("update question: %w", store.ErrNotFound)
	}
	data, err := json.Marshal(question)
	if err != nil {
		return fmt.Errorf("failed to encode question: %w", err)
	}
	// The staging area has no concurrent writers; last write wins.
	if _, err := r.docs.Merge(ctx, questionsCollection, question.ID, data, store.VersionAny); err != nil {
		return err
	}
	return nil
}

func (r *questionDocstore) Delete(ctx context.Context, id string) (bool, error) {
	return r.docs.Delete(ctx, questionsCollection, id)
}

func (r *questionDocstore) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.Question, error) {
	docs, err := r.docs.ListByField(ctx, questionsCollection, "assessment_id", assessmentID)
	if err != nil {
		return nil, err
	}
	return decodeQuestions(docs)
}

func (r *questionDocstore) ListAll(ctx context.Context) ([]*models.Question, error) {
	docs, err := r.docs.List(ctx, questionsCollection)
	if err != nil {
		return nil, err
	}
	return decodeQuestions(docs)
}

func decodeQuestion(doc *store.Document) (*models.Question, error) {
	var question models.Question
	if err := json.Unmarshal(doc.Data, &question); err != nil {
		return nil, fmt.Errorf("failed to decode question %s: %w", doc.Key, err)
	}
	question.ID = doc.Key
	return &question, nil
}

func decodeQuestions(docs []*store.Document) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(docs))
	for _, doc := range docs {
		question, err := decodeQuestion(doc)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}
