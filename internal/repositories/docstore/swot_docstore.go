package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/store"
)

type swotDocstore struct {
	docs store.DocumentStore
}

func NewSwotRepository(docs store.DocumentStore) repositories.SwotRepository {
	return &swotDocstore{docs: docs}
}

// Save upserts the analysis; records are keyed one-to-one by assessment id.
func (r *swotDocstore) Save(ctx context.Context, swot *models.SwotAnalysis) error {
	if swot.AssessmentID == "" {
		return fmt.Errorf("swot analysis requires an assessment id")
	}
	swot.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(swot)
	if err != nil {
		return fmt.Errorf("failed to encode swot analysis: %w", err)
	}
	if _, err := r.docs.Put(ctx, swotCollection, swot.AssessmentID, data, store.VersionAny); err != nil {
		return fmt.Errorf("failed to save swot analysis: %w", err)
	}
	return nil
}

func (r *swotDocstore) GetByAssessment(ctx context.Context, assessmentID string) (*models.SwotAnalysis, error) {
	doc, err := r.docs.Get(ctx, swotCollection, assessmentID)
	if err != nil {
		return nil, err
	}
	var swot models.SwotAnalysis
	if err := json.Unmarshal(doc.Data, &swot); err != nil {
		return nil, fmt.Errorf("failed to decode swot analysis %s: %w", doc.Key, err)
	}
	swot.AssessmentID = doc.Key
	return &swot, nil
}
