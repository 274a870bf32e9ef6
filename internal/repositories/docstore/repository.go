// Package docstore implements the typed repositories over the generic
// document store.
package docstore

import (
	"github.com/edupulse/assessment-platform/internal/repositories"
	"github.com/edupulse/assessment-platform/internal/store"
)

const (
	assessmentsCollection = "assessments"
	questionsCollection   = "questions"
	swotCollection        = "swot_analyses"
)

type repository struct {
	assessments repositories.AssessmentRepository
	questions   repositories.QuestionRepository
	swot        repositories.SwotRepository
}

// New builds the repository set over one document store.
func New(docs store.DocumentStore) repositories.Repository {
	return &repository{
		assessments: NewAssessmentRepository(docs),
		questions:   NewQuestionRepository(docs),
		swot:        NewSwotRepository(docs),
	}
}

func (r *repository) Assessment() repositories.AssessmentRepository { return r.assessments }
func (r *repository) Question() repositories.QuestionRepository     { return r.questions }
func (r *repository) Swot() repositories.SwotRepository             { return r.swot }
