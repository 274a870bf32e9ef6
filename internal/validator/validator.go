// Package validator centralizes struct-tag validation and the business rules
// that cut across assessment authoring.
package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edupulse/assessment-platform/internal/apperrors"
	"github.com/edupulse/assessment-platform/internal/models"
)

type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// ValidateStruct validates struct tags only.
func (v *Validator) ValidateStruct(s any) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.FromValidator(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("answer_type", validateAnswerType)

	// Use json names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	switch models.QuestionType(fl.Field().String()) {
	case models.MCQ, models.ShortAnswer, models.LongAnswer:
		return true
	}
	return false
}

func validateAnswerType(fl validator.FieldLevel) bool {
	switch models.AnswerType(fl.Field().String()) {
	case models.AnswerTypeText, models.AnswerTypeImage:
		return true
	}
	return false
}
