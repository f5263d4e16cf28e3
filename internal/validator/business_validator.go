package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateChosenOption checks that a choice points at a populated option of
// the question it answers.
func (bv *BusinessValidator) ValidateChosenOption(choice, optionCount int) ValidationErrors {
	var errors ValidationErrors

	if choice < 1 || choice > optionCount {
		errors = append(errors, ValidationError{
			Field:   "chosen_option",
			Message: fmt.Sprintf("must be between 1 and %d", optionCount),
			Value:   choice,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateImportRow validates one parsed question row beyond struct tags
func (bv *BusinessValidator) ValidateImportRow(row *ImportRow) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(row)...)

	populated := 0
	for i, opt := range row.Options {
		if strings.TrimSpace(opt) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "option text cannot be blank",
				Value:   opt,
				Rule:    "business_logic",
			})
			continue
		}
		populated++
	}

	if row.Answer > populated {
		errors = append(errors, ValidationError{
			Field:   "answer",
			Message: fmt.Sprintf("references option %d but only %d options are populated", row.Answer, populated),
			Value:   row.Answer,
			Rule:    "business_logic",
		})
	}

	for i, tag := range row.Tags {
		if strings.TrimSpace(tag) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("tags[%d]", i),
				Message: "tag cannot be empty",
				Value:   tag,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Option numbers are 1-based and capped at five options per question
	bv.validate.RegisterValidation("answer_option", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 1 && n <= 5
	})

	bv.validate.RegisterValidation("exam_type", func(fl validator.FieldLevel) bool {
		t := strings.TrimSpace(fl.Field().String())
		return t != "" && len(t) <= 50
	})
}
