package service

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// MealQuery evaluates JMESPath expressions over a meal list, using the JSON
// field names of model.Meal ("food_name", "calories", ...).
type MealQuery struct {
	eval JMESPathEvaluator
}

// NewMealQuery returns a MealQuery. A nil evaluator selects go-jmespath.
func NewMealQuery(eval JMESPathEvaluator) *MealQuery {
	if eval == nil {
		eval = jmespathLibEvaluator{}
	}
	return &MealQuery{eval: eval}
}

// Apply evaluates expr against meals. An empty expression returns the meals unchanged.
// Invalid expressions are validation errors on the "q" field.
func (q *MealQuery) Apply(expr string, meals []model.Meal) (any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return meals, nil
	}
	if err := q.eval.Validate(expr); err != nil {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeValidation,
			Message: "Invalid query expression.",
			Field:   "q",
			Cause:   err,
		}
	}

	// Round-trip through JSON so the expression sees plain maps keyed by JSON names.
	raw, err := json.Marshal(meals)
	if err != nil {
		return nil, fmt.Errorf("marshal meals: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal meals: %w", err)
	}

	out, err := q.eval.Evaluate(expr, data)
	if err != nil {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeValidation,
			Message: "Query expression could not be evaluated.",
			Field:   "q",
			Cause:   err,
		}
	}
	return out, nil
}
