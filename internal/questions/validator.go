package questions

import (
	"fmt"
	"strings"
)

// Validator checks a generated question set.
type Validator interface {
	// Name returns a short identifier used in errors and logs.
	Name() string

	// Validate returns nil if the set passes.
	Validate(qs []Question, count int) *ValidationError
}

// ValidationError describes why a generated set was rejected.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator rejects empty sets and blank questions.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(qs []Question, count int) *ValidationError {
	if len(qs) == 0 {
		return &ValidationError{Validator: v.Name(), Message: "no questions returned", Retryable: true}
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Text) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %d is empty", i),
				Retryable: true,
			}
		}
	}
	return nil
}

// DuplicateValidator rejects sets containing the same question twice,
// comparing case- and whitespace-insensitively.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(qs []Question, _ int) *ValidationError {
	seen := make(map[string]int, len(qs))
	for i, q := range qs {
		key := normalize(q.Text)
		if j, ok := seen[key]; ok {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("questions %d and %d are identical", j, i),
				Retryable: true,
			}
		}
		seen[key] = i
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
