// Package submit validates a raw, untrusted submission against a form
// definition and normalizes it into the persisted answer shape.
package submit

import (
	"errors"
	"strings"

	"github.com/quickform/quickform/model"
)

var (
	ErrFormNotFound          = errors.New("form not found")
	ErrNotAcceptingResponses = errors.New("form is not accepting responses")
	ErrNoValidResponses      = errors.New("no valid responses provided")
)

// MissingFieldsError reports every required field left unanswered, not
// just the first, so the caller can render all of them at once.
type MissingFieldsError struct {
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Labels, ", ")
}

// Validate checks answers against the form and returns the normalized
// list to persist. Answers may address fields by id or by label (the
// label path is kept for older clients). Unknown fields are dropped
// silently, as are empty values, even on optional fields. A submission
// that normalizes to nothing is rejected with ErrNoValidResponses.
func Validate(form *model.Form, answers []model.RawAnswer) ([]model.FieldAnswer, error) {
	if form == nil {
		return nil, ErrFormNotFound
	}
	if !form.Published {
		return nil, ErrNotAcceptingResponses
	}

	byID := make(map[string]*model.FormField, len(form.Fields))
	byLabel := make(map[string]*model.FormField, len(form.Fields))
	for i := range form.Fields {
		f := &form.Fields[i]
		byID[f.ID] = f
		byLabel[f.Label] = f
	}

	resolve := func(a model.RawAnswer) *model.FormField {
		if a.FieldID != "" {
			if f, ok := byID[a.FieldID]; ok {
				return f
			}
		}
		if a.Label != "" {
			if f, ok := byLabel[a.Label]; ok {
				return f
			}
		}
		return nil
	}

	var missing []string
	for i := range form.Fields {
		f := &form.Fields[i]
		if !f.Required {
			continue
		}

		var match *model.RawAnswer
		for j := range answers {
			if resolve(answers[j]) == f {
				match = &answers[j]
				break
			}
		}
		if match == nil || match.Value.IsEmpty() {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Labels: missing}
	}

	var normalized []model.FieldAnswer
	for _, a := range answers {
		f := resolve(a)
		if f == nil || a.Value.IsEmpty() {
			continue
		}
		normalized = append(normalized, model.FieldAnswer{
			Label: f.Label,
			Value: a.Value,
		})
	}

	if len(normalized) == 0 {
		return nil, ErrNoValidResponses
	}
	return normalized, nil
}
