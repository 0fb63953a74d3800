// Package form drives a session through the form schema field by field.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/validate"
)

// ErrNotFilling is returned when Submit is called on a session that is not
// filling the form.
var ErrNotFilling = errors.New("session is not filling the form")

// Step is the outcome of a successful Submit.
type Step struct {
	// Session is the advanced FillingForm session (when !Done).
	Session domain.Session
	// Record holds every collected value (when Done).
	Record domain.Record
	// Done reports that the last field was accepted.
	Done bool
}

// Engine advances FillingForm sessions. It is stateless and safe for
// concurrent use.
type Engine struct {
	schema Schema
}

// NewEngine creates an engine for the given schema.
func NewEngine(schema Schema) (*Engine, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &Engine{schema: schema}, nil
}

// Schema returns the schema the engine was built with.
func (e *Engine) Schema() Schema {
	return e.schema
}

// Start returns a fresh session at field 0. Any in-progress form is abandoned
// by the caller overwriting its session.
func (e *Engine) Start() domain.Session {
	return domain.FillingForm(0, domain.Record{})
}

// Prompt renders the question for the session's current field.
func (e *Engine) Prompt(s domain.Session) string {
	if s.Kind != domain.KindFillingForm || s.FieldIndex >= len(e.schema) {
		return ""
	}
	f := e.schema[s.FieldIndex]
	return fmt.Sprintf("(%d/%d) Please enter: %s", s.FieldIndex+1, len(e.schema), f.Prompt)
}

// Submit validates raw against the current field.
//
// On a *domain.ValidationError the returned Step carries the unchanged
// session: the field is neither skipped nor advanced.
func (e *Engine) Submit(s domain.Session, raw string) (Step, error) {
	if s.Kind != domain.KindFillingForm {
		return Step{Session: s}, ErrNotFilling
	}
	if s.FieldIndex < 0 || s.FieldIndex >= len(e.schema) {
		return Step{Session: s}, fmt.Errorf("field index %d out of range [0,%d)", s.FieldIndex, len(e.schema))
	}

	f := e.schema[s.FieldIndex]
	value, err := e.check(f, raw)
	if err != nil {
		return Step{Session: s}, err
	}

	collected := s.Collected.With(f.Name, value)
	next := s.FieldIndex + 1
	if next == len(e.schema) {
		return Step{Record: collected, Done: true}, nil
	}

	advanced := domain.FillingForm(next, collected)
	advanced.Revision = s.Revision
	return Step{Session: advanced}, nil
}

func (e *Engine) check(f Field, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		if f.Required {
			return "", &domain.ValidationError{Field: f.Name, Reason: "this field is required"}
		}
		return "", nil
	}

	value, err := f.Validator(raw)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			return "", &domain.ValidationError{Field: f.Name, Reason: verr.Reason}
		}
		return "", &domain.ValidationError{Field: f.Name, Reason: err.Error()}
	}
	return value, nil
}
