package form_test

import (
	"errors"
	"testing"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/form"
	"github.com/aretw0/ticketflow/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *form.Engine {
	t.Helper()
	eng, err := form.NewEngine(form.Schema{
		{Name: "phone", Prompt: "Phone", Validator: validate.Phone(10), Required: true},
		{Name: "email", Prompt: "E-mail", Validator: validate.Email(), Required: true},
		{Name: "extra", Prompt: "Extra", Validator: validate.Any(), Required: false},
	})
	require.NoError(t, err)
	return eng
}

func TestEngine_Start(t *testing.T) {
	eng := newEngine(t)
	s := eng.Start()
	assert.Equal(t, domain.KindFillingForm, s.Kind)
	assert.Equal(t, 0, s.FieldIndex)
	assert.Empty(t, s.Collected)
	assert.Equal(t, "(1/3) Please enter: Phone", eng.Prompt(s))
}

func TestEngine_PhoneScenario(t *testing.T) {
	eng := newEngine(t)
	s := eng.Start()

	// 9 digits after stripping: rejected, state unchanged.
	step, err := eng.Submit(s, "abc123456789")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, "phone", verr.Field)
	assert.True(t, s.Equal(step.Session))
	assert.Equal(t, 0, step.Session.FieldIndex)

	// 11 digits: accepted, advances to field 1.
	step, err = eng.Submit(s, "+7 (911) 123-45-67")
	require.NoError(t, err)
	assert.False(t, step.Done)
	assert.Equal(t, 1, step.Session.FieldIndex)
	v, _ := step.Session.Collected.Get("phone")
	assert.Equal(t, "79111234567", v)
}

func TestEngine_RequiredFieldCannotBeSkipped(t *testing.T) {
	eng := newEngine(t)
	s := eng.Start()

	for _, raw := range []string{"", "   ", "\n"} {
		step, err := eng.Submit(s, raw)
		assert.True(t, domain.IsValidation(err), "input %q", raw)
		assert.Equal(t, 0, step.Session.FieldIndex)
	}
}

func TestEngine_Completion(t *testing.T) {
	eng := newEngine(t)
	s := eng.Start()

	step, err := eng.Submit(s, "9111234567")
	require.NoError(t, err)
	step, err = eng.Submit(step.Session, "ann@example.com")
	require.NoError(t, err)
	require.False(t, step.Done)

	// Optional field accepts empty input.
	step, err = eng.Submit(step.Session, "")
	require.NoError(t, err)
	require.True(t, step.Done)
	assert.Equal(t, domain.Record{
		{Name: "phone", Value: "9111234567"},
		{Name: "email", Value: "ann@example.com"},
		{Name: "extra", Value: ""},
	}, step.Record)
}

func TestEngine_SubmitDoesNotMutateInput(t *testing.T) {
	eng := newEngine(t)
	s := domain.FillingForm(1, domain.Record{{Name: "phone", Value: "9111234567"}})

	_, err := eng.Submit(s, "ann@example.com")
	require.NoError(t, err)
	assert.Len(t, s.Collected, 1)
}

func TestEngine_Misuse(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.Submit(domain.Idle(), "x")
	assert.ErrorIs(t, err, form.ErrNotFilling)

	_, err = eng.Submit(domain.FillingForm(5, nil), "x")
	assert.Error(t, err)
	assert.False(t, domain.IsValidation(err))
}

func TestNewEngine_InvalidSchema(t *testing.T) {
	_, err := form.NewEngine(nil)
	assert.Error(t, err)

	_, err = form.NewEngine(form.Schema{
		{Name: "a", Validator: validate.Any()},
		{Name: "a", Validator: validate.Any()},
	})
	assert.ErrorContains(t, err, "duplicate")

	_, err = form.NewEngine(form.Schema{{Name: "a"}})
	assert.ErrorContains(t, err, "no validator")
}

func TestDefaultSchema(t *testing.T) {
	schema := form.DefaultSchema(validate.DefaultPhoneMinDigits)
	require.NoError(t, schema.Validate())
	assert.Equal(t, []string{"name", "email", "phone", "company", "project_type", "description", "extra"}, schema.Names())
	assert.False(t, schema[len(schema)-1].Required)
}
