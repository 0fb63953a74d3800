package validate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/ticketflow/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	phone := validate.Phone(validate.DefaultPhoneMinDigits)

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"Formatted", "+7 (911) 123-45-67", "79111234567", false},
		{"Exactly Ten", "9111234567", "9111234567", false},
		{"Letters Stripped To Nine", "abc123456789", "", true},
		{"Empty", "", "", true},
		{"Only Symbols", "+-() ", "", true},
		{"Permissive Long", "1234567890123456789", "1234567890123456789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := phone(tt.raw)
			if tt.wantErr {
				var verr *validate.Error
				assert.True(t, errors.As(err, &verr), "expected *validate.Error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhone_ConfigurableMinimum(t *testing.T) {
	_, err := validate.Phone(11)("9111234567")
	assert.Error(t, err)

	got, err := validate.Phone(9)("abc123456789")
	require.NoError(t, err)
	assert.Equal(t, "123456789", got)

	_, err = validate.Phone(0)("123456789")
	assert.Error(t, err, "non-positive minimum falls back to the default")
}

func TestEmail(t *testing.T) {
	email := validate.Email()

	got, err := email("  ann@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got)

	for _, raw := range []string{"", "ann", "ann@", "@example.com", "a b@example.com"} {
		_, err := email(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestText(t *testing.T) {
	text := validate.Text(5)

	got, err := text("  hi ")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = text("   ")
	assert.Error(t, err)

	_, err = text("привет")
	assert.Error(t, err, "length is counted in runes")

	got, err = validate.Text(0)(strings.Repeat("x", 10000))
	require.NoError(t, err)
	assert.Len(t, got, 10000)
}

func TestOneOf(t *testing.T) {
	kind := validate.OneOf("Website", "CRM", "Mobile app")

	got, err := kind("crm")
	require.NoError(t, err)
	assert.Equal(t, "CRM", got)

	_, err = kind("Desktop")
	assert.Error(t, err)
}

func TestValidators_TotalOverMalformedInput(t *testing.T) {
	inputs := []string{"", "\x00", "\xff\xfe", strings.Repeat("\n", 100), "🙂"}
	funcs := []validate.Func{
		validate.Text(10), validate.Email(), validate.URL(),
		validate.Phone(10), validate.OneOf("a"), validate.Any(),
	}
	for _, fn := range funcs {
		for _, in := range inputs {
			assert.NotPanics(t, func() { _, _ = fn(in) })
		}
	}
}

func TestLookup(t *testing.T) {
	fn, err := validate.Lookup("phone", validate.Params{"min_digits": "11"})
	require.NoError(t, err)
	_, err = fn("9111234567")
	assert.Error(t, err, "weakly typed min_digits is honoured")

	fn, err = validate.Lookup("one_of", validate.Params{"options": []any{"yes", "no"}})
	require.NoError(t, err)
	got, err := fn("YES")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)

	_, err = validate.Lookup("one_of", nil)
	assert.Error(t, err)

	_, err = validate.Lookup("phone", validate.Params{"digits": 3})
	assert.Error(t, err, "unknown params are rejected")

	_, err = validate.Lookup("nope", nil)
	assert.ErrorContains(t, err, "unknown validator")

	assert.Contains(t, validate.Names(), "email")
}
