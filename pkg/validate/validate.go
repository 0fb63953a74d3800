// Package validate provides pure field validators for form input.
//
// A validator receives the raw text a user typed and either returns the
// normalized value or an *Error carrying a human-readable reason. Validators
// never panic and never perform I/O, so they are safe to call from any
// goroutine and their results are deterministic.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DefaultPhoneMinDigits is the minimum digit count Phone accepts by default.
const DefaultPhoneMinDigits = 10

// Func validates and normalizes one raw field value.
type Func func(raw string) (string, error)

// Error is a typed validation failure.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func fail(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// tags is safe for concurrent use once built.
var tags = validator.New(validator.WithRequiredStructEnabled())

// Text accepts any non-blank text up to maxLen runes (0 means unlimited).
// The value is trimmed.
func Text(maxLen int) Func {
	return func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", fail("value is empty")
		}
		if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
			return "", fail("value is longer than %d characters", maxLen)
		}
		return v, nil
	}
}

// Email accepts a single e-mail address. The value is trimmed.
func Email() Func {
	return func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", fail("value is empty")
		}
		if err := tags.Var(v, "email"); err != nil {
			return "", fail("%q is not a valid e-mail address", v)
		}
		return v, nil
	}
}

// URL accepts an absolute URL. The value is trimmed.
func URL() Func {
	return func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", fail("value is empty")
		}
		if err := tags.Var(v, "url"); err != nil {
			return "", fail("%q is not a valid URL", v)
		}
		return v, nil
	}
}

// Phone strips every non-digit character and accepts the result when it has
// at least minDigits digits. The normalized value is the digit string.
//
// This is deliberately permissive: there is no country or length upper bound.
func Phone(minDigits int) Func {
	if minDigits <= 0 {
		minDigits = DefaultPhoneMinDigits
	}
	return func(raw string) (string, error) {
		var b strings.Builder
		for _, r := range raw {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		digits := b.String()
		if len(digits) < minDigits {
			return "", fail("phone number needs at least %d digits, got %d", minDigits, len(digits))
		}
		return digits, nil
	}
}

// OneOf accepts one of the given options, compared case-insensitively.
// The canonical spelling of the option is returned.
func OneOf(options ...string) Func {
	return func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		for _, opt := range options {
			if strings.EqualFold(v, opt) {
				return opt, nil
			}
		}
		return "", fail("%q is not one of: %s", v, strings.Join(options, ", "))
	}
}

// Any accepts every input, trimmed. Used for optional free-form fields.
func Any() Func {
	return func(raw string) (string, error) {
		return strings.TrimSpace(raw), nil
	}
}
