package form

import (
	"fmt"

	"github.com/aretw0/ticketflow/pkg/validate"
)

// Field is one immutable entry of the form schema.
type Field struct {
	Name      string
	Prompt    string
	Validator validate.Func
	Required  bool
}

// Schema is the ordered list of fields the form asks for.
type Schema []Field

// Validate checks that the schema is usable: non-empty, unique names, and a
// validator for every field.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("form schema has no fields")
	}
	seen := make(map[string]bool, len(s))
	for i, f := range s {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if f.Validator == nil {
			return fmt.Errorf("field %q has no validator", f.Name)
		}
	}
	return nil
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// DefaultSchema is the request form of the desk: contact details followed by
// a description of the project.
func DefaultSchema(phoneMinDigits int) Schema {
	return Schema{
		{Name: "name", Prompt: "Your name", Validator: validate.Text(100), Required: true},
		{Name: "email", Prompt: "E-mail", Validator: validate.Email(), Required: true},
		{Name: "phone", Prompt: "Phone number", Validator: validate.Phone(phoneMinDigits), Required: true},
		{Name: "company", Prompt: "Company name", Validator: validate.Text(200), Required: true},
		{Name: "project_type", Prompt: "Website / CRM / Mobile app / Other", Validator: validate.Text(100), Required: true},
		{Name: "description", Prompt: "Short description", Validator: validate.Text(2000), Required: true},
		{Name: "extra", Prompt: "Additional information (optional)", Validator: validate.Any(), Required: false},
	}
}
