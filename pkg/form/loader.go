package form

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aretw0/ticketflow/pkg/validate"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// fieldEntry is the on-disk shape of a schema entry.
type fieldEntry struct {
	Name      string          `mapstructure:"name"`
	Prompt    string          `mapstructure:"prompt"`
	Validator string          `mapstructure:"validator"`
	Required  *bool           `mapstructure:"required"`
	Params    validate.Params `mapstructure:"params"`
}

// LoadSchema reads a YAML schema file.
//
//	fields:
//	  - name: phone
//	    prompt: Phone number
//	    validator: phone
//	    params: {min_digits: 10}
//
// Fields are required unless "required: false" is given. The validator
// defaults to "text".
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema document.
func ParseSchema(data []byte) (Schema, error) {
	var doc struct {
		Fields []map[string]any `yaml:"fields"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse form schema: %w", err)
	}

	schema := make(Schema, 0, len(doc.Fields))
	for i, raw := range doc.Fields {
		var entry fieldEntry
		md := &mapstructure.DecoderConfig{Result: &entry, ErrorUnused: true, WeaklyTypedInput: true}
		d, err := mapstructure.NewDecoder(md)
		if err != nil {
			return nil, err
		}
		if err := d.Decode(raw); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}

		if entry.Validator == "" {
			entry.Validator = "text"
		}
		fn, err := validate.Lookup(entry.Validator, entry.Params)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", entry.Name, err)
		}
		if entry.Prompt == "" {
			entry.Prompt = entry.Name
		}
		required := true
		if entry.Required != nil {
			required = *entry.Required
		}

		schema = append(schema, Field{
			Name:      entry.Name,
			Prompt:    entry.Prompt,
			Validator: fn,
			Required:  required,
		})
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}
