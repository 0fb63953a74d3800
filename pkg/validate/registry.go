package validate

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Params carries validator parameters from a schema file.
type Params map[string]any

type factory func(Params) (Func, error)

var builtins = map[string]factory{
	"text": func(p Params) (Func, error) {
		var cfg struct {
			MaxLength int `mapstructure:"max_length"`
		}
		if err := decode(p, &cfg); err != nil {
			return nil, err
		}
		return Text(cfg.MaxLength), nil
	},
	"email": func(Params) (Func, error) { return Email(), nil },
	"url":   func(Params) (Func, error) { return URL(), nil },
	"phone": func(p Params) (Func, error) {
		var cfg struct {
			MinDigits int `mapstructure:"min_digits"`
		}
		if err := decode(p, &cfg); err != nil {
			return nil, err
		}
		return Phone(cfg.MinDigits), nil
	},
	"one_of": func(p Params) (Func, error) {
		var cfg struct {
			Options []string `mapstructure:"options"`
		}
		if err := decode(p, &cfg); err != nil {
			return nil, err
		}
		if len(cfg.Options) == 0 {
			return nil, fmt.Errorf("one_of requires options")
		}
		return OneOf(cfg.Options...), nil
	},
	"any": func(Params) (Func, error) { return Any(), nil },
}

// Lookup resolves a built-in validator by name.
func Lookup(name string, params Params) (Func, error) {
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown validator %q (known: %v)", name, Names())
	}
	fn, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("validator %q: %w", name, err)
	}
	return fn, nil
}

// Names lists the built-in validator names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func decode(p Params, out any) error {
	if len(p) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(p))
}
