// Package pipeline defines the entry point a run hands its parameters to, and
// the ways of reaching one: an in-process function, a typed function bound
// with mapstructure, or an external command taking one flag per parameter.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/xerrors"

	"github.com/coder/etlrun/config"
)

// Pipeline is the entry point that performs the actual work of a run. Every
// field of params is one named parameter.
type Pipeline interface {
	Complete(ctx context.Context, params config.Record) error
}

// Func adapts a function to a Pipeline.
type Func func(ctx context.Context, params config.Record) error

func (f Func) Complete(ctx context.Context, params config.Record) error {
	return f(ctx, params)
}

// Typed binds the named parameters onto the fields of P and calls fn. Field
// names are matched case-insensitively, or by `mapstructure` tag. A parameter
// without a matching field is an error.
func Typed[P any](fn func(ctx context.Context, params P) error) Pipeline {
	return Func(func(ctx context.Context, record config.Record) error {
		var params P
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      &params,
		})
		if err != nil {
			return xerrors.Errorf("create decoder: %w", err)
		}
		err = dec.Decode(map[string]any(record))
		if err != nil {
			return xerrors.Errorf("bind parameters: %w", err)
		}
		return fn(ctx, params)
	})
}

// Flags expands params into one "--name=value" argument per parameter, in
// sorted name order. Strings are passed verbatim, numbers as written in the
// parameter file, and objects or arrays as compact JSON.
func Flags(params config.Record) ([]string, error) {
	flags := make([]string, 0, len(params))
	for _, name := range params.Keys() {
		if err := checkName(name); err != nil {
			return nil, err
		}
		value, err := flagValue(params[name])
		if err != nil {
			return nil, xerrors.Errorf("parameter %q: %w", name, err)
		}
		flags = append(flags, "--"+name+"="+value)
	}
	return flags, nil
}

func checkName(name string) error {
	if name == "" {
		return xerrors.New("empty parameter name")
	}
	if strings.HasPrefix(name, "-") {
		return xerrors.Errorf("parameter %q: name must not start with '-'", name)
	}
	if strings.ContainsRune(name, '=') || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return xerrors.Errorf("parameter %q: name must not contain '=' or whitespace", name)
	}
	return nil
}

func flagValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case nil:
		return "null", nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return "", err
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	}
}
