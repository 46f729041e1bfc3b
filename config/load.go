package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/afero"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// Record is a parsed parameter file. Values are whatever the JSON decoder
// produced, with numbers kept as json.Number.
type Record map[string]any

// Keys returns the parameter names in sorted order.
func (r Record) Keys() []string {
	keys := maps.Keys(r)
	slices.Sort(keys)
	return keys
}

// LoadError is returned when a parameter file is missing, unreadable or
// malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "load config " + e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads and parses the parameter file at path. The file must hold a
// single JSON object.
func Load(fs afero.Fs, path string) (Record, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	record, err := Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return record, nil
}

// Decode parses a JSON object from r. Anything after the object other than
// whitespace is an error.
func Decode(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw json.RawMessage
	err := dec.Decode(&raw)
	if errors.Is(err, io.EOF) {
		return nil, xerrors.New("empty file")
	}
	if err != nil {
		return nil, xerrors.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, xerrors.New("unexpected data after top-level object")
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, xerrors.Errorf("top-level value must be an object")
	}

	// Decode again from the raw bytes so numbers stay as json.Number all the
	// way down.
	dec = json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	record := Record{}
	err = dec.Decode(&record)
	if err != nil {
		return nil, xerrors.Errorf("parse json object: %w", err)
	}
	return record, nil
}
