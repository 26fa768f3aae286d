// Package extract recovers a single JSON object from free-form model output.
//
// Models asked for "JSON only" still wrap the object in markdown fences or
// surround it with reasoning text. Locate tries a ```json fenced block first
// and falls back to the widest brace-delimited span; Parse decodes the
// candidate as an object. Nothing here logs or performs I/O.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"
)

// Stage identifies which locator produced a candidate.
type Stage int

const (
	StageNone Stage = iota
	StageFenced
	StageBraces
)

func (s Stage) String() string {
	switch s {
	case StageFenced:
		return "fenced"
	case StageBraces:
		return "braces"
	default:
		return "none"
	}
}

var (
	// ErrNoJSONFound means neither a fenced block nor a {...} span exists.
	ErrNoJSONFound = errors.New("no json object found")
	// ErrMalformedJSON matches every *MalformedJSONError.
	ErrMalformedJSON = errors.New("malformed json")
	// ErrFieldMissing means the object parsed but lacks the field (or holds null).
	ErrFieldMissing = errors.New("field missing")
	// ErrFieldType means the field exists with an unexpected JSON type.
	ErrFieldType = errors.New("field has unexpected type")
)

// MalformedJSONError carries the candidate that failed to decode.
type MalformedJSONError struct {
	Candidate string
	Stage     Stage
	Err       error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed json in %s candidate %q: %v", e.Stage, e.Candidate, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

func (e *MalformedJSONError) Is(target error) bool { return target == ErrMalformedJSON }

// Locate returns the JSON candidate embedded in raw and the stage that found it.
func Locate(raw string) (string, Stage, error) {
	if candidate, ok := fenced(raw); ok {
		return candidate, StageFenced, nil
	}
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last == -1 || last <= first {
		return "", StageNone, ErrNoJSONFound
	}
	return strings.TrimSpace(raw[first : last+1]), StageBraces, nil
}

func fenced(raw string) (string, bool) {
	start := strings.Index(raw, fenceOpen)
	if start == -1 {
		return "", false
	}
	contentStart := start + len(fenceOpen)
	end := strings.Index(raw[contentStart:], fenceClose)
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(raw[contentStart : contentStart+end]), true
}

// Object is a decoded JSON object whose fields are kept raw until looked up.
type Object struct {
	Stage     Stage
	Candidate string
	fields    map[string]json.RawMessage
}

// Parse locates the JSON candidate in raw and decodes it as an object.
func Parse(raw string) (Object, error) {
	candidate, stage, err := Locate(raw)
	if err != nil {
		return Object{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return Object{}, &MalformedJSONError{Candidate: candidate, Stage: stage, Err: err}
	}
	if fields == nil {
		return Object{}, &MalformedJSONError{Candidate: candidate, Stage: stage, Err: errors.New("not a json object")}
	}
	return Object{Stage: stage, Candidate: candidate, fields: fields}, nil
}

// Lookup returns the raw value of field. Missing keys and JSON null are both absent.
func (o Object) Lookup(field string) (json.RawMessage, bool) {
	value, ok := o.fields[field]
	if !ok {
		return nil, false
	}
	if string(value) == "null" {
		return nil, false
	}
	return value, true
}

// Has reports whether field holds a non-null value.
func (o Object) Has(field string) bool {
	_, ok := o.Lookup(field)
	return ok
}

// String returns field as a Go string.
func (o Object) String(field string) (string, error) {
	var out string
	if err := o.Decode(field, &out); err != nil {
		return "", err
	}
	return out, nil
}

// Decode unmarshals field into v.
func (o Object) Decode(field string, v any) error {
	value, ok := o.Lookup(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldMissing, field)
	}
	if err := json.Unmarshal(value, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFieldType, field, err)
	}
	return nil
}

// Field parses raw and returns the string value of field.
func Field(raw, field string) (string, error) {
	obj, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return obj.String(field)
}
