package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

// Year bounds. 1886 is the year of the first automobile; the upper bound is
// fixed rather than derived from the clock. CarInput's year tag must match.
const (
	MinYear = 1886
	MaxYear = 2023
)

// Validation errors for car payloads.
var (
	ErrMalformedPayload = errors.New("invalid request body")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidMake      = errors.New("invalid make")
	ErrInvalidModel     = errors.New("invalid model")
	ErrInvalidYear      = errors.New("invalid year")
)

// IsValidationError reports whether err was produced by payload decoding or
// validation and should be answered with 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidMake) ||
		errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrInvalidYear)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "carmake", func(fl validator.FieldLevel) bool {
		return IsMakeText(fl.Field().String())
	})
	mustRegister(v, "carmodel", func(fl validator.FieldLevel) bool {
		return IsModelText(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// IsMakeText reports whether s is one or more ASCII letters or ASCII whitespace.
func IsMakeText(s string) bool {
	return allRunes(s, func(r rune) bool {
		return isASCIILetter(r) || isASCIISpace(r)
	})
}

// IsModelText reports whether s is one or more ASCII letters, ASCII digits or
// ASCII whitespace.
func IsModelText(s string) bool {
	return allRunes(s, func(r rune) bool {
		return isASCIILetter(r) || isASCIIDigit(r) || isASCIISpace(r)
	})
}

// IsValidYear reports whether year lies within [MinYear, MaxYear].
func IsValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

func allRunes(s string, ok func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !ok(r) {
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Validate checks the fields in make, model, year order and returns the
// error for the first field that fails.
func (i *CarInput) Validate() error {
	err := validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating car: %w", err)
	}

	switch fieldErrs[0].StructField() {
	case "Make":
		return ErrInvalidMake
	case "Model":
		return ErrInvalidModel
	default:
		return ErrInvalidYear
	}
}

// CarPayload is the undecoded body of a create or update request. Fields are
// kept raw so that absent keys, nulls and wrong JSON types can be told apart.
type CarPayload struct {
	Make  json.RawMessage `json:"make"`
	Model json.RawMessage `json:"model"`
	Year  json.RawMessage `json:"year"`
}

// DecodeCarPayload reads a single JSON object from r. Anything but whitespace
// after the object makes the body malformed.
func DecodeCarPayload(r io.Reader) (*CarPayload, error) {
	dec := json.NewDecoder(r)

	var p CarPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedPayload)
	}

	return &p, nil
}

// Input converts the payload into a validated CarInput.
func (p *CarPayload) Input() (*CarInput, error) {
	if err := p.checkPresent(); err != nil {
		return nil, err
	}

	// A value of the wrong JSON type decodes to the zero value, which always
	// fails its rule.
	input := &CarInput{}
	if err := json.Unmarshal(p.Make, &input.Make); err != nil {
		input.Make = ""
	}
	if err := json.Unmarshal(p.Model, &input.Model); err != nil {
		input.Model = ""
	}
	if err := json.Unmarshal(p.Year, &input.Year); err != nil {
		input.Year = 0
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	return input, nil
}

func (p *CarPayload) checkPresent() error {
	fields := []struct {
		name string
		raw  json.RawMessage
	}{
		{"make", p.Make},
		{"model", p.Model},
		{"year", p.Year},
	}

	for _, f := range fields {
		if isAbsent(f.raw) {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	return nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
