package model

import (
	"errors"
	"strings"
	"testing"
)

func TestIsMakeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"single word", "Toyota", true},
		{"words with space", "Land Rover", true},
		{"tab separated", "Alfa\tRomeo", true},
		{"only whitespace", "   ", true},
		{"empty", "", false},
		{"digits", "123", false},
		{"letters and digit", "Ford1", false},
		{"punctuation", "Mercedes-Benz", false},
		{"non-ASCII letter", "Škoda", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMakeText(tt.input); got != tt.want {
				t.Errorf("IsMakeText(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsModelText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"letters", "Corolla", true},
		{"letters digits and space", "Corolla 2", true},
		{"digits only", "911", true},
		{"empty", "", false},
		{"punctuation", "@@", false},
		{"hyphen", "CX-5", false},
		{"non-ASCII digit", "٣", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsModelText(tt.input); got != tt.want {
				t.Errorf("IsModelText(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{MinYear - 1, false},
		{MinYear, true},
		{2000, true},
		{MaxYear, true},
		{MaxYear + 1, false},
		{0, false},
		{-2000, false},
	}

	for _, tt := range tests {
		if got := IsValidYear(tt.year); got != tt.want {
			t.Errorf("IsValidYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestCarInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   CarInput
		wantErr error
	}{
		{
			name:    "valid",
			input:   CarInput{Make: "Toyota", Model: "Corolla 2", Year: 2020},
			wantErr: nil,
		},
		{
			name:    "make with digits",
			input:   CarInput{Make: "123", Model: "Corolla", Year: 2020},
			wantErr: ErrInvalidMake,
		},
		{
			name:    "empty make",
			input:   CarInput{Make: "", Model: "Corolla", Year: 2020},
			wantErr: ErrInvalidMake,
		},
		{
			name:    "punctuation model",
			input:   CarInput{Make: "Toyota", Model: "@@", Year: 2020},
			wantErr: ErrInvalidModel,
		},
		{
			name:    "year below range",
			input:   CarInput{Make: "Toyota", Model: "Corolla", Year: 1800},
			wantErr: ErrInvalidYear,
		},
		{
			name:    "year above range",
			input:   CarInput{Make: "Toyota", Model: "Corolla", Year: 2024},
			wantErr: ErrInvalidYear,
		},
		{
			name:    "make checked before model and year",
			input:   CarInput{Make: "1", Model: "@@", Year: 1},
			wantErr: ErrInvalidMake,
		},
		{
			name:    "model checked before year",
			input:   CarInput{Make: "Ford", Model: "@@", Year: 1},
			wantErr: ErrInvalidModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := tt.input.Validate()

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCarPayload_Input(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *CarInput
		wantErr error
	}{
		{
			name: "valid payload",
			body: `{"make": "Toyota", "model": "Corolla 2", "year": 2020}`,
			want: &CarInput{Make: "Toyota", Model: "Corolla 2", Year: 2020},
		},
		{
			name: "unknown keys are ignored",
			body: `{"make": "Ford", "model": "Focus", "year": 2015, "id": 99}`,
			want: &CarInput{Make: "Ford", Model: "Focus", Year: 2015},
		},
		{
			name:    "year as string",
			body:    `{"make": "Toyota", "model": "Corolla", "year": "2000"}`,
			wantErr: ErrInvalidYear,
		},
		{
			name:    "year as float",
			body:    `{"make": "Toyota", "model": "Corolla", "year": 2000.5}`,
			wantErr: ErrInvalidYear,
		},
		{
			name:    "year as bool",
			body:    `{"make": "Toyota", "model": "Corolla", "year": true}`,
			wantErr: ErrInvalidYear,
		},
		{
			name:    "make as number",
			body:    `{"make": 42, "model": "Corolla", "year": 2000}`,
			wantErr: ErrInvalidMake,
		},
		{
			name:    "model as array",
			body:    `{"make": "Toyota", "model": ["Corolla"], "year": 2000}`,
			wantErr: ErrInvalidModel,
		},
		{
			name:    "wrong make type wins over invalid year",
			body:    `{"make": 1, "model": "Corolla", "year": "x"}`,
			wantErr: ErrInvalidMake,
		},
		{
			name:    "missing make",
			body:    `{"model": "Corolla", "year": 2000}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "missing year",
			body:    `{"make": "Toyota", "model": "Corolla"}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "null model",
			body:    `{"make": "Toyota", "model": null, "year": 2000}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "empty object",
			body:    `{}`,
			wantErr: ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			payload, err := DecodeCarPayload(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("DecodeCarPayload() error = %v", err)
			}

			// Act
			got, err := payload.Input()

			// Assert
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Input() error = %v, want %v", err, tt.wantErr)
				}
				if !IsValidationError(err) {
					t.Errorf("IsValidationError(%v) = false, want true", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Input() unexpected error: %v", err)
			}
			if *got != *tt.want {
				t.Errorf("Input() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestCarPayload_MissingFieldNamesFirstAbsentKey(t *testing.T) {
	payload, err := DecodeCarPayload(strings.NewReader(`{"year": 2000}`))
	if err != nil {
		t.Fatalf("DecodeCarPayload() error = %v", err)
	}

	_, err = payload.Input()
	if err == nil || !strings.HasSuffix(err.Error(), ": make") {
		t.Errorf("Input() error = %v, want suffix %q", err, ": make")
	}
}

func TestDecodeCarPayload_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not JSON", "make=Ford"},
		{"array", `[1, 2, 3]`},
		{"string", `"Ford"`},
		{"truncated object", `{"make": "Ford"`},
		{"trailing data", `{"make":"Ford","model":"Focus","year":2015} garbage`},
		{"second object", `{"make":"Ford","model":"Focus","year":2015}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCarPayload(strings.NewReader(tt.body))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("DecodeCarPayload() error = %v, want %v", err, ErrMalformedPayload)
			}
		})
	}
}

func TestDecodeCarPayload_TrailingWhitespace(t *testing.T) {
	payload, err := DecodeCarPayload(strings.NewReader("{\"make\":\"Ford\",\"model\":\"Focus\",\"year\":2015}\n\t "))
	if err != nil {
		t.Fatalf("DecodeCarPayload() error = %v", err)
	}

	if _, err := payload.Input(); err != nil {
		t.Errorf("Input() error = %v", err)
	}
}

func TestCarInput_YearTagMatchesBounds(t *testing.T) {
	years := []int{MinYear - 1, MinYear, MinYear + 1, MaxYear - 1, MaxYear, MaxYear + 1}

	for _, year := range years {
		input := CarInput{Make: "Ford", Model: "Focus", Year: year}

		err := input.Validate()

		if IsValidYear(year) && err != nil {
			t.Errorf("Validate() year %d error = %v, want nil", year, err)
		}
		if !IsValidYear(year) && !errors.Is(err, ErrInvalidYear) {
			t.Errorf("Validate() year %d error = %v, want %v", year, err, ErrInvalidYear)
		}
	}
}

func TestIsValidationError_OtherErrors(t *testing.T) {
	if IsValidationError(errors.New("disk full")) {
		t.Error("IsValidationError() = true for unrelated error, want false")
	}
	if IsValidationError(nil) {
		t.Error("IsValidationError(nil) = true, want false")
	}
}
