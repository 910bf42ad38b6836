package book

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func numPtr(f float64) *float64 { return &f }

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		wantErr error
		wantMsg string
	}{
		{
			name:  "valid",
			input: NewInput("Dune", 1965),
		},
		{
			name:  "bounds inclusive",
			input: NewInput(strings.Repeat("a", MaxNameLength), MaxYear),
		},
		{
			name:    "missing name",
			input:   Input{Year: numPtr(2000)},
			wantErr: ErrInvalidName,
			wantMsg: `"name" is required`,
		},
		{
			name:    "empty name",
			input:   NewInput("", 2000),
			wantErr: ErrInvalidName,
			wantMsg: `"name" is not allowed to be empty`,
		},
		{
			name:    "name too short",
			input:   NewInput("ab", 2000),
			wantErr: ErrInvalidName,
			wantMsg: `"name" length must be at least 3 characters long`,
		},
		{
			name:    "name too long",
			input:   NewInput(strings.Repeat("a", MaxNameLength+1), 2000),
			wantErr: ErrInvalidName,
			wantMsg: `"name" length must be less than or equal to 30 characters long`,
		},
		{
			name:  "multibyte name counted in characters",
			input: NewInput("Ёжик", 2000),
		},
		{
			name:    "missing year",
			input:   Input{Name: strPtr("Dune")},
			wantErr: ErrInvalidYear,
			wantMsg: `"year" is required`,
		},
		{
			name:    "year too early",
			input:   NewInput("Dune", 1899),
			wantErr: ErrInvalidYear,
			wantMsg: `"year" must be greater than or equal to 1900`,
		},
		{
			name:    "year too late",
			input:   NewInput("Dune", 2023),
			wantErr: ErrInvalidYear,
			wantMsg: `"year" must be less than or equal to 2022`,
		},
		{
			name:    "fractional year",
			input:   Input{Name: strPtr("Dune"), Year: numPtr(2000.5)},
			wantErr: ErrInvalidYear,
			wantMsg: `"year" must be an integer`,
		},
		{
			name:    "NaN year",
			input:   Input{Name: strPtr("Dune"), Year: numPtr(math.NaN())},
			wantErr: ErrInvalidYear,
			wantMsg: `"year" must be an integer`,
		},
		{
			name:    "name checked before year",
			input:   NewInput("ab", 1800),
			wantErr: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateInput() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateInput() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidBook) {
				t.Errorf("error %v does not wrap ErrInvalidBook", err)
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false", err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestUnknownField(t *testing.T) {
	err := UnknownField("id")
	if !IsValidationError(err) {
		t.Fatalf("IsValidationError(%v) = false", err)
	}
	if err.Error() != `"id" is not allowed` {
		t.Errorf("message = %q", err.Error())
	}
}

func TestTypeMismatch(t *testing.T) {
	err := TypeMismatch("year", "number")
	if !errors.Is(err, ErrInvalidYear) {
		t.Errorf("TypeMismatch(year) = %v, want ErrInvalidYear", err)
	}
	if err.Error() != `"year" must be a number` {
		t.Errorf("message = %q", err.Error())
	}

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "year" {
		t.Errorf("errors.As(ValidationError) failed or wrong field: %+v", verr)
	}
}

func TestIsValidationError_NotFound(t *testing.T) {
	if IsValidationError(ErrBookNotFound) {
		t.Error("IsValidationError(ErrBookNotFound) = true, want false")
	}
}
