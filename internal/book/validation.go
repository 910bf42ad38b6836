package book

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Validation limits.
const (
	MinNameLength = 3
	MaxNameLength = 30
	MinYear       = 1900
	MaxYear       = 2022
)

// ValidateInput checks a create or update payload and returns the first failure.
// Messages quote the offending field, e.g. `"year" is required`.
func ValidateInput(in Input) error {
	if err := ValidateName(in.Name); err != nil {
		return err
	}
	return ValidateYear(in.Year)
}

// ValidateName checks presence and length (in characters) of a name.
func ValidateName(name *string) error {
	if name == nil {
		return invalid("name", ErrInvalidName, `"name" is required`)
	}
	n := utf8.RuneCountInString(*name)
	switch {
	case n == 0:
		return invalid("name", ErrInvalidName, `"name" is not allowed to be empty`)
	case n < MinNameLength:
		return invalid("name", ErrInvalidName,
			fmt.Sprintf(`"name" length must be at least %d characters long`, MinNameLength))
	case n > MaxNameLength:
		return invalid("name", ErrInvalidName,
			fmt.Sprintf(`"name" length must be less than or equal to %d characters long`, MaxNameLength))
	}
	return nil
}

// ValidateYear checks presence, integrality and range of a year.
func ValidateYear(year *float64) error {
	if year == nil {
		return invalid("year", ErrInvalidYear, `"year" is required`)
	}
	y := *year
	switch {
	case math.IsNaN(y) || math.IsInf(y, 0) || y != math.Trunc(y):
		return invalid("year", ErrInvalidYear, `"year" must be an integer`)
	case y < MinYear:
		return invalid("year", ErrInvalidYear,
			fmt.Sprintf(`"year" must be greater than or equal to %d`, MinYear))
	case y > MaxYear:
		return invalid("year", ErrInvalidYear,
			fmt.Sprintf(`"year" must be less than or equal to %d`, MaxYear))
	}
	return nil
}

// UnknownField reports a field the schema does not allow.
func UnknownField(name string) error {
	return invalid(name, ErrInvalidBook, fmt.Sprintf("%q is not allowed", name))
}

// TypeMismatch reports a field whose JSON type is wrong.
func TypeMismatch(field, want string) error {
	sentinel := ErrInvalidBook
	switch field {
	case "name":
		sentinel = ErrInvalidName
	case "year":
		sentinel = ErrInvalidYear
	}
	return invalid(field, sentinel, fmt.Sprintf("%q must be a %s", field, want))
}

func invalid(field string, sentinel error, msg string) error {
	return &ValidationError{Field: field, Message: msg, err: sentinel}
}
