// Package validate implements the field-level validation contract for student
// records and composes it into whole-record and batch decisions.
//
// Validators are a closed set: the fields are known at compile time, so each
// is a concrete type implementing the single Validate capability. Failures
// are returned as outcomes with human-readable reasons; no validator ever
// panics or returns an error.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Outcome is the result of validating one value. Reason is populated exactly
// when Valid is false.
type Outcome struct {
	Valid  bool
	Reason string
}

func ok() Outcome                { return Outcome{Valid: true} }
func fail(reason string) Outcome { return Outcome{Reason: reason} }

// FieldValidator is the shared capability of all field validators.
type FieldValidator interface {
	Validate(value any) Outcome
}

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	phoneRe = regexp.MustCompile(`^[\d\s\-+()]+$`)
	digitRe = regexp.MustCompile(`\D`)
)

// Email validates required email addresses. Lower-casing happens upstream in
// normalization; this validator only judges the value it is given.
type Email struct{}

func (Email) Validate(value any) Outcome {
	s, isStr := value.(string)
	if !isStr || s == "" {
		return fail("Email is required and must be a string")
	}
	s = strings.TrimSpace(s)
	if !emailRe.MatchString(s) {
		return fail(fmt.Sprintf("Invalid email format: %s", s))
	}
	if len(s) > 255 {
		return fail("Email exceeds maximum length of 255 characters")
	}
	return ok()
}

// Name validates required student names: letters, spaces, hyphens, and
// apostrophes only.
type Name struct{}

func (Name) Validate(value any) Outcome {
	s, isStr := value.(string)
	if !isStr || s == "" {
		return fail("Name is required and must be a string")
	}
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return fail("Name must be at least 2 characters")
	}
	if len(s) > 255 {
		return fail("Name exceeds maximum length of 255 characters")
	}
	if !nameRe.MatchString(s) {
		return fail(fmt.Sprintf("Name contains invalid characters: %s", s))
	}
	return ok()
}

// Year validates the optional year of study, 1 through 4. The normalizer
// passes through the raw string when coercion failed, so the offending value
// appears in the reason.
type Year struct{}

func (Year) Validate(value any) Outcome {
	switch t := value.(type) {
	case nil:
		return ok()
	case int64:
		return yearRange(t)
	case int:
		return yearRange(int64(t))
	case string:
		if t == "" {
			return ok()
		}
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return fail(fmt.Sprintf("Year must be a valid integer, got: %s", t))
		}
		return yearRange(n)
	default:
		return fail(fmt.Sprintf("Year must be a valid integer, got: %v", t))
	}
}

func yearRange(n int64) Outcome {
	if n < 1 || n > 4 {
		return fail(fmt.Sprintf("Year must be between 1 and 4, got: %d", n))
	}
	return ok()
}

// Phone validates optional phone numbers: digits, spaces, hyphens, plus, and
// parentheses, with at least 10 digits once separators are stripped.
type Phone struct{}

func (Phone) Validate(value any) Outcome {
	if value == nil {
		return ok()
	}
	s, isStr := value.(string)
	if !isStr {
		return fail("Phone must be a string")
	}
	if s == "" {
		return ok()
	}
	s = strings.TrimSpace(s)
	if !phoneRe.MatchString(s) {
		return fail(fmt.Sprintf("Phone contains invalid characters: %s", s))
	}
	if len(digitRe.ReplaceAllString(s, "")) < 10 {
		return fail("Phone number must contain at least 10 digits")
	}
	if len(s) > 20 {
		return fail("Phone number exceeds maximum length of 20 characters")
	}
	return ok()
}

// Department validates optional department names by length only; unseen names
// are created at load time, so no referential check happens here.
type Department struct{}

func (Department) Validate(value any) Outcome {
	if value == nil {
		return ok()
	}
	s, isStr := value.(string)
	if !isStr {
		return fail("Department must be a string")
	}
	if s == "" {
		return ok()
	}
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return fail("Department name must be at least 2 characters")
	}
	if len(s) > 255 {
		return fail("Department name exceeds maximum length of 255 characters")
	}
	return ok()
}
