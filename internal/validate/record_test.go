package validate

import (
	"testing"

	"rosteretl/pkg/records"
)

/*
TestValidateRecord verifies the whole-record decision: required fields
short-circuit before any field validator runs, and when several fields are
bad the fixed field order decides which reason is reported.
*/
func TestValidateRecord(t *testing.T) {
	v := NewRecordValidator()

	cases := []struct {
		name   string
		rec    records.Record
		valid  bool
		reason string
	}{
		{
			"fully valid",
			records.Record{"email": "a@example.com", "name": "Alice Smith", "year": int64(2), "phone": "5550101234", "department": "Physics"},
			true, "",
		},
		{
			"optional fields nil",
			records.Record{"email": "a@example.com", "name": "Alice Smith", "year": nil, "phone": nil, "department": nil},
			true, "",
		},
		{
			"email missing",
			records.Record{"name": "Alice Smith"},
			false, "Required field missing: email",
		},
		{
			"email empty string counts as missing",
			records.Record{"email": "", "name": "Alice Smith"},
			false, "Required field missing: email",
		},
		{
			"name missing",
			records.Record{"email": "a@example.com"},
			false, "Required field missing: name",
		},
		{
			"bad email reported before bad year",
			records.Record{"email": "not-an-email", "name": "Alice Smith", "year": int64(9)},
			false, "email: Invalid email format: not-an-email",
		},
		{
			"bad year",
			records.Record{"email": "a@example.com", "name": "Alice Smith", "year": "abc"},
			false, "year: Year must be a valid integer, got: abc",
		},
		{
			"bad phone",
			records.Record{"email": "a@example.com", "name": "Alice Smith", "phone": "555-1234"},
			false, "phone: Phone number must contain at least 10 digits",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := v.ValidateRecord(tc.rec)
			if out.Valid != tc.valid {
				t.Fatalf("Valid=%v; want %v (reason=%q)", out.Valid, tc.valid, out.Reason)
			}
			if !tc.valid && out.Reason != tc.reason {
				t.Fatalf("Reason=%q; want %q", out.Reason, tc.reason)
			}
		})
	}
}

/*
TestValidateBatch verifies the split: valid records keep their relative
order, invalid records carry their 1-based position in the input sequence
and the reason for the first failing field.
*/
func TestValidateBatch(t *testing.T) {
	v := NewRecordValidator()

	in := []records.Record{
		{"email": "a@example.com", "name": "Alice Smith"},
		{"email": "not-an-email", "name": "Carol Jones"},
		{"email": "b@example.com", "name": "Bob Stone"},
		{"email": "d@example.com", "name": "Dave Hill", "year": int64(5)},
	}

	valid, invalid := v.ValidateBatch(in)

	if len(valid) != 2 {
		t.Fatalf("valid=%d; want 2", len(valid))
	}
	if valid[0].String("email") != "a@example.com" || valid[1].String("email") != "b@example.com" {
		t.Fatalf("valid order wrong: %v", valid)
	}

	if len(invalid) != 2 {
		t.Fatalf("invalid=%d; want 2", len(invalid))
	}
	if invalid[0].RowNumber != 2 || invalid[0].Reason != "email: Invalid email format: not-an-email" {
		t.Fatalf("invalid[0]=%+v", invalid[0])
	}
	if invalid[1].RowNumber != 4 || invalid[1].Reason != "year: Year must be between 1 and 4, got: 5" {
		t.Fatalf("invalid[1]=%+v", invalid[1])
	}
	if invalid[0].Raw.String("name") != "Carol Jones" {
		t.Fatalf("raw record not carried: %+v", invalid[0])
	}
}

/*
TestValidateBatch_Empty verifies the trivial case: no input yields no valid
and no invalid records.
*/
func TestValidateBatch_Empty(t *testing.T) {
	valid, invalid := NewRecordValidator().ValidateBatch(nil)
	if len(valid) != 0 || len(invalid) != 0 {
		t.Fatalf("got valid=%d invalid=%d; want 0/0", len(valid), len(invalid))
	}
}
