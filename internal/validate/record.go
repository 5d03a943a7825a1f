package validate

import (
	"fmt"

	"rosteretl/pkg/records"
)

// fieldOrder fixes the iteration order of field checks so failing records
// always report the same reason across runs.
var fieldOrder = []string{"email", "name", "year", "phone", "department"}

// requiredFields must be present and non-empty before any field validator runs.
var requiredFields = []string{"email", "name"}

// InvalidRecord is one rejected record, ready for the dead-letter sink.
// RowNumber is 1-based and indexes the post-dedup sequence of this run.
type InvalidRecord struct {
	RowNumber int
	Raw       records.Record
	Reason    string
}

// RecordValidator composes the field validators into a whole-record decision.
type RecordValidator struct {
	validators map[string]FieldValidator
}

// NewRecordValidator builds the validator set for the closed field contract.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{
		validators: map[string]FieldValidator{
			"email":      Email{},
			"name":       Name{},
			"year":       Year{},
			"phone":      Phone{},
			"department": Department{},
		},
	}
}

// ValidateRecord judges one record. Required-field violations short-circuit;
// otherwise the first failing field (in fixed order) decides the reason.
func (v *RecordValidator) ValidateRecord(rec records.Record) Outcome {
	for _, f := range requiredFields {
		if !rec.Has(f) {
			return fail(fmt.Sprintf("Required field missing: %s", f))
		}
	}
	for _, f := range fieldOrder {
		val, exists := rec[f]
		if !exists || val == nil {
			continue
		}
		if out := v.validators[f].Validate(val); !out.Valid {
			return fail(fmt.Sprintf("%s: %s", f, out.Reason))
		}
	}
	return ok()
}

// ValidateBatch splits the deduplicated sequence into valid records (order
// preserved) and invalid records carrying their 1-based position and reason.
func (v *RecordValidator) ValidateBatch(in []records.Record) ([]records.Record, []InvalidRecord) {
	valid := make([]records.Record, 0, len(in))
	var invalid []InvalidRecord
	for i, rec := range in {
		if out := v.ValidateRecord(rec); out.Valid {
			valid = append(valid, rec)
		} else {
			invalid = append(invalid, InvalidRecord{
				RowNumber: i + 1,
				Raw:       rec,
				Reason:    out.Reason,
			})
		}
	}
	return valid, invalid
}
