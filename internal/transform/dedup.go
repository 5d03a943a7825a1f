package transform

import (
	"rosteretl/pkg/records"
)

// Dedup collapses records that share an email, keeping the first occurrence
// in batch order. Records without an email are not part of the dedup domain:
// they pass through unchanged and are rejected downstream by the email
// validator instead of silently vanishing here.
type Dedup struct{}

// Apply returns the deduplicated records in original order plus the number of
// duplicates removed. The count measures exact duplicate emails within this
// batch only; duplicates against previously loaded data surface later as
// load-time skips, which is a different metric.
func (Dedup) Apply(in []records.Record) ([]records.Record, int) {
	if len(in) == 0 {
		return in, 0
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]records.Record, 0, len(in))
	removed := 0
	for _, rec := range in {
		email, _ := rec["email"].(string)
		if email == "" {
			out = append(out, rec)
			continue
		}
		if _, dup := seen[email]; dup {
			removed++
			continue
		}
		seen[email] = struct{}{}
		out = append(out, rec)
	}
	return out, removed
}
