package records

import "testing"

/*
TestHas verifies presence semantics: absent keys, nil values, and empty
strings all count as missing, while zero-valued non-string scalars count as
present.
*/
func TestHas(t *testing.T) {
	r := Record{
		"email": "a@example.com",
		"nil":   nil,
		"empty": "",
		"zero":  int64(0),
	}

	cases := []struct {
		key  string
		want bool
	}{
		{"email", true},
		{"nil", false},
		{"empty", false},
		{"zero", true},
		{"absent", false},
	}
	for _, tc := range cases {
		if got := r.Has(tc.key); got != tc.want {
			t.Errorf("Has(%q)=%v; want %v", tc.key, got, tc.want)
		}
	}
}

/*
TestAsString verifies scalar rendering for the types a source or transform
stage can put into a record.
*/
func TestAsString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{42, "42"},
		{int64(7), "7"},
		{2.5, "2.5"},
		{float64(3), "3"},
		{true, "true"},
		{false, "false"},
	}
	for _, tc := range cases {
		if got := AsString(tc.in); got != tc.want {
			t.Errorf("AsString(%#v)=%q; want %q", tc.in, got, tc.want)
		}
	}
}

/*
TestClone verifies the copy is detached: mutating the clone leaves the
original record untouched.
*/
func TestClone(t *testing.T) {
	orig := Record{"email": "a@example.com", "year": int64(2)}
	cp := orig.Clone()
	cp["email"] = "b@example.com"

	if orig.String("email") != "a@example.com" {
		t.Fatalf("original mutated through clone: %v", orig)
	}
	if cp.String("email") != "b@example.com" || cp["year"] != int64(2) {
		t.Fatalf("clone content wrong: %v", cp)
	}
}
