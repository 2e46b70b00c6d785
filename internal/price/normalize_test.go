package price

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"85k", "85000"},
		{"85K", "85000"},
		{"1,234.5", "1234.5"},
		{"$2210", "2210"},
		{"$1,500k", "1500000"},
		{"0.45", "0.45"},
		{"  42 ", "42"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if err != nil {
			t.Fatalf("Normalize(%q) err=%v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("Normalize(%q)=%s want=%s", tc.in, got.String(), tc.want)
		}
	}
}

func TestNormalizeRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{"abc", "", "$", "12.3.4", "k"} {
		_, err := Normalize(in)
		if err == nil {
			t.Fatalf("Normalize(%q) expected error", in)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Normalize(%q) err=%T want ParseError", in, err)
		}
	}
}
