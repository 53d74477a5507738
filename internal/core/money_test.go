package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"12.50", "12.5", true},
		{"12,50", "12.5", true},
		{" 500 ", "500", true},
		{"0", "0", true},
		{"0.01", "0.01", true},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"1e3", "", false},
		{"1.2.3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}
