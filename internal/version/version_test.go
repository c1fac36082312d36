package version

import "testing"

func TestDistTagsAreModern(t *testing.T) {
	for _, tag := range []string{"latest", "canary"} {
		legacy, err := IsLegacy(tag)
		if err != nil {
			t.Fatalf("IsLegacy(%q): %v", tag, err)
		}
		if legacy {
			t.Fatalf("expected %q to classify as modern", tag)
		}
	}
}

func TestExactLegacyVersions(t *testing.T) {
	for _, v := range legacyVersions {
		legacy, err := IsLegacy(v)
		if err != nil {
			t.Fatalf("IsLegacy(%q): %v", v, err)
		}
		if !legacy {
			t.Fatalf("expected %q to classify as legacy", v)
		}
	}
}

func TestRangeClassification(t *testing.T) {
	cases := []struct {
		requirement string
		legacy      bool
	}{
		{"^6.0.0", true},
		{"~7.0.1", true},
		{">=4.0.0 <8.0.0", true},
		{"^8.0.4", false},
		{"^9.0.0", false},
		{">=8.0.4", false},
		{"9.0.1", false},
	}
	for _, tc := range cases {
		legacy, err := IsLegacy(tc.requirement)
		if err != nil {
			t.Fatalf("IsLegacy(%q): %v", tc.requirement, err)
		}
		if legacy != tc.legacy {
			t.Fatalf("IsLegacy(%q) = %v, want %v", tc.requirement, legacy, tc.legacy)
		}
	}
}

func TestUnparseableRequirement(t *testing.T) {
	if _, err := IsLegacy("not a version"); err == nil {
		t.Fatalf("expected an error for an unparseable requirement")
	}
}
