package langcat_test

import (
	"testing"

	"github.com/voxbridge-app/voxbridge/pkg/langcat"
)

func TestFindMatchesPrimarySubtag(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"en", "EN", "en-US", "ar", "ur-PK"} {
		if _, ok := langcat.Find(code); !ok {
			t.Errorf("Find(%q) = not found, want found", code)
		}
	}
	if _, ok := langcat.Find("de"); ok {
		t.Error("Find(de) should not match the catalogue")
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()

	if !langcat.Supported("ur") {
		t.Error("Supported(ur) = false, want true")
	}
	if langcat.Supported("fr") {
		t.Error("Supported(fr) = true, want false")
	}
}

func TestFindByNameFuzzy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query    string
		wantCode string
		wantOK   bool
	}{
		{"English", "en", true},
		{"english", "en", true},
		{"Arabic", "ar", true},
		{"Urdu", "ur", true},
		{"urduu", "ur", true}, // close transcription miss
		{"العربية", "ar", true},
		{"Klingon", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := langcat.FindByName(tc.query)
		if ok != tc.wantOK {
			t.Errorf("FindByName(%q) ok = %v, want %v", tc.query, ok, tc.wantOK)
			continue
		}
		if ok && got.Code != tc.wantCode {
			t.Errorf("FindByName(%q) = %s, want %s", tc.query, got.Code, tc.wantCode)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()

	first := langcat.All()
	first[0].Name = "mutated"
	if langcat.All()[0].Name == "mutated" {
		t.Error("All must return a copy of the catalogue")
	}
}
