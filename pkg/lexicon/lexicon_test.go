package lexicon

import "testing"

func TestValidateCoversAllLanguages(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		want Language
		ok   bool
	}{
		{"english", English, true},
		{" Hinglish ", Hinglish, true},
		{"TELUGU", Telugu, true},
		{"french", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Parse(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestForUnknownLanguageIsEmpty(t *testing.T) {
	tbl := For(Language("french"))
	if len(tbl.Frustration) != 0 || len(tbl.Aggression) != 0 || len(tbl.Patterns) != 0 {
		t.Fatalf("expected empty table for unknown language")
	}
}

func TestDisplayName(t *testing.T) {
	if DisplayName(Telugu) != "Telugu" {
		t.Fatalf("unexpected display name: %s", DisplayName(Telugu))
	}
	if DisplayName(Language("french")) != "french" {
		t.Fatalf("expected passthrough for unknown code")
	}
}
