package sentiment

import "testing"

func TestLocalPolaritySigns(t *testing.T) {
	cases := []struct {
		text     string
		negative bool
		neutral  bool
	}{
		{"this is excellent, thank you", false, false},
		{"this is terrible and useless", true, false},
		{"tell me about loan options", false, true},
		{"", false, true},
	}
	for _, tc := range cases {
		score := localPolarity(tc.text)
		if score < -1.0 || score > 1.0 {
			t.Fatalf("score %f out of bounds for %q", score, tc.text)
		}
		switch {
		case tc.neutral && score != 0.0:
			t.Fatalf("expected neutral for %q, got %f", tc.text, score)
		case tc.negative && score >= 0:
			t.Fatalf("expected negative for %q, got %f", tc.text, score)
		case !tc.negative && !tc.neutral && score <= 0:
			t.Fatalf("expected positive for %q, got %f", tc.text, score)
		}
	}
}

func TestLocalPolarityNegationDampens(t *testing.T) {
	plain := localPolarity("this is good")
	negated := localPolarity("this is not good")
	if negated >= 0 {
		t.Fatalf("expected negation to flip sign, got %f", negated)
	}
	if -negated >= plain {
		t.Fatalf("negated magnitude should be dampened: %f vs %f", negated, plain)
	}
}

func TestLocalPolarityStripsPunctuation(t *testing.T) {
	if localPolarity("great!") <= 0 {
		t.Fatalf("expected punctuation-stripped match")
	}
}
