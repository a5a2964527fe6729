package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonSentimentGenerate)
	if Reason(err) != ReasonSentimentGenerate {
		t.Fatalf("expected reason %s, got %s", ReasonSentimentGenerate, Reason(err))
	}
	if !HasReason(err, ReasonSentimentGenerate) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonSentimentParse)
	second := Wrap(first, ReasonSentimentGenerate)
	if Reason(second) != ReasonSentimentParse {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonSentimentTimeout) != nil {
		t.Fatalf("expected nil passthrough")
	}
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("expected unknown reason for nil error")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
