package redact

import "testing"

func TestTextRedactsWhenEnabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	out := Text("reach me at jane@example.com or +91 98765 43210")
	if out == "reach me at jane@example.com or +91 98765 43210" {
		t.Fatalf("expected redaction, got %q", out)
	}
}

func TestTextPassthroughWhenDisabled(t *testing.T) {
	SetEnabled(false)
	in := "call me at +91 98765 43210"
	if got := Text(in); got != in {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestPreviewTruncatesRuneSafe(t *testing.T) {
	SetEnabled(false)
	got := Preview("नमस्ते, mujhe loan chahiye", 7)
	if got != "नमस्ते," {
		t.Fatalf("unexpected preview: %q", got)
	}
	if Preview("anything", 0) != "" {
		t.Fatalf("expected empty preview for zero width")
	}
}
