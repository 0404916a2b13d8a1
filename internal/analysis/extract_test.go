package analysis

import (
	"testing"

	"NewsDebate/internal/domain"
)

func TestExtractVerdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want domain.Verdict
	}{
		{"The news is likely true based on evidence", domain.VerdictLikelyTrue},
		{"no clear indicators", domain.VerdictUnknown},
		{"This is False", domain.VerdictFalse},
		{"This appears to be false information", domain.VerdictFalse},
		{"The verdict is unclear due to conflicting sources", domain.VerdictUnclear},
		{"Preliminary Verdict: LIKELY FALSE, the quote is unsourced", domain.VerdictLikelyFalse},
		{"Veredicto preliminar: True", domain.VerdictTrue},
		{"", domain.VerdictUnknown},
	}

	for _, tt := range tests {
		if got := ExtractVerdict(tt.text); got != tt.want {
			t.Errorf("ExtractVerdict(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractFinalMessages(t *testing.T) {
	t.Parallel()

	transcript := []domain.Message{
		{Role: domain.RoleModerator, Content: "Starting debate"},
		{Role: domain.RoleSynthesis, Content: "first synthesis"},
		{Role: domain.RoleAnalysis, Content: "first analysis"},
		{Role: domain.RoleProponent, Content: "Some argument"},
		{Role: domain.RoleSynthesis, Content: "final synthesis"},
	}

	synthesis, analysis := ExtractFinalMessages(transcript)
	if synthesis != "final synthesis" {
		t.Fatalf("unexpected synthesis: %q", synthesis)
	}
	if analysis != "first analysis" {
		t.Fatalf("unexpected analysis: %q", analysis)
	}
}

func TestExtractFinalMessagesMissing(t *testing.T) {
	t.Parallel()

	synthesis, analysis := ExtractFinalMessages([]domain.Message{
		{Role: domain.RoleModerator, Content: "Starting debate"},
		{Role: "SynthesisAgent", Content: "not an exact role match"},
	})
	if synthesis != "" || analysis != "" {
		t.Fatalf("expected empty results, got %q / %q", synthesis, analysis)
	}
}
