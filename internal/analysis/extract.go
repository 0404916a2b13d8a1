package analysis

import (
	"strings"

	"NewsDebate/internal/domain"
)

// Verdicts lists the labels in their public priority order.
var Verdicts = []domain.Verdict{
	domain.VerdictTrue,
	domain.VerdictLikelyTrue,
	domain.VerdictUnclear,
	domain.VerdictLikelyFalse,
	domain.VerdictFalse,
}

// matchOrder checks the qualified labels first because "true" and "false" are
// substrings of them.
var matchOrder = []domain.Verdict{
	domain.VerdictLikelyTrue,
	domain.VerdictLikelyFalse,
	domain.VerdictTrue,
	domain.VerdictUnclear,
	domain.VerdictFalse,
}

// ExtractFinalMessages returns the content of the most recent Synthesis and
// Analysis messages. A role that never spoke yields "".
func ExtractFinalMessages(transcript []domain.Message) (synthesis, analysis string) {
	for _, msg := range transcript {
		switch msg.Role {
		case domain.RoleSynthesis:
			synthesis = msg.Content
		case domain.RoleAnalysis:
			analysis = msg.Content
		}
	}
	return synthesis, analysis
}

// ExtractVerdict derives the credibility label from a synthesis report.
func ExtractVerdict(text string) domain.Verdict {
	lowered := strings.ToLower(text)
	for _, verdict := range matchOrder {
		if strings.Contains(lowered, strings.ToLower(string(verdict))) {
			return verdict
		}
	}
	return domain.VerdictUnknown
}
