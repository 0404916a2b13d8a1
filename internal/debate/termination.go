package debate

import (
	"strings"

	"NewsDebate/internal/domain"
)

var (
	analysisMarkers = []string{"json", "analysis", "verdict", "prob_true"}
	closingMarkers  = []string{"analysis report", "final analysis", "verdict:", "prob_true", "preliminary verdict"}
)

// ShouldTerminate reports whether msg ends the debate. Matching is case-insensitive.
func ShouldTerminate(msg domain.Message) bool {
	content := strings.ToLower(msg.Content)
	if msg.Role == domain.RoleAnalysis && containsAny(content, analysisMarkers) {
		return true
	}
	return containsAny(content, closingMarkers)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
