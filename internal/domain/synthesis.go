package domain

import "time"

// Verdict is the categorical credibility label derived from a synthesis report.
type Verdict string

const (
	VerdictTrue        Verdict = "True"
	VerdictLikelyTrue  Verdict = "Likely True"
	VerdictUnclear     Verdict = "Unclear"
	VerdictLikelyFalse Verdict = "Likely False"
	VerdictFalse       Verdict = "False"
	VerdictUnknown     Verdict = "Unknown"
)

// Relation classifies an edge of the debate argument graph.
type Relation string

const (
	RelationSupport Relation = "support"
	RelationAttack  Relation = "attack"
	RelationRefers  Relation = "refers"
)

// Valid reports whether r is one of the known relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationSupport, RelationAttack, RelationRefers:
		return true
	}
	return false
}

// SynthesisReport is the narrative outcome written by the Synthesis role.
type SynthesisReport struct {
	Report  string  `json:"report"`
	Verdict Verdict `json:"verdict"`
}

// AnalysisNode is a single proposition extracted from the debate.
type AnalysisNode struct {
	ID               string  `json:"id"`
	Text             string  `json:"text"`
	Role             string  `json:"role"`
	CredibilityScore float64 `json:"credibility_score"`
	Specificity      float64 `json:"specificity"`
	Consistency      float64 `json:"consistency"`
	Weight           float64 `json:"weight"`
}

// AnalysisEdge links two propositions.
type AnalysisEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation Relation `json:"relation"`
}

// AnalysisReport is the normalized structured judgment. Every field is always
// serialized so stored reports share one key set regardless of parse outcome.
type AnalysisReport struct {
	Nodes       []AnalysisNode `json:"nodes"`
	Edges       []AnalysisEdge `json:"edges"`
	ProScore    float64        `json:"pro_score"`
	OppScore    float64        `json:"opp_score"`
	ProbTrue    float64        `json:"prob_true"`
	Verdict     string         `json:"verdict"`
	Rationale   string         `json:"rationale"`
	RawAnalysis string         `json:"raw_analysis"`
}

// Synthesis is the immutable record of one completed debate.
type Synthesis struct {
	ID              string          `json:"id"`
	ArticleID       string          `json:"article_id"`
	SynthesisReport SynthesisReport `json:"synthesis_report"`
	AnalysisReport  AnalysisReport  `json:"analysis_report"`
	CreatedAt       time.Time       `json:"created_at"`
}
