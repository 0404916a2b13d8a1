// Package analysis turns the free-text output of the final debate roles into
// structured results. Everything here is pure: no I/O, no logging, and no
// input can make these functions fail.
package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"NewsDebate/internal/domain"
)

const (
	defaultScore      = 0.5
	defaultNodeWeight = 1.0
	defaultVerdict    = "unknown"
	defaultRationale  = "No rationale provided"
	defaultNodeRole   = "unknown"

	// ParseErrorVerdict is reported when no structured payload could be decoded.
	ParseErrorVerdict = "parse_error"
	parseErrorReason  = "Failed to parse analysis output"
)

// ParseAnalysis extracts the JSON object spanning the first '{' to the last '}'
// of text and normalizes it into an AnalysisReport. When no object can be
// decoded the fallback report is returned with the original text preserved in
// RawAnalysis.
func ParseAnalysis(text string) (report domain.AnalysisReport) {
	defer func() {
		if r := recover(); r != nil {
			report = Fallback(text)
		}
	}()

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return Fallback(text)
	}

	// Numbers stay as json.Number so out-of-range literals are clamped rather
	// than failing the whole decode.
	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return Fallback(text)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Fallback(text)
	}

	return normalize(payload)
}

// Fallback is the report used when the analysis output cannot be decoded.
func Fallback(text string) domain.AnalysisReport {
	return domain.AnalysisReport{
		Nodes:       []domain.AnalysisNode{},
		Edges:       []domain.AnalysisEdge{},
		ProScore:    defaultScore,
		OppScore:    defaultScore,
		ProbTrue:    defaultScore,
		Verdict:     ParseErrorVerdict,
		Rationale:   parseErrorReason,
		RawAnalysis: text,
	}
}

func normalize(payload map[string]any) domain.AnalysisReport {
	return domain.AnalysisReport{
		Nodes:       normalizeNodes(payload["nodes"]),
		Edges:       normalizeEdges(payload["edges"]),
		ProScore:    scoreField(payload, "pro_score", defaultScore),
		OppScore:    scoreField(payload, "opp_score", defaultScore),
		ProbTrue:    scoreField(payload, "prob_true", defaultScore),
		Verdict:     textField(payload, "verdict", defaultVerdict),
		Rationale:   textField(payload, "rationale", defaultRationale),
		RawAnalysis: textField(payload, "raw_analysis", ""),
	}
}

func normalizeNodes(value any) []domain.AnalysisNode {
	items, ok := value.([]any)
	if !ok {
		return []domain.AnalysisNode{}
	}

	nodes := make([]domain.AnalysisNode, 0, len(items))
	for _, item := range items {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		nodes = append(nodes, domain.AnalysisNode{
			ID:               textField(node, "id", ""),
			Text:             textField(node, "text", ""),
			Role:             textField(node, "role", defaultNodeRole),
			CredibilityScore: scoreField(node, "credibility_score", defaultScore),
			Specificity:      scoreField(node, "specificity", defaultScore),
			Consistency:      scoreField(node, "consistency", defaultScore),
			Weight:           scoreField(node, "weight", defaultNodeWeight),
		})
	}
	return nodes
}

func normalizeEdges(value any) []domain.AnalysisEdge {
	items, ok := value.([]any)
	if !ok {
		return []domain.AnalysisEdge{}
	}

	edges := make([]domain.AnalysisEdge, 0, len(items))
	for _, item := range items {
		edge, ok := item.(map[string]any)
		if !ok {
			continue
		}
		relation := domain.RelationRefers
		if raw, ok := edge["relation"].(string); ok && domain.Relation(raw).Valid() {
			relation = domain.Relation(raw)
		}
		edges = append(edges, domain.AnalysisEdge{
			Source:   textField(edge, "source", ""),
			Target:   textField(edge, "target", ""),
			Relation: relation,
		})
	}
	return edges
}

// scoreField returns missing when key is absent. Present values that are not
// numeric fall back to the neutral score.
func scoreField(m map[string]any, key string, missing float64) float64 {
	value, ok := m[key]
	if !ok {
		return missing
	}
	score, ok := toNumber(value)
	if !ok {
		return defaultScore
	}
	return clamp(score)
}

func toNumber(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := parseFloat(v.String())
		if err != nil {
			return 0, false
		}
		n = parsed
	case float64:
		n = v
	case string:
		parsed, err := parseFloat(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		n = parsed
	case bool:
		if v {
			n = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// parseFloat accepts literals beyond float64 range as ±Inf.
func parseFloat(s string) (float64, error) {
	n, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		return n, nil
	}
	return n, err
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// textField coerces m[key] to text; absent and null values yield def.
func textField(m map[string]any, key, def string) string {
	value, ok := m[key]
	if !ok || value == nil {
		return def
	}
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return def
		}
		return string(raw)
	}
}
