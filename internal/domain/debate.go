package domain

import (
	"strings"
	"time"
)

// Role identifies a debate participant.
type Role string

const (
	RoleModerator Role = "Moderator"
	RoleProponent Role = "Proponent"
	RoleOpponent  Role = "Opponent"
	RoleSynthesis Role = "Synthesis"
	RoleAnalysis  Role = "Analysis"
)

// Roles lists every participant in speaking-order of first appearance.
var Roles = []Role{RoleModerator, RoleProponent, RoleOpponent, RoleSynthesis, RoleAnalysis}

// ParseRole maps an engine-supplied speaker name onto a Role. Matching ignores
// case and an "Agent" suffix, so "SynthesisAgent" resolves to RoleSynthesis.
func ParseRole(name string) (Role, bool) {
	name = strings.TrimSpace(name)
	if len(name) > len("agent") && strings.EqualFold(name[len(name)-len("agent"):], "agent") {
		name = name[:len(name)-len("agent")]
	}
	for _, r := range Roles {
		if strings.EqualFold(string(r), name) {
			return r, true
		}
	}
	return "", false
}

// Stage names the purpose of a scripted turn.
type Stage string

const (
	StageOpening   Stage = "opening"
	StageCrossExam Stage = "cross_examination"
	StageRebuttal  Stage = "rebuttal"
	StageClosing   Stage = "closing"
	StageReport    Stage = "report"
)

// Message is one entry of a debate transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SpeakerConfig is the per-turn configuration handed to the conversation engine.
type SpeakerConfig struct {
	Role         Role   `json:"role"`
	Stage        Stage  `json:"stage"`
	SystemPrompt string `json:"system_prompt"`
	Instruction  string `json:"instruction"`
	MaxWords     int    `json:"max_words"`
}

// TurnRequest carries everything the engine needs to produce the next message.
type TurnRequest struct {
	Brief      string        `json:"brief"`
	Transcript []Message     `json:"transcript"`
	Speaker    SpeakerConfig `json:"speaker"`
}

// TranscriptRecord is the archived form of one debate session.
type TranscriptRecord struct {
	ArticleID  string    `json:"article_id"`
	Title      string    `json:"title"`
	Transcript []Message `json:"transcript"`
	StopReason string    `json:"stop_reason"`
	Completed  bool      `json:"completed"`
	Verdict    Verdict   `json:"verdict"`
	ProbTrue   float64   `json:"prob_true"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
