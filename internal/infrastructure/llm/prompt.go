package llm

import (
	"fmt"
	"strings"

	"NewsDebate/internal/domain"
)

// chatMessage is the role/content pair shared by OpenAI-style chat APIs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// systemPrompt combines the speaker's role prompt with the debate brief.
func systemPrompt(req domain.TurnRequest) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.Speaker.SystemPrompt))
	if req.Brief != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(req.Brief))
	}
	return b.String()
}

// turnInstruction tells the speaker what this step expects.
func turnInstruction(speaker domain.SpeakerConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Stage: %s.", speaker.Role, speaker.Stage)
	if speaker.Instruction != "" {
		b.WriteString(" ")
		b.WriteString(speaker.Instruction)
	}
	if speaker.MaxWords > 0 {
		fmt.Fprintf(&b, " Answer in at most %d words.", speaker.MaxWords)
	}
	return b.String()
}

// chatMessages maps the transcript onto chat roles: the speaker's own earlier
// turns become assistant messages, everyone else is quoted as user input.
func chatMessages(req domain.TurnRequest) []chatMessage {
	msgs := make([]chatMessage, 0, len(req.Transcript)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt(req)})
	for _, m := range req.Transcript {
		if m.Role == req.Speaker.Role {
			msgs = append(msgs, chatMessage{Role: "assistant", Content: m.Content})
			continue
		}
		msgs = append(msgs, chatMessage{Role: "user", Content: fmt.Sprintf("%s: %s", m.Role, m.Content)})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: turnInstruction(req.Speaker)})
	return msgs
}

// transcriptPrompt flattens the transcript for single-prompt APIs.
func transcriptPrompt(req domain.TurnRequest) string {
	var b strings.Builder
	if len(req.Transcript) > 0 {
		b.WriteString("Debate so far:\n\n")
		for _, m := range req.Transcript {
			fmt.Fprintf(&b, "%s: %s\n\n", m.Role, m.Content)
		}
	}
	b.WriteString(turnInstruction(req.Speaker))
	return b.String()
}
