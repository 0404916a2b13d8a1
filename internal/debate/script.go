package debate

import (
	"fmt"
	"strings"

	"NewsDebate/internal/domain"
)

const moderatorMaxWords = 100

// Step is one scripted turn of the debate.
type Step struct {
	Role        domain.Role
	Stage       domain.Stage
	Instruction string
}

// Script is the fixed speaking order. The session ends after the last step.
var Script = []Step{
	{domain.RoleModerator, domain.StageOpening, "Present the news and explain the debate format, then call on the Proponent."},
	{domain.RoleProponent, domain.StageOpening, "Opening statement: argue the news is TRUE and ACCURATE."},
	{domain.RoleOpponent, domain.StageOpening, "Opening statement: argue the news is FALSE or INACCURATE."},
	{domain.RoleProponent, domain.StageCrossExam, "Cross-examine the Opponent."},
	{domain.RoleOpponent, domain.StageCrossExam, "Cross-examine the Proponent."},
	{domain.RoleProponent, domain.StageRebuttal, "Rebuttal defending the accuracy of the news."},
	{domain.RoleOpponent, domain.StageRebuttal, "Rebuttal challenging the accuracy of the news."},
	{domain.RoleProponent, domain.StageClosing, "Closing statement on why the news is accurate."},
	{domain.RoleOpponent, domain.StageClosing, "Closing statement on why the news is inaccurate."},
	{domain.RoleSynthesis, domain.StageReport, "Provide the EVALUATION REPORT."},
	{domain.RoleAnalysis, domain.StageReport, "Provide the final ANALYSIS REPORT as JSON."},
}

// DefaultPrompts returns the built-in system prompt of every role.
func DefaultPrompts(maxWords int, spanish bool) map[domain.Role]string {
	language := ""
	if spanish {
		language = "Write the report in Spanish.\n"
	}
	limit := fmt.Sprintf("Keep each message under %d words.\n", maxWords)

	return map[domain.Role]string{
		domain.RoleModerator: "You moderate a structured debate about whether a news article is accurate.\n" +
			fmt.Sprintf("Present the article in under %d words, focusing on what it claims.\n", moderatorMaxWords) +
			"Then ask the Proponent for an opening statement arguing the news is accurate.\n" +
			"Only open the debate; the script decides who speaks next.",
		domain.RoleProponent: "You argue that the news article is TRUE and ACCURATE.\n" +
			"Defend the specific facts, dates, names, quotes and events it reports.\n" + limit +
			"Propose concrete checks and mark the references you rely on as [Ref: outlet/title].\n" +
			"Never invent facts. Say so when you are unsure.",
		domain.RoleOpponent: "You argue that the news article is FALSE or INACCURATE.\n" +
			"Challenge its facts, dates, figures and quotes, and question source reliability.\n" + limit +
			"Point out logical leaps and missing information, marking references as [Ref: outlet/title].\n" +
			"Never invent facts. Say so when you are unsure.",
		domain.RoleSynthesis: "You summarize the debate with critical judgement.\n" +
			"Produce an EVALUATION REPORT covering verifiability, sources, tone, corroboration, " +
			"the key points of each side and the gaps on both sides.\n" +
			"Close with your assessment as one of True, Likely True, Unclear, Likely False or False, " +
			"followed by a short rationale. Do not add a title.\n" + language,
		domain.RoleAnalysis: "You build a role-aware argument graph from the debate log.\n" +
			"Extract at most five atomic propositions per message and tag each with its role.\n" +
			"Link them with support, attack or refers edges and score each node's credibility " +
			"from specificity and consistency.\n" +
			"Weight opening, rebuttal and closing turns 1.0, 1.1 and 1.2.\n" +
			"Return JSON: {nodes:[...], edges:[...], pro_score, opp_score, prob_true, verdict, rationale}.\n" +
			language +
			"The debate is over once you answer.",
	}
}

// ResolvePrompts applies config overrides, keyed by role name, on top of the defaults.
// Unknown role names are ignored.
func ResolvePrompts(maxWords int, spanish bool, overrides map[string]string) map[domain.Role]string {
	prompts := DefaultPrompts(maxWords, spanish)
	for name, prompt := range overrides {
		role, ok := domain.ParseRole(name)
		if !ok || strings.TrimSpace(prompt) == "" {
			continue
		}
		prompts[role] = prompt
	}
	return prompts
}

// BuildBrief renders the instructions every engine call receives along with the transcript.
func BuildBrief(article domain.Article, maxWords int) string {
	var b strings.Builder
	b.WriteString("We will now hold a structured debate about the accuracy of this news article. ")
	b.WriteString("Speakers follow this exact order, one message per step:\n\n")
	for i, step := range Script {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, step.Role, step.Instruction)
	}
	fmt.Fprintf(&b, "\nKeep responses concise (at most %d words).\n\n", maxWords)
	b.WriteString("NEWS TO DEBATE:\n")
	fmt.Fprintf(&b, "Title: %s\n", article.Title)
	fmt.Fprintf(&b, "Source: %s\n", article.Source)
	fmt.Fprintf(&b, "Content: %s\n\n", article.Content)
	b.WriteString("The debate is over once the Analysis speaker has delivered the final analysis.\n")
	return b.String()
}

func speakerFor(step Step, prompts map[domain.Role]string, maxWords int) domain.SpeakerConfig {
	words := maxWords
	switch step.Role {
	case domain.RoleModerator:
		words = moderatorMaxWords
	case domain.RoleSynthesis, domain.RoleAnalysis:
		words = 0
	}
	return domain.SpeakerConfig{
		Role:         step.Role,
		Stage:        step.Stage,
		SystemPrompt: prompts[step.Role],
		Instruction:  step.Instruction,
		MaxWords:     words,
	}
}
