// Package prompt composes the ordered input the completion service consumes:
// rule-mode directives, a character summary, a bounded tail of prior turns
// and the new utterance. Building never mutates persisted state.
package prompt

import (
	"fmt"

	"dungeon-chat/internal/game/rulemode"
	"dungeon-chat/internal/repository/db"
	"dungeon-chat/internal/service/llm"
)

// Builder assembles context windows
type Builder struct {
	// Window is how many committed turns are replayed, oldest-first
	Window int
	// LowHealthThreshold triggers the cautionary directive
	LowHealthThreshold int
}

// NewBuilder returns a builder with the given window and low-health cutoff
func NewBuilder(window, lowHealthThreshold int) *Builder {
	return &Builder{Window: window, LowHealthThreshold: lowHealthThreshold}
}

// Build produces the model input for one utterance. The character may be
// nil for conversations created before character setup. History must be the
// most recent committed turns in oldest-first order; Build trims it to the
// window but does not reorder it.
func (b *Builder) Build(conv *db.Conversation, ch *db.Character, history []db.Turn, utterance string) []llm.Message {
	policy := rulemode.Lookup(conv.RuleMode)

	messages := make([]llm.Message, 0, len(policy.Directives)+len(history)+3)
	for _, directive := range policy.Directives {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: directive})
	}

	if ch != nil {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: summarize(ch)})
		if ch.Health < b.LowHealthThreshold {
			messages = append(messages, llm.Message{
				Role:    llm.RoleSystem,
				Content: "The character is gravely wounded and close to collapse. Let the narration reflect their weakened state, and raise the stakes of any risky action.",
			})
		}
	}

	turns := history
	if len(turns) > b.Window {
		turns = turns[len(turns)-b.Window:]
	}
	for _, turn := range turns {
		role := llm.RoleAssistant
		if turn.SpeakerID != nil {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.SelectedText()})
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: utterance})
}

// summarize renders the one-line character sheet directive
func summarize(ch *db.Character) string {
	backstory := ch.Backstory
	if backstory == "" {
		backstory = "No backstory yet."
	}

	stat := rulemode.PrimaryStat(ch.Class)
	statValue := ch.Strength
	if stat == rulemode.StatSpellPower {
		statValue = ch.SpellPower
	}

	return fmt.Sprintf(
		"The player's character is %s, a %s. Backstory: %s Health: %d. Level: %d. Their %s is %d.",
		ch.Name, ch.Class, backstory, ch.Health, ch.Level, stat, statValue,
	)
}
