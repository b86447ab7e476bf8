package db

import "time"

// User represents a registered player
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Conversation is one adventure: an ordered sequence of turns plus at most
// one character. RuleMode is fixed at creation; changing it afterwards would
// invalidate the context framing accumulated in the turn history.
type Conversation struct {
	ID        string
	UserID    string
	Name      string
	RuleMode  string
	Theme     string
	CreatedAt time.Time
}

// Character is the playable character owned by a conversation (1:1).
// Exactly one of SpellPower/Strength is relevant for a given class.
type Character struct {
	ID             string
	ConversationID string
	Name           string
	Class          string
	Health         int
	SpellPower     int
	Strength       int
	XP             int
	Level          int
	Backstory      string
	KO             bool
}

// Turn is one committed step of a conversation. A nil SpeakerID means the
// turn was produced by the model. Turns are append-only.
type Turn struct {
	ID              string
	ConversationID  string
	Seq             int
	SpeakerID       *string
	SelectedVariant int
	Variants        []Variant
	CreatedAt       time.Time
}

// Variant is one candidate rendering of a turn's text, immutable once created.
type Variant struct {
	ID     string
	TurnID string
	Text   string
}

// SelectedText returns the text of the turn's selected variant, or "" when
// the turn has no variants (which the store never produces).
func (t *Turn) SelectedText() string {
	if t.SelectedVariant >= 0 && t.SelectedVariant < len(t.Variants) {
		return t.Variants[t.SelectedVariant].Text
	}
	return ""
}
