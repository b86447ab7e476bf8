package db

// Database defines the persistence operations the services depend on.
// Implementations must guarantee that CommitExchange is atomic: either both
// turns and the character update become visible together, or nothing does.
type Database interface {
	// User operations
	GetUserByUsername(username string) (*User, error)
	CreateUser(username, email, passwordHash string) (*User, error)

	// Conversation operations
	CreateConversation(userID, name, ruleMode, theme string) (*Conversation, error)
	GetConversation(id string) (*Conversation, error)
	GetConversationsByUser(userID string) ([]Conversation, error)
	DeleteConversation(id string) error

	// Character operations (one character per conversation)
	GetCharacter(conversationID string) (*Character, error)
	SaveCharacter(ch *Character) (*Character, error)
	UpdateCharacter(ch *Character) error

	// Turn operations. Turns are append-only; GetRecentTurns returns the
	// last limit turns in oldest-first order, each with its variants.
	GetRecentTurns(conversationID string, limit int) ([]Turn, error)
	GetTurns(conversationID string) ([]Turn, error)
	AppendTurn(conversationID string, speakerID *string, text string) (*Turn, error)

	// CommitExchange appends the user turn and the model turn as one
	// transaction, updating the character in the same transaction when
	// ch is non-nil.
	CommitExchange(conversationID string, speakerID *string, utterance, reply string, ch *Character) error

	Close() error
}
