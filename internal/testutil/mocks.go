package testutil

import (
	"context"
	"errors"

	"dungeon-chat/internal/repository/db"
	"dungeon-chat/internal/service/llm"
)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// User mocks
	GetUserByUsernameFunc func(username string) (*db.User, error)
	CreateUserFunc        func(username, email, passwordHash string) (*db.User, error)

	// Conversation mocks
	CreateConversationFunc     func(userID, name, ruleMode, theme string) (*db.Conversation, error)
	GetConversationFunc        func(id string) (*db.Conversation, error)
	GetConversationsByUserFunc func(userID string) ([]db.Conversation, error)
	DeleteConversationFunc     func(id string) error

	// Character mocks
	GetCharacterFunc    func(conversationID string) (*db.Character, error)
	SaveCharacterFunc   func(ch *db.Character) (*db.Character, error)
	UpdateCharacterFunc func(ch *db.Character) error

	// Turn mocks
	GetRecentTurnsFunc func(conversationID string, limit int) ([]db.Turn, error)
	GetTurnsFunc       func(conversationID string) ([]db.Turn, error)
	AppendTurnFunc     func(conversationID string, speakerID *string, text string) (*db.Turn, error)
	CommitExchangeFunc func(conversationID string, speakerID *string, utterance, reply string, ch *db.Character) error
}

var _ db.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetUserByUsername(username string) (*db.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(username)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CreateUser(username, email, passwordHash string) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(username, email, passwordHash)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CreateConversation(userID, name, ruleMode, theme string) (*db.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(userID, name, ruleMode, theme)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversation(id string) (*db.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationsByUser(userID string) ([]db.Conversation, error) {
	if m.GetConversationsByUserFunc != nil {
		return m.GetConversationsByUserFunc(userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) DeleteConversation(id string) error {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(id)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) GetCharacter(conversationID string) (*db.Character, error) {
	if m.GetCharacterFunc != nil {
		return m.GetCharacterFunc(conversationID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) SaveCharacter(ch *db.Character) (*db.Character, error) {
	if m.SaveCharacterFunc != nil {
		return m.SaveCharacterFunc(ch)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) UpdateCharacter(ch *db.Character) error {
	if m.UpdateCharacterFunc != nil {
		return m.UpdateCharacterFunc(ch)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) GetRecentTurns(conversationID string, limit int) ([]db.Turn, error) {
	if m.GetRecentTurnsFunc != nil {
		return m.GetRecentTurnsFunc(conversationID, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetTurns(conversationID string) ([]db.Turn, error) {
	if m.GetTurnsFunc != nil {
		return m.GetTurnsFunc(conversationID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) AppendTurn(conversationID string, speakerID *string, text string) (*db.Turn, error) {
	if m.AppendTurnFunc != nil {
		return m.AppendTurnFunc(conversationID, speakerID, text)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) CommitExchange(conversationID string, speakerID *string, utterance, reply string, ch *db.Character) error {
	if m.CommitExchangeFunc != nil {
		return m.CommitExchangeFunc(conversationID, speakerID, utterance, reply, ch)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) Close() error {
	return nil
}

// MockCompletionService is a mock implementation of llm.CompletionService
type MockCompletionService struct {
	CompleteFunc func(ctx context.Context, messages []llm.Message, temperature float64) (string, error)
}

var _ llm.CompletionService = (*MockCompletionService)(nil)

func (m *MockCompletionService) Complete(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages, temperature)
	}
	return "", errors.New("not implemented")
}

// MockModerationService is a mock implementation of llm.ModerationService
type MockModerationService struct {
	CheckFunc func(ctx context.Context, text string) (bool, error)
}

var _ llm.ModerationService = (*MockModerationService)(nil)

func (m *MockModerationService) Check(ctx context.Context, text string) (bool, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, text)
	}
	return false, errors.New("not implemented")
}
