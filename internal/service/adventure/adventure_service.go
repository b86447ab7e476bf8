// Package adventure manages the lifecycle around a conversation: creating a
// world (with its model-narrated opening scene), listing adventures, reading
// turn history, and character setup.
package adventure

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/config"
	"dungeon-chat/internal/game/progression"
	"dungeon-chat/internal/game/rulemode"
	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
	"dungeon-chat/internal/service/llm"
	"dungeon-chat/pkg/validation"
)

// Service handles adventure and character management
type Service struct {
	db         db.Database
	completion llm.CompletionService

	introTemperature float64
}

// NewService creates a new adventure service
func NewService(database db.Database, completion llm.CompletionService, cfg *config.AppConfig) *Service {
	return &Service{
		db:               database,
		completion:       completion,
		introTemperature: cfg.LLM.IntroTemperature,
	}
}

// Adventure is a created adventure together with its opening scene
type Adventure struct {
	Conversation *db.Conversation
	Intro        string
}

// Create makes a new adventure for a user and commits the model-narrated
// opening scene as its first turn. The rule mode is fixed here for the
// conversation's lifetime.
func (s *Service) Create(ctx context.Context, userID, name, ruleMode, theme string) (*Adventure, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("world name is required: %w", validation.ErrValidation)
	}

	policy := rulemode.Lookup(ruleMode)
	themeDescription := theme
	if themeDescription == "" || themeDescription == "default" {
		themeDescription = "a classic fantasy adventure"
	} else {
		themeDescription = strings.ReplaceAll(themeDescription, "-", " ")
		themeDescription = strings.ReplaceAll(themeDescription, "_", " ")
	}

	messages := make([]llm.Message, 0, len(policy.Directives)+1)
	for _, directive := range policy.Directives {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: directive})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf(policy.IntroPrompt, themeDescription),
	})

	// Generate the intro before touching the store, so a completion
	// failure leaves nothing behind
	intro, err := s.completion.Complete(ctx, messages, s.introTemperature)
	if err != nil {
		return nil, err
	}

	conv, err := s.db.CreateConversation(userID, name, policy.Mode, theme)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	if _, err := s.db.AppendTurn(conv.ID, nil, intro); err != nil {
		// Don't leave an introless world around
		if delErr := s.db.DeleteConversation(conv.ID); delErr != nil {
			logger.Log.WithError(delErr).Warn("Failed to clean up conversation after intro commit failure")
		}
		return nil, fmt.Errorf("failed to commit intro turn: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"rule_mode":       conv.RuleMode,
		"theme":           conv.Theme,
	}).Info("Created new adventure")

	return &Adventure{Conversation: conv, Intro: intro}, nil
}

// List returns a user's adventures, newest first
func (s *Service) List(userID string) ([]db.Conversation, error) {
	conversations, err := s.db.GetConversationsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve adventures: %w", err)
	}
	return conversations, nil
}

// History returns every committed turn of an adventure the user owns
func (s *Service) History(conversationID, userID string) ([]db.Turn, error) {
	if _, err := s.authorize(conversationID, userID); err != nil {
		return nil, err
	}

	turns, err := s.db.GetTurns(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve turns: %w", err)
	}
	return turns, nil
}

// Delete removes an adventure the user owns, cascading to its turns,
// variants and character.
func (s *Service) Delete(conversationID, userID string) error {
	if _, err := s.authorize(conversationID, userID); err != nil {
		return err
	}
	return s.db.DeleteConversation(conversationID)
}

// SaveCharacter creates the adventure's character, or updates its name,
// class and backstory when one already exists. A new character's primary
// stat is seeded by class.
func (s *Service) SaveCharacter(conversationID, userID, name, class, backstory string) (*db.Character, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(class) == "" {
		return nil, fmt.Errorf("character name and class are required: %w", validation.ErrValidation)
	}

	if _, err := s.authorize(conversationID, userID); err != nil {
		return nil, err
	}

	ch := &db.Character{
		ConversationID: conversationID,
		Name:           name,
		Class:          class,
		Backstory:      backstory,
		Health:         progression.BaseHealth,
		Level:          1,
	}
	if rulemode.PrimaryStat(class) == rulemode.StatSpellPower {
		ch.SpellPower = 12
	} else {
		ch.Strength = 10
	}

	saved, err := s.db.SaveCharacter(ch)
	if err != nil {
		return nil, fmt.Errorf("failed to save character: %w", err)
	}
	return saved, nil
}

// GetCharacter returns the adventure's character
func (s *Service) GetCharacter(conversationID, userID string) (*db.Character, error) {
	if _, err := s.authorize(conversationID, userID); err != nil {
		return nil, err
	}
	return s.db.GetCharacter(conversationID)
}

// authorize loads the conversation and verifies ownership
func (s *Service) authorize(conversationID, userID string) (*db.Conversation, error) {
	conv, err := s.db.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, fmt.Errorf("user does not own this adventure: %w", validation.ErrValidation)
	}
	return conv, nil
}
