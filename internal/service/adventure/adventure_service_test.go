package adventure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dungeon-chat/internal/config"
	"dungeon-chat/internal/repository/db"
	"dungeon-chat/internal/service/llm"
	"dungeon-chat/internal/testutil"
	"dungeon-chat/pkg/validation"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		LLM: config.LLMConfig{IntroTemperature: 0.9},
	}
}

func ownedConversation() *db.Conversation {
	return &db.Conversation{ID: "conv-1", UserID: "user-1", Name: "The Sunken Keep", RuleMode: "narrative", Theme: "haunted-forest"}
}

func TestCreate_CommitsIntroAsFirstTurn(t *testing.T) {
	var events []string
	var introSpeaker *string
	var introText string
	var promptContent string

	mockDB := &testutil.MockDatabase{
		CreateConversationFunc: func(userID, name, ruleMode, theme string) (*db.Conversation, error) {
			events = append(events, "create")
			if ruleMode != "narrative" {
				t.Errorf("Expected resolved rule mode, got %q", ruleMode)
			}
			return &db.Conversation{ID: "conv-1", UserID: userID, Name: name, RuleMode: ruleMode, Theme: theme}, nil
		},
		AppendTurnFunc: func(conversationID string, speakerID *string, text string) (*db.Turn, error) {
			events = append(events, "append")
			introSpeaker = speakerID
			introText = text
			return &db.Turn{ID: "turn-1", ConversationID: conversationID, Seq: 1}, nil
		},
	}
	mockLLM := &testutil.MockCompletionService{
		CompleteFunc: func(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
			events = append(events, "llm")
			promptContent = messages[len(messages)-1].Content
			if temperature != 0.9 {
				t.Errorf("Expected intro temperature 0.9, got %v", temperature)
			}
			return "Mist curls between the pines.", nil
		},
	}

	service := NewService(mockDB, mockLLM, testConfig())
	created, err := service.Create(context.Background(), "user-1", "The Sunken Keep", "narrative", "haunted-forest")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// the intro is generated before any store write
	want := []string{"llm", "create", "append"}
	for i := range want {
		if i >= len(events) || events[i] != want[i] {
			t.Fatalf("Expected event order %v, got %v", want, events)
		}
	}

	if created.Intro != "Mist curls between the pines." {
		t.Errorf("Unexpected intro %q", created.Intro)
	}
	if introSpeaker != nil {
		t.Errorf("Expected the intro turn to have no speaker, got %v", *introSpeaker)
	}
	if introText != created.Intro {
		t.Errorf("Expected the intro committed verbatim, got %q", introText)
	}
	if !strings.Contains(promptContent, "haunted forest") {
		t.Errorf("Expected dashes replaced in the theme description, got %q", promptContent)
	}
}

func TestCreate_EmptyNameRejected(t *testing.T) {
	service := NewService(&testutil.MockDatabase{}, &testutil.MockCompletionService{}, testConfig())

	_, err := service.Create(context.Background(), "user-1", "  ", "narrative", "default")

	if !errors.Is(err, validation.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestCreate_CompletionFailureCreatesNothing(t *testing.T) {
	createCalls := 0

	mockDB := &testutil.MockDatabase{
		CreateConversationFunc: func(userID, name, ruleMode, theme string) (*db.Conversation, error) {
			createCalls++
			return nil, nil
		},
	}
	mockLLM := &testutil.MockCompletionService{
		CompleteFunc: func(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
			return "", llm.ErrCompletion
		},
	}

	service := NewService(mockDB, mockLLM, testConfig())
	_, err := service.Create(context.Background(), "user-1", "Doomed World", "narrative", "default")

	if !errors.Is(err, llm.ErrCompletion) {
		t.Errorf("Expected ErrCompletion, got %v", err)
	}
	if createCalls != 0 {
		t.Errorf("Expected no conversation created, got %d", createCalls)
	}
}

func TestCreate_IntroCommitFailureCleansUp(t *testing.T) {
	deletedID := ""

	mockDB := &testutil.MockDatabase{
		CreateConversationFunc: func(userID, name, ruleMode, theme string) (*db.Conversation, error) {
			return &db.Conversation{ID: "conv-1", UserID: userID}, nil
		},
		AppendTurnFunc: func(conversationID string, speakerID *string, text string) (*db.Turn, error) {
			return nil, db.ErrPersistence
		},
		DeleteConversationFunc: func(id string) error {
			deletedID = id
			return nil
		},
	}
	mockLLM := &testutil.MockCompletionService{
		CompleteFunc: func(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
			return "An opening.", nil
		},
	}

	service := NewService(mockDB, mockLLM, testConfig())
	_, err := service.Create(context.Background(), "user-1", "Short-lived World", "narrative", "default")

	if err == nil {
		t.Fatal("Expected an error")
	}
	if deletedID != "conv-1" {
		t.Errorf("Expected the introless conversation deleted, got %q", deletedID)
	}
}

func TestCreate_UnknownRuleModeFallsBack(t *testing.T) {
	storedMode := ""

	mockDB := &testutil.MockDatabase{
		CreateConversationFunc: func(userID, name, ruleMode, theme string) (*db.Conversation, error) {
			storedMode = ruleMode
			return &db.Conversation{ID: "conv-1", UserID: userID, RuleMode: ruleMode}, nil
		},
		AppendTurnFunc: func(conversationID string, speakerID *string, text string) (*db.Turn, error) {
			return &db.Turn{}, nil
		},
	}
	mockLLM := &testutil.MockCompletionService{
		CompleteFunc: func(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
			return "Intro.", nil
		},
	}

	service := NewService(mockDB, mockLLM, testConfig())
	if _, err := service.Create(context.Background(), "user-1", "World", "hardcore", "default"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if storedMode != "narrative" {
		t.Errorf("Expected unrecognized mode stored as narrative, got %q", storedMode)
	}
}

func TestHistory_RequiresOwnership(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id string) (*db.Conversation, error) { return ownedConversation(), nil },
	}

	service := NewService(mockDB, &testutil.MockCompletionService{}, testConfig())
	_, err := service.History("conv-1", "someone-else")

	if !errors.Is(err, validation.ErrValidation) {
		t.Errorf("Expected ErrValidation for foreign adventure, got %v", err)
	}
}

func TestHistory_ReturnsTurns(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id string) (*db.Conversation, error) { return ownedConversation(), nil },
		GetTurnsFunc: func(conversationID string) ([]db.Turn, error) {
			return []db.Turn{{ID: "turn-1", Seq: 1}, {ID: "turn-2", Seq: 2}}, nil
		},
	}

	service := NewService(mockDB, &testutil.MockCompletionService{}, testConfig())
	turns, err := service.History("conv-1", "user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(turns) != 2 {
		t.Errorf("Expected 2 turns, got %d", len(turns))
	}
}

func TestDelete_RequiresOwnership(t *testing.T) {
	deleteCalls := 0
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id string) (*db.Conversation, error) { return ownedConversation(), nil },
		DeleteConversationFunc: func(id string) error {
			deleteCalls++
			return nil
		},
	}

	service := NewService(mockDB, &testutil.MockCompletionService{}, testConfig())

	if err := service.Delete("conv-1", "someone-else"); !errors.Is(err, validation.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	if deleteCalls != 0 {
		t.Errorf("Expected no delete for foreign adventure, got %d", deleteCalls)
	}

	if err := service.Delete("conv-1", "user-1"); err != nil {
		t.Errorf("Expected owner delete to succeed, got %v", err)
	}
	if deleteCalls != 1 {
		t.Errorf("Expected one delete, got %d", deleteCalls)
	}
}

func TestSaveCharacter_SeedsMageStats(t *testing.T) {
	var saved *db.Character
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id string) (*db.Conversation, error) { return ownedConversation(), nil },
		SaveCharacterFunc: func(ch *db.Character) (*db.Character, error) {
			saved = ch
			return ch, nil
		},
	}

	service := NewService(mockDB, &testutil.MockCompletionService{}, testConfig())
	_, err := service.SaveCharacter("conv-1", "user-1", "Yara", "mage", "Exiled from the tower.")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if saved.SpellPower != 12 || saved.Strength != 0 {
		t.Errorf("Expected mage seeds 12/0, got %d/%d", saved.SpellPower, saved.Strength)
	}
	if saved.Health != 100 || saved.Level != 1 {
		t.Errorf("Expected fresh character at 100 health, level 1, got %d/%d", saved.Health, saved.Level)
	}
}

func TestSaveCharacter_SeedsMartialStats(t *testing.T) {
	var saved *db.Character
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id string) (*db.Conversation, error) { return ownedConversation(), nil },
		SaveCharacterFunc: func(ch *db.Character) (*db.Character, error) {
			saved = ch
			return ch, nil
		},
	}

	service := NewService(mockDB, &testutil.MockCompletionService{}, testConfig())
	_, err := service.SaveCharacter("conv-1", "user-1", "Brak", "warrior", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if saved.Strength != 10 || saved.SpellPower != 0 {
		t.Errorf("Expected warrior seeds 10/0, got %d/%d", saved.Strength, saved.SpellPower)
	}
}

func TestSaveCharacter_RequiresNameAndClass(t *testing.T) {
	service := NewService(&testutil.MockDatabase{}, &testutil.MockCompletionService{}, testConfig())

	cases := []struct{ name, class string }{
		{"", "mage"},
		{"Yara", ""},
		{" ", " "},
	}
	for _, tc := range cases {
		_, err := service.SaveCharacter("conv-1", "user-1", tc.name, tc.class, "")
		if !errors.Is(err, validation.ErrValidation) {
			t.Errorf("SaveCharacter(%q, %q): expected ErrValidation, got %v", tc.name, tc.class, err)
		}
	}
}

func TestGetCharacter_NotFoundPassesThrough(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id string) (*db.Conversation, error) { return ownedConversation(), nil },
		GetCharacterFunc:    func(conversationID string) (*db.Character, error) { return nil, db.ErrNotFound },
	}

	service := NewService(mockDB, &testutil.MockCompletionService{}, testConfig())
	_, err := service.GetCharacter("conv-1", "user-1")

	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
