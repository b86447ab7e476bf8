// Package game holds the conversation orchestrator: it validates the
// utterance, builds the context window, calls the completion service,
// extracts effects from the reply, advances the character and commits the
// turn pair. It owns the per-conversation serialization guarantee.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/config"
	"dungeon-chat/internal/game/effects"
	"dungeon-chat/internal/game/progression"
	"dungeon-chat/internal/game/prompt"
	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
	"dungeon-chat/internal/service/llm"
	"dungeon-chat/pkg/validation"
)

// koReply is returned verbatim when the character is knocked out; no
// completion call is made and no turns are appended.
const koReply = "Your character lies unconscious, beyond the reach of words or will. The world holds its breath until they are healed."

// Reply is the caller-facing result of one submitted utterance
type Reply struct {
	CleanedReply string
	KO           bool
	LeveledUp    bool
}

// Service orchestrates one conversation exchange end to end
type Service struct {
	db         db.Database
	completion llm.CompletionService
	moderation llm.ModerationService // optional, may be nil
	engine     *progression.Engine
	builder    *prompt.Builder
	validator  *validation.UtteranceValidator
	locks      *lockTable

	temperature float64
	timeout     time.Duration
}

// NewService creates the orchestrator. moderation may be nil when no
// moderation capability is configured.
func NewService(database db.Database, completion llm.CompletionService, moderation llm.ModerationService, cfg *config.AppConfig) *Service {
	return &Service{
		db:          database,
		completion:  completion,
		moderation:  moderation,
		engine:      progression.NewEngine(),
		builder:     prompt.NewBuilder(cfg.Game.ContextWindow, cfg.Game.LowHealthThreshold),
		validator:   validation.NewUtteranceValidator(),
		locks:       newLockTable(),
		temperature: cfg.LLM.Temperature,
		timeout:     cfg.LLM.Timeout,
	}
}

// SubmitUtterance runs the full exchange for one player utterance. The
// per-conversation lock is held from the state read through the commit, so
// overlapping submissions for the same conversation serialize and can never
// double-apply effects or interleave turn pairs. Nothing is committed when
// the completion call fails or the context is cancelled.
func (s *Service) SubmitUtterance(ctx context.Context, conversationID, rawUtterance, speakerID string) (*Reply, error) {
	utterance := validation.NormalizeQuotes(rawUtterance)
	if err := s.validator.ValidateUtterance(utterance); err != nil {
		return nil, err
	}

	if err := s.moderate(ctx, utterance); err != nil {
		return nil, err
	}

	lock := s.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.db.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}

	character, err := s.db.GetCharacter(conversationID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if character != nil && character.KO {
		logger.Log.WithField("conversation_id", conversationID).Info("Rejected action for KO'd character")
		return &Reply{CleanedReply: koReply, KO: true}, nil
	}

	history, err := s.db.GetRecentTurns(conversationID, s.builder.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	messages := s.builder.Build(conv, character, history, utterance)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rawReply, err := s.completion.Complete(callCtx, messages, s.temperature)
	if err != nil {
		return nil, err
	}

	parsed := effects.Parse(rawReply)

	var (
		toPersist *db.Character
		outcome   progression.Outcome
	)
	if character != nil {
		updated, o := s.engine.Apply(toEngine(character), parsed.Effects)
		outcome = o
		toPersist = character
		fromEngine(updated, toPersist)
	}

	if err := s.db.CommitExchange(conversationID, &speakerID, utterance, parsed.Cleaned, toPersist); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"effects":         len(parsed.Effects),
		"warnings":        len(parsed.Warnings),
		"leveled_up":      outcome.LeveledUp,
		"ko":              outcome.KO,
	}).Info("Exchange completed")

	return &Reply{
		CleanedReply: parsed.Cleaned,
		KO:           outcome.KO,
		LeveledUp:    outcome.LeveledUp,
	}, nil
}

// GrantXP awards experience directly, running the same level-up loop the
// effect path uses. Serialized against in-flight submissions.
func (s *Service) GrantXP(conversationID string, amount int) (*db.Character, bool, error) {
	if amount <= 0 {
		return nil, false, fmt.Errorf("xp amount must be positive: %w", validation.ErrValidation)
	}

	lock := s.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	character, err := s.db.GetCharacter(conversationID)
	if err != nil {
		return nil, false, err
	}

	updated, outcome := s.engine.Apply(toEngine(character), []effects.Effect{{Kind: effects.KindXP, Amount: amount}})
	fromEngine(updated, character)

	if err := s.db.UpdateCharacter(character); err != nil {
		return nil, false, err
	}
	return character, outcome.LeveledUp, nil
}

// LevelUp grants one level directly. Serialized against in-flight
// submissions.
func (s *Service) LevelUp(conversationID string) (*db.Character, error) {
	lock := s.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	character, err := s.db.GetCharacter(conversationID)
	if err != nil {
		return nil, err
	}

	updated := s.engine.LevelUp(toEngine(character))
	fromEngine(updated, character)

	if err := s.db.UpdateCharacter(character); err != nil {
		return nil, err
	}
	return character, nil
}

// moderate forwards the utterance to the optional moderation service.
// Flagged input is rejected; service failures are logged and ignored.
func (s *Service) moderate(ctx context.Context, utterance string) error {
	if s.moderation == nil {
		return nil
	}

	flagged, err := s.moderation.Check(ctx, utterance)
	if err != nil {
		logger.Log.WithError(err).Warn("Moderation check failed, continuing")
		return nil
	}
	if flagged {
		return fmt.Errorf("message was flagged by moderation: %w", validation.ErrValidation)
	}
	return nil
}

func toEngine(ch *db.Character) progression.Character {
	return progression.Character{
		Class:      ch.Class,
		Health:     ch.Health,
		SpellPower: ch.SpellPower,
		Strength:   ch.Strength,
		XP:         ch.XP,
		Level:      ch.Level,
		KO:         ch.KO,
	}
}

func fromEngine(src progression.Character, dst *db.Character) {
	dst.Health = src.Health
	dst.SpellPower = src.SpellPower
	dst.Strength = src.Strength
	dst.XP = src.XP
	dst.Level = src.Level
	dst.KO = src.KO
}
