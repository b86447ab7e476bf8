package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
)

// GetCharacter retrieves the character owned by a conversation
func (p *PostgresDB) GetCharacter(conversationID string) (*db.Character, error) {
	var ch db.Character
	query := `
	SELECT id, conversation_id, name, class, health, spell_power, strength, xp, level, COALESCE(backstory, ''), is_ko
	FROM characters
	WHERE conversation_id = $1
	`

	err := p.conn.QueryRow(query, conversationID).Scan(
		&ch.ID, &ch.ConversationID, &ch.Name, &ch.Class,
		&ch.Health, &ch.SpellPower, &ch.Strength,
		&ch.XP, &ch.Level, &ch.Backstory, &ch.KO,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character for conversation %q: %w", conversationID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving character: %w", err)
	}

	return &ch, nil
}

// SaveCharacter inserts the character, or updates name/class/backstory if
// one already exists for the conversation. Progression fields are only ever
// touched through UpdateCharacter or CommitExchange.
func (p *PostgresDB) SaveCharacter(ch *db.Character) (*db.Character, error) {
	existing, err := p.GetCharacter(ch.ConversationID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		query := `
		UPDATE characters SET name = $1, class = $2, backstory = $3
		WHERE conversation_id = $4
		`
		if _, err := p.conn.Exec(query, ch.Name, ch.Class, ch.Backstory, ch.ConversationID); err != nil {
			return nil, fmt.Errorf("error updating character: %w", err)
		}
		existing.Name = ch.Name
		existing.Class = ch.Class
		existing.Backstory = ch.Backstory
		return existing, nil
	}

	ch.ID = uuid.New().String()
	query := `
	INSERT INTO characters (id, conversation_id, name, class, health, spell_power, strength, xp, level, backstory, is_ko)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = p.conn.Exec(query,
		ch.ID, ch.ConversationID, ch.Name, ch.Class,
		ch.Health, ch.SpellPower, ch.Strength,
		ch.XP, ch.Level, ch.Backstory, ch.KO,
	)
	if err != nil {
		return nil, fmt.Errorf("error creating character: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": ch.ConversationID,
		"class":           ch.Class,
	}).Info("Created new character")

	return ch, nil
}

// UpdateCharacter persists the character's mutable state
func (p *PostgresDB) UpdateCharacter(ch *db.Character) error {
	query := `
	UPDATE characters
	SET name = $1, class = $2, health = $3, spell_power = $4, strength = $5,
	    xp = $6, level = $7, backstory = $8, is_ko = $9
	WHERE id = $10
	`

	result, err := p.conn.Exec(query,
		ch.Name, ch.Class, ch.Health, ch.SpellPower, ch.Strength,
		ch.XP, ch.Level, ch.Backstory, ch.KO, ch.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating character: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("character %q: %w", ch.ID, db.ErrNotFound)
	}

	return nil
}
