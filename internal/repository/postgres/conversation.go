package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
)

// CreateConversation creates a new conversation for a user. The rule mode is
// stored once here and never updated.
func (p *PostgresDB) CreateConversation(userID, name, ruleMode, theme string) (*db.Conversation, error) {
	convID := uuid.New().String()
	var createdAt time.Time

	if ruleMode == "" {
		ruleMode = "narrative"
	}
	if theme == "" {
		theme = "default"
	}

	query := `
	INSERT INTO conversations (id, user_id, name, rule_mode, theme)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`

	err := p.conn.QueryRow(query, convID, userID, name, ruleMode, theme).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": convID,
		"user_id":         userID,
		"rule_mode":       ruleMode,
	}).Info("Created new conversation")

	return &db.Conversation{
		ID:        convID,
		UserID:    userID,
		Name:      name,
		RuleMode:  ruleMode,
		Theme:     theme,
		CreatedAt: createdAt,
	}, nil
}

// GetConversation retrieves a specific conversation
func (p *PostgresDB) GetConversation(convID string) (*db.Conversation, error) {
	var conv db.Conversation
	query := `
	SELECT id, user_id, name, rule_mode, COALESCE(theme, 'default'), created_at
	FROM conversations
	WHERE id = $1
	`

	err := p.conn.QueryRow(query, convID).Scan(&conv.ID, &conv.UserID, &conv.Name, &conv.RuleMode, &conv.Theme, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %q: %w", convID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}

	return &conv, nil
}

// GetConversationsByUser retrieves all conversations for a user, newest first
func (p *PostgresDB) GetConversationsByUser(userID string) ([]db.Conversation, error) {
	query := `
	SELECT id, user_id, name, rule_mode, COALESCE(theme, 'default'), created_at
	FROM conversations
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := p.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []db.Conversation
	for rows.Next() {
		var conv db.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Name, &conv.RuleMode, &conv.Theme, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// DeleteConversation deletes a conversation. Turns, variants and the
// character go with it via ON DELETE CASCADE.
func (p *PostgresDB) DeleteConversation(convID string) error {
	result, err := p.conn.Exec(`DELETE FROM conversations WHERE id = $1`, convID)
	if err != nil {
		return fmt.Errorf("error deleting conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("conversation %q: %w", convID, db.ErrNotFound)
	}

	logger.Log.WithField("conversation_id", convID).Info("Deleted conversation")
	return nil
}
