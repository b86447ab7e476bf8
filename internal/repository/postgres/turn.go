package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
)

// GetRecentTurns returns the last limit turns of a conversation in
// oldest-first order, each with its variants.
func (p *PostgresDB) GetRecentTurns(conversationID string, limit int) ([]db.Turn, error) {
	query := `
	SELECT id, conversation_id, seq, speaker_id, selected_variant, created_at
	FROM turns
	WHERE conversation_id = $1
	ORDER BY seq DESC
	LIMIT $2
	`

	rows, err := p.conn.Query(query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying turns: %w", err)
	}
	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	// The query walks backwards from the tail; flip to oldest-first
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	if err := p.attachVariants(turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// GetTurns returns every turn of a conversation in order, with variants
func (p *PostgresDB) GetTurns(conversationID string) ([]db.Turn, error) {
	query := `
	SELECT id, conversation_id, seq, speaker_id, selected_variant, created_at
	FROM turns
	WHERE conversation_id = $1
	ORDER BY seq ASC
	`

	rows, err := p.conn.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying turns: %w", err)
	}
	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	if err := p.attachVariants(turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// AppendTurn appends a single turn with one variant
func (p *PostgresDB) AppendTurn(conversationID string, speakerID *string, text string) (*db.Turn, error) {
	tx, err := p.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockConversation(tx, conversationID); err != nil {
		return nil, err
	}

	turn, err := insertTurn(tx, conversationID, speakerID, text)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing turn: %w (%w)", err, db.ErrPersistence)
	}
	return turn, nil
}

// CommitExchange appends the user turn and the model turn atomically,
// updating the character in the same transaction when ch is non-nil.
// On any failure the transaction rolls back and no partial turns are visible.
func (p *PostgresDB) CommitExchange(conversationID string, speakerID *string, utterance, reply string, ch *db.Character) error {
	tx, err := p.conn.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockConversation(tx, conversationID); err != nil {
		return err
	}

	if _, err := insertTurn(tx, conversationID, speakerID, utterance); err != nil {
		return err
	}
	if _, err := insertTurn(tx, conversationID, nil, reply); err != nil {
		return err
	}

	if ch != nil {
		query := `
		UPDATE characters
		SET health = $1, spell_power = $2, strength = $3, xp = $4, level = $5, is_ko = $6
		WHERE id = $7
		`
		if _, err := tx.Exec(query, ch.Health, ch.SpellPower, ch.Strength, ch.XP, ch.Level, ch.KO, ch.ID); err != nil {
			return fmt.Errorf("error updating character in exchange: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing exchange: %w (%w)", err, db.ErrPersistence)
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id":   conversationID,
		"character_updated": ch != nil,
	}).Info("Committed turn exchange")
	return nil
}

// lockConversation takes a row lock on the conversation so that concurrent
// writers cannot interleave sequence numbers, and verifies it exists.
func lockConversation(tx *sql.Tx, conversationID string) error {
	var id string
	err := tx.QueryRow(`SELECT id FROM conversations WHERE id = $1 FOR UPDATE`, conversationID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("conversation %q: %w", conversationID, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("error locking conversation: %w", err)
	}
	return nil
}

// insertTurn appends one turn holding a single selected variant
func insertTurn(tx *sql.Tx, conversationID string, speakerID *string, text string) (*db.Turn, error) {
	turn := &db.Turn{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SpeakerID:      speakerID,
	}

	query := `
	INSERT INTO turns (id, conversation_id, seq, speaker_id, selected_variant)
	VALUES ($1, $2, (SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE conversation_id = $2), $3, 0)
	RETURNING seq, created_at
	`
	if err := tx.QueryRow(query, turn.ID, conversationID, speakerID).Scan(&turn.Seq, &turn.CreatedAt); err != nil {
		return nil, fmt.Errorf("error inserting turn: %w", err)
	}

	variant := db.Variant{
		ID:     uuid.New().String(),
		TurnID: turn.ID,
		Text:   text,
	}
	if _, err := tx.Exec(`INSERT INTO variants (id, turn_id, position, text) VALUES ($1, $2, 0, $3)`, variant.ID, variant.TurnID, variant.Text); err != nil {
		return nil, fmt.Errorf("error inserting variant: %w", err)
	}
	turn.Variants = []db.Variant{variant}

	return turn, nil
}

func scanTurns(rows *sql.Rows) ([]db.Turn, error) {
	defer rows.Close()

	var turns []db.Turn
	for rows.Next() {
		var t db.Turn
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Seq, &t.SpeakerID, &t.SelectedVariant, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// attachVariants loads the variants for a batch of turns in one query
func (p *PostgresDB) attachVariants(turns []db.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	ids := make([]string, len(turns))
	index := make(map[string]*db.Turn, len(turns))
	for i := range turns {
		ids[i] = turns[i].ID
		index[turns[i].ID] = &turns[i]
	}

	rows, err := p.conn.Query(`SELECT id, turn_id, text FROM variants WHERE turn_id = ANY($1) ORDER BY position`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error querying variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v db.Variant
		if err := rows.Scan(&v.ID, &v.TurnID, &v.Text); err != nil {
			return fmt.Errorf("error scanning variant: %w", err)
		}
		if t, ok := index[v.TurnID]; ok {
			t.Variants = append(t.Variants, v)
		}
	}
	return rows.Err()
}
