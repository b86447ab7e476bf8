package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
)

// GetUserByUsername retrieves a user by username
func (p *PostgresDB) GetUserByUsername(username string) (*db.User, error) {
	var user db.User
	query := `
	SELECT id, username, COALESCE(email, ''), password_hash, created_at
	FROM users
	WHERE username = $1
	`

	err := p.conn.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// CreateUser creates a new user with a pre-hashed password
func (p *PostgresDB) CreateUser(username, email, passwordHash string) (*db.User, error) {
	userID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO users (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`

	if err := p.conn.QueryRow(query, userID, username, email, passwordHash).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	logger.Log.WithField("username", username).Info("Created new user")

	return &db.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}
