package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"dungeon-chat/internal/config"
	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
)

type contextKey string

// UserContextKey carries the authenticated user id through the request
// context
const UserContextKey contextKey = "user_id"

// Claims are the JWT claims issued at login
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth issues and validates tokens and guards protected routes
type Auth struct {
	db  db.Database
	cfg config.AuthConfig
}

// New creates a new Auth
func New(database db.Database, cfg config.AuthConfig) *Auth {
	return &Auth{db: database, cfg: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GenerateToken signs a JWT for the user
func (a *Auth) GenerateToken(user *db.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.cfg.TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.cfg.JWTSecret)
}

// ValidateToken parses and verifies a JWT
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.cfg.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// RegisterHandler creates a user account and returns a token
func (a *Auth) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Username) < 2 {
		sendError(w, http.StatusBadRequest, "Username must be at least 2 characters")
		return
	}
	if len(req.Password) < 4 {
		sendError(w, http.StatusBadRequest, "Password must be at least 4 characters")
		return
	}

	if _, err := a.db.GetUserByUsername(req.Username); err == nil {
		sendError(w, http.StatusConflict, "Username already taken")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		sendError(w, http.StatusInternalServerError, "Failed to check username")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := a.db.CreateUser(req.Username, req.Email, string(hash))
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := a.GenerateToken(user)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	logger.Log.WithField("username", user.Username).Info("User registered")
	sendJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// LoginHandler authenticates a user and returns a token
func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.db.GetUserByUsername(req.Username)
	if err != nil {
		sendError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		sendError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := a.GenerateToken(user)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	sendJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Middleware validates the Authorization header and injects the user id
// into the request context
func (a *Auth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			sendError(w, http.StatusUnauthorized, "Missing or malformed Authorization header")
			return
		}

		claims, err := a.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			sendError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// UserID extracts the authenticated user id from a request context
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserContextKey).(string); ok {
		return id
	}
	return ""
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, errorResponse{Error: message})
}
