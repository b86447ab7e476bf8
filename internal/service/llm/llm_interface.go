package llm

import (
	"context"
	"errors"
)

// Message roles understood by the completion service
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one (role, text) entry of the ordered model input
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrCompletion classifies any completion-service failure: timeouts,
// upstream errors and malformed responses all wrap it.
var ErrCompletion = errors.New("completion service failure")

// CompletionService is the single pluggable language-model abstraction.
// Implementations must honor ctx cancellation; the orchestrator relies on
// it to bound the in-flight call.
type CompletionService interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// ModerationService is an optional collaborator. Check reports whether the
// text was flagged; failures are logged by callers and never block the
// main flow.
type ModerationService interface {
	Check(ctx context.Context, text string) (bool, error)
}
