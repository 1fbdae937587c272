package framework

import (
	"context"
	"errors"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation entry. Messages are immutable once
// created; ordered sequences of them form the conversation history consumed
// by the memory manager and the prompt builder.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// NewMessage stamps a message with the current time.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// CompletionOptions carries per-call knobs for a LanguageModel.
type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Stop        []string
}

// LanguageModel is the single capability the agent needs from an inference
// backend: given a prompt, return text. Implementations wrap transport and
// auth failures in ErrModelUnavailable so the loop controller can treat them
// uniformly as fatal for the current turn.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string, options *CompletionOptions) (string, error)
}

// ErrModelUnavailable marks transport or auth failures from a model backend.
var ErrModelUnavailable = errors.New("model unavailable")
