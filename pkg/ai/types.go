package ai

import (
	"context"
	"errors"
)

var (
	// ErrRateLimited maps upstream 429 responses; callers surface a fixed
	// "assistant busy" message.
	ErrRateLimited = errors.New("assistant rate limited")
	// ErrQuotaExhausted maps upstream quota/billing failures; callers
	// surface a fixed "quota exhausted" message.
	ErrQuotaExhausted = errors.New("assistant quota exhausted")
	// ErrEmptyCompletion means the gateway answered without any choice.
	ErrEmptyCompletion = errors.New("no completion returned")
)

// Message is one turn of an assistant conversation.
type Message struct {
	Role    string
	Content string
}

// Completer produces a chat completion for the given conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
