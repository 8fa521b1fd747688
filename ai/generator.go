// Package ai wraps the generative model behind three fixed prompts: the
// storefront chat assistant, product recommendations and report insights.
package ai

import (
	"context"
	"errors"
)

// ErrDisabled is returned when no model is configured.
var ErrDisabled = errors.New("ai generation is not configured")

// Message is one chat turn. Role is "user" or "model".
type Message struct {
	Role string `json:"role"`
	Text string `json:"content"`
}

// Request is a single generation call.
type Request struct {
	System  string
	History []Message
	Prompt  string
	// JSON asks the model for an application/json response.
	JSON bool
}

// Generator produces text for a Request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Disabled always fails, so every flow falls back.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrDisabled
}
