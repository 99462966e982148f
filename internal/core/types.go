package core

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn. The client owns the full history and
// resends it with every request; nothing is persisted server-side.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AnswerResult is the outcome of one trip through the answer pipeline.
type AnswerResult struct {
	Answer              string              `json:"answer"`
	References          []map[string]string `json:"references"`
	FollowUpSuggestions []string            `json:"followUpSuggestions,omitempty"`
}

// LLM is the hosted-model surface the pipeline consumes: embeddings for
// retrieval, one-shot generation for summaries and suggestions, and
// multi-turn chat for the answer itself.
type LLM interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
	Chat(ctx context.Context, systemInstruction string, history []Message, message string) (string, error)
}

// Embedder is the subset of LLM needed by components that only embed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator is the subset of LLM needed by components that only do one-shot
// text generation.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// LiveSource fetches current operational data for time-sensitive questions.
type LiveSource interface {
	Fetch(ctx context.Context) (string, error)
}
