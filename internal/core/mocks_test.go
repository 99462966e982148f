package core

import (
	"context"

	"github.com/decoded-cipher/inovus-ama/internal/store"
)

// mockLLM implements LLM for testing. Call counters let tests assert that no
// provider call happens before validation.
type mockLLM struct {
	embedFn    func(text string) ([]float32, error)
	generateFn func(systemInstruction, prompt string) (string, error)
	chatFn     func(systemInstruction string, history []Message, message string) (string, error)

	embedCalls    int
	generateCalls int
	chatCalls     int
}

func (m *mockLLM) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockLLM) Generate(_ context.Context, systemInstruction, prompt string) (string, error) {
	m.generateCalls++
	if m.generateFn != nil {
		return m.generateFn(systemInstruction, prompt)
	}
	return "generated text", nil
}

func (m *mockLLM) Chat(_ context.Context, systemInstruction string, history []Message, message string) (string, error) {
	m.chatCalls++
	if m.chatFn != nil {
		return m.chatFn(systemInstruction, history, message)
	}
	return "<body>answer</body>", nil
}

// mockVectorStore implements store.VectorStore for testing.
type mockVectorStore struct {
	queryFn  func(vector []float32, topK int, minScore float32) ([]store.Match, error)
	upsertFn func(rec store.VectorRecord) error

	upserted []store.VectorRecord
}

func (m *mockVectorStore) Query(_ context.Context, vector []float32, topK int, minScore float32) ([]store.Match, error) {
	if m.queryFn != nil {
		return m.queryFn(vector, topK, minScore)
	}
	return nil, nil
}

func (m *mockVectorStore) Upsert(_ context.Context, rec store.VectorRecord) error {
	if m.upsertFn != nil {
		return m.upsertFn(rec)
	}
	m.upserted = append(m.upserted, rec)
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockLive implements LiveSource for testing.
type mockLive struct {
	fetchFn func() (string, error)
	calls   int
}

func (m *mockLive) Fetch(_ context.Context) (string, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn()
	}
	return "", nil
}
