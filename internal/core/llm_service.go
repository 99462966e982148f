package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// LLMService wraps the Gemini client behind the LLM interface. It is
// constructed once at startup and injected into every pipeline stage.
type LLMService struct {
	client     *genai.Client
	chatModel  string
	embedModel string
	logger     *zap.Logger
}

func NewLLMService(ctx context.Context, apiKey, chatModel, embedModel string, logger *zap.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &LLMService{
		client:     client,
		chatModel:  chatModel,
		embedModel: embedModel,
		logger:     logger,
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("error closing genai client", zap.Error(err))
		}
	}
}

// Embed returns the embedding vector for text. An empty or missing vector is
// an error, not a degenerate success.
func (s *LLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	em := s.client.EmbeddingModel(s.embedModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w (model %s)", ErrEmptyEmbedding, s.embedModel)
	}
	return res.Embedding.Values, nil
}

// Generate runs a single-turn completion under the given system instruction.
func (s *LLMService) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.chatModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Chat opens a multi-turn session seeded with the system instruction and the
// recent conversation turns, sends message as the newest turn, and returns
// the model's reply trimmed.
func (s *LLMService) Chat(ctx context.Context, systemInstruction string, history []Message, message string) (string, error) {
	model := s.client.GenerativeModel(s.chatModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	session := model.StartChat()
	session.History = make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini chat request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// geminiRole maps the wire role vocabulary to Gemini's: our assistant turns
// are Gemini "model" turns.
func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
