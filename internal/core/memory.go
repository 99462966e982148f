package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const summaryInstruction = "Summarize the provided conversation history into a concise summary that preserves key context for follow-up questions.\n\n" +
	"RULES:\n" +
	"- Create a 2-3 sentence summary\n" +
	"- Focus on key topics discussed about Inovus Labs IEDC\n" +
	"- Preserve important context relevant for answering follow-up questions\n" +
	"- Be concise but comprehensive\n" +
	"- Return only the summary text, no additional formatting"

// MemoryManager bounds how much conversation travels to the model: the last
// window turns go verbatim, everything older is summarized into a digest.
// The digest is rebuilt from scratch each request, never cached.
type MemoryManager struct {
	generator Generator
	window    int
	logger    *zap.Logger
}

func NewMemoryManager(generator Generator, window int, logger *zap.Logger) *MemoryManager {
	if window <= 0 {
		window = 4
	}
	return &MemoryManager{
		generator: generator,
		window:    window,
		logger:    logger,
	}
}

// BuildMemory splits history into a digest of the older turns and the
// verbatim recent window. Histories at or below the window size pass through
// untouched with an empty digest. A summarization failure degrades to the
// recent turns alone; it never fails the request.
func (m *MemoryManager) BuildMemory(ctx context.Context, history []Message) (digest string, recent []Message) {
	if len(history) <= m.window {
		return "", history
	}

	older := history[:len(history)-m.window]
	recent = history[len(history)-m.window:]

	digest, err := m.summarize(ctx, older)
	if err != nil {
		m.logger.Warn("conversation summarization failed, continuing with recent turns only",
			zap.Int("older_turns", len(older)),
			zap.Error(err))
		return "", recent
	}
	return digest, recent
}

func (m *MemoryManager) summarize(ctx context.Context, messages []Message) (string, error) {
	var lines []string
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	prompt := fmt.Sprintf("<conversation_history>\n%s\n</conversation_history>", strings.Join(lines, "\n"))

	summary, err := m.generator.Generate(ctx, summaryInstruction, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize conversation: %w", err)
	}
	return strings.TrimSpace(summary), nil
}
