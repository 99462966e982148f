package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/decoded-cipher/inovus-ama/internal/store"
)

// AnswerOptions are the pipeline's tunables, lifted out of global config so
// the service is testable in isolation.
type AnswerOptions struct {
	GuardrailEnabled  bool
	LiveDataEnabled   bool
	TopK              int
	MinQuestionLength int
}

// AnswerService drives the retrieval-augmented answer pipeline:
// guardrail -> embed -> retrieve -> live-data decision -> memory ->
// prompt -> generation -> suggestions.
type AnswerService struct {
	llm       LLM
	vstore    store.VectorStore
	guardrail *Guardrail
	memory    *MemoryManager
	live      LiveSource
	opts      AnswerOptions
	logger    *zap.Logger
}

func NewAnswerService(llm LLM, vstore store.VectorStore, guardrail *Guardrail, memory *MemoryManager, live LiveSource, opts AnswerOptions, logger *zap.Logger) *AnswerService {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MinQuestionLength <= 0 {
		opts.MinQuestionLength = 5
	}
	return &AnswerService{
		llm:       llm,
		vstore:    vstore,
		guardrail: guardrail,
		memory:    memory,
		live:      live,
		opts:      opts,
		logger:    logger,
	}
}

// Answer runs the full pipeline for one question. Validation happens before
// any provider call. A guardrail rejection is a successful answer carrying
// the refusal message, not an error.
func (s *AnswerService) Answer(ctx context.Context, question string, history []Message) (*AnswerResult, error) {
	question = strings.TrimSpace(question)
	if len(question) < s.opts.MinQuestionLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrQuestionTooShort, s.opts.MinQuestionLength)
	}

	if s.opts.GuardrailEnabled && s.guardrail != nil && !s.guardrail.IsInScope(ctx, question) {
		return &AnswerResult{Answer: OutOfScopeMessage, References: []map[string]string{}}, nil
	}

	vector, err := s.llm.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := s.vstore.Query(ctx, vector, s.opts.TopK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	chunks := make([]string, 0, len(matches))
	references := make([]map[string]string, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, m.Content)
		references = append(references, m.Metadata)
	}

	liveData := s.fetchLiveData(ctx, question)

	digest, recent := s.memory.BuildMemory(ctx, history)

	isFollowUp := IsFollowUpQuestion(question)
	systemInstruction := BuildSystemInstruction(AssembleContext(chunks), liveData, digest, isFollowUp)

	answer, err := s.llm.Chat(ctx, systemInstruction, recent, BuildUserQuery(question, isFollowUp))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	result := &AnswerResult{
		Answer:     answer,
		References: references,
	}

	if len(history) > 0 {
		result.FollowUpSuggestions = s.suggestFollowUps(ctx, answer, history)
	}

	return result, nil
}

// fetchLiveData returns live operational data when the trigger fires, and an
// empty string otherwise. "disabled", "not triggered", and "fetch failed"
// are distinct log events but identical pipeline outcomes.
func (s *AnswerService) fetchLiveData(ctx context.Context, question string) string {
	if !s.opts.LiveDataEnabled || s.live == nil {
		return ""
	}
	if !NeedsLiveData(question) {
		s.logger.Debug("live data not triggered", zap.String("question", question))
		return ""
	}

	data, err := s.live.Fetch(ctx)
	if err != nil {
		s.logger.Warn("live data fetch failed, continuing without it", zap.Error(err))
		return ""
	}
	return data
}

const suggestionInstruction = "Generate relevant follow-up questions based on the assistant's response and conversation context.\n\n" +
	"RULES:\n" +
	"- Generate exactly 3 specific and actionable follow-up questions\n" +
	"- Questions should be relevant to Inovus Labs IEDC topics\n" +
	"- Make them natural conversation continuations\n" +
	"- Focus on practical next steps or deeper information\n" +
	"- One question per line, no numbering or bullets\n" +
	"- Return exactly 3 questions, one per line"

var (
	emptySuggestionFallbacks = []string{
		"Can you tell me more about this?",
		"What are the next steps?",
		"Are there any requirements I should know about?",
	}
	errorSuggestionFallbacks = []string{
		"Can you elaborate on that?",
		"What else should I know?",
		"How can I get started?",
	}
)

// suggestFollowUps asks the model for three continuation questions. It never
// fails the request: on error or empty output it falls back to canned
// suggestions.
func (s *AnswerService) suggestFollowUps(ctx context.Context, answer string, history []Message) []string {
	contextTail := history
	if len(contextTail) > 2 {
		contextTail = contextTail[len(contextTail)-2:]
	}
	var lines []string
	for _, msg := range contextTail {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	prompt := fmt.Sprintf(
		"<context>\n<assistant_response>\n%s\n</assistant_response>\n\n<conversation_context>\n%s\n</conversation_context>\n</context>",
		answer, strings.Join(lines, "\n"))

	raw, err := s.llm.Generate(ctx, suggestionInstruction, prompt)
	if err != nil {
		s.logger.Warn("follow-up suggestion generation failed", zap.Error(err))
		return errorSuggestionFallbacks
	}

	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 3 {
			break
		}
	}

	if len(suggestions) == 0 {
		return emptySuggestionFallbacks
	}
	return suggestions
}
