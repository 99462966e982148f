package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/decoded-cipher/inovus-ama/internal/store"
)

func newTestAnswerService(llm *mockLLM, vstore *mockVectorStore, live LiveSource, opts AnswerOptions) *AnswerService {
	logger := zap.NewNop()
	guardrail := NewGuardrail(llm, vstore, 5, 0.7, 1, logger)
	memory := NewMemoryManager(llm, 4, logger)
	return NewAnswerService(llm, vstore, guardrail, memory, live, opts, logger)
}

func TestAnswerRejectsShortQuestionsBeforeAnyProviderCall(t *testing.T) {
	llm := &mockLLM{}
	svc := newTestAnswerService(llm, &mockVectorStore{}, nil, AnswerOptions{MinQuestionLength: 5})

	_, err := svc.Answer(context.Background(), "hi", nil)
	if !errors.Is(err, ErrQuestionTooShort) {
		t.Fatalf("expected ErrQuestionTooShort, got %v", err)
	}
	if llm.embedCalls+llm.generateCalls+llm.chatCalls != 0 {
		t.Error("validation must reject before any provider call")
	}
}

func TestAnswerInitialQuestionWithTwoChunks(t *testing.T) {
	var gotSystem, gotMessage string
	var gotHistory []Message

	llm := &mockLLM{chatFn: func(system string, history []Message, message string) (string, error) {
		gotSystem, gotHistory, gotMessage = system, history, message
		return "<body>Inovus Labs is an IEDC.</body>", nil
	}}
	vstore := &mockVectorStore{queryFn: func(_ []float32, topK int, _ float32) ([]store.Match, error) {
		return []store.Match{
			{Content: "chunk one", Metadata: map[string]string{"filename": "about.md"}},
			{Content: "chunk two", Metadata: map[string]string{"filename": "faq.md"}},
		}, nil
	}}

	svc := newTestAnswerService(llm, vstore, nil, AnswerOptions{GuardrailEnabled: true, TopK: 5, MinQuestionLength: 5})

	result, err := svc.Answer(context.Background(), "What is Inovus Labs?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != "<body>Inovus Labs is an IEDC.</body>" {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if !strings.Contains(gotSystem, "chunk one\n---\nchunk two") {
		t.Errorf("system instruction missing joined chunks:\n%s", gotSystem)
	}
	if strings.Contains(gotSystem, "LIVE DATA:") {
		t.Error("no live-data block expected")
	}
	if strings.Contains(gotSystem, "CONVERSATION SUMMARY") {
		t.Error("no digest block expected")
	}
	if !strings.Contains(gotMessage, `type="initial"`) {
		t.Errorf("expected initial mode, got %q", gotMessage)
	}
	if len(gotHistory) != 0 {
		t.Errorf("expected empty chat history, got %d turns", len(gotHistory))
	}
	if len(result.References) != 2 || result.References[0]["filename"] != "about.md" {
		t.Errorf("unexpected references: %v", result.References)
	}
	if result.FollowUpSuggestions != nil {
		t.Error("no suggestions expected without prior history")
	}
}

func TestAnswerFollowUpWithSixPriorTurns(t *testing.T) {
	var gotHistory []Message
	var gotMessage string

	llm := &mockLLM{
		generateFn: func(system, _ string) (string, error) {
			if strings.Contains(system, "Summarize") {
				return "Earlier they covered the incubation program.", nil
			}
			return "What funding exists?\nWhen is the next event?\nHow do I apply?", nil
		},
		chatFn: func(_ string, history []Message, message string) (string, error) {
			gotHistory, gotMessage = history, message
			return "<body>More details.</body>", nil
		},
	}
	vstore := &mockVectorStore{queryFn: func([]float32, int, float32) ([]store.Match, error) {
		return []store.Match{{Content: "chunk", Metadata: map[string]string{}}}, nil
	}}

	svc := newTestAnswerService(llm, vstore, nil, AnswerOptions{TopK: 5, MinQuestionLength: 5})

	history := makeHistory(6)
	result, err := svc.Answer(context.Background(), "tell me more", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotMessage, `type="follow_up"`) {
		t.Errorf("expected follow-up mode, got %q", gotMessage)
	}
	if len(gotHistory) != 4 {
		t.Fatalf("expected last 4 turns in chat history, got %d", len(gotHistory))
	}
	if gotHistory[0].Content != "message 2" {
		t.Errorf("wrong window start: %q", gotHistory[0].Content)
	}
	if len(result.FollowUpSuggestions) != 3 {
		t.Errorf("expected 3 suggestions, got %v", result.FollowUpSuggestions)
	}
}

func TestAnswerGuardrailRejectionReturnsRefusal(t *testing.T) {
	llm := &mockLLM{}
	vstore := &mockVectorStore{queryFn: func([]float32, int, float32) ([]store.Match, error) {
		return nil, nil // nothing similar in the knowledge base
	}}
	svc := newTestAnswerService(llm, vstore, nil, AnswerOptions{GuardrailEnabled: true, MinQuestionLength: 5})

	result, err := svc.Answer(context.Background(), "What is the capital of France?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != OutOfScopeMessage {
		t.Errorf("expected refusal message, got %q", result.Answer)
	}
	if llm.chatCalls != 0 {
		t.Error("rejected question must not reach the chat model")
	}
}

func TestAnswerEmptyEmbeddingIsFatal(t *testing.T) {
	llm := &mockLLM{embedFn: func(string) ([]float32, error) {
		return nil, ErrEmptyEmbedding
	}}
	svc := newTestAnswerService(llm, &mockVectorStore{}, nil, AnswerOptions{MinQuestionLength: 5})

	result, err := svc.Answer(context.Background(), "What is Inovus Labs?", nil)
	if !errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("expected ErrEmptyEmbedding, got %v", err)
	}
	if result != nil {
		t.Error("no partial answer may be returned on embedding failure")
	}
}

func TestAnswerLiveDataFlow(t *testing.T) {
	t.Run("trigger fires and data is injected", func(t *testing.T) {
		var gotSystem string
		llm := &mockLLM{chatFn: func(system string, _ []Message, _ string) (string, error) {
			gotSystem = system
			return "answer", nil
		}}
		live := &mockLive{fetchFn: func() (string, error) { return "lab is open", nil }}
		svc := newTestAnswerService(llm, &mockVectorStore{}, live, AnswerOptions{LiveDataEnabled: true, MinQuestionLength: 5})

		_, err := svc.Answer(context.Background(), "what is the current status of the lab?", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if live.calls != 1 {
			t.Fatalf("expected one live fetch, got %d", live.calls)
		}
		if !strings.Contains(gotSystem, "LIVE DATA:\nlab is open") {
			t.Errorf("live data missing from instruction:\n%s", gotSystem)
		}
	})

	t.Run("fetch failure degrades to no live data", func(t *testing.T) {
		var gotSystem string
		llm := &mockLLM{chatFn: func(system string, _ []Message, _ string) (string, error) {
			gotSystem = system
			return "answer", nil
		}}
		live := &mockLive{fetchFn: func() (string, error) { return "", errors.New("mcp down") }}
		svc := newTestAnswerService(llm, &mockVectorStore{}, live, AnswerOptions{LiveDataEnabled: true, MinQuestionLength: 5})

		if _, err := svc.Answer(context.Background(), "what is the current status of the lab?", nil); err != nil {
			t.Fatalf("live failure must not fail the request: %v", err)
		}
		if strings.Contains(gotSystem, "LIVE DATA:") {
			t.Error("failed fetch must omit the live-data block")
		}
	})

	t.Run("disabled trigger never fetches", func(t *testing.T) {
		live := &mockLive{}
		svc := newTestAnswerService(&mockLLM{}, &mockVectorStore{}, live, AnswerOptions{LiveDataEnabled: false, MinQuestionLength: 5})

		if _, err := svc.Answer(context.Background(), "what is the current status of the lab?", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if live.calls != 0 {
			t.Error("live source must not be called when disabled")
		}
	})
}

func TestSuggestionFallbacks(t *testing.T) {
	t.Run("generation error yields canned suggestions", func(t *testing.T) {
		llm := &mockLLM{generateFn: func(string, string) (string, error) {
			return "", errors.New("model down")
		}}
		svc := newTestAnswerService(llm, &mockVectorStore{}, nil, AnswerOptions{MinQuestionLength: 5})

		result, err := svc.Answer(context.Background(), "what else is there?", makeHistory(2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.FollowUpSuggestions) != 3 {
			t.Fatalf("expected 3 fallback suggestions, got %v", result.FollowUpSuggestions)
		}
		if result.FollowUpSuggestions[0] != "Can you elaborate on that?" {
			t.Errorf("unexpected fallback set: %v", result.FollowUpSuggestions)
		}
	})

	t.Run("oversized output is capped at three", func(t *testing.T) {
		llm := &mockLLM{generateFn: func(string, string) (string, error) {
			return "one\ntwo\nthree\nfour\nfive", nil
		}}
		svc := newTestAnswerService(llm, &mockVectorStore{}, nil, AnswerOptions{MinQuestionLength: 5})

		result, err := svc.Answer(context.Background(), "what else is there?", makeHistory(2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.FollowUpSuggestions) != 3 {
			t.Errorf("expected cap of 3, got %v", result.FollowUpSuggestions)
		}
	})
}
