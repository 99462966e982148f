package core

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/decoded-cipher/inovus-ama/internal/store"
)

// Guardrail decides whether a question belongs to the knowledge base at all,
// by checking for at least one sufficiently similar chunk.
type Guardrail struct {
	embedder   Embedder
	vstore     store.VectorStore
	topK       int
	minScore   float32
	minMatches int
	logger     *zap.Logger
}

func NewGuardrail(embedder Embedder, vstore store.VectorStore, topK int, minScore float32, minMatches int, logger *zap.Logger) *Guardrail {
	if topK <= 0 {
		topK = 5
	}
	if minMatches <= 0 {
		minMatches = 1
	}
	return &Guardrail{
		embedder:   embedder,
		vstore:     vstore,
		topK:       topK,
		minScore:   minScore,
		minMatches: minMatches,
		logger:     logger,
	}
}

// IsInScope reports whether the question is about the organization's domain.
// Provider failures fail open: a broken embedding service must not silently
// block legitimate questions.
func (g *Guardrail) IsInScope(ctx context.Context, question string) bool {
	if strings.TrimSpace(question) == "" {
		return false
	}

	vector, err := g.embedder.Embed(ctx, question)
	if err != nil {
		g.logger.Warn("guardrail embedding failed, failing open", zap.Error(err))
		return true
	}

	matches, err := g.vstore.Query(ctx, vector, g.topK, g.minScore)
	if err != nil {
		g.logger.Warn("guardrail vector query failed, failing open", zap.Error(err))
		return true
	}

	inScope := len(matches) >= g.minMatches
	g.logger.Debug("relevance check",
		zap.Int("matches", len(matches)),
		zap.Bool("in_scope", inScope))
	return inScope
}

// liveDataKeywords maps temporal keywords to their contribution toward the
// live-data score. Declarative so tiers can be tuned (or replaced with a
// classifier) without touching the scoring code.
var liveDataKeywords = map[string]float64{
	// high priority
	"now":       0.5,
	"current":   0.5,
	"live":      0.5,
	"real-time": 0.5,
	"today":     0.5,
	"status":    0.5,
	// medium priority
	"recent":  0.3,
	"latest":  0.3,
	"updated": 0.3,
	"active":  0.3,
	"running": 0.3,
	// low priority
	"uptime":       0.1,
	"availability": 0.1,
	"open":         0.1,
	"online":       0.1,
}

const liveDataThreshold = 0.6

var (
	// Present-state phrasing such as "is the lab open today".
	rePresentState = regexp.MustCompile(`\b(is|are|can|will)\b.*\b(now|today|currently)\b`)
	// Time-sensitive contractions and openers.
	reTimeSensitive = regexp.MustCompile(`\b(what's|how's|when is|is it)\b`)
)

// NeedsLiveData reports whether live operational data should be fetched for
// the question. Pure function of its input: keyword weights plus small
// pattern bonuses against a fixed threshold, no I/O.
func NeedsLiveData(question string) bool {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return false
	}

	var score float64
	for keyword, weight := range liveDataKeywords {
		if strings.Contains(normalized, keyword) {
			score += weight
		}
	}

	if rePresentState.MatchString(normalized) {
		score += 0.3
	}
	if reTimeSensitive.MatchString(normalized) {
		score += 0.2
	}

	return score >= liveDataThreshold
}
