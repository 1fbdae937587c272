// Package memory implements the hybrid conversation memory: a bounded window
// of recent messages plus a rolling summary that older messages are folded
// into as they age out of the window.
package memory

import (
	"context"
	"log"
	"sync"

	"github.com/lexcodex/reagent/framework"
)

const (
	// DefaultRecentCap keeps the last five exchanges.
	DefaultRecentCap = 10
	// DefaultSummaryBudget bounds the rolling summary in token-equivalents.
	DefaultSummaryBudget = 150
)

// SummaryBuffer owns the memory state for one conversation. Record and
// Render are mutually exclusive; Render returns a consistent snapshot.
type SummaryBuffer struct {
	mu         sync.RWMutex
	summary    string
	recent     []framework.Message
	cap        int
	budget     int
	summarizer Summarizer
	verbose    bool
}

// Option tweaks a SummaryBuffer at construction time.
type Option func(*SummaryBuffer)

// WithRecentCap overrides the recent-message window size.
func WithRecentCap(n int) Option {
	return func(b *SummaryBuffer) {
		if n > 0 {
			b.cap = n
		}
	}
}

// WithSummaryBudget overrides the summary token budget.
func WithSummaryBudget(n int) Option {
	return func(b *SummaryBuffer) {
		if n > 0 {
			b.budget = n
		}
	}
}

// WithVerbose enables warning logs for summarization failures.
func WithVerbose(v bool) Option {
	return func(b *SummaryBuffer) { b.verbose = v }
}

// NewSummaryBuffer builds a buffer around a summarization collaborator. A nil
// summarizer falls back to the deterministic head summarizer.
func NewSummaryBuffer(summarizer Summarizer, opts ...Option) *SummaryBuffer {
	if summarizer == nil {
		summarizer = HeadSummarizer{}
	}
	b := &SummaryBuffer{
		cap:        DefaultRecentCap,
		budget:     DefaultSummaryBudget,
		summarizer: summarizer,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Record appends a completed exchange. When the window overflows, the oldest
// excess messages are folded into the summary before being dropped. A failing
// summarizer leaves the summary stale and still drops the overflow: losing
// detail is acceptable, blocking the turn is not.
func (b *SummaryBuffer) Record(ctx context.Context, user, assistant framework.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recent = append(b.recent, user, assistant)
	if len(b.recent) <= b.cap {
		return
	}
	excess := len(b.recent) - b.cap
	dropped := make([]framework.Message, excess)
	copy(dropped, b.recent[:excess])
	b.recent = append(b.recent[:0], b.recent[excess:]...)

	updated, err := b.summarizer.Summarize(ctx, b.summary, dropped, b.budget)
	if err != nil {
		if b.verbose {
			log.Printf("[memory] summarization failed, keeping stale summary: %v", err)
		}
		return
	}
	b.summary = framework.TruncateToTokens(updated, b.budget)
}

// Render returns a read-only snapshot for prompt construction. Calling it
// twice without an intervening Record yields equal views.
func (b *SummaryBuffer) Render() framework.MemoryView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	recent := make([]framework.Message, len(b.recent))
	copy(recent, b.recent)
	return framework.MemoryView{Summary: b.summary, Recent: recent}
}

// Len reports the number of buffered recent messages.
func (b *SummaryBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.recent)
}
