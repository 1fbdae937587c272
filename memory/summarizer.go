package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexcodex/reagent/framework"
)

// Summarizer folds messages aging out of the recent window into a condensed
// summary bounded by the token budget.
type Summarizer interface {
	Summarize(ctx context.Context, existing string, dropped []framework.Message, budget int) (string, error)
}

const summaryPrompt = `Progressively summarize the conversation below, keeping the summary under roughly %d words. Merge the new lines into the current summary, preserving names, dates, and stated facts.

Current summary:
%s

New lines of conversation:
%s

New summary:`

// LLMSummarizer condenses history through the language model.
type LLMSummarizer struct {
	Model   framework.LanguageModel
	Options framework.CompletionOptions
}

// Summarize implements Summarizer.
func (s *LLMSummarizer) Summarize(ctx context.Context, existing string, dropped []framework.Message, budget int) (string, error) {
	if s.Model == nil {
		return "", fmt.Errorf("summarizer missing language model")
	}
	current := existing
	if current == "" {
		current = "(empty)"
	}
	prompt := fmt.Sprintf(summaryPrompt, budget, current, renderDialogue(dropped))
	opts := s.Options
	text, err := s.Model.Complete(ctx, prompt, &opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// HeadSummarizer is a deterministic fallback that concatenates and truncates.
// Crude, but it keeps sessions usable when no summarization model is wired
// and it gives tests a stable collaborator.
type HeadSummarizer struct{}

// Summarize implements Summarizer without any model call.
func (HeadSummarizer) Summarize(ctx context.Context, existing string, dropped []framework.Message, budget int) (string, error) {
	parts := make([]string, 0, len(dropped)+1)
	if existing != "" {
		parts = append(parts, existing)
	}
	parts = append(parts, renderDialogue(dropped))
	return framework.TruncateToTokens(strings.Join(parts, "\n"), budget), nil
}

func renderDialogue(messages []framework.Message) string {
	var b strings.Builder
	for _, m := range messages {
		label := "User"
		if m.Role == framework.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, m.Content)
	}
	return strings.TrimSpace(b.String())
}
