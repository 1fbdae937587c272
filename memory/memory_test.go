package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/reagent/framework"
)

type countingSummarizer struct {
	calls   int
	err     error
	dropped []framework.Message
}

func (s *countingSummarizer) Summarize(ctx context.Context, existing string, dropped []framework.Message, budget int) (string, error) {
	s.calls++
	s.dropped = append(s.dropped, dropped...)
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("summary after %d folds", s.calls), nil
}

func exchange(i int) (framework.Message, framework.Message) {
	return framework.NewMessage(framework.RoleUser, fmt.Sprintf("question %d", i)),
		framework.NewMessage(framework.RoleAssistant, fmt.Sprintf("answer %d", i))
}

func TestRecordKeepsCapInvariant(t *testing.T) {
	s := &countingSummarizer{}
	buf := NewSummaryBuffer(s, WithRecentCap(6))

	for i := 0; i < 20; i++ {
		user, assistant := exchange(i)
		buf.Record(context.Background(), user, assistant)
		assert.LessOrEqual(t, buf.Len(), 6, "recent window must never exceed the cap")
	}
	view := buf.Render()
	assert.Len(t, view.Recent, 6)
	assert.NotEmpty(t, view.Summary, "summary must be non-empty once overflow occurred")
	// The newest messages stay in the window.
	assert.Equal(t, "answer 19", view.Recent[5].Content)
}

func TestOverflowFoldsOldestFirst(t *testing.T) {
	s := &countingSummarizer{}
	buf := NewSummaryBuffer(s, WithRecentCap(4))

	for i := 0; i < 3; i++ {
		user, assistant := exchange(i)
		buf.Record(context.Background(), user, assistant)
	}
	// Cap 4 with 6 messages recorded: the first exchange was folded away.
	if assert.Len(t, s.dropped, 2) {
		assert.Equal(t, "question 0", s.dropped[0].Content)
		assert.Equal(t, "answer 0", s.dropped[1].Content)
	}
	view := buf.Render()
	assert.Equal(t, "question 1", view.Recent[0].Content)
}

func TestRenderIsIdempotent(t *testing.T) {
	buf := NewSummaryBuffer(HeadSummarizer{})
	user, assistant := exchange(1)
	buf.Record(context.Background(), user, assistant)

	first := buf.Render()
	second := buf.Render()
	assert.Equal(t, first, second)
}

func TestRenderReturnsDefensiveCopy(t *testing.T) {
	buf := NewSummaryBuffer(HeadSummarizer{})
	user, assistant := exchange(1)
	buf.Record(context.Background(), user, assistant)

	view := buf.Render()
	view.Recent[0].Content = "tampered"
	assert.Equal(t, "question 1", buf.Render().Recent[0].Content)
}

func TestSummarizerFailureKeepsStaleSummary(t *testing.T) {
	s := &countingSummarizer{}
	buf := NewSummaryBuffer(s, WithRecentCap(2))

	user, assistant := exchange(0)
	buf.Record(context.Background(), user, assistant)
	user, assistant = exchange(1)
	buf.Record(context.Background(), user, assistant)
	stale := buf.Render().Summary
	assert.NotEmpty(t, stale)

	// Subsequent overflows fail: summary stays stale, window still bounded.
	s.err = errors.New("summarizer offline")
	user, assistant = exchange(2)
	buf.Record(context.Background(), user, assistant)
	view := buf.Render()
	assert.Equal(t, stale, view.Summary)
	assert.Len(t, view.Recent, 2)
	assert.Equal(t, "question 2", view.Recent[0].Content)
}

func TestSummaryRespectsBudget(t *testing.T) {
	buf := NewSummaryBuffer(HeadSummarizer{}, WithRecentCap(2), WithSummaryBudget(20))

	for i := 0; i < 10; i++ {
		user, assistant := exchange(i)
		buf.Record(context.Background(), user, assistant)
	}
	summary := buf.Render().Summary
	assert.NotEmpty(t, summary)
	assert.LessOrEqual(t, framework.EstimateTokens(summary), 22)
}

func TestHeadSummarizerMergesExistingSummary(t *testing.T) {
	out, err := HeadSummarizer{}.Summarize(context.Background(), "old facts",
		[]framework.Message{framework.NewMessage(framework.RoleUser, "new line")}, 100)
	assert.NoError(t, err)
	assert.Contains(t, out, "old facts")
	assert.Contains(t, out, "User: new line")
}

func TestLLMSummarizerPromptsModel(t *testing.T) {
	model := &promptCapturingModel{reply: "condensed history"}
	s := &LLMSummarizer{Model: model}

	out, err := s.Summarize(context.Background(), "prior summary",
		[]framework.Message{
			framework.NewMessage(framework.RoleUser, "who is Ada Lovelace?"),
			framework.NewMessage(framework.RoleAssistant, "a computing pioneer"),
		}, 150)
	assert.NoError(t, err)
	assert.Equal(t, "condensed history", out)
	assert.Contains(t, model.prompt, "prior summary")
	assert.Contains(t, model.prompt, "who is Ada Lovelace?")
}

type promptCapturingModel struct {
	prompt string
	reply  string
}

func (m *promptCapturingModel) Complete(ctx context.Context, prompt string, options *framework.CompletionOptions) (string, error) {
	m.prompt = prompt
	return m.reply, nil
}
