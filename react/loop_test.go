package react

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/reagent/framework"
)

type stubModel struct {
	responses []string
	idx       int
	calls     int
	err       error
	prompts   []string
}

// Complete returns queued responses in order, repeating the last one once the
// queue is exhausted so runaway-loop tests stay deterministic.
func (s *stubModel) Complete(ctx context.Context, prompt string, options *framework.CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no queued response")
	}
	if s.idx >= len(s.responses) {
		return s.responses[len(s.responses)-1], nil
	}
	resp := s.responses[s.idx]
	s.idx++
	return resp, nil
}

type fakeTool struct {
	name string
	fn   func(ctx context.Context, input string) (string, error)
}

func (t fakeTool) Name() string        { return t.name }
func (t fakeTool) Description() string { return "test tool" }
func (t fakeTool) Invoke(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}

type recordingMemory struct {
	view    framework.MemoryView
	records [][2]framework.Message
}

func (m *recordingMemory) Record(ctx context.Context, user, assistant framework.Message) {
	m.records = append(m.records, [2]framework.Message{user, assistant})
}

func (m *recordingMemory) Render() framework.MemoryView { return m.view }

func newTestRegistry(t *testing.T, tools ...framework.Tool) *framework.ToolRegistry {
	t.Helper()
	registry := framework.NewToolRegistry()
	for _, tool := range tools {
		assert.NoError(t, registry.Register(tool))
	}
	return registry
}

func TestRunTurnDateScenario(t *testing.T) {
	fixed := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	clock := fakeTool{name: "datetime", fn: func(ctx context.Context, input string) (string, error) {
		return fixed.Format(time.RFC3339), nil
	}}
	model := &stubModel{responses: []string{
		"Thought: I need the current date.\nAction: datetime\nAction Input:",
		"Thought: I now know the final answer\nFinal Answer: Today is 2026-08-23.",
	}}
	mem := &recordingMemory{}
	controller := NewController(model, newTestRegistry(t, clock), mem, Options{})

	result, err := controller.RunTurn(context.Background(), "What's the current date?")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByFinalAnswer, result.TerminatedBy)
	assert.Equal(t, "Today is 2026-08-23.", result.FinalAnswer)
	if assert.Len(t, result.Steps, 1) {
		assert.Equal(t, "datetime", result.Steps[0].Tool)
		assert.Equal(t, "2026-08-23T09:00:00Z", result.Steps[0].Observation)
	}
	assert.NotEmpty(t, result.ID)

	// The completed exchange lands in memory.
	if assert.Len(t, mem.records, 1) {
		assert.Equal(t, "What's the current date?", mem.records[0][0].Content)
		assert.Equal(t, "Today is 2026-08-23.", mem.records[0][1].Content)
	}
}

func TestRunTurnBoundedIterations(t *testing.T) {
	echo := fakeTool{name: "echo", fn: func(ctx context.Context, input string) (string, error) {
		return "echo: " + input, nil
	}}
	// The model never produces a Final Answer.
	model := &stubModel{responses: []string{
		"Thought: keep going\nAction: echo\nAction Input: again",
	}}
	controller := NewController(model, newTestRegistry(t, echo), nil, Options{MaxIterations: 4})

	result, err := controller.RunTurn(context.Background(), "never finish")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByMaxIteration, result.TerminatedBy)
	assert.NotEmpty(t, result.FinalAnswer)
	assert.Contains(t, result.FinalAnswer, "echo: again")
	assert.Len(t, result.Steps, 4)
	assert.Equal(t, 4, model.calls)
}

func TestRunTurnMalformedRetriesExhausted(t *testing.T) {
	// Twelve malformed responses queued, but the retry budget fails the turn
	// on the fourth, long before the iteration budget is touched.
	responses := make([]string, 12)
	for i := range responses {
		responses[i] = fmt.Sprintf("rambling without any marker %d", i)
	}
	model := &stubModel{responses: responses}
	controller := NewController(model, newTestRegistry(t), nil, Options{
		MaxIterations:       10,
		MaxMalformedRetries: 3,
	})

	result, err := controller.RunTurn(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByError, result.TerminatedBy)
	assert.NotEmpty(t, result.FinalAnswer)
	assert.Equal(t, 4, model.calls)
	// Three corrective steps were injected before giving up.
	assert.Len(t, result.Steps, 3)
	for _, step := range result.Steps {
		assert.Equal(t, correctiveObservation, step.Observation)
	}
}

func TestRunTurnMalformedThenRecovers(t *testing.T) {
	model := &stubModel{responses: []string{
		"just plain text with no structure",
		"Thought: better now\nFinal Answer: recovered",
	}}
	controller := NewController(model, newTestRegistry(t), nil, Options{})

	result, err := controller.RunTurn(context.Background(), "hi")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByFinalAnswer, result.TerminatedBy)
	assert.Equal(t, "recovered", result.FinalAnswer)
	// The corrective observation made it into the retry prompt.
	assert.Contains(t, model.prompts[1], correctiveObservation)
}

func TestRunTurnToolFailureIsolation(t *testing.T) {
	flaky := fakeTool{name: "lookup", fn: func(ctx context.Context, input string) (string, error) {
		return "", errors.New("socket timeout")
	}}
	model := &stubModel{responses: []string{
		"Thought: try the tool\nAction: lookup\nAction Input: something",
		"Thought: the tool failed, answer anyway\nFinal Answer: I could not look that up.",
	}}
	controller := NewController(model, newTestRegistry(t, flaky), nil, Options{})

	result, err := controller.RunTurn(context.Background(), "look up something")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByFinalAnswer, result.TerminatedBy)
	if assert.Len(t, result.Steps, 1) {
		assert.Contains(t, result.Steps[0].Observation, "Error:")
		assert.Contains(t, result.Steps[0].Observation, "socket timeout")
	}
}

func TestRunTurnDisambiguationContinues(t *testing.T) {
	wiki := fakeTool{name: "wikipedia", fn: func(ctx context.Context, input string) (string, error) {
		return fmt.Sprintf("Disambiguation error: %q may refer to multiple pages.", input), nil
	}}
	model := &stubModel{responses: []string{
		"Thought: look up Mercury\nAction: wikipedia\nAction Input: Mercury",
		"Thought: ambiguous topic\nFinal Answer: Mercury is ambiguous; did you mean the planet or the element?",
	}}
	controller := NewController(model, newTestRegistry(t, wiki), nil, Options{})

	result, err := controller.RunTurn(context.Background(), "Tell me about Mercury")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByFinalAnswer, result.TerminatedBy)
	assert.Contains(t, result.Steps[0].Observation, "Disambiguation error")
	assert.Contains(t, result.FinalAnswer, "ambiguous")
}

func TestRunTurnModelUnavailable(t *testing.T) {
	model := &stubModel{err: fmt.Errorf("%w: connection refused", framework.ErrModelUnavailable)}
	mem := &recordingMemory{}
	controller := NewController(model, newTestRegistry(t), mem, Options{})

	result, err := controller.RunTurn(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByError, result.TerminatedBy)
	assert.Equal(t, unavailableAnswer, result.FinalAnswer)
	assert.Equal(t, 1, model.calls)
	// The session keeps accepting turns; the failed one is still on record.
	assert.Len(t, mem.records, 1)
}

func TestRunTurnCancellation(t *testing.T) {
	model := &stubModel{responses: []string{"Final Answer: too late"}}
	mem := &recordingMemory{}
	controller := NewController(model, newTestRegistry(t), mem, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := controller.RunTurn(ctx, "hello")
	assert.NoError(t, err)
	assert.Equal(t, TerminatedByError, result.TerminatedBy)
	assert.Equal(t, cancelledAnswer, result.FinalAnswer)
	// Cancelled turns never touch memory.
	assert.Empty(t, mem.records)
}

func TestRunTurnMissingModel(t *testing.T) {
	controller := NewController(nil, newTestRegistry(t), nil, Options{})
	_, err := controller.RunTurn(context.Background(), "hello")
	assert.Error(t, err)
}

func TestRunTurnMemoryViewReachesPrompt(t *testing.T) {
	mem := &recordingMemory{view: framework.MemoryView{
		Summary: "The user's name is Sam.",
		Recent: []framework.Message{
			framework.NewMessage(framework.RoleUser, "my name is Sam"),
			framework.NewMessage(framework.RoleAssistant, "Nice to meet you, Sam."),
		},
	}}
	model := &stubModel{responses: []string{"Final Answer: Hello again, Sam."}}
	controller := NewController(model, newTestRegistry(t), mem, Options{})

	_, err := controller.RunTurn(context.Background(), "do you remember me?")
	assert.NoError(t, err)
	assert.Contains(t, model.prompts[0], "The user's name is Sam.")
	assert.Contains(t, model.prompts[0], "User: my name is Sam")
}
