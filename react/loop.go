package react

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lexcodex/reagent/framework"
)

// Termination states how a turn ended.
type Termination string

const (
	TerminatedByFinalAnswer  Termination = "final_answer"
	TerminatedByMaxIteration Termination = "max_iterations"
	TerminatedByError        Termination = "unrecoverable_error"
)

// TurnResult is produced once per user turn. FinalAnswer is never empty: a
// failed turn still carries a degraded best-effort answer for the caller.
type TurnResult struct {
	ID           string
	FinalAnswer  string
	Steps        []Step
	TerminatedBy Termination
	Elapsed      time.Duration
}

// Options tunes one controller instance.
type Options struct {
	Model               string
	Temperature         float64
	MaxIterations       int
	MaxMalformedRetries int
	MaxPromptTokens     int
	ModelTimeout        time.Duration
	ToolTimeout         time.Duration
	Verbose             bool
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 10
	}
	if o.MaxMalformedRetries <= 0 {
		o.MaxMalformedRetries = 3
	}
	if o.MaxPromptTokens <= 0 {
		o.MaxPromptTokens = 8000
	}
	if o.ModelTimeout <= 0 {
		o.ModelTimeout = 2 * time.Minute
	}
	if o.ToolTimeout <= 0 {
		o.ToolTimeout = 30 * time.Second
	}
	return o
}

const (
	correctiveObservation = "Invalid format, please follow the Thought/Action/Action Input/Observation or Final Answer structure."
	exhaustedAnswer       = "I was unable to complete the request within the allowed number of steps."
	unavailableAnswer     = "I'm sorry, I couldn't reach the language model. Please try again."
	cancelledAnswer       = "The request was cancelled before I could finish."
)

// Controller drives the reason/act/observe cycle for a single conversation.
// One controller processes one turn at a time; model calls and tool
// invocations are the only suspension points.
type Controller struct {
	model   framework.LanguageModel
	tools   *framework.ToolRegistry
	memory  framework.ConversationMemory
	prompts *PromptBuilder
	parser  *Parser
	opts    Options
}

// NewController wires the loop. memory may be nil for memoryless sessions.
func NewController(model framework.LanguageModel, tools *framework.ToolRegistry, memory framework.ConversationMemory, opts Options) *Controller {
	if tools == nil {
		tools = framework.NewToolRegistry()
	}
	opts = opts.withDefaults()
	return &Controller{
		model:   model,
		tools:   tools,
		memory:  memory,
		prompts: NewPromptBuilder(opts.MaxPromptTokens),
		parser:  NewParser(tools.Has),
		opts:    opts,
	}
}

func (c *Controller) debugf(format string, args ...interface{}) {
	if !c.opts.Verbose {
		return
	}
	log.Printf("[react] "+format, args...)
}

// RunTurn executes one full reason/act/observe cycle for the given user
// input. Every modeled failure resolves to a TurnResult; the error return is
// reserved for wiring mistakes such as a missing model.
func (c *Controller) RunTurn(ctx context.Context, input string) (*TurnResult, error) {
	if c.model == nil {
		return nil, fmt.Errorf("react controller missing language model")
	}
	started := time.Now()
	result := &TurnResult{ID: uuid.NewString()}

	view := framework.MemoryView{}
	if c.memory != nil {
		view = c.memory.Render()
	}

	iterations := 0
	malformed := 0
	for {
		prompt := c.prompts.Build(c.tools.All(), view, input, result.Steps)
		text, err := c.complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled mid-loop: fail immediately, release the in-flight
				// call, and leave memory untouched for this turn.
				c.debugf("turn %s cancelled: %v", result.ID, ctx.Err())
				return c.finish(ctx, result, started, cancelledAnswer, TerminatedByError, false, input), nil
			}
			c.debugf("turn %s model failure: %v", result.ID, err)
			return c.finish(ctx, result, started, unavailableAnswer, TerminatedByError, true, input), nil
		}

		decision := c.parser.Parse(text)
		c.debugf("turn %s iteration=%d kind=%d tool=%q", result.ID, iterations, decision.Kind, decision.Tool)

		switch decision.Kind {
		case DecisionFinal:
			return c.finish(ctx, result, started, decision.Answer, TerminatedByFinalAnswer, true, input), nil

		case DecisionMalformed:
			malformed++
			if malformed > c.opts.MaxMalformedRetries {
				c.debugf("turn %s malformed retries exhausted", result.ID)
				return c.finish(ctx, result, started, exhaustedAnswer, TerminatedByError, true, input), nil
			}
			result.Steps = append(result.Steps, Step{
				Thought:     decision.Thought,
				Observation: correctiveObservation,
			})

		case DecisionAction:
			observation := c.act(ctx, decision)
			result.Steps = append(result.Steps, Step{
				Thought:     decision.Thought,
				Tool:        decision.Tool,
				Input:       decision.Input,
				Observation: observation,
			})
			iterations++
			if iterations >= c.opts.MaxIterations {
				answer := exhaustedAnswer
				if observation != "" {
					answer = fmt.Sprintf("I ran out of reasoning steps. The last thing I found was: %s", observation)
				}
				return c.finish(ctx, result, started, answer, TerminatedByMaxIteration, true, input), nil
			}
		}
	}
}

// act resolves and invokes the requested tool with a per-call timeout. An
// unregistered name becomes a synthetic observation rather than a hard
// failure; the parser already filters these, but tools can be unregistered
// between parse and dispatch in future multi-session setups.
func (c *Controller) act(ctx context.Context, decision Decision) string {
	toolCtx, cancel := context.WithTimeout(ctx, c.opts.ToolTimeout)
	defer cancel()
	observation, ok := c.tools.Dispatch(toolCtx, decision.Tool, decision.Input)
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", decision.Tool)
	}
	c.debugf("tool=%s input=%q observation=%q", decision.Tool, decision.Input, observation)
	return observation
}

func (c *Controller) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.ModelTimeout)
	defer cancel()
	return c.model.Complete(callCtx, prompt, &framework.CompletionOptions{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		Stop:        []string{"\nObservation:"},
	})
}

// finish seals the result and, when record is set, folds the exchange into
// conversation memory. Cancelled turns skip recording so the memory never
// holds a partial exchange.
func (c *Controller) finish(ctx context.Context, result *TurnResult, started time.Time, answer string, terminated Termination, record bool, input string) *TurnResult {
	if answer == "" {
		answer = exhaustedAnswer
	}
	result.FinalAnswer = answer
	result.TerminatedBy = terminated
	result.Elapsed = time.Since(started)
	if record && c.memory != nil {
		c.memory.Record(ctx,
			framework.NewMessage(framework.RoleUser, input),
			framework.NewMessage(framework.RoleAssistant, answer),
		)
	}
	return result
}
