package react

import (
	"fmt"
	"strings"

	"github.com/lexcodex/reagent/framework"
)

const promptInstructions = `Answer the following questions as best you can. You have access to the following tools:

%s
Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, must be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question
`

// PromptBuilder renders the per-iteration prompt: instructions, tool
// descriptions, memory, the current question, and the scratchpad so far. The
// rendering is deterministic for identical inputs.
type PromptBuilder struct {
	maxTokens int
}

// NewPromptBuilder sets the token ceiling for rendered prompts. Zero or
// negative disables the ceiling.
func NewPromptBuilder(maxTokens int) *PromptBuilder {
	return &PromptBuilder{maxTokens: maxTokens}
}

// Build assembles the prompt. When the render would exceed the ceiling, the
// oldest scratchpad steps are dropped first; the question and the tool list
// are never dropped.
func (p *PromptBuilder) Build(tools []framework.Tool, mem framework.MemoryView, input string, steps []Step) string {
	for {
		prompt := p.render(tools, mem, input, steps)
		if p.maxTokens <= 0 || framework.EstimateTokens(prompt) <= p.maxTokens || len(steps) == 0 {
			return prompt
		}
		steps = steps[1:]
	}
}

func (p *PromptBuilder) render(tools []framework.Tool, mem framework.MemoryView, input string, steps []Step) string {
	var descriptions strings.Builder
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		fmt.Fprintf(&descriptions, "%s: %s\n", tool.Name(), tool.Description())
		names = append(names, tool.Name())
	}

	var b strings.Builder
	fmt.Fprintf(&b, promptInstructions, descriptions.String(), strings.Join(names, ", "))

	if mem.Summary != "" {
		b.WriteString("\nPrevious conversation summary:\n")
		b.WriteString(mem.Summary)
		b.WriteString("\n")
	}
	if len(mem.Recent) > 0 {
		b.WriteString("\nPrevious conversation:\n")
		for _, msg := range mem.Recent {
			b.WriteString(roleLabel(msg.Role))
			b.WriteString(": ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(input)
	b.WriteString("\n")
	b.WriteString(renderSteps(steps))
	b.WriteString(markerThought)
	return b.String()
}

func roleLabel(role framework.Role) string {
	switch role {
	case framework.RoleAssistant:
		return "Assistant"
	default:
		return "User"
	}
}
