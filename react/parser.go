package react

import (
	"strings"
)

// Markers of the ReAct output grammar. Matching is line-oriented: a marker
// counts only at the start of a line, after leading whitespace.
const (
	markerThought     = "Thought:"
	markerAction      = "Action:"
	markerActionInput = "Action Input:"
	markerFinal       = "Final Answer:"
)

// DecisionKind tags the parsed intent of one model response.
type DecisionKind int

const (
	// DecisionMalformed covers text matching neither pattern, or an action
	// naming an unregistered tool.
	DecisionMalformed DecisionKind = iota
	// DecisionAction requests a tool invocation.
	DecisionAction
	// DecisionFinal carries the final answer for the turn.
	DecisionFinal
)

// Decision is the structured form of one iteration's model output.
type Decision struct {
	Kind    DecisionKind
	Thought string
	// Answer is set for DecisionFinal.
	Answer string
	// Tool and Input are set for DecisionAction.
	Tool  string
	Input string
	// Raw preserves the unparsed text for diagnostics and malformed retries.
	Raw string
}

// Parser turns free-form model output into a Decision. It is a pure
// string-level component: the only coupling to the rest of the system is the
// knownTool predicate used to reject actions naming unregistered tools.
type Parser struct {
	knownTool func(name string) bool
}

// NewParser builds a parser. A nil predicate accepts every tool name.
func NewParser(knownTool func(name string) bool) *Parser {
	if knownTool == nil {
		knownTool = func(string) bool { return true }
	}
	return &Parser{knownTool: knownTool}
}

type markedLine struct {
	marker string
	rest   string
	index  int
}

// Parse classifies one response. When both a Final Answer marker and an
// Action marker appear, the earliest-occurring one wins; real models emit
// both often enough that the tie-break has to be deterministic.
func (p *Parser) Parse(raw string) Decision {
	lines := strings.Split(raw, "\n")
	marks := make([]markedLine, 0, 4)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, marker := range []string{markerActionInput, markerAction, markerFinal, markerThought} {
			if strings.HasPrefix(trimmed, marker) {
				marks = append(marks, markedLine{
					marker: marker,
					rest:   strings.TrimSpace(strings.TrimPrefix(trimmed, marker)),
					index:  i,
				})
				break
			}
		}
	}

	decision := Decision{Kind: DecisionMalformed, Raw: raw}
	for _, m := range marks {
		if m.marker == markerThought && decision.Thought == "" {
			decision.Thought = m.rest
		}
	}

	first := firstOf(marks, markerFinal, markerAction)
	switch {
	case first == nil:
		return decision
	case first.marker == markerFinal:
		decision.Kind = DecisionFinal
		decision.Answer = collectUntilMarker(lines, first, marks)
		if decision.Answer == "" {
			decision.Kind = DecisionMalformed
		}
		return decision
	default:
		return p.parseAction(lines, first, marks, decision)
	}
}

func (p *Parser) parseAction(lines []string, action *markedLine, marks []markedLine, decision Decision) Decision {
	tool := strings.TrimSpace(action.rest)
	if tool == "" || !p.knownTool(tool) {
		return decision
	}
	var input *markedLine
	for i := range marks {
		if marks[i].marker == markerActionInput && marks[i].index > action.index {
			input = &marks[i]
			break
		}
	}
	if input == nil {
		return decision
	}
	decision.Kind = DecisionAction
	decision.Tool = tool
	decision.Input = collectUntilMarker(lines, input, marks)
	return decision
}

// firstOf returns the earliest mark whose marker is in the wanted set.
func firstOf(marks []markedLine, wanted ...string) *markedLine {
	for i := range marks {
		for _, w := range wanted {
			if marks[i].marker == w {
				return &marks[i]
			}
		}
	}
	return nil
}

// collectUntilMarker gathers the content after a marker, folding in the
// following lines up to the next recognized marker. Models pad their output
// with trailing commentary; anything past the next marker belongs to that
// marker instead.
func collectUntilMarker(lines []string, from *markedLine, marks []markedLine) string {
	end := len(lines)
	for _, m := range marks {
		if m.index > from.index && m.index < end {
			end = m.index
		}
	}
	parts := []string{from.rest}
	for i := from.index + 1; i < end; i++ {
		parts = append(parts, lines[i])
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
