package react

import (
	"strings"
)

// Step records one completed reason/act/observe iteration. The sequence of
// steps for the current turn forms the scratchpad: running context for the
// next reasoning pass, discarded once the turn completes.
type Step struct {
	Thought     string
	Tool        string
	Input       string
	Observation string
}

// render writes the step back in the same grammar the model produced it in,
// so the next prompt reads as a continuation of the model's own output.
func (s Step) render(b *strings.Builder) {
	if s.Thought != "" {
		b.WriteString(markerThought + " " + s.Thought + "\n")
	}
	if s.Tool != "" {
		b.WriteString(markerAction + " " + s.Tool + "\n")
		b.WriteString(markerActionInput + " " + s.Input + "\n")
	}
	if s.Observation != "" {
		b.WriteString("Observation: " + s.Observation + "\n")
	}
}

// renderSteps joins steps in order.
func renderSteps(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		s.render(&b)
	}
	return b.String()
}
