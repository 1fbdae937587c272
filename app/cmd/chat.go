package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexcodex/reagent/react"
)

const quitSentinel = "quit"

var (
	chatPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	chatAnswerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	chatStepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	chatErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// newChatCmd runs the plain line-oriented REPL.
func newChatCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the agent on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := globalCfg
			if verbose {
				cfg.Agent.Verbose = true
			}
			controller, _, err := buildController(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, chatPromptStyle.Render("reagent — ReAct agent with tools and memory"))
			fmt.Fprintf(out, "Ask something (or %q to exit)\n", quitSentinel)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, chatPromptStyle.Render("\n> "))
				if !scanner.Scan() {
					return scanner.Err()
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if strings.EqualFold(input, quitSentinel) {
					return nil
				}
				runOneTurn(cmd, controller, input, cfg.Agent.Verbose)
			}
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print the per-step reasoning trace")
	return cmd
}

// runOneTurn executes a single turn with interrupt-driven cancellation so a
// stuck model or tool call can be abandoned without killing the session.
func runOneTurn(cmd *cobra.Command, controller *react.Controller, input string, verbose bool) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	result, err := controller.RunTurn(ctx, input)
	if err != nil {
		fmt.Fprintln(out, chatErrorStyle.Render(fmt.Sprintf("error: %v", err)))
		return
	}
	if verbose {
		for i, step := range result.Steps {
			fmt.Fprintln(out, chatStepStyle.Render(renderStepLine(i, step)))
		}
	}
	fmt.Fprintln(out, chatAnswerStyle.Render("\n"+result.FinalAnswer))
}

func renderStepLine(i int, step react.Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d]", i+1)
	if step.Thought != "" {
		fmt.Fprintf(&b, " thought=%q", step.Thought)
	}
	if step.Tool != "" {
		fmt.Fprintf(&b, " tool=%s input=%q", step.Tool, step.Input)
	}
	if step.Observation != "" {
		fmt.Fprintf(&b, " observation=%q", step.Observation)
	}
	return b.String()
}
