package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"react-agent/agent"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")). // green
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")). // cyan
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")) // magenta

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")). // red
			Bold(true)
)

// answerer runs one episode per question.
type answerer interface {
	Run(ctx context.Context, question string) (*agent.Result, error)
}

func isQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// runREPL reads questions from in until quit or EOF. An episode error is
// reported and the session continues.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, a answerer, toolNames []string) error {
	log := zerolog.Ctx(ctx)

	fmt.Fprintln(out, bannerStyle.Render("ReAct Agent Ready!"))
	fmt.Fprintln(out, "Tools: "+strings.Join(toolNames, ", "))
	fmt.Fprintln(out, "Type 'quit' to exit.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, promptStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return scanner.Err()
		}
		line := scanner.Text()
		if isQuit(line) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		res, err := a.Run(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("episode failed")
			fmt.Fprintf(out, "\n%s\n\n", errorStyle.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprintf(out, "\n%s\n\n", renderResult(res))
	}
}

// runOnce answers a single question and writes the answer to out.
func runOnce(ctx context.Context, out io.Writer, a answerer, question string) error {
	res, err := a.Run(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Output)
	return nil
}

func renderResult(res *agent.Result) string {
	if res.Complete() {
		return answerStyle.Render("Agent: " + res.Output)
	}
	text := "Agent: " + res.Output
	if res.LastThought != "" {
		text += "\n(last thought: " + res.LastThought + ")"
	}
	return partialStyle.Render(text)
}
