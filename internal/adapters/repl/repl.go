package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"sales-assistant/internal/adapters/cli"
	"sales-assistant/internal/app"
)

var errExit = errors.New("exit")

// Run starts the interactive REPL loop.
// Slash commands run deterministically through the CLI command set; anything else is
// routed through the chat agent, and proposed writes are confirmed before they run.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "Sales Assistant")
	fmt.Fprintln(out, "Describe what you need (\"registra 500 mil a la cuota 2 del plan 7\"), or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		switch strings.ToLower(tokens[0]) {
		case "exit", "quit", "e", "q":
			return errExit
		case "new-plan":
			handleNewPlan(ctx, reader, out, svc)
			return nil
		case "help", "h":
			cli.Usage(out)
			fmt.Fprintln(out, "  new-plan                             guided plan creation")
			fmt.Fprintln(out, "  exit")
			return nil
		}
		err := cli.Run(ctx, svc, out, tokens)
		if errors.Is(err, cli.ErrUsage) {
			return nil
		}
		return err
	}

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		fmt.Fprintln(out, "[AI] Processing...")
		result, err := svc.InterpretDomainAction(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		switch result.Kind {
		case app.DomainActionKindAnswer:
			fmt.Fprintf(out, "\n[AI]: %s\n", result.Answer)

		case app.DomainActionKindProposed:
			fmt.Fprintf(out, "\nPROPOSED: %s\n", result.Summary)
			fmt.Fprintf(out, "TOOL:     %s\n", result.ToolName)
			fmt.Fprintf(out, "ARGS:     %s\n", string(result.ToolArgs))
			fmt.Fprint(out, "\nExecute this action? (y/n): ")
			choice, _ := reader.ReadString('\n')
			choice = strings.TrimSpace(strings.ToLower(choice))
			if choice != "y" && choice != "yes" && choice != "s" && choice != "si" {
				fmt.Fprintln(out, "Cancelled.")
				continue
			}
			res, err := svc.ExecuteWriteTool(ctx, result.ToolName, result.ToolArgs)
			if err != nil {
				fmt.Fprintf(out, "FAILED: %v\n", err)
				continue
			}
			cli.PrintResult(out, res)
		}

		if readErr != nil {
			return
		}
	}
}
