// ABOUTME: Subcommand dispatch and output helpers shared by the entity commands
// ABOUTME: Keeps tabular output and confirmation prompts consistent across commands
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
)

// Command runs one subcommand with its own flags.
type Command func(ctx context.Context, env *Env, args []string) error

// Dispatch runs the subcommand named by args[0].
func Dispatch(ctx context.Context, env *Env, group string, commands map[string]Command, args []string) error {
	names := sortedKeys(commands)

	if len(args) == 0 {
		return fmt.Errorf("%s requires a subcommand (%s)", group, strings.Join(names, ", "))
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown %s command: %s (valid: %s)", group, args[0], strings.Join(names, ", "))
	}
	return cmd(ctx, env, args[1:])
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	return tw
}

func row(w io.Writer, cols ...string) {
	for i, c := range cols {
		if c == "" {
			cols[i] = "-"
		}
	}
	_, _ = fmt.Fprintln(w, strings.Join(cols, "\t"))
}

// confirm asks a yes/no question on the terminal. Without a terminal the answer is no, so
// scripts must pass --yes.
func confirm(prompt string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func requireArg(args []string, what string) (string, error) {
	if len(args) < 1 || args[0] == "" {
		return "", fmt.Errorf("%s required", what)
	}
	return args[0], nil
}

func oneOf(values []string, v, what string) error {
	if slices.Contains(values, v) {
		return nil
	}
	return fmt.Errorf("invalid %s: %s (valid: %s)", what, v, strings.Join(values, ", "))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func joinOr(values []string) string {
	return strings.Join(values, "|")
}
