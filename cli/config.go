// ABOUTME: Configuration CLI commands
// ABOUTME: Prints the effective config or writes a default config file
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/crmtui/config"
)

// ConfigCommand handles "config <show|init|path>".
func ConfigCommand(ctx context.Context, env *Env, args []string) error {
	return Dispatch(ctx, env, "config", map[string]Command{
		"show": func(ctx context.Context, env *Env, args []string) error {
			fmt.Fprintf(env.Out, "# file: %s\n# api:  %s\n", env.ConfigPath, env.BaseURL)
			return config.Print(env.Config, env.Out)
		},
		"path": func(ctx context.Context, env *Env, args []string) error {
			fmt.Fprintln(env.Out, env.ConfigPath)
			return nil
		},
		"init": initConfig,
	}, args)
}

func initConfig(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	_ = fs.Parse(args)

	if _, err := os.Stat(env.ConfigPath); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", env.ConfigPath)
	}
	if err := config.Save(config.Default(), env.ConfigPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(env.Out, "✓ Configuration saved to %s\n", env.ConfigPath)
	return nil
}
