// ABOUTME: Entry point for the CRM terminal client, CLI and MCP server
// ABOUTME: Routes to the TUI, the MCP server or CLI commands based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/harperreed/crmtui/cli"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/crmtui/config.toml)")
	apiURL := flag.String("api-url", "", "Backend origin, overriding config and CRM_API_URL")
	dbPath := flag.String("db-path", "", "Session database path (default: ~/.local/share/crmtui/session.db)")
	flag.Usage = printUsage

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("crmtui version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		// Interactive terminals get the UI; pipes and scripts get help.
		if isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd()) {
			args = []string{"tui"}
		} else {
			printUsage()
			os.Exit(0)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.EnvOptions{ConfigPath: *configPath, APIURL: *apiURL, DBPath: *dbPath}
	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "tui":
		if err := cli.TUICommand(ctx, opts, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "version":
		fmt.Printf("crmtui version %s\n", version)
		return
	}

	commands := map[string]cli.Command{
		"login":    cli.LoginCommand,
		"logout":   cli.LogoutCommand,
		"register": cli.RegisterCommand,
		"whoami":   cli.WhoamiCommand,
		"leads":    cli.LeadsCommand,
		"contacts": cli.ContactsCommand,
		"deals":    cli.DealsCommand,
		"tasks":    cli.TasksCommand,
		"meetings": cli.MeetingsCommand,
		"groups":   cli.GroupsCommand,
		"prefs":    cli.PrefsCommand,
		"sync":     cli.SyncCommand,
		"config":   cli.ConfigCommand,
		"viz":      cli.VizCommand,
		"mcp": func(ctx context.Context, env *cli.Env, _ []string) error {
			return cli.MCPCommand(ctx, env, version)
		},
	}
	run, ok := commands[command]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	env, err := cli.OpenEnv(opts)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	err = run(ctx, env, commandArgs)
	_ = env.Close()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Printf(`crmtui v%s - Terminal client for the CRM

USAGE:
  crmtui [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/crmtui/config.toml)
  --api-url <url>        Backend origin (overrides config and CRM_API_URL)
  --db-path <path>       Session database (default: ~/.local/share/crmtui/session.db)

COMMANDS:
  tui                    Full-screen terminal UI (default in a terminal)
    --route <name>         Screen to open first (leads, contacts, pipeline, tasks, ...)
  mcp                    Start MCP server (for Claude Desktop integration)

SESSION:
  login                  Sign in (--email, --password; prompts when omitted)
  logout                 Sign out and forget the session
  register               Create an account (--name, --email, --company, --password)
  whoami                 Show the signed-in user

RECORDS:
  leads <cmd>            list | show <id> | add | delete <id> | delete-all | import <file.csv> | status <id> <status>
  contacts <cmd>         Same subcommands as leads
  deals <cmd>            list | add | stage <id> <stage> | delete <id>
  tasks <cmd>            list | add | toggle <id> | status <id> <status> | delete <id>
  meetings <cmd>         list | add | delete <id>
  groups <cmd>           list | create <name> | delete <id> | add-members | remove-member

  Most list commands take --query, a status/stage/type filter and --limit.

VISUALIZATION:
  viz dashboard          Pipeline, totals and items needing attention
  viz graph <type>       pipeline | groups [group-id] | complete
    --format <dot|svg>     Output format (default: dot)
    --output <file>        Write to a file instead of stdout

SETTINGS:
  prefs show             Show UI preferences
  prefs layout <name>    Sidebar layout: default | collapsed | hidden
  prefs view <view>      Default view (--page <page> for one page): table | kanban | calendar | board
  sync <cmd>             Preference sync: status | now | auto --enable|--disable | wipe --confirm
  config <cmd>           show | path | init [--force]

EXAMPLES:
  crmtui login --email me@example.com
  crmtui leads list --status Qualified
  crmtui leads import --group prospects.csv
  crmtui deals stage 64f0c2 Negotiation
  crmtui viz graph pipeline --format svg --output pipeline.svg
  crmtui tui --route pipeline

`, version)
}
