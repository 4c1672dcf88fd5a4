// ABOUTME: CLI commands for syncing UI preferences through Charm KV
// ABOUTME: status, now, auto and wipe; SSH key auth means there is no login step

package charm

import (
	"flag"
	"fmt"
	"io"

	"github.com/harperreed/crmtui/config"
)

// SyncCommand dispatches `crmtui sync <subcommand>`. Settings live in the [prefs] section of
// the config file at configPath.
func SyncCommand(w io.Writer, cfg *config.Config, configPath string, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(w, "Usage: crmtui sync <status|now|auto|wipe>")
		return nil
	}

	switch args[0] {
	case "status":
		return statusCommand(w, cfg)
	case "now":
		return nowCommand(w, cfg)
	case "auto":
		return autoCommand(w, cfg, configPath, args[1:])
	case "wipe":
		return wipeCommand(w, cfg, args[1:])
	default:
		return fmt.Errorf("unknown sync command: %s", args[0])
	}
}

func statusCommand(w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w, "Preference Sync")
	fmt.Fprintln(w, "───────────────")
	fmt.Fprintf(w, "Enabled:   %v\n", cfg.Prefs.Sync)
	fmt.Fprintf(w, "Server:    %s\n", cfg.Prefs.Host)
	fmt.Fprintf(w, "Auto-sync: %v\n", cfg.Prefs.AutoSync)

	c, err := Open(cfg.Prefs)
	if err != nil {
		fmt.Fprintln(w, "\nStatus: Not connected")
		return nil //nolint:nilerr // not connected is a valid state
	}
	printStatus(w, c)
	return nil
}

func printStatus(w io.Writer, c *Client) {
	id, err := c.ID()
	if err != nil {
		fmt.Fprintln(w, "\nStatus: Connected (ID unavailable)")
	} else {
		fmt.Fprintln(w, "\nStatus: Connected")
		fmt.Fprintf(w, "ID:        %s\n", id)
	}
	fmt.Fprintf(w, "Keys:      %d\n", c.Status().Keys)
}

func nowCommand(w io.Writer, cfg *config.Config) error {
	c, err := Open(cfg.Prefs)
	if err != nil {
		return err
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(w, "✓ Preferences synced")
	return nil
}

func autoCommand(w io.Writer, cfg *config.Config, configPath string, args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ContinueOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *enable == *disable {
		fmt.Fprintln(w, "Usage: crmtui sync auto --enable|--disable")
		return nil
	}

	cfg.Prefs.AutoSync = *enable
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to update auto-sync: %w", err)
	}
	if *enable {
		fmt.Fprintln(w, "✓ Auto-sync enabled")
	} else {
		fmt.Fprintln(w, "✓ Auto-sync disabled")
	}
	return nil
}

func wipeCommand(w io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	confirm := fs.Bool("confirm", false, "Confirm wipe")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*confirm {
		fmt.Fprintln(w, "This deletes every synced preference.")
		fmt.Fprintln(w, "To confirm, run: crmtui sync wipe --confirm")
		return nil
	}

	c, err := Open(cfg.Prefs)
	if err != nil {
		return err
	}
	return Wipe(w, c)
}

// Wipe resets the synced store and reports it.
func Wipe(w io.Writer, c *Client) error {
	if err := c.Wipe(); err != nil {
		return err
	}
	fmt.Fprintln(w, "✓ Synced preferences wiped")
	return nil
}
