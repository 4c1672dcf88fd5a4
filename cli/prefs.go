// ABOUTME: UI preference CLI commands and the shared preference store opener
// ABOUTME: Preferences live in a local BadgerDB or, with sync on, in Charm KV
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/charm"
	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/prefs"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// OpenPrefs opens the preference store selected by the config. A backend that cannot be opened
// falls back to in-memory preferences so the UI still starts.
func OpenPrefs(cfg *config.Config, logger *log.Logger) (*prefs.Store, io.Closer, error) {
	noop := closerFunc(func() error { return nil })

	var (
		backend prefs.Backend
		closer  io.Closer = noop
	)
	if cfg.Prefs.Sync {
		c, err := charm.Open(cfg.Prefs)
		if err != nil {
			logger.Warn("preference sync unavailable; keeping preferences in memory", "err", err)
		} else {
			backend = c
		}
	} else {
		b, err := prefs.OpenBadger(cfg.Prefs.Dir)
		if err != nil {
			logger.Warn("local preference store unavailable; keeping preferences in memory", "err", err)
		} else {
			backend, closer = b, b
		}
	}

	store, err := prefs.Open(backend, logger)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return store, closer, nil
}

// PrefsCommand handles "prefs <subcommand>".
func PrefsCommand(ctx context.Context, env *Env, args []string) error {
	if len(args) > 0 && args[0] == "sync" {
		return SyncCommand(ctx, env, args[1:])
	}

	store, closer, err := OpenPrefs(env.Config, env.Logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	return Dispatch(ctx, env, "prefs", map[string]Command{
		"show":   func(ctx context.Context, env *Env, args []string) error { return showPrefs(env, store) },
		"layout": func(ctx context.Context, env *Env, args []string) error { return setLayout(env, store, args) },
		"view":   func(ctx context.Context, env *Env, args []string) error { return setView(env, store, args) },
	}, args)
}

// SyncCommand handles "sync <status|now|auto|wipe>" for preference sync.
func SyncCommand(ctx context.Context, env *Env, args []string) error {
	return charm.SyncCommand(env.Out, env.Config, env.ConfigPath, args)
}

func showPrefs(env *Env, store *prefs.Store) error {
	p := store.Get()
	fmt.Fprintf(env.Out, "Sidebar layout: %s\n", p.Layout)
	fmt.Fprintf(env.Out, "Default view:   %s\n", p.DefaultView)
	if len(p.PageViews) > 0 {
		fmt.Fprintln(env.Out, "\nPage views:")
		w := newTable(env.Out, "PAGE", "VIEW")
		for _, page := range sortedKeys(p.PageViews) {
			row(w, page, p.PageViews[page])
		}
		return w.Flush()
	}
	return nil
}

func setLayout(env *Env, store *prefs.Store, args []string) error {
	layout, err := requireArg(args, "layout ("+joinOr(models.Layouts)+")")
	if err != nil {
		return err
	}
	if err := oneOf(models.Layouts, layout, "layout"); err != nil {
		return err
	}
	if err := store.SetLayout(layout); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "✓ Sidebar layout set to %s\n", layout)
	return nil
}

// setView sets the default view, or one page's view with --page.
func setView(env *Env, store *prefs.Store, args []string) error {
	fs := flag.NewFlagSet("prefs view", flag.ExitOnError)
	page := fs.String("page", "", "Page to set the view for (default: all pages)")
	_ = fs.Parse(args)

	view, err := requireArg(fs.Args(), "view ("+joinOr(prefs.Views)+")")
	if err != nil {
		return err
	}
	if err := oneOf(prefs.Views, view, "view"); err != nil {
		return err
	}

	if *page == "" {
		if err := store.SetDefaultView(view); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Default view set to %s\n", view)
		return nil
	}
	if err := store.SetPageView(*page, view); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "✓ %s view set to %s\n", *page, view)
	return nil
}
