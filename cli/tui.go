// ABOUTME: Full-screen terminal UI subcommand
// ABOUTME: Wires the shell to a file logger, the toast channel, preferences and config reloads
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/tui"
)

// TUICommand runs the terminal UI until the user quits. Logs go to a file because the screen
// belongs to the UI.
func TUICommand(ctx context.Context, opts EnvOptions, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	routeName := fs.String("route", "", "Screen to open first (e.g. leads, pipeline, tasks)")
	_ = fs.Parse(args)

	var start tui.Route
	if *routeName != "" {
		r, ok := tui.ParseRoute(*routeName)
		if !ok {
			return fmt.Errorf("unknown route: %s", *routeName)
		}
		start = r
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, logFile, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	notices := tui.NewChanNotifier(0, logger)
	opts.Notifier = notices
	opts.Logger = logger
	env, err := OpenEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	store, closer, err := OpenPrefs(env.Config, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reloads, err := config.Watch(ctx, env.ConfigPath, 0)
	if err != nil {
		// The UI works without live reload.
		logger.Warn("config watch disabled", "err", err)
	}

	session := env.Session()
	cached, err := session.User()
	if err != nil {
		logger.Warn("failed to read cached user", "err", err)
	}

	logger.Info("starting tui", "api", env.BaseURL, "route", *routeName)
	return tui.Run(ctx, tui.Options{
		Client:  env.Client,
		Notices: notices.C(),
		Prefs:   store,
		Config:  env.Config,
		Reloads: reloads,
		Session: session,
		User:    cached,
		Start:   start,
		Logger:  logger,
	})
}
