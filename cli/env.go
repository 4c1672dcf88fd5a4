// ABOUTME: Shared setup for every command: config, session database, cookie jar and API client
// ABOUTME: Commands open an Env, use its workspace or client, and close it when done
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/config"
	"github.com/harperreed/crmtui/db"
	"github.com/harperreed/crmtui/logging"
	"github.com/harperreed/crmtui/pages"
)

// EnvOptions come from the global flags.
type EnvOptions struct {
	ConfigPath string
	APIURL     string
	DBPath     string
	Notifier   api.Notifier // defaults to printing notices on stderr
	Logger     *log.Logger  // defaults to a stderr logger at the configured level
}

// Env is everything a command needs to talk to the backend.
type Env struct {
	Config     *config.Config
	ConfigPath string
	BaseURL    string
	DB         *sql.DB
	Jar        *db.CookieJar
	Client     *api.Client
	Logger     *log.Logger
	Out        io.Writer

	ws *pages.Workspace
}

// OpenEnv loads configuration and opens the session database. The caller must Close it.
func OpenEnv(opts EnvOptions) (*Env, error) {
	config.LoadDotEnv()

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(os.Stderr, cfg.Log.Level)
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = db.DefaultPath()
	}
	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	jar, err := db.NewCookieJar(database, logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open cookie jar: %w", err)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = api.NewWriterNotifier(os.Stderr)
	}

	baseURL := cfg.ResolveBaseURL(opts.APIURL)
	logger.Debug("environment ready", "api", baseURL, "db", dbPath, "config", configPath)

	client := api.NewClient(
		api.WithBaseURL(baseURL),
		api.WithCookieJar(jar),
		api.WithTimeout(cfg.API.Timeout.Duration),
		api.WithNotifier(notifier),
		api.WithLogger(logger),
	)

	return &Env{
		Config:     cfg,
		ConfigPath: configPath,
		BaseURL:    baseURL,
		DB:         database,
		Jar:        jar,
		Client:     client,
		Logger:     logger,
		Out:        os.Stdout,
	}, nil
}

// Workspace returns the page controllers over the env's client, creating them once.
func (e *Env) Workspace() *pages.Workspace {
	if e.ws == nil {
		e.ws = pages.NewWorkspace(pages.Options{Gateway: e.Client, Logger: e.Logger})
	}
	return e.ws
}

// Session returns the cached-user store for the env's backend origin.
func (e *Env) Session() *db.Session {
	return db.NewSession(e.DB, e.BaseURL)
}

func (e *Env) Close() error {
	return e.DB.Close()
}
