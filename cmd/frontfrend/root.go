package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/config"
	"github.com/jask/frontfrend/internal/database"
	"github.com/jask/frontfrend/internal/database/repository"
	"github.com/jask/frontfrend/internal/logging"
	"github.com/jask/frontfrend/internal/prefs"
	"github.com/jask/frontfrend/internal/secrets"
	"github.com/jask/frontfrend/internal/service"
	"github.com/jask/frontfrend/internal/tui"
	"github.com/jask/frontfrend/internal/workflow"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	apiURL     string
	verbose    bool
}

// env is the wired application for one command invocation.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	client  *workflow.Client
	secrets *secrets.Store
	db      *sql.DB
	runs    *service.RunService
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "frontfrend",
		Short: "AI-powered UI improvements for GitHub repositories",
		Long: `frontfrend submits a GitHub repository to the workflow backend, follows
the analysis while it runs and lets you review the improved code before a pull
request is opened.

Run without arguments to start the interactive client.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup(false)
			if err != nil {
				return err
			}
			defer e.close()
			return e.runTUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.config/frontfrend/config.toml)")
	root.PersistentFlags().StringVar(&g.apiURL, "api", "", "workflow backend base URL (overrides api.base_url)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(runCmd(g), previewCmd(g), historyCmd(g))
	return root
}

// setup loads config and wires the collaborators. Headless commands log to
// stderr; the interactive client logs to the configured file.
func (g *globals) setup(headless bool) (*env, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(g.apiURL, "/")
	}

	logPath := cfg.Log.Path
	if headless {
		logPath = logging.Stderr
	}
	log, err := logging.New(logPath, cfg.Log.Level, g.verbose)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	e := &env{cfg: cfg, log: log}

	e.secrets, err = secrets.NewStore()
	if err != nil {
		log.Warn("secret store unavailable", zap.Error(err))
	}
	e.client = workflow.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	e.client.Token = e.secrets.Resolve(secrets.GitHub, cfg.API.TokenEnv)
	if e.client.Token == "" {
		e.client.Token = strings.TrimSpace(cfg.API.Token)
	}

	e.runs = &service.RunService{Starter: e.client, Log: log}
	if cfg.History.Enabled {
		db, err := database.OpenMigrated(cfg.History.Path)
		if err != nil {
			log.Warn("history disabled", zap.String("path", cfg.History.Path), zap.Error(err))
		} else {
			e.db = db
			e.runs.Runs = repository.NewRunRepo(db)
		}
	}
	log.Debug("configured", zap.String("api", cfg.API.BaseURL), zap.Bool("history", e.db != nil))
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	_ = e.log.Sync()
}

func (e *env) runTUI(cmd *cobra.Command) error {
	var store *prefs.Store
	initial := prefs.Default()
	if s, err := prefs.NewStore(); err == nil {
		store = s
		if initial, err = s.Load(); err != nil {
			e.log.Warn("load preferences", zap.Error(err))
		}
	}

	app := tui.New(cmd.Context(), e.cfg, tui.Deps{
		Client:  e.client,
		Runs:    e.runs,
		Secrets: e.secrets,
		Prefs:   store,
		Log:     e.log,
	}, initial)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	return err
}
