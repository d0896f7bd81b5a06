package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/apply-agent/internal/answerer"
	"github.com/jonathan/apply-agent/internal/apply"
	"github.com/jonathan/apply-agent/internal/browser"
	"github.com/jonathan/apply-agent/internal/cache"
	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/db"
	"github.com/jonathan/apply-agent/internal/llm"
	"github.com/jonathan/apply-agent/internal/observability"
	"github.com/jonathan/apply-agent/internal/pacing"
	"github.com/jonathan/apply-agent/internal/search"
	"github.com/jonathan/apply-agent/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Daily rerun schedule for --loop
const (
	rerunInterval = 24 * time.Hour
	rerunTick     = time.Hour
)

// browserProfileDir keeps the signed-in session between runs
const browserProfileDir = "browser"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply to jobs, reapply to failed ones, or connect with recruiters",
	Long: `Signs in, then runs one mode:

  apply      page through every position x location search and submit quick-apply forms,
             then send connection requests to the recruiters found
  reapply    retry every job whose last application failed
  reconnect  send connection requests to recruiters of applied jobs

Credentials come from LINKEDIN_EMAIL and LINKEDIN_PASSWORD. Flags override config.yaml
and environment values only when set.`,
	RunE: runAgentCmd,
}

func init() {
	addRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.String("mode", "", "Run mode: apply, reapply or reconnect (defaults to MODE env var, then apply)")
	flags.String("api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	flags.Int("max-applications", 0, "Successful applications per run, 0 = uncapped")
	flags.Int("connect-target", 0, "Connection requests sent after an apply run")
	flags.Bool("headless", false, "Run the browser without a window")
	flags.Bool("loop", false, "Rerun every 24 hours until interrupted")
}

// overrideSettings applies the flags that were set on top of the environment
func overrideSettings(flags *pflag.FlagSet, s *config.Settings) {
	if flags.Changed("mode") {
		s.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("api-key") {
		s.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("db-url") {
		s.DatabaseURL, _ = flags.GetString("db-url")
	}
}

// overrideConfig applies the flags that were set on top of config.yaml
func overrideConfig(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("max-applications") {
		cfg.MaxApplications, _ = flags.GetInt("max-applications")
	}
	if flags.Changed("connect-target") {
		cfg.ConnectTarget, _ = flags.GetInt("connect-target")
	}
	if flags.Changed("headless") {
		headless, _ := flags.GetBool("headless")
		cfg.Headless = &headless
	}
}

// agent holds everything that outlives a single run
type agent struct {
	settings config.Settings
	cfg      config.Config
	dataDir  string
	verbose  bool
	store    db.Store
	answers  *cache.AnswerCache
	gateway  *answerer.Gateway // nil in reconnect mode
	printer  *observability.Printer
	log      *zap.Logger
}

func runAgentCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := readGlobalFlags(cmd.Flags())
	if err != nil {
		return err
	}

	settings := config.LoadSettings()
	overrideSettings(cmd.Flags(), &settings)
	if err := settings.Validate(); err != nil {
		return err
	}

	cfg, err := loadDataConfig(g.DataDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfig(cmd.Flags(), &cfg)

	log, err := newLogger(g.Verbose, config.Resolve(g.DataDir, cfg.LogFile))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := db.Open(ctx, settings.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	a := &agent{
		settings: settings,
		cfg:      cfg,
		dataDir:  g.DataDir,
		verbose:  g.Verbose,
		store:    store,
		answers:  cache.New(store, log),
		printer:  observability.NewPrinter(cmd.OutOrStdout()),
		log:      log,
	}
	if settings.Mode != config.ModeReconnect {
		client, err := a.newClient(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		resume, profile, err := config.LoadResume(config.Resolve(g.DataDir, config.ResumeFileName))
		if err != nil {
			return err
		}
		a.gateway = answerer.New(client, resume, profile, log)
	}

	loop, _ := cmd.Flags().GetBool("loop")
	for {
		report, err := a.runOnce(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("Interrupted")
				return nil
			}
			return err
		}
		a.printer.PrintRunSummary(report)

		if !loop {
			return nil
		}
		if err := waitForNextRun(ctx, log, rerunInterval, rerunTick); err != nil {
			log.Info("Interrupted")
			return nil
		}
	}
}

// newClient builds the retrying model client
func (a *agent) newClient(ctx context.Context) (llm.Client, error) {
	llmConfig := llm.DefaultConfig()
	if a.cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, a.cfg.Model)
	}

	client, err := llm.NewClient(ctx, llmConfig, a.settings.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	retrying := llm.NewRetryingClient(client, a.log)
	retrying.MaxRetries = a.cfg.MaxLLMRetries
	return retrying, nil
}

// reloadAnswers refreshes the answer cache from the store at the start of a session
func (a *agent) reloadAnswers(ctx context.Context) error {
	if err := a.answers.Load(ctx); err != nil {
		return fmt.Errorf("failed to load answer cache: %w", err)
	}
	return nil
}

// runOnce launches the browser, signs in and executes the configured mode
func (a *agent) runOnce(ctx context.Context) (session.Report, error) {
	filters := &a.cfg.SearchFilterSet
	if a.verbose && a.settings.Mode == config.ModeApply {
		a.printer.PrintSearchPlan(search.BuildFilterQuery(filters), search.BuildSearches(filters, nil))
	}

	chrome, err := browser.Launch(ctx, browser.Options{
		Headless:    a.cfg.IsHeadless(),
		UserDataDir: config.Resolve(a.dataDir, browserProfileDir),
	}, a.log)
	if err != nil {
		return session.Report{Mode: a.settings.Mode}, err
	}
	defer chrome.Close()

	if err := a.reloadAnswers(ctx); err != nil {
		return session.Report{Mode: a.settings.Mode}, err
	}

	seed := time.Now().UnixNano()
	pacer := pacing.NewJitter(seed)

	if err := session.Login(ctx, chrome, pacer, a.log, a.settings.Email, a.settings.Password); err != nil {
		return session.Report{Mode: a.settings.Mode}, err
	}

	var applier session.Applier
	if a.gateway != nil {
		dispatcher := apply.NewDispatcher(chrome, a.answers, a.gateway, pacer, a.log)
		uploader := apply.NewUploader(chrome, a.gateway, pacer, a.log,
			config.Resolve(a.dataDir, a.cfg.ResumeFile),
			config.Resolve(a.dataDir, a.cfg.CoverLetterDir),
		)
		applier = apply.NewMachine(chrome, dispatcher, uploader, a.gateway, pacer, a.log)
	}

	controller := session.New(chrome, applier, a.store, pacer, a.log, session.Options{
		Filters:         filters,
		MaxApplications: a.cfg.MaxApplications,
		ConnectTarget:   a.cfg.ConnectTarget,
		Rand:            rand.New(rand.NewSource(seed)),
	})

	report, err := controller.Run(ctx, a.settings.Mode)
	a.log.Info("Run finished",
		zap.String("mode", report.Mode),
		zap.Int("applied", report.Applications.Successes),
		zap.Int("application_failures", report.Applications.Failures),
		zap.Int("connected", report.Connections.Successes),
		zap.Int("answers_cached", a.answers.Len()),
	)
	return report, err
}

// waitForNextRun sleeps for total in tick steps, logging the time left before each
func waitForNextRun(ctx context.Context, log *zap.Logger, total, tick time.Duration) error {
	for remaining := total; remaining > 0; remaining -= tick {
		log.Info("Waiting for next run", zap.Duration("remaining", remaining))
		if err := pacing.Sleep(ctx, min(tick, remaining)); err != nil {
			return err
		}
	}
	return nil
}
