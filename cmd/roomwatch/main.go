// Command roomwatch runs the room-presence subscription tracker.
//
// Usage:
//
//	roomwatch [flags]
//
// Flags:
//
//	--config         YAML configuration file
//	--env-file       .env file(s) loaded before ROOMWATCH_* variables are read
//	--listen         HTTP API address (empty disables the API)
//	--log-level      debug, info, warn or error
//	--journal        CBOR journal file
//	-i, --interactive  start the command shell
//	--replay         replay a scenario file or directory and exit
//	--as             requester identity of the command shell
//	--invite-base-url  base URL of invite links
//	--invite-secret    invite signing secret
//
// Examples:
//
//	# API server with a journal
//	roomwatch --config roomwatch.yaml --journal roomwatch.cbor
//
//	# Shell only
//	roomwatch --listen "" -i --as alice
//
//	# Check scenarios
//	roomwatch --replay internal/scenario/testdata
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/roomwatch/roomwatch-go/cmd/roomwatch/interactive"
	"github.com/roomwatch/roomwatch-go/internal/command"
	"github.com/roomwatch/roomwatch-go/internal/config"
	"github.com/roomwatch/roomwatch-go/internal/httpapi"
	"github.com/roomwatch/roomwatch-go/internal/scenario"
	"github.com/roomwatch/roomwatch-go/pkg/delivery"
	"github.com/roomwatch/roomwatch-go/pkg/invite"
	rwlog "github.com/roomwatch/roomwatch-go/pkg/log"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
	"github.com/roomwatch/roomwatch-go/pkg/subscription"
)

var (
	configFile  string
	envFiles    []string
	listen      string
	logLevel    string
	journalPath string
	shell       bool
	replay      string
	requester   string
	inviteBase  string
	inviteKey   string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path")
	flag.StringSliceVar(&envFiles, "env-file", nil, "Environment file(s) to load (default .env)")
	flag.StringVar(&listen, "listen", "", "HTTP API address, empty disables the API")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&journalPath, "journal", "", "Journal file path")
	flag.BoolVarP(&shell, "interactive", "i", false, "Enable interactive command mode")
	flag.StringVar(&replay, "replay", "", "Replay a scenario file or directory and exit")
	flag.StringVar(&requester, "as", "operator", "Requester identity of the command shell")
	flag.StringVar(&inviteBase, "invite-base-url", "", "Base URL of invite links")
	flag.StringVar(&inviteKey, "invite-secret", "", "Invite signing secret")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := setupLogging(os.Stderr, level)

	if cfg.Scenario != "" {
		os.Exit(runReplay(logger, cfg))
	}

	if err := run(logger, cfg); err != nil {
		logger.Error("roomwatch failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig layers the YAML file, env files, ROOMWATCH_* variables and
// explicitly set flags, in that order.
func loadConfig() (config.Config, error) {
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return config.Config{}, err
	}
	if configFile == "" {
		configFile = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv()

	if flag.CommandLine.Changed("listen") {
		cfg.Listen = listen
	}
	if flag.CommandLine.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flag.CommandLine.Changed("journal") {
		cfg.Journal = journalPath
	}
	if flag.CommandLine.Changed("interactive") {
		cfg.Interactive = shell
	}
	if flag.CommandLine.Changed("replay") {
		cfg.Scenario = replay
	}
	if flag.CommandLine.Changed("invite-base-url") {
		cfg.Invite.BaseURL = inviteBase
	}
	if flag.CommandLine.Changed("invite-secret") {
		cfg.Invite.Secret = inviteKey
	}

	return cfg, cfg.Validate()
}

func setupLogging(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func openJournal(logger *slog.Logger, cfg config.Config) (rwlog.Logger, func(), error) {
	var loggers []rwlog.Logger
	closeFn := func() {}

	if cfg.Journal != "" {
		fl, err := rwlog.NewFileLogger(cfg.Journal)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				logger.Warn("closing journal", "error", err)
			}
		}
		logger.Info("journal enabled", "path", cfg.Journal)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, rwlog.NewSlogAdapter(logger))
	}

	if len(loggers) == 0 {
		return rwlog.NoopLogger{}, closeFn, nil
	}
	return rwlog.NewMultiLogger(loggers...), closeFn, nil
}

func engineConfig(logger *slog.Logger, cfg config.Config, journal rwlog.Logger) subscription.Config {
	notify, follow, vcnotify, _ := cfg.Limits()
	return subscription.Config{
		Notify:   notify,
		Follow:   follow,
		VCNotify: vcnotify,
		Logger:   logger,
		Journal:  journal,
	}
}

func runReplay(logger *slog.Logger, cfg config.Config) int {
	var scenarios []*scenario.Scenario
	info, err := os.Stat(cfg.Scenario)
	switch {
	case err != nil:
		logger.Error("replay", "error", err)
		return 2
	case info.IsDir():
		scenarios, err = scenario.LoadDirectory(cfg.Scenario)
	default:
		var sc *scenario.Scenario
		sc, err = scenario.Load(cfg.Scenario)
		scenarios = []*scenario.Scenario{sc}
	}
	if err != nil {
		logger.Error("loading scenarios", "error", err)
		return 2
	}

	journal, closeJournal, err := openJournal(logger, cfg)
	if err != nil {
		logger.Error("replay", "error", err)
		return 2
	}
	defer closeJournal()

	runner := scenario.NewRunner(scenario.Options{
		Engine:     engineConfig(logger, cfg, nil),
		Journal:    journal,
		Transcript: os.Stdout,
		Logger:     logger,
	})

	failed := 0
	for _, sc := range scenarios {
		fmt.Printf("=== %s\n", sc.Name)
		res, err := runner.Run(context.Background(), sc)
		if err != nil {
			fmt.Printf("--- ERROR %s: %v\n", sc.Name, err)
			failed++
			continue
		}
		if res.Passed() {
			fmt.Printf("--- PASS %s (%d steps, %d messages)\n", res.Name, res.Steps, res.Messages)
			continue
		}
		failed++
		fmt.Printf("--- FAIL %s\n", res.Name)
		for _, f := range res.Failures {
			fmt.Printf("    %s\n", f)
		}
	}

	fmt.Printf("\n%d/%d scenarios passed\n", len(scenarios)-failed, len(scenarios))
	if failed > 0 {
		return 1
	}
	return 0
}

func seedGraph(cfg config.Config) (*presence.Graph, error) {
	g := presence.NewGraph()
	for _, r := range cfg.Rooms {
		g.AddRoom(r)
	}
	for _, s := range cfg.Entities {
		g.AddEntity(presence.Entity{ID: s.ID, Name: s.Name})
	}
	for _, s := range cfg.Entities {
		if s.Room == "" {
			continue
		}
		if err := g.Join(s.ID, s.Room); err != nil {
			return nil, fmt.Errorf("seat %s: %w", s.ID, err)
		}
	}
	return g, nil
}

func run(logger *slog.Logger, cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The shell owns the terminal, so logs and messages go through it.
	var ic *interactive.Shell
	out := io.Writer(os.Stdout)
	if cfg.Interactive {
		var err error
		ic, err = interactive.New()
		if err != nil {
			return err
		}
		out = ic.Stdout()
		level, _ := config.ParseLevel(cfg.LogLevel)
		logger = setupLogging(ic.Stderr(), level)
	}

	logger.Info("roomwatch starting", "listen", cfg.Listen, "rooms", len(cfg.Rooms), "entities", len(cfg.Entities))

	journal, closeJournal, err := openJournal(logger, cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	g, err := seedGraph(cfg)
	if err != nil {
		return err
	}

	ttl, _ := cfg.InviteTTL()
	invites, err := invite.NewService(invite.Config{
		BaseURL: cfg.Invite.BaseURL,
		Secret:  []byte(cfg.Invite.Secret),
		TTL:     ttl,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	if cfg.Invite.Secret == "" {
		logger.Warn("no invite secret configured, invite links will not survive a restart")
	}

	inbox := delivery.NewInbox(cfg.InboxLimit)
	var sink subscription.Sink = inbox
	if cfg.Interactive {
		sink = delivery.NewMultiSink(inbox, delivery.NewWriterSink(out))
	}

	engine := subscription.NewEngine(subscription.Collaborators{
		Directory: g,
		Locator:   invites,
		Mover:     g,
		Sink:      sink,
	}, engineConfig(logger, cfg, journal))
	g.OnEvent(func(ev presence.Event) { engine.HandleEvent(ctx, ev) })

	var srv *http.Server
	errCh := make(chan error, 1)
	if cfg.Listen != "" {
		srv = &http.Server{
			Addr: cfg.Listen,
			Handler: httpapi.NewRouter(httpapi.Deps{
				Engine:  engine,
				Graph:   g,
				Inbox:   inbox,
				Invites: invites,
				Logger:  logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP API listening", "addr", cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	if ic != nil {
		d := command.New(engine, g, out)
		d.As(presence.EntityID(requester))
		ic.Attach(d)
		go ic.Run(ctx, cancel)
	} else {
		logger.Info("roomwatch running, press Ctrl+C to stop")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	case err := <-errCh:
		cancel()
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down")
	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", "error", err)
		}
	}

	logger.Info("roomwatch stopped", "subscriptions", len(engine.Subscriptions()))
	return nil
}
