// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/vibebox/internal/api/connect"
	"github.com/osa030/vibebox/internal/app/analyzer"
	"github.com/osa030/vibebox/internal/app/crossfade"
	"github.com/osa030/vibebox/internal/app/dj"
	"github.com/osa030/vibebox/internal/app/filter"
	"github.com/osa030/vibebox/internal/app/player"
	"github.com/osa030/vibebox/internal/app/ranker"
	"github.com/osa030/vibebox/internal/app/search"
	"github.com/osa030/vibebox/internal/domain/mode"
	"github.com/osa030/vibebox/internal/infra/audio"
	"github.com/osa030/vibebox/internal/infra/config"
	"github.com/osa030/vibebox/internal/infra/logger"
	"github.com/osa030/vibebox/internal/infra/store"
)

var (
	app        = kingpin.New("vibebox-server", "vibebox virtual DJ server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
	listModesCmd   = app.Command("list-modes", "List DJ modes and exit")
	modesFile      = listModesCmd.Flag("file", "Mode catalog file (default: builtin)").String()
)

func init() {
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case listFiltersCmd.FullCommand():
		printFilters()
		return
	case listModesCmd.FullCommand():
		if err := printModes(*modesFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// closers releases resources in reverse order of registration.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	var cleanup closers
	defer cleanup.closeAll()

	provider, err := search.NewProviderFromConfig(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create search provider")
	}

	resolver, err := search.NewResolverFromConfig(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create track resolver")
	}

	st, err := store.New(cfg.Store)
	if err != nil {
		return errors.Wrap(err, "failed to create store")
	}
	cleanup.add(func() {
		if err := st.Close(); err != nil {
			zlog.Error().Msgf("Failed to close store: %v", err)
		}
	})

	modes := mode.Builtin()
	if cfg.Modes.File != "" {
		if modes, err = mode.Load(cfg.Modes.File); err != nil {
			return errors.Wrap(err, "failed to load mode catalog")
		}
	}

	chain, err := filter.NewChainFromConfig(cfg.Filters)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}
	a := analyzer.New()

	controller, err := dj.New(cfg.DJ, dj.Dependencies{
		Search:   provider,
		Analyzer: a,
		Ranker:   ranker.New(a, chain),
		Modes:    modes,
		Store:    st,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create DJ controller")
	}
	cleanup.add(func() {
		if err := controller.Close(); err != nil {
			zlog.Error().Msgf("Failed to close DJ controller: %v", err)
		}
	})

	clockConfig := audio.ClockConfig{Probe: cfg.Player.Probe}
	scheduler, err := crossfade.New(
		audio.NewClock(clockConfig),
		audio.NewClock(clockConfig),
		crossfade.SettingsFromConfig(cfg.Crossfade),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create crossfade scheduler")
	}
	cleanup.add(func() {
		if err := scheduler.Close(); err != nil {
			zlog.Error().Msgf("Failed to close scheduler: %v", err)
		}
	})

	host := player.New(cfg.Player, cfg.Crossfade.Volume, controller, scheduler)
	host.Start()
	cleanup.add(host.Close)

	// Create RPC services
	djService := apiconnect.NewDJService(controller, resolver)
	playerService := apiconnect.NewPlayerService(host, scheduler)
	adminAuth := connect.WithInterceptors(apiconnect.NewAdminAuthInterceptor(cfg.Admin.Token))

	mux := http.NewServeMux()
	mux.Handle(djService.Handler(adminAuth))
	mux.Handle(playerService.Handler(adminAuth))

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// End watch streams first so Shutdown does not wait on them
	djService.Close()
	playerService.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")
	return nil
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	registry := filter.GetRegistered()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := registry[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// printModes prints the DJ modes of the builtin catalog or of path.
func printModes(path string) error {
	modes := mode.Builtin()
	if path != "" {
		var err error
		if modes, err = mode.Load(path); err != nil {
			return err
		}
	}

	fmt.Println("DJ Modes:")
	for _, m := range modes.All() {
		fmt.Printf("  %-20s %-24s language=%s genres=%s\n",
			m.ID, m.Name, m.Language, strings.Join(m.Genres, ","))
	}
	return nil
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
