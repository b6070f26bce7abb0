package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thraizz/initiative-tracker/internal/combatant"
	"github.com/thraizz/initiative-tracker/internal/config"
	"github.com/thraizz/initiative-tracker/internal/dice"
	"github.com/thraizz/initiative-tracker/internal/persist"
	"github.com/thraizz/initiative-tracker/internal/session"
	"github.com/thraizz/initiative-tracker/internal/storage"
	"github.com/thraizz/initiative-tracker/internal/tracker"
	"github.com/thraizz/initiative-tracker/internal/tui"
)

var (
	configPath = flag.String("config", "", "path to configuration file (default $TRACKER_CONFIG or config/config.yaml)")
	exportPath = flag.String("export", "", "write the stored encounter to this file and exit")
	importPath = flag.String("import", "", "replace the stored encounter with this session file and exit")
	ephemeral  = flag.Bool("ephemeral", false, "keep state in memory only")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()
	os.Exit(realMain())
}

// realMain returns the exit code so deferred cleanup, including the final
// logger sync, runs before the process exits.
func realMain() int {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read environment: %v\n", err)
		return 1
	}
	path := *configPath
	if path == "" {
		path = env.ConfigPath
	}

	// Load configuration
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg.ResolvePaths(env.DataDir)
	if *ephemeral {
		cfg.Storage.Driver = config.DriverMemory
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("starting initiative tracker",
		zap.String("version", version),
		zap.String("config", path),
		zap.String("storage", cfg.Storage.Driver),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("tracker exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	keys := persist.KeysFor(cfg.Storage.KeyPrefix)
	state := loadState(ctx, store, keys, cfg, logger)

	roller, err := newRoller(cfg.Tracker.Seed)
	if err != nil {
		return err
	}
	tr := tracker.New(logger,
		tracker.WithOrdering(combatant.NewOrdering(combatant.ParseLocale(cfg.Tracker.Locale))),
		tracker.WithRoller(roller),
		tracker.WithUndoWindow(cfg.Tracker.UndoWindow),
		tracker.WithState(state),
	)

	writer := persist.NewWriter(store, keys, cfg.Storage.Timeout, logger)
	defer writer.Close()
	writer.Attach(tr)

	switch {
	case *exportPath != "":
		return session.ExportFile(tr, *exportPath, time.Now(), logger)
	case *importPath != "":
		if err := session.ImportFile(tr, *importPath, logger); err != nil {
			return fmt.Errorf("import %s: %w", *importPath, err)
		}
		fmt.Printf("Imported %s: %d combatants, %d in graveyard\n",
			*importPath, len(tr.Sorted()), len(tr.Graveyard()))
		return nil
	}

	program := tea.NewProgram(tui.NewModel(tr, cfg.Tracker.ExportDir, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	logger.Info("tracker stopped",
		zap.Int("roster", len(tr.Sorted())),
		zap.Int("round", tr.Round()),
	)
	return nil
}

// newRoller pins the dice to seed, or seeds them from crypto/rand when seed
// is 0.
func newRoller(seed int64) (*dice.Roller, error) {
	if seed == 0 {
		return dice.NewRandom()
	}
	return dice.New(seed), nil
}

// loadState reads the stored encounter. A store with no settings yet takes
// the configured defaults.
func loadState(ctx context.Context, store storage.Store, keys persist.Keys, cfg *config.Config, logger *zap.Logger) tracker.State {
	state := persist.Load(ctx, store, keys, logger)
	if _, ok, err := store.Get(ctx, keys.Settings); err == nil && !ok {
		state.Settings = tracker.Settings{
			AutoGraveyard: cfg.Tracker.AutoGraveyard,
			ShowHidden:    cfg.Tracker.ShowHidden,
			Theme:         cfg.Tracker.Theme,
		}
	}
	logger.Info("encounter loaded",
		zap.Int("roster", len(state.Roster)),
		zap.Int("graveyard", len(state.Graveyard)),
		zap.Int("round", state.Round),
	)
	return state
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if cfg.Output != "" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}

	// The terminal UI owns stdout and stderr.
	if cfg.Output != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zapCfg.OutputPaths = []string{cfg.Output}
		zapCfg.ErrorOutputPaths = []string{cfg.Output}
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
