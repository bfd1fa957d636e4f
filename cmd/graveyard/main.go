package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/graveyard/engine/internal/camera"
	"github.com/graveyard/engine/internal/config"
	"github.com/graveyard/engine/internal/data"
	"github.com/graveyard/engine/internal/game"
	"github.com/graveyard/engine/internal/input"
	"github.com/graveyard/engine/internal/persist"
	"github.com/graveyard/engine/internal/render"
	"github.com/graveyard/engine/internal/render/term"
	"github.com/graveyard/engine/internal/scripting"
	"github.com/graveyard/engine/internal/system"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(levelID string, runID uuid.UUID) {
	fmt.Println()
	fmt.Println("\033[35;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[35;1m  │\033[0m              graveyard engine             \033[35;1m│\033[0m")
	fmt.Println("\033[35;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mlevel:\033[0m %s \033[90m(run %s)\033[0m\n\n", levelID, runID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("GRAVEYARD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger, tagged with this run
	runID := uuid.New()
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = log.With(zap.String("run", runID.String()))
	defer log.Sync()

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	printBanner(cfg.Level.ID, runID)

	// 3. Level, assets and scripts
	printSection("level")
	lvl, err := data.LoadLevel(cfg.Level.Path)
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	if lvl.ID != cfg.Level.ID {
		log.Warn("level id differs from config", zap.String("file", lvl.ID), zap.String("config", cfg.Level.ID))
	}
	assets, err := data.LoadAssets(cfg.Level.Assets)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	tw, th := lvl.Terrain.Size()
	printStat("terrain tiles", tw*th)
	printStat("spawns", len(lvl.Spawns))
	printStat("assets", len(assets.Looks()))

	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK("lua scripts loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Checkpoints (optional)
	label := system.CheckpointLabel{RunID: runID, LevelID: lvl.ID, TerrainDigest: lvl.Terrain.Digest()}
	var (
		saver   *persist.Writer
		restore *persist.Checkpoint
	)
	if cfg.Checkpoint.Enabled || cfg.Checkpoint.Restore {
		printSection("checkpoints")
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		version, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("database ready (schema v%d)", version))

		repo := persist.NewCheckpointRepo(db)
		if cfg.Checkpoint.Restore {
			restore, err = repo.LoadLatest(ctx, lvl.ID, label.TerrainDigest)
			if err != nil {
				return fmt.Errorf("load checkpoint: %w", err)
			}
		}
		if cfg.Checkpoint.Keep > 0 {
			n, err := repo.Prune(ctx, lvl.ID, cfg.Checkpoint.Keep)
			if err != nil {
				return fmt.Errorf("prune checkpoints: %w", err)
			}
			printStat("pruned", int(n))
		}
		if cfg.Checkpoint.Enabled {
			saver = persist.NewWriter(repo, log)
		}
	}

	// 5. Presentation and input
	var (
		backend render.Backend
		quit    <-chan struct{}
	)
	queue := input.NewQueue(128)
	switch cfg.Window.Backend {
	case "headless":
		backend = render.NewRecorder()
		if cfg.Frame.Limit == 0 {
			log.Warn("headless run without frame limit, stop with a signal")
		}
	default:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("terminal init: %w", err)
		}
		defer screen.Fini()
		backend = term.NewBackend(screen, cfg.Window.Width, cfg.Window.Height, assets.Looks())

		capture := term.NewCapture(screen, queue, log)
		quit = capture.Quit()
		go capture.Run(ctx)
	}

	// 6. Game
	opts := game.Options{
		Level:    lvl,
		Assets:   assets,
		Backend:  backend,
		Camera:   camera.ForWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.FOVScale),
		Queue:    queue,
		Mover:    engine,
		Workers:  cfg.Frame.Workers,
		MaxDelta: cfg.Frame.MaxDelta,
	}
	if saver != nil {
		opts.Saver = saver
		opts.CheckpointLabel = label
		opts.CheckpointInterval = cfg.Checkpoint.Interval
	}
	g, err := game.New(opts, log)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if restore != nil {
		n := g.Restore(restore)
		log.Info("checkpoint restored",
			zap.Int64("id", restore.ID),
			zap.Uint64("frame", restore.Frame),
			zap.Int("entities", n),
		)
	}

	writerDone := make(chan struct{})
	writerCtx, stopWriter := context.WithCancel(context.Background())
	if saver != nil {
		go func() {
			defer close(writerDone)
			saver.Run(writerCtx)
		}()
	} else {
		close(writerDone)
	}
	shutdown := func(reason string) {
		if saver != nil {
			saver.Submit(g.Snapshot(label))
		}
		stopWriter()
		<-writerDone
		log.Info("stopped", zap.String("reason", reason), zap.Uint64("frames", g.FrameCount()))
	}

	// 7. Frame loop
	ticker := time.NewTicker(cfg.Frame.Rate)
	defer ticker.Stop()
	log.Info("frame loop started", zap.Duration("rate", cfg.Frame.Rate))

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := g.Frame(ctx, dt); err != nil {
				log.Error("frame failed", zap.Error(err))
				shutdown("error")
				return err
			}
			if cfg.Frame.Limit > 0 && g.FrameCount() >= cfg.Frame.Limit {
				shutdown("frame limit")
				return nil
			}
		case <-quit:
			shutdown("quit")
			return nil
		case <-ctx.Done():
			shutdown("signal")
			return nil
		}
	}
}

func startProfile(cfg config.ProfileConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return nil
	}
	return profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook, profile.Quiet)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
