package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/trackgen/server/internal/config"
	"github.com/trackgen/server/internal/core/ecs"
	"github.com/trackgen/server/internal/core/event"
	coresys "github.com/trackgen/server/internal/core/system"
	"github.com/trackgen/server/internal/data"
	"github.com/trackgen/server/internal/debugfeed"
	"github.com/trackgen/server/internal/persist"
	"github.com/trackgen/server/internal/scripting"
	"github.com/trackgen/server/internal/system"
	"github.com/trackgen/server/internal/track"
	"github.com/trackgen/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var printer = message.NewPrinter(language.English)

func printBanner(runID string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              trackgen  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       endless track segment generator     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mrun:\033[0m %s\n\n", runID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

// printStat prints label ····· count, with the count digit-grouped.
func printStat(label string, count int) {
	numStr := printer.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/trackgen.toml"
	if p := os.Getenv("TRACKGEN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	runID := uuid.New()
	printBanner(runID.String())

	// 3. Catalog
	printSection("catalog")
	cat, err := data.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	printStat("lanes", cat.LaneCount())
	printStat("templates", len(cat.Templates))
	printStat("bonus templates", len(cat.BonusTemplates))
	printStat("segment types", len(cat.SegmentTypes))
	printStat("content entries", cat.Count())
	printOK("fingerprint " + cat.Fingerprint())
	fmt.Println()

	// 4. Difficulty curve
	printSection("difficulty")
	var (
		curve  track.Curve
		engine *scripting.Engine
	)
	switch cfg.Difficulty.Curve {
	case "", "linear":
		printOK("linear ramp")
	case "keyframes":
		curve = track.NewKeyframes(cfg.Difficulty.Keyframes)
		printStat("keyframes", len(cfg.Difficulty.Keyframes))
	case "lua":
		engine, err = scripting.NewEngine(cfg.Difficulty.ScriptDir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer engine.Close()
		if !engine.HasFunction("difficulty_curve") {
			return fmt.Errorf("lua engine: difficulty_curve not defined in %s", cfg.Difficulty.ScriptDir)
		}
		curve = engine
		printOK("lua curve from " + cfg.Difficulty.ScriptDir)
	default:
		return fmt.Errorf("unknown difficulty curve %q", cfg.Difficulty.Curve)
	}
	printOK(fmt.Sprintf("reaches %.2f after %s", cfg.Difficulty.MaxDifficulty, cfg.Difficulty.Interval))
	fmt.Println()

	// 5. World, bus, generator
	ecsWorld := ecs.NewWorld()
	ents := track.NewEntities(ecsWorld)
	bus := event.NewBus()
	runner := world.NewRunner(cfg.Loop)

	clock := track.NewDifficultyClock(curve, cfg.Difficulty.Interval, cfg.Difficulty.MaxDifficulty, cfg.Difficulty.Epsilon)
	gen, err := track.NewGenerator(track.SettingsFromConfig(cfg, cat), cat, track.Deps{
		Player:   runner,
		Clock:    clock,
		Sink:     system.NewBusSink(bus),
		Entities: ents,
		Log:      log.Named("track"),
	})
	if err != nil {
		return fmt.Errorf("track generator: %w", err)
	}
	if engine != nil && engine.HasFunction("obstacle_bias") {
		gen.SetObstacleBias(engine)
	}

	loop := coresys.NewRunner()
	loop.Register(system.NewInputSystem(runner, bus))
	loop.Register(system.NewEventDispatchSystem(bus))
	loop.Register(system.NewTrackSystem(gen, bus))
	loop.Register(system.NewCleanupSystem(ecsWorld))

	// 6. Telemetry (optional)
	var (
		telemetry *system.TelemetrySystem
		runs      *persist.RunRepo
	)
	if cfg.Database.Enabled {
		printSection("telemetry")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log.Named("persist"))
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		runs = persist.NewRunRepo(db)
		if err := runs.Create(ctx, &persist.Run{
			ID:            runID,
			CatalogHash:   cat.Fingerprint(),
			SegmentLength: cfg.Generator.SegmentLength,
			LaneCount:     cat.LaneCount(),
		}); err != nil {
			return fmt.Errorf("telemetry run: %w", err)
		}
		telemetry = system.NewTelemetrySystem(persist.NewEventRepo(db), bus, runID, cfg.Database.FlushInterval, log.Named("telemetry"))
		loop.Register(telemetry)
		printOK(fmt.Sprintf("flushing every %s", cfg.Database.FlushInterval))
		fmt.Println()
	}

	// 7. Debug feed (optional)
	var feed *debugfeed.Server
	if cfg.DebugFeed.Enabled {
		feed, err = debugfeed.NewServer(cfg.DebugFeed, runID.String(), cat.Fingerprint(), log.Named("debugfeed"))
		if err != nil {
			return fmt.Errorf("debug feed: %w", err)
		}
		go feed.Serve()
		loop.Register(system.NewFeedSystem(feed, bus, gen, runner, time.Second))
	}

	// 8. Lay down the initial track and start the loop
	runner.Spawn(0)
	gen.Init()

	printSection("generator")
	st := gen.Stats()
	printStat("pooled segments", st.Constructed)
	printStat("initial segments", st.Active)
	for _, seg := range gen.Active() {
		log.Debug("initial segment", zap.String("summary", seg.Summary()))
	}
	fmt.Println()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	regenCh := make(chan os.Signal, 1)
	signal.Notify(regenCh, syscall.SIGHUP)

	ticker := time.NewTicker(cfg.Loop.FrameRate)
	defer ticker.Stop()

	printSection("ready")
	if feed != nil {
		printReady(fmt.Sprintf("debug feed ws://%s/ws", feed.Addr().String()))
	}
	printReady(fmt.Sprintf("loop started (frame: %s, generator tick: %s)", cfg.Loop.FrameRate, cfg.Generator.TickInterval))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			loop.Tick(cfg.Loop.FrameRate)
		case <-regenCh:
			gen.RegenerateStreet()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			shutdown(gen, runner, telemetry, runs, runID, feed, log)
			return nil
		}
	}
}

func shutdown(gen *track.Generator, runner *world.Runner, telemetry *system.TelemetrySystem, runs *persist.RunRepo,
	runID uuid.UUID, feed *debugfeed.Server, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st := gen.Stats()
	if telemetry != nil {
		telemetry.Flush(ctx)
		if err := runs.Finish(ctx, runID, persist.RunSummary{
			TotalGenerated:  st.TotalGenerated,
			FinalDifficulty: st.Difficulty,
			Distance:        runner.Traveled(),
		}); err != nil {
			log.Error("telemetry run not finalized", zap.Error(err))
		}
	}
	if feed != nil {
		if err := feed.Shutdown(ctx); err != nil {
			log.Warn("debug feed shutdown", zap.Error(err))
		}
	}
	log.Info("trackgen stopped",
		zap.Int("segments", st.TotalGenerated),
		zap.Int("pool", st.Constructed),
		zap.Float64("difficulty", st.Difficulty),
		zap.Float64("distance", runner.Traveled()))
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

	return zapCfg.Build()
}
