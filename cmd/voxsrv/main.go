package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voxrpg/server/internal/config"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/data"
	"github.com/voxrpg/server/internal/handler"
	gonet "github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/persist"
	"github.com/voxrpg/server/internal/scripting"
	"github.com/voxrpg/server/internal/system"
	"github.com/voxrpg/server/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to server.toml (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	flag.Parse()

	if err := run(config.Path(*configPath)); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              voxrpg server                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(3, 42-len(label)-len(numStr))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run(cfgPath string) error {
	// 1. Load config
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

	if mode, ok := profileMode(cfg.Debug.Profile); ok {
		defer profile.Start(mode, profile.ProfilePath(cfg.Debug.Dir), profile.NoShutdownHook, profile.Quiet).Stop()
		log.Info("profiling enabled", zap.String("mode", cfg.Debug.Profile), zap.String("dir", cfg.Debug.Dir))
	}

	printBanner(cfg.Server.Name)

	// 3. Database and migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK(fmt.Sprintf("%s connected", db.Driver))

	if err := persist.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Repositories and the background writer
	charRepo := persist.NewCharacterRepo(db)
	updater := persist.NewCharacterUpdater(charRepo, 64, 10*time.Second, log)

	// 5. Game data and scripts
	printSection("data")

	abilities, err := data.LoadAbilityTable(cfg.Data.Abilities)
	if err != nil {
		return fmt.Errorf("load abilities: %w", err)
	}
	printStat("ability sets", abilities.Count())

	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")

	// 6. World state
	ws := world.NewState(world.Options{
		InviteTTL:       cfg.Game.InviteTTL,
		MaxGroupSize:    cfg.Game.MaxGroupSize,
		TameRange:       cfg.Game.TameRange,
		LostPetDistance: cfg.Game.LostPetDistance,
		SeaLevel:        cfg.Game.SeaLevel,
		ComboDecay:      cfg.Game.ComboDecay,
		SpawnPoint:      mgl64.Vec3(cfg.Game.SpawnPoint),
	}, abilities, log)

	creatures := spawnCreatures(ws, cfg.Game.WildCreatures, log)
	printStat("wild creatures", creatures)
	fmt.Println()

	// 7. Handlers
	pktReg := packet.NewRegistry(log)
	handler.RegisterAll(pktReg, &handler.Deps{
		World:       ws,
		Characters:  charRepo,
		LoadTimeout: 5 * time.Second,
		Log:         log,
	})

	// 8. Dispatcher and systems
	dispatcher := coresys.NewDispatcher(ws.World, cfg.Network.TickRate, cfg.Game.Workers, log)
	sessions := gonet.NewSessionStore()

	status := func() any {
		return serverStatus{Tick: dispatcher.TickNumber(), Timings: dispatcher.Timings()}
	}

	netServer := gonet.NewServer(gonet.ServerOptions{
		BindAddress: cfg.Network.BindAddress,
		Session: gonet.SessionOptions{
			InQueueSize:  cfg.Network.InQueueSize,
			OutQueueSize: cfg.Network.OutQueueSize,
			PktPerSec:    packetsPerSecond(cfg.RateLimit),
			ReadTimeout:  cfg.Network.ReadTimeout,
			WriteTimeout: cfg.Network.WriteTimeout,
		},
		AdminUser: cfg.Admin.User,
		AdminHash: cfg.Admin.PasswordHash,
	}, status, log)

	start := time.Now()
	persistence := system.NewPersistenceSystem(ws, updater, cfg.Game.PersistenceInterval, start, log)

	dispatcher.Register(system.NewInputSystem(netServer, pktReg, sessions, cfg.Network.MaxPacketsPerTick, ws, updater, log))
	dispatcher.Register(system.NewCharacterBehaviorSystem(ws))
	dispatcher.Register(system.NewPhysicsSystem(ws))
	dispatcher.Register(system.NewMeleeSystem(ws))
	dispatcher.Register(system.NewAuraSystem(ws, luaEngine))
	dispatcher.Register(system.NewEnergySystem(ws, luaEngine))
	dispatcher.Register(system.NewComboDecaySystem(ws))
	dispatcher.Register(system.NewPetsSystem(ws, log))
	dispatcher.Register(system.NewInviteTimeoutSystem(ws))
	dispatcher.Register(system.NewEventApplySystem(ws, log))
	dispatcher.Register(persistence)
	dispatcher.Register(system.NewReplicationSystem(ws, cfg.Game.ViewDistance))
	dispatcher.Register(system.NewOutputSystem(sessions))
	dispatcher.Build()

	// 9. Network
	if err := netServer.Listen(); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- netServer.Serve() }()

	// 10. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case now := <-ticker.C:
			dispatcher.Tick(now)
		case err := <-serveErr:
			if err != nil {
				log.Error("http server stopped", zap.Error(err))
			}
			shutdown(netServer, persistence, updater, log)
			return err
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			shutdown(netServer, persistence, updater, log)
			log.Info("server stopped")
			return nil
		}
	}
}

type serverStatus struct {
	Tick    uint64           `json:"tick"`
	Timings []coresys.Timing `json:"timings"`
}

// shutdown stops the gateway, queues every online character and waits for
// the updater to write them.
func shutdown(srv *gonet.Server, persistence *system.PersistenceSystem, updater *persist.CharacterUpdater, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn("gateway shutdown", zap.Error(err))
	}
	n := persistence.SaveAll()
	updater.Close()
	log.Info("characters saved", zap.Int("count", n), zap.Int64("failed", updater.Failed()))
}

// spawnCreatures places n tameable creatures on a ring around the spawn point.
func spawnCreatures(ws *world.State, n int, log *zap.Logger) int {
	spawned := 0
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		at := ws.Opts.SpawnPoint.Add(mgl64.Vec3{12 * math.Cos(angle), 12 * math.Sin(angle), 0})
		if _, err := ws.SpawnCreature(at, true); err != nil {
			log.Warn("spawn creature", zap.Error(err))
			continue
		}
		spawned++
	}
	return spawned
}

func packetsPerSecond(cfg config.RateLimitConfig) int {
	if !cfg.Enabled {
		return 0
	}
	return cfg.PacketsPerSecond
}

func profileMode(name string) (func(*profile.Profile), bool) {
	switch name {
	case "cpu":
		return profile.CPUProfile, true
	case "mem":
		return profile.MemProfile, true
	case "block":
		return profile.BlockProfile, true
	case "mutex":
		return profile.MutexProfile, true
	case "trace":
		return profile.TraceProfile, true
	}
	return nil, false
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
