package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	discordadapter "github.com/jose-valero/erlc-compliance-bot/internal/adapters/discord"
	"github.com/jose-valero/erlc-compliance-bot/internal/adapters/erlc"
	"github.com/jose-valero/erlc-compliance-bot/internal/adapters/httpserver"
	"github.com/jose-valero/erlc-compliance-bot/internal/app/service"
	"github.com/jose-valero/erlc-compliance-bot/internal/infra/config"
	"github.com/jose-valero/erlc-compliance-bot/internal/infra/schedule"
	"github.com/jose-valero/erlc-compliance-bot/internal/infra/storage"
	"github.com/jose-valero/erlc-compliance-bot/internal/infra/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := storage.Open(ctx, cfg.DatabaseURL, storage.PoolSize(cfg.GuildConcurrency))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db, logger); err != nil {
		log.Fatal("migrate: ", err)
	}
	logger.Info("database ready")

	settingsRepo := storage.NewSettingsRepo(db, logger)
	keysRepo := storage.NewServerKeyRepo(db)
	linksRepo := storage.NewLinkRepo(db)
	shiftsRepo := storage.NewShiftRepo(db)
	loaRepo := storage.NewLoaRepo(db)

	// Infraction and throttle state; Redis keeps it across restarts.
	var (
		infractions service.InfractionStore = tracker.NewMemInfractionStore()
		throttle    service.ThrottleStore   = tracker.NewMemThrottleStore()
	)
	if cfg.RedisURL != "" {
		rdb, err := tracker.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("redis: ", err)
		}
		defer rdb.Close()
		infractions = tracker.NewRedisInfractionStore(rdb)
		throttle = tracker.NewRedisThrottleStore(rdb, time.Hour)
		logger.Info("using redis trackers")
	}

	game := erlc.New(keysRepo,
		erlc.WithBaseURL(cfg.ERLCBaseURL),
		erlc.WithGlobalKey(cfg.ERLCGlobalKey),
		erlc.WithRateLimit(cfg.ERLCRatePerSecond, 10),
		erlc.WithLogger(logger.With("component", "erlc")),
	)

	// Discord session
	auth := strings.TrimSpace(cfg.DiscordToken)
	if !strings.HasPrefix(strings.ToLower(auth), "bot ") {
		auth = "Bot " + auth
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	s.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if err := s.RequestGuildMembers(g.ID, "", 0, "", false); err != nil {
			logger.Warn("member chunk request failed", "guild", g.ID, "err", err)
		}
	})
	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	logger.Info("connected to discord", "user", s.State.User.Username, "id", s.State.User.ID)

	// Services
	filter := cfg.GuildFilter()
	platform := discordadapter.NewPlatform(s, logger)
	runner := service.NewGuildRunner(cfg.GuildConcurrency, logger)
	resolver := service.NewResolver(platform, linksRepo, logger)

	checks := service.NewDiscordCheckService(settingsRepo, game, platform, resolver, infractions, runner, filter, logger)
	vehicles := service.NewVehicleService(settingsRepo, game, platform, resolver, throttle, runner, filter, logger)
	stats := service.NewStatisticsService(settingsRepo, game, platform, shiftsRepo, runner, filter, logger)
	loas := service.NewLoaService(loaRepo, settingsRepo, platform, filter, logger)
	conditions := service.NewConditionService(nil, game, shiftsRepo, platform, logger)

	// Router
	r := discordadapter.NewRouter(s, conditions, checks, settingsRepo, logger)
	if err := r.Register(); err != nil {
		log.Fatalf("registering commands: %v", err)
	}
	r.Handlers()

	// HTTP
	web := httpserver.New(map[string]httpserver.HealthCheck{"db": db.PingContext}, logger)
	go func() {
		if err := web.Start(cfg.HTTPAddr); err != nil {
			logger.Error("http server stopped", "err", err)
		}
	}()

	// Periodic passes
	sched := schedule.New(logger)
	must(sched.Every("discord_checks", cfg.DiscordCheckInterval, func(ctx context.Context) {
		if _, err := checks.RunOnce(ctx); err != nil {
			logger.Error("discord check pass", "err", err)
		}
	}))
	must(sched.Every("vehicle_restrictions", cfg.VehicleCheckInterval, func(ctx context.Context) {
		if _, err := vehicles.RunOnce(ctx); err != nil {
			logger.Error("vehicle pass", "err", err)
		}
	}))
	must(sched.Every("statistics", cfg.StatisticsInterval, func(ctx context.Context) {
		if _, err := stats.RunOnce(ctx); err != nil {
			logger.Error("statistics pass", "err", err)
		}
	}))
	must(sched.Every("loa", cfg.LoaInterval, func(ctx context.Context) {
		if _, err := loas.RunOnce(ctx); err != nil {
			logger.Error("loa pass", "err", err)
		}
	}))
	sched.Start(ctx)
	logger.Info("scheduler started", "jobs", sched.Len())

	<-ctx.Done()
	logger.Info("shutting down")
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = web.Shutdown(shutdownCtx)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
