package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atasrp/internal/config"
	"atasrp/internal/infra"
	"atasrp/internal/middleware"
	"atasrp/internal/repository"
	"atasrp/internal/router"
	"atasrp/internal/service"
	"atasrp/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logCloser := infra.SetupLogger(infra.LogConfig{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server exited")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	now := func() time.Time { return time.Now().In(loc) }

	// ── Store ────────────────────────────────────────────────────────────────
	repo, closeStore, err := repository.Open(cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer closeStore()
	log.Info().Str("backend", cfg.StoreBackend).Msg("store ready")

	g, gctx := errgroup.WithContext(ctx)

	// ── Notifier ─────────────────────────────────────────────────────────────
	breakers := map[string]*infra.CircuitBreaker{}
	var (
		notificador service.Notificador
		rdb         *redis.Client
	)
	switch cfg.Notifier {
	case "smtp":
		mailer := infra.NewMailer(cfg)
		breakers["smtp"] = mailer.Breaker()
		notificador = infra.NewSMTPNotifier(mailer)
	case "queue":
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		mailer := infra.NewMailer(cfg)
		breakers["smtp"] = mailer.Breaker()
		notificador = worker.NewQueueNotifier(rdb)
		wait := worker.StartWorkerPool(gctx, rdb, cfg.WorkerPoolSize, worker.NewEmailWorker(mailer, rdb))
		g.Go(func() error { wait(); return nil })
	case "kafka":
		kn := infra.NewKafkaNotifier(infra.NewKafkaWriter(cfg.Brokers(), cfg.KafkaTopic))
		defer kn.Close()
		notificador = kn
	default:
		notificador = infra.NewConsoleNotifier(os.Stdout)
	}
	if cfg.ReportStoragePath != "" {
		notificador = infra.NewArquivoRelatorios(notificador, cfg.ReportStoragePath)
	}
	log.Info().Str("notifier", cfg.Notifier).Str("relatorios", cfg.ReportStoragePath).Msg("notifier ready")

	// ── Services ─────────────────────────────────────────────────────────────
	thresholds, _ := cfg.Thresholds() // validated by config.Load
	valorAlto, _ := cfg.ValorAlto()

	atasSvc := service.NewAtaService(repo, cfg.VencimentoAlertDays, now)
	alertasSvc := service.NewAlertaService(notificador, service.AlertaConfig{
		Thresholds:    thresholds,
		PosVencimento: cfg.PostExpiryDays,
		LimiteAVencer: cfg.VencimentoAlertDays,
		ValorAlto:     valorAlto,
		RetencaoDias:  cfg.AlertHistoryRetentionDays,
		MaxHistorico:  cfg.AlertHistoryMax,
		Destinatarios: cfg.Recipients(),
		Now:           now,
	})

	// ── Scheduler ────────────────────────────────────────────────────────────
	agendador, err := worker.NewAgendador(atasSvc, alertasSvc, worker.AgendadorConfig{
		Location:      loc,
		DiarioHora:    cfg.DailyCheckHour,
		DiarioMinuto:  cfg.DailyCheckMinute,
		SemanalDia:    cfg.WeeklyCheckWeekday,
		SemanalHora:   cfg.WeeklyCheckHour,
		SemanalMinuto: cfg.WeeklyCheckMinute,
		MensalDia:     cfg.MonthlyCheckDay,
		MensalHora:    cfg.MonthlyCheckHour,
		MensalMinuto:  cfg.MonthlyCheckMinute,
	})
	if err != nil {
		return err
	}
	if cfg.SchedulerEnabled {
		agendador.Start(gctx)
	}

	// ── HTTP ─────────────────────────────────────────────────────────────────
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)
	limiter.StartPurge(gctx.Done())

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: router.New(cfg, router.Deps{
			Atas:      atasSvc,
			Alertas:   alertasSvc,
			Agendador: agendador,
			Store:     repo,
			Redis:     rdb,
			Breakers:  breakers,
			Limiter:   limiter,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		log.Info().Int("port", cfg.Port).Msg("atasrp backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown on SIGINT / SIGTERM or when any member fails
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := agendador.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("scheduler did not stop in time")
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
