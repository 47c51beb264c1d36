package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/jobs"
	"github.com/robalobadob/hangman/internal/notify"
	"github.com/robalobadob/hangman/internal/service"
	"github.com/robalobadob/hangman/internal/stats"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dict, err := words.Load(cfg.WordsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	log.Info().Interface("words", dict.Stats()).Msg("word lists loaded")

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DatabaseType).Msg("failed to open store")
	}
	defer st.Close()

	var cache stats.Cache = stats.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rc, err := stats.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		defer rc.Close()
		cache = rc
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SESFromEmail != "" {
		if mailer, err = notify.NewSESMailer(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName); err != nil {
			log.Fatal().Err(err).Msg("failed to configure ses")
		}
	}

	runner := jobs.NewRunner()
	queue, err := startQueue(ctx, cfg, runner)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start job queue")
	}

	svc := service.New(service.Deps{
		Store:  st,
		Words:  dict,
		Jobs:   queue,
		Cache:  cache,
		Mailer: mailer,
	})
	svc.RegisterJobs(runner)

	jobs.Every(ctx, queue, jobs.SendReminders, cfg.ReminderInterval)
	jobs.Every(ctx, queue, jobs.CacheAverageAttempts, cfg.StatsRefreshInterval)

	srv := httpserver.New(svc)
	log.Info().Str("port", cfg.Port).Msg("starting hangman server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DatabaseType {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.OpenSQLite(ctx, cfg.DatabasePath)
	case "postgres":
		return store.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown DB_TYPE %q", cfg.DatabaseType)
}

// startQueue uses RabbitMQ when AMQP_URL is set, otherwise an in-process worker.
func startQueue(ctx context.Context, cfg *config.Config, r *jobs.Runner) (jobs.Queue, error) {
	if cfg.AMQPURL == "" {
		q := jobs.NewLocalQueue(r, 64)
		q.Start(ctx)
		return q, nil
	}
	q, err := jobs.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue, r)
	if err != nil {
		return nil, err
	}
	if err := q.Start(ctx); err != nil {
		_ = q.Close()
		return nil, err
	}
	go func() {
		<-ctx.Done()
		_ = q.Close()
	}()
	return q, nil
}
