package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/recurring-notifier/internal/api/handlers/notification"
	"github.com/aliskhannn/recurring-notifier/internal/api/router"
	"github.com/aliskhannn/recurring-notifier/internal/api/server"
	"github.com/aliskhannn/recurring-notifier/internal/config"
	"github.com/aliskhannn/recurring-notifier/internal/observer"
	notifmsg "github.com/aliskhannn/recurring-notifier/internal/rabbitmq/handlers/notification"
	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
	"github.com/aliskhannn/recurring-notifier/internal/reconciler"
	notifrepo "github.com/aliskhannn/recurring-notifier/internal/repository/notification"
	notifsvc "github.com/aliskhannn/recurring-notifier/internal/service/notification"
	"github.com/aliskhannn/recurring-notifier/internal/worker"
	"github.com/aliskhannn/recurring-notifier/pkg/email"
	"github.com/aliskhannn/recurring-notifier/pkg/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load scheduler time zone")
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
	}

	q, err := queue.NewNotificationQueue(ch, cfg.RabbitMQ, cfg.Retry)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create notification queue")
	}

	var (
		repo notifrepo.Store
		db   *dbpg.DB
	)

	switch cfg.Storage.Driver {
	case "memory":
		zlog.Logger.Warn().Msg("using in-memory storage, records are lost on restart")
		repo = notifrepo.NewMemoryRepository()
	default:
		opts := &dbpg.Options{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}

		slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
		for _, s := range cfg.Database.Slaves {
			slaveDSNs = append(slaveDSNs, s.DSN())
		}

		db, err = dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
		}

		repo = notifrepo.NewRepository(db)
	}

	dbNum, err := strconv.Atoi(cfg.Redis.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse redis database")
	}

	rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, dbNum)
	if err = rdb.Ping(ctx).Err(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	smtpPort, err := strconv.Atoi(cfg.Email.SMTPPort)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse email smtp port")
	}

	emailClient := email.NewClient(
		cfg.Email.SMTPHost,
		smtpPort,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.RatePerSec,
	)

	var obs *observer.Observer
	if cfg.Telegram.Token != "" {
		obs = observer.New(zlog.Logger, telegram.NewClient(cfg.Telegram.Token), cfg.Telegram.ChatID, cfg.Telegram.RatePerSec)
	} else {
		obs = observer.New(zlog.Logger, nil, "", 0)
	}

	messageHandler := notifmsg.NewHandler(repo, q, emailClient, obs, notifmsg.Config{
		Location:    loc,
		SendTimeout: cfg.Scheduler.SendTimeout,
		Subject:     cfg.Scheduler.Subject,
	})

	service := notifsvc.NewService(repo, q, rdb, loc)
	notifHandler := notification.NewHandler(service, val, cfg)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		err := worker.NewNotifier(q, messageHandler, obs).Run(ctx, cfg.Workers.Count)
		if err != nil && !errors.Is(err, context.Canceled) {
			zlog.Logger.Error().Err(err).Msg("notifier stopped")
			stop()
		}
	}()

	if cfg.Reconciler.Enabled {
		rec := reconciler.New(repo, q, cfg.Reconciler, loc)

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := rec.Run(ctx); err != nil {
				zlog.Logger.Error().Err(err).Msg("reconciler stopped")
			}
		}()
	}

	r := router.New(notifHandler)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// In-flight jobs settle before the channel goes away.
	wg.Wait()

	if db != nil {
		if err := db.Master.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close master DB")
		}

		for i, s := range db.Slaves {
			if err := s.Close(); err != nil {
				zlog.Logger.Error().Err(err).Int("slave", i).Msg("failed to close slave DB")
			}
		}
	}

	if err := ch.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
	}

	if err := conn.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}
