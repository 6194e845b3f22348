package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	dedupRepo "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/dedup/repository"
	dedupService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/dedup/service"
	deliveryRepo "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/repository"
	deliveryService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/service"
	feedService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/feed/service"
	groupingService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/grouping/service"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/source"
	publishService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/publish/service"
	runService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/run/service"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/config"
	httpServer "github.com/reshetovitsme/yandere-telegram-feed/internal/transport/http"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup(cfg *config.Config) (do.Injector, error) {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	// Dedup cache: redis when configured, files otherwise
	do.Provide(injector, func(i do.Injector) (dedupRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.DB.DatabaseURL == "" {
			slog.Warn("db.database_url is empty, using file cache", "storage_path", cfg.DB.StoragePath)
			repo, err := dedupRepo.NewFileStorage(cfg.DB.StoragePath)
			if err != nil {
				return nil, oops.With("storage_path", cfg.DB.StoragePath, "context", "failed to initialize dedup repository").Wrap(err)
			}
			return repo, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		repo, err := dedupRepo.NewRedisStorage(ctx, cfg.DB.DatabaseURL)
		if err != nil {
			return nil, oops.With("context", "failed to initialize redis repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (deliveryRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := deliveryRepo.NewFileStorage(cfg.DB.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.DB.StoragePath, "context", "failed to initialize delivery repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (*source.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return source.New(cfg.Yandere.RSSURL, cfg.Yandere.APIURL), nil
	})

	do.Provide(injector, func(i do.Injector) (*groupingService.Service, error) {
		return groupingService.New(do.MustInvoke[*source.Client](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*dedupService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[dedupRepo.Repository](i)
		return dedupService.New(repo, cfg.CacheTTL(), cfg.Yandere.UpdatedResend), nil
	})

	do.Provide(injector, func(i do.Injector) (*deliveryService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return deliveryService.New(do.MustInvoke[deliveryRepo.Repository](i), cfg.CacheTTL()), nil
	})

	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return feedService.New(do.MustInvoke[*deliveryService.Service](i), cfg.Telegram.ChannelID), nil
	})

	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b, err := bot.New(cfg.Telegram.Token, bot.WithServerURL(cfg.Telegram.APIURL))
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		return b, nil
	})

	do.Provide(injector, func(i do.Injector) (*publishService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender := telegram.NewSender(do.MustInvoke[*bot.Bot](i), cfg.Telegram.ChannelID)
		return publishService.New(sender, telegram.CaptionFormatter{},
			publishService.WithMaxGroupSize(cfg.Telegram.MaxGroupSize),
			publishService.WithSendInterval(cfg.SendInterval()),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*runService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		svc := runService.New(
			do.MustInvoke[*source.Client](i),
			do.MustInvoke[*groupingService.Service](i),
			do.MustInvoke[*dedupService.Service](i),
			do.MustInvoke[*publishService.Service](i),
			cfg.Yandere.ScoreThreshold,
		)
		svc.SetRecorder(do.MustInvoke[*deliveryService.Service](i))
		return svc, nil
	})

	do.Provide(injector, func(i do.Injector) (*runService.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		s, err := runService.NewScheduler(cfg.Core.Scheduler, do.MustInvoke[*runService.Service](i), cfg.Core.RunAtStartup)
		if err != nil {
			return nil, oops.With("context", "failed to create scheduler").Wrap(err)
		}
		return s, nil
	})

	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		server := httpServer.New(cfg,
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*runService.Service](i),
			do.MustInvoke[*runService.Scheduler](i),
		)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Failed to shut down HTTP server", "error", err)
		}
	}

	if scheduler, err := do.Invoke[*runService.Scheduler](injector); err == nil && scheduler != nil {
		scheduler.Stop()
	}

	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	if repo, err := do.Invoke[dedupRepo.Repository](injector); err == nil && repo != nil {
		if err := repo.Close(); err != nil {
			return oops.With("context", "failed to close dedup repository").Wrap(err)
		}
	}

	return nil
}
