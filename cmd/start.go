package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dialog-collator/core/database"
	"dialog-collator/core/loader"
	"dialog-collator/core/logger"
	"dialog-collator/core/middleware/auth"
	"dialog-collator/core/middleware/rayid"
	"dialog-collator/core/sip"
	"dialog-collator/core/storage"
	"dialog-collator/feature/archive"
	"dialog-collator/feature/bus"
	"dialog-collator/feature/collator"
	"dialog-collator/feature/collator/dialoginfo"
	"dialog-collator/feature/cycle"
	"dialog-collator/feature/notify"
	"dialog-collator/feature/publish"
	"dialog-collator/feature/reginfo"
	"dialog-collator/feature/sharedline"
	"dialog-collator/feature/status"
	"dialog-collator/feature/subscription"
	"dialog-collator/feature/watchers"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// providers lists the collation providers compiled into the binary.
func providers() *collator.Registry {
	r := collator.NewRegistry()
	r.Register(dialoginfo.Name, dialoginfo.New)
	return r
}

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the dialog collator",
	Long: `Starts the SIP NOTIFY listener, the check and collate passes, the
shared-line poller and the HTTP operations API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runStart(ctx)
	},
}

func runStart(ctx context.Context) error {
	// 1. Load Configuration, Logger and Redis
	rt, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logg := rt.cfg, rt.logger

	if err := cfg.Cycle.Validate(); err != nil {
		return err
	}

	// 2. Verify the watcher store
	if err := database.Ping(cfg.Database); err != nil {
		return fmt.Errorf("watcher store unreachable: %w", err)
	}
	source := watchers.NewSource(cfg.Database, nil, logg.Named("watchers"))
	if err := source.CheckSchema(); err != nil {
		return err
	}

	// 3. SIP transport and collation provider
	if err := rt.openTransport(); err != nil {
		return err
	}
	binding, err := providers().Open(cfg.Collator, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := binding.Close(); err != nil {
			logg.Warn("Closing collation provider failed", zap.Error(err))
		}
	}()

	// 4. Emitters, scheduler and NOTIFY handlers
	subscriber := subscription.NewEmitter(rt.client, rt.subscriptionOptions(), rt.metrics, logg.Named("subscribe"))
	publisher := publish.NewEmitter(rt.client, cfg.SIP.PublishRoute(), rt.metrics, logg.Named("publish"))
	parser := reginfo.NewParser(logg.Named("reginfo"), rt.metrics)

	var archiver cycle.Archiver
	var documents status.Documents
	if cfg.Storage.ArchiveEnabled {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}
		if err := storage.EnsureBucket(ctx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return err
		}
		a := archive.New(store, cfg.Storage, logg.Named("archive"))
		archiver, documents = a, a
	}

	scheduler := cycle.NewScheduler(cfg.Cycle, source, binding.Handle, subscriber, publisher, archiver, rt.metrics, logg.Named("cycle"))

	server, err := sip.NewServer(rt.ua, logg.Named("notify"), rt.metrics)
	if err != nil {
		return fmt.Errorf("failed to create sip server: %w", err)
	}
	handlers := notify.NewHandlers(binding.Handle, publisher, subscriber, rt.client, parser, notify.Options{
		CollateEnabled: cfg.Cycle.CollateEnabled,
		PollEnabled:    cfg.SharedLine.PollEnabled,
		HeaderName:     cfg.SharedLine.HeaderName,
	}, logg.Named("notify"))
	handlers.Register(server)

	entities := sharedline.NewStore(cfg.Database, nil, logg.Named("sharedline"))
	lookup := sharedline.NewLookup(entities, cfg.SharedLine.CacheTTL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.ListenAndServe(gctx, cfg.SIP.ListenNetwork, cfg.SIP.ListenAddr) })
	g.Go(func() error { return scheduler.Run(gctx) })

	if cfg.SharedLine.PollEnabled {
		poller := sharedline.NewPoller(entities, subscriber, cfg.SharedLine.PollInterval(), logg.Named("sharedline"))
		g.Go(func() error { return poller.Run(gctx) })
	}

	// 5. Message bus, when it is not running as its own process
	if cfg.Bus.Enabled && !cfg.Bus.Dedicated {
		listener, err := bus.NewListener(cfg.Bus, rt.universal(), logg.Named("bus"))
		if err != nil {
			return err
		}
		defer listener.Close()
		worker := bus.NewWorker(subscriber, rt.metrics, logg.Named("bus"))
		g.Go(func() error { return listener.Listen(gctx, worker.Handle) })
	}

	// 6. HTTP operations API
	if cfg.Server.Enabled {
		checks := []status.Check{{Name: "database", Probe: func(context.Context) error { return database.Ping(cfg.Database) }}}
		if rt.redis != nil {
			checks = append(checks, status.Check{Name: "redis", Probe: rt.redis.Health})
		}

		app := newHTTPApp(cfg.Server.ApiKey, logg)
		mgr := loader.NewManager()
		mgr.Register(status.NewFeature(status.Deps{
			Watchers:    source,
			Passes:      scheduler,
			SharedLines: lookup,
			Documents:   documents,
			Parser:      parser,
			Checks:      checks,
		}, cfg.Metrics, rt.registry, logg.Named("http")))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			return err
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		g.Go(func() error {
			logg.Info("Starting HTTP server", zap.String("addr", cfg.Server.Address()))
			return app.Listen(cfg.Server.Address())
		})
		g.Go(func() error {
			<-gctx.Done()
			return app.Shutdown()
		})
	}

	// 7. Run until a signal or the first failure
	logg.Info("Dialog collator started",
		zap.String("provider", binding.Provider.Name()),
		zap.String("server_address", cfg.SIP.ServerAddress),
	)
	err = g.Wait()
	logg.Info("Shutting down")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newHTTPApp builds the fiber app with the request id, request logging and
// API key middleware.
func newHTTPApp(apiKey string, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID must be first to trace everything
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	app.Use(auth.New(auth.Config{ApiKey: apiKey, Skip: []string{status.HealthPath}}))
	return app
}

func init() {
	RootCmd.AddCommand(startCmd)
}
