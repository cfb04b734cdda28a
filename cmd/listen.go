package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dialog-collator/feature/bus"
	"dialog-collator/feature/subscription"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run the registration message bus listener",
	Long: `Subscribes to the registration channel and turns every published
registration into a shared-line SUBSCRIBE. Run it next to "start" with
sip.registry=redis so both processes see the same live subscriptions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runListen(ctx)
	},
}

func runListen(ctx context.Context) error {
	// 1. Load Configuration, Logger and Redis
	rt, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	logg := rt.logger

	if rt.cfg.SIP.Registry != "redis" {
		logg.Warn("Subscription registry is process local, live subscriptions are not shared with the collator",
			zap.String("registry", rt.cfg.SIP.Registry))
	}

	// 2. SIP transport
	if err := rt.openTransport(); err != nil {
		return err
	}
	subscriber := subscription.NewEmitter(rt.client, rt.subscriptionOptions(), rt.metrics, logg.Named("subscribe"))

	// 3. Bus listener
	listener, err := bus.NewListener(rt.cfg.Bus, rt.universal(), logg.Named("bus"))
	if err != nil {
		return err
	}
	defer listener.Close()

	worker := bus.NewWorker(subscriber, rt.metrics, logg.Named("bus"))
	logg.Info("Listening for registrations",
		zap.String("driver", rt.cfg.Bus.Driver),
		zap.String("channel", rt.cfg.Bus.Channel),
	)
	return listener.Listen(ctx, worker.Handle)
}

func init() {
	RootCmd.AddCommand(listenCmd)
}
