package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ipso-client-coap/config"
	"ipso-client-coap/ipso"
	"ipso-client-coap/lwm2m"
	"ipso-client-coap/sampler"
)

const shutdownTimeout = 5 * time.Second

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Once bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulated device",
		Long: `Register the configured IPSO objects, feed them simulated readings every
sampler interval and deliver the resulting changes to the enabled sinks.
Runs until interrupted unless --once is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync fails on some platforms

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDevice(ctx, cfg, logger, opts.Once)
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "sample and deliver once, then exit")

	return cmd
}

func runDevice(ctx context.Context, cfg *config.Config, logger *zap.Logger, once bool) (err error) {
	client := lwm2m.NewClient(lwm2m.ClientOptions{
		MaxObjects:  cfg.Runtime.MaxObjects,
		NotifyQueue: cfg.Runtime.NotifyQueue,
		Logger:      logger.Named("runtime"),
	})

	outputs := logger.Named("digital_output")
	cat, err := ipso.NewCatalog(cfg.Objects, func(kind ipso.OutputChange, index int, value bool) {
		outputs.Info("output changed", zap.Stringer("kind", kind), zap.Int("index", index), zap.Bool("value", value))
	}, logger.Named("catalog"))
	if err != nil {
		return err
	}
	if err := cat.Register(client); err != nil {
		return fmt.Errorf("registering objects: %w", err)
	}

	sinks, closers, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeAll(closers); cerr != nil && err == nil {
			err = cerr
		}
	}()

	poller := sampler.NewPoller(client, sampler.CatalogBindings(cat, cfg.Sampler.Seed), sinks, cfg.Sampler.Interval, logger.Named("sampler"))

	logger.Info("device running",
		zap.String("device", cfg.Device.ID),
		zap.Int("objects", len(cat.Objects())),
		zap.Int("sinks", len(sinks)))

	if once {
		return poller.Tick(ctx)
	}

	if err := poller.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	poller.Stop()

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := poller.Flush(flushCtx); err != nil {
		logger.Warn("final flush failed", zap.Error(err))
	}
	logger.Info("device stopped")
	return nil
}
