package main

import (
	"FrameForge/internal/config"
	"FrameForge/internal/pipeline"
	"FrameForge/internal/storage"
	"FrameForge/internal/video"
	"FrameForge/pkg/plugin"
	"FrameForge/pkg/plugin/builtin"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const minArgs = 3

// errReported marks a failure whose message was already printed
var errReported = errors.New("reported")

type app struct {
	stdout     io.Writer
	configFile string
	pluginDir  string
	list       bool

	newOpener func(video.Options, *zap.Logger) (video.Opener, error)
}

func newApp(stdout io.Writer) *app {
	return &app{
		stdout:    stdout,
		newOpener: video.NewOpener,
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frameforge <input> <output> <effect> [effect...]",
		Short: "Apply a chain of frame effects to a video",
		Long: `frameforge decodes the input video, applies the named effects to every
frame in the given order and encodes the result to the output path.
Effects are plugins discovered in the plugin directory at startup.`,
		Example:           "  frameforge input.mp4 output.mp4 grayscale blur",
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}

	cmd.SetOut(a.stdout)
	cmd.Flags().StringVar(&a.configFile, "config", "config.yaml", "path to the configuration file (optional)")
	cmd.Flags().StringVar(&a.pluginDir, "plugins", "", "plugin directory, overrides plugins.dir from the configuration")
	cmd.Flags().BoolVar(&a.list, "list", false, "list discovered plugins and exit")
	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	if !a.list && len(args) < minArgs {
		return cmd.Usage()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.NewConfigLoader(zap.NewNop()).Load(a.configFile)
	if err != nil {
		a.printf("unexpected failure: %v\n", err)
		return errReported
	}
	if a.pluginDir != "" {
		cfg.Plugins.Dir = a.pluginDir
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		a.printf("unexpected failure: %v\n", err)
		return errReported
	}
	defer func(logger *zap.Logger) {
		// syncing stderr fails with EINVAL on some terminals
		if err := logger.Sync(); err != nil && cfg.Logging.Output == "file" {
			log.Printf("error syncing logger: %v", err)
		}
	}(logger)

	registry, err := discover(cfg, logger)
	if err != nil {
		a.printf("unexpected failure: %v\n", err)
		return errReported
	}

	if a.list {
		for _, name := range registry.List() {
			entry, _ := registry.Get(name)
			a.printf("%s (%s)\n", name, entry.TypeName)
		}
		return nil
	}

	input, output, effects := args[0], args[1], args[2:]
	a.printf("Processing: %s\n", input)
	a.printf("Effects: %s\n", strings.Join(effects, ", "))

	if err := a.convert(ctx, cfg, logger, registry, input, output, effects); err != nil {
		var openErr *pipeline.StreamOpenError
		if errors.As(err, &openErr) {
			a.printf("could not open stream: %v\n", err)
		} else {
			a.printf("unexpected failure: %v\n", err)
		}
		logger.Error("Run failed", zap.Error(err))
		return errReported
	}
	return nil
}

func discover(cfg *config.Config, logger *zap.Logger) (*plugin.Registry, error) {
	catalog, err := builtin.NewCatalog()
	if err != nil {
		return nil, err
	}
	discoverer := plugin.NewDiscoverer(logger,
		plugin.NewManifestLoader(catalog),
		plugin.SharedObjectLoader{},
	)
	return discoverer.Discover(cfg.Plugins.Dir), nil
}

func (a *app) convert(ctx context.Context, cfg *config.Config, logger *zap.Logger, registry *plugin.Registry, input, output string, effects []string) error {
	opener, err := a.newOpener(video.Options{
		Backend:     cfg.Video.Backend,
		FFMpegPath:  cfg.Video.FFMpegPath,
		FFProbePath: cfg.Video.FFProbePath,
	}, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := pipeline.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	p := pipeline.NewPipeline(registry, opener, logger, pipeline.Options{
		Codecs:        cfg.Video.Codecs,
		EffectTimeout: cfg.Pipeline.EffectTimeout,
		Metrics:       metrics,
	})
	summary, err := p.Run(ctx, input, output, effects)
	if err != nil {
		return err
	}

	if cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg); err != nil {
			logger.Warn("Failed to write metrics textfile", zap.String("file", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	store, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	if store != nil {
		publisher := pipeline.NewPublisher(store, cfg.Storage, cfg.Pipeline.Retry, logger)
		key, err := publisher.Publish(ctx, summary)
		if err != nil {
			return err
		}
		a.printf("Published: %s\n", key)
	}

	a.printf("Done: %s (size: %.2fMB)\n", summary.Output, summary.SizeMB())
	return nil
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.stdout, format, args...)
}
