package cli

import (
	"context"

	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/hyperjump/shashin/internal/server"
	"github.com/hyperjump/shashin/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchEmbed bool
	watchServe bool
	watchToken string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the gallery whenever photos or captions change",
	Long: `Builds once, then watches the source directory and the caption mapping.
Changes are debounced into a single rebuild; rebuilds never overlap.
With --embed each rebuild is followed by an incremental embed, and with
--serve the site and search API are served and refreshed after each run.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.BoolVar(&watchEmbed, "embed", false, "run an incremental embed after each rebuild (default from config)")
	f.BoolVar(&watchServe, "serve", false, "also serve the site and search API")
	f.StringVar(&watchToken, "token", "", "embedding API token (default: $HF_TOKEN or .env)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	p := pipeline.New(cfg, pipeline.WithLogger(logger))
	embed := watchEmbed || cfg.Watch.Embed

	var srv *server.Server
	if watchServe {
		srv = server.NewServer(nil, p.Storage(), cfg, logger)
		defer srv.SetEngine(nil)
	}

	rebuild := func(ctx context.Context) error {
		res, err := p.Build(ctx)
		if err != nil {
			return err
		}
		logger.Info("rebuilt", zap.Int("assets", res.Assets), zap.String("run_id", res.RunID))
		if embed {
			if _, err := p.Embed(ctx, pipeline.EmbedOptions{Token: watchToken, Incremental: true}); err != nil {
				return err
			}
		}
		if srv != nil {
			srv.SetEngine(openEngine(ctx, p, watchToken, logger))
		}
		return nil
	}

	w := watcher.NewWatcher(cfg.Gallery.SourceDir, cfg.Gallery.Extensions, rebuild,
		watcher.WithLogger(logger),
		watcher.WithDebounce(cfg.Watch.Debounce),
		watcher.WithFiles(cfg.Gallery.MappingFile, cfg.Gallery.TemplatePath()),
	)
	if err := w.Trigger(ctx); err != nil {
		logger.Error("initial build failed", zap.Error(err))
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Gallery.SourceDir)

	if srv != nil {
		return serveUntilDone(ctx, srv, logger)
	}
	<-ctx.Done()
	return nil
}
