package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/hyperjump/shashin/internal/search"
	"github.com/hyperjump/shashin/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveHost  string
	servePort  int
	serveSite  string
	serveToken string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site directory and the caption search API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveHost, "host", "", "listen host (default from config)")
	f.IntVar(&servePort, "port", 0, "listen port (default from config)")
	f.StringVar(&serveSite, "site", "", "site directory to serve")
	f.StringVar(&serveToken, "token", "", "embedding API token for semantic search")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyGalleryFlags(cfg, "", serveSite, "")
	override(&cfg.Server.Host, serveHost)
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	p := pipeline.New(cfg, pipeline.WithLogger(logger))
	srv := server.NewServer(openEngine(ctx, p, serveToken, logger), p.Storage(), cfg, logger)
	defer srv.SetEngine(nil)
	return serveUntilDone(ctx, srv, logger)
}

// openEngine returns nil when there is no index yet; the server answers search with 503.
func openEngine(ctx context.Context, p *pipeline.Pipeline, token string, logger *zap.Logger) *search.Engine {
	engine, err := p.OpenEngine(ctx, token)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoIndex) {
			logger.Warn("search disabled until embed has run")
		} else {
			logger.Error("search engine unavailable", zap.Error(err))
		}
		return nil
	}
	return engine
}

func serveUntilDone(ctx context.Context, srv *server.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
