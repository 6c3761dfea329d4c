package cli

import (
	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	embedSite        string
	embedMapping     string
	embedOutput      string
	embedToken       string
	embedIncremental bool
	embedStrict      bool
	embedJSON        bool
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed gallery captions into the search index",
	Long: `Embeds the caption of every asset of the last build and rewrites the index.
With --incremental, assets already in the index are reused without a remote call.
Per-asset failures are reported and do not stop the run.`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	f := embedCmd.Flags()
	f.StringVar(&embedSite, "site", "", "site directory holding thumbnails and the manifest")
	f.StringVar(&embedMapping, "mapping", "", "caption mapping JSON file")
	f.StringVar(&embedOutput, "output", "", "embedding index file")
	f.StringVar(&embedToken, "token", "", "embedding API token (default: $HF_TOKEN or .env)")
	f.BoolVar(&embedIncremental, "incremental", false, "reuse embeddings already in the index")
	f.BoolVar(&embedStrict, "strict", false, "fail when stored embeddings drifted from the manifest")
	f.BoolVar(&embedJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyGalleryFlags(cfg, "", embedSite, embedMapping)
	overridePath(&cfg.Embedding.OutputFile, embedOutput)
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
	res, err := pipeline.New(cfg, pipeline.WithLogger(logger)).Embed(ctx, pipeline.EmbedOptions{
		Token:       embedToken,
		Incremental: embedIncremental,
		Strict:      embedStrict,
	})
	if err != nil {
		return err
	}
	return WriteEmbedResult(cmd.OutOrStdout(), res, outputFormat(embedJSON))
}
