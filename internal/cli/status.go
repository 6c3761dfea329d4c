package cli

import (
	"fmt"
	"strings"

	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/hyperjump/shashin/internal/storage"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the manifest, the index and the thumbnails",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

// Status summarizes the generated site.
type Status struct {
	Assets         int    `json:"assets"`
	BuiltAt        string `json:"built_at,omitempty"`
	Embeddings     int    `json:"embeddings"`
	Model          string `json:"model,omitempty"`
	EmbeddedAt     string `json:"embedded_at,omitempty"`
	Dimensions     int    `json:"dimensions"`
	Thumbnails     int    `json:"thumbnails"`
	ThumbnailBytes int64  `json:"thumbnail_bytes"`
	DataBytes      int64  `json:"data_bytes"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p := pipeline.New(cfg)
	ctx := cmd.Context()

	var st Status
	manifest, err := p.Storage().LoadManifest(ctx)
	if err != nil {
		return err
	}
	if manifest != nil {
		st.Assets = len(manifest.Assets)
		st.BuiltAt = manifest.GeneratedAt
	}
	idx, err := p.Storage().LoadIndex(ctx)
	if err != nil {
		return err
	}
	if idx != nil {
		st.Embeddings = len(idx.Embeddings)
		st.Model = idx.Model
		st.EmbeddedAt = idx.GeneratedAt
		st.Dimensions = idx.Dimensions()
	}
	if usage, err := storage.Usage(p.Storage().Paths()...); err == nil {
		st.DataBytes = usage.Bytes
	}
	ext := "." + cfg.Thumbnail.Ext()
	if thumbs, err := storage.MatchingUsage(cfg.Gallery.SiteDir, func(name string) bool {
		return strings.HasSuffix(name, ext)
	}); err == nil {
		st.Thumbnails = thumbs.Files
		st.ThumbnailBytes = thumbs.Bytes
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		return writeJSON(out, st)
	}
	fmt.Fprintf(out, "Assets:      %d (built %s)\n", st.Assets, orNever(st.BuiltAt))
	fmt.Fprintf(out, "Embeddings:  %d (embedded %s)\n", st.Embeddings, orNever(st.EmbeddedAt))
	if st.Model != "" {
		fmt.Fprintf(out, "Model:       %s (%d dimensions)\n", st.Model, st.Dimensions)
	}
	fmt.Fprintf(out, "Thumbnails:  %d (%d bytes)\n", st.Thumbnails, st.ThumbnailBytes)
	fmt.Fprintf(out, "Data files:  %d bytes\n", st.DataBytes)
	return nil
}

func orNever(ts string) string {
	if ts == "" {
		return "never"
	}
	return ts
}
