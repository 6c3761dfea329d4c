package cli

import (
	"path/filepath"

	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	buildSource   string
	buildSite     string
	buildMapping  string
	buildTemplate string
	buildTarget   string
	buildFormat   string
	buildUndated  string
	buildJSON     bool
)

var buildCmd = &cobra.Command{
	Use:   "build [source] [site] [mapping]",
	Short: "Generate thumbnails and the gallery document",
	Long: `Scans the source directory, orders the photos by capture date, writes one
square thumbnail per photo into the site directory and replaces each marker line
of the template with the captioned gallery. All captions are checked first;
a missing caption leaves the site untouched.`,
	Args: cobra.MaximumNArgs(3),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildSource, "source", "", "photo source directory")
	f.StringVar(&buildSite, "site", "", "site directory receiving thumbnails and the document")
	f.StringVar(&buildMapping, "mapping", "", "caption mapping JSON file")
	f.StringVar(&buildTemplate, "template", "", "template document (relative to the site directory)")
	f.StringVar(&buildTarget, "target", "", "generated document (relative to the site directory)")
	f.StringVar(&buildFormat, "format", "", "thumbnail format: webp or jpeg")
	f.StringVar(&buildUndated, "undated", "", "undated photo policy: quarantine or fail")
	f.BoolVar(&buildJSON, "json", false, "output the summary as JSON")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	locations := []string{buildSource, buildSite, buildMapping}
	copy(locations, args)
	applyGalleryFlags(cfg, locations[0], locations[1], locations[2])
	override(&cfg.Gallery.TemplateFile, buildTemplate)
	override(&cfg.Gallery.OutputFile, buildTarget)
	override(&cfg.Thumbnail.Format, buildFormat)
	override(&cfg.Gallery.UndatedPolicy, buildUndated)
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
	res, err := pipeline.New(cfg, pipeline.WithLogger(logger)).Build(ctx)
	if err != nil {
		return err
	}
	return WriteBuildResult(cmd.OutOrStdout(), res, outputFormat(buildJSON))
}

// applyGalleryFlags overrides gallery locations given on the command line.
func applyGalleryFlags(cfg *config.Config, source, site, mapping string) {
	overridePath(&cfg.Gallery.SourceDir, source)
	overridePath(&cfg.Gallery.SiteDir, site)
	overridePath(&cfg.Gallery.MappingFile, mapping)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overridePath(dst *string, v string) {
	if v == "" {
		return
	}
	if abs, err := filepath.Abs(v); err == nil {
		v = abs
	}
	*dst = v
}
