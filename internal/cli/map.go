package cli

import (
	"github.com/hyperjump/shashin/internal/captions"
	"github.com/hyperjump/shashin/internal/trackmap"
	"github.com/spf13/cobra"
)

var (
	mapGPX     string
	mapImages  string
	mapMapping string
	mapOutput  string
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render GPX tracks with photo popups onto an HTML map",
	Args:  cobra.NoArgs,
	RunE:  runMap,
}

func init() {
	f := mapCmd.Flags()
	f.StringVar(&mapGPX, "gpx", "", "directory of .gpx tracks")
	f.StringVar(&mapImages, "img", "", "directory of popup images")
	f.StringVar(&mapMapping, "mapping", "", "track mapping JSON file")
	f.StringVar(&mapOutput, "output", "", "HTML file to write")
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m := &cfg.Map
	overridePath(&m.GPXDir, mapGPX)
	overridePath(&m.ImageDir, mapImages)
	overridePath(&m.MappingFile, mapMapping)
	overridePath(&m.OutputFile, mapOutput)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	mapping, err := captions.Load(m.MappingFile)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	n, err := trackmap.NewRenderer(m, trackmap.WithLogger(logger)).Generate(ctx, mapping)
	if err != nil {
		return err
	}
	cmd.Printf("Map with %d tracks written to %s\n", n, m.OutputFile)
	return nil
}
