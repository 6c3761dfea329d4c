package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	searchLimit    int
	searchMinScore float64
	searchKeyword  bool
	searchSemantic bool
	searchFuzzy    bool
	searchToken    string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search gallery captions",
	Long: `Runs hybrid keyword and semantic search over the embedded captions.
All arguments are joined into one query, so quoting is optional.
Without an embedding token only keyword search is available.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	f.Float64Var(&searchMinScore, "min-score", 0, "drop results scoring below this value")
	f.BoolVar(&searchKeyword, "keyword", true, "enable keyword search")
	f.BoolVar(&searchSemantic, "semantic", true, "enable semantic search")
	f.BoolVar(&searchFuzzy, "fuzzy", false, "tolerate typos in keyword search")
	f.StringVar(&searchToken, "token", "", "embedding API token (default: $HF_TOKEN or .env)")
	f.BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// buildSearchQuery joins all positional args so multi-word queries work with or without quotes.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch(cmd *cobra.Command, args []string) error {
	text := buildSearchQuery(args)
	if text == "" {
		return errors.New("query cannot be empty")
	}
	if !searchKeyword && !searchSemantic {
		return errors.New("at least one of --keyword and --semantic must be enabled")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	engine, err := pipeline.New(cfg, pipeline.WithLogger(logger)).OpenEngine(ctx, searchToken)
	if err != nil {
		return err
	}
	defer engine.Close()

	response, err := engine.Search(ctx, &models.SearchQuery{
		Query:           text,
		Limit:           searchLimit,
		MinScore:        searchMinScore,
		KeywordEnabled:  searchKeyword,
		SemanticEnabled: searchSemantic,
		Fuzzy:           searchFuzzy,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return WriteSearchResults(cmd.OutOrStdout(), response, outputFormat(searchJSON))
}
