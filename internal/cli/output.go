// Package cli implements the shashin command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/hyperjump/shashin/pkg/utils"
)

// OutputFormat selects how command results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is indented JSON for other programs.
	OutputJSON OutputFormat = "json"
)

func outputFormat(asJSON bool) OutputFormat {
	if asJSON {
		return OutputJSON
	}
	return OutputText
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "Found %d results in %dms\n", response.Total, response.QueryTime)
	for _, r := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f (Keyword: %.4f, Semantic: %.4f)\n",
			r.Rank, r.Score, r.KeywordScore, r.SemanticScore)
		fmt.Fprintf(w, "#%d %s %s\n", r.ID, r.Date, r.ImagePath)
		fmt.Fprintf(w, "%s\n", utils.Truncate(r.Caption, 200))
	}
	return nil
}

// WriteBuildResult writes a build summary.
func WriteBuildResult(w io.Writer, res *pipeline.BuildResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "Built %d assets into %s (%d thumbnails, %d marker lines)\n",
		res.Assets, res.Document, res.Thumbnails, res.Markers)
	if len(res.Undated) > 0 {
		fmt.Fprintf(w, "Left out (no date): %s\n", strings.Join(res.Undated, ", "))
	}
	return nil
}

// WriteEmbedResult writes the synchronization report.
func WriteEmbedResult(w io.Writer, res *pipeline.EmbedResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	r := res.Report
	fmt.Fprintf(w, "Processed: %d\nSkipped: %d\nErrors: %d\nTotal embeddings: %d\n",
		r.Processed, r.Skipped, r.Errors, r.Total)
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  failed #%d (%s): %s\n", f.ID, f.Key, f.Reason)
	}
	if len(r.Drifted) > 0 {
		fmt.Fprintf(w, "Drifted (reused, dates changed): %s\n", joinInts(r.Drifted))
	}
	if len(res.MissingThumbnails) > 0 {
		fmt.Fprintf(w, "Missing thumbnails: %s\n", joinInts(res.MissingThumbnails))
	}
	fmt.Fprintf(w, "Saved to %s\n", res.IndexPath)
	return nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
