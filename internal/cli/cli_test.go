package cli

import (
	"bytes"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/photos/photostest"
	"github.com/hyperjump/shashin/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args after resetting every flag to its default.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// writeProject lays out photos, captions, a template and a config file; it returns the config path.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "photos")
	site := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.MkdirAll(site, 0755))
	photostest.WriteJPEG(t, filepath.Join(src, "a.jpg"), 20, 20, color.RGBA{R: 255, A: 255}, "2024:05:02 10:00:00")
	photostest.WriteJPEG(t, filepath.Join(src, "b.jpg"), 20, 20, color.RGBA{G: 255, A: 255}, "2024:05:01 10:00:00")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mapping.json"),
		[]byte(`{"01/05/2024": "Asparagus soup", "02/05/2024": ["Rhubarb pie", "dessert"]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(site, "food_backup.md"), []byte("# Food\nINSERT\n"), 0644))

	cfg := `gallery:
  source_dir: photos
  site_dir: site
  mapping_file: mapping.json
thumbnail:
  format: jpeg
  size: 16
embedding:
  pause_every: -1
`
	path := filepath.Join(dir, "shashin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestVersionCmd(t *testing.T) {
	original := version
	version = "test-1.2.3"
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shashin version test-1.2.3")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "embed", "search", "serve", "watch", "map", "status", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestBuildCmd(t *testing.T) {
	cfgPath := writeProject(t)
	dir := filepath.Dir(cfgPath)

	out, err := execute(t, "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "Built 2 assets")

	doc, err := os.ReadFile(filepath.Join(dir, "site", "food.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Food\n![Asparagus soup (01/05/2024)](./1.jpg)\n![Rhubarb pie (02/05/2024)](./2.jpg)\n", string(doc))
}

func TestBuildCmdJSON(t *testing.T) {
	cfgPath := writeProject(t)

	out, err := execute(t, "--config", cfgPath, "build", "--json")
	require.NoError(t, err)
	var res pipeline.BuildResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Assets)
	assert.Equal(t, 1, res.Markers)
}

func TestBuildCmdRejectsUnknownFormat(t *testing.T) {
	cfgPath := writeProject(t)

	_, err := execute(t, "--config", cfgPath, "build", "--format", "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported thumbnail format")
}

func TestEmbedCmdRequiresToken(t *testing.T) {
	t.Setenv("HF_TOKEN", "")
	cfgPath := writeProject(t)

	_, err := execute(t, "--config", cfgPath, "embed")
	assert.ErrorIs(t, err, pipeline.ErrMissingToken)
}

func TestSearchCmdWithoutIndex(t *testing.T) {
	cfgPath := writeProject(t)

	_, err := execute(t, "--config", cfgPath, "search", "soup")
	assert.ErrorIs(t, err, pipeline.ErrNoIndex)
}

func TestSearchCmdNoModes(t *testing.T) {
	_, err := execute(t, "search", "--keyword=false", "--semantic=false", "soup")
	require.Error(t, err)
}

func TestStatusCmd(t *testing.T) {
	cfgPath := writeProject(t)
	_, err := execute(t, "--config", cfgPath, "build")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "status", "--json")
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 2, st.Assets)
	assert.Equal(t, 0, st.Embeddings)
	assert.Equal(t, 2, st.Thumbnails)
	assert.NotZero(t, st.DataBytes)

	out, err = execute(t, "--config", cfgPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "embedded never")
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"soup"}, "soup"},
		{[]string{"rhubarb", "pie"}, "rhubarb pie"},
		{[]string{"  "}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buildSearchQuery(tt.args))
	}
}

func TestWriteSearchResultsText(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.SearchResponse{
		Query: "pie",
		Total: 1,
		Results: []*models.SearchResult{
			{ID: 2, ImagePath: "./2.webp", Date: "02/05/2024", Caption: strings.Repeat("x", 250), Score: 0.9, Rank: 1},
		},
	}
	require.NoError(t, WriteSearchResults(&buf, resp, OutputText))
	out := buf.String()
	assert.Contains(t, out, "Found 1 results")
	assert.Contains(t, out, "#2 02/05/2024 ./2.webp")
	assert.Contains(t, out, strings.Repeat("x", 200)+"...")
}

func TestWriteEmbedResultText(t *testing.T) {
	var buf bytes.Buffer
	res := &pipeline.EmbedResult{
		Report: &models.SyncReport{
			Processed: 1, Skipped: 2, Errors: 1, Total: 3,
			Failures: []models.SyncFailure{{ID: 4, Key: "03/05/2024", Reason: "no caption for 03/05/2024"}},
			Drifted:  []int{2, 3},
		},
		IndexPath: "site/embeddings.json",
	}
	require.NoError(t, WriteEmbedResult(&buf, res, OutputText))
	out := buf.String()
	assert.Contains(t, out, "Processed: 1\nSkipped: 2\nErrors: 1\nTotal embeddings: 3\n")
	assert.Contains(t, out, "failed #4 (03/05/2024)")
	assert.Contains(t, out, "Drifted (reused, dates changed): 2, 3")
	assert.Contains(t, out, "Saved to site/embeddings.json")
}
