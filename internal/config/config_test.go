package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollectCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "shelf"}
	RegisterFlags(root)
	cmd := &cobra.Command{Use: "collect", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterCollectFlags(cmd)
	root.AddCommand(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func newEnrichCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "shelf"}
	RegisterFlags(root)
	cmd := &cobra.Command{Use: "enrich", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterEnrichFlags(cmd)
	root.AddCommand(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

// chdirTemp isolates a test from .env and shelf.yaml files in the repo.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, DefaultSubpageTimeout, cfg.HTTP.SubpageTimeout)
	assert.Equal(t, DefaultCategoryURL, cfg.Collect.CategoryURL)
	assert.Equal(t, 30, cfg.Collect.MaxListings)
	assert.Equal(t, uint64(42), cfg.Collect.Seed)
	assert.Equal(t, 3*time.Second, cfg.Collect.DelayMin)
	assert.Equal(t, 5*time.Second, cfg.Collect.DelayMax)
	assert.Equal(t, "data/product-data.csv", cfg.Collect.Output)
	assert.Equal(t, "data/product-data.csv", cfg.Enrich.Input)
	assert.Equal(t, "data/product-data-enriched.csv", cfg.Enrich.Output)
	assert.Equal(t, 10, cfg.Enrich.SampleMin)
	assert.Equal(t, 14, cfg.Enrich.SampleMax)
	assert.Equal(t, "li.product", cfg.Collect.Selectors.Product)
	assert.Equal(t, "Product contains:", cfg.Collect.Selectors.IngredientStart)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_EnvCompatNames(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CSE_ID", "engine-123")
	t.Setenv("CSE_API_KEY", "key-456")
	t.Setenv("SHELF_COLLECT_MAX_LISTINGS", "12")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "engine-123", cfg.Search.EngineID)
	assert.Equal(t, "key-456", cfg.Search.APIKey)
	assert.Equal(t, 12, cfg.Collect.MaxListings)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SHELF_ENRICH_SAMPLE_MAX=20\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SHELF_ENRICH_SAMPLE_MAX") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Enrich.SampleMax)
}

func TestLoad_ConfigFileThenFlags(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collect:
  max_listings: 8
  seed: 7
  delay_min: 1s
  delay_max: 2s
http:
  subpage_timeout: 0s
`), 0644))

	cmd := newCollectCmd(t, "--config", path, "--seed", "99", "-H", "Cookie: a=b", "-v")
	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, 8, cfg.Collect.MaxListings)
	assert.Equal(t, uint64(99), cfg.Collect.Seed)
	assert.Equal(t, time.Second, cfg.Collect.DelayMin)
	assert.Equal(t, time.Duration(0), cfg.HTTP.SubpageTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "a=b", headerValue(cfg.HTTP.Headers, "Cookie"))
}

func headerValue(h map[string]string, name string) string {
	for k, v := range h {
		if http.CanonicalHeaderKey(k) == name {
			return v
		}
	}
	return ""
}

func TestLoad_EnrichFlags(t *testing.T) {
	chdirTemp(t)

	cmd := newEnrichCmd(t, "-i", "in.csv", "-o", "out.csv", "--sample-min", "2", "--sample-max", "4", "--engine-id", "cx")
	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "in.csv", cfg.Enrich.Input)
	assert.Equal(t, "out.csv", cfg.Enrich.Output)
	assert.Equal(t, 2, cfg.Enrich.SampleMin)
	assert.Equal(t, 4, cfg.Enrich.SampleMax)
	assert.Equal(t, "cx", cfg.Search.EngineID)
	assert.Equal(t, DefaultProductsPath, cfg.Collect.Output, "enrich -o must not touch collect output")
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	cmd := newCollectCmd(t, "--config", filepath.Join(dir, "nope.yaml"))
	_, err := Load(cmd)
	assert.Error(t, err)
}

func TestLoad_BadHeader(t *testing.T) {
	chdirTemp(t)
	_, err := Load(newCollectCmd(t, "-H", "no-colon"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad mode", []string{"--mode", "spa"}},
		{"bad url", []string{"--category-url", "ftp://example.com"}},
		{"zero listings", []string{"--max-listings", "0"}},
		{"inverted delay", []string{"--delay-min", "5s", "--delay-max", "1s"}},
		{"negative subpage timeout", []string{"--subpage-timeout", "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newCollectCmd(t, tt.args...))
			assert.Error(t, err)
		})
	}

	_, err := Load(newEnrichCmd(t, "--sample-min", "5", "--sample-max", "5"))
	assert.Error(t, err)
}
