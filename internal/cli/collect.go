package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/law-makers/shelf/internal/catalog"
	"github.com/law-makers/shelf/internal/config"
	"github.com/law-makers/shelf/internal/runctx"
	"github.com/law-makers/shelf/internal/table"
	"github.com/law-makers/shelf/internal/ui"
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect product listings from a category page",
	Long: `Fetches the category page, shuffles its listings with a fixed seed and
keeps at most --max-listings of them. Each listing becomes one row with its
ingredients read from the product page. Listings whose text cannot be split
into brand, name and size are skipped.

The output file is never overwritten.`,
	Example: `  # Collect with the defaults into data/product-data.csv
  shelf collect

  # Fewer listings, another seed
  shelf collect --max-listings 10 --seed 7 -o data/sample.csv

  # Render the category page in Chrome
  shelf collect --mode browser`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	config.RegisterCollectFlags(collectCmd)
}

type collectSummary struct {
	RunID    string         `json:"run_id"`
	URL      string         `json:"url"`
	Output   string         `json:"output"`
	Category *string        `json:"category"`
	Found    int            `json:"found"`
	Selected int            `json:"selected"`
	Records  int            `json:"records"`
	Skipped  map[string]int `json:"skipped"`
	Seconds  float64        `json:"seconds"`
}

func runCollect(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	cfg := a.Config.Collect

	ctx, run := runctx.Start(cmd.Context(), "collect")

	if err := table.EnsureAbsent(cfg.Output); err != nil {
		return runctx.Wrap(ctx, err)
	}

	run.Logger.Info().
		Str("url", cfg.CategoryURL).
		Str("mode", cfg.Mode).
		Uint64("seed", cfg.Seed).
		Int("max_listings", cfg.MaxListings).
		Msg("Collection started")

	res, err := a.NewCollector(&run.Logger).Collect(ctx, cfg.CategoryURL)
	if err != nil {
		return runctx.Wrap(ctx, err)
	}

	if err := a.Store.Write(cfg.Output, table.FromRecords(res.Records)); err != nil {
		return runctx.Wrap(ctx, err)
	}

	summary := collectSummary{
		RunID:    run.ID,
		URL:      cfg.CategoryURL,
		Output:   cfg.Output,
		Category: res.Category,
		Found:    res.Found,
		Selected: res.Selected,
		Records:  len(res.Records),
		Skipped:  skippedByReason(res.Skipped),
		Seconds:  run.Elapsed().Seconds(),
	}
	if a.Config.Log.JSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
	}
	if !a.Config.Log.Quiet {
		printCollectSummary(cmd.OutOrStdout(), summary)
	}
	return nil
}

func skippedByReason(m map[catalog.SkipReason]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func printCollectSummary(w io.Writer, s collectSummary) {
	fmt.Fprintf(w, "%s %d of %d listings saved to %s\n",
		ui.Success("✓"), s.Records, s.Selected, ui.Bold(s.Output))
	if s.Category != nil {
		fmt.Fprintf(w, "  category: %s\n", *s.Category)
	}
	fmt.Fprintf(w, "  found %d listings on the page, took %.1fs\n", s.Found, s.Seconds)

	reasons := make([]string, 0, len(s.Skipped))
	for r := range s.Skipped {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "  %s %d skipped: %s\n", ui.Warn("!"), s.Skipped[r], r)
	}
}
