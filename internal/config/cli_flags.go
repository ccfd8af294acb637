package config

import (
	"fmt"

	"github.com/law-makers/shelf/internal/utils/headers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// keyAnnotation maps a flag onto the config key it overrides.
const keyAnnotation = "shelf_config_key"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", false, "Output logs in JSON format")
	pf.String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	pf.String("timeout", DefaultHTTPTimeout.String(), "Timeout for the category page request")
	pf.String("user-agent", "", "Custom user agent string")
	pf.String("config", "", "Path to configuration file (optional)")

	bind(pf, "json", "log.json")
	bind(pf, "proxy", "http.proxy")
	bind(pf, "timeout", "http.timeout")
	bind(pf, "user-agent", "http.user_agent")
}

// RegisterCollectFlags registers the flags of the collect command.
func RegisterCollectFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("category-url", "", "Category page to collect listings from")
	f.Int("max-listings", DefaultMaxListings, "Maximum number of listings to process")
	f.Uint64("seed", DefaultSeed, "Seed for the listing shuffle and delays")
	f.StringP("mode", "m", DefaultFetchMode, "Fetch mode: static or browser")
	f.StringArrayP("header", "H", []string{}, "Custom headers (e.g., -H \"Cookie: a=b\")")
	f.StringP("output", "o", DefaultProductsPath, "Output CSV path (never overwritten)")
	f.String("subpage-timeout", DefaultSubpageTimeout.String(), "Timeout for each product page request (0 for none)")
	f.String("delay-min", DefaultDelayMin.String(), "Minimum pause between listings")
	f.String("delay-max", DefaultDelayMax.String(), "Maximum pause between listings")
	f.String("chrome-path", "", "Chrome executable for browser mode")
	f.Bool("cloudflare-bypass", DefaultCloudflareBypass, "Use a browser-like TLS fingerprint for static fetches")

	bind(f, "category-url", "collect.category_url")
	bind(f, "max-listings", "collect.max_listings")
	bind(f, "seed", "collect.seed")
	bind(f, "mode", "collect.mode")
	bind(f, "output", "collect.output")
	bind(f, "subpage-timeout", "http.subpage_timeout")
	bind(f, "delay-min", "collect.delay_min")
	bind(f, "delay-max", "collect.delay_max")
	bind(f, "chrome-path", "browser.chrome_path")
	bind(f, "cloudflare-bypass", "http.cloudflare_bypass")
}

// RegisterEnrichFlags registers the flags of the enrich command.
func RegisterEnrichFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("input", "i", DefaultProductsPath, "Collected table to enrich")
	f.StringP("output", "o", DefaultEnrichedPath, "Output CSV path (never overwritten)")
	f.Uint64("seed", DefaultSeed, "Seed for the row sample")
	f.Int("sample-min", DefaultSampleMin, "Smallest sample size")
	f.Int("sample-max", DefaultSampleMax, "Sample size upper bound (exclusive)")
	f.String("engine-id", "", "Search engine ID (defaults to CSE_ID)")

	bind(f, "input", "enrich.input")
	bind(f, "output", "enrich.output")
	bind(f, "seed", "enrich.seed")
	bind(f, "sample-min", "enrich.sample_min")
	bind(f, "sample-max", "enrich.sample_max")
	bind(f, "engine-id", "search.engine_id")
}

func bind(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, keyAnnotation, []string{key})
}

// setter is the part of viper that flag values are written to.
type setter interface {
	Set(key string, value any)
}

// applyFlags copies explicitly set flags over the lower layers.
func applyFlags(v setter, cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed || err != nil {
			return
		}

		switch f.Name {
		case "verbose":
			if f.Value.String() == "true" {
				v.Set("log.level", "debug")
			}
			return
		case "quiet":
			if f.Value.String() == "true" {
				v.Set("log.quiet", true)
				v.Set("log.level", "error")
			}
			return
		case "header":
			raw, _ := cmd.Flags().GetStringArray("header")
			h, perr := headers.ParseHeaders(raw)
			if perr != nil {
				err = fmt.Errorf("--header: %w", perr)
				return
			}
			v.Set("http.headers", h)
			return
		}

		if keys, ok := f.Annotations[keyAnnotation]; ok && len(keys) == 1 {
			v.Set(keys[0], f.Value.String())
		}
	})
	return err
}
