package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds application configuration values
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Browser BrowserConfig `mapstructure:"browser"`
	Collect CollectConfig `mapstructure:"collect"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
	Search  SearchConfig  `mapstructure:"search"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	Quiet bool   `mapstructure:"quiet"`
}

type HTTPConfig struct {
	Timeout          time.Duration     `mapstructure:"timeout"`
	SubpageTimeout   time.Duration     `mapstructure:"subpage_timeout"`
	UserAgent        string            `mapstructure:"user_agent"`
	Proxy            string            `mapstructure:"proxy"`
	CloudflareBypass bool              `mapstructure:"cloudflare_bypass"`
	RateLimitRPS     float64           `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int               `mapstructure:"rate_limit_burst"`
	Headers          map[string]string `mapstructure:"headers"`
}

type BrowserConfig struct {
	ChromePath string        `mapstructure:"chrome_path"`
	Headless   bool          `mapstructure:"headless"`
	Settle     time.Duration `mapstructure:"settle"`
}

type CollectConfig struct {
	CategoryURL string         `mapstructure:"category_url"`
	Mode        string         `mapstructure:"mode"`
	MaxListings int            `mapstructure:"max_listings"`
	Seed        uint64         `mapstructure:"seed"`
	DelayMin    time.Duration  `mapstructure:"delay_min"`
	DelayMax    time.Duration  `mapstructure:"delay_max"`
	Output      string         `mapstructure:"output"`
	Selectors   SelectorConfig `mapstructure:"selectors"`
}

type SelectorConfig struct {
	Product         string `mapstructure:"product"`
	Fallback        string `mapstructure:"fallback"`
	Wrapper         string `mapstructure:"wrapper"`
	Category        string `mapstructure:"category"`
	IngredientTag   string `mapstructure:"ingredient_tag"`
	IngredientStart string `mapstructure:"ingredient_start"`
	IngredientStop  string `mapstructure:"ingredient_stop"`
}

type EnrichConfig struct {
	Input     string `mapstructure:"input"`
	Output    string `mapstructure:"output"`
	Seed      uint64 `mapstructure:"seed"`
	SampleMin int    `mapstructure:"sample_min"`
	SampleMax int    `mapstructure:"sample_max"`
}

type SearchConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	EngineID     string        `mapstructure:"engine_id"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimitRPS float64       `mapstructure:"rate_limit_rps"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheEntries int           `mapstructure:"cache_entries"`
}

// Load builds a Config by combining defaults, a .env file, an optional config
// file, environment variables, and CLI flags, in increasing precedence.
// Caller should pass the command being run so its flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("search.engine_id", "SHELF_SEARCH_ENGINE_ID", "CSE_ID")
	_ = v.BindEnv("search.api_key", "SHELF_SEARCH_API_KEY", "CSE_API_KEY")

	configPath := ""
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			configPath = f.Value.String()
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("shelf")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".shelf"))
		}
	}

	// Config file is optional unless given explicitly
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if cmd != nil {
		if err := applyFlags(v, cmd); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.Debug().Str("config_file", cfg.ConfigFile).Msg("Configuration loaded")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultJSONLog)
	v.SetDefault("log.quiet", false)

	v.SetDefault("http.timeout", DefaultHTTPTimeout)
	v.SetDefault("http.subpage_timeout", DefaultSubpageTimeout)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.proxy", "")
	v.SetDefault("http.cloudflare_bypass", DefaultCloudflareBypass)
	v.SetDefault("http.rate_limit_rps", DefaultRateLimitRPS)
	v.SetDefault("http.rate_limit_burst", DefaultRateLimitBurst)
	v.SetDefault("http.headers", map[string]string{})

	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.headless", DefaultBrowserHeadless)
	v.SetDefault("browser.settle", DefaultBrowserSettle)

	v.SetDefault("collect.category_url", DefaultCategoryURL)
	v.SetDefault("collect.mode", DefaultFetchMode)
	v.SetDefault("collect.max_listings", DefaultMaxListings)
	v.SetDefault("collect.seed", DefaultSeed)
	v.SetDefault("collect.delay_min", DefaultDelayMin)
	v.SetDefault("collect.delay_max", DefaultDelayMax)
	v.SetDefault("collect.output", DefaultProductsPath)
	v.SetDefault("collect.selectors.product", DefaultProductSelector)
	v.SetDefault("collect.selectors.fallback", DefaultFallbackSelector)
	v.SetDefault("collect.selectors.wrapper", DefaultWrapperSelector)
	v.SetDefault("collect.selectors.category", DefaultCategorySelector)
	v.SetDefault("collect.selectors.ingredient_tag", DefaultIngredientTag)
	v.SetDefault("collect.selectors.ingredient_start", DefaultIngredientStart)
	v.SetDefault("collect.selectors.ingredient_stop", DefaultIngredientStop)

	v.SetDefault("enrich.input", DefaultProductsPath)
	v.SetDefault("enrich.output", DefaultEnrichedPath)
	v.SetDefault("enrich.seed", DefaultSeed)
	v.SetDefault("enrich.sample_min", DefaultSampleMin)
	v.SetDefault("enrich.sample_max", DefaultSampleMax)

	v.SetDefault("search.base_url", DefaultSearchBaseURL)
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.timeout", DefaultSearchTimeout)
	v.SetDefault("search.rate_limit_rps", DefaultSearchRateLimitRPS)
	v.SetDefault("search.cache_ttl", DefaultSearchCacheTTL)
	v.SetDefault("search.cache_entries", DefaultSearchCacheEntries)
}
