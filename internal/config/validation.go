package config

import (
	"fmt"
	"strings"

	urlutil "github.com/law-makers/shelf/internal/utils/url"
)

func validate(c *Config) error {
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.HTTP.SubpageTimeout < 0 {
		return fmt.Errorf("subpage timeout must be >= 0")
	}
	if c.HTTP.RateLimitRPS <= 0 || c.HTTP.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit rps and burst must be > 0")
	}

	switch c.Collect.Mode {
	case "static", "browser":
	default:
		return fmt.Errorf("fetch mode must be 'static' or 'browser', got: %s", c.Collect.Mode)
	}
	if c.Collect.CategoryURL != "" {
		if err := urlutil.ValidateURL(c.Collect.CategoryURL); err != nil {
			return fmt.Errorf("category url: %w", err)
		}
	}
	if c.Collect.MaxListings <= 0 {
		return fmt.Errorf("max listings must be > 0")
	}
	if c.Collect.DelayMin < 0 || c.Collect.DelayMax < c.Collect.DelayMin {
		return fmt.Errorf("delay window [%s, %s] is invalid", c.Collect.DelayMin, c.Collect.DelayMax)
	}

	sel := c.Collect.Selectors
	for name, v := range map[string]string{
		"product":          sel.Product,
		"fallback":         sel.Fallback,
		"wrapper":          sel.Wrapper,
		"category":         sel.Category,
		"ingredient_tag":   sel.IngredientTag,
		"ingredient_start": sel.IngredientStart,
		"ingredient_stop":  sel.IngredientStop,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("selector %s must not be empty", name)
		}
	}

	if c.Enrich.SampleMin < 0 || c.Enrich.SampleMax <= c.Enrich.SampleMin {
		return fmt.Errorf("sample range [%d, %d) is invalid", c.Enrich.SampleMin, c.Enrich.SampleMax)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search timeout must be > 0")
	}
	if err := urlutil.ValidateURL(c.Search.BaseURL); err != nil {
		return fmt.Errorf("search base url: %w", err)
	}
	return nil
}
