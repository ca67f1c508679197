package config

import (
	"fmt"
	"slices"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", c.Server.Port)
	}

	if err := c.Ingest.validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := c.Matching.validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if err := c.Adjudicator.validate(); err != nil {
		return fmt.Errorf("adjudicator: %w", err)
	}
	if err := c.Geocoding.validate(); err != nil {
		return fmt.Errorf("geocoding: %w", err)
	}
	if err := c.Nearby.validate(); err != nil {
		return fmt.Errorf("nearby: %w", err)
	}

	return nil
}

func (i *IngestConfig) validate() error {
	if i.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0 (got %d)", i.MaxUploadBytes)
	}
	if i.DailyQuota <= 0 {
		return fmt.Errorf("daily_quota must be > 0 (got %d)", i.DailyQuota)
	}
	return nil
}

func (m *MatchingConfig) validate() error {
	if m.FuzzyMergeThreshold < 0 || m.FuzzyMergeThreshold > 100 {
		return fmt.Errorf("fuzzy_merge_threshold must be within 0..100 (got %d)", m.FuzzyMergeThreshold)
	}
	if m.GrayAreaThreshold < 0 || m.GrayAreaThreshold > m.FuzzyMergeThreshold {
		return fmt.Errorf("gray_area_threshold must be within 0..fuzzy_merge_threshold (got %d)", m.GrayAreaThreshold)
	}
	if m.AdjudicationTimeout <= 0 {
		return fmt.Errorf("adjudication_timeout must be > 0 (got %s)", m.AdjudicationTimeout)
	}
	return nil
}

func (a *AdjudicatorConfig) validate() error {
	providers := []string{ProviderNone, ProviderOllama, ProviderAnthropic}
	if !slices.Contains(providers, a.Provider) {
		return fmt.Errorf("provider must be one of %v (got %q)", providers, a.Provider)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", a.Timeout)
	}
	switch a.Provider {
	case ProviderOllama:
		if a.OllamaURL == "" || a.OllamaModel == "" {
			return fmt.Errorf("ollama_url and ollama_model are required for provider %q", a.Provider)
		}
	case ProviderAnthropic:
		if a.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic_api_key is required for provider %q", a.Provider)
		}
	}
	return nil
}

func (g *GeocodingConfig) validate() error {
	if g.Timeout <= 0 || g.TaskTimeout <= 0 {
		return fmt.Errorf("timeout and task_timeout must be > 0")
	}
	if g.BatchDelay < 0 {
		return fmt.Errorf("batch_delay must be >= 0 (got %s)", g.BatchDelay)
	}
	if g.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0 (got %d)", g.QueueSize)
	}
	return nil
}

func (n *NearbyConfig) validate() error {
	if n.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be > 0 (got %d)", n.CacheSize)
	}
	if n.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be > 0 (got %s)", n.CacheTTL)
	}
	if n.MaxResults <= 0 {
		return fmt.Errorf("max_results must be > 0 (got %d)", n.MaxResults)
	}
	if n.DefaultRadiusKm <= 0 {
		return fmt.Errorf("default_radius_km must be > 0 (got %v)", n.DefaultRadiusKm)
	}
	if n.HourlyQuota <= 0 {
		return fmt.Errorf("hourly_quota must be > 0 (got %d)", n.HourlyQuota)
	}
	return nil
}
