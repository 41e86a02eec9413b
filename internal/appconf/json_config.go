package appconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"starnav.teamgannon.org/internal/routing"
	"starnav.teamgannon.org/internal/starmap"
	"starnav.teamgannon.org/internal/transit"
)

// RouteFinder configures route searches.
type RouteFinder struct {
	GraphThreshold      int `json:"graph-threshold"`
	BruteForceThreshold int `json:"brute-force-threshold"`
	CacheSize           int `json:"cache-size"`
	CacheTTLSeconds     int `json:"cache-ttl-seconds"`
	DefaultNumPaths     int `json:"default-num-paths"`
}

// JSONConfig is the on-disk configuration file.
type JSONConfig struct {
	Port                  int            `json:"port"`
	Env                   string         `json:"env"`
	ApiKeys               []string       `json:"api-keys"`
	RateLimit             int            `json:"rate-limit"`
	CatalogPath           string         `json:"catalog-path"`
	ReloadIntervalSeconds int            `json:"reload-interval-seconds"`
	ParallelThreshold     int            `json:"parallel-threshold"`
	Bands                 []transit.Band `json:"bands"`
	RouteFinder           RouteFinder    `json:"route-finder"`
}

// LoadFromFile reads, defaults and validates the configuration at path.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config JSONConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func (c *JSONConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 4000
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.ApiKeys == nil {
		c.ApiKeys = []string{"test"}
	}
	if c.RateLimit == 0 {
		c.RateLimit = 100
	}
	if c.CatalogPath == "" {
		c.CatalogPath = "./stars.json"
	}
	if c.Bands == nil {
		c.Bands = starmap.DefaultBands()
	}

	finder := routing.DefaultConfig()
	if c.RouteFinder.GraphThreshold == 0 {
		c.RouteFinder.GraphThreshold = finder.GraphThreshold
	}
	if c.RouteFinder.BruteForceThreshold == 0 {
		c.RouteFinder.BruteForceThreshold = finder.BruteForceThreshold
	}
	if c.RouteFinder.CacheSize == 0 {
		c.RouteFinder.CacheSize = finder.CacheSize
	}
	if c.RouteFinder.CacheTTLSeconds == 0 {
		c.RouteFinder.CacheTTLSeconds = int(finder.CacheTTL / time.Second)
	}
	if c.RouteFinder.DefaultNumPaths == 0 {
		c.RouteFinder.DefaultNumPaths = 3
	}
}

func (c *JSONConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if !slices.Contains([]string{"development", "test", "production"}, c.Env) {
		return fmt.Errorf("env must be one of: development, test, production; got %q", c.Env)
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("rate-limit must be at least 1, got %d", c.RateLimit)
	}
	if len(c.ApiKeys) == 0 {
		return errors.New("api-keys cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.ApiKeys))
	for _, key := range c.ApiKeys {
		if key == "" {
			return errors.New("api-keys cannot contain empty strings")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate API key found: %s", key)
		}
		seen[key] = struct{}{}
	}

	if err := validatePath(c.CatalogPath); err != nil {
		return fmt.Errorf("catalog-path: %w", err)
	}
	if c.ReloadIntervalSeconds < 0 {
		return fmt.Errorf("reload-interval-seconds must not be negative, got %d", c.ReloadIntervalSeconds)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("parallel-threshold must not be negative, got %d", c.ParallelThreshold)
	}

	if len(c.Bands) == 0 {
		return errors.New("bands cannot be empty")
	}
	bandIDs := make(map[string]struct{}, len(c.Bands))
	for _, b := range c.Bands {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bands: %w", err)
		}
		if _, dup := bandIDs[b.ID]; dup {
			return fmt.Errorf("bands: duplicate band id %q", b.ID)
		}
		bandIDs[b.ID] = struct{}{}
	}

	rf := c.RouteFinder
	if rf.GraphThreshold < 1 || rf.BruteForceThreshold < 1 {
		return errors.New("route-finder thresholds must be at least 1")
	}
	if rf.CacheSize < 1 {
		return fmt.Errorf("route-finder cache-size must be at least 1, got %d", rf.CacheSize)
	}
	if rf.CacheTTLSeconds < 1 {
		return fmt.Errorf("route-finder cache-ttl-seconds must be at least 1, got %d", rf.CacheTTLSeconds)
	}
	if rf.DefaultNumPaths < 1 || rf.DefaultNumPaths > routing.MaxPaths {
		return fmt.Errorf("route-finder default-num-paths must be between 1 and %d, got %d", routing.MaxPaths, rf.DefaultNumPaths)
	}
	return nil
}

// validatePath rejects relative paths that climb out of the working directory.
func validatePath(path string) error {
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		return nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal is not allowed: %s", path)
	}
	return nil
}

func (c *JSONConfig) ToAppConfig() Config {
	return Config{
		Port:            c.Port,
		Env:             EnvFlagToEnvironment(c.Env),
		ApiKeys:         c.ApiKeys,
		RateLimit:       c.RateLimit,
		DefaultNumPaths: c.RouteFinder.DefaultNumPaths,
		Verbose:         true,
	}
}

func (c *JSONConfig) ToStarmapConfig() starmap.Config {
	return starmap.Config{
		CatalogPath: c.CatalogPath,
		Bands:       c.Bands,
		Finder: routing.Config{
			GraphThreshold:      c.RouteFinder.GraphThreshold,
			BruteForceThreshold: c.RouteFinder.BruteForceThreshold,
			CacheSize:           c.RouteFinder.CacheSize,
			CacheTTL:            time.Duration(c.RouteFinder.CacheTTLSeconds) * time.Second,
		},
		ParallelThreshold: c.ParallelThreshold,
		ReloadInterval:    time.Duration(c.ReloadIntervalSeconds) * time.Second,
		Verbose:           true,
	}
}
