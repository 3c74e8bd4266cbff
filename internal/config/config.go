package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ewanvin/seaicemod/internal/seaice"
)

// Defaults for the dataset addresses. These are configuration constants, not
// values computed from user input.
const (
	DefaultDataURLPrefix = "https://thredds.met.no/thredds/fileServer/metusers/steingod/deside/climmodseaice"
	DefaultBaselineURL   = "https://thredds.met.no/thredds/fileServer/osisaf/met.no/ice/index/v2p2/nh/osisaf_nh_sia_monthly.nc"
)

type AppConfig struct {
	Port string

	// Outbound fetch behaviour.
	FetchTimeout    time.Duration
	FetchMaxRetries int

	// Fetch cache capacity in entries.
	CacheCapacity int

	// Dataset address template pieces.
	DataURLPrefix      string
	BaselineURL        string
	TemporalResolution string
	YearRange          string

	// Warmup prefetches this selection on a schedule; 0 disables it.
	// WarmupTimeout bounds one prefetch run.
	WarmupInterval  time.Duration
	WarmupTimeout   time.Duration
	WarmupSelection seaice.Selection

	// ClearOnError tells the rendering client whether a failed update cycle
	// should clear the previously rendered series or leave them in place.
	ClearOnError bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	timeoutStr := getenvDefault("FETCH_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	cfg.FetchTimeout = timeout
	cfg.FetchMaxRetries = getenvInt("FETCH_MAX_RETRIES", 0)

	cfg.CacheCapacity = getenvInt("CACHE_CAPACITY", 128)
	if cfg.CacheCapacity <= 0 {
		return nil, fmt.Errorf("CACHE_CAPACITY must be positive")
	}

	cfg.DataURLPrefix = getenvDefault("DATA_URL_PREFIX", DefaultDataURLPrefix)
	cfg.BaselineURL = getenvDefault("BASELINE_URL", DefaultBaselineURL)
	cfg.TemporalResolution = getenvDefault("TEMPORAL_RESOLUTION", "Monthly")
	cfg.YearRange = getenvDefault("YEAR_RANGE", "2015_2100")

	warmupStr := getenvDefault("WARMUP_INTERVAL", "0")
	warmup, err := time.ParseDuration(warmupStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WARMUP_INTERVAL: %w", err)
	}
	cfg.WarmupInterval = warmup

	warmupTimeoutStr := getenvDefault("WARMUP_TIMEOUT", "5m")
	warmupTimeout, err := time.ParseDuration(warmupTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WARMUP_TIMEOUT: %w", err)
	}
	cfg.WarmupTimeout = warmupTimeout

	cfg.WarmupSelection = seaice.Selection{
		Variable:        getenvDefault("WARMUP_VARIABLE", "SeaIceArea"),
		Models:          getenvList("WARMUP_MODELS", "NorESM2-LM_sea_ice"),
		Scenarios:       getenvList("WARMUP_SCENARIOS", "ssp126"),
		EnsembleMembers: getenvList("WARMUP_MEMBERS", "r1i1p1f1"),
		Seasons:         getenvList("WARMUP_SEASONS", "DJF"),
	}

	cfg.ClearOnError = getenvBool("CLEAR_ON_ERROR", false)

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvList(key, def string) []string {
	raw := getenvDefault(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
