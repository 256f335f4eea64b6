package config

import (
	"flag"
	"os"

	"gopkg.in/yaml.v3"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Backend      string
	DB           string
	Config       string
	Conversation string
	Metrics      string
	Set          map[string]bool
}

// ParseCommandFlags parses command-line flags and returns them as a
// Flags struct. Flags win over config/env when explicitly provided.
func ParseCommandFlags() Flags {
	backendPtr := flag.String("backend", "", "Backend base URL, e.g. https://api.example.edu")
	dbPtr := flag.String("db", "./.cache", "Local pebble cache path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	convPtr := flag.String("conversation", "", "Conversation id to open")
	metricsPtr := flag.String("metrics", "", "Metrics listen address, e.g. 127.0.0.1:9090 (empty disables)")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Backend: *backendPtr, DB: *dbPtr, Config: *cfgPtr, Conversation: *convPtr, Metrics: *metricsPtr, Set: setFlags}
}

// ResolveConfigPath decides which config path to use: an explicit flag
// wins, then the CLASSLINE_CONFIG env var, then the flag default.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("CLASSLINE_CONFIG"); p != "" {
		return p
	}
	return flagPath
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvOverrides applies environment variables on top of cfg and
// reports whether any were used.
func LoadEnvOverrides(cfg *Config) bool {
	used := false
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
			used = true
		}
	}
	set(&cfg.Backend.BaseURL, "CLASSLINE_BACKEND_URL")
	set(&cfg.Backend.Timeout, "CLASSLINE_BACKEND_TIMEOUT")
	set(&cfg.Cache.DBPath, "CLASSLINE_DB_PATH")
	set(&cfg.Sync.PollInterval, "CLASSLINE_POLL_INTERVAL")
	set(&cfg.Sync.RefreshMinInterval, "CLASSLINE_REFRESH_MIN_INTERVAL")
	set(&cfg.Sync.Sentinel, "CLASSLINE_SENTINEL")
	set(&cfg.Logging.Level, "CLASSLINE_LOG_LEVEL_CONFIG")
	return used
}

// LoadEffective loads the config file (missing file is not fatal; env
// and flags may carry everything) and applies env overrides.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = &Config{}
		} else {
			return nil, false, err
		}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}
