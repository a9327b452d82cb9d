package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/narrative"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/threat"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SOCSIM"

// Fallback environment variables for the Gemini API key, checked after
// --api-key and SOCSIM_API_KEY.
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY"}

// appConfig is the resolved command line configuration.
type appConfig struct {
	Lang      threat.Language
	LogLevel  string
	Verbose   bool
	Output    string
	TUI       bool
	Metrics   bool
	Telemetry bool
	Duration  time.Duration
	Seed      int64

	Gemini  narrative.GeminiConfig
	Service narrative.ServiceConfig
}

// newViper layers flags over SOCSIM_* environment variables over an
// optional YAML config file.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}
	return v, nil
}

// loadConfig resolves the configuration from v.
func loadConfig(v *viper.Viper) (appConfig, error) {
	lang, err := threat.ParseLanguage(v.GetString("lang"))
	if err != nil {
		return appConfig{}, err
	}

	cfg := appConfig{
		Lang:      lang,
		LogLevel:  v.GetString("log-level"),
		Verbose:   v.GetBool("verbose"),
		Output:    v.GetString("output"),
		TUI:       v.GetBool("tui"),
		Metrics:   v.GetBool("metrics"),
		Telemetry: v.GetBool("telemetry"),
		Duration:  v.GetDuration("duration"),
		Seed:      v.GetInt64("seed"),
		Gemini:    narrative.DefaultGeminiConfig(),
		Service:   narrative.DefaultServiceConfig(),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Duration < 0 {
		return appConfig{}, fmt.Errorf("duration must not be negative, got %s", cfg.Duration)
	}

	cfg.Gemini.APIKey = resolveAPIKey(v)
	if model := v.GetString("model"); model != "" {
		cfg.Gemini.Model = model
	}
	if model := v.GetString("advisor-model"); model != "" {
		cfg.Gemini.AdvisorModel = model
	}
	cfg.Gemini.BaseURL = v.GetString("base-url")

	if v.IsSet("fetch-interval") {
		cfg.Service.MinFetchInterval = v.GetDuration("fetch-interval")
	}
	return cfg, nil
}

func resolveAPIKey(v *viper.Viper) string {
	if key := v.GetString("api-key"); key != "" {
		return key
	}
	for _, name := range apiKeyEnvVars {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// simulationConfig derives the session constants from cfg.
func (c appConfig) simulationConfig() simulation.Config {
	sc := simulation.DefaultConfig()
	sc.Lang = c.Lang
	return sc
}

// seededRand returns the random source for --seed, or nil when no seed is set.
func (c appConfig) seededRand() simulation.Rand {
	if c.Seed == 0 {
		return nil
	}
	return simulation.NewRand(c.Seed)
}
