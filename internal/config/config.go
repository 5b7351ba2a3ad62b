package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHubUser   string
	GitHubToken  string
	GitHubAPIURL string

	Addr                  string
	AssetDir              string
	FeaturedRequireImages bool

	SurrealURL  string
	SurrealNS   string
	SurrealDB   string
	SurrealUser string
	SurrealPass string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		GitHubUser:   strings.TrimSpace(os.Getenv("GITHUB_USER")),
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL: os.Getenv("GITHUB_API_URL"),

		Addr:                  os.Getenv("SHOWCASE_ADDR"),
		AssetDir:              os.Getenv("SHOWCASE_ASSET_DIR"),
		FeaturedRequireImages: parseBool(os.Getenv("SHOWCASE_FEATURED_REQUIRE_IMAGES")),

		SurrealURL:  os.Getenv("SURREAL_URL"),
		SurrealNS:   os.Getenv("SURREAL_NS"),
		SurrealDB:   os.Getenv("SURREAL_DB"),
		SurrealUser: os.Getenv("SURREAL_USER"),
		SurrealPass: os.Getenv("SURREAL_PASS"),

		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   os.Getenv("LLM_MODEL"),

		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),
	}

	// The SDK appends /rpc automatically
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/rpc")
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/")

	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = "https://api.github.com"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.AssetDir == "" {
		cfg.AssetDir = "assets"
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
