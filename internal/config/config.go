package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissing is wrapped by Validate when required settings are absent.
var ErrMissing = errors.New("missing required configuration")

// Storage drivers
const (
	StorageS3    = "s3"
	StorageLocal = "local"
)

// AI providers
const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

// Feature names the current command needs. Validate only enforces the keys of the
// enabled features.
type Feature int

const (
	FeatureCrawl Feature = iota
	FeatureServe
)

// DefaultNewsFeeds are the AI news RSS feeds crawled when NEWS_FEEDS is unset.
var DefaultNewsFeeds = []string{
	"https://hnrss.org/newest",
	"https://techcrunch.com/category/artificial-intelligence/feed/",
	"https://www.reddit.com/r/artificial/.rss",
	"https://www.reddit.com/r/MachineLearning/.rss",
}

// Config holds all configuration for the application
type Config struct {
	// Content API
	PortalAPIURL string        `json:"portal_api_url"`
	APISecretKey string        `json:"-"`
	HTTPTimeout  time.Duration `json:"http_timeout"`

	// AI Configuration
	AIProvider string        `json:"ai_provider"`
	AIApiKey   string        `json:"-"`
	AIModel    string        `json:"ai_model"`
	AIBaseURL  string        `json:"ai_base_url"`
	AITimeout  time.Duration `json:"ai_timeout"`

	// Object storage (CloudFlare R2 or any S3-compatible endpoint, or local disk)
	StorageDriver     string `json:"storage_driver"`
	R2Endpoint        string `json:"r2_endpoint"`
	R2AccessKey       string `json:"-"`
	R2SecretKey       string `json:"-"`
	R2Bucket          string `json:"r2_bucket"`
	R2Region          string `json:"r2_region"`
	StoragePublicBase string `json:"storage_public_base"`
	StorageLocalDir   string `json:"storage_local_dir"`

	// Crawl behaviour
	ScreenshotsEnabled bool          `json:"screenshots_enabled"`
	GitHubToken        string        `json:"-"`
	NewsFeeds          []string      `json:"news_feeds"`
	ItemDelay          time.Duration `json:"item_delay"`
	HealLimit          int           `json:"heal_limit"`
	HealCooldown       time.Duration `json:"heal_cooldown"`

	// Source endpoints; empty means the built-in default
	DirectoryURL    string `json:"directory_url"`
	ScrollURL       string `json:"scroll_url"`
	GitHubAPIURL    string `json:"github_api_url"`
	ProductHuntFeed string `json:"producthunt_feed"`
	SearchEndpoint  string `json:"search_endpoint"`

	// Redis seen cache, optional
	RedisURL string        `json:"redis_url"`
	CacheTTL time.Duration `json:"cache_ttl"`

	// Ops server
	Port            string        `json:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	AdminAPIKey     string        `json:"-"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogPretty bool   `json:"log_pretty"`
	LogFile   string `json:"log_file"`
}

// Load loads configuration from the environment, reading a .env file first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	return &Config{
		PortalAPIURL: strings.TrimRight(getEnv("PORTAL_API_URL", "http://localhost:3000/api"), "/"),
		APISecretKey: getEnv("API_SECRET_KEY", ""),
		HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 20*time.Second),

		AIProvider: strings.ToLower(getEnv("AI_PROVIDER", ProviderDeepSeek)),
		AIApiKey:   getEnv("AI_API_KEY", getEnv("DEEPSEEK_API_KEY", "")),
		AIModel:    getEnv("AI_MODEL", ""),
		AIBaseURL:  getEnv("AI_BASE_URL", ""),
		AITimeout:  getEnvAsDuration("AI_TIMEOUT", 120*time.Second),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageS3)),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),
		R2AccessKey:       getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey:       getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:          getEnv("R2_BUCKET", ""),
		R2Region:          getEnv("R2_REGION", "auto"),
		StoragePublicBase: strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE", ""), "/"),
		StorageLocalDir:   getEnv("STORAGE_LOCAL_DIR", "./public"),

		ScreenshotsEnabled: getEnvAsBool("SCREENSHOTS_ENABLED", true),
		GitHubToken:        getEnv("GITHUB_TOKEN", ""),
		NewsFeeds:          getEnvAsSlice("NEWS_FEEDS", DefaultNewsFeeds),
		ItemDelay:          getEnvAsDuration("ITEM_DELAY", 0),
		HealLimit:          getEnvAsInt("HEAL_LIMIT", 5),
		HealCooldown:       getEnvAsDuration("HEAL_COOLDOWN", 5*time.Second),

		DirectoryURL:    getEnv("DIRECTORY_URL", ""),
		ScrollURL:       getEnv("SCROLL_URL", ""),
		GitHubAPIURL:    getEnv("GITHUB_API_URL", ""),
		ProductHuntFeed: getEnv("PRODUCTHUNT_FEED", ""),
		SearchEndpoint:  getEnv("SEARCH_ENDPOINT", ""),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getEnvAsDuration("CACHE_TTL", 720*time.Hour), // 30 days

		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		AdminAPIKey:     getEnv("ADMIN_API_KEY", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		LogFile:   getEnv("LOG_FILE", ""),
	}
}

// Validate reports every required key that is missing for the given features.
// The returned error wraps ErrMissing.
func (c *Config) Validate(features ...Feature) error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("PORTAL_API_URL", c.PortalAPIURL)
	require("API_SECRET_KEY", c.APISecretKey)
	require("AI_API_KEY", c.AIApiKey)
	require("STORAGE_PUBLIC_BASE", c.StoragePublicBase)

	switch c.StorageDriver {
	case StorageS3:
		require("R2_ENDPOINT", c.R2Endpoint)
		require("R2_ACCESS_KEY", c.R2AccessKey)
		require("R2_SECRET_ACCESS_KEY", c.R2SecretKey)
		require("R2_BUCKET", c.R2Bucket)
	case StorageLocal:
		require("STORAGE_LOCAL_DIR", c.StorageLocalDir)
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.AIProvider {
	case ProviderDeepSeek, ProviderGemini:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider)
	}

	for _, f := range features {
		if f == FeatureServe {
			require("ADMIN_API_KEY", c.AdminAPIKey)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsSlice(name string, defaultVal []string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
