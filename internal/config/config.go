package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is built once at
// startup (defaults, then file, then environment) and treated as immutable
// afterwards.
type Config struct {
	// Server configuration
	Port  string `yaml:"port"`
	Debug bool   `yaml:"debug"`

	// Schedule configuration
	ReportSchedule string `yaml:"report_schedule"` // "daily" or "weekly"
	TimeZone       string `yaml:"timezone"`

	Research      ResearchConfig      `yaml:"research"`
	SocialMedia   SocialMediaConfig   `yaml:"social_media"`
	WebScraper    WebScraperConfig    `yaml:"web_scraper"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Storage       StorageConfig       `yaml:"storage"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// ResearchConfig supplies the defaults for scheduled runs; ad-hoc runs
// (CLI, HTTP trigger) pass their own parameters instead.
type ResearchConfig struct {
	Keywords []string `yaml:"keywords"`
	Websites []string `yaml:"websites"`
	DaysBack int      `yaml:"days_back"`
	MaxItems int      `yaml:"max_items"`
}

// SocialMediaConfig groups the per-platform source settings.
type SocialMediaConfig struct {
	Twitter   TwitterConfig   `yaml:"twitter"`
	Facebook  FacebookConfig  `yaml:"facebook"`
	LinkedIn  LinkedInConfig  `yaml:"linkedin"`
	Instagram InstagramConfig `yaml:"instagram"`
}

// SourceConfig is the part every platform shares. RateLimit is the pause in
// seconds after each network call, BatchSize the per-request result cap.
type SourceConfig struct {
	Enabled   bool `yaml:"enabled"`
	RateLimit int  `yaml:"rate_limit"`
	BatchSize int  `yaml:"batch_size"`
}

type TwitterConfig struct {
	SourceConfig `yaml:",inline"`
	BearerToken  string `yaml:"bearer_token"`
}

type FacebookConfig struct {
	SourceConfig `yaml:",inline"`
	AccessToken  string `yaml:"access_token"`
}

type LinkedInConfig struct {
	SourceConfig `yaml:",inline"`
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
}

type InstagramConfig struct {
	SourceConfig `yaml:",inline"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
}

// WebScraperConfig bounds the website crawl.
type WebScraperConfig struct {
	MaxDepth          int     `yaml:"max_depth"`
	MaxPagesPerDomain int     `yaml:"max_pages_per_domain"`
	RequestDelay      float64 `yaml:"request_delay"` // seconds between page fetches
	Timeout           int     `yaml:"timeout"`       // seconds per page fetch
	UserAgent         string  `yaml:"user_agent"`
}

// AnalysisConfig toggles the analyzer stages.
type AnalysisConfig struct {
	EnableSentiment bool `yaml:"enable_sentiment"`
	EnableTopics    bool `yaml:"enable_topics"`
	TopicCount      int  `yaml:"topic_count"`
}

// StorageConfig locates report output, locally and optionally in Azure.
type StorageConfig struct {
	RawDir         string `yaml:"raw_dir"`
	ProcessedDir   string `yaml:"processed_dir"`
	AzureAccount   string `yaml:"azure_account"`
	AzureContainer string `yaml:"azure_container"`
}

// NotificationsConfig configures the report delivery channels.
type NotificationsConfig struct {
	WebhookURL        string `yaml:"webhook_url"`
	NotificationEmail string `yaml:"notification_email"`
	SMTPHost          string `yaml:"smtp_host"`
	SMTPPort          int    `yaml:"smtp_port"`
	SMTPUsername      string `yaml:"smtp_username"`
	SMTPPassword      string `yaml:"smtp_password"`
}

// Load builds the configuration: built-in defaults, overridden by the YAML
// file at path (if path is non-empty and the file exists), overridden by
// environment variables. Credential environment variables also enable their
// source, so a token in the environment is enough to switch a platform on.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		Debug:          false,
		ReportSchedule: "weekly",
		TimeZone:       "UTC",

		Research: ResearchConfig{
			DaysBack: 7,
			MaxItems: 100,
		},

		SocialMedia: SocialMediaConfig{
			Twitter:   TwitterConfig{SourceConfig: SourceConfig{RateLimit: 1, BatchSize: 100}},
			Facebook:  FacebookConfig{SourceConfig: SourceConfig{RateLimit: 1, BatchSize: 50}},
			LinkedIn:  LinkedInConfig{SourceConfig: SourceConfig{RateLimit: 1, BatchSize: 25}},
			Instagram: InstagramConfig{SourceConfig: SourceConfig{RateLimit: 2, BatchSize: 50}},
		},

		WebScraper: WebScraperConfig{
			MaxDepth:          2,
			MaxPagesPerDomain: 100,
			RequestDelay:      1.0,
			Timeout:           30,
			UserAgent:         "InsightPipe-Scout/1.0 (Research Tool)",
		},

		Analysis: AnalysisConfig{
			EnableSentiment: true,
			EnableTopics:    true,
			TopicCount:      5,
		},

		Storage: StorageConfig{
			RawDir:         "data/raw",
			ProcessedDir:   "data/processed",
			AzureContainer: "research-reports",
		},

		Notifications: NotificationsConfig{
			SMTPPort: 587,
		},
	}
}

// applyEnv layers environment overrides on top of whatever the file set.
func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Debug = getBoolEnv("DEBUG", c.Debug)
	c.ReportSchedule = getEnv("REPORT_SCHEDULE", c.ReportSchedule)
	c.TimeZone = getEnv("TIMEZONE", c.TimeZone)

	c.Research.Keywords = getSliceEnv("RESEARCH_KEYWORDS", c.Research.Keywords)
	c.Research.Websites = getSliceEnv("RESEARCH_WEBSITES", c.Research.Websites)
	c.Research.DaysBack = getIntEnv("RESEARCH_DAYS_BACK", c.Research.DaysBack)
	c.Research.MaxItems = getIntEnv("RESEARCH_MAX_ITEMS", c.Research.MaxItems)

	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		c.SocialMedia.Twitter.BearerToken = v
		c.SocialMedia.Twitter.Enabled = true
	}
	if v := os.Getenv("FACEBOOK_ACCESS_TOKEN"); v != "" {
		c.SocialMedia.Facebook.AccessToken = v
		c.SocialMedia.Facebook.Enabled = true
	}
	if v := os.Getenv("LINKEDIN_EMAIL"); v != "" {
		c.SocialMedia.LinkedIn.Email = v
	}
	if v := os.Getenv("LINKEDIN_PASSWORD"); v != "" {
		c.SocialMedia.LinkedIn.Password = v
	}
	if c.SocialMedia.LinkedIn.Email != "" && c.SocialMedia.LinkedIn.Password != "" {
		c.SocialMedia.LinkedIn.Enabled = true
	}
	if v := os.Getenv("INSTAGRAM_USERNAME"); v != "" {
		c.SocialMedia.Instagram.Username = v
	}
	if v := os.Getenv("INSTAGRAM_PASSWORD"); v != "" {
		c.SocialMedia.Instagram.Password = v
	}
	if c.SocialMedia.Instagram.Username != "" && c.SocialMedia.Instagram.Password != "" {
		c.SocialMedia.Instagram.Enabled = true
	}

	c.WebScraper.MaxDepth = getIntEnv("SCRAPER_MAX_DEPTH", c.WebScraper.MaxDepth)
	c.WebScraper.MaxPagesPerDomain = getIntEnv("SCRAPER_MAX_PAGES", c.WebScraper.MaxPagesPerDomain)
	c.WebScraper.RequestDelay = getFloatEnv("SCRAPER_REQUEST_DELAY", c.WebScraper.RequestDelay)
	c.WebScraper.Timeout = getIntEnv("SCRAPER_TIMEOUT", c.WebScraper.Timeout)

	c.Analysis.EnableSentiment = getBoolEnv("ENABLE_SENTIMENT_ANALYSIS", c.Analysis.EnableSentiment)
	c.Analysis.EnableTopics = getBoolEnv("ENABLE_TOPIC_MODELING", c.Analysis.EnableTopics)
	c.Analysis.TopicCount = getIntEnv("TOPIC_COUNT", c.Analysis.TopicCount)

	c.Storage.RawDir = getEnv("RAW_DATA_DIR", c.Storage.RawDir)
	c.Storage.ProcessedDir = getEnv("PROCESSED_DATA_DIR", c.Storage.ProcessedDir)
	c.Storage.AzureAccount = getEnv("AZURE_STORAGE_ACCOUNT", c.Storage.AzureAccount)
	c.Storage.AzureContainer = getEnv("AZURE_STORAGE_CONTAINER", c.Storage.AzureContainer)

	c.Notifications.WebhookURL = getEnv("WEBHOOK_URL", c.Notifications.WebhookURL)
	c.Notifications.NotificationEmail = getEnv("NOTIFICATION_EMAIL", c.Notifications.NotificationEmail)
	c.Notifications.SMTPHost = getEnv("SMTP_HOST", c.Notifications.SMTPHost)
	c.Notifications.SMTPPort = getIntEnv("SMTP_PORT", c.Notifications.SMTPPort)
	c.Notifications.SMTPUsername = getEnv("SMTP_USERNAME", c.Notifications.SMTPUsername)
	c.Notifications.SMTPPassword = getEnv("SMTP_PASSWORD", c.Notifications.SMTPPassword)
}

func (c *Config) validate() error {
	if c.ReportSchedule != "daily" && c.ReportSchedule != "weekly" {
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.Research.DaysBack < 0 {
		return fmt.Errorf("research.days_back must not be negative")
	}
	if c.Research.MaxItems < 1 {
		return fmt.Errorf("research.max_items must be at least 1")
	}

	if c.WebScraper.MaxDepth < 0 {
		return fmt.Errorf("web_scraper.max_depth must not be negative")
	}
	if c.WebScraper.MaxPagesPerDomain < 1 {
		return fmt.Errorf("web_scraper.max_pages_per_domain must be at least 1")
	}

	for name, src := range map[string]SourceConfig{
		"twitter":   c.SocialMedia.Twitter.SourceConfig,
		"facebook":  c.SocialMedia.Facebook.SourceConfig,
		"linkedin":  c.SocialMedia.LinkedIn.SourceConfig,
		"instagram": c.SocialMedia.Instagram.SourceConfig,
	} {
		if src.RateLimit < 0 {
			return fmt.Errorf("social_media.%s.rate_limit must not be negative", name)
		}
		if src.BatchSize < 1 {
			return fmt.Errorf("social_media.%s.batch_size must be at least 1", name)
		}
	}

	if c.Analysis.EnableTopics && c.Analysis.TopicCount < 1 {
		return fmt.Errorf("analysis.topic_count must be at least 1 when topic modeling is enabled")
	}

	if c.Storage.ProcessedDir == "" {
		return fmt.Errorf("storage.processed_dir must not be empty")
	}

	if c.Notifications.NotificationEmail != "" {
		n := c.Notifications
		if n.SMTPHost == "" || n.SMTPUsername == "" || n.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
