package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/citewatch/citewatch/internal/domain"
)

// Load loads configuration from multiple sources:
// 1. Config file (config.yaml, optional)
// 2. Environment variables (CITEWATCH_*)
func Load() (*domain.Config, error) {
	cfg := &domain.Config{}

	cfg.ScholarID = viper.GetString("scholar_id")
	cfg.ScholarName = viper.GetString("scholar_name")
	cfg.RecipientEmail = viper.GetString("recipient_email")
	cfg.SerpAPIKey = viper.GetString("serpapi_key")
	cfg.SenderEmail = viper.GetString("sender_email")
	cfg.SenderPassword = viper.GetString("sender_password")
	cfg.SMTPHost = viper.GetString("smtp_host")
	cfg.SMTPPort = viper.GetInt("smtp_port")
	cfg.DiscordWebhookURL = viper.GetString("discord_webhook_url")
	cfg.NotifyOnFirstRun = viper.GetBool("notify_on_first_run")

	if cfg.SMTPHost == "" {
		cfg.SMTPHost = "smtp.gmail.com"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 465
	}

	// Fetch mode (default: "auto")
	modeStr := viper.GetString("fetch_mode")
	if modeStr == "" {
		cfg.FetchMode = domain.FetchModeAuto
	} else {
		cfg.FetchMode = domain.FetchMode(modeStr)
		if cfg.FetchMode != domain.FetchModeAuto &&
			cfg.FetchMode != domain.FetchModeAPI &&
			cfg.FetchMode != domain.FetchModeScrape {
			return nil, fmt.Errorf("invalid fetch_mode: %s (must be 'auto', 'api', or 'scrape')", modeStr)
		}
	}

	// Validate required fields
	if cfg.ScholarID == "" {
		return nil, fmt.Errorf("scholar_id is required (set via config.yaml or CITEWATCH_SCHOLAR_ID environment variable)")
	}
	if cfg.FetchMode == domain.FetchModeAPI && cfg.SerpAPIKey == "" {
		return nil, fmt.Errorf("serpapi_key is required when fetch_mode is 'api' (set via config.yaml or CITEWATCH_SERPAPI_KEY environment variable)")
	}

	return cfg, nil
}
