package domain

// FetchMode defines how the current snapshot is obtained
type FetchMode string

const (
	// FetchModeAuto - Use the SerpAPI client when an API key is configured, fall back to scraping otherwise
	FetchModeAuto FetchMode = "auto"
	// FetchModeAPI - Always use the SerpAPI client (requires serpapi_key)
	FetchModeAPI FetchMode = "api"
	// FetchModeScrape - Always scrape the public profile page
	FetchModeScrape FetchMode = "scrape"
)

type Config struct {
	ScholarID         string    `toml:"scholar_id" mapstructure:"scholar_id"`
	ScholarName       string    `toml:"scholar_name" mapstructure:"scholar_name"`
	RecipientEmail    string    `toml:"recipient_email" mapstructure:"recipient_email"`
	SerpAPIKey        string    `toml:"serpapi_key" mapstructure:"serpapi_key"`
	SenderEmail       string    `toml:"sender_email" mapstructure:"sender_email"`
	SenderPassword    string    `toml:"sender_password" mapstructure:"sender_password"`
	SMTPHost          string    `toml:"smtp_host" mapstructure:"smtp_host"`
	SMTPPort          int       `toml:"smtp_port" mapstructure:"smtp_port"`
	DiscordWebhookURL string    `toml:"discord_webhook_url" mapstructure:"discord_webhook_url"`
	FetchMode         FetchMode `toml:"fetch_mode" mapstructure:"fetch_mode"`
	NotifyOnFirstRun  bool      `toml:"notify_on_first_run" mapstructure:"notify_on_first_run"`
}

// ScholarURL returns the public profile URL for the configured scholar.
func (c *Config) ScholarURL() string {
	return "https://scholar.google.com/citations?user=" + c.ScholarID + "&hl=en"
}
