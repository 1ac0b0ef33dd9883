package model

import "time"

// Config holds the process configuration.
type Config struct {
	BotToken string
	// ClientID is the application id used for command registration. When
	// empty the id of the logged in bot user is used.
	ClientID string
	// GuildIDs scopes command registration. Empty means global registration.
	GuildIDs []string

	CommandsAPIURL string
	CommandsFile   string
	CommandsDB     string

	LogLevel      string
	LogWebhookURL string

	StatusAddr        string
	StatusCORSOrigins []string

	EventTimeout    time.Duration
	RegisterOnStart bool
}

// CommandSource names the store the configuration selects, in priority
// order: API, database, file.
func (c *Config) CommandSource() string {
	switch {
	case c.CommandsAPIURL != "":
		return "api"
	case c.CommandsDB != "":
		return "sqlite"
	default:
		return "file"
	}
}
