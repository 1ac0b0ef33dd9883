// Package config builds the process configuration from the environment, an
// optional .env file and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"rpg-bot/model"
	"rpg-bot/utils"
)

const (
	DefaultCommandsFile = "data/commands.json"
	DefaultEventTimeout = 30 * time.Second
)

// Options controls where Load looks for configuration.
type Options struct {
	// EnvFile is loaded into the environment before reading keys. A missing
	// file is not an error.
	EnvFile string
	// ConfigFile is an optional YAML file whose keys match the environment
	// variable names. Environment values win.
	ConfigFile string
	// RequireToken makes a missing DISCORD_TOKEN an error.
	RequireToken bool
}

// Load reads the configuration. Defaults apply to keys that are unset in
// both the environment and the config file.
func Load(opts Options) (*model.Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("COMMANDS_FILE", DefaultCommandsFile)
	v.SetDefault("EVENT_TIMEOUT", DefaultEventTimeout.String())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REGISTER_ON_START", false)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
	}

	timeout, err := utils.ParseDuration(v.GetString("EVENT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid EVENT_TIMEOUT: must be positive, got %s", timeout)
	}

	cfg := &model.Config{
		BotToken:          v.GetString("DISCORD_TOKEN"),
		ClientID:          v.GetString("CLIENT_ID"),
		GuildIDs:          splitList(v.GetString("GUILD_ID")),
		CommandsAPIURL:    v.GetString("COMMANDS_API_URL"),
		CommandsFile:      v.GetString("COMMANDS_FILE"),
		CommandsDB:        v.GetString("COMMANDS_DB"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogWebhookURL:     v.GetString("LOG_WEBHOOK_URL"),
		StatusAddr:        v.GetString("STATUS_ADDR"),
		StatusCORSOrigins: splitList(v.GetString("STATUS_CORS_ORIGINS")),
		EventTimeout:      timeout,
		RegisterOnStart:   v.GetBool("REGISTER_ON_START"),
	}

	if opts.RequireToken && cfg.BotToken == "" {
		return nil, errors.New("DISCORD_TOKEN environment variable not set")
	}
	return cfg, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
