package hookgate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/viant/afs"
	"github.com/viant/scy"
	"gopkg.in/yaml.v3"
)

// DefaultTimeoutSeconds bounds how long an unanswered permission request
// waits before it is denied.
const DefaultTimeoutSeconds = 300

// Identifier is a chat or user identifier that may appear in configuration
// as either a JSON string or a JSON number.
type Identifier string

func (i *Identifier) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*i = Identifier(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("identifier must be a string or a number")
	}
	*i = Identifier(asNumber.String())
	return nil
}

func (i *Identifier) UnmarshalYAML(node *yaml.Node) error {
	*i = Identifier(node.Value)
	return nil
}

func (i Identifier) String() string { return string(i) }

// TelegramConfig configures the Telegram messenger. TokenURL points at a scy
// secret resource and takes precedence over the inline token.
type TelegramConfig struct {
	Enabled  *bool      `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Token    string     `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	TokenURL string     `json:"bot_token_url,omitempty" yaml:"bot_token_url,omitempty"`
	ChatID   Identifier `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`
}

// DiscordConfig configures the Discord messenger.
type DiscordConfig struct {
	Enabled  *bool      `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Token    string     `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	TokenURL string     `json:"bot_token_url,omitempty" yaml:"bot_token_url,omitempty"`
	UserID   Identifier `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// MessengersConfig groups the per-platform messenger settings.
type MessengersConfig struct {
	Telegram *TelegramConfig `json:"telegram,omitempty" yaml:"telegram,omitempty"`
	Discord  *DiscordConfig  `json:"discord,omitempty" yaml:"discord,omitempty"`
}

// PreferencesConfig holds cross-messenger behaviour settings.
type PreferencesConfig struct {
	Primary        string `json:"primary_messenger,omitempty" yaml:"primary_messenger,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON, YAML or environment variables.
type Config struct {
	Messengers   MessengersConfig  `json:"messengers" yaml:"messengers"`
	Preferences  PreferencesConfig `json:"preferences" yaml:"preferences"`
	AllowListURL string            `json:"allow_list_url,omitempty" yaml:"allow_list_url,omitempty"`
	Hostname     string            `json:"hostname,omitempty" yaml:"hostname,omitempty"`
}

// DefaultConfig returns a Config populated with package defaults. Callers may
// modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Preferences: PreferencesConfig{
			Primary:        "telegram",
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		AllowListURL: path.Join(configDir(), "always_allow.json"),
		Hostname:     hostname(),
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Preferences.TimeoutSeconds <= 0 {
		return fmt.Errorf("preferences.timeout_seconds must be > 0")
	}
	if !c.telegramEnabled() && !c.discordEnabled() {
		return fmt.Errorf("at least one messenger must be configured")
	}
	return nil
}

func (c *Config) telegramEnabled() bool {
	t := c.Messengers.Telegram
	return t != nil && (t.Enabled == nil || *t.Enabled) && (t.Token != "" || t.TokenURL != "")
}

func (c *Config) discordEnabled() bool {
	d := c.Messengers.Discord
	return d != nil && (d.Enabled == nil || *d.Enabled) && (d.Token != "" || d.TokenURL != "")
}

// applyDefaults fills gaps in a decoded config.
func (c *Config) applyDefaults() {
	if c.Preferences.Primary == "" {
		c.Preferences.Primary = "telegram"
	}
	if c.Preferences.TimeoutSeconds == 0 {
		c.Preferences.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.AllowListURL == "" {
		c.AllowListURL = path.Join(configDir(), "always_allow.json")
	}
	if c.Hostname == "" {
		c.Hostname = hostname()
	}
}

// legacyConfig is the single-messenger file format kept for backward
// compatibility.
type legacyConfig struct {
	Token  string     `json:"telegram_bot_token"`
	ChatID Identifier `json:"telegram_chat_id"`
}

// envConfig is the environment-variable fallback.
type envConfig struct {
	TelegramToken  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID string `envconfig:"TELEGRAM_CHAT_ID"`
	DiscordToken   string `envconfig:"DISCORD_BOT_TOKEN"`
	DiscordUserID  string `envconfig:"DISCORD_USER_ID"`
	Primary        string `envconfig:"HOOKGATE_PRIMARY_MESSENGER"`
	TimeoutSeconds int    `envconfig:"HOOKGATE_TIMEOUT_SECONDS"`
}

// LoadConfig resolves configuration in order: the explicit URL when given,
// the current format file, the legacy single-messenger file, and finally
// environment variables.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	if URL != "" {
		return loadConfigFile(ctx, fs, URL)
	}
	current := path.Join(configDir(), "hookgate.json")
	if ok, _ := fs.Exists(ctx, current); ok {
		return loadConfigFile(ctx, fs, current)
	}
	legacy := path.Join(configDir(), "telegram_hook.json")
	if ok, _ := fs.Exists(ctx, legacy); ok {
		return loadConfigFile(ctx, fs, legacy)
	}
	return loadConfigEnv()
}

// loadConfigFile decodes a config file, detecting the legacy format by its
// top-level keys and the encoding by extension.
func loadConfigFile(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	config := &Config{}
	switch {
	case strings.HasSuffix(URL, ".yaml"), strings.HasSuffix(URL, ".yml"):
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
		}
		if config.Messengers.Telegram == nil && config.Messengers.Discord == nil {
			legacy := &legacyConfig{}
			if err := json.Unmarshal(data, legacy); err == nil && legacy.Token != "" {
				config.Messengers.Telegram = &TelegramConfig{
					Token:  legacy.Token,
					ChatID: legacy.ChatID,
				}
			}
		}
	}
	config.applyDefaults()
	return config, nil
}

func loadConfigEnv() (*Config, error) {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	config := &Config{}
	if env.TelegramToken != "" {
		config.Messengers.Telegram = &TelegramConfig{
			Token:  env.TelegramToken,
			ChatID: Identifier(env.TelegramChatID),
		}
	}
	if env.DiscordToken != "" {
		config.Messengers.Discord = &DiscordConfig{
			Token:  env.DiscordToken,
			UserID: Identifier(env.DiscordUserID),
		}
	}
	config.Preferences.Primary = env.Primary
	config.Preferences.TimeoutSeconds = env.TimeoutSeconds
	config.applyDefaults()
	return config, nil
}

// resolveToken returns the inline token, or loads it from the scy secret
// resource when a URL is set.
func resolveToken(ctx context.Context, token, tokenURL string) (string, error) {
	if tokenURL == "" {
		return token, nil
	}
	secrets := scy.New()
	secret, err := secrets.Load(ctx, scy.NewResource(nil, tokenURL, ""))
	if err != nil {
		return "", fmt.Errorf("failed to load token from %s: %w", tokenURL, err)
	}
	return secret.String(), nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return path.Join(home, ".claude")
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
