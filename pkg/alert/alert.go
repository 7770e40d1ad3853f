// Package alert sends error reports to Discord or Telegram with
// cooldown management. Errors are stored in PostgreSQL and alert
// fatigue is prevented by enforcing a minimum interval between
// notifications for the same service+operation.
package alert

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

const (
	providerDiscord  = "discord"
	providerTelegram = "telegram"
	providerNoop     = "noop"
)

// Config defines configuration options for the alert package.
type Config struct {
	// Provider specifies the notification provider to use.
	Provider string `yaml:"provider" validate:"oneof=discord telegram noop" default:"noop"`

	// CooldownMinutes is the minimum interval (in minutes) between alerts
	// for the same service+operation combination.
	CooldownMinutes int `yaml:"cooldown_minutes" default:"5"`

	// SendTimeout is the timeout duration for sending a notification.
	SendTimeout time.Duration `yaml:"send_timeout" default:"3s"`

	// Schema is the PostgreSQL schema for the errors table.
	Schema string `yaml:"schema" default:"alerting"`

	// TelegramBotToken is the Telegram bot token (required when Provider is "telegram").
	TelegramBotToken string `yaml:"telegram_bot_token" mask:"true"`

	// TelegramChatIDs is the list of Telegram chat IDs to send alerts to.
	TelegramChatIDs []int64 `yaml:"telegram_chat_ids"`

	// DiscordBotToken is the Discord bot token (required when Provider is "discord").
	DiscordBotToken string `yaml:"discord_bot_token" mask:"true"`

	// DiscordChannelIDs is the list of Discord channel IDs to send alerts to.
	DiscordChannelIDs []string `yaml:"discord_channel_ids"`
}

// Provider defines the interface for sending error alerts.
type Provider interface {
	// SendError sends an error alert with the given details.
	// errCode identifies the error, msg is a human-readable message,
	// operation describes where the error occurred, and details carries
	// additional string key-value context.
	SendError(ctx context.Context, errCode, msg, operation string, details map[string]string) error
}

// NewProvider creates a new alert provider.
// If cfg.Provider is noop, it returns a no-op provider and db may be nil.
func NewProvider(cfg Config, db *bun.DB) (Provider, error) {
	if cfg.Provider == providerNoop {
		return &noOpProvider{}, nil
	}

	s, err := newStore(db, cfg.Schema)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	n, err := newNotifier(cfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &alertProvider{
		cfg:      cfg,
		store:    s,
		notifier: n,
	}, nil
}

// noOpProvider is a no-operation alert provider that does nothing.
type noOpProvider struct{}

func (n *noOpProvider) SendError(
	_ context.Context,
	_, _, _ string,
	_ map[string]string,
) error {
	return nil
}
