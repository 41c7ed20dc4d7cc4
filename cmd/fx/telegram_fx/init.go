package telegram_fx

import (
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pka/internal/repositories"
	"pka/internal/services"
	"pka/pkg/config"
)

const sendTimeout = 10 * time.Second

var Module = fx.Provide(provideSender, provideTelegramService)

// provideSender builds the Bot API client without the GetMe round trip that
// tgbotapi.NewBotAPI performs, so start-up does not depend on Telegram.
func provideSender(cfg *config.Config, logger *zap.Logger) services.Sender {
	if cfg.Telegram.BotToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN is empty, bot replies are disabled")
		return nil
	}

	bot := &tgbotapi.BotAPI{
		Token:  cfg.Telegram.BotToken,
		Client: &http.Client{Timeout: sendTimeout},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(tgbotapi.APIEndpoint)
	return bot
}

func provideTelegramService(
	users repositories.UserRepository,
	quota services.QuotaServiceInterface,
	search services.SearchServiceInterface,
	badges services.BadgeServiceInterface,
	activity services.ActivityServiceInterface,
	sender services.Sender,
	logger *zap.Logger,
) services.TelegramServiceInterface {
	return services.NewTelegramService(users, quota, search, badges, activity, sender, logger)
}
