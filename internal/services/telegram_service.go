package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pka/internal/repositories"
	"pka/pkg/utils"
)

const (
	minLinkCodeLength = 6
	maxPreviewRunes   = 3000
)

// telegramSearchTypes maps the short types accepted by /search to modules.
var telegramSearchTypes = map[string]string{
	"email":    "email-osint",
	"username": "username-search",
	"phone":    "phone-lookup",
	"domain":   "dns-resolver",
	"ip":       "ip-lookup",
}

const (
	msgWelcome = "Welcome to <b>PKA Search Bot</b>!\n\n" +
		"To connect your account, send your connection code.\n\n" +
		"<b>Commands:</b>\n" +
		"/link - Link your account with a code\n" +
		"/search - Search for information\n" +
		"/status - Check your account status\n" +
		"/help - Show available commands"
	msgHelp = "<b>Available Commands:</b>\n\n" +
		"<code>/link CODE</code> - Connect your account\n" +
		"<b>Example:</b> <code>/link ABC123</code>\n\n" +
		"<code>/search TYPE QUERY</code> - Perform a search\n" +
		"<b>Example:</b> <code>/search email user@example.com</code>\n\n" +
		"<code>/status</code> - View your account status\n\n" +
		"<b>Search Types:</b> email, username, phone, domain, ip"
	msgInvalidCodeFormat = "❌ Invalid code format. Code must be at least 6 characters."
	msgInvalidCode       = "❌ Invalid code. Please check and try again."
	msgAlreadyLinked     = "⚠️ This account is already connected to Telegram."
	msgNotLinked         = "⚠️ Your Telegram account is not linked. Use <code>/link CODE</code> to connect."
	msgLimitReached      = "❌ Daily search limit reached. Upgrade your plan for more searches."
	msgSearchFormat      = "❌ Invalid search format.\n\n<code>/search TYPE QUERY</code>\n<b>Example:</b> <code>/search email user@example.com</code>"
	msgAccountBlocked    = "❌ This account cannot run searches."
	msgSearchFailed      = "❌ Search failed. Please try again later."
	msgUnknownCommand    = "ℹ️ Use /help to see available commands."
)

// Sender is the part of tgbotapi.BotAPI used for replies.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramServiceInterface interface {
	HandleUpdate(ctx context.Context, raw []byte) error
}

type TelegramService struct {
	users    repositories.UserRepository
	quota    QuotaServiceInterface
	search   SearchServiceInterface
	badges   BadgeServiceInterface
	activity ActivityServiceInterface
	sender   Sender
	logger   *zap.Logger
	now      func() time.Time
}

// NewTelegramService accepts a nil sender; replies are then only logged.
func NewTelegramService(
	users repositories.UserRepository,
	quota QuotaServiceInterface,
	search SearchServiceInterface,
	badges BadgeServiceInterface,
	activity ActivityServiceInterface,
	sender Sender,
	logger *zap.Logger,
) *TelegramService {
	return &TelegramService{
		users:    users,
		quota:    quota,
		search:   search,
		badges:   badges,
		activity: activity,
		sender:   sender,
		logger:   logger,
		now:      time.Now,
	}
}

// splitCommand returns "/cmd" (without any @botname suffix) and the rest of the text.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	cmd, args, _ := strings.Cut(text, " ")
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// HandleUpdate processes one Bot API update. Only undecodable bodies are errors.
func (t *TelegramService) HandleUpdate(ctx context.Context, raw []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(raw, &update); err != nil {
		return utils.ErrBadRequest
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		return nil
	}

	chatID := msg.Chat.ID
	telegramID := fmt.Sprintf("%d", msg.From.ID)
	cmd, args := splitCommand(msg.Text)

	switch cmd {
	case "/start":
		t.reply(chatID, msgWelcome)
	case "/help":
		t.reply(chatID, msgHelp)
	case "/link":
		t.link(ctx, chatID, telegramID, args)
	case "/status":
		t.status(ctx, chatID, telegramID)
	case "/search":
		t.runSearch(ctx, chatID, telegramID, args)
	default:
		t.reply(chatID, msgUnknownCommand)
	}
	return nil
}

func (t *TelegramService) reply(chatID int64, text string) {
	if t.sender == nil {
		t.logger.Debug("telegram reply dropped, bot not configured", zap.Int64("chat_id", chatID))
		return
	}
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := t.sender.Send(out); err != nil {
		t.logger.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (t *TelegramService) link(ctx context.Context, chatID int64, telegramID, args string) {
	code := strings.ToUpper(strings.TrimSpace(args))
	if len(code) < minLinkCodeLength {
		t.reply(chatID, msgInvalidCodeFormat)
		return
	}

	user, err := t.users.FindByTelegramCode(ctx, code)
	if err != nil {
		t.logger.Error("telegram link lookup failed", zap.Error(err))
		t.reply(chatID, msgSearchFailed)
		return
	}
	if user == nil {
		t.reply(chatID, msgInvalidCode)
		return
	}
	if user.TelegramConnectedAt != nil {
		t.reply(chatID, msgAlreadyLinked)
		return
	}

	if err := t.users.UpdateFields(ctx, user.ID, map[string]interface{}{
		"telegram_id":           telegramID,
		"telegram_connected_at": t.now().Unix(),
	}); err != nil {
		t.logger.Error("telegram link update failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		t.reply(chatID, msgSearchFailed)
		return
	}

	t.activity.Log(ctx, ActivityEntry{
		UserID:   userRef(user.ID),
		Action:   ActionTelegramLinked,
		Metadata: map[string]interface{}{"telegramId": telegramID},
	})
	refreshBadges(ctx, t.badges, t.logger, user.ID)

	t.reply(chatID, fmt.Sprintf(
		"✅ <b>Account Linked!</b>\n\nYour account <code>%s</code> is now connected.\n\nYou can now run searches directly from Telegram!",
		html.EscapeString(user.Username)))
}

func (t *TelegramService) status(ctx context.Context, chatID int64, telegramID string) {
	user, err := t.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		t.logger.Error("telegram status lookup failed", zap.Error(err))
		t.reply(chatID, msgSearchFailed)
		return
	}
	if user == nil {
		t.reply(chatID, msgNotLinked)
		return
	}

	usage, err := t.quota.Usage(ctx, user.ID)
	if err != nil {
		t.logger.Error("telegram quota lookup failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		t.reply(chatID, msgSearchFailed)
		return
	}

	t.reply(chatID, fmt.Sprintf(
		"<b>Account Status</b>\n\n<b>Username:</b> %s\n<b>Plan:</b> %s\n<b>Daily Searches:</b> %d/%d",
		html.EscapeString(user.Username), user.SubscriptionPlan, usage.Used, usage.Limit))
}

func (t *TelegramService) runSearch(ctx context.Context, chatID int64, telegramID, args string) {
	user, err := t.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		t.logger.Error("telegram search lookup failed", zap.Error(err))
		t.reply(chatID, msgSearchFailed)
		return
	}
	if user == nil {
		t.reply(chatID, msgNotLinked)
		return
	}
	if user.IsBanned || !user.IsActive {
		t.reply(chatID, msgAccountBlocked)
		return
	}

	searchType, query, _ := strings.Cut(args, " ")
	query = strings.TrimSpace(query)
	module, ok := telegramSearchTypes[strings.ToLower(searchType)]
	if !ok || query == "" {
		t.reply(chatID, msgSearchFormat)
		return
	}

	t.reply(chatID, fmt.Sprintf("🔍 Searching for <code>%s</code> (type: %s)...",
		html.EscapeString(query), html.EscapeString(searchType)))

	result, err := t.search.Search(ctx, user.ID, module, query, ClientMeta{IP: "telegram", UserAgent: "telegram-bot"})
	switch {
	case errors.Is(err, utils.ErrQuotaExceeded):
		t.reply(chatID, msgLimitReached)
		return
	case err != nil:
		t.logger.Warn("telegram search failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		t.reply(chatID, msgSearchFailed)
		return
	}

	t.reply(chatID, searchSummary(query, searchType, result))
}

func searchSummary(query, searchType string, result *SearchResult) string {
	preview := string(result.Body)
	if utf8.RuneCountInString(preview) > maxPreviewRunes {
		preview = string([]rune(preview)[:maxPreviewRunes]) + "…"
	}
	return fmt.Sprintf("✅ Search completed!\n\n<b>Query:</b> %s\n<b>Type:</b> %s\n<b>Status:</b> %d\n\n<pre>%s</pre>",
		html.EscapeString(query), html.EscapeString(searchType), result.StatusCode, html.EscapeString(preview))
}
