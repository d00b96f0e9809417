package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"deployScope/internal/model"
)

// Notifier sends formatted messages to a chat scope.
type Notifier interface {
	Send(ctx context.Context, scope model.Scope, text string, linkPreview bool) error
}

// Telegram sends Markdown messages through the Telegram bot API, scoped to
// chat and, when set, forum thread.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegram connects the bot and registers its command menu.
func NewTelegram(token string, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Subscribe to alerts for a ticker, 'ALL', or a liquidity threshold"},
		tgbotapi.BotCommand{Command: "stop", Description: "Remove a filter"},
		tgbotapi.BotCommand{Command: "list", Description: "List your current filters"},
	)
	if _, err := bot.Request(commands); err != nil {
		logger.Warn("set command menu failed", zap.Error(err))
	}

	return &Telegram{bot: bot, logger: logger}, nil
}

// Send delivers one message to the scope's chat and thread. The bot API has
// no context support, so ctx only gates entry.
func (t *Telegram) Send(ctx context.Context, scope model.Scope, text string, linkPreview bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// The library's typed config predates forum topics, so the request is
	// assembled from raw params to carry message_thread_id.
	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", scope.ChatID)
	params.AddNonZero64("message_thread_id", scope.ThreadID)
	params.AddNonEmpty("text", text)
	params.AddNonEmpty("parse_mode", tgbotapi.ModeMarkdown)
	params.AddBool("disable_web_page_preview", !linkPreview)

	_, err := t.bot.MakeRequest("sendMessage", params)
	return err
}
