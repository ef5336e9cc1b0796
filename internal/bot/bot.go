package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/flow"
	"github.com/dkotenko/tweetgen-bot/internal/generator"
	"github.com/dkotenko/tweetgen-bot/internal/history"
	"github.com/dkotenko/tweetgen-bot/internal/storage"
	"github.com/dkotenko/tweetgen-bot/internal/subscription"
)

type Bot struct {
	api           *tgbotapi.BotAPI
	storage       storage.Storage
	orchestrator  *flow.Orchestrator
	subscriptions *subscription.Manager
	history       *history.Recorder
	paymentToken  string
	logger        *zap.Logger
}

func New(
	token string,
	paymentToken string,
	store storage.Storage,
	orchestrator *flow.Orchestrator,
	subscriptions *subscription.Manager,
	hist *history.Recorder,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:           api,
		storage:       store,
		orchestrator:  orchestrator,
		subscriptions: subscriptions,
		history:       hist,
		paymentToken:  paymentToken,
		logger:        logger,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	// One goroutine per update: a slow generation for one user must not
	// block delivery of unrelated events for other users.
	for update := range updates {
		go b.handleUpdate(update)
	}

	return nil
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		b.handlePreCheckout(update.PreCheckoutQuery)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

// escapeMarkdown escapes special characters for MarkdownV2.
func escapeMarkdown(text string) string {
	specialChars := []string{"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.ReplyMarkup = markup
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID))
	}
}

// progressIndicator returns a ProgressFunc that lazily posts a transient
// "generating" message and a cleanup func that deletes it. The message is
// only created once the generator actually starts, so validation failures
// never show it.
func (b *Bot) progressIndicator(chatID int64) (generator.ProgressFunc, func()) {
	var messageID int

	progress := func(index, total int) {
		text := "🤔 Generating tweets..."
		if total > 1 {
			text = fmt.Sprintf("🤔 Generating tweet %d of %d...", index, total)
		}
		if messageID == 0 {
			sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
			if err != nil {
				return
			}
			messageID = sent.MessageID
		} else {
			if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
				b.logger.Debug("Failed to update progress message", zap.Error(err))
			}
		}
		if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			b.logger.Debug("Failed to send chat action", zap.Error(err))
		}
	}

	done := func() {
		if messageID != 0 {
			if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
				b.logger.Debug("Failed to delete progress message", zap.Error(err))
			}
		}
	}

	return progress, done
}

func (b *Bot) answerCallback(queryID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, "")); err != nil {
		b.logger.Debug("Failed to answer callback query", zap.Error(err))
	}
}
