package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
)

const previewLength = 100

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	text, keyboard, err := b.historySummary(ctx, message.From.ID)
	if err != nil {
		b.replyWithError(message.Chat.ID, message.From.ID, "history", err)
		return
	}
	if text == "" {
		b.sendMessage(message.Chat.ID,
			"You haven't generated any tweets yet. Use /generate to create some!")
		return
	}

	b.sendMarkdown(message.Chat.ID, text, keyboard)
}

// historySummary renders the bounded most-recent-first view with one
// detail button per entry. Empty text means no history.
func (b *Bot) historySummary(ctx context.Context, userID int64) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	entries, err := b.history.Recent(ctx, userID, 0)
	if err != nil {
		return "", nil, err
	}
	if len(entries) == 0 {
		return "", nil, nil
	}

	text := "*Your Recent Tweet History*\n\n"
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, entry := range entries {
		text += fmt.Sprintf("*Entry %d · %s*\n", i+1,
			escapeMarkdown(entry.CreatedAt.Format("2006-01-02 15:04")))
		text += fmt.Sprintf("Topic: %s\n", escapeMarkdown(entry.Input.Topic))
		if entry.Input.Category != "" {
			text += fmt.Sprintf("Category: %s\n", escapeMarkdown(entry.Input.Category))
		}
		text += fmt.Sprintf("First tweet: %s\n\n", escapeMarkdown(preview(entry.Tweets)))

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("View Full Entry #%d", i+1),
				fmt.Sprintf("history_view_%d", i),
			),
		))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return text, &keyboard, nil
}

func preview(tweets []string) string {
	if len(tweets) == 0 {
		return ""
	}
	first := []rune(tweets[0])
	if len(first) > previewLength {
		return string(first[:previewLength]) + "..."
	}
	return string(first)
}

func (b *Bot) handleHistoryView(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	index, err := strconv.Atoi(strings.TrimPrefix(query.Data, "history_view_"))
	if err != nil {
		b.logger.Warn("Malformed history view payload",
			zap.String("data", query.Data),
			zap.Int64("user_id", query.From.ID))
		return
	}

	entry, err := b.history.Detail(ctx, query.From.ID, index)
	if err != nil {
		b.logger.Error("Failed to load history entry",
			zap.Error(err),
			zap.Int("index", index),
			zap.Int64("user_id", query.From.ID))
		if _, sendErr := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, errs.UserMessage(err))); sendErr != nil {
			b.logger.Error("Failed to edit message", zap.Error(sendErr), zap.Int64("chat_id", chatID))
		}
		return
	}

	text := "*Tweet Generation Details*\n"
	text += fmt.Sprintf("Generated on: %s\n\n",
		escapeMarkdown(entry.CreatedAt.Format("2006-01-02 15:04")))
	text += "*Input Parameters:*\n"
	text += fmt.Sprintf("• Topic: %s\n", escapeMarkdown(orNA(entry.Input.Topic)))
	text += fmt.Sprintf("• Category: %s\n", escapeMarkdown(orNA(entry.Input.Category)))
	text += fmt.Sprintf("• Niche: %s\n", escapeMarkdown(orNA(entry.Input.Niche)))
	text += fmt.Sprintf("• Tone: %s\n\n", escapeMarkdown(orNA(entry.Input.Tone)))
	text += "*Generated Tweets:*\n"
	for i, tweet := range entry.Tweets {
		text += fmt.Sprintf("\n%d\\. %s\n", i+1, escapeMarkdown(tweet))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Back to History", "history_back"),
		),
	)
	b.editMarkdown(chatID, messageID, text, &keyboard)
}

func (b *Bot) handleHistoryBack(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	text, keyboard, err := b.historySummary(ctx, query.From.ID)
	if err != nil || text == "" {
		if err != nil {
			b.logger.Error("Failed to load history",
				zap.Error(err),
				zap.Int64("user_id", query.From.ID))
		}
		if _, sendErr := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID,
			"You haven't generated any tweets yet. Use /generate to create some!")); sendErr != nil {
			b.logger.Error("Failed to edit message", zap.Error(sendErr), zap.Int64("chat_id", chatID))
		}
		return
	}

	b.editMarkdown(chatID, messageID, text, keyboard)
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
