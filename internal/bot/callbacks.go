package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
	"github.com/dkotenko/tweetgen-bot/internal/flow"
)

func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	b.answerCallback(query.ID)

	if query.Message == nil {
		return
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, "category_"):
		b.handleCategorySelection(query)
	case strings.HasPrefix(data, "thread_"):
		b.handleThreadLength(ctx, query)
	case strings.HasPrefix(data, "subscribe_"):
		b.handleSubscriptionSelection(query)
	case data == "help_main":
		b.handleHelpMenu(query)
	case strings.HasPrefix(data, "help_"):
		b.handleHelpSection(query)
	case data == "history_back":
		b.handleHistoryBack(ctx, query)
	case strings.HasPrefix(data, "history_view_"):
		b.handleHistoryView(ctx, query)
	default:
		b.logger.Warn("Unrecognized callback payload",
			zap.String("data", data),
			zap.Int64("user_id", query.From.ID))
	}
}

func (b *Bot) handleCategorySelection(query *tgbotapi.CallbackQuery) {
	raw := strings.TrimPrefix(query.Data, "category_")

	category, err := b.orchestrator.SelectCategory(query.From.ID, raw)
	if err != nil {
		b.logger.Warn("Rejected unknown category tag",
			zap.String("category", raw),
			zap.Int64("user_id", query.From.ID))
		b.sendMessage(query.Message.Chat.ID, "Unknown category. Use /categories to pick one.")
		return
	}

	b.sendMessage(query.Message.Chat.ID, fmt.Sprintf(
		"You've selected the %s category.\nPlease enter your topic:", category.Title()))
}

func (b *Bot) handleThreadLength(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	length, err := strconv.Atoi(strings.TrimPrefix(query.Data, "thread_"))
	if err != nil {
		b.logger.Warn("Malformed thread length payload",
			zap.String("data", query.Data),
			zap.Int64("user_id", query.From.ID))
		return
	}

	// Reuse the menu message as the progress indicator and the final output.
	progress := func(index, total int) {
		edit := tgbotapi.NewEditMessageText(chatID, messageID,
			fmt.Sprintf("🤔 Generating tweet %d of %d...", index, total))
		if _, err := b.api.Send(edit); err != nil {
			b.logger.Debug("Failed to update progress message", zap.Error(err))
		}
	}

	result, err := b.orchestrator.SelectThreadLength(ctx, query.From.ID, length, progress)
	if err != nil {
		b.logger.Error("Operation failed",
			zap.Error(err),
			zap.String("operation", "thread"),
			zap.Int64("user_id", query.From.ID))
		if _, sendErr := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, errs.UserMessage(err))); sendErr != nil {
			b.logger.Error("Failed to edit message", zap.Error(sendErr), zap.Int64("chat_id", chatID))
		}
		return
	}

	switch result.Kind {
	case flow.ResultNoFlow:
		b.sendMessage(chatID, "Start a thread with /thread first.")
	case flow.ResultInvalidOption:
		b.sendMessage(chatID, "Please pick one of the offered thread lengths.")
	case flow.ResultTweets:
		text := "*Your Twitter Thread*\n\n"
		for i, tweet := range result.Tweets {
			text += fmt.Sprintf("*Tweet %d:*\n%s\n\n", i+1, escapeMarkdown(tweet))
		}
		b.editMarkdown(chatID, messageID, text, nil)
	}
}
