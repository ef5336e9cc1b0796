package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
	"github.com/dkotenko/tweetgen-bot/internal/flow"
	"github.com/dkotenko/tweetgen-bot/internal/models"
)

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.SuccessfulPayment != nil {
		b.handleSuccessfulPayment(ctx, message)
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	b.handleText(ctx, message)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(message)
	case "generate":
		b.handleGenerate(ctx, message)
	case "categories":
		b.handleCategories(message)
	case "setpreferences":
		b.handleSetPreferences(message)
	case "cancel":
		b.handleCancel(message)
	case "history":
		b.handleHistory(ctx, message)
	case "premium":
		b.handlePremium(ctx, message)
	case "thread":
		b.handleThread(ctx, message)
	case "subscribe":
		b.handleSubscribe(message)
	case "status":
		b.handleStatus(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user := &models.User{
		ID:        message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
	}
	if err := b.storage.UpsertUser(ctx, user); err != nil {
		b.logger.Error("Failed to register user",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
	}

	welcome := `👋 Welcome to the Tweet Generator Bot!

I can help you create engaging tweets for various purposes. Here are some things you can do:

• Generate tweets about any topic with /generate
• Choose specific tweet categories with /categories
• Set your preferences with /setpreferences

Type /help to learn more about all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleGenerate(ctx context.Context, message *tgbotapi.Message) {
	progress, done := b.progressIndicator(message.Chat.ID)
	defer done()

	result, err := b.orchestrator.GenerateDirect(ctx, message.From.ID, message.CommandArguments(), progress)
	if err != nil {
		b.replyWithError(message.Chat.ID, message.From.ID, "generate", err)
		return
	}

	b.sendMessage(message.Chat.ID,
		"Here are your tweets:\n\n"+strings.Join(result.Tweets, "\n\n"))
}

func (b *Bot) handleCategories(message *tgbotapi.Message) {
	var rows [][]tgbotapi.InlineKeyboardButton
	var lines []string
	for _, category := range models.Categories() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				category.Title(),
				"category_"+string(category),
			),
		))
		lines = append(lines, fmt.Sprintf("• %s: %s", category.Title(), category.Description()))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"Choose a category for your tweet:\n\n"+strings.Join(lines, "\n"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send categories menu",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleSetPreferences(message *tgbotapi.Message) {
	b.orchestrator.StartPreferences(message.From.ID)

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"Let's set your tweet preferences!\n\nFirst, choose your preferred niche:")
	msg.ReplyMarkup = optionKeyboard(flow.Niches())
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send niche menu",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleCancel(message *tgbotapi.Message) {
	cancelled := b.orchestrator.Cancel(message.From.ID)

	text := "Nothing to cancel."
	if cancelled {
		text = "Cancelled."
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send cancel confirmation",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleThread(ctx context.Context, message *tgbotapi.Message) {
	if !b.orchestrator.StartThread(ctx, message.From.ID) {
		b.sendMessage(message.Chat.ID,
			"Thread generation is a premium feature. Use /subscribe to upgrade!")
		return
	}

	b.sendMessage(message.Chat.ID,
		"Let's create a Twitter thread!\n\nWhat topic would you like to create a thread about?")
}

// handleText feeds free text into whichever flow is waiting on it.
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	progress, done := b.progressIndicator(message.Chat.ID)
	defer done()

	result, err := b.orchestrator.HandleText(ctx, message.From.ID, message.Text, progress)
	if err != nil {
		b.replyWithError(message.Chat.ID, message.From.ID, "conversation", err)
		return
	}

	switch result.Kind {
	case flow.ResultNoFlow:
		b.sendMessage(message.Chat.ID, "Please select a category first using /categories")

	case flow.ResultTweets:
		var lines []string
		for i, tweet := range result.Tweets {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, tweet))
		}
		b.sendMessage(message.Chat.ID, fmt.Sprintf(
			"Here are your %s tweets about %s:\n\n%s",
			string(result.Category), result.Topic, strings.Join(lines, "\n\n")))

	case flow.ResultAskLength:
		b.sendThreadLengthMenu(message.Chat.ID)

	case flow.ResultAskTone:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Great! Now choose your preferred tone:")
		msg.ReplyMarkup = optionKeyboard(flow.Tones())
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("Failed to send tone menu",
				zap.Error(err),
				zap.Int64("chat_id", message.Chat.ID))
		}

	case flow.ResultPreferencesSaved:
		msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf(
			"Perfect! Your preferences have been saved:\nNiche: %s\nTone: %s\n\n"+
				"These will be used as defaults when generating tweets.",
			result.Preferences.Niche, result.Preferences.Tone))
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("Failed to send preferences confirmation",
				zap.Error(err),
				zap.Int64("chat_id", message.Chat.ID))
		}

	case flow.ResultInvalidOption:
		b.sendMessage(message.Chat.ID, "Please choose one of the offered options.")
	}
}

func (b *Bot) sendThreadLengthMenu(chatID int64) {
	lengths := flow.ThreadLengths()
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(lengths); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d tweets", lengths[i]),
				fmt.Sprintf("thread_%d", lengths[i]),
			),
		}
		if i+1 < len(lengths) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d tweets", lengths[i+1]),
				fmt.Sprintf("thread_%d", lengths[i+1]),
			))
		}
		rows = append(rows, row)
	}

	msg := tgbotapi.NewMessage(chatID, "How many tweets would you like in your thread?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send thread length menu",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func optionKeyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, option := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(option)))
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	return keyboard
}

// replyWithError logs the failure with its context and sends the single
// user-facing message its kind maps to.
func (b *Bot) replyWithError(chatID, userID int64, operation string, err error) {
	b.logger.Error("Operation failed",
		zap.Error(err),
		zap.String("operation", operation),
		zap.Int64("user_id", userID))
	b.sendMessage(chatID, errs.UserMessage(err))
}
