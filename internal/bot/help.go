package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/models"
)

const helpBasic = `Basic Commands
• /generate [topic] - Generate tweets about any topic
• /categories - Choose a specific tweet category
• /setpreferences - Set your default niche and tone
• /help - Show this help message

Examples
• /generate AI in healthcare
• /generate productivity tips`

const helpPreferences = `Setting Preferences
Use /setpreferences to set your default:
• Niche (e.g., SaaS, Marketing, Technology)
• Tone (e.g., Professional, Casual, Humorous)

Your preferences will be used automatically when generating tweets.`

const helpTips = `Tips for Better Tweets
• Be specific with your topics
• Use categories for targeted content
• Try different tones for variety
• Keep topics relevant to your niche`

// helpSectionText resolves a section tag from a button payload. Unknown tags
// are rejected here, at the boundary.
func helpSectionText(section string) (string, bool) {
	switch section {
	case "basic":
		return helpBasic, true
	case "categories":
		var lines []string
		for _, category := range models.Categories() {
			lines = append(lines, fmt.Sprintf("• %s: %s", category.Title(), category.Description()))
		}
		return "Available Tweet Categories\n" + strings.Join(lines, "\n") +
			"\n\nUse /categories to select a category and follow the prompts.", true
	case "preferences":
		return helpPreferences, true
	case "tips":
		return helpTips, true
	default:
		return "", false
	}
}

func helpMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Basic Commands", "help_basic"),
			tgbotapi.NewInlineKeyboardButtonData("Categories", "help_categories"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Preferences", "help_preferences"),
			tgbotapi.NewInlineKeyboardButtonData("Tips", "help_tips"),
		),
	)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID,
		"Tweet Generator Bot Help\n\nSelect a topic to learn more:")
	msg.ReplyMarkup = helpMenuKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send help menu",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleHelpSection(query *tgbotapi.CallbackQuery) {
	section := strings.TrimPrefix(query.Data, "help_")
	text, ok := helpSectionText(section)
	if !ok {
		b.logger.Warn("Unknown help section",
			zap.String("section", section),
			zap.Int64("user_id", query.From.ID))
		text = "Section not found."
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Back to Help Menu", "help_main"),
		),
	)
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit help message",
			zap.Error(err),
			zap.Int64("chat_id", query.Message.Chat.ID))
	}
}

func (b *Bot) handleHelpMenu(query *tgbotapi.CallbackQuery) {
	keyboard := helpMenuKeyboard()
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
		"Tweet Generator Bot Help\n\nSelect a topic to learn more:")
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit help message",
			zap.Error(err),
			zap.Int64("chat_id", query.Message.Chat.ID))
	}
}
