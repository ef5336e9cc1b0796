package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/models"
)

const (
	premiumMonthlyPrice = 999  // $9.99 in cents
	premiumYearlyPrice  = 9999 // $99.99 in cents

	premiumMonthlyDays = 30
	premiumYearlyDays  = 365
)

const premiumBenefits = `Benefits include:
• Twitter Thread Generation
• Advanced Tweet Analytics
• Priority Tweet Generation
• Extended History Storage`

func (b *Bot) handlePremium(ctx context.Context, message *tgbotapi.Message) {
	tier := b.subscriptions.Tier(ctx, message.From.ID)

	var text string
	if tier == models.TierPremium {
		text = "Your Premium Features\n\n" +
			"• /thread - Generate Twitter threads\n" +
			"• Priority tweet generation\n" +
			"• Extended history storage\n\n" +
			"Thank you for being a premium user!"
	} else {
		text = "Premium Features Available\n\n" +
			"Upgrade to Premium to unlock:\n" +
			"• Twitter Thread Generation\n" +
			"• Advanced Tweet Analytics\n" +
			"• Priority Tweet Generation\n" +
			"• Extended History Storage\n\n" +
			"Use /subscribe to upgrade!"
	}

	b.sendMessage(message.Chat.ID, text)
}

func (b *Bot) handleStatus(ctx context.Context, message *tgbotapi.Message) {
	if b.subscriptions.Tier(ctx, message.From.ID) == models.TierPremium {
		text := "✅ Active Premium Subscription\n\n" +
			"You have access to all premium features:\n" +
			"• /thread - Generate Twitter threads\n" +
			"• Priority tweet generation\n" +
			"• Extended history storage"
		if expires := b.subscriptions.ExpiresAt(ctx, message.From.ID); expires != nil {
			text += fmt.Sprintf("\n\nExpires on: %s", expires.Format("2006-01-02"))
		}
		b.sendMessage(message.Chat.ID, text)
		return
	}

	b.sendMessage(message.Chat.ID,
		"❌ No Active Premium Subscription\n\n"+
			"Upgrade to Premium to unlock:\n"+
			"• Twitter Thread Generation\n"+
			"• Advanced Tweet Analytics\n"+
			"• Priority Tweet Generation\n"+
			"• Extended History Storage\n\n"+
			"Use /subscribe to upgrade!")
}

func (b *Bot) handleSubscribe(message *tgbotapi.Message) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Monthly - $9.99", "subscribe_monthly"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yearly - $99.99 (Save 16%)", "subscribe_yearly"),
		),
	)

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"Premium Subscription\n\nChoose your subscription plan:\n\n"+premiumBenefits)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send subscription menu",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleSubscriptionSelection(query *tgbotapi.CallbackQuery) {
	plan := strings.TrimPrefix(query.Data, "subscribe_")

	var title, description string
	var price, duration int
	switch plan {
	case "monthly":
		title = "Monthly Premium"
		description = "Monthly subscription to Tweet Generator Premium"
		price = premiumMonthlyPrice
		duration = premiumMonthlyDays
	case "yearly":
		title = "Yearly Premium"
		description = "Yearly subscription to Tweet Generator Premium"
		price = premiumYearlyPrice
		duration = premiumYearlyDays
	default:
		b.logger.Warn("Unknown subscription plan",
			zap.String("plan", plan),
			zap.Int64("user_id", query.From.ID))
		return
	}

	invoice := tgbotapi.NewInvoice(
		query.Message.Chat.ID,
		title,
		description,
		fmt.Sprintf("premium_%d", duration),
		b.paymentToken,
		"premium",
		"USD",
		[]tgbotapi.LabeledPrice{{Label: "Premium Subscription", Amount: price}},
	)
	invoice.SuggestedTipAmounts = []int{}

	if _, err := b.api.Request(invoice); err != nil {
		b.logger.Error("Failed to send invoice",
			zap.Error(err),
			zap.Int64("user_id", query.From.ID),
			zap.String("plan", plan))
		b.sendMessage(query.Message.Chat.ID,
			"😕 Could not start the payment. Please try again later.")
	}
}

func (b *Bot) handlePreCheckout(query *tgbotapi.PreCheckoutQuery) {
	// Payment verification is the provider's job; approve the checkout.
	config := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: query.ID,
		OK:                 true,
	}
	if _, err := b.api.Request(config); err != nil {
		b.logger.Error("Failed to answer pre-checkout query",
			zap.Error(err),
			zap.Int64("user_id", query.From.ID))
	}
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, message *tgbotapi.Message) {
	payload := message.SuccessfulPayment.InvoicePayload

	duration, err := parsePremiumPayload(payload)
	if err != nil {
		b.logger.Error("Malformed payment payload",
			zap.Error(err),
			zap.String("payload", payload),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID,
			"😕 There was an error activating your subscription. Please contact support.")
		return
	}

	if err := b.subscriptions.ActivatePremium(ctx, message.From.ID, duration); err != nil {
		b.replyWithError(message.Chat.ID, message.From.ID, "activate premium", err)
		return
	}

	b.logger.Info("Premium subscription activated",
		zap.Int64("user_id", message.From.ID),
		zap.Int("duration_days", duration))

	b.sendMessage(message.Chat.ID,
		"🎉 Welcome to Premium!\n\n"+
			"Your premium subscription has been activated. "+
			"You now have access to all premium features:\n\n"+
			"• Use /thread to create Twitter threads\n"+
			"• Priority tweet generation\n"+
			"• Extended history storage\n\n"+
			"Thank you for your support!")
}

func parsePremiumPayload(payload string) (int, error) {
	rest, ok := strings.CutPrefix(payload, "premium_")
	if !ok {
		return 0, fmt.Errorf("unexpected payload %q", payload)
	}
	duration, err := strconv.Atoi(rest)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("invalid duration in payload %q", payload)
	}
	return duration, nil
}
