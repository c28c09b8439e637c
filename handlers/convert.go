package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"telegram-convert-bot/models"
)

// handleConvert validates the request and sends the inline confirm prompt.
// Nothing is persisted until the user confirms. This is the only command the
// rate limiter applies to.
func (b *Bot) handleConvert(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.limiter.Allow(chatID) {
		b.metrics.RateLimited.Inc()
		b.reply(chatID, b.phrase(chatID, "rate_limited"))
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 3 {
		b.reply(chatID, b.phrase(chatID, "usage_convert"))
		return
	}
	fromAsset := models.NormalizeAsset(args[0])
	toAsset := models.NormalizeAsset(args[1])
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil || amount <= 0 {
		b.reply(chatID, b.phrase(chatID, "invalid_amount"))
		return
	}
	if !b.assets.Supports(fromAsset, toAsset) {
		b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "unsupported_pair"),
			EscapeMarkdown(fromAsset), EscapeMarkdown(toAsset)))
		return
	}

	pc := pendingConvert{FromAsset: fromAsset, ToAsset: toAsset, Amount: amount}
	b.pending.put(chatID, pc)

	prompt := tgbotapi.NewMessage(chatID, fmt.Sprintf(b.phrase(chatID, "confirm_prompt"),
		EscapeMarkdown(formatAmount(amount)), EscapeMarkdown(fromAsset), EscapeMarkdown(toAsset)))
	prompt.ParseMode = tgbotapi.ModeMarkdownV2
	prompt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.phrase(chatID, "confirm_button"), pc.callbackData()),
			tgbotapi.NewInlineKeyboardButtonData(b.phrase(chatID, "cancel_button"), callbackCancel),
		),
	)
	b.deliver(prompt)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.WithError(err).Warn("failed to answer callback query")
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == callbackCancel:
		b.pending.drop(chatID)
		b.reply(chatID, b.phrase(chatID, "convert_canceled"))
	case strings.HasPrefix(cb.Data, callbackConfirmPrefix):
		b.handleConfirm(chatID, cb.Data)
	}
}

// handleConfirm consumes the chat's pending conversion. The entry is removed
// before the exchange is touched, so a second tap of the same button cannot
// trigger a second conversion.
func (b *Bot) handleConfirm(chatID int64, data string) {
	pc, ok := b.pending.take(chatID)
	if !ok || pc.callbackData() != data {
		b.reply(chatID, b.phrase(chatID, "confirm_expired"))
		return
	}
	b.runInstantConversion(context.Background(), chatID, pc)
}

// runInstantConversion executes quote then accept. Any failure at any step
// produces one terminal failed order; nothing is retried.
func (b *Bot) runInstantConversion(ctx context.Context, chatID int64, pc pendingConvert) {
	quote, err := b.ex.GetQuote(ctx, pc.FromAsset, pc.ToAsset, pc.Amount)
	if err != nil {
		b.failConversion(chatID, pc, err)
		return
	}

	result, err := b.ex.AcceptQuote(ctx, quote.QuoteID)
	if err != nil {
		b.failConversion(chatID, pc, err)
		return
	}
	if result.OrderID == "" {
		b.failConversion(chatID, pc, fmt.Errorf("exchange returned no order id"))
		return
	}

	order := &models.Order{
		OrderID:   result.OrderID,
		ChatID:    chatID,
		FromAsset: pc.FromAsset,
		ToAsset:   pc.ToAsset,
		Amount:    pc.Amount,
		Status:    models.OrderStatusCompleted,
	}
	if err := b.store.Insert(order); err != nil {
		// The conversion already settled on the exchange; losing the row is
		// an ops problem, not a user one.
		b.log.WithError(err).WithField("order_id", order.OrderID).Error("failed to persist completed order")
		b.notifyAdmin(fmt.Sprintf("failed to persist completed order %s for chat %d: %v", order.OrderID, chatID, err))
	}
	b.metrics.OrdersCreated.WithLabelValues(models.OrderStatusCompleted).Inc()

	b.log.WithFields(logrus.Fields{
		"chat_id":  chatID,
		"order_id": order.OrderID,
		"pair":     pc.FromAsset + "/" + pc.ToAsset,
	}).Info("conversion completed")
	b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "convert_done"), EscapeMarkdown(order.OrderID)))
}

// failConversion records a terminal failed order under a locally generated id
// and notifies both the user and the admin.
func (b *Bot) failConversion(chatID int64, pc pendingConvert, cause error) {
	b.metrics.ExchangeErrors.Inc()

	order := &models.Order{
		OrderID:   models.NewOrderID(),
		ChatID:    chatID,
		FromAsset: pc.FromAsset,
		ToAsset:   pc.ToAsset,
		Amount:    pc.Amount,
		Status:    models.OrderStatusFailed,
		Error:     cause.Error(),
	}
	if err := b.store.Insert(order); err != nil {
		b.log.WithError(err).Error("failed to persist failed order")
	}
	b.metrics.OrdersCreated.WithLabelValues(models.OrderStatusFailed).Inc()

	b.log.WithFields(logrus.Fields{
		"chat_id": chatID,
		"pair":    pc.FromAsset + "/" + pc.ToAsset,
	}).WithError(cause).Error("conversion failed")

	b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "convert_failed"), EscapeMarkdown(cause.Error())))
	b.notifyAdmin(fmt.Sprintf("conversion %s→%s for chat %d failed: %v",
		pc.FromAsset, pc.ToAsset, chatID, cause))
}

func (pc pendingConvert) callbackData() string {
	return callbackConfirmPrefix + pc.FromAsset + "_" + pc.ToAsset + "_" + formatAmount(pc.Amount)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
