package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"telegram-convert-bot/exchange"
	"telegram-convert-bot/models"
)

// Telegram rejects messages over 4096 characters; listings are capped well
// below that.
const maxListedSymbols = 50

// handlePlaceOrder validates everything locally before the network call.
// A rejected amount or price never reaches the exchange and never creates a
// row.
func (b *Bot) handlePlaceOrder(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 4 {
		b.reply(chatID, b.phrase(chatID, "usage_placeorder"))
		return
	}
	fromAsset := models.NormalizeAsset(args[0])
	toAsset := models.NormalizeAsset(args[1])
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil || amount <= 0 {
		b.reply(chatID, b.phrase(chatID, "invalid_amount"))
		return
	}
	price, err := strconv.ParseFloat(args[3], 64)
	if err != nil || price <= 0 {
		b.reply(chatID, b.phrase(chatID, "invalid_price"))
		return
	}
	if !b.assets.Supports(fromAsset, toAsset) {
		b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "unsupported_pair"),
			EscapeMarkdown(fromAsset), EscapeMarkdown(toAsset)))
		return
	}

	result, err := b.ex.PlaceLimitOrder(context.Background(), fromAsset, toAsset, amount, price)
	if err != nil {
		b.metrics.ExchangeErrors.Inc()
		order := &models.Order{
			OrderID:   models.NewOrderID(),
			ChatID:    chatID,
			FromAsset: fromAsset,
			ToAsset:   toAsset,
			Amount:    amount,
			Status:    models.OrderStatusFailed,
			Error:     err.Error(),
		}
		if insertErr := b.store.Insert(order); insertErr != nil {
			b.log.WithError(insertErr).Error("failed to persist failed order")
		}
		b.metrics.OrdersCreated.WithLabelValues(models.OrderStatusFailed).Inc()
		b.log.WithError(err).WithField("chat_id", chatID).Error("limit order placement failed")
		b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "order_failed"), EscapeMarkdown(err.Error())))
		b.notifyAdmin(fmt.Sprintf("limit order %s→%s for chat %d failed: %v", fromAsset, toAsset, chatID, err))
		return
	}

	order := &models.Order{
		OrderID:   result.OrderID,
		ChatID:    chatID,
		FromAsset: fromAsset,
		ToAsset:   toAsset,
		Amount:    amount,
		Status:    models.OrderStatusPending,
	}
	if err := b.store.Insert(order); err != nil {
		b.log.WithError(err).WithField("order_id", order.OrderID).Error("failed to persist pending order")
		b.notifyAdmin(fmt.Sprintf("failed to persist pending order %s for chat %d: %v", order.OrderID, chatID, err))
	}
	b.metrics.OrdersCreated.WithLabelValues(models.OrderStatusPending).Inc()
	b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "order_placed"), EscapeMarkdown(order.OrderID)))
}

// handleCancelOrder forwards the cancellation to the exchange. The order is
// deliberately not checked against the requesting chat first; the exchange is
// the authority on whether the id exists.
func (b *Bot) handleCancelOrder(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	orderID := strings.TrimSpace(msg.CommandArguments())
	if orderID == "" {
		b.reply(chatID, b.phrase(chatID, "usage_cancel"))
		return
	}

	if err := b.ex.CancelLimitOrder(context.Background(), orderID); err != nil {
		b.metrics.ExchangeErrors.Inc()
		b.log.WithError(err).WithField("order_id", orderID).Error("cancel order failed")
		b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "cancel_failed"),
			EscapeMarkdown(orderID), EscapeMarkdown(err.Error())))
		b.notifyAdmin(fmt.Sprintf("cancel of order %s for chat %d failed: %v", orderID, chatID, err))
		return
	}

	if err := b.store.UpdateStatus(orderID, models.OrderStatusCanceled); err != nil {
		// Canceled on the exchange but unknown locally; nothing to roll back.
		b.log.WithError(err).WithField("order_id", orderID).Warn("canceled order has no local row")
	}
	b.reply(chatID, fmt.Sprintf(b.phrase(chatID, "order_canceled"), EscapeMarkdown(orderID)))
}

func (b *Bot) handleStatus(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	orderID := strings.TrimSpace(msg.CommandArguments())
	if orderID == "" {
		b.reply(chatID, b.phrase(chatID, "usage_status"))
		return
	}

	order, err := b.store.Get(orderID, chatID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			b.reply(chatID, b.phrase(chatID, "order_not_found"))
			return
		}
		b.log.WithError(err).Error("order lookup failed")
		b.reply(chatID, b.phrase(chatID, "internal_error"))
		return
	}

	text := fmt.Sprintf(b.phrase(chatID, "order_status"),
		EscapeMarkdown(order.OrderID),
		EscapeMarkdown(order.FromAsset),
		EscapeMarkdown(order.ToAsset),
		EscapeMarkdown(formatAmount(order.Amount)),
		EscapeMarkdown(order.Status))
	if order.Status == models.OrderStatusFailed && order.Error != "" {
		text += fmt.Sprintf(b.phrase(chatID, "order_error"), EscapeMarkdown(order.Error))
	}
	b.reply(chatID, text)
}

func (b *Bot) handleTradeHistory(msg *tgbotapi.Message) {
	b.sendTradeHistory(msg.Chat.ID)
}

func (b *Bot) sendTradeHistory(chatID int64) {
	orders, err := b.store.Recent(chatID, 10)
	if err != nil {
		b.log.WithError(err).Error("trade history query failed")
		b.reply(chatID, b.phrase(chatID, "internal_error"))
		return
	}
	if len(orders) == 0 {
		b.reply(chatID, b.phrase(chatID, "no_history"))
		return
	}

	lines := lo.Map(orders, func(o models.Order, _ int) string {
		return fmt.Sprintf("`%s` %s → %s %s *%s*",
			EscapeMarkdown(o.OrderID),
			EscapeMarkdown(o.FromAsset),
			EscapeMarkdown(o.ToAsset),
			EscapeMarkdown(formatAmount(o.Amount)),
			EscapeMarkdown(o.Status))
	})
	b.reply(chatID, b.phrase(chatID, "history_header")+"\n"+strings.Join(lines, "\n"))
}

func (b *Bot) handleExchangeInfo(msg *tgbotapi.Message) {
	b.sendExchangeInfo(msg.Chat.ID, strings.Fields(msg.CommandArguments()))
}

// sendExchangeInfo lists exchange symbols, optionally filtered to named
// FROM:TO pairs that are also in the registry. Names that do not parse or are
// not registered are listed separately.
func (b *Bot) sendExchangeInfo(chatID int64, names []string) {
	info, err := b.ex.ExchangeInfo(context.Background())
	if err != nil {
		b.metrics.ExchangeErrors.Inc()
		b.log.WithError(err).Error("exchange info query failed")
		b.reply(chatID, b.phrase(chatID, "exchange_failed"))
		b.notifyAdmin(fmt.Sprintf("exchange info query failed: %v", err))
		return
	}

	symbols := info.Symbols
	var unmatched []string
	if len(names) > 0 {
		var wanted []models.SupportedPair
		for _, name := range names {
			pair, err := parsePair(name)
			if err != nil || !b.assets.Supports(pair.FromAsset, pair.ToAsset) {
				unmatched = append(unmatched, name)
				continue
			}
			wanted = append(wanted, pair)
		}
		symbols = lo.Filter(info.Symbols, func(s exchange.SymbolInfo, _ int) bool {
			return lo.SomeBy(wanted, func(p models.SupportedPair) bool {
				return (s.BaseAsset == p.FromAsset && s.QuoteAsset == p.ToAsset) ||
					(s.BaseAsset == p.ToAsset && s.QuoteAsset == p.FromAsset)
			})
		})
	}
	if len(symbols) > maxListedSymbols {
		symbols = symbols[:maxListedSymbols]
	}

	lines := lo.Map(symbols, func(s exchange.SymbolInfo, _ int) string {
		return fmt.Sprintf("`%s` %s/%s %s",
			EscapeMarkdown(s.Symbol),
			EscapeMarkdown(s.BaseAsset),
			EscapeMarkdown(s.QuoteAsset),
			EscapeMarkdown(s.Status))
	})
	text := strings.Join(lines, "\n")
	if len(unmatched) > 0 {
		if text != "" {
			text += "\n"
		}
		text += fmt.Sprintf(b.phrase(chatID, "pairs_unmatched"), EscapeMarkdown(strings.Join(unmatched, ", ")))
	}
	if text == "" {
		text = b.phrase(chatID, "pairs_none")
	}
	b.reply(chatID, text)
}

// handleAssetInfo queries precision per asset, one exchange call each.
// Partial success is fine: found assets are reported, the rest are listed as
// not found.
func (b *Bot) handleAssetInfo(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	assets := strings.Fields(msg.CommandArguments())
	if len(assets) == 0 {
		b.reply(chatID, b.phrase(chatID, "usage_assetinfo"))
		return
	}

	var found []string
	var notFound []string
	for _, asset := range assets {
		asset = models.NormalizeAsset(asset)
		detail, err := b.ex.AssetInfo(context.Background(), asset)
		if err != nil {
			b.metrics.ExchangeErrors.Inc()
			notFound = append(notFound, asset)
			var apiErr *exchange.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				b.log.WithField("asset", asset).Info("asset not known to exchange")
				continue
			}
			// Anything else is an upstream failure, not a missing asset.
			b.log.WithError(err).WithField("asset", asset).Error("asset info lookup failed")
			b.notifyAdmin(fmt.Sprintf("asset info query for %s failed: %v", asset, err))
			continue
		}
		found = append(found, fmt.Sprintf("`%s` precision %d",
			EscapeMarkdown(detail.Asset), detail.Precision))
	}

	text := strings.Join(found, "\n")
	if len(notFound) > 0 {
		if text != "" {
			text += "\n"
		}
		text += fmt.Sprintf(b.phrase(chatID, "assets_not_found"), EscapeMarkdown(strings.Join(notFound, ", ")))
	}
	b.reply(chatID, text)
}

func (b *Bot) sendOpenOrders(chatID int64) {
	orders, err := b.ex.ListOpenOrders(context.Background())
	if err != nil {
		b.metrics.ExchangeErrors.Inc()
		b.log.WithError(err).Error("open orders query failed")
		b.reply(chatID, b.phrase(chatID, "exchange_failed"))
		b.notifyAdmin(fmt.Sprintf("open orders query failed: %v", err))
		return
	}
	if len(orders) == 0 {
		b.reply(chatID, b.phrase(chatID, "open_orders_none"))
		return
	}

	lines := lo.Map(orders, func(o exchange.OpenOrder, _ int) string {
		return fmt.Sprintf("`%s` %s %s @ %s",
			EscapeMarkdown(o.OrderID),
			EscapeMarkdown(o.Symbol),
			EscapeMarkdown(formatAmount(o.Amount)),
			EscapeMarkdown(formatAmount(o.Price)))
	})
	b.reply(chatID, strings.Join(lines, "\n"))
}

// handleAddAssets appends pairs to the registry. Admin only; non-admins get a
// denial and no mutation happens.
func (b *Bot) handleAddAssets(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if chatID != b.adminChatID {
		b.reply(chatID, b.phrase(chatID, "denied"))
		return
	}

	pairs, invalid := parsePairList(msg.CommandArguments())
	if len(pairs) == 0 {
		b.reply(chatID, b.phrase(chatID, "usage_addassets"))
		return
	}

	added, duplicates, err := b.assets.Add(pairs)
	if err != nil {
		b.log.WithError(err).Error("failed to persist asset registry")
		b.notifyAdmin(fmt.Sprintf("asset registry write failed: %v", err))
		b.reply(chatID, b.phrase(chatID, "internal_error"))
		return
	}

	var parts []string
	if len(added) > 0 {
		parts = append(parts, fmt.Sprintf(b.phrase(chatID, "pairs_added"), formatPairs(added)))
	}
	if len(duplicates) > 0 {
		parts = append(parts, fmt.Sprintf(b.phrase(chatID, "pairs_duplicate"), formatPairs(duplicates)))
	}
	if len(invalid) > 0 {
		parts = append(parts, fmt.Sprintf(b.phrase(chatID, "pairs_unmatched"), EscapeMarkdown(strings.Join(invalid, ", "))))
	}
	if len(parts) == 0 {
		parts = append(parts, b.phrase(chatID, "pairs_none"))
	}
	b.reply(chatID, strings.Join(parts, "\n"))
}

// handleRemoveAssets removes pairs, matching either direction. Admin only.
func (b *Bot) handleRemoveAssets(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if chatID != b.adminChatID {
		b.reply(chatID, b.phrase(chatID, "denied"))
		return
	}

	pairs, invalid := parsePairList(msg.CommandArguments())
	if len(pairs) == 0 {
		b.reply(chatID, b.phrase(chatID, "usage_rmassets"))
		return
	}

	removed, missing, err := b.assets.Remove(pairs)
	if err != nil {
		b.log.WithError(err).Error("failed to persist asset registry")
		b.notifyAdmin(fmt.Sprintf("asset registry write failed: %v", err))
		b.reply(chatID, b.phrase(chatID, "internal_error"))
		return
	}

	var parts []string
	if len(removed) > 0 {
		parts = append(parts, fmt.Sprintf(b.phrase(chatID, "pairs_removed"), formatPairs(removed)))
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf(b.phrase(chatID, "pairs_missing"), formatPairs(missing)))
	}
	if len(invalid) > 0 {
		parts = append(parts, fmt.Sprintf(b.phrase(chatID, "pairs_unmatched"), EscapeMarkdown(strings.Join(invalid, ", "))))
	}
	if len(parts) == 0 {
		parts = append(parts, b.phrase(chatID, "pairs_none"))
	}
	b.reply(chatID, strings.Join(parts, "\n"))
}

// parsePair parses one FROM:TO token.
func parsePair(token string) (models.SupportedPair, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) != 2 {
		return models.SupportedPair{}, fmt.Errorf("invalid pair %q", token)
	}
	from := models.NormalizeAsset(parts[0])
	to := models.NormalizeAsset(parts[1])
	if from == "" || to == "" || from == to {
		return models.SupportedPair{}, fmt.Errorf("invalid pair %q", token)
	}
	return models.SupportedPair{FromAsset: from, ToAsset: to}, nil
}

// parsePairList parses "from:to[,from:to...]", returning parsed pairs and the
// tokens that did not parse.
func parsePairList(input string) (pairs []models.SupportedPair, invalid []string) {
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		pair, err := parsePair(token)
		if err != nil {
			invalid = append(invalid, token)
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, invalid
}

func formatPairs(pairs []models.SupportedPair) string {
	names := lo.Map(pairs, func(p models.SupportedPair, _ int) string {
		return p.FromAsset + "/" + p.ToAsset
	})
	return EscapeMarkdown(strings.Join(names, ", "))
}
