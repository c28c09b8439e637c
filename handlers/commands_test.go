package handlers

import (
	"errors"
	"os"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"telegram-convert-bot/exchange"
	"telegram-convert-bot/models"
)

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
}

func TestPlaceOrderRejectsNegativeAmount(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.dispatchCommand(commandMessage(testChatID, "/placeorder XRP USD -5 0.5"))

	require.Zero(t, tb.ex.callCount(), "validation must happen before any network call")
	orders, err := tb.store.Recent(testChatID, 10)
	require.NoError(t, err)
	require.Empty(t, orders)
	require.Equal(t, phrases[langEnglish]["invalid_amount"], tb.sender.lastMessage(t).Text)
}

func TestPlaceOrderRejectsZeroPrice(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.dispatchCommand(commandMessage(testChatID, "/placeorder XRP USD 5 0"))

	require.Zero(t, tb.ex.callCount())
	require.Equal(t, phrases[langEnglish]["invalid_price"], tb.sender.lastMessage(t).Text)
}

func TestPlaceOrderPersistsPendingRow(t *testing.T) {
	tb := newTestBot(t)
	tb.ex.placed = &exchange.OrderResult{OrderID: "lo1"}

	tb.bot.dispatchCommand(commandMessage(testChatID, "/placeorder xrp usd 100 0.52"))

	order, err := tb.store.Get("lo1", testChatID)
	require.NoError(t, err)
	require.Equal(t, "XRP", order.FromAsset)
	require.Equal(t, "USD", order.ToAsset)
	require.Equal(t, 100.0, order.Amount)
	require.Equal(t, models.OrderStatusPending, order.Status)
}

func TestPlaceOrderFailureInsertsFailedRow(t *testing.T) {
	tb := newTestBot(t)
	tb.ex.placeErr = errors.New("insufficient balance")

	tb.bot.dispatchCommand(commandMessage(testChatID, "/placeorder XRP USD 100 0.52"))

	orders, err := tb.store.Recent(testChatID, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, models.OrderStatusFailed, orders[0].Status)
	require.Contains(t, orders[0].Error, "insufficient balance")
	require.NotEmpty(t, tb.sender.messagesTo(testAdminID))
}

func TestCancelOrderUpdatesRow(t *testing.T) {
	tb := newTestBot(t)
	require.NoError(t, tb.store.Insert(&models.Order{
		OrderID: "lo1", ChatID: testChatID,
		FromAsset: "XRP", ToAsset: "USD", Amount: 100,
		Status: models.OrderStatusPending,
	}))

	tb.bot.dispatchCommand(commandMessage(testChatID, "/cancelorder lo1"))

	order, err := tb.store.Get("lo1", testChatID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCanceled, order.Status)
	// Cancellation only touches status.
	require.Equal(t, "XRP", order.FromAsset)
	require.Equal(t, 100.0, order.Amount)
}

func TestCancelOrderExchangeFailureLeavesRow(t *testing.T) {
	tb := newTestBot(t)
	tb.ex.cancelErr = &exchange.APIError{StatusCode: 400, Code: 2011, Message: "unknown order"}
	require.NoError(t, tb.store.Insert(&models.Order{
		OrderID: "lo1", ChatID: testChatID,
		FromAsset: "XRP", ToAsset: "USD", Amount: 100,
		Status: models.OrderStatusPending,
	}))

	tb.bot.dispatchCommand(commandMessage(testChatID, "/cancelorder lo1"))

	order, err := tb.store.Get("lo1", testChatID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.NotEmpty(t, tb.sender.messagesTo(testAdminID))
}

func TestStatusNotFound(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.dispatchCommand(commandMessage(testChatID, "/status nope"))

	require.Equal(t, phrases[langEnglish]["order_not_found"], tb.sender.lastMessage(t).Text)
}

func TestStatusReportsFailureReason(t *testing.T) {
	tb := newTestBot(t)
	require.NoError(t, tb.store.Insert(&models.Order{
		OrderID: "f1", ChatID: testChatID,
		FromAsset: "ETH", ToAsset: "BTC", Amount: 0.5,
		Status: models.OrderStatusFailed, Error: "quote expired",
	}))

	tb.bot.dispatchCommand(commandMessage(testChatID, "/status f1"))

	text := tb.sender.lastMessage(t).Text
	require.Contains(t, text, "failed")
	require.Contains(t, text, "quote expired")
}

func TestStatusScopedToChat(t *testing.T) {
	tb := newTestBot(t)
	require.NoError(t, tb.store.Insert(&models.Order{
		OrderID: "o1", ChatID: 99,
		FromAsset: "ETH", ToAsset: "BTC", Amount: 0.5,
		Status: models.OrderStatusCompleted,
	}))

	tb.bot.dispatchCommand(commandMessage(testChatID, "/status o1"))

	require.Equal(t, phrases[langEnglish]["order_not_found"], tb.sender.lastMessage(t).Text)
}

func TestTradeHistoryEmpty(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.dispatchCommand(commandMessage(testChatID, "/tradehistory"))

	require.Equal(t, phrases[langEnglish]["no_history"], tb.sender.lastMessage(t).Text)
}

func TestAddAssetsNonAdminDenied(t *testing.T) {
	tb := newTestBot(t)
	before, err := os.ReadFile(tb.assets)
	require.NoError(t, err)

	tb.bot.dispatchCommand(commandMessage(testChatID, "/addassets ltc:usd"))

	require.Equal(t, phrases[langEnglish]["denied"], tb.sender.lastMessage(t).Text)
	after, err := os.ReadFile(tb.assets)
	require.NoError(t, err)
	require.Equal(t, before, after, "registry file must not change")
	require.Empty(t, tb.sender.messagesTo(testAdminID), "permission errors do not notify the admin")
}

func TestAddAssetsAdmin(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.dispatchCommand(commandMessage(testAdminID, "/addassets ltc:usd,btc:eth"))

	// btc:eth already exists as ETH/BTC, ltc:usd is new.
	text := tb.sender.lastMessage(t).Text
	require.Contains(t, text, "LTC/USD")
	require.Contains(t, text, "BTC/ETH")
	require.True(t, tb.registry.Supports("LTC", "USD"))

	// The file is the source of truth: a fresh load sees the new pair.
	reloaded, err := models.LoadAssetRegistry(tb.assets)
	require.NoError(t, err)
	require.True(t, reloaded.Supports("usd", "ltc"))
}

func TestRemoveAssetsEitherDirection(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.dispatchCommand(commandMessage(testAdminID, "/removeassets btc:eth,doge:usd"))

	require.False(t, tb.registry.Supports("ETH", "BTC"))
	text := tb.sender.lastMessage(t).Text
	require.Contains(t, text, "Removed")
	require.Contains(t, text, "Not found")
}

func TestExchangeInfoFiltersToRegistry(t *testing.T) {
	tb := newTestBot(t)
	tb.ex.info = &exchange.Info{Symbols: []exchange.SymbolInfo{
		{Symbol: "ETHBTC", BaseAsset: "ETH", QuoteAsset: "BTC", Status: "TRADING"},
		{Symbol: "XRPUSD", BaseAsset: "XRP", QuoteAsset: "USD", Status: "TRADING"},
	}}

	tb.bot.dispatchCommand(commandMessage(testChatID, "/exchangeinfo eth:btc doge:usd"))

	text := tb.sender.lastMessage(t).Text
	require.Contains(t, text, "ETHBTC")
	require.NotContains(t, text, "XRPUSD")
	require.Contains(t, text, "doge:usd", "unregistered pairs are listed separately")
}

func TestAssetInfoPartialSuccess(t *testing.T) {
	tb := newTestBot(t)
	tb.ex.assetDetail = &exchange.AssetDetail{Asset: "ETH", Precision: 8}

	tb.bot.dispatchCommand(commandMessage(testChatID, "/assetinfo eth"))
	require.Contains(t, tb.sender.lastMessage(t).Text, "precision 8")

	tb.ex.assetDetail = nil
	tb.ex.assetErr = &exchange.APIError{StatusCode: 404, Message: "unknown asset"}
	tb.bot.dispatchCommand(commandMessage(testChatID, "/assetinfo doge"))
	require.Contains(t, tb.sender.lastMessage(t).Text, "DOGE")
	require.Empty(t, tb.sender.messagesTo(testAdminID), "a missing asset is not an upstream failure")
}

func TestAssetInfoUpstreamFailureNotifiesAdmin(t *testing.T) {
	tb := newTestBot(t)
	tb.ex.assetErr = &exchange.APIError{StatusCode: 503, Code: 500, Message: "temporarily unavailable"}

	tb.bot.dispatchCommand(commandMessage(testChatID, "/assetinfo eth"))

	require.Contains(t, tb.sender.lastMessage(t).Text, "ETH")
	require.NotEmpty(t, tb.sender.messagesTo(testAdminID), "non-404 failures must reach the admin")
}

func TestUnknownFreeTextGetsUnknownReply(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.HandleUpdate(tgbotapi.Update{Message: textMessage(testChatID, "hello there")})

	require.Equal(t, phrases[langEnglish]["unknown"], tb.sender.lastMessage(t).Text)
}

func TestMenuLabelRoutesToHistory(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.HandleUpdate(tgbotapi.Update{Message: textMessage(testChatID, labelHistory)})

	require.Equal(t, phrases[langEnglish]["no_history"], tb.sender.lastMessage(t).Text)
}

func TestLanguageToggle(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.HandleUpdate(tgbotapi.Update{Message: textMessage(testChatID, labelLanguage)})
	require.Equal(t, phrases[langSpanish]["language_set"], tb.sender.lastMessage(t).Text)

	tb.bot.dispatchCommand(commandMessage(testChatID, "/status nope"))
	require.Equal(t, phrases[langSpanish]["order_not_found"], tb.sender.lastMessage(t).Text)
}
