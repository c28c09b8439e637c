package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"telegram-convert-bot/exchange"
	"telegram-convert-bot/metrics"
	"telegram-convert-bot/models"
)

// Callback payloads for the inline confirm/cancel keyboard.
const (
	callbackConfirmPrefix = "confirm_convert_"
	callbackCancel        = "cancel_convert"
)

// Sender is the part of the Telegram API the handlers use.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Exchange is the exchange client surface the dispatcher drives.
// *exchange.Client satisfies it.
type Exchange interface {
	GetQuote(ctx context.Context, fromAsset, toAsset string, amount float64) (*exchange.Quote, error)
	AcceptQuote(ctx context.Context, quoteID string) (*exchange.OrderResult, error)
	PlaceLimitOrder(ctx context.Context, fromAsset, toAsset string, amount, price float64) (*exchange.OrderResult, error)
	CancelLimitOrder(ctx context.Context, orderID string) error
	ListOpenOrders(ctx context.Context) ([]exchange.OpenOrder, error)
	ExchangeInfo(ctx context.Context) (*exchange.Info, error)
	AssetInfo(ctx context.Context, asset string) (*exchange.AssetDetail, error)
}

// Bot dispatches inbound updates: policy checks, exchange calls, order
// bookkeeping and the user-facing reply, one outbound effect per update.
type Bot struct {
	api         Sender
	log         *logrus.Logger
	store       *models.OrderStore
	assets      *models.AssetRegistry
	limiter     *RateLimiter
	ex          Exchange
	metrics     *metrics.Metrics
	adminChatID int64
	pending     *pendingConfirms
}

func NewBot(
	api Sender,
	log *logrus.Logger,
	store *models.OrderStore,
	assets *models.AssetRegistry,
	limiter *RateLimiter,
	ex Exchange,
	m *metrics.Metrics,
	adminChatID int64,
) *Bot {
	return &Bot{
		api:         api,
		log:         log,
		store:       store,
		assets:      assets,
		limiter:     limiter,
		ex:          ex,
		metrics:     m,
		adminChatID: adminChatID,
		pending:     newPendingConfirms(),
	}
}

// StartBot consumes the update channel until it closes. Each update is
// handled in its own goroutine; the conversion-confirm and registry paths
// carry their own serialization.
func StartBot(api *tgbotapi.BotAPI, bot *Bot) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for update := range updates {
		go bot.HandleUpdate(update)
	}
}

// HandleUpdate routes one update. It is the recovery boundary: no error or
// panic escapes a handler, they end in a log line and an admin notification.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithField("panic", r).Error("handler panicked")
			b.notifyAdmin(fmt.Sprintf("handler panic: %v", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.dispatchCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleMenu(update.Message)
	}
}

func (b *Bot) dispatchCommand(msg *tgbotapi.Message) {
	command := msg.Command()
	b.metrics.CommandsHandled.WithLabelValues(command).Inc()
	b.log.WithFields(logrus.Fields{
		"chat_id": msg.Chat.ID,
		"command": command,
	}).Info("handling command")

	switch command {
	case "start":
		b.handleStart(msg)
	case "help":
		b.handleHelp(msg)
	case "convert":
		b.handleConvert(msg)
	case "placeorder":
		b.handlePlaceOrder(msg)
	case "cancelorder":
		b.handleCancelOrder(msg)
	case "status":
		b.handleStatus(msg)
	case "tradehistory":
		b.handleTradeHistory(msg)
	case "exchangeinfo":
		b.handleExchangeInfo(msg)
	case "assetinfo":
		b.handleAssetInfo(msg)
	case "addassets":
		b.handleAddAssets(msg)
	case "removeassets":
		b.handleRemoveAssets(msg)
	default:
		b.reply(msg.Chat.ID, b.phrase(msg.Chat.ID, "unknown"))
	}
}

// handleMenu routes the fixed reply-keyboard labels. Unmatched free text gets
// the localized unknown reply.
func (b *Bot) handleMenu(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	action, ok := menuActions[msg.Text]
	if !ok {
		b.reply(chatID, b.phrase(chatID, "unknown"))
		return
	}

	b.metrics.CommandsHandled.WithLabelValues("menu").Inc()
	switch action {
	case menuActionConvert:
		b.reply(chatID, b.phrase(chatID, "usage_convert"))
	case menuActionHistory:
		b.sendTradeHistory(chatID)
	case menuActionOpenOrders:
		b.sendOpenOrders(chatID)
	case menuActionExchangeInfo:
		b.sendExchangeInfo(chatID, nil)
	case menuActionLanguage:
		b.toggleLanguage(chatID)
	case menuActionHelp:
		b.reply(chatID, b.phrase(chatID, "help"))
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, b.phrase(msg.Chat.ID, "welcome"))
	reply.ParseMode = tgbotapi.ModeMarkdownV2
	reply.ReplyMarkup = mainMenuKeyboard()
	b.deliver(reply)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, b.phrase(msg.Chat.ID, "help"))
}

func (b *Bot) toggleLanguage(chatID int64) {
	next := langSpanish
	if b.limiter.Language(chatID) == langSpanish {
		next = langEnglish
	}
	b.limiter.SetLanguage(chatID, next)
	b.reply(chatID, b.phrase(chatID, "language_set"))
}

// reply sends a MarkdownV2 message to the chat. Dynamic content must already
// be escaped by the caller.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	b.deliver(msg)
}

func (b *Bot) deliver(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.WithError(err).Error("failed to send message")
	}
}

// notifyAdmin posts to the admin chat, best effort.
func (b *Bot) notifyAdmin(text string) {
	msg := tgbotapi.NewMessage(b.adminChatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Error("failed to notify admin")
	}
}
