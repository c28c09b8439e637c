package handlers

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"telegram-convert-bot/exchange"
	"telegram-convert-bot/metrics"
	"telegram-convert-bot/models"
)

const (
	testChatID  int64 = 42
	testAdminID int64 = 7
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	msgs := f.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

// messagesTo returns the texts sent to one chat.
func (f *fakeSender) messagesTo(chatID int64) []string {
	var out []string
	for _, msg := range f.messages() {
		if msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

type fakeExchange struct {
	mu    sync.Mutex
	calls []string

	quote       *exchange.Quote
	quoteErr    error
	accept      *exchange.OrderResult
	acceptErr   error
	placed      *exchange.OrderResult
	placeErr    error
	cancelErr   error
	openOrders  []exchange.OpenOrder
	openErr     error
	info        *exchange.Info
	infoErr     error
	assetDetail *exchange.AssetDetail
	assetErr    error
}

func (f *fakeExchange) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

func (f *fakeExchange) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeExchange) GetQuote(ctx context.Context, fromAsset, toAsset string, amount float64) (*exchange.Quote, error) {
	f.record("quote")
	return f.quote, f.quoteErr
}

func (f *fakeExchange) AcceptQuote(ctx context.Context, quoteID string) (*exchange.OrderResult, error) {
	f.record("accept")
	return f.accept, f.acceptErr
}

func (f *fakeExchange) PlaceLimitOrder(ctx context.Context, fromAsset, toAsset string, amount, price float64) (*exchange.OrderResult, error) {
	f.record("place")
	return f.placed, f.placeErr
}

func (f *fakeExchange) CancelLimitOrder(ctx context.Context, orderID string) error {
	f.record("cancel")
	return f.cancelErr
}

func (f *fakeExchange) ListOpenOrders(ctx context.Context) ([]exchange.OpenOrder, error) {
	f.record("open")
	return f.openOrders, f.openErr
}

func (f *fakeExchange) ExchangeInfo(ctx context.Context) (*exchange.Info, error) {
	f.record("info")
	return f.info, f.infoErr
}

func (f *fakeExchange) AssetInfo(ctx context.Context, asset string) (*exchange.AssetDetail, error) {
	f.record("asset")
	return f.assetDetail, f.assetErr
}

type testBot struct {
	bot      *Bot
	sender   *fakeSender
	ex       *fakeExchange
	store    *models.OrderStore
	registry *models.AssetRegistry
	assets   string // registry file path
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	dir := t.TempDir()

	assetsFile := filepath.Join(dir, "assets.json")
	require.NoError(t, os.WriteFile(assetsFile,
		[]byte(`[{"fromAsset":"ETH","toAsset":"BTC"},{"fromAsset":"XRP","toAsset":"USD"}]`), 0644))
	registry, err := models.LoadAssetRegistry(assetsFile)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "orders.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}))
	store := models.NewOrderStore(db)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)

	sender := &fakeSender{}
	ex := &fakeExchange{}
	limiter := NewRateLimiter(10, time.Minute, langEnglish)
	bot := NewBot(sender, log, store, registry, limiter, ex, metrics.New(), testAdminID)

	return &testBot{bot: bot, sender: sender, ex: ex, store: store, registry: registry, assets: assetsFile}
}

// commandMessage builds a message whose leading word is a bot command, the
// way the Telegram server marks it up.
func commandMessage(chatID int64, text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		},
	}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb1",
			Data:    data,
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		},
	}
}
