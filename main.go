package main

import (
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"telegram-convert-bot/config"
	"telegram-convert-bot/exchange"
	"telegram-convert-bot/handlers"
	"telegram-convert-bot/metrics"
	"telegram-convert-bot/models"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Open the embedded order database
	db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// Initialize Telegram Bot
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("Error creating Telegram bot: %v", err)
	}
	bot.Debug = cfg.Telegram.Debug
	log.Infof("Authorized on account %s", bot.Self.UserName)

	// Fatal conditions past this point get a best-effort admin notice.
	fatalf := func(format string, args ...any) {
		text := fmt.Sprintf(format, args...)
		if _, err := bot.Send(tgbotapi.NewMessage(cfg.Telegram.AdminChatID, "fatal: "+text)); err != nil {
			log.WithError(err).Error("failed to notify admin of fatal error")
		}
		log.Fatal(text)
	}

	registry, err := models.LoadAssetRegistry(cfg.Assets.File)
	if err != nil {
		fatalf("Error loading supported assets: %v", err)
	}

	window, err := cfg.RateLimit.WindowDuration()
	if err != nil {
		fatalf("Invalid rate limit window: %v", err)
	}
	timeout, err := cfg.Exchange.HTTPTimeout()
	if err != nil {
		fatalf("Invalid exchange timeout: %v", err)
	}

	limiter := handlers.NewRateLimiter(cfg.RateLimit.MaxRequests, window, "en")
	client := exchange.NewClient(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, timeout)

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	dispatcher := handlers.NewBot(
		bot,
		log,
		models.NewOrderStore(db),
		registry,
		limiter,
		client,
		m,
		cfg.Telegram.AdminChatID,
	)

	startup := fmt.Sprintf("bot started as @%s with %d supported pairs", bot.Self.UserName, len(registry.Pairs()))
	if _, err := bot.Send(tgbotapi.NewMessage(cfg.Telegram.AdminChatID, startup)); err != nil {
		log.WithError(err).Warn("failed to send startup notice")
	}

	// Start bot handler
	handlers.StartBot(bot, dispatcher)
}
