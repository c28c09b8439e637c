package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// menuAction enumerates the fixed reply-keyboard labels. Free text is matched
// against this table once, in handleMenu, instead of string comparisons
// scattered through the handlers.
type menuAction int

const (
	menuActionConvert menuAction = iota
	menuActionHistory
	menuActionOpenOrders
	menuActionExchangeInfo
	menuActionLanguage
	menuActionHelp
)

const (
	labelConvert      = "💱 Convert"
	labelHistory      = "📋 Trade History"
	labelOpenOrders   = "📑 Open Orders"
	labelExchangeInfo = "📊 Exchange Info"
	labelLanguage     = "🌐 Language"
	labelHelp         = "🆘 Help"
)

var menuActions = map[string]menuAction{
	labelConvert:      menuActionConvert,
	labelHistory:      menuActionHistory,
	labelOpenOrders:   menuActionOpenOrders,
	labelExchangeInfo: menuActionExchangeInfo,
	labelLanguage:     menuActionLanguage,
	labelHelp:         menuActionHelp,
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labelConvert),
			tgbotapi.NewKeyboardButton(labelHistory),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labelOpenOrders),
			tgbotapi.NewKeyboardButton(labelExchangeInfo),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(labelLanguage),
			tgbotapi.NewKeyboardButton(labelHelp),
		),
	)
}
