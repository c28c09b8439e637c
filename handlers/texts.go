package handlers

// Reply templates, keyed by language. Static text is written MarkdownV2-safe;
// dynamic values are escaped at the call site. Anything beyond this flat
// table (plural rules, locale files) is intentionally out of scope.

const (
	langEnglish = "en"
	langSpanish = "es"
)

var phrases = map[string]map[string]string{
	langEnglish: {
		"welcome":          "Welcome 👋 Use the menu below or /help to see what I can do",
		"help":             "*Commands*\n/convert FROM TO AMOUNT \\- instant conversion\n/placeorder FROM TO AMOUNT PRICE \\- limit order\n/cancelorder ID \\- cancel a limit order\n/status ID \\- order status\n/tradehistory \\- your last 10 orders\n/exchangeinfo \\[PAIRS\\] \\- exchange pair info\n/assetinfo ASSETS \\- asset precision info",
		"unknown":          "I did not understand that 🤔 Use /help to see the available commands",
		"rate_limited":     "Too many requests ⏳ Please wait a bit before converting again",
		"usage_convert":    "Usage: /convert FROM TO AMOUNT\nExample: /convert ETH BTC 0\\.5",
		"invalid_amount":   "The amount must be a positive number",
		"unsupported_pair": "The pair %s/%s is not supported",
		"confirm_prompt":   "Convert *%s %s* to *%s*?",
		"confirm_button":   "✅ Confirm",
		"cancel_button":    "❌ Cancel",
		"confirm_expired":  "This confirmation is no longer valid, send /convert again",
		"convert_canceled": "Conversion canceled",
		"convert_done":     "Conversion completed ✅\nOrder ID: `%s`",
		"convert_failed":   "Conversion failed ❗\nError: %s",
		"usage_placeorder": "Usage: /placeorder FROM TO AMOUNT PRICE\nExample: /placeorder XRP USD 100 0\\.52",
		"invalid_price":    "The price must be a positive number",
		"order_placed":     "Limit order placed 📌\nOrder ID: `%s`",
		"order_failed":     "Order placement failed ❗\nError: %s",
		"usage_cancel":     "Usage: /cancelorder ORDER\\_ID",
		"order_canceled":   "Order `%s` canceled",
		"cancel_failed":    "Could not cancel order `%s`\nError: %s",
		"usage_status":     "Usage: /status ORDER\\_ID",
		"order_not_found":  "No order with that ID was found for you",
		"order_status":     "Order `%s`\nPair: %s → %s\nAmount: %s\nStatus: *%s*",
		"order_error":      "\nError: %s",
		"no_history":       "You have no trade history yet",
		"history_header":   "*Your last orders*",
		"denied":           "You are not allowed to use this command 🚫",
		"usage_addassets":  "Usage: /addassets FROM:TO\\[,FROM:TO\\.\\.\\.\\]",
		"usage_rmassets":   "Usage: /removeassets FROM:TO\\[,FROM:TO\\.\\.\\.\\]",
		"pairs_added":      "Added pairs: %s",
		"pairs_duplicate":  "Already present: %s",
		"pairs_removed":    "Removed pairs: %s",
		"pairs_missing":    "Not found: %s",
		"pairs_none":       "No valid pairs given",
		"exchange_failed":  "The exchange request failed, please try again later",
		"pairs_unmatched":  "Unmatched pairs: %s",
		"assets_not_found": "Assets not found: %s",
		"usage_assetinfo":  "Usage: /assetinfo ASSET \\[ASSET\\.\\.\\.\\]",
		"open_orders_none": "You have no open orders on the exchange",
		"language_set":     "Language set to English 🇬🇧",
		"menu_prompt":      "Choose an option from the menu below",
		"internal_error":   "Something went wrong, please try again later",
	},
	langSpanish: {
		"welcome":          "Bienvenido 👋 Usa el menú o /help para ver qué puedo hacer",
		"help":             "*Comandos*\n/convert FROM TO AMOUNT \\- conversión instantánea\n/placeorder FROM TO AMOUNT PRICE \\- orden límite\n/cancelorder ID \\- cancelar una orden límite\n/status ID \\- estado de la orden\n/tradehistory \\- tus últimas 10 órdenes\n/exchangeinfo \\[PAIRS\\] \\- información de pares\n/assetinfo ASSETS \\- precisión de activos",
		"unknown":          "No entendí eso 🤔 Usa /help para ver los comandos disponibles",
		"rate_limited":     "Demasiadas solicitudes ⏳ Espera un poco antes de convertir de nuevo",
		"usage_convert":    "Uso: /convert FROM TO AMOUNT\nEjemplo: /convert ETH BTC 0\\.5",
		"invalid_amount":   "La cantidad debe ser un número positivo",
		"unsupported_pair": "El par %s/%s no está soportado",
		"confirm_prompt":   "¿Convertir *%s %s* a *%s*?",
		"confirm_button":   "✅ Confirmar",
		"cancel_button":    "❌ Cancelar",
		"confirm_expired":  "Esta confirmación ya no es válida, envía /convert de nuevo",
		"convert_canceled": "Conversión cancelada",
		"convert_done":     "Conversión completada ✅\nID de orden: `%s`",
		"convert_failed":   "La conversión falló ❗\nError: %s",
		"usage_placeorder": "Uso: /placeorder FROM TO AMOUNT PRICE\nEjemplo: /placeorder XRP USD 100 0\\.52",
		"invalid_price":    "El precio debe ser un número positivo",
		"order_placed":     "Orden límite creada 📌\nID de orden: `%s`",
		"order_failed":     "La creación de la orden falló ❗\nError: %s",
		"usage_cancel":     "Uso: /cancelorder ORDER\\_ID",
		"order_canceled":   "Orden `%s` cancelada",
		"cancel_failed":    "No se pudo cancelar la orden `%s`\nError: %s",
		"usage_status":     "Uso: /status ORDER\\_ID",
		"order_not_found":  "No se encontró ninguna orden con ese ID",
		"order_status":     "Orden `%s`\nPar: %s → %s\nCantidad: %s\nEstado: *%s*",
		"order_error":      "\nError: %s",
		"no_history":       "Aún no tienes historial de operaciones",
		"history_header":   "*Tus últimas órdenes*",
		"denied":           "No tienes permiso para usar este comando 🚫",
		"usage_addassets":  "Uso: /addassets FROM:TO\\[,FROM:TO\\.\\.\\.\\]",
		"usage_rmassets":   "Uso: /removeassets FROM:TO\\[,FROM:TO\\.\\.\\.\\]",
		"pairs_added":      "Pares añadidos: %s",
		"pairs_duplicate":  "Ya presentes: %s",
		"pairs_removed":    "Pares eliminados: %s",
		"pairs_missing":    "No encontrados: %s",
		"pairs_none":       "No se indicaron pares válidos",
		"exchange_failed":  "La solicitud al exchange falló, inténtalo más tarde",
		"pairs_unmatched":  "Pares sin coincidencia: %s",
		"assets_not_found": "Activos no encontrados: %s",
		"usage_assetinfo":  "Uso: /assetinfo ASSET \\[ASSET\\.\\.\\.\\]",
		"open_orders_none": "No tienes órdenes abiertas en el exchange",
		"language_set":     "Idioma cambiado a español 🇪🇸",
		"menu_prompt":      "Elige una opción del menú",
		"internal_error":   "Algo salió mal, inténtalo de nuevo más tarde",
	},
}

// phrase resolves a reply template for the chat's preferred language,
// falling back to English.
func (b *Bot) phrase(chatID int64, key string) string {
	lang := b.limiter.Language(chatID)
	if table, ok := phrases[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return phrases[langEnglish][key]
}
