package handlers

import "strings"

// markdownEscaper escapes the characters Telegram's MarkdownV2 parser treats
// as markup. Applied exactly once to every piece of dynamic text before it is
// interpolated into an outbound message.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMarkdown escapes MarkdownV2 reserved characters. Not idempotent:
// escaping already-escaped text doubles the backslashes.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
