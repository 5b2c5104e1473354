// Package format holds text helpers for Telegram messages.
package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats
// specially. Quotes are left alone; Telegram only parses tags and
// entities.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
