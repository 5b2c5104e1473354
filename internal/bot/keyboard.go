package bot

import (
	tele "gopkg.in/telebot.v4"

	"intakebot/core/telegram/keyboard"
)

// Callback uniques. The payload of order actions is the order ID.
const (
	cbOrderInProgress = "order_in_progress"
	cbOrderDone       = "order_done"
	cbOrderDelete     = "order_delete"
	cbIntakeLang      = "intake_lang"
)

// StatusKeyboard builds the action keyboard attached to an order card.
func StatusKeyboard(orderID string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🔄 В процессе", Unique: cbOrderInProgress, Data: orderID},
		{Text: "✅ Выполнено", Unique: cbOrderDone, Data: orderID},
		{Text: "🗑 Удалить", Unique: cbOrderDelete, Data: orderID},
	})
}

// LanguageKeyboard builds the language picker shown after /start.
func LanguageKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🇷🇺 Русский", Unique: cbIntakeLang, Data: "ru"},
		{Text: "🇺🇸 English", Unique: cbIntakeLang, Data: "en"},
	})
}
