package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "intakebot/core/telegram/helpers"
	"intakebot/core/telegram/ui"
	"intakebot/internal/i18n"
)

// fallbacks implements ui.FallbackProvider: anything outside an active
// conversation points the user back at /start.
type fallbacks struct {
	locale i18n.Locale
}

var _ ui.FallbackProvider = fallbacks{}

func (f fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, i18n.Get(f.locale).Restart)
	}
}

func (f fallbacks) UnknownMedia() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, i18n.Get(f.locale).Restart)
	}
}

func (f fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Неизвестное действие"})
	}
}
