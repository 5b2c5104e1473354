// Package i18n holds the customer-facing message tables for the intake
// conversation. The operator card itself is rendered in the service
// language and does not go through this package.
package i18n

import "strings"

// Locale identifies a supported conversation language.
type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
)

// DefaultLocale is used when a user message arrives with no chosen language.
const DefaultLocale = LocaleRU

// Messages is the full prompt set for one locale. Prompt texts may
// contain Telegram HTML markup.
type Messages struct {
	Welcome     string
	Phone       string
	Address     string
	Description string
	Media       string
	Sent        string
	Error       string
	Confirm     string
	Contact     string
	Restart     string
	SkipToken   string
}

var tables = map[Locale]Messages{
	LocaleRU: {
		Welcome:     "🔧 Добро пожаловать! Введите ваше <b>имя</b>:",
		Phone:       "📞 Введите телефон:",
		Address:     "🏠 Введите адрес:",
		Description: "🛠 Опишите работу:",
		Media:       "📷 Отправьте фото или видео, или напишите <i>пропустить</i>",
		Sent:        "✅ Заявка отправлена!",
		Error:       "⚠ Отправьте фото, видео или 'пропустить'",
		Confirm:     "✅ Заявка принята!",
		Contact:     "Мы свяжемся с вами в ближайшее время!",
		Restart:     "Введите /start для начала",
		SkipToken:   "пропустить",
	},
	LocaleEN: {
		Welcome:     "🔧 Welcome! Please enter your <b>name</b>:",
		Phone:       "📞 Enter your phone number:",
		Address:     "🏠 Enter your address:",
		Description: "🛠 Describe the job:",
		Media:       "📷 Send a photo or video, or type <i>skip</i>",
		Sent:        "✅ Request submitted!",
		Error:       "⚠ Send a photo, video, or 'skip'",
		Confirm:     "✅ Request submitted!",
		Contact:     "We will contact you shortly!",
		Restart:     "Type /start to begin",
		SkipToken:   "skip",
	},
}

// Parse maps a raw locale string to a supported Locale, falling back to
// the default for anything unknown.
func Parse(raw string) Locale {
	switch Locale(strings.ToLower(strings.TrimSpace(raw))) {
	case LocaleEN:
		return LocaleEN
	case LocaleRU:
		return LocaleRU
	}
	return DefaultLocale
}

// Get returns the message table for the locale, falling back to the
// default locale for unknown values.
func Get(loc Locale) Messages {
	if m, ok := tables[loc]; ok {
		return m
	}
	return tables[DefaultLocale]
}

// IsSkip reports whether text is the locale's skip token. The match is
// case-insensitive and ignores surrounding whitespace.
func IsSkip(loc Locale, text string) bool {
	token := Get(loc).SkipToken
	return strings.EqualFold(strings.TrimSpace(text), token)
}
