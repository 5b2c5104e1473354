package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFallsBackToDefault(t *testing.T) {
	assert.Equal(t, LocaleEN, Parse("en"))
	assert.Equal(t, LocaleEN, Parse(" EN "))
	assert.Equal(t, LocaleRU, Parse("ru"))
	assert.Equal(t, DefaultLocale, Parse("de"))
	assert.Equal(t, DefaultLocale, Parse(""))
}

func TestGetUnknownLocale(t *testing.T) {
	assert.Equal(t, tables[DefaultLocale], Get(Locale("fr")))
}

func TestIsSkip(t *testing.T) {
	tests := []struct {
		name string
		loc  Locale
		text string
		want bool
	}{
		{"ru token", LocaleRU, "пропустить", true},
		{"ru token upper", LocaleRU, "ПРОПУСТИТЬ", true},
		{"ru token padded", LocaleRU, "  пропустить ", true},
		{"en token", LocaleEN, "skip", true},
		{"en token mixed case", LocaleEN, "Skip", true},
		{"wrong locale token", LocaleEN, "пропустить", false},
		{"free text", LocaleRU, "не надо", false},
		{"empty", LocaleEN, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSkip(tt.loc, tt.text))
		})
	}
}
