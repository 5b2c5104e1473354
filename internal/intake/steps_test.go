package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/core/telegram/state"
	"intakebot/internal/i18n"
)

func TestAdvanceWalksFormInOrder(t *testing.T) {
	d := &Draft{Locale: i18n.LocaleRU}

	next, prompt, ok := Advance(d, StepName, "Иван")
	require.True(t, ok)
	assert.Equal(t, StepPhone, next)
	assert.Equal(t, i18n.Get(i18n.LocaleRU).Phone, prompt)

	next, _, ok = Advance(d, next, "+7 900 000-00-00")
	require.True(t, ok)
	assert.Equal(t, StepAddress, next)

	next, _, ok = Advance(d, next, "ул. Ленина, 1")
	require.True(t, ok)
	assert.Equal(t, StepDescription, next)

	next, prompt, ok = Advance(d, next, "Починить кран")
	require.True(t, ok)
	assert.Equal(t, StepMedia, next)
	assert.Equal(t, i18n.Get(i18n.LocaleRU).Media, prompt)

	assert.Equal(t, "Иван", d.Name)
	assert.Equal(t, "+7 900 000-00-00", d.Phone)
	assert.Equal(t, "ул. Ленина, 1", d.Address)
	assert.Equal(t, "Починить кран", d.Description)
}

func TestAdvanceStoresAnswersVerbatim(t *testing.T) {
	// Phone and address are free text on purpose; nothing is trimmed,
	// rejected, or normalized.
	d := &Draft{Locale: i18n.LocaleEN}
	_, _, ok := Advance(d, StepPhone, "not a phone at all")
	require.True(t, ok)
	assert.Equal(t, "not a phone at all", d.Phone)

	_, _, ok = Advance(d, StepAddress, "  spaces kept  ")
	require.True(t, ok)
	assert.Equal(t, "  spaces kept  ", d.Address)
}

func TestAdvanceRejectsNonTextSteps(t *testing.T) {
	d := &Draft{Locale: i18n.LocaleRU}

	next, _, ok := Advance(d, StepMedia, "whatever")
	assert.False(t, ok)
	assert.Equal(t, StepMedia, next)

	_, _, ok = Advance(d, state.StateIdle, "hello")
	assert.False(t, ok)
}

func TestAdvancePromptsFollowLocale(t *testing.T) {
	d := &Draft{Locale: i18n.LocaleEN}
	_, prompt, ok := Advance(d, StepName, "John")
	require.True(t, ok)
	assert.Equal(t, i18n.Get(i18n.LocaleEN).Phone, prompt)
}
