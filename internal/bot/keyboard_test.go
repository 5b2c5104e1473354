package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusKeyboardCarriesOrderID(t *testing.T) {
	markup := StatusKeyboard("order-123")
	require.Len(t, markup.InlineKeyboard, 3)

	uniques := make([]string, 0, 3)
	for _, row := range markup.InlineKeyboard {
		require.Len(t, row, 1)
		uniques = append(uniques, row[0].Unique)
		assert.Equal(t, "order-123", row[0].Data)
	}
	assert.Equal(t, []string{cbOrderInProgress, cbOrderDone, cbOrderDelete}, uniques)
}

func TestLanguageKeyboardOffersBothLocales(t *testing.T) {
	markup := LanguageKeyboard()
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "ru", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "en", markup.InlineKeyboard[1][0].Data)
	for _, row := range markup.InlineKeyboard {
		assert.Equal(t, cbIntakeLang, row[0].Unique)
	}
}
