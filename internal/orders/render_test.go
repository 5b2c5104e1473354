package orders

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleOrder(st Status) Order {
	return Order{
		ID:          "11111111-2222-3333-4444-555555555555",
		Number:      "REQ-07152024-001",
		Name:        "J. Doe",
		Phone:       "555-0100",
		Address:     "1 Main St",
		Description: "Fix sink",
		Status:      st,
		CreatedAt:   time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC),
	}
}

func TestRenderNewOrder(t *testing.T) {
	got := Render(sampleOrder(StatusNew))
	want := "<b>Новая заявка!</b>\n" +
		"🧾 Номер: #REQ-07152024-001\n" +
		"👤 Имя: J. Doe\n" +
		"📞 Телефон: 555-0100\n" +
		"🏠 Адрес: 1 Main St\n" +
		"📝 Описание: Fix sink\n" +
		"📌 Статус: <b>новая</b>\n" +
		"⏰ Время: 07/15/2024 02:30 PM"
	assert.Equal(t, want, got)
}

func TestRenderDropsBannerAfterTransition(t *testing.T) {
	got := Render(sampleOrder(StatusInProgress))
	assert.False(t, strings.Contains(got, "Новая заявка"))
	assert.Contains(t, got, "📌 Статус: <b>в процессе</b>")
}

func TestRenderStatusTitles(t *testing.T) {
	tests := []struct {
		st    Status
		title string
	}{
		{StatusNew, "новая"},
		{StatusInProgress, "в процессе"},
		{StatusDone, "выполнено"},
		{StatusDeleted, "удалено"},
	}
	for _, tt := range tests {
		t.Run(string(tt.st), func(t *testing.T) {
			assert.Contains(t, Render(sampleOrder(tt.st)), "<b>"+tt.title+"</b>")
		})
	}
}

func TestRenderPreservesFieldsVerbatim(t *testing.T) {
	o := sampleOrder(StatusNew)
	o.Name = "  spaced  name  "
	o.Description = "line one\nline two"
	got := Render(o)
	assert.Contains(t, got, "👤 Имя:   spaced  name  ")
	assert.Contains(t, got, "📝 Описание: line one\nline two")
}

func TestRenderEscapesUserText(t *testing.T) {
	// Free text must not inject tags into the HTML card.
	o := sampleOrder(StatusNew)
	o.Description = "fix <b>everything</b> & more"
	got := Render(o)
	assert.Contains(t, got, "📝 Описание: fix &lt;b&gt;everything&lt;/b&gt; &amp; more")
	assert.Contains(t, got, "📌 Статус: <b>новая</b>")
}
