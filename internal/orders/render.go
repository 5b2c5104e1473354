package orders

import (
	"fmt"
	"strings"

	"intakebot/core/telegram/format"
)

const cardTimeLayout = "01/02/2006 03:04 PM"

var statusTitles = map[Status]string{
	StatusNew:        "новая",
	StatusInProgress: "в процессе",
	StatusDone:       "выполнено",
	StatusDeleted:    "удалено",
}

// StatusTitle returns the operator-facing title for a status.
func StatusTitle(st Status) string {
	if title, ok := statusTitles[st]; ok {
		return title
	}
	return string(st)
}

// Render produces the operator card text for an order. It is a pure
// function of the order record, so a status transition re-renders the
// whole card instead of patching lines of the previous text. The
// "new request" banner appears only while the order is still new.
func Render(o Order) string {
	var b strings.Builder
	if o.Status == StatusNew {
		b.WriteString("<b>Новая заявка!</b>\n")
	}
	fmt.Fprintf(&b, "🧾 Номер: #%s\n", o.Number)
	fmt.Fprintf(&b, "👤 Имя: %s\n", format.EscapeHTML(o.Name))
	fmt.Fprintf(&b, "📞 Телефон: %s\n", format.EscapeHTML(o.Phone))
	fmt.Fprintf(&b, "🏠 Адрес: %s\n", format.EscapeHTML(o.Address))
	fmt.Fprintf(&b, "📝 Описание: %s\n", format.EscapeHTML(o.Description))
	fmt.Fprintf(&b, "📌 Статус: <b>%s</b>\n", StatusTitle(o.Status))
	fmt.Fprintf(&b, "⏰ Время: %s", o.CreatedAt.Format(cardTimeLayout))
	return b.String()
}
