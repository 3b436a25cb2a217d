// Package notify строит исходящие ссылки для уведомления менеджера.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmeshcher/zayavki-crm/internal/codec"
	"github.com/mmeshcher/zayavki-crm/internal/model"
)

const displayLayout = "02.01.2006 15:04"

// WhatsAppLink собирает deep link на отправку сводки заявки в WhatsApp
// менеджера. Ссылка только формируется, никакой HTTP-запрос не
// выполняется: открыть её — действие оператора.
func WhatsAppLink(managerPhone string, r model.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Заявка №%s\n", r.Number)
	fmt.Fprintf(&b, "Телефон: %s\n", r.Phone)
	fmt.Fprintf(&b, "Адрес: %s\n", r.Address)
	fmt.Fprintf(&b, "Доставка: %s\n", r.DeliveryAt.Format(displayLayout))
	if r.Comment != "" {
		fmt.Fprintf(&b, "Комментарий: %s\n", r.Comment)
	}
	if r.OrderText != "" {
		b.WriteString("\n")
		b.WriteString(r.OrderText)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nИтого: %s РУБ.", codec.FormatPriceKop(r.TotalKop))

	return "https://wa.me/" + managerPhone + "?text=" + url.QueryEscape(b.String())
}
