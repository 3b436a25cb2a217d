package parse

import "time"

// Result — подсказки, извлечённые из текста переписки. Отсутствие
// подсказки не является ошибкой: соответствующее поле заполняется
// оператором вручную.
type Result struct {
	Phone       string
	PhoneFound  bool
	Number      string
	NumberFound bool
	Delivery    DateResult
}

// Conversation прогоняет все извлекатели по одному тексту переписки.
func Conversation(text string, today time.Time) Result {
	var res Result

	res.Phone, res.PhoneFound = Phone(text)
	res.Number, res.NumberFound = OrderNumber(text)
	res.Delivery = DeliveryDate(text, today)

	return res
}
