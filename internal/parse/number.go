package parse

import "regexp"

// orderNumberRe привязывает номер к ключевому слову: "заявка 12",
// "заказ №7", "по счету 105" и т.п. У слов допускаются падежные
// окончания — в живой переписке ключевое слово почти никогда не стоит
// в именительном падеже.
var orderNumberRe = regexp.MustCompile(`(?i)(?:заявк[аиеу]|заказ[аеу]?|счет[аеу]?|номер[аеу]?|№)[\s:№#]*(\d+)`)

// OrderNumber ищет в тексте номер заявки. В отличие от телефона здесь
// нет голосования по частоте: побеждает первое совпадение по порядку
// сканирования. Если в тексте несколько чисел с разными ключевыми
// словами, выбор первого — известное ограничение эвристики.
func OrderNumber(text string) (string, bool) {
	m := orderNumberRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
