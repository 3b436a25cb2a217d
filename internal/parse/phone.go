// Package parse извлекает данные заявки из свободного текста переписки.
//
// Извлечение основано на регулярных выражениях и эвристиках, а не на
// полноценном разборе языка: ложные срабатывания на произвольном тексте
// возможны, результат всегда остаётся подсказкой для оператора.
package parse

import "regexp"

// phoneRunRe находит максимальные цифровые последовательности с
// разделителями: цифры, пробелы, скобки, точки и дефисы, с цифрой по
// краям. Кандидат проверяется по длине уже после отбрасывания
// разделителей, поэтому обрывок более длинного числа (номер карты,
// дата рядом с телефоном через пробел) отсеивается целиком.
var phoneRunRe = regexp.MustCompile(`\+?\d[\d\s().-]*\d`)

// NormalizePhone приводит строку цифр к каноническому виду 7XXXXXXXXXX.
// Принимаются ровно десять цифр (без кода страны), либо одиннадцать,
// начинающихся с 7 или 8. Все прочие длины и префиксы отклоняются.
func NormalizePhone(digits string) (string, bool) {
	switch {
	case len(digits) == 10:
		return "7" + digits, true
	case len(digits) == 11 && digits[0] == '8':
		return "7" + digits[1:], true
	case len(digits) == 11 && digits[0] == '7':
		return digits, true
	}
	return "", false
}

// Phone ищет в тексте номер телефона клиента. Из всех валидных кандидатов
// возвращается самый частый; при равной частоте побеждает встреченный
// первым. Если ни один кандидат не прошёл нормализацию, возвращается
// false — поле остаётся для ручного ввода.
func Phone(text string) (string, bool) {
	counts := make(map[string]int)
	var order []string

	for _, run := range phoneRunRe.FindAllString(text, -1) {
		phone, ok := NormalizePhone(stripNonDigits(run))
		if !ok {
			continue
		}

		if counts[phone] == 0 {
			order = append(order, phone)
		}
		counts[phone]++
	}

	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, phone := range order[1:] {
		if counts[phone] > counts[best] {
			best = phone
		}
	}

	return best, true
}

// CanonicalPhone нормализует номер, введённый вручную: отбрасывает
// разделители и применяет те же правила, что и NormalizePhone.
func CanonicalPhone(s string) (string, bool) {
	return NormalizePhone(stripNonDigits(s))
}

func stripNonDigits(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
