// Package codec сериализует позиции заявки в текстовый блок и обратно.
//
// Формат строки: "{наименование} - {кол-во} шт. (по {цена} РУБ.)",
// с необязательным хвостом " | {примечание}". Этот же текст хранится
// в ячейке таблицы и показывается оператору — отдельного внутреннего
// формата нет. Экранирования в формате нет: наименование или
// примечание, содержащие "шт.", " | " или перевод строки, не
// переживут обратный разбор. Это унаследованное ограничение формата
// хранения, менять его — значит менять уже записанные данные.
package codec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmeshcher/zayavki-crm/internal/model"
)

var lineRe = regexp.MustCompile(`^(.+) - (\d+) шт\. \(по (.+) РУБ\.\)(?: \| (.*))?$`)

// Encode собирает текстовый блок заявки: по строке на позицию.
func Encode(items []model.LineItem) string {
	lines := make([]string, 0, len(items))
	for _, li := range items {
		line := fmt.Sprintf("%s - %d шт. (по %s РУБ.)", li.Name, li.Quantity, FormatPriceKop(li.PriceKop))
		if li.Note != "" {
			line += " | " + li.Note
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Decode восстанавливает позиции из текстового блока. Строки, не
// подходящие под формат, пропускаются. Нераспознанная цена даёт 0,
// а не ошибку: испорченная историческая запись должна открываться,
// пусть и с заниженной суммой.
func Decode(text string) []model.LineItem {
	var items []model.LineItem

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		quantity, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		price, err := ParsePriceKop(m[3])
		if err != nil {
			price = 0
		}

		items = append(items, model.LineItem{
			Name:     m[1],
			Quantity: quantity,
			PriceKop: price,
			Note:     m[4],
		})
	}

	return items
}

// FormatPriceKop форматирует цену в копейках как "1 234,56":
// пробел — разделитель тысяч, запятая — десятичный разделитель.
func FormatPriceKop(kop int64) string {
	neg := kop < 0
	if neg {
		kop = -kop
	}

	rub := strconv.FormatInt(kop/100, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(rub) % 3
	if lead > 0 {
		b.WriteString(rub[:lead])
	}
	for i := lead; i < len(rub); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(' ')
		}
		b.WriteString(rub[i : i+3])
	}

	return fmt.Sprintf("%s,%02d", b.String(), kop%100)
}

// ParsePriceKop разбирает цену из текста в копейки. Пробелы (в том
// числе неразрывные) считаются разделителями тысяч, запятая и точка —
// десятичным разделителем.
func ParsePriceKop(s string) (int64, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}

	return int64(math.Round(f * 100)), nil
}
