package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// explicitDateRe — дата в виде Д.М или Д/М с необязательным годом
// из двух или четырёх цифр.
var explicitDateRe = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})(?:[./](\d{4}|\d{2}))?`)

// DateResult — результат извлечения даты доставки.
//
// Found различает "дата в тексте не найдена" (молчаливый дефолт —
// завтра) и "дата найдена". Corrected выставляется, когда явная дата
// оказалась в прошлом и год был сдвинут вперёд: об этом оператора
// нужно предупредить отдельно.
type DateResult struct {
	Date      time.Time
	Found     bool
	Corrected bool
}

// dateStrategy пытается извлечь дату одним способом. Порядок стратегий
// в списке задаёт приоритет.
type dateStrategy func(text string, today time.Time) (time.Time, bool)

// "послезавтра" проверяется раньше "завтра": второе — подстрока первого.
var dateStrategies = []dateStrategy{
	relativeDate("послезавтра", 2),
	relativeDate("завтра", 1),
	explicitDate,
}

// DeliveryDate извлекает дату доставки из текста. Стратегии пробуются
// по порядку, побеждает первая сработавшая; если ни одна не сработала,
// по умолчанию берётся завтрашний день с Found=false.
func DeliveryDate(text string, today time.Time) DateResult {
	today = atMidnight(today)
	lower := strings.ToLower(text)

	for i, strategy := range dateStrategies {
		date, ok := strategy(lower, today)
		if !ok {
			continue
		}

		res := DateResult{Date: date, Found: true}

		// Относительные даты по построению в будущем; коррекция года
		// применяется только к явным датам.
		if i == len(dateStrategies)-1 {
			for res.Date.Before(today) {
				res.Date = res.Date.AddDate(1, 0, 0)
				res.Corrected = true
			}
		}

		return res
	}

	return DateResult{Date: today.AddDate(0, 0, 1)}
}

func relativeDate(keyword string, days int) dateStrategy {
	return func(text string, today time.Time) (time.Time, bool) {
		if !strings.Contains(text, keyword) {
			return time.Time{}, false
		}
		return today.AddDate(0, 0, days), true
	}
}

func explicitDate(text string, today time.Time) (time.Time, bool) {
	for _, m := range explicitDateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])

		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}

		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date нормализует переполнение (32.01 -> 01.02);
		// такие совпадения датой не считаются и пропускаются.
		if date.Day() != day || date.Month() != time.Month(month) {
			continue
		}

		return date, true
	}

	return time.Time{}, false
}

func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
