package parse

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeliveryDate(t *testing.T) {
	today := date(2025, 3, 1)

	tests := []struct {
		name      string
		text      string
		today     time.Time
		want      time.Time
		found     bool
		corrected bool
	}{
		{
			name:  "no date phrase defaults to tomorrow",
			text:  "привезите по адресу ул. Мира 10",
			today: today,
			want:  date(2025, 3, 2),
			found: false,
		},
		{
			name:  "tomorrow keyword",
			text:  "привезите завтра",
			today: today,
			want:  date(2025, 3, 2),
			found: true,
		},
		{
			name:  "day after tomorrow wins over its substring",
			text:  "привезите послезавтра",
			today: today,
			want:  date(2025, 3, 3),
			found: true,
		},
		{
			name:  "explicit date with full year",
			text:  "доставка 05.03.2025",
			today: today,
			want:  date(2025, 3, 5),
			found: true,
		},
		{
			name:  "explicit date with two-digit year",
			text:  "нужно к 01.04.26",
			today: today,
			want:  date(2026, 4, 1),
			found: true,
		},
		{
			name:  "slash separator",
			text:  "привезти 7/11",
			today: today,
			want:  date(2025, 11, 7),
			found: true,
		},
		{
			name:      "past date rolls the year forward",
			text:      "доставка 01.01",
			today:     date(2025, 6, 1),
			want:      date(2026, 1, 1),
			found:     true,
			corrected: true,
		},
		{
			name:  "invalid calendar date is skipped",
			text:  "встреча 31.02, доставка 05.06",
			today: today,
			want:  date(2025, 6, 5),
			found: true,
		},
		{
			name:  "only invalid dates fall back to tomorrow",
			text:  "встреча 31.02",
			today: today,
			want:  date(2025, 3, 2),
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeliveryDate(tt.text, tt.today)
			if !got.Date.Equal(tt.want) {
				t.Fatalf("date = %v, want %v", got.Date, tt.want)
			}
			if got.Found != tt.found {
				t.Fatalf("found = %v, want %v", got.Found, tt.found)
			}
			if got.Corrected != tt.corrected {
				t.Fatalf("corrected = %v, want %v", got.Corrected, tt.corrected)
			}
		})
	}
}

func TestDeliveryDateTodayIsNotPast(t *testing.T) {
	// Сегодняшняя явная дата не считается прошедшей и год не сдвигает.
	got := DeliveryDate("доставка 01.03.2025", date(2025, 3, 1))
	if !got.Date.Equal(date(2025, 3, 1)) || got.Corrected {
		t.Fatalf("got %v corrected=%v, want 01.03.2025 corrected=false", got.Date, got.Corrected)
	}
}
