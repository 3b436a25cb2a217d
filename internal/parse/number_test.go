package parse

import "testing"

func TestOrderNumber(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "anchor with number sign",
			text:  "Заявка №456 готова",
			want:  "456",
			found: true,
		},
		{
			name:  "anchor zakaz",
			text:  "по заказу 105 вопрос",
			want:  "105",
			found: true,
		},
		{
			name:  "anchor schet with colon",
			text:  "счет: 777",
			want:  "777",
			found: true,
		},
		{
			name:  "inflected anchor schet",
			text:  "оплатите по счету 12",
			want:  "12",
			found: true,
		},
		{
			name:  "bare number sign",
			text:  "подтвердите № 12",
			want:  "12",
			found: true,
		},
		{
			name:  "case insensitive",
			text:  "ЗАЯВКИ 9 больше нет",
			want:  "9",
			found: true,
		},
		{
			name:  "first match wins over later anchors",
			text:  "заказ 11, счет 22",
			want:  "11",
			found: true,
		},
		{
			name:  "no anchored number",
			text:  "привезите завтра 5 коробок",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := OrderNumber(tt.text)
			if found != tt.found {
				t.Fatalf("OrderNumber(%q) found = %v, want %v", tt.text, found, tt.found)
			}
			if found && got != tt.want {
				t.Fatalf("OrderNumber(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
