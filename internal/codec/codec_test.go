package codec

import (
	"reflect"
	"testing"

	"github.com/mmeshcher/zayavki-crm/internal/model"
)

func TestEncode(t *testing.T) {
	items := []model.LineItem{
		{Name: "Вода 19л", Quantity: 2, PriceKop: 35000},
		{Name: "Помпа", Quantity: 1, PriceKop: 123456, Note: "синяя"},
	}

	want := "Вода 19л - 2 шт. (по 350,00 РУБ.)\n" +
		"Помпа - 1 шт. (по 1 234,56 РУБ.) | синяя"

	if got := Encode(items); got != want {
		t.Fatalf("Encode =\n%q\nwant:\n%q", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if got := Encode(nil); got != "" {
		t.Fatalf("Encode(nil) = %q, want empty", got)
	}
}

func TestDecode(t *testing.T) {
	text := "Вода 19л - 2 шт. (по 350,00 РУБ.)\n" +
		"Помпа - 1 шт. (по 1 234,56 РУБ.) | синяя"

	items := Decode(text)
	if len(items) != 2 {
		t.Fatalf("decoded %d items, want 2", len(items))
	}

	if items[0].Name != "Вода 19л" || items[0].Quantity != 2 || items[0].PriceKop != 35000 || items[0].Note != "" {
		t.Fatalf("first item = %+v", items[0])
	}
	if items[1].Note != "синяя" || items[1].PriceKop != 123456 {
		t.Fatalf("second item = %+v", items[1])
	}
}

func TestDecodeUnparsablePrice(t *testing.T) {
	items := Decode("Вода 19л - 2 шт. (по мн-ого РУБ.)")
	if len(items) != 1 {
		t.Fatalf("decoded %d items, want 1", len(items))
	}
	// Испорченная цена деградирует до нуля, а не до ошибки.
	if items[0].PriceKop != 0 {
		t.Fatalf("price = %d, want 0", items[0].PriceKop)
	}
	if items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", items[0].Quantity)
	}
}

func TestDecodeSkipsForeignLines(t *testing.T) {
	items := Decode("произвольный текст\n\nВода 19л - 1 шт. (по 350,00 РУБ.)")
	if len(items) != 1 || items[0].Name != "Вода 19л" {
		t.Fatalf("items = %+v", items)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := [][]model.LineItem{
		{
			{Name: "Вода 19л", Quantity: 1, PriceKop: 35000},
		},
		{
			{Name: "Вода 19л", Quantity: 2, PriceKop: 35000, Note: "домофон 45"},
			{Name: "Помпа", Quantity: 1, PriceKop: 45050},
			{Name: "Стаканы", Quantity: 10, PriceKop: 9900, Note: "и держатель"},
		},
		{
			{Name: "Кулер напольный", Quantity: 3, PriceKop: 1234567},
		},
	}

	for _, items := range cases {
		got := Decode(Encode(items))
		if !reflect.DeepEqual(got, items) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, items)
		}
	}
}

func TestFormatPriceKop(t *testing.T) {
	tests := []struct {
		kop  int64
		want string
	}{
		{0, "0,00"},
		{500, "5,00"},
		{35000, "350,00"},
		{123456, "1 234,56"},
		{123456789, "1 234 567,89"},
		{-123456, "-1 234,56"},
	}

	for _, tt := range tests {
		if got := FormatPriceKop(tt.kop); got != tt.want {
			t.Fatalf("FormatPriceKop(%d) = %q, want %q", tt.kop, got, tt.want)
		}
	}
}

func TestParsePriceKop(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"350,00", 35000, true},
		{"1 234,56", 123456, true},
		{"1234.56", 123456, true},
		{"1500", 150000, true},
		{"мн-ого", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := ParsePriceKop(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("ParsePriceKop(%q) err = %v, ok want %v", tt.in, err, tt.ok)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParsePriceKop(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
