package record

import (
	"reflect"
	"testing"
	"time"

	"github.com/mmeshcher/zayavki-crm/internal/model"
)

func readyOrder() *model.Order {
	return &model.Order{
		Number:     "456",
		Phone:      "79031234567",
		Address:    "ул. Мира 10",
		DeliveryAt: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Comment:    "домофон не работает",
		Items: []model.LineItem{
			{Name: "Вода 19л", Quantity: 2, PriceKop: 35000},
		},
	}
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *model.Order)
		want   []string
	}{
		{
			name:   "ready order has no missing fields",
			mutate: func(o *model.Order) {},
			want:   nil,
		},
		{
			name:   "missing address is never ready",
			mutate: func(o *model.Order) { o.Address = "  " },
			want:   []string{"адрес"},
		},
		{
			name:   "missing number",
			mutate: func(o *model.Order) { o.Number = "" },
			want:   []string{"номер заявки"},
		},
		{
			name:   "missing phone",
			mutate: func(o *model.Order) { o.Phone = "" },
			want:   []string{"телефон"},
		},
		{
			name:   "no items",
			mutate: func(o *model.Order) { o.Items = nil },
			want:   []string{"позиции заявки"},
		},
		{
			name: "everything missing",
			mutate: func(o *model.Order) {
				*o = model.Order{}
			},
			want: []string{"номер заявки", "телефон", "адрес", "позиции заявки"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := readyOrder()
			tt.mutate(o)

			got := MissingFields(o)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("MissingFields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	entered := time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC)
	b := NewBuilderWithClock(func() time.Time { return entered })

	rec := b.Build(readyOrder())

	if !rec.EnteredAt.Equal(entered) {
		t.Fatalf("entered at = %v, want %v", rec.EnteredAt, entered)
	}
	if rec.TotalKop != 70000 {
		t.Fatalf("total = %d, want 70000", rec.TotalKop)
	}
	if rec.OrderText != "Вода 19л - 2 шт. (по 350,00 РУБ.)" {
		t.Fatalf("order text = %q", rec.OrderText)
	}
}

func TestRowAndFromRow(t *testing.T) {
	entered := time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC)
	b := NewBuilderWithClock(func() time.Time { return entered })
	rec := b.Build(readyOrder())

	row := Row(rec)
	if len(row) != len(Columns) {
		t.Fatalf("row has %d fields, want %d", len(row), len(Columns))
	}
	if row[0] != "01.03.2025 12:30:45" {
		t.Fatalf("entry timestamp = %q", row[0])
	}
	if row[4] != "03.03.2025 00:00:00" {
		t.Fatalf("delivery timestamp = %q", row[4])
	}
	if row[7] != "700,00" {
		t.Fatalf("total = %q", row[7])
	}

	back := FromRow(row)
	if !reflect.DeepEqual(back, rec) {
		t.Fatalf("FromRow(Row(rec)) =\n%+v\nwant\n%+v", back, rec)
	}
}

func TestFromRowMalformed(t *testing.T) {
	rec := FromRow([]string{"не дата", "456", "79031234567", "адрес", "тоже не дата", "", "", "мн-ого"})

	if !rec.EnteredAt.IsZero() || !rec.DeliveryAt.IsZero() {
		t.Fatalf("malformed dates must stay zero: %+v", rec)
	}
	if rec.TotalKop != 0 {
		t.Fatalf("malformed total must stay zero, got %d", rec.TotalKop)
	}
	if rec.Number != "456" {
		t.Fatalf("number = %q", rec.Number)
	}
}
