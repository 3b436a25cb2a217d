package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmeshcher/zayavki-crm/internal/codec"
	"github.com/mmeshcher/zayavki-crm/internal/model"
	"github.com/mmeshcher/zayavki-crm/internal/record"
)

const (
	ordersSheet = "ЗАЯВКИ"
	priceSheet  = "ПРАЙС"
)

// Первая строка каждого листа — заголовок; данные начинаются со второй.
const headerRows = 1

// WorkbookStore хранит заявки и прайс-лист в книге XLSX с листами
// ЗАЯВКИ и ПРАЙС — той же структуры, что исходная таблица. Книга
// сохраняется после каждой мутации; параллельный доступ сериализуется
// мьютексом, межпроцессных блокировок нет (последняя запись побеждает).
type WorkbookStore struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

// NewWorkbookStore открывает книгу по указанному пути либо создаёт
// новую с пустыми листами ЗАЯВКИ и ПРАЙС.
func NewWorkbookStore(path string) (*WorkbookStore, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		return &WorkbookStore{path: path, file: f}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), ordersSheet); err != nil {
		return nil, fmt.Errorf("create orders sheet: %w", err)
	}
	if _, err := f.NewSheet(priceSheet); err != nil {
		return nil, fmt.Errorf("create price sheet: %w", err)
	}

	header := make([]interface{}, len(record.Columns))
	for i, name := range record.Columns {
		header[i] = name
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write orders header: %w", err)
	}
	if err := f.SetSheetRow(priceSheet, "A1", &[]interface{}{"НАИМЕНОВАНИЕ", "ЦЕНА"}); err != nil {
		return nil, fmt.Errorf("write price header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}

	return &WorkbookStore{path: path, file: f}, nil
}

// Close закрывает книгу.
func (s *WorkbookStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// LoadPriceList читает лист ПРАЙС. Строки с пустым наименованием,
// нечисловой или отрицательной ценой исключаются.
func (s *WorkbookStore) LoadPriceList(ctx context.Context) ([]model.PriceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(priceSheet)
	if err != nil {
		return nil, fmt.Errorf("read price sheet: %w", err)
	}

	var items []model.PriceItem
	for i, row := range rows {
		if i < headerRows || len(row) < 2 || row[0] == "" {
			continue
		}
		price, err := codec.ParsePriceKop(row[1])
		if err != nil || price < 0 {
			continue
		}
		items = append(items, model.PriceItem{Name: row[0], PriceKop: price})
	}

	return items, nil
}

// Append добавляет запись в конец книги заявок.
func (s *WorkbookStore) Append(ctx context.Context, r model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.rowCount()
	if err != nil {
		return err
	}

	return s.writeRow(count, r)
}

// InsertAt вставляет запись перед строкой с указанным индексом,
// сдвигая её и последующие строки вниз. Индекс, равный числу строк,
// означает добавление в конец.
func (s *WorkbookStore) InsertAt(ctx context.Context, index int, r model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.rowCount()
	if err != nil {
		return err
	}
	if index < 0 || index > count {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	if index < count {
		if err := s.file.InsertRows(ordersSheet, index+headerRows+1, 1); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	return s.writeRow(index, r)
}

// UpdateAt перезаписывает строку с указанным индексом.
func (s *WorkbookStore) UpdateAt(ctx context.Context, index int, r model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.rowCount()
	if err != nil {
		return err
	}
	if index < 0 || index >= count {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	return s.writeRow(index, r)
}

// FindInsertionIndex возвращает индекс первой строки, чья дата
// доставки не раньше указанной; если таких нет — число строк, то есть
// позицию добавления в конец. Строки с датой, не подходящей под
// фиксированный формат, при поиске пропускаются.
func (s *WorkbookStore) FindInsertionIndex(ctx context.Context, deliveryAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.dataRows()
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if len(row) < 5 {
			continue
		}
		rowAt, err := time.Parse(model.TimestampLayout, row[4])
		if err != nil {
			continue
		}
		if !rowAt.Before(deliveryAt) {
			return i, nil
		}
	}

	return len(rows), nil
}

// FindByOrderNumber возвращает запись с указанным номером заявки.
// При дубликатах побеждает последняя по порядку строк.
func (s *WorkbookStore) FindByOrderNumber(ctx context.Context, number string) (StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.dataRows()
	if err != nil {
		return StoredRecord{}, err
	}

	found := -1
	for i, row := range rows {
		if len(row) >= 2 && row[1] == number {
			found = i
		}
	}
	if found < 0 {
		return StoredRecord{}, fmt.Errorf("%w: %s", ErrOrderNotFound, number)
	}

	return StoredRecord{Index: found, Record: record.FromRow(rows[found])}, nil
}

// NextOrderNumber возвращает следующий свободный номер заявки:
// максимальный числовой номер в книге плюс один.
func (s *WorkbookStore) NextOrderNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.dataRows()
	if err != nil {
		return "", err
	}

	var max int64
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		n, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil || n <= max {
			continue
		}
		max = n
	}

	return strconv.FormatInt(max+1, 10), nil
}

func (s *WorkbookStore) dataRows() ([][]string, error) {
	rows, err := s.file.GetRows(ordersSheet)
	if err != nil {
		return nil, fmt.Errorf("read orders sheet: %w", err)
	}
	if len(rows) <= headerRows {
		return nil, nil
	}
	return rows[headerRows:], nil
}

func (s *WorkbookStore) rowCount() (int, error) {
	rows, err := s.dataRows()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// writeRow пишет запись в строку с индексом index (нумерация данных,
// без заголовка) и сохраняет книгу.
func (s *WorkbookStore) writeRow(index int, r model.Record) error {
	fields := record.Row(r)
	row := make([]interface{}, len(fields))
	for i, v := range fields {
		row[i] = v
	}

	cell, err := excelize.CoordinatesToCellName(1, index+headerRows+1)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := s.file.SetSheetRow(ordersSheet, cell, &row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	if err := s.file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}
