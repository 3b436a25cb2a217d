package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/zayavki-crm/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore реализует книгу заявок поверх PostgreSQL. Позиционный
// контракт хранилища сохраняется: у каждой строки есть явная колонка
// pos, вставка по индексу сдвигает последующие строки.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище и применяет миграции схемы.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		retryable := isConnectionError(err)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			retryable = pgErr.Code == pgerrcode.SerializationFailure ||
				pgErr.Code == pgerrcode.DeadlockDetected
		}

		if !retryable || i == len(delays) {
			break
		}
		time.Sleep(delays[i])
	}

	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// LoadPriceList читает прайс-лист. Строки с некорректной ценой в эту
// таблицу не попадают по схеме, дополнительная фильтрация не нужна.
func (s *PostgresStore) LoadPriceList(ctx context.Context) ([]model.PriceItem, error) {
	var items []model.PriceItem

	err := s.withRetry(ctx, func() error {
		rows, err := s.pool.Query(ctx,
			`SELECT name, price_kop FROM price_list ORDER BY id`,
		)
		if err != nil {
			return fmt.Errorf("select price list: %w", err)
		}
		defer rows.Close()

		items = items[:0]
		for rows.Next() {
			var it model.PriceItem
			if err := rows.Scan(&it.Name, &it.PriceKop); err != nil {
				return fmt.Errorf("scan price item: %w", err)
			}
			items = append(items, it)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Append добавляет запись в конец книги заявок.
func (s *PostgresStore) Append(ctx context.Context, r model.Record) error {
	return s.withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO zayavki (pos, entered_at, number, phone, address, delivery_at, comment, order_text, total_kop)
			 SELECT COALESCE(MAX(pos) + 1, 0), $1, $2, $3, $4, $5, $6, $7, $8 FROM zayavki`,
			r.EnteredAt, r.Number, r.Phone, r.Address, r.DeliveryAt, r.Comment, r.OrderText, r.TotalKop,
		)
		if err != nil {
			return fmt.Errorf("append record: %w", err)
		}
		return nil
	})
}

// InsertAt вставляет запись перед строкой с указанным индексом.
func (s *PostgresStore) InsertAt(ctx context.Context, index int, r model.Record) error {
	return s.withRetry(ctx, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM zayavki`).Scan(&count); err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		if index < 0 || index > count {
			return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
		}

		_, err = tx.Exec(ctx,
			`UPDATE zayavki SET pos = pos + 1 WHERE pos >= $1`,
			index,
		)
		if err != nil {
			return fmt.Errorf("shift rows: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO zayavki (pos, entered_at, number, phone, address, delivery_at, comment, order_text, total_kop)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			index, r.EnteredAt, r.Number, r.Phone, r.Address, r.DeliveryAt, r.Comment, r.OrderText, r.TotalKop,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}

		return tx.Commit(ctx)
	})
}

// UpdateAt перезаписывает строку с указанным индексом.
func (s *PostgresStore) UpdateAt(ctx context.Context, index int, r model.Record) error {
	return s.withRetry(ctx, func() error {
		cmdTag, err := s.pool.Exec(ctx,
			`UPDATE zayavki
			 SET entered_at = $2, number = $3, phone = $4, address = $5,
			     delivery_at = $6, comment = $7, order_text = $8, total_kop = $9
			 WHERE pos = $1`,
			index, r.EnteredAt, r.Number, r.Phone, r.Address, r.DeliveryAt, r.Comment, r.OrderText, r.TotalKop,
		)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
		}
		return nil
	})
}

// FindInsertionIndex возвращает позицию первой строки, чья дата
// доставки не раньше указанной, либо число строк, если таких нет.
func (s *PostgresStore) FindInsertionIndex(ctx context.Context, deliveryAt time.Time) (int, error) {
	var index int

	err := s.withRetry(ctx, func() error {
		err := s.pool.QueryRow(ctx,
			`SELECT pos FROM zayavki WHERE delivery_at >= $1 ORDER BY pos LIMIT 1`,
			deliveryAt,
		).Scan(&index)
		if errors.Is(err, pgx.ErrNoRows) {
			return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM zayavki`).Scan(&index)
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("find insertion index: %w", err)
	}

	return index, nil
}

// FindByOrderNumber возвращает запись с указанным номером заявки.
// При дубликатах побеждает последняя по порядку строк.
func (s *PostgresStore) FindByOrderNumber(ctx context.Context, number string) (StoredRecord, error) {
	var sr StoredRecord

	err := s.withRetry(ctx, func() error {
		err := s.pool.QueryRow(ctx,
			`SELECT pos, entered_at, number, phone, address, delivery_at, comment, order_text, total_kop
			 FROM zayavki WHERE number = $1 ORDER BY pos DESC LIMIT 1`,
			number,
		).Scan(&sr.Index, &sr.Record.EnteredAt, &sr.Record.Number, &sr.Record.Phone,
			&sr.Record.Address, &sr.Record.DeliveryAt, &sr.Record.Comment,
			&sr.Record.OrderText, &sr.Record.TotalKop)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, number)
		}
		return err
	})
	if err != nil {
		return StoredRecord{}, err
	}

	return sr, nil
}

// NextOrderNumber возвращает следующий свободный номер заявки.
func (s *PostgresStore) NextOrderNumber(ctx context.Context) (string, error) {
	var next int64

	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx,
			`SELECT COALESCE(MAX(number::bigint), 0) + 1
			 FROM zayavki WHERE number ~ '^\d+$'`,
		).Scan(&next)
	})
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}

	return strconv.FormatInt(next, 10), nil
}
