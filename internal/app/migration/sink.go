package migration

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// PostgreSQL допускает не больше 65535 параметров в запросе.
const maxParams = 60000

type ImageRef struct {
	ID  int64
	URL string
}

type Sink interface {
	InsertBatch(ctx context.Context, t Table, rows []Row) (int64, error)
	ResetSequence(ctx context.Context, t Table) error
	LegacyImages(ctx context.Context, c ImageColumn) ([]ImageRef, error)
	SetImage(ctx context.Context, c ImageColumn, id int64, value string) error
}

type PostgresSink struct {
	db *gorm.DB
}

func NewPostgresSink(db *gorm.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func quotePG(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// InsertBatch вставляет строки, пропуская уже существующие (ON CONFLICT DO NOTHING).
func (s *PostgresSink) InsertBatch(ctx context.Context, t Table, rows []Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	chunk := maxParams / len(t.Columns)
	var written int64
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		query, args := insertQuery(t, rows[start:end])
		result := s.db.WithContext(ctx).Exec(query, args...)
		if result.Error != nil {
			return written, fmt.Errorf("insert into %s: %w", t.Name, result.Error)
		}
		written += result.RowsAffected
	}
	return written, nil
}

func insertQuery(t Table, rows []Row) (string, []interface{}) {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quotePG(c)
	}
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(t.Columns)), ",") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quotePG(t.Name), strings.Join(cols, ", "))

	args := make([]interface{}, 0, len(rows)*len(t.Columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholder)
		args = append(args, row...)
	}
	b.WriteString(" ON CONFLICT DO NOTHING")
	return b.String(), args
}

// ResetSequence выставляет последовательность id в MAX(id), чтобы новые строки не конфликтовали.
func (s *PostgresSink) ResetSequence(ctx context.Context, t Table) error {
	if !t.HasSerialID {
		return nil
	}
	table := quotePG(t.Name)
	query := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1), (SELECT MAX(id) FROM %s) IS NOT NULL)",
		t.Name, table, table)
	if err := s.db.WithContext(ctx).Exec(query).Error; err != nil {
		return fmt.Errorf("reset sequence %s: %w", t.Name, err)
	}
	return nil
}

func (s *PostgresSink) LegacyImages(ctx context.Context, c ImageColumn) ([]ImageRef, error) {
	col := quotePG(c.Column)
	query := fmt.Sprintf("SELECT id, %s AS url FROM %s WHERE %s LIKE 'http://%%' OR %s LIKE 'https://%%' ORDER BY id",
		col, quotePG(c.Table), col, col)

	var refs []ImageRef
	if err := s.db.WithContext(ctx).Raw(query).Scan(&refs).Error; err != nil {
		return nil, fmt.Errorf("select images from %s: %w", c.Table, err)
	}
	return refs, nil
}

func (s *PostgresSink) SetImage(ctx context.Context, c ImageColumn, id int64, value string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", quotePG(c.Table), quotePG(c.Column))
	return s.db.WithContext(ctx).Exec(query, value, id).Error
}
