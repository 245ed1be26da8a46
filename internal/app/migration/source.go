package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrNoTable - таблицы нет в исходной БД, она пропускается.
var ErrNoTable = errors.New("table does not exist in source")

// MySQL error 1146: ER_NO_SUCH_TABLE
const mysqlNoSuchTable = 1146

type Row []interface{}

type Source interface {
	ReadBatch(ctx context.Context, t Table, offset, limit int) ([]Row, error)
	Close() error
}

type MySQLSource struct {
	db *sql.DB
}

// OpenMySQL подключается к старой БД. parseTime включается принудительно.
func OpenMySQL(ctx context.Context, dsn string) (*MySQLSource, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &MySQLSource{db: db}, nil
}

func (s *MySQLSource) Close() error {
	return s.db.Close()
}

func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (s *MySQLSource) ReadBatch(ctx context.Context, t Table, offset, limit int) ([]Row, error) {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteMySQL(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?",
		strings.Join(cols, ", "), quoteMySQL(t.Name), t.OrderBy)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlNoSuchTable {
			return nil, fmt.Errorf("%w: %s", ErrNoTable, t.Name)
		}
		return nil, fmt.Errorf("select %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		values := make([]interface{}, len(t.Columns))
		ptrs := make([]interface{}, len(t.Columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	return out, rows.Err()
}
