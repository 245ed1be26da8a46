package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hostcompare/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record conflicts with existing data")
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrInvalidReference - в запросе указан несуществующий связанный объект.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &Repository{db: db}, nil
}

// NewWithDB оборачивает уже открытое соединение (тесты, утилита миграции).
func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate приводит схему БД к моделям из ds.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(ds.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// countRefs считает строки table, у которых column указывает на id.
func countRefs(db *gorm.DB, table, column string, id uint) (int64, error) {
	var n int64
	err := db.Table(table).Where(column+" = ?", id).Count(&n).Error
	return n, err
}

// translate приводит ошибки gorm к ошибкам репозитория.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

// ListParams - параметры постраничной выборки с поиском по имени.
type ListParams struct {
	Page  int
	Limit int
	Query string
}

func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// searchByName - регистронезависимый поиск, работает и в Postgres, и в SQLite.
func searchByName(q *gorm.DB, column, query string) *gorm.DB {
	if query == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(query)+"%")
}

// list выполняет count + выборку страницы в dest.
func list(q *gorm.DB, p ListParams, order string, dest interface{}) (int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	err := q.Session(&gorm.Session{}).Order(order).Offset(p.Offset()).Limit(p.Limit).Find(dest).Error
	return total, err
}
