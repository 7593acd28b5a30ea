// Package indexer archives committed world events in a SQL database so they
// can be queried and exported after the in-memory hub has rotated them out.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shellchain/core/events"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultLimit = 100
	maxLimit     = 1000
)

var (
	ErrUnsupportedDriver = errors.New("indexer: unsupported driver")
	errNilStore          = errors.New("indexer: store not initialised")
)

// EventRecord is the archived form of one committed event.
type EventRecord struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Sequence   uint64            `gorm:"index"`
	Call       string            `gorm:"column:call_name;size:64;index"`
	Type       string            `gorm:"size:96;index"`
	Attributes map[string]string `gorm:"serializer:json"`
	EmittedAt  time.Time         `gorm:"index"`
	CreatedAt  time.Time
}

// TableName pins the table name independent of the struct name.
func (EventRecord) TableName() string { return "world_events" }

// Filter narrows an event query. Zero fields match everything.
type Filter struct {
	Type   string
	Call   string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// Store persists event records through gorm.
type Store struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// Open connects to the configured backend and migrates the schema. An empty
// driver selects sqlite.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		if strings.TrimSpace(dsn) == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("indexer: open %s: %w", driver, err)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errNilStore
	}
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, fmt.Errorf("indexer: migrate: %w", err)
	}
	return &Store{db: db, nowFn: time.Now}, nil
}

// Append archives rec. It satisfies the runtime record sink.
func (s *Store) Append(rec events.Record) error {
	if s == nil || s.db == nil {
		return errNilStore
	}
	row := EventRecord{
		ID:         uuid.New(),
		Sequence:   rec.Sequence,
		Call:       rec.Call,
		Type:       rec.Type,
		Attributes: rec.Attributes,
		EmittedAt:  time.Unix(rec.Timestamp, 0).UTC(),
		CreatedAt:  s.nowFn().UTC(),
	}
	if row.Attributes == nil {
		row.Attributes = map[string]string{}
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("indexer: append %s: %w", rec.Type, err)
	}
	return nil
}

// Query returns matching records oldest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]EventRecord, error) {
	if s == nil || s.db == nil {
		return nil, errNilStore
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	q := s.scoped(ctx, f).Order("emitted_at ASC").Order("sequence ASC").Limit(limit)
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []EventRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("indexer: query: %w", err)
	}
	return out, nil
}

// Count reports how many records match f, ignoring paging.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errNilStore
	}
	var n int64
	if err := s.scoped(ctx, f).Model(&EventRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("indexer: count: %w", err)
	}
	return n, nil
}

func (s *Store) scoped(ctx context.Context, f Filter) *gorm.DB {
	if ctx == nil {
		ctx = context.Background()
	}
	q := s.db.WithContext(ctx)
	if t := strings.TrimSpace(f.Type); t != "" {
		q = q.Where("type = ?", t)
	}
	if c := strings.TrimSpace(f.Call); c != "" {
		q = q.Where("call_name = ?", c)
	}
	if !f.Since.IsZero() {
		q = q.Where("emitted_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		q = q.Where("emitted_at < ?", f.Until.UTC())
	}
	return q
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
