package contentrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// OpenDB opens a bun database for the named driver.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite":
		sqlDB, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, err
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres, "pg":
		sqlDB, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("contentrepo: unsupported driver %q", driver)
	}
}

var upsertColumns = []string{
	"identifier", "workspace", "locale", "path", "node_type", "properties",
	"hidden", "hidden_in_index", "hidden_before", "hidden_after",
	"sort_index", "removed", "revision", "updated_at",
}

// BunStore persists records through bun.
type BunStore struct {
	db *bun.DB
}

// NewBunStore wraps db.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// CreateSchema creates the node table and its lookup index when missing.
func (s *BunStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("contentrepo: create table: %w", err)
	}
	_, err := s.db.NewCreateIndex().
		Model((*Record)(nil)).
		Index("autotranslate_nodes_lookup_idx").
		Column("workspace", "locale", "identifier").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("contentrepo: create index: %w", err)
	}
	return nil
}

// Find selects matching records ordered by path, workspace and locale.
func (s *BunStore) Find(ctx context.Context, filter Filter) ([]*Record, error) {
	var records []*Record
	q := s.db.NewSelect().Model(&records)
	if filter.Workspace != "" {
		q = q.Where("?TableAlias.workspace = ?", filter.Workspace)
	}
	if filter.Locale != "" {
		q = q.Where("?TableAlias.locale = ?", filter.Locale)
	}
	if filter.Identifier != uuid.Nil {
		q = q.Where("?TableAlias.identifier = ?", filter.Identifier)
	}
	if filter.Path != "" {
		q = q.Where("?TableAlias.path = ?", filter.Path)
	}
	if filter.PathPrefix != "" {
		prefix := strings.TrimRight(filter.PathPrefix, "/") + "/"
		q = q.Where("substr(?TableAlias.path, 1, ?) = ?", len(prefix), prefix)
	}
	q = q.OrderExpr("?TableAlias.path ASC, ?TableAlias.workspace ASC, ?TableAlias.locale ASC")
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("contentrepo: find: %w", err)
	}
	for _, rec := range records {
		if rec.Properties == nil {
			rec.Properties = map[string]any{}
		}
	}
	return records, nil
}

// Save upserts records inside a single transaction.
func (s *BunStore) Save(ctx context.Context, records ...*Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, rec := range records {
			if rec == nil {
				continue
			}
			q := tx.NewInsert().Model(rec).On("CONFLICT (id) DO UPDATE")
			for _, column := range upsertColumns {
				q = q.Set(column + " = EXCLUDED." + column)
			}
			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("contentrepo: save %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}
