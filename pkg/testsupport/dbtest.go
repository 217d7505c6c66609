package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteSeq atomic.Int64

// SQLiteMemoryDSN returns a DSN naming a fresh shared-cache in-memory database
// with foreign keys enforced. Connections opened on the same DSN share data.
func SQLiteMemoryDSN(prefix string) string {
	if prefix == "" {
		prefix = "autotranslate"
	}
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", prefix, sqliteSeq.Add(1))
}

// NewSQLiteMemoryDB opens a database on a fresh SQLiteMemoryDSN.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", SQLiteMemoryDSN(""))
}

// OpenSQLite opens an isolated in-memory database and closes it when t ends.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
