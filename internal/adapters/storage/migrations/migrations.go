package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// goose guarda base FS y dialecto en estado global.
var mu sync.Mutex

// Up aplica las migraciones pendientes del dialecto indicado.
func Up(db *sql.DB, dialect string) error {
	var dir string
	switch dialect {
	case DialectPostgres:
		dir = "postgres"
	case DialectSQLite:
		dir = "sqlite"
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(files)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
