package sqlite

import (
	"database/sql"
	"fmt"

	"pet-care-reminders/internal/adapters/storage/migrations"
	"pet-care-reminders/internal/adapters/storage/sqlstore"

	_ "modernc.org/sqlite"
)

// Open abre (o crea) la base SQLite en path y aplica migraciones.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Un solo writer: SQLite serializa escrituras de todos modos.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrations.Up(db, migrations.DialectSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func NewRemindersStore(db *sql.DB) *sqlstore.RemindersStore {
	return sqlstore.NewRemindersStore(db, sqlstore.SQLite)
}
