package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pet-care-reminders/internal/adapters/storage/migrations"
	"pet-care-reminders/internal/adapters/storage/sqlstore"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre un pool a Postgres usando pgx (database/sql) y aplica migraciones.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrations.Up(db, migrations.DialectPostgres); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return db, nil
}

func NewRemindersStore(db *sql.DB) *sqlstore.RemindersStore {
	return sqlstore.NewRemindersStore(db, sqlstore.Postgres)
}
