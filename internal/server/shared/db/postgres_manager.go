package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/regisync/regisync/internal/server/admins"
	"github.com/regisync/regisync/internal/server/errorlog"
	"github.com/regisync/regisync/internal/server/migrations"
	"github.com/regisync/regisync/internal/server/participants"
)

type PostgresRepositoryManager struct {
	db           *sql.DB
	participants participants.Repository
	admins       admins.Repository
	errorLog     errorlog.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Participants() participants.Repository {
	return m.participants
}

func (m *PostgresRepositoryManager) Admins() admins.Repository {
	return m.admins
}

func (m *PostgresRepositoryManager) ErrorLog() errorlog.Repository {
	return m.errorLog
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:           db,
		participants: participants.NewPostgresRepository(db),
		admins:       admins.NewPostgresRepository(db),
		errorLog:     errorlog.NewPostgresRepository(db),
	}

	err = m.RunMigrations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
