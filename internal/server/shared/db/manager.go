package db

import (
	"context"
	"database/sql"

	"github.com/regisync/regisync/internal/server/admins"
	"github.com/regisync/regisync/internal/server/errorlog"
	"github.com/regisync/regisync/internal/server/participants"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Participants() participants.Repository
	Admins() admins.Repository
	ErrorLog() errorlog.Repository
}
