package admins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/regisync/regisync/internal/dbx"
	"github.com/regisync/regisync/internal/shared"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, admin *Admin) (*Admin, error) {

	query :=
		`INSERT INTO admins (username, password_hash, role)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		admin.Username, admin.PasswordHash, admin.Role).Scan(&admin.ID)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return admin, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	query :=
		`SELECT id, username, password_hash, role FROM admins
		 WHERE username = $1
		 `

	admin := &Admin{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.Role)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return admin, nil
}
