package errorlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/regisync/regisync/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *Entry) error {

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query :=
		`INSERT INTO error_log (ts, level, message, trace)
         VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.Timestamp, entry.Level, entry.Message, nullIfEmpty(entry.Trace)).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM error_log`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %v", err)
	}

	query :=
		`SELECT id, ts, level, message, trace FROM error_log
		 ORDER BY ts DESC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		e := &Entry{}
		var trace sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Level, &e.Message, &trace); err != nil {
			return nil, 0, fmt.Errorf("error performing sql request: %v", err)
		}
		e.Trace = trace.String
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %v", err)
	}

	return result, total, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
