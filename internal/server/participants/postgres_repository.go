package participants

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/regisync/regisync/internal/dbx"
	"github.com/regisync/regisync/internal/shared"
)

type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a repository bound to db, which may be a
// *sql.DB or an open transaction.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const participantColumns = `id, full_name, email, phone, registration_status, attendance_confirmed,
	registered_at, checked_in_at, identifier_payload, raw_source_row`

func scanParticipant(row interface{ Scan(...any) error }) (*Participant, error) {
	p := &Participant{}
	var (
		checkedInAt sql.NullTime
		payload     sql.NullString
		rawRow      []byte
	)

	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.RegistrationStatus,
		&p.AttendanceConfirmed, &p.RegisteredAt, &checkedInAt, &payload, &rawRow)
	if err != nil {
		return nil, err
	}

	if checkedInAt.Valid {
		t := checkedInAt.Time
		p.CheckedInAt = &t
	}
	if payload.Valid {
		p.IdentifierPayload = payload.String
	}
	if len(rawRow) > 0 {
		if err := json.Unmarshal(rawRow, &p.RawSourceRow); err != nil {
			return nil, fmt.Errorf("error decoding raw source row: %v", err)
		}
	}

	return p, nil
}

func encodeRawRow(p *Participant) (any, error) {
	if p.RawSourceRow == nil {
		return nil, nil
	}
	b, err := json.Marshal(p.RawSourceRow)
	if err != nil {
		return nil, fmt.Errorf("error encoding raw source row: %v", err)
	}
	return b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func (r *PostgresRepository) Create(ctx context.Context, p *Participant) (*Participant, error) {

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now().UTC()
	}

	rawRow, err := encodeRawRow(p)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO participants (id, full_name, email, phone, registration_status,
			attendance_confirmed, registered_at, checked_in_at, identifier_payload, raw_source_row)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id
		 `

	err = r.db.QueryRowContext(ctx, query,
		p.ID, p.FullName, p.Email, p.Phone, p.RegistrationStatus,
		p.AttendanceConfirmed, p.RegisteredAt, nullTime(p.CheckedInAt),
		nullString(p.IdentifierPayload), rawRow).Scan(&p.ID)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`

	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return p, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE LOWER(email) = LOWER($1)`

	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return p, nil
}

func (r *PostgresRepository) FindByIdentifier(ctx context.Context, payload string) (*Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE identifier_payload = $1`

	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, payload))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *Participant) error {

	rawRow, err := encodeRawRow(p)
	if err != nil {
		return err
	}

	query :=
		`UPDATE participants
		 SET full_name = $2, email = $3, phone = $4, registration_status = $5,
			attendance_confirmed = $6, checked_in_at = $7, raw_source_row = $8
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.FullName, p.Email, p.Phone, p.RegistrationStatus,
		p.AttendanceConfirmed, nullTime(p.CheckedInAt), rawRow)

	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if affected == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// SetIdentifier assigns the scannable payload. The WHERE guard keeps an
// already assigned payload untouched.
func (r *PostgresRepository) SetIdentifier(ctx context.Context, id string, payload string) error {

	query :=
		`UPDATE participants
		 SET identifier_payload = $2
		 WHERE id = $1 AND identifier_payload IS NULL
		 `

	_, err := r.db.ExecContext(ctx, query, id, payload)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	query := `DELETE FROM participants WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if affected == 0 {
		return shared.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*Participant, int, error) {

	where := []string{}
	args := []any{}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("registration_status = $%d", len(args)))
	}
	if f.Attendance != nil {
		args = append(args, *f.Attendance)
		where = append(where, fmt.Sprintf("attendance_confirmed = $%d", len(args)))
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM participants` + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %v", err)
	}

	query := `SELECT ` + participantColumns + ` FROM participants` + cond + ` ORDER BY registered_at`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var result []*Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error performing sql request: %v", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %v", err)
	}

	return result, total, nil
}
