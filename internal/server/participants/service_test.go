package participants

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/regisync/regisync/internal/shared"
)

func newServiceWithMock(t *testing.T) (*Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewService(db), mock, db
}

func TestCreateRegistered_AssignsIdentifierInOneTx(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+participants`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-1"))
	mock.ExpectExec(`(?s)^UPDATE\s+participants\s+SET\s+identifier_payload`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := svc.CreateRegistered(context.Background(), &Participant{
		FullName: "Ana",
		Email:    "ana@example.com",
	})
	if err != nil {
		t.Fatalf("CreateRegistered error: %v", err)
	}
	if p.RegistrationStatus != StatusRegistered {
		t.Fatalf("unexpected status: %v", p.RegistrationStatus)
	}
	if p.IdentifierPayload != p.ID {
		t.Fatalf("identifier must equal id: %q vs %q", p.IdentifierPayload, p.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRegistered_RollsBackOnInsertError(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+participants`).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	_, err := svc.CreateRegistered(context.Background(), &Participant{Email: "ana@example.com"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApprove_AlreadyRegistered(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	p := sampleParticipant()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(p.ID).
		WillReturnRows(participantRows(p))
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), p.ID)
	if !errors.Is(err, shared.ErrAlreadyApproved) {
		t.Fatalf("want shared.ErrAlreadyApproved, got %v", err)
	}
}

func TestApprove_PendingBecomesRegistered(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	p := sampleParticipant()
	p.RegistrationStatus = StatusPending
	p.IdentifierPayload = ""

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(p.ID).
		WillReturnRows(participantRows(p))
	mock.ExpectExec(`(?s)^UPDATE\s+participants\s+SET\s+full_name`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^UPDATE\s+participants\s+SET\s+identifier_payload`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := svc.Approve(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if got.RegistrationStatus != StatusRegistered {
		t.Fatalf("unexpected status: %v", got.RegistrationStatus)
	}
	if got.IdentifierPayload != got.ID {
		t.Fatalf("identifier must equal id: %q vs %q", got.IdentifierPayload, got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCheckIn_AlreadyCheckedIn(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	p := sampleParticipant()
	p.AttendanceConfirmed = true
	checkedIn := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	p.CheckedInAt = &checkedIn

	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+identifier_payload\s*=\s*\$1`).
		WithArgs(p.IdentifierPayload).
		WillReturnRows(participantRows(p))

	_, err := svc.CheckIn(context.Background(), p.IdentifierPayload)
	if !errors.Is(err, shared.ErrAlreadyCheckedIn) {
		t.Fatalf("want shared.ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestCheckIn_Success(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	p := sampleParticipant()

	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+identifier_payload\s*=\s*\$1`).
		WithArgs(p.IdentifierPayload).
		WillReturnRows(participantRows(p))
	mock.ExpectExec(`(?s)^UPDATE\s+participants\s+SET\s+full_name`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.CheckIn(context.Background(), p.IdentifierPayload)
	if err != nil {
		t.Fatalf("CheckIn error: %v", err)
	}
	if !got.AttendanceConfirmed || got.CheckedInAt == nil {
		t.Fatalf("attendance not confirmed: %+v", got)
	}
}

func TestCheckIn_UnknownPayload(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+identifier_payload\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.CheckIn(context.Background(), "ghost")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("want shared.ErrNotFound, got %v", err)
	}
}

func TestEdit_ValidationRejectsUnknownStatus(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	p := sampleParticipant()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(p.ID).
		WillReturnRows(participantRows(p))
	mock.ExpectRollback()

	bad := RegistrationStatus("archived")
	_, err := svc.Edit(context.Background(), p.ID, EditRequest{RegistrationStatus: &bad})
	if !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("want shared.ErrValidation, got %v", err)
	}
}

func TestEdit_ToRegisteredAssignsIdentifier(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	p := sampleParticipant()
	p.RegistrationStatus = StatusPending
	p.IdentifierPayload = ""

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(p.ID).
		WillReturnRows(participantRows(p))
	mock.ExpectExec(`(?s)^UPDATE\s+participants\s+SET\s+full_name`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^UPDATE\s+participants\s+SET\s+identifier_payload`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	registered := StatusRegistered
	got, err := svc.Edit(context.Background(), p.ID, EditRequest{RegistrationStatus: &registered})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if got.RegistrationStatus != StatusRegistered {
		t.Fatalf("unexpected status: %v", got.RegistrationStatus)
	}
	if got.IdentifierPayload != got.ID {
		t.Fatalf("registered participant left without identifier payload: %q", got.IdentifierPayload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEdit_ToRegisteredKeepsExistingIdentifier(t *testing.T) {
	svc, mock, db := newServiceWithMock(t)
	defer db.Close()

	p := sampleParticipant()
	p.RegistrationStatus = StatusRejected

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^SELECT\s+.+FROM\s+participants\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(p.ID).
		WillReturnRows(participantRows(p))
	mock.ExpectExec(`(?s)^UPDATE\s+participants\s+SET\s+full_name`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	registered := StatusRegistered
	got, err := svc.Edit(context.Background(), p.ID, EditRequest{RegistrationStatus: &registered})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if got.IdentifierPayload != p.IdentifierPayload {
		t.Fatalf("identifier must never be regenerated: %q", got.IdentifierPayload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthenticate_RequiresEmailOrPayload(t *testing.T) {
	svc, _, db := newServiceWithMock(t)
	defer db.Close()

	_, err := svc.Authenticate(context.Background(), "", "")
	if !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("want shared.ErrValidation, got %v", err)
	}
}
