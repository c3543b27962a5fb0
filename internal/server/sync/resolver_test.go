package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/regisync/regisync/internal/server/participants"
	"github.com/regisync/regisync/internal/shared"
)

func candidate() *CandidateRecord {
	return &CandidateRecord{
		RegisteredAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		FullName:     "Ana",
		Email:        "ana@example.com",
		Phone:        "0811111",
		FieldsByHeader: map[string]string{
			"Timestamp":    "6/1/2025 10:00:00",
			"Nama Lengkap": "Ana",
			"Email":        "ana@example.com",
			"No HP":        "0811111",
		},
	}
}

func existingFor(cand *CandidateRecord) *participants.Participant {
	snapshot := make(map[string]string, len(cand.FieldsByHeader))
	for k, v := range cand.FieldsByHeader {
		snapshot[k] = v
	}
	return &participants.Participant{
		ID:                 "p-1",
		FullName:           cand.FullName,
		Email:              cand.Email,
		Phone:              cand.Phone,
		RegistrationStatus: participants.StatusRegistered,
		RawSourceRow:       snapshot,
	}
}

func lookupReturning(p *participants.Participant, err error) EmailLookup {
	return func(ctx context.Context, email string) (*participants.Participant, error) {
		return p, err
	}
}

func TestResolve_UnknownEmailCreates(t *testing.T) {
	t.Parallel()

	d, err := Resolve(context.Background(), candidate(), lookupReturning(nil, shared.ErrNotFound))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if d.Kind != DecisionCreate {
		t.Fatalf("want create, got %v", d.Kind)
	}
}

func TestResolve_IdenticalRowNoChange(t *testing.T) {
	t.Parallel()

	cand := candidate()

	d, err := Resolve(context.Background(), cand, lookupReturning(existingFor(cand), nil))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if d.Kind != DecisionNoChange {
		t.Fatalf("want no-change, got %v", d.Kind)
	}
	if d.Existing == nil {
		t.Fatal("expected existing participant on no-change decision")
	}
}

func TestResolve_ChangedNameUpdates(t *testing.T) {
	t.Parallel()

	cand := candidate()
	existing := existingFor(cand)
	existing.FullName = "Ana Lama"

	d, err := Resolve(context.Background(), cand, lookupReturning(existing, nil))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if d.Kind != DecisionUpdate {
		t.Fatalf("want update, got %v", d.Kind)
	}
	if len(d.ChangedFields) != 1 || d.ChangedFields[0] != "full_name" {
		t.Fatalf("unexpected changed fields: %v", d.ChangedFields)
	}
}

func TestResolve_ChangedSnapshotUpdates(t *testing.T) {
	t.Parallel()

	cand := candidate()
	existing := existingFor(cand)
	existing.RawSourceRow["No HP"] = "lama"
	existing.Phone = cand.Phone

	d, err := Resolve(context.Background(), cand, lookupReturning(existing, nil))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if d.Kind != DecisionUpdate {
		t.Fatalf("want update, got %v", d.Kind)
	}
}

func TestResolve_LookupFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")

	_, err := Resolve(context.Background(), candidate(), lookupReturning(nil, boom))
	if !errors.Is(err, boom) {
		t.Fatalf("want lookup error, got %v", err)
	}
}

func TestDecisionKind_String(t *testing.T) {
	t.Parallel()

	cases := map[DecisionKind]string{
		DecisionCreate:   "create",
		DecisionUpdate:   "update",
		DecisionNoChange: "no-change",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("String mismatch: got %q want %q", got, want)
		}
	}
}
