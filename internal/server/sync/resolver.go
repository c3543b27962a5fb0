package sync

import (
	"context"
	"errors"
	"maps"

	"github.com/regisync/regisync/internal/server/participants"
	"github.com/regisync/regisync/internal/shared"
)

// DecisionKind classifies what a candidate record requires of the registry.
type DecisionKind int

const (
	DecisionCreate DecisionKind = iota
	DecisionUpdate
	DecisionNoChange
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionCreate:
		return "create"
	case DecisionUpdate:
		return "update"
	case DecisionNoChange:
		return "no-change"
	}
	return "unknown"
}

// Decision is the resolver's verdict for one candidate. Existing is set for
// update and no-change decisions; ChangedFields names the mutable fields
// that differ, for diagnostics.
type Decision struct {
	Kind          DecisionKind
	Existing      *participants.Participant
	ChangedFields []string
}

// EmailLookup finds a participant by the natural key, returning
// shared.ErrNotFound when no match exists.
type EmailLookup func(ctx context.Context, email string) (*participants.Participant, error)

// Resolve decides whether the candidate describes a new participant, an
// update to an existing one, or no change at all. Matching is by email,
// case-insensitively; the same address always resolves to the same
// participant regardless of what else changed. A field-by-field comparison
// of name, phone, and the raw snapshot drives the update decision; any one
// difference updates all mutable fields.
func Resolve(ctx context.Context, cand *CandidateRecord, lookup EmailLookup) (*Decision, error) {

	existing, err := lookup(ctx, cand.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &Decision{Kind: DecisionCreate}, nil
		}
		return nil, err
	}

	var changed []string
	if existing.FullName != cand.FullName {
		changed = append(changed, "full_name")
	}
	if existing.Phone != cand.Phone {
		changed = append(changed, "phone")
	}
	if !maps.Equal(existing.RawSourceRow, cand.FieldsByHeader) {
		changed = append(changed, "raw_source_row")
	}

	if len(changed) == 0 {
		return &Decision{Kind: DecisionNoChange, Existing: existing}, nil
	}

	return &Decision{Kind: DecisionUpdate, Existing: existing, ChangedFields: changed}, nil
}
