package participants

import (
	"time"

	"github.com/regisync/regisync/internal/shared"
)

// Register moves the participant to the registered status and assigns the
// scannable identifier when missing. It reports whether the status actually
// changed; calling it on an already registered participant is a no-op apart
// from identifier backfill.
func (p *Participant) Register() bool {
	changed := p.RegistrationStatus != StatusRegistered
	p.RegistrationStatus = StatusRegistered
	p.EnsureIdentifier()
	return changed
}

// EnsureIdentifier derives the identifier payload from the participant ID if
// none is assigned yet. It reports whether an assignment happened. An
// existing payload is never overwritten.
func (p *Participant) EnsureIdentifier() bool {
	if p.IdentifierPayload != "" {
		return false
	}
	p.IdentifierPayload = p.ID
	return true
}

// CheckIn confirms attendance at the given time. It fails with
// shared.ErrNotRegistered unless the participant is registered, and with
// shared.ErrAlreadyCheckedIn on a repeated attempt. CheckedInAt is set
// exactly once; no path ever resets attendance.
func (p *Participant) CheckIn(now time.Time) error {
	if p.RegistrationStatus != StatusRegistered {
		return shared.ErrNotRegistered
	}
	if p.AttendanceConfirmed {
		return shared.ErrAlreadyCheckedIn
	}
	p.AttendanceConfirmed = true
	t := now.UTC()
	p.CheckedInAt = &t
	return nil
}
