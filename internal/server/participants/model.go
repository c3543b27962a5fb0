package participants

import "time"

// RegistrationStatus is the registration axis of a participant's lifecycle.
type RegistrationStatus string

const (
	StatusPending    RegistrationStatus = "pending"
	StatusRegistered RegistrationStatus = "registered"
	StatusRejected   RegistrationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRegistered, StatusRejected:
		return true
	}
	return false
}

// Participant is one registered (or registering) attendee.
//
// Email is the natural key: the sync pipeline treats two feed rows with the
// same email (case-insensitive) as the same participant over time.
// IdentifierPayload is the string encoded into the attendee's QR code; it is
// set exactly once, on the first transition to registered, and is never
// regenerated while present.
type Participant struct {
	ID                  string
	FullName            string
	Email               string
	Phone               string
	RegistrationStatus  RegistrationStatus
	AttendanceConfirmed bool
	RegisteredAt        time.Time
	CheckedInAt         *time.Time
	IdentifierPayload   string
	RawSourceRow        map[string]string
}
