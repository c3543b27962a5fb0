package participants

import (
	"context"
)

// ListFilter narrows List results. Search matches name, email, and phone
// case-insensitively; Attendance is a tri-state (nil = any).
type ListFilter struct {
	Search     string
	Status     RegistrationStatus
	Attendance *bool
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, p *Participant) (*Participant, error)
	GetByID(ctx context.Context, id string) (*Participant, error)
	FindByEmail(ctx context.Context, email string) (*Participant, error)
	FindByIdentifier(ctx context.Context, payload string) (*Participant, error)
	Update(ctx context.Context, p *Participant) error
	SetIdentifier(ctx context.Context, id string, payload string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]*Participant, int, error)
}
