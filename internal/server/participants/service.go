package participants

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/regisync/regisync/internal/dbx"
	"github.com/regisync/regisync/internal/shared"
)

// Service owns participant persistence semantics: what must happen inside a
// single transaction, and which lifecycle transitions are legal. Side
// effects around transitions (badge rendering, notifications) belong to the
// callers so no transaction is ever held across a network call.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) repo() Repository {
	return NewPostgresRepository(s.db)
}

// FindByEmail looks a participant up by the natural key, matched
// case-insensitively. Returns shared.ErrNotFound when absent.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Participant, error) {
	return s.repo().FindByEmail(ctx, strings.TrimSpace(email))
}

// CreateRegistered inserts a sync-created participant as registered and
// assigns the scannable identifier, all in one transaction. The identifier
// payload is the participant's own ID.
func (s *Service) CreateRegistered(ctx context.Context, p *Participant) (*Participant, error) {

	p.RegistrationStatus = StatusRegistered

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewPostgresRepository(tx)

		created, err := repo.Create(ctx, p)
		if err != nil {
			return err
		}
		p = created

		if p.EnsureIdentifier() {
			return repo.SetIdentifier(ctx, p.ID, p.IdentifierPayload)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating participant: %w", err)
	}

	return p, nil
}

// Update persists changed mutable fields of an existing participant.
func (s *Service) Update(ctx context.Context, p *Participant) error {
	if err := s.repo().Update(ctx, p); err != nil {
		return fmt.Errorf("error updating participant: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Participant, error) {
	return s.repo().GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Participant, int, error) {
	return s.repo().List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo().Delete(ctx, id)
}

// EditRequest carries a partial admin edit; nil fields stay untouched.
type EditRequest struct {
	FullName            *string
	Email               *string
	Phone               *string
	RegistrationStatus  *RegistrationStatus
	AttendanceConfirmed *bool
}

// Edit applies an admin edit. Admins may set any registration status,
// including moving a participant back to pending; attendance is the one
// exception and can only move forward. An edit that moves the participant
// into registered goes through the same transition as Approve, so the
// scannable identifier is assigned alongside it.
func (s *Service) Edit(ctx context.Context, id string, req EditRequest) (*Participant, error) {

	var p *Participant

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewPostgresRepository(tx)

		var err error
		p, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.FullName != nil {
			p.FullName = *req.FullName
		}
		if req.Email != nil {
			p.Email = strings.TrimSpace(*req.Email)
		}
		if req.Phone != nil {
			p.Phone = *req.Phone
		}

		assigned := false
		if req.RegistrationStatus != nil {
			if !req.RegistrationStatus.Valid() {
				return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.RegistrationStatus)
			}
			if *req.RegistrationStatus == StatusRegistered {
				assigned = p.EnsureIdentifier()
				p.Register()
			} else {
				p.RegistrationStatus = *req.RegistrationStatus
			}
		}
		if req.AttendanceConfirmed != nil && *req.AttendanceConfirmed && !p.AttendanceConfirmed {
			if err := p.CheckIn(time.Now()); err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, p); err != nil {
			return fmt.Errorf("error updating participant: %w", err)
		}
		if assigned {
			return repo.SetIdentifier(ctx, p.ID, p.IdentifierPayload)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Approve moves a pending or rejected participant to registered, assigning
// the identifier when missing, in one transaction. It returns
// shared.ErrAlreadyApproved when the participant is registered already.
func (s *Service) Approve(ctx context.Context, id string) (*Participant, error) {

	var p *Participant

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewPostgresRepository(tx)

		var err error
		p, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if p.RegistrationStatus == StatusRegistered {
			return shared.ErrAlreadyApproved
		}

		assigned := p.EnsureIdentifier()
		p.Register()

		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		if assigned {
			return repo.SetIdentifier(ctx, p.ID, p.IdentifierPayload)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// CheckIn confirms attendance for the participant carrying the scanned
// payload. Transition legality is enforced by the participant itself.
func (s *Service) CheckIn(ctx context.Context, payload string) (*Participant, error) {

	repo := s.repo()

	p, err := repo.FindByIdentifier(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := p.CheckIn(time.Now()); err != nil {
		return p, err
	}

	if err := repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("error updating participant: %w", err)
	}

	return p, nil
}

// Authenticate resolves a participant for the public status endpoint, by
// email or by scanned payload.
func (s *Service) Authenticate(ctx context.Context, email, payload string) (*Participant, error) {
	if email != "" {
		return s.FindByEmail(ctx, email)
	}
	if payload != "" {
		return s.repo().FindByIdentifier(ctx, payload)
	}
	return nil, fmt.Errorf("%w: email or qr payload required", shared.ErrValidation)
}

// Export returns all participants matching the filter, unpaginated.
func (s *Service) Export(ctx context.Context, f ListFilter) ([]*Participant, error) {
	f.Limit = 0
	f.Offset = 0
	list, _, err := s.repo().List(ctx, f)
	return list, err
}
