package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"eventsignup/internal/domain"
	"eventsignup/internal/validation"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

// mapEventWriteError converts the database's own enforcement of the date
// invariants into the same validation errors the workflow produces. The
// constraints are the unconditional gate; this mapping only keeps the
// error readable if a write ever reaches them.
func mapEventWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if pqErr.Code.Name() == "check_violation" {
		switch pqErr.Constraint {
		case "events_start_before_end":
			return validation.EventWindowViolation()
		case "events_deadline_not_after_start":
			return validation.DeadlineViolation()
		}
	}
	return err
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, location, start_date, end_date, registration_deadline, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, nullIfEmpty(e.Description), nullIfEmpty(e.Location),
		e.StartDate, e.EndDate, e.RegistrationDeadline,
		e.ProviderID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return mapEventWriteError(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	// A malformed ID can never match an event; report it the same way.
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	query := `
		SELECT id, title, description, location, start_date, end_date, registration_deadline, provider_id, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadParticipants(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByProviderID(ctx context.Context, providerID string) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, location, start_date, end_date, registration_deadline, provider_id, created_at, updated_at
		FROM events
		WHERE provider_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, providerID)
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, location, start_date, end_date, registration_deadline, provider_id, created_at, updated_at
		FROM events
		ORDER BY start_date ASC
	`
	return r.list(ctx, query)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// One query per event. Fine at this scale; revisit if listings grow.
	for _, e := range events {
		if err := r.loadParticipants(ctx, e); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3,
		    start_date = $4, end_date = $5, registration_deadline = $6,
		    updated_at = $7
		WHERE id = $8
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, nullIfEmpty(e.Description), nullIfEmpty(e.Location),
		e.StartDate, e.EndDate, e.RegistrationDeadline,
		e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapEventWriteError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) AddParticipant(ctx context.Context, eventID string, p domain.Participant) error {
	if _, err := uuid.Parse(eventID); err != nil {
		return domain.ErrNotFound
	}
	query := `
		INSERT INTO participants (event_id, first_name, last_name, email)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, p.FirstName, p.LastName, p.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return domain.ErrAlreadyRegistered
			case "foreign_key_violation":
				return domain.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (r *eventRepository) loadParticipants(ctx context.Context, e *domain.Event) error {
	query := `
		SELECT first_name, last_name, email
		FROM participants
		WHERE event_id = $1
		ORDER BY registered_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	e.Participants = make([]domain.Participant, 0)
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.FirstName, &p.LastName, &p.Email); err != nil {
			return err
		}
		e.Participants = append(e.Participants, p)
	}
	return rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, locNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &descNull, &locNull,
		&e.StartDate, &e.EndDate, &e.RegistrationDeadline,
		&e.ProviderID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Description = descNull.String
	e.Location = locNull.String
	return e, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
