package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"eventsignup/internal/domain"
	"eventsignup/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventID1 = "3f6f2b9e-0c5d-4f7a-9a1e-8f8d2a7b6c01"
	eventID2 = "5a1c7d3e-2b4f-4c6d-8e0a-1f2b3c4d5e02"
)

var eventCols = []string{
	"id", "title", "description", "location",
	"start_date", "end_date", "registration_deadline",
	"provider_id", "created_at", "updated_at",
}

var participantCols = []string{"first_name", "last_name", "email"}

func testEvent(now time.Time) *domain.Event {
	return &domain.Event{
		Title:                "Sommerfest",
		Description:          "Ein Fest im Park",
		Location:             "Stadtpark",
		StartDate:            now.Add(48 * time.Hour),
		EndDate:              now.Add(52 * time.Hour),
		RegistrationDeadline: now.Add(24 * time.Hour),
		ProviderID:           "prov-uuid-1",
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		event    *domain.Event
		mock     func(mock sqlmock.Sqlmock, e *domain.Event)
		wantErr  bool
		wantCode string
	}{
		{
			name:  "success sets id",
			event: testEvent(now),
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs(e.Title,
						sql.NullString{String: e.Description, Valid: true},
						sql.NullString{String: e.Location, Valid: true},
						e.StartDate, e.EndDate, e.RegistrationDeadline,
						e.ProviderID, e.CreatedAt, e.UpdatedAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(eventID1))
			},
		},
		{
			name: "empty description and location stored as NULL",
			event: func() *domain.Event {
				e := testEvent(now)
				e.Description = ""
				e.Location = ""
				return e
			}(),
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs(e.Title,
						sql.NullString{Valid: false},
						sql.NullString{Valid: false},
						e.StartDate, e.EndDate, e.RegistrationDeadline,
						e.ProviderID, e.CreatedAt, e.UpdatedAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(eventID1))
			},
		},
		{
			name:  "window check violation maps to validation error",
			event: testEvent(now),
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23514", Constraint: "events_start_before_end"})
			},
			wantErr:  true,
			wantCode: validation.CodeInvalidWindow,
		},
		{
			name:  "deadline check violation maps to validation error",
			event: testEvent(now),
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23514", Constraint: "events_deadline_not_after_start"})
			},
			wantErr:  true,
			wantCode: validation.CodeDeadlineTooLate,
		},
		{
			name:  "db error",
			event: testEvent(now),
			mock: func(mock sqlmock.Sqlmock, e *domain.Event) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock, tt.event)
			err = NewEventRepository(db).Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantCode != "" {
					var verr *validation.Error
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.wantCode, verr.Code)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, eventID1, tt.event.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success loads participants", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM events\s+WHERE id`).
			WithArgs(eventID1).
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow(eventID1, "Sommerfest", "Ein Fest", "Stadtpark",
					now.Add(48*time.Hour), now.Add(52*time.Hour), now.Add(24*time.Hour),
					"prov-uuid-1", now, now))
		mock.ExpectQuery(`SELECT first_name, last_name, email\s+FROM participants`).
			WithArgs(eventID1).
			WillReturnRows(sqlmock.NewRows(participantCols).
				AddRow("Max", "Mustermann", "max@example.com"))

		e, err := NewEventRepository(db).GetByID(ctx, eventID1)
		require.NoError(t, err)
		assert.Equal(t, "Sommerfest", e.Title)
		assert.Equal(t, "Ein Fest", e.Description)
		require.Len(t, e.Participants, 1)
		assert.Equal(t, "max@example.com", e.Participants[0].Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null description and location become empty strings", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM events\s+WHERE id`).
			WithArgs(eventID1).
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow(eventID1, "Sommerfest", nil, nil,
					now.Add(48*time.Hour), now.Add(52*time.Hour), now.Add(24*time.Hour),
					"prov-uuid-1", now, now))
		mock.ExpectQuery(`SELECT first_name, last_name, email\s+FROM participants`).
			WithArgs(eventID1).
			WillReturnRows(sqlmock.NewRows(participantCols))

		e, err := NewEventRepository(db).GetByID(ctx, eventID1)
		require.NoError(t, err)
		assert.Equal(t, "", e.Description)
		assert.Equal(t, "", e.Location)
		require.NotNil(t, e.Participants)
		assert.Len(t, e.Participants, 0)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows returns ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM events\s+WHERE id`).
			WithArgs(eventID1).
			WillReturnError(sql.ErrNoRows)

		_, err = NewEventRepository(db).GetByID(ctx, eventID1)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id returns ErrNotFound without touching the db", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, err = NewEventRepository(db).GetByID(ctx, "not-a-uuid")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListByProviderID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns events with participants", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM events\s+WHERE provider_id`).
			WithArgs("prov-uuid-1").
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow(eventID1, "Sommerfest", nil, nil,
					now.Add(48*time.Hour), now.Add(52*time.Hour), now.Add(24*time.Hour),
					"prov-uuid-1", now, now).
				AddRow(eventID2, "Herbstmarkt", nil, nil,
					now.Add(96*time.Hour), now.Add(100*time.Hour), now.Add(72*time.Hour),
					"prov-uuid-1", now.Add(-time.Hour), now.Add(-time.Hour)))
		mock.ExpectQuery(`SELECT first_name, last_name, email\s+FROM participants`).
			WithArgs(eventID1).
			WillReturnRows(sqlmock.NewRows(participantCols).
				AddRow("Max", "Mustermann", "max@example.com"))
		mock.ExpectQuery(`SELECT first_name, last_name, email\s+FROM participants`).
			WithArgs(eventID2).
			WillReturnRows(sqlmock.NewRows(participantCols))

		events, err := NewEventRepository(db).ListByProviderID(ctx, "prov-uuid-1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Len(t, events[0].Participants, 1)
		assert.Len(t, events[1].Participants, 0)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no events yields empty slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM events\s+WHERE provider_id`).
			WithArgs("prov-none").
			WillReturnRows(sqlmock.NewRows(eventCols))

		events, err := NewEventRepository(db).ListByProviderID(ctx, "prov-none")
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Len(t, events, 0)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM events\s+ORDER BY start_date ASC`).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(eventID1, "Sommerfest", nil, nil,
				now.Add(48*time.Hour), now.Add(52*time.Hour), now.Add(24*time.Hour),
				"prov-uuid-1", now, now))
	mock.ExpectQuery(`SELECT first_name, last_name, email\s+FROM participants`).
		WithArgs(eventID1).
		WillReturnRows(sqlmock.NewRows(participantCols))

	events, err := NewEventRepository(db).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	event := testEvent(now)
	event.ID = eventID1

	tests := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantErr  bool
		errIs    error
		wantCode string
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WithArgs(event.Title,
						sql.NullString{String: event.Description, Valid: true},
						sql.NullString{String: event.Location, Valid: true},
						event.StartDate, event.EndDate, event.RegistrationDeadline,
						event.UpdatedAt, eventID1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "zero rows affected returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "check violation maps to validation error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WillReturnError(&pq.Error{Code: "23514", Constraint: "events_deadline_not_after_start"})
			},
			wantErr:  true,
			wantCode: validation.CodeDeadlineTooLate,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewEventRepository(db).Update(ctx, event)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				if tt.wantCode != "" {
					var verr *validation.Error
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.wantCode, verr.Code)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_AddParticipant(t *testing.T) {
	ctx := context.Background()
	p := domain.Participant{FirstName: "Max", LastName: "Mustermann", Email: "max@example.com"}

	tests := []struct {
		name    string
		eventID string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name:    "success",
			eventID: eventID1,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO participants`).
					WithArgs(eventID1, "Max", "Mustermann", "max@example.com").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "unique violation returns ErrAlreadyRegistered",
			eventID: eventID1,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO participants`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrAlreadyRegistered,
		},
		{
			name:    "foreign key violation returns ErrNotFound",
			eventID: eventID1,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO participants`).
					WillReturnError(&pq.Error{Code: "23503"})
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name:    "malformed event id returns ErrNotFound without touching the db",
			eventID: "not-a-uuid",
			mock:    func(mock sqlmock.Sqlmock) {},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name:    "db error",
			eventID: eventID1,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO participants`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewEventRepository(db).AddParticipant(ctx, tt.eventID, p)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
