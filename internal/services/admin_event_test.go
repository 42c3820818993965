package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eventsignup/internal/domain"
	"eventsignup/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	listErr   error
	updateErr error
	addErr    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByProviderID(ctx context.Context, providerID string) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*domain.Event{}
	for _, e := range f.byID {
		if e.ProviderID == providerID {
			out = append(out, e)
		}
	}
	// Sort by CreatedAt DESC to match repo
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListAll(ctx context.Context) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*domain.Event{}
	for _, e := range f.byID {
		out = append(out, e)
	}
	// Sort by StartDate ASC to match repo
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartDate.Before(out[i].StartDate) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) AddParticipant(ctx context.Context, eventID string, p domain.Participant) error {
	if f.addErr != nil {
		return f.addErr
	}
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, existing := range e.Participants {
		if strings.EqualFold(existing.Email, p.Email) {
			return domain.ErrAlreadyRegistered
		}
	}
	e.Participants = append(e.Participants, p)
	return nil
}

// validInput returns an EventInput whose dates satisfy the window rules.
func validInput(title string) domain.EventInput {
	start := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	return domain.EventInput{
		Title:                title,
		Description:          "Ein Sommerfest",
		Location:             "Stadtpark",
		StartDate:            start,
		EndDate:              start.Add(4 * time.Hour),
		RegistrationDeadline: start.Add(-24 * time.Hour),
	}
}

func TestAdminEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(er *fakeEventRepo)
		input    func() domain.EventInput
		wantErr  bool
		wantCode string
		assert   func(t *testing.T, er *fakeEventRepo, event *domain.Event)
	}{
		{
			name:  "success",
			input: func() domain.EventInput { return validInput("  Sommerfest  ") },
			assert: func(t *testing.T, er *fakeEventRepo, event *domain.Event) {
				require.NotEmpty(t, event.ID)
				assert.Equal(t, "Sommerfest", event.Title)
				assert.Equal(t, "prov-1", event.ProviderID)
				assert.NotNil(t, event.Participants)
				assert.Len(t, event.Participants, 0)
				assert.False(t, event.CreatedAt.IsZero())
				_, ok := er.byID[event.ID]
				assert.True(t, ok)
			},
		},
		{
			name: "missing title",
			input: func() domain.EventInput {
				in := validInput("   ")
				return in
			},
			wantErr:  true,
			wantCode: validation.CodeMissingField,
		},
		{
			name: "missing dates",
			input: func() domain.EventInput {
				return domain.EventInput{Title: "Sommerfest"}
			},
			wantErr:  true,
			wantCode: validation.CodeMissingField,
		},
		{
			name: "start not before end",
			input: func() domain.EventInput {
				in := validInput("Sommerfest")
				in.EndDate = in.StartDate
				return in
			},
			wantErr:  true,
			wantCode: validation.CodeInvalidWindow,
		},
		{
			name: "deadline after start",
			input: func() domain.EventInput {
				in := validInput("Sommerfest")
				in.RegistrationDeadline = in.StartDate.Add(time.Minute)
				return in
			},
			wantErr:  true,
			wantCode: validation.CodeDeadlineTooLate,
		},
		{
			name: "deadline equal to start is allowed",
			input: func() domain.EventInput {
				in := validInput("Sommerfest")
				in.RegistrationDeadline = in.StartDate
				return in
			},
			assert: func(t *testing.T, er *fakeEventRepo, event *domain.Event) {
				require.NotEmpty(t, event.ID)
			},
		},
		{
			name:  "repo error",
			setup: func(er *fakeEventRepo) { er.createErr = errors.New("db down") },
			input: func() domain.EventInput { return validInput("Sommerfest") },
			wantErr: true,
		},
		{
			name: "repo constraint error surfaces as validation error",
			setup: func(er *fakeEventRepo) {
				er.createErr = validation.EventWindowViolation()
			},
			input:    func() domain.EventInput { return validInput("Sommerfest") },
			wantErr:  true,
			wantCode: validation.CodeInvalidWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er := newFakeEventRepo()
			if tt.setup != nil {
				tt.setup(er)
			}
			svc := NewAdminEventService(er)
			event, err := svc.CreateEvent(ctx, "prov-1", tt.input())
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, event)
				if tt.wantCode != "" {
					var verr *validation.Error
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.wantCode, verr.Code)
				}
				return
			}
			require.NoError(t, err)
			tt.assert(t, er, event)
		})
	}
}

func TestAdminEventService_ListMyEvents(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	_, _ = NewAdminEventService(er).CreateEvent(ctx, "prov-1", validInput("E1"))
	_, _ = NewAdminEventService(er).CreateEvent(ctx, "prov-1", validInput("E2"))
	_, _ = NewAdminEventService(er).CreateEvent(ctx, "prov-2", validInput("Fremd"))

	events, err := NewAdminEventService(er).ListMyEvents(ctx, "prov-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, "prov-1", e.ProviderID)
	}

	events, err = NewAdminEventService(er).ListMyEvents(ctx, "prov-none")
	require.NoError(t, err)
	require.Len(t, events, 0)
}

func TestAdminEventService_GetMyEvent(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	svc := NewAdminEventService(er)
	created, err := svc.CreateEvent(ctx, "prov-1", validInput("Sommerfest"))
	require.NoError(t, err)

	t.Run("owner gets the event", func(t *testing.T) {
		got, err := svc.GetMyEvent(ctx, created.ID, "prov-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetMyEvent(ctx, "ev-missing", "prov-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("foreign event looks missing", func(t *testing.T) {
		_, err := svc.GetMyEvent(ctx, created.ID, "prov-2")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdminEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	newRepoWithEvent := func(t *testing.T) (*fakeEventRepo, *domain.Event) {
		er := newFakeEventRepo()
		created, err := NewAdminEventService(er).CreateEvent(ctx, "prov-1", validInput("Alt"))
		require.NoError(t, err)
		return er, created
	}

	t.Run("success overwrites fields", func(t *testing.T) {
		er, created := newRepoWithEvent(t)
		svc := NewAdminEventService(er)
		in := validInput("Neu")
		in.Location = "Rathausplatz"

		got, err := svc.UpdateEvent(ctx, created.ID, "prov-1", in)
		require.NoError(t, err)
		assert.Equal(t, "Neu", got.Title)
		assert.Equal(t, "Rathausplatz", got.Location)
		assert.Equal(t, "prov-1", got.ProviderID)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
	})

	t.Run("validation runs before ownership", func(t *testing.T) {
		er, created := newRepoWithEvent(t)
		svc := NewAdminEventService(er)
		in := validInput("Neu")
		in.RegistrationDeadline = in.StartDate.Add(time.Hour)

		_, err := svc.UpdateEvent(ctx, created.ID, "prov-2", in)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, validation.CodeDeadlineTooLate, verr.Code)
	})

	t.Run("foreign event looks missing", func(t *testing.T) {
		er, created := newRepoWithEvent(t)
		svc := NewAdminEventService(er)

		_, err := svc.UpdateEvent(ctx, created.ID, "prov-2", validInput("Neu"))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		er, _ := newRepoWithEvent(t)
		svc := NewAdminEventService(er)

		_, err := svc.UpdateEvent(ctx, "ev-missing", "prov-1", validInput("Neu"))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("participants untouched", func(t *testing.T) {
		er, created := newRepoWithEvent(t)
		require.NoError(t, er.AddParticipant(ctx, created.ID, domain.Participant{
			FirstName: "Max", LastName: "Mustermann", Email: "max@example.com",
		}))
		svc := NewAdminEventService(er)

		got, err := svc.UpdateEvent(ctx, created.ID, "prov-1", validInput("Neu"))
		require.NoError(t, err)
		require.Len(t, got.Participants, 1)
	})
}

func TestAdminEventService_GetParticipants(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	svc := NewAdminEventService(er)
	created, err := svc.CreateEvent(ctx, "prov-1", validInput("Sommerfest"))
	require.NoError(t, err)
	require.NoError(t, er.AddParticipant(ctx, created.ID, domain.Participant{
		FirstName: "Max", LastName: "Mustermann", Email: "max@example.com",
	}))

	t.Run("owner lists participants", func(t *testing.T) {
		got, err := svc.GetParticipants(ctx, created.ID, "prov-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "max@example.com", got[0].Email)
	})

	t.Run("foreign event looks missing", func(t *testing.T) {
		_, err := svc.GetParticipants(ctx, created.ID, "prov-2")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdminEventService_ExportParticipantsCSV(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		participants []domain.Participant
		want         string
	}{
		{
			name:         "empty list is header only",
			participants: nil,
			want:         "Vorname,Nachname,E-Mail\n",
		},
		{
			name: "plain rows",
			participants: []domain.Participant{
				{FirstName: "Max", LastName: "Mustermann", Email: "max@example.com"},
				{FirstName: "Erika", LastName: "Musterfrau", Email: "erika@example.com"},
			},
			want: "Vorname,Nachname,E-Mail\n" +
				"Max,Mustermann,max@example.com\n" +
				"Erika,Musterfrau,erika@example.com\n",
		},
		{
			name: "comma forces quoting",
			participants: []domain.Participant{
				{FirstName: "Anna, Maria", LastName: "Schmidt", Email: "anna@example.com"},
			},
			want: "Vorname,Nachname,E-Mail\n" +
				`"Anna, Maria",Schmidt,anna@example.com` + "\n",
		},
		{
			name: "quotes are doubled and quoted",
			participants: []domain.Participant{
				{FirstName: `Jo "JJ"`, LastName: "Jonas", Email: "jj@example.com"},
			},
			want: "Vorname,Nachname,E-Mail\n" +
				`"Jo ""JJ""",Jonas,jj@example.com` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er := newFakeEventRepo()
			svc := NewAdminEventService(er)
			created, err := svc.CreateEvent(ctx, "prov-1", validInput("Sommerfest"))
			require.NoError(t, err)
			for _, p := range tt.participants {
				require.NoError(t, er.AddParticipant(ctx, created.ID, p))
			}

			got, err := svc.ExportParticipantsCSV(ctx, created.ID, "prov-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("foreign event looks missing", func(t *testing.T) {
		er := newFakeEventRepo()
		svc := NewAdminEventService(er)
		created, err := svc.CreateEvent(ctx, "prov-1", validInput("Sommerfest"))
		require.NoError(t, err)

		_, err = svc.ExportParticipantsCSV(ctx, created.ID, "prov-2")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
