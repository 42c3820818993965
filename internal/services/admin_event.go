package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventsignup/internal/domain"
	"eventsignup/internal/validation"
)

// csvHeader is the fixed header of the participant export.
const csvHeader = "Vorname,Nachname,E-Mail"

type adminEventService struct {
	eventRepo domain.EventRepository
}

// NewAdminEventService creates the provider-side EventService.
func NewAdminEventService(eventRepo domain.EventRepository) domain.EventService {
	return &adminEventService{eventRepo: eventRepo}
}

// checkEventInput runs the workflow-level copy of the event rules: field
// presence first, then the date window. The database constraints repeat
// the window check on every write.
func checkEventInput(in domain.EventInput) *validation.Error {
	if strings.TrimSpace(in.Title) == "" || in.StartDate.IsZero() || in.EndDate.IsZero() || in.RegistrationDeadline.IsZero() {
		return &validation.Error{Code: validation.CodeMissingField, Message: "Titel, Start-, Endzeit und Anmeldefrist sind Pflicht."}
	}
	return validation.EventWindow(in.StartDate, in.EndDate, in.RegistrationDeadline)
}

func (s *adminEventService) CreateEvent(ctx context.Context, providerID string, in domain.EventInput) (*domain.Event, error) {
	if verr := checkEventInput(in); verr != nil {
		return nil, verr
	}

	now := time.Now()
	event := &domain.Event{
		Title:                strings.TrimSpace(in.Title),
		Description:          strings.TrimSpace(in.Description),
		Location:             strings.TrimSpace(in.Location),
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		RegistrationDeadline: in.RegistrationDeadline,
		ProviderID:           providerID,
		Participants:         []domain.Participant{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *adminEventService) ListMyEvents(ctx context.Context, providerID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// getOwned loads an event and hides it behind ErrNotFound when the caller
// is not the owner.
func (s *adminEventService) getOwned(ctx context.Context, eventID, providerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.ProviderID != providerID {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *adminEventService) GetMyEvent(ctx context.Context, eventID, providerID string) (*domain.Event, error) {
	return s.getOwned(ctx, eventID, providerID)
}

func (s *adminEventService) GetParticipants(ctx context.Context, eventID, providerID string) ([]domain.Participant, error) {
	event, err := s.getOwned(ctx, eventID, providerID)
	if err != nil {
		return nil, err
	}
	return event.Participants, nil
}

func (s *adminEventService) UpdateEvent(ctx context.Context, eventID, providerID string, in domain.EventInput) (*domain.Event, error) {
	if verr := checkEventInput(in); verr != nil {
		return nil, verr
	}

	event, err := s.getOwned(ctx, eventID, providerID)
	if err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(in.Title)
	event.Description = strings.TrimSpace(in.Description)
	event.Location = strings.TrimSpace(in.Location)
	event.StartDate = in.StartDate
	event.EndDate = in.EndDate
	event.RegistrationDeadline = in.RegistrationDeadline
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return nil, verr
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *adminEventService) ExportParticipantsCSV(ctx context.Context, eventID, providerID string) (string, error) {
	event, err := s.getOwned(ctx, eventID, providerID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for _, p := range event.Participants {
		b.WriteString(csvField(p.FirstName))
		b.WriteByte(',')
		b.WriteString(csvField(p.LastName))
		b.WriteByte(',')
		b.WriteString(csvField(p.Email))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// csvField doubles inner quotes and wraps the field in quotes when it
// contains a comma or a quote. Nothing else is escaped.
func csvField(s string) string {
	escaped := strings.ReplaceAll(s, `"`, `""`)
	if strings.ContainsAny(escaped, `,"`) {
		return `"` + escaped + `"`
	}
	return escaped
}
