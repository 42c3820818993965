package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventsignup/internal/domain"
	"eventsignup/internal/validation"
)

type publicEventService struct {
	eventRepo    domain.EventRepository
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewPublicEventService creates the public browsing and sign-up service.
// emailService may be nil; confirmations are then skipped.
func NewPublicEventService(eventRepo domain.EventRepository, emailService domain.EmailService, logger *slog.Logger) domain.PublicEventService {
	return &publicEventService{
		eventRepo:    eventRepo,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *publicEventService) ListEvents(ctx context.Context, now time.Time) (*domain.EventBuckets, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	buckets := &domain.EventBuckets{
		Open:   []*domain.Event{},
		Closed: []*domain.Event{},
		Past:   []*domain.Event{},
	}
	for _, e := range events {
		switch e.Status(now) {
		case domain.EventOpen:
			buckets.Open = append(buckets.Open, e)
		case domain.EventClosed:
			buckets.Closed = append(buckets.Closed, e)
		case domain.EventPast:
			buckets.Past = append(buckets.Past, e)
		}
	}
	return buckets, nil
}

func (s *publicEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *publicEventService) RegisterParticipant(ctx context.Context, eventID string, in domain.ParticipantInput) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if firstName == "" || lastName == "" || email == "" {
		return &validation.Error{Code: validation.CodeMissingField, Message: "Vorname, Nachname und E-Mail sind erforderlich."}
	}

	if event.DeadlinePassed(time.Now()) {
		return domain.ErrDeadlinePassed
	}
	if event.HasParticipant(email) {
		return domain.ErrAlreadyRegistered
	}

	participant := domain.Participant{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}
	// Run the store's email format rule here for a clean message; the
	// unique index backs up the duplicate check above.
	if verr := validation.Participant(participant.FirstName, participant.LastName, participant.Email); verr != nil {
		return verr
	}
	if err := s.eventRepo.AddParticipant(ctx, event.ID, participant); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("add participant: %w", err)
	}

	// Confirmation mail is best effort; the sign-up already happened.
	if s.emailService != nil {
		data := &domain.RegistrationConfirmationEmailData{
			Email:         participant.Email,
			FirstName:     participant.FirstName,
			EventTitle:    event.Title,
			EventLocation: event.Location,
			EventStart:    event.StartDate,
		}
		if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "confirmation email failed", "event_id", event.ID, "err", err)
		}
	}
	return nil
}
