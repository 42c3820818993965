package domain

import (
	"context"
	"strings"
	"time"
)

// Participant is a public registrant for an event. Participants are
// embedded in their event, have no account, and are append-only.
// swagger:model Participant
type Participant struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Event is an event offered by a provider. Participants sign up publicly
// until the registration deadline; the deadline may coincide with the
// start but never follow it, and the start is always before the end.
// swagger:model Event
type Event struct {
	ID                   string        `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	Location             string        `json:"location,omitempty"`
	StartDate            time.Time     `json:"startDate"`
	EndDate              time.Time     `json:"endDate"`
	RegistrationDeadline time.Time     `json:"registrationDeadline"`
	ProviderID           string        `json:"providerId"`
	Participants         []Participant `json:"participants"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// EventStatus is the derived registration state of an event. It is never
// stored; public listings bucket events by it.
type EventStatus string

const (
	// EventOpen: deadline not passed and the event has not started.
	EventOpen EventStatus = "open"
	// EventClosed: deadline passed but the event has not started.
	EventClosed EventStatus = "closed"
	// EventPast: the event has started (or finished).
	EventPast EventStatus = "past"
)

// Status derives the registration state at now.
func (e *Event) Status(now time.Time) EventStatus {
	if e.StartDate.Before(now) {
		return EventPast
	}
	if e.RegistrationDeadline.Before(now) {
		return EventClosed
	}
	return EventOpen
}

// DeadlinePassed reports whether new registrations are rejected at now.
// The deadline instant itself is still open.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return now.After(e.RegistrationDeadline)
}

// HasParticipant reports whether a participant with the given email is
// already registered. Comparison is case-insensitive.
func (e *Event) HasParticipant(email string) bool {
	for _, p := range e.Participants {
		if strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}

// EventBuckets groups events for the public listing.
type EventBuckets struct {
	Open   []*Event `json:"openEvents"`
	Closed []*Event `json:"closedEvents"`
	Past   []*Event `json:"pastEvents"`
}

// EventInput carries the writable fields of an event. Zero time values
// mean the field was not supplied.
type EventInput struct {
	Title                string
	Description          string
	Location             string
	StartDate            time.Time
	EndDate              time.Time
	RegistrationDeadline time.Time
}

// ParticipantInput carries a public sign-up submission.
type ParticipantInput struct {
	FirstName string
	LastName  string
	Email     string
}

// EventRepository defines the interface for event storage. Implementations
// enforce the date invariants and the per-event participant email
// uniqueness as the last line of defense (database constraints); the
// workflows run the same rules first for friendlier errors.
type EventRepository interface {
	// Create stores the event and sets its ID.
	Create(ctx context.Context, event *Event) error
	// GetByID loads the event including its participants.
	// Returns ErrNotFound for unknown or malformed IDs.
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListByProviderID returns all events owned by the provider,
	// newest first, including participants.
	ListByProviderID(ctx context.Context, providerID string) ([]*Event, error)
	// ListAll returns every event ordered by start date ascending.
	ListAll(ctx context.Context) ([]*Event, error)
	// Update overwrites title, description, location, and the three
	// dates. ProviderID and participants are never touched.
	Update(ctx context.Context, event *Event) error
	// AddParticipant appends one participant in a single atomic write.
	// Returns ErrAlreadyRegistered if the email is already on the list
	// and ErrNotFound if the event does not exist.
	AddParticipant(ctx context.Context, eventID string, p Participant) error
}

// EventService defines the provider-side (admin) event workflow. Every
// operation takes the provider ID resolved from the session; an event
// owned by someone else behaves exactly like a missing one.
type EventService interface {
	CreateEvent(ctx context.Context, providerID string, in EventInput) (*Event, error)
	ListMyEvents(ctx context.Context, providerID string) ([]*Event, error)
	GetMyEvent(ctx context.Context, eventID, providerID string) (*Event, error)
	GetParticipants(ctx context.Context, eventID, providerID string) ([]Participant, error)
	UpdateEvent(ctx context.Context, eventID, providerID string, in EventInput) (*Event, error)
	// ExportParticipantsCSV renders the participant list as CSV with the
	// header "Vorname,Nachname,E-Mail".
	ExportParticipantsCSV(ctx context.Context, eventID, providerID string) (string, error)
}

// PublicEventService defines the public browsing and sign-up workflow.
type PublicEventService interface {
	// ListEvents buckets all events into open/closed/past as of now.
	ListEvents(ctx context.Context, now time.Time) (*EventBuckets, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	// RegisterParticipant appends a participant to the event, enforcing
	// the deadline and duplicate-email rules.
	RegisterParticipant(ctx context.Context, eventID string, in ParticipantInput) error
}
