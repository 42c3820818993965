package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eventsignup/internal/delivery/http/helpers"
	"eventsignup/internal/delivery/http/middleware"
	"eventsignup/internal/delivery/http/web"
	"eventsignup/internal/domain"
	"eventsignup/internal/validation"
)

const (
	msgEventUpdated  = "Event erfolgreich aktualisiert"
	msgBadDateFormat = "Ungültiges Datumsformat."
)

// EventController serves the provider-side event management: the JSON API
// under /api/events and the admin pages under /admin.
type EventController struct {
	Logger   *slog.Logger
	Service  domain.EventService
	Renderer *web.Renderer
}

func NewEventController(logger *slog.Logger, svc domain.EventService, renderer *web.Renderer) *EventController {
	return &EventController{
		Logger:   logger,
		Service:  svc,
		Renderer: renderer,
	}
}

// EventRequest is the request body for creating and updating events. Dates
// are RFC 3339 or the datetime-local format browsers submit.
type EventRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Location             string `json:"location"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	RegistrationDeadline string `json:"registrationDeadline"`
}

// parseEventTime accepts RFC 3339 and the value of an HTML datetime-local
// input. Empty strings stay zero so the workflow reports the missing field.
func parseEventTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported time format %q", s)
	}
	return t, nil
}

func (e EventRequest) toInput() (domain.EventInput, error) {
	start, err := parseEventTime(e.StartDate)
	if err != nil {
		return domain.EventInput{}, err
	}
	end, err := parseEventTime(e.EndDate)
	if err != nil {
		return domain.EventInput{}, err
	}
	deadline, err := parseEventTime(e.RegistrationDeadline)
	if err != nil {
		return domain.EventInput{}, err
	}
	return domain.EventInput{
		Title:                e.Title,
		Description:          e.Description,
		Location:             e.Location,
		StartDate:            start,
		EndDate:              end,
		RegistrationDeadline: deadline,
	}, nil
}

func eventRequestFromForm(r *http.Request) EventRequest {
	return EventRequest{
		Title:                r.FormValue("title"),
		Description:          r.FormValue("description"),
		Location:             r.FormValue("location"),
		StartDate:            r.FormValue("startDate"),
		EndDate:              r.FormValue("endDate"),
		RegistrationDeadline: r.FormValue("registrationDeadline"),
	}
}

func eventRequestFromEvent(e *domain.Event) EventRequest {
	return EventRequest{
		Title:                e.Title,
		Description:          e.Description,
		Location:             e.Location,
		StartDate:            e.StartDate.Format("2006-01-02T15:04"),
		EndDate:              e.EndDate.Format("2006-01-02T15:04"),
		RegistrationDeadline: e.RegistrationDeadline.Format("2006-01-02T15:04"),
	}
}

// CreatedEventResponse is the response body for POST /api/events.
type CreatedEventResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UpdatedEventResponse is the response body for PUT /admin/event/{eventID}.
type UpdatedEventResponse struct {
	Message string        `json:"message"`
	Event   *domain.Event `json:"event"`
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event owned by the authenticated provider. Start must be before end and the registration deadline must not be after the start.
// @Tags events
// @Accept json
// @Produce json
// @Param event body EventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains {id, title}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "Nicht authentifiziert")
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, msgBadDateFormat)
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, in)
	if err != nil {
		c.writeAPIError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreatedEventResponse{ID: event.ID, Title: event.Title})
}

// ListEvents godoc
// @Summary List own events
// @Description Returns all events owned by the authenticated provider, newest first.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains []Event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "Nicht authentifiziert")
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), userID)
	if err != nil {
		c.writeAPIError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetParticipants godoc
// @Summary List participants of an own event
// @Description Returns the participant list. An event owned by another provider yields 404.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains []Participant"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID}/participants [get]
func (c *EventController) GetParticipants(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "Nicht authentifiziert")
		return
	}
	participants, err := c.Service.GetParticipants(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		c.writeAPIError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participants)
}

// ExportParticipantsCSV godoc
// @Summary Download the participant list as CSV
// @Description Streams the list as a CSV attachment with the header Vorname,Nachname,E-Mail.
// @Tags events
// @Produce text/csv
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {string} string "CSV content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID}/participants/csv [get]
func (c *EventController) ExportParticipantsCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "Nicht authentifiziert")
		return
	}
	content, err := c.Service.ExportParticipantsCSV(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		c.writeAPIError(w, r, err)
		return
	}
	filename := fmt.Sprintf("teilnehmer-%s.csv", time.Now().UTC().Format("2006-01-02T15-04-05-000Z"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// UpdateEvent godoc
// @Summary Update an own event
// @Description Overwrites title, description, location, and dates. Participants stay untouched. An event owned by another provider yields 404.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param event body EventRequest true "Event data"
// @Success 200 {object} helpers.APIResponse "data contains {message, event}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/event/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "Nicht authentifiziert")
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, msgBadDateFormat)
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("eventID"), userID, in)
	if err != nil {
		c.writeAPIError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UpdatedEventResponse{Message: msgEventUpdated, Event: event})
}

// writeAPIError maps service errors for the JSON endpoints.
func (c *EventController) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, verr.Message)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, msgEventNotFound)
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, msgServerError)
	}
}

// Dashboard renders the provider's own events.
func (c *EventController) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		c.Renderer.RenderError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	c.Renderer.Render(w, http.StatusOK, "dashboard", map[string]any{
		"Title":    "Meine Termine",
		"LoggedIn": true,
		"Events":   events,
	})
}

// ShowCreateForm renders the empty event form.
func (c *EventController) ShowCreateForm(w http.ResponseWriter, r *http.Request) {
	c.Renderer.Render(w, http.StatusOK, "event_form", map[string]any{
		"Title":    "Termin anlegen",
		"LoggedIn": true,
		"Action":   "/admin/event",
		"Form":     EventRequest{},
	})
}

// CreateFromForm handles the browser form submission for a new event.
func (c *EventController) CreateFromForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		c.Renderer.RenderError(w, http.StatusBadRequest, msgServerError)
		return
	}
	req := eventRequestFromForm(r)
	c.saveFromForm(w, r, userID, "", req)
}

// ShowEditForm renders the event form prefilled with an owned event.
func (c *EventController) ShowEditForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	event, err := c.Service.GetMyEvent(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		c.writePageError(w, r, err)
		return
	}
	c.Renderer.Render(w, http.StatusOK, "event_form", map[string]any{
		"Title":    "Termin bearbeiten",
		"LoggedIn": true,
		"Event":    event,
		"Action":   "/admin/event/" + event.ID + "/edit",
		"Form":     eventRequestFromEvent(event),
	})
}

// UpdateFromForm handles the browser form submission for an edited event.
func (c *EventController) UpdateFromForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		c.Renderer.RenderError(w, http.StatusBadRequest, msgServerError)
		return
	}
	req := eventRequestFromForm(r)
	c.saveFromForm(w, r, userID, r.PathValue("eventID"), req)
}

// saveFromForm creates or updates from form input and re-renders the form
// with a message on validation failure. eventID empty means create.
func (c *EventController) saveFromForm(w http.ResponseWriter, r *http.Request, userID, eventID string, req EventRequest) {
	renderForm := func(status int, message string) {
		data := map[string]any{
			"Title":    "Termin anlegen",
			"LoggedIn": true,
			"Action":   "/admin/event",
			"Form":     req,
			"Error":    message,
		}
		if eventID != "" {
			data["Title"] = "Termin bearbeiten"
			data["Event"] = map[string]string{"ID": eventID}
			data["Action"] = "/admin/event/" + eventID + "/edit"
		}
		c.Renderer.Render(w, status, "event_form", data)
	}

	in, err := req.toInput()
	if err != nil {
		renderForm(http.StatusBadRequest, msgBadDateFormat)
		return
	}
	if eventID == "" {
		_, err = c.Service.CreateEvent(r.Context(), userID, in)
	} else {
		_, err = c.Service.UpdateEvent(r.Context(), eventID, userID, in)
	}
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			renderForm(http.StatusBadRequest, verr.Message)
		case errors.Is(err, domain.ErrNotFound):
			c.Renderer.RenderError(w, http.StatusNotFound, msgEventNotFound)
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			c.Renderer.RenderError(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

// ParticipantsPage renders the participant list of an owned event.
func (c *EventController) ParticipantsPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	event, err := c.Service.GetMyEvent(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		c.writePageError(w, r, err)
		return
	}
	c.Renderer.Render(w, http.StatusOK, "participants", map[string]any{
		"Title":    "Teilnehmerliste",
		"LoggedIn": true,
		"Event":    event,
	})
}

func (c *EventController) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.Renderer.RenderError(w, http.StatusNotFound, msgEventNotFound)
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	c.Renderer.RenderError(w, http.StatusInternalServerError, msgServerError)
}
