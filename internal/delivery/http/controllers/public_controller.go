package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventsignup/internal/delivery/http/helpers"
	"eventsignup/internal/delivery/http/web"
	"eventsignup/internal/domain"
	"eventsignup/internal/validation"
)

const (
	msgEventNotFound   = "Event nicht gefunden."
	msgDeadlinePassed  = "Anmeldefrist abgelaufen."
	msgAlreadySignedUp = "Sie sind bereits für das Event angemeldet"
	msgSignupSuccess   = "Erfolgreich angemeldet!"
)

// PublicController serves the public event pages and the open sign-up
// endpoint. Nothing here requires a session.
type PublicController struct {
	Logger   *slog.Logger
	Service  domain.PublicEventService
	Renderer *web.Renderer
}

func NewPublicController(logger *slog.Logger, svc domain.PublicEventService, renderer *web.Renderer) *PublicController {
	return &PublicController{
		Logger:   logger,
		Service:  svc,
		Renderer: renderer,
	}
}

// Home redirects to the event listing.
func (c *PublicController) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/event", http.StatusFound)
}

// ListEvents godoc
// @Summary List all events
// @Description Returns all events grouped into open, closed, and past buckets. Browsers get the rendered listing page.
// @Tags public
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains {openEvents, closedEvents, pastEvents}"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event [get]
func (c *PublicController) ListEvents(w http.ResponseWriter, r *http.Request) {
	buckets, err := c.Service.ListEvents(r.Context(), time.Now())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		if helpers.WantsJSON(r) {
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, msgServerError)
		} else {
			c.Renderer.RenderError(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}
	if helpers.WantsJSON(r) {
		helpers.WriteJSONSuccess(w, http.StatusOK, buckets)
		return
	}
	c.Renderer.Render(w, http.StatusOK, "events", map[string]any{
		"Title":   "Termine",
		"Buckets": buckets,
	})
}

// ShowEvent godoc
// @Summary Get one event
// @Description Returns the event with its registration state. Browsers get the detail page with the sign-up form.
// @Tags public
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventID} [get]
func (c *PublicController) ShowEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if helpers.WantsJSON(r) {
				helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, msgEventNotFound)
			} else {
				c.Renderer.RenderError(w, http.StatusNotFound, msgEventNotFound)
			}
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		if helpers.WantsJSON(r) {
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, msgServerError)
		} else {
			c.Renderer.RenderError(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}
	if helpers.WantsJSON(r) {
		helpers.WriteJSONSuccess(w, http.StatusOK, event)
		return
	}
	c.renderDetail(w, http.StatusOK, event, ParticipantRequest{}, "", "")
}

// ParticipantRequest is the request body for POST /event/{eventID}/register.
type ParticipantRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// RegisterParticipant godoc
// @Summary Sign up for an event
// @Description Adds a participant to the event. Rejected after the registration deadline and for emails already on the list.
// @Tags public
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param participant body ParticipantRequest true "First name, last name, email"
// @Success 201 {object} helpers.APIResponse "data contains {message}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventID}/register [post]
func (c *PublicController) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")

	var req ParticipantRequest
	if isJSONRequest(r) {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			c.Renderer.RenderError(w, http.StatusBadRequest, msgServerError)
			return
		}
		req = ParticipantRequest{
			FirstName: r.FormValue("firstName"),
			LastName:  r.FormValue("lastName"),
			Email:     r.FormValue("email"),
		}
	}

	err := c.Service.RegisterParticipant(r.Context(), eventID, domain.ParticipantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		c.writeSignupError(w, r, eventID, req, err)
		return
	}

	if isJSONRequest(r) {
		helpers.WriteJSONSuccess(w, http.StatusCreated, MessageResponse{Message: msgSignupSuccess})
		return
	}
	event, gerr := c.Service.GetEvent(r.Context(), eventID)
	if gerr != nil {
		c.Renderer.RenderError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	c.renderDetail(w, http.StatusCreated, event, ParticipantRequest{}, "", msgSignupSuccess)
}

func (c *PublicController) writeSignupError(w http.ResponseWriter, r *http.Request, eventID string, req ParticipantRequest, err error) {
	var verr *validation.Error
	status := http.StatusInternalServerError
	code := helpers.ErrCodeInternalError
	message := msgServerError
	switch {
	case errors.As(err, &verr):
		status, code, message = http.StatusBadRequest, helpers.ErrCodeBadRequest, verr.Message
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = http.StatusNotFound, helpers.ErrCodeNotFound, msgEventNotFound
	case errors.Is(err, domain.ErrDeadlinePassed):
		status, code, message = http.StatusBadRequest, helpers.ErrCodeBadRequest, msgDeadlinePassed
	case errors.Is(err, domain.ErrAlreadyRegistered):
		status, code, message = http.StatusBadRequest, helpers.ErrCodeBadRequest, msgAlreadySignedUp
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}

	if isJSONRequest(r) {
		helpers.WriteJSONError(w, status, code, message)
		return
	}
	if status == http.StatusNotFound {
		c.Renderer.RenderError(w, status, message)
		return
	}
	event, gerr := c.Service.GetEvent(r.Context(), eventID)
	if gerr != nil {
		c.Renderer.RenderError(w, status, message)
		return
	}
	c.renderDetail(w, status, event, req, message, "")
}

func (c *PublicController) renderDetail(w http.ResponseWriter, status int, event *domain.Event, form ParticipantRequest, errMsg, successMsg string) {
	c.Renderer.Render(w, status, "event_detail", map[string]any{
		"Title":          event.Title,
		"Event":          event,
		"DeadlinePassed": event.DeadlinePassed(time.Now()),
		"Form":           form,
		"Error":          errMsg,
		"Success":        successMsg,
	})
}
