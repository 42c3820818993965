package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventsignup/internal/delivery/http/helpers"
	"eventsignup/internal/delivery/http/middleware"
	"eventsignup/internal/delivery/http/web"
	"eventsignup/internal/domain"
	"eventsignup/internal/validation"
)

const (
	msgRegisterSuccess = "Registrierung erfolgreich."
	msgRegisterFailed  = "Registrierung fehlgeschlagen. Bitte überprüfen Sie Ihre Eingaben."
	msgLoginSuccess    = "Erfolgreich angemeldet."
	msgLoginFailed     = "Ungültige E-Mail oder Passwort"
	msgLogoutFailed    = "Fehler beim Logout"
	msgServerError     = "Serverfehler"
)

// AuthController serves provider registration, login, and logout, both as
// JSON endpoints and as browser form pages.
type AuthController struct {
	Logger        *slog.Logger
	Service       domain.AuthService
	Renderer      *web.Renderer
	SecureCookies bool
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, renderer *web.Renderer, secureCookies bool) *AuthController {
	return &AuthController{
		Logger:        logger,
		Service:       svc,
		Renderer:      renderer,
		SecureCookies: secureCookies,
	}
}

// CredentialsRequest is the request body for POST /register and POST /login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (c CredentialsRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		errs = append(errs, "E-Mail und Passwort sind Pflicht.")
	}
	return errs
}

// MessageResponse is the success body of the auth endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// isJSONRequest reports whether the client submitted JSON rather than an
// HTML form.
func isJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json") || helpers.WantsJSON(r)
}

// ShowRegister renders the registration form.
func (c *AuthController) ShowRegister(w http.ResponseWriter, r *http.Request) {
	c.Renderer.Render(w, http.StatusOK, "register", map[string]any{
		"Title": "Registrieren",
		"Form":  CredentialsRequest{},
	})
}

// ShowLogin renders the login form.
func (c *AuthController) ShowLogin(w http.ResponseWriter, r *http.Request) {
	c.Renderer.Render(w, http.StatusOK, "login", map[string]any{
		"Title": "Anmelden",
		"Form":  CredentialsRequest{},
	})
}

// Register godoc
// @Summary Register a provider account
// @Description Creates a provider account. The password must be at least 12 characters with an uppercase letter and a special character. A taken email yields the same generic 400 as other input problems.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Email and password"
// @Success 201 {object} helpers.APIResponse "data contains {message}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if isJSONRequest(r) {
		var req CredentialsRequest
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
		if _, err := c.Service.Register(r.Context(), req.Email, req.Password); err != nil {
			c.writeRegisterError(w, r, err, nil)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusCreated, MessageResponse{Message: msgRegisterSuccess})
		return
	}

	if err := r.ParseForm(); err != nil {
		c.Renderer.RenderError(w, http.StatusBadRequest, msgRegisterFailed)
		return
	}
	req := CredentialsRequest{Email: r.FormValue("email"), Password: r.FormValue("password")}
	if _, err := c.Service.Register(r.Context(), req.Email, req.Password); err != nil {
		c.writeRegisterError(w, r, err, &req)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// writeRegisterError maps registration failures. A duplicate email gets the
// same generic message as bad input so accounts cannot be enumerated.
func (c *AuthController) writeRegisterError(w http.ResponseWriter, r *http.Request, err error, form *CredentialsRequest) {
	var verr *validation.Error
	message := msgRegisterFailed
	status := http.StatusBadRequest
	switch {
	case errors.As(err, &verr):
		message = verr.Message
	case errors.Is(err, domain.ErrDuplicateEmail):
		// keep the generic message
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		message = msgServerError
		status = http.StatusInternalServerError
	}
	if form == nil {
		code := helpers.ErrCodeBadRequest
		if status == http.StatusInternalServerError {
			code = helpers.ErrCodeInternalError
		}
		helpers.WriteJSONError(w, status, code, message)
		return
	}
	c.Renderer.Render(w, status, "register", map[string]any{
		"Title": "Registrieren",
		"Error": message,
		"Form":  CredentialsRequest{Email: form.Email},
	})
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and sets the session cookie. Unknown email and wrong password produce the same 401.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Email and password"
// @Success 200 {object} helpers.APIResponse "data contains {message}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if isJSONRequest(r) {
		var req CredentialsRequest
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
		session, err := c.Service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			c.writeLoginError(w, r, err, nil)
			return
		}
		c.setSessionCookie(w, session)
		helpers.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: msgLoginSuccess})
		return
	}

	if err := r.ParseForm(); err != nil {
		c.Renderer.RenderError(w, http.StatusBadRequest, msgLoginFailed)
		return
	}
	req := CredentialsRequest{Email: r.FormValue("email"), Password: r.FormValue("password")}
	session, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		c.writeLoginError(w, r, err, &req)
		return
	}
	c.setSessionCookie(w, session)
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

func (c *AuthController) writeLoginError(w http.ResponseWriter, r *http.Request, err error, form *CredentialsRequest) {
	var verr *validation.Error
	message := msgLoginFailed
	status := http.StatusUnauthorized
	switch {
	case errors.As(err, &verr):
		message = verr.Message
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		// keep the generic message
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		message = msgServerError
		status = http.StatusInternalServerError
	}
	if form == nil {
		code := helpers.ErrCodeUnauthorized
		switch status {
		case http.StatusBadRequest:
			code = helpers.ErrCodeBadRequest
		case http.StatusInternalServerError:
			code = helpers.ErrCodeInternalError
		}
		helpers.WriteJSONError(w, status, code, message)
		return
	}
	c.Renderer.Render(w, status, "login", map[string]any{
		"Title": "Anmelden",
		"Error": message,
		"Form":  CredentialsRequest{Email: form.Email},
	})
}

// Logout godoc
// @Summary Log out
// @Description Destroys the session and clears the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains {message}"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := c.Service.Logout(r.Context(), cookie.Value); err != nil {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			if isJSONRequest(r) {
				helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, msgLogoutFailed)
			} else {
				c.Renderer.RenderError(w, http.StatusInternalServerError, msgLogoutFailed)
			}
			return
		}
	}
	c.clearSessionCookie(w)
	if isJSONRequest(r) {
		helpers.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: "Erfolgreich abgemeldet."})
		return
	}
	http.Redirect(w, r, "/event", http.StatusFound)
}

func (c *AuthController) setSessionCookie(w http.ResponseWriter, session *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   c.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *AuthController) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
