package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/metrics"
	"github.com/keyxmakerx/canvass/internal/middleware"
	"github.com/keyxmakerx/canvass/internal/validate"
)

// defaultLandingPath is where users go after signing in without a
// redirectTo target.
const defaultLandingPath = "/dashboard"

// Handler handles HTTP requests for authentication (login, register, logout).
// Handlers are thin: they bind the request, call the service, and render the
// response. No business logic lives here.
type Handler struct {
	service  AuthService
	sessions *SessionStore
	metrics  metrics.Recorder
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService, sessions *SessionStore, rec metrics.Recorder) *Handler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Handler{service: service, sessions: sessions, metrics: rec}
}

// LoginForm renders the login page (GET / and GET /login).
func (h *Handler) LoginForm(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, LoginPage(LoginData{
		RedirectTo: safeRedirect(c.QueryParam("redirectTo")),
	}))
}

// Login processes the login form submission (POST /login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	req.RedirectTo = safeRedirect(req.RedirectTo)

	if msg := validate.Email(req.Email); msg != "" {
		return h.renderLoginError(c, req, msg)
	}
	if req.Password == "" {
		return h.renderLoginError(c, req, "Password is required")
	}

	user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if apperror.Is(err, apperror.TypeInvalidCredentials) {
			return h.renderLoginError(c, req, apperror.SafeMessage(err))
		}
		return err
	}

	if err := h.startSession(c, user.ID); err != nil {
		return err
	}
	return middleware.Redirect(c, landingPath(req.RedirectTo))
}

// RegisterForm renders the registration page (GET /register).
func (h *Handler) RegisterForm(c echo.Context) error {
	return middleware.Render(c, http.StatusOK, RegisterPage(RegisterData{
		RedirectTo: safeRedirect(c.QueryParam("redirectTo")),
		Errors:     validate.Errors{},
	}))
}

// Register processes the registration form submission (POST /register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	req.RedirectTo = safeRedirect(req.RedirectTo)

	if errs := validateRegisterRequest(&req); errs.Any() {
		return h.renderRegisterErrors(c, req, errs)
	}

	user, err := h.service.Register(c.Request().Context(), RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Code == http.StatusConflict {
			return h.renderRegisterErrors(c, req, validate.Errors{"email": "A user with this email already exists"})
		}
		return err
	}

	// Sign the new user in straight away.
	if err := h.startSession(c, user.ID); err != nil {
		return err
	}
	return middleware.Redirect(c, landingPath(req.RedirectTo))
}

// Logout clears the session cookie (POST /logout). There is no server-side
// session to destroy.
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Destroy())
	h.metrics.RecordAuthEvent(metrics.EventLogout)
	return middleware.Redirect(c, apperror.LoginPath)
}

func (h *Handler) startSession(c echo.Context, userID string) error {
	cookie, err := h.sessions.Create(userID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	c.SetCookie(cookie)
	return nil
}

func (h *Handler) renderLoginError(c echo.Context, req LoginRequest, msg string) error {
	return middleware.Render(c, http.StatusUnauthorized, LoginPage(LoginData{
		Email:      req.Email,
		RedirectTo: req.RedirectTo,
		Error:      msg,
	}))
}

func (h *Handler) renderRegisterErrors(c echo.Context, req RegisterRequest, errs validate.Errors) error {
	return middleware.Render(c, http.StatusUnprocessableEntity, RegisterPage(RegisterData{
		Email:      req.Email,
		Name:       req.Name,
		RedirectTo: req.RedirectTo,
		Errors:     errs,
	}))
}

// --- Helpers ---

// safeRedirect drops redirect targets that would leave the site.
func safeRedirect(to string) string {
	if !apperror.IsLocalPath(to) {
		return ""
	}
	return to
}

func landingPath(redirectTo string) string {
	if redirectTo == "" || redirectTo == "/" || redirectTo == apperror.LoginPath {
		return defaultLandingPath
	}
	return redirectTo
}

// validateRegisterRequest applies the registration form rules.
func validateRegisterRequest(req *RegisterRequest) validate.Errors {
	errs := validate.Errors{}
	errs.Add("name", validate.Name(req.Name))
	errs.Add("email", validate.Email(req.Email))
	errs.Add("password", validate.Password(req.Password))
	if req.Confirm != req.Password {
		errs.Add("confirm", "Passwords do not match")
	}
	return errs
}
