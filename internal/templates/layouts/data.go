// data.go provides typed context helpers for passing layout data from
// handlers/middleware to page templates. This avoids importing plugin
// types in the layouts package. Only simple types are stored.
//
// Data flow: Handler/Middleware → Echo Context → LayoutInjector → Go Context → template
package layouts

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyIsAuthenticated ctxKey = "layout_is_authenticated"
	keyUserID          ctxKey = "layout_user_id"
	keyUserName        ctxKey = "layout_user_name"
	keyUserEmail       ctxKey = "layout_user_email"
	keyProjectID       ctxKey = "layout_project_id"
	keyProjectName     ctxKey = "layout_project_name"
	keyIsProjectOwner  ctxKey = "layout_is_project_owner"
	keyCSRFToken       ctxKey = "layout_csrf_token"
	keyFlashSuccess    ctxKey = "layout_flash_success"
	keyFlashError      ctxKey = "layout_flash_error"
	keyActivePath      ctxKey = "layout_active_path"
)

// Layout is the snapshot of request-scoped data every page template sees
// as .Layout.
type Layout struct {
	IsAuthenticated bool
	UserID          string
	UserName        string
	UserEmail       string
	ProjectID       string
	ProjectName     string
	IsProjectOwner  bool
	CSRFToken       string
	FlashSuccess    string
	FlashError      string
	ActivePath      string
}

// FromContext collects the layout data stored in ctx.
func FromContext(ctx context.Context) Layout {
	return Layout{
		IsAuthenticated: IsAuthenticated(ctx),
		UserID:          getString(ctx, keyUserID),
		UserName:        getString(ctx, keyUserName),
		UserEmail:       getString(ctx, keyUserEmail),
		ProjectID:       getString(ctx, keyProjectID),
		ProjectName:     getString(ctx, keyProjectName),
		IsProjectOwner:  getBool(ctx, keyIsProjectOwner),
		CSRFToken:       GetCSRFToken(ctx),
		FlashSuccess:    getString(ctx, keyFlashSuccess),
		FlashError:      getString(ctx, keyFlashError),
		ActivePath:      getString(ctx, keyActivePath),
	}
}

// --- Setters (called by the layout injector in app/routes.go) ---

// SetIsAuthenticated marks whether the current request has a valid session.
func SetIsAuthenticated(ctx context.Context, authed bool) context.Context {
	return context.WithValue(ctx, keyIsAuthenticated, authed)
}

// SetUser stores the signed-in user's identity for the header.
func SetUser(ctx context.Context, id, name, email string) context.Context {
	ctx = context.WithValue(ctx, keyUserID, id)
	ctx = context.WithValue(ctx, keyUserName, name)
	return context.WithValue(ctx, keyUserEmail, email)
}

// SetProject stores the current project for breadcrumbs and owner-only controls.
func SetProject(ctx context.Context, id, name string, isOwner bool) context.Context {
	ctx = context.WithValue(ctx, keyProjectID, id)
	ctx = context.WithValue(ctx, keyProjectName, name)
	return context.WithValue(ctx, keyIsProjectOwner, isOwner)
}

// SetCSRFToken stores the CSRF token for form rendering.
func SetCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyCSRFToken, token)
}

// SetFlash stores one-shot success and error banners.
func SetFlash(ctx context.Context, success, errMsg string) context.Context {
	ctx = context.WithValue(ctx, keyFlashSuccess, success)
	return context.WithValue(ctx, keyFlashError, errMsg)
}

// SetActivePath stores the current request path for nav highlighting.
func SetActivePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyActivePath, path)
}

// --- Getters ---

// IsAuthenticated returns true if the current request has a valid session.
func IsAuthenticated(ctx context.Context) bool {
	return getBool(ctx, keyIsAuthenticated)
}

// GetCSRFToken returns the CSRF token for form rendering.
func GetCSRFToken(ctx context.Context) string {
	return getString(ctx, keyCSRFToken)
}

func getString(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

func getBool(ctx context.Context, key ctxKey) bool {
	v, _ := ctx.Value(key).(bool)
	return v
}
