package projects

import (
	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
)

// Decision is the Access Gate's verdict for one principal and project.
type Decision int

const (
	// DecisionUnauthenticated means there is no principal. It is never
	// reported as Denied so callers can send the visitor to sign in.
	DecisionUnauthenticated Decision = iota

	// DecisionDenied means a signed-in user who is neither owner nor member.
	DecisionDenied

	// DecisionMember means the user has a membership row but does not own
	// the project.
	DecisionMember

	// DecisionOwner means the user owns the project, with or without a
	// membership row.
	DecisionOwner
)

// String returns the metrics label for the decision.
func (d Decision) String() string {
	switch d {
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionDenied:
		return "denied"
	case DecisionMember:
		return "member"
	case DecisionOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// Authorized reports whether the decision grants access.
func (d Decision) Authorized() bool {
	return d == DecisionMember || d == DecisionOwner
}

// IsOwner reports whether the decision came from ownership.
func (d Decision) IsOwner() bool {
	return d == DecisionOwner
}

// Err converts the decision into the error a handler should return.
// returnTo is the path an unauthenticated visitor comes back to after
// signing in. Authorized decisions return nil.
func (d Decision) Err(returnTo string) error {
	switch d {
	case DecisionMember, DecisionOwner:
		return nil
	case DecisionUnauthenticated:
		return apperror.NewUnauthenticated(returnTo)
	default:
		return apperror.NewForbidden("You do not have access to this project.")
	}
}

// Check decides whether principal may read project. The owner is
// authorized even when no membership row exists for them. A nil project
// denies everyone who is signed in.
func Check(principal *auth.Principal, project *Project) Decision {
	if principal == nil {
		return DecisionUnauthenticated
	}
	if project == nil {
		return DecisionDenied
	}
	if principal.ID == project.OwnerID {
		return DecisionOwner
	}
	if project.HasMember(principal.ID) {
		return DecisionMember
	}
	return DecisionDenied
}

// CheckOwner is the narrower check for owner-only mutations: members are
// denied just like strangers.
func CheckOwner(principal *auth.Principal, project *Project) Decision {
	d := Check(principal, project)
	if d == DecisionMember {
		return DecisionDenied
	}
	return d
}
