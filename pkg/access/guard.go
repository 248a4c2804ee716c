package access

import (
	"github.com/lifelink-health/portal/pkg/common/models"
)

const (
	LoginPath        = "/login"
	HomePath         = "/"
	ApplicationsPath = "/doctor/applications"
)

type DecisionKind string

const (
	// DecisionPending means role resolution has not finished; callers render
	// a placeholder rather than redirecting.
	DecisionPending  DecisionKind = "pending"
	DecisionAllow    DecisionKind = "allow"
	DecisionRedirect DecisionKind = "redirect"
)

type Decision struct {
	Kind   DecisionKind
	Target string
}

func allow() Decision {
	return Decision{Kind: DecisionAllow}
}

func redirect(target string) Decision {
	return Decision{Kind: DecisionRedirect, Target: target}
}

// State is everything the guard needs about the current request.
type State struct {
	Resolving      bool
	Authenticated  bool
	Role           models.Role
	HospitalStatus *models.VerificationStatus
	Path           string
}

// Evaluate gates a protected view. Rules run in order, first match wins:
//
//  1. resolution still in flight: pending, never a redirect
//  2. no principal: redirect to login
//  3. required role set and mismatched: redirect home
//  4. doctor whose hospital is still pending verification is confined to the
//     application-status screen
//  5. allow
//
// Rule 4 is a cross-entity dependency: a doctor's authority derives from the
// hospital's standing, not the personal role alone.
func Evaluate(required models.Role, state State) Decision {
	if state.Resolving {
		return Decision{Kind: DecisionPending}
	}
	if !state.Authenticated {
		return redirect(LoginPath)
	}
	if required != models.RoleNone && state.Role != required {
		return redirect(HomePath)
	}
	if state.Role == models.RoleDoctor &&
		state.HospitalStatus != nil && *state.HospitalStatus == models.VerificationPending &&
		state.Path != ApplicationsPath {
		return redirect(ApplicationsPath)
	}
	return allow()
}

// EvaluateSession is the common case: a fully resolved session gating a path.
func EvaluateSession(required models.Role, session models.Session, authenticated bool, path string) Decision {
	return Evaluate(required, State{
		Authenticated:  authenticated,
		Role:           session.Role,
		HospitalStatus: session.HospitalStatus,
		Path:           path,
	})
}
