package access

import (
	"testing"

	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/stretchr/testify/assert"
)

func statusPtr(s models.VerificationStatus) *models.VerificationStatus {
	return &s
}

func TestEvaluateRules(t *testing.T) {
	cases := []struct {
		name     string
		required models.Role
		state    State
		kind     DecisionKind
		target   string
	}{
		{
			name:     "resolving yields pending not a redirect",
			required: models.RoleDonor,
			state:    State{Resolving: true},
			kind:     DecisionPending,
		},
		{
			name:     "unauthenticated redirects to login",
			required: models.RoleDonor,
			state:    State{Authenticated: false},
			kind:     DecisionRedirect,
			target:   LoginPath,
		},
		{
			name:     "role mismatch redirects home",
			required: models.RoleAdmin,
			state:    State{Authenticated: true, Role: models.RoleDonor, Path: "/admin/reports"},
			kind:     DecisionRedirect,
			target:   HomePath,
		},
		{
			name:     "matching role allowed",
			required: models.RoleDonor,
			state:    State{Authenticated: true, Role: models.RoleDonor, Path: "/donor/records"},
			kind:     DecisionAllow,
		},
		{
			name:     "no required role admits any authenticated principal",
			required: models.RoleNone,
			state:    State{Authenticated: true, Role: models.RoleDonor, Path: "/auth/me"},
			kind:     DecisionAllow,
		},
		{
			name:     "pending-hospital doctor confined to application screen",
			required: models.RoleDoctor,
			state: State{
				Authenticated:  true,
				Role:           models.RoleDoctor,
				HospitalStatus: statusPtr(models.VerificationPending),
				Path:           "/doctor/appointments",
			},
			kind:   DecisionRedirect,
			target: ApplicationsPath,
		},
		{
			name:     "pending-hospital doctor may view application screen",
			required: models.RoleDoctor,
			state: State{
				Authenticated:  true,
				Role:           models.RoleDoctor,
				HospitalStatus: statusPtr(models.VerificationPending),
				Path:           ApplicationsPath,
			},
			kind: DecisionAllow,
		},
		{
			name:     "approved-hospital doctor unconfined",
			required: models.RoleDoctor,
			state: State{
				Authenticated:  true,
				Role:           models.RoleDoctor,
				HospitalStatus: statusPtr(models.VerificationApproved),
				Path:           "/doctor/appointments",
			},
			kind: DecisionAllow,
		},
		{
			name:     "rejected-hospital doctor unconfined by rule four",
			required: models.RoleDoctor,
			state: State{
				Authenticated:  true,
				Role:           models.RoleDoctor,
				HospitalStatus: statusPtr(models.VerificationRejected),
				Path:           "/doctor/appointments",
			},
			kind: DecisionAllow,
		},
		{
			name:     "doctor without application unconfined",
			required: models.RoleDoctor,
			state: State{
				Authenticated: true,
				Role:          models.RoleDoctor,
				Path:          "/doctor/appointments",
			},
			kind: DecisionAllow,
		},
		{
			name:     "role mismatch wins over confinement",
			required: models.RoleAdmin,
			state: State{
				Authenticated:  true,
				Role:           models.RoleDoctor,
				HospitalStatus: statusPtr(models.VerificationPending),
				Path:           "/admin/reports",
			},
			kind:   DecisionRedirect,
			target: HomePath,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Evaluate(tc.required, tc.state)
			assert.Equal(t, tc.kind, decision.Kind)
			assert.Equal(t, tc.target, decision.Target)
		})
	}
}

func TestEvaluateSession(t *testing.T) {
	session := models.Session{Role: models.RoleDonor}
	decision := EvaluateSession(models.RoleDonor, session, true, "/donor/records")
	assert.Equal(t, DecisionAllow, decision.Kind)

	decision = EvaluateSession(models.RoleDonor, models.Session{}, false, "/donor/records")
	assert.Equal(t, DecisionRedirect, decision.Kind)
	assert.Equal(t, LoginPath, decision.Target)
}
