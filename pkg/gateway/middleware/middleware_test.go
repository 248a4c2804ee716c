package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lifelink-health/portal/pkg/access"
	"github.com/lifelink-health/portal/pkg/common/models"
)

type fakeTokens struct {
	principal models.Principal
	err       error
}

func (f fakeTokens) Principal(ctx context.Context, token string) (models.Principal, string, error) {
	if f.err != nil {
		return models.Principal{}, "", f.err
	}
	return f.principal, "jti-1", nil
}

type fakeResolver struct {
	session models.Session
}

func (f fakeResolver) Resolve(ctx context.Context, principal models.Principal) models.Session {
	return f.session
}

func protectedRouter(tokens TokenValidator, resolver SessionResolver, required models.Role) *mux.Router {
	r := mux.NewRouter()
	sub := r.PathPrefix("/api/v1").Subrouter()
	sub.Use(Authenticate(tokens, resolver), Guard(required))
	sub.HandleFunc("/doctor/appointments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	sub.HandleFunc("/doctor/applications", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	sub.HandleFunc("/doctor/applications/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func doRequest(t *testing.T, router *mux.Router, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func redirectTarget(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("expected redirect payload, got %q", rec.Body.String())
	}
	return payload["redirect"]
}

func TestGuardRejectsMissingToken(t *testing.T) {
	router := protectedRouter(fakeTokens{}, fakeResolver{}, models.RoleDoctor)
	rec := doRequest(t, router, "/api/v1/doctor/appointments", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if target := redirectTarget(t, rec); target != access.LoginPath {
		t.Fatalf("expected login redirect, got %q", target)
	}
}

func TestGuardRejectsInvalidToken(t *testing.T) {
	router := protectedRouter(fakeTokens{err: errors.New("bad token")}, fakeResolver{}, models.RoleDoctor)
	rec := doRequest(t, router, "/api/v1/doctor/appointments", "bogus")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuardRedirectsWrongRoleHome(t *testing.T) {
	tokens := fakeTokens{principal: models.Principal{ID: uuid.New()}}
	resolver := fakeResolver{session: models.Session{Role: models.RoleDonor}}
	router := protectedRouter(tokens, resolver, models.RoleDoctor)

	rec := doRequest(t, router, "/api/v1/doctor/appointments", "token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if target := redirectTarget(t, rec); target != access.HomePath {
		t.Fatalf("expected home redirect, got %q", target)
	}
}

func TestGuardConfinesPendingDoctor(t *testing.T) {
	pending := models.VerificationPending
	tokens := fakeTokens{principal: models.Principal{ID: uuid.New()}}
	resolver := fakeResolver{session: models.Session{Role: models.RoleDoctor, HospitalStatus: &pending}}
	router := protectedRouter(tokens, resolver, models.RoleDoctor)

	rec := doRequest(t, router, "/api/v1/doctor/appointments", "token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if target := redirectTarget(t, rec); target != access.ApplicationsPath {
		t.Fatalf("expected application screen redirect, got %q", target)
	}

	// The application screen itself, and its sub-paths, stay reachable.
	rec = doRequest(t, router, "/api/v1/doctor/applications", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on application screen, got %d", rec.Code)
	}
	rec = doRequest(t, router, "/api/v1/doctor/applications/"+uuid.NewString(), "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on application sub-path, got %d", rec.Code)
	}
}

func TestGuardAllowsApprovedDoctor(t *testing.T) {
	approved := models.VerificationApproved
	tokens := fakeTokens{principal: models.Principal{ID: uuid.New()}}
	resolver := fakeResolver{session: models.Session{Role: models.RoleDoctor, HospitalStatus: &approved}}
	router := protectedRouter(tokens, resolver, models.RoleDoctor)

	rec := doRequest(t, router, "/api/v1/doctor/appointments", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestScreenPathNormalization(t *testing.T) {
	cases := map[string]string{
		"/api/v1/doctor/applications":     access.ApplicationsPath,
		"/api/v1/doctor/applications/123": access.ApplicationsPath,
		"/api/v1/doctor/appointments":     "/doctor/appointments",
		"/donor/records":                  "/donor/records",
	}
	for in, want := range cases {
		if got := screenPath(in); got != want {
			t.Fatalf("screenPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBodyLimitCapsReads(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected small body to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected oversized body to be rejected, got %d", rec.Code)
	}
}
