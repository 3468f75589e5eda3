package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xraph/forge"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/store/memory"
)

func TestParseUserID(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"", 0, false},
		{"anonymous", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseUserID(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseUserID(%q) = %d, %v; want %d, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func newGuardedRouter(t *testing.T, guard func(*accessmatrix.Service) forge.Middleware) forge.Router {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	if err := s.CreateRole(ctx, &directory.Role{ID: 1, Name: "Manager"}); err != nil {
		t.Fatal(err)
	}
	for _, u := range []*directory.User{
		{ID: 10, Email: "alice@example.com", RoleID: 1},
		{ID: 11, Email: "bob@example.com"},
	} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	svc, err := accessmatrix.NewService(accessmatrix.WithStore(s))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Grant(ctx, accessmatrix.GrantRequest{SubjectType: "role", Subject: "manager", Module: "invites", Permission: "edit"}); err != nil {
		t.Fatal(err)
	}

	router := forge.NewRouter()
	if err := router.GET("/invites", func(ctx forge.Context) error {
		return ctx.String(http.StatusOK, "ok")
	}, forge.WithMiddleware(guard(svc))); err != nil {
		t.Fatal(err)
	}
	return router
}

func getAs(router forge.Router, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/invites", nil)
	if userID != "" {
		req = req.WithContext(forge.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func requireEdit(svc *accessmatrix.Service) forge.Middleware {
	return Require(svc, "invites", "edit")
}

func TestRequireAllowsRoleMember(t *testing.T) {
	router := newGuardedRouter(t, requireEdit)

	rec := getAs(router, "10")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestRequireDenies(t *testing.T) {
	router := newGuardedRouter(t, requireEdit)

	for _, userID := range []string{"", "11", "99", "anonymous"} {
		rec := getAs(router, userID)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("user %q: status = %d, want 403", userID, rec.Code)
		}
	}
}

func TestRequireAnyMatchesOnePermission(t *testing.T) {
	router := newGuardedRouter(t, func(svc *accessmatrix.Service) forge.Middleware {
		return RequireAny(svc, "invites", "delete", "edit")
	})
	if rec := getAs(router, "10"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	router = newGuardedRouter(t, func(svc *accessmatrix.Service) forge.Middleware {
		return RequireAny(svc, "invites", "delete", "manage")
	})
	if rec := getAs(router, "10"); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
