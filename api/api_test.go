package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xraph/forge"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
	"github.com/xraph/accessmatrix/store/memory"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	if err := s.CreateRole(ctx, &directory.Role{ID: 1, Name: "Manager"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, &directory.User{ID: 10, Email: "alice@example.com", RoleID: 1}); err != nil {
		t.Fatal(err)
	}
	svc, err := accessmatrix.NewService(accessmatrix.WithStore(s))
	if err != nil {
		t.Fatal(err)
	}
	return New(svc, forge.NewRouter()).Handler()
}

func serve(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decode fails unless the body holds exactly one JSON document.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestListRulesWithoutQueryParams(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/v1/access-rules", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var page RuleListResponse
	decode(t, rec, &page)
	if page.Total != 0 || page.Page != 1 || page.PageSize != 20 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestGrantRuleStatusAndBody(t *testing.T) {
	h := newTestHandler(t)
	req := GrantRuleRequest{SubjectType: "role", Subject: "manager", Module: "invites", Permission: "manage"}

	rec := serve(t, h, http.MethodPost, "/v1/access-rules", req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first grant status = %d, body %s", rec.Code, rec.Body.String())
	}
	var first rule.Rule
	decode(t, rec, &first)
	if first.ID != 1 || first.SubjectDisplay != "Manager" {
		t.Fatalf("first grant body %+v", first)
	}

	rec = serve(t, h, http.MethodPost, "/v1/access-rules", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat grant status = %d, body %s", rec.Code, rec.Body.String())
	}
	var again rule.Rule
	decode(t, rec, &again)
	if again.ID != first.ID {
		t.Fatalf("repeat grant returned id %d, want %d", again.ID, first.ID)
	}

	rec = serve(t, h, http.MethodGet, "/v1/access-rules?subject_type=role&page_size=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}
	var page RuleListResponse
	decode(t, rec, &page)
	if page.Total != 1 || page.PageSize != 5 || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestGrantRuleUnknownSubject(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(t, h, http.MethodPost, "/v1/access-rules",
		GrantRuleRequest{SubjectType: "user", Subject: "nobody@example.com", Module: "invites", Permission: "view"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestRevokeRuleTwice(t *testing.T) {
	h := newTestHandler(t)
	rec := serve(t, h, http.MethodPost, "/v1/access-rules",
		GrantRuleRequest{SubjectType: "role", Subject: "manager", Module: "invites", Permission: "view"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("grant status = %d", rec.Code)
	}

	for i := 0; i < 2; i++ {
		rec = serve(t, h, http.MethodDelete, "/v1/access-rules/1", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("revoke #%d status = %d, body %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec = serve(t, h, http.MethodDelete, "/v1/access-rules/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestCheckAndResolve(t *testing.T) {
	h := newTestHandler(t)
	serve(t, h, http.MethodPost, "/v1/access-rules",
		GrantRuleRequest{SubjectType: "role", Subject: "manager", Module: "invites", Permission: "edit"})

	rec := serve(t, h, http.MethodPost, "/v1/access/check", CheckRequest{UserID: 10, Module: "invites", Permission: "edit"})
	if rec.Code != http.StatusOK {
		t.Fatalf("check status = %d, body %s", rec.Code, rec.Body.String())
	}
	var check CheckResponse
	decode(t, rec, &check)
	if !check.Allowed {
		t.Fatal("expected access through role")
	}

	rec = serve(t, h, http.MethodGet, "/v1/subjects/resolve?subject_type=user&subject=ALICE@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body %s", rec.Code, rec.Body.String())
	}
	var subj accessmatrix.Subject
	decode(t, rec, &subj)
	if subj.ID != 10 {
		t.Fatalf("resolved %+v", subj)
	}

	rec = serve(t, h, http.MethodGet, "/v1/permissions", nil)
	var perms PermissionsResponse
	decode(t, rec, &perms)
	if len(perms.Permissions) != len(rule.Permissions) {
		t.Fatalf("permissions %v", perms.Permissions)
	}
}

func TestHandlerIsReentrant(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.CreateRole(ctx, &directory.Role{ID: 1, Name: "Manager"}); err != nil {
		t.Fatal(err)
	}
	svc, err := accessmatrix.NewService(accessmatrix.WithStore(s))
	if err != nil {
		t.Fatal(err)
	}
	router := forge.NewRouter()
	a := New(svc, router)
	if err := a.RegisterRoutes(router); err != nil {
		t.Fatal(err)
	}

	first := a.Handler()
	second := a.Handler()
	for _, h := range []http.Handler{first, second} {
		rec := serve(t, h, http.MethodGet, "/v1/access-rules", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	}
}
