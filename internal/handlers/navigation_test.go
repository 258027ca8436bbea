package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"traceper/internal/models"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["status"] != statusOK {
		t.Fatalf("unexpected body %v", m)
	}
}

func TestPage_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	tab := env.openTab(t)

	cases := []struct {
		path     string
		redirect string
		contains string
	}{
		{path: "/", contains: "Welcome to TracePer"},
		{path: "/login", contains: "Welcome Back"},
		{path: "/register", contains: "Create an Account"},
		{path: "/login/", contains: "Welcome Back"},
		{path: "/projects", redirect: "/"},
		{path: "/dashboard", redirect: "/"},
		{path: "/no-such-page", redirect: "/"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := env.do(http.MethodGet, tabURL(tab.ID, tc.path), nil)
			if tc.redirect != "" {
				expectRedirect(t, w, tabURL(tab.ID, tc.redirect))
				return
			}
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.contains) {
				t.Fatalf("body lacks %q", tc.contains)
			}
		})
	}
}

func TestPage_Authenticated(t *testing.T) {
	env := newTestEnv(t)
	env.api.Seed(models.ResourceProjects,
		models.Record{"id": float64(1), "title": "Road widening", "budget_allocated": float64(250000), "status": "ongoing",
			"barangay": map[string]any{"name": "Poblacion"}},
	)
	tab := env.openTab(t)
	env.signIn(t, tab)

	for _, p := range []string{"/", "/login", "/register", "/unknown"} {
		w := env.do(http.MethodGet, tabURL(tab.ID, p), nil)
		expectRedirect(t, w, tabURL(tab.ID, "/dashboard"))
	}

	w := env.do(http.MethodGet, tabURL(tab.ID, "/dashboard"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Welcome, "+testName) {
		t.Fatalf("shell header missing display name")
	}

	w = env.do(http.MethodGet, tabURL(tab.ID, "/projects"), nil)
	body := w.Body.String()
	for _, want := range []string{"Road widening", "Poblacion", "N/A", "250000", "ongoing"} {
		if !strings.Contains(body, want) {
			t.Fatalf("projects page lacks %q", want)
		}
	}
	if !strings.Contains(body, tabURL(tab.ID, "/records/projects/1/delete")) {
		t.Fatalf("delete action missing")
	}
}

func TestPage_FetchErrorsShowInline(t *testing.T) {
	env := newTestEnv(t)
	tab := env.openTab(t)
	env.signIn(t, tab)

	mock := &mockResources{listErr: errors.New("boom"), statsErr: errors.New("boom")}
	tab.Services.Resources = mock

	w := env.do(http.MethodGet, tabURL(tab.ID, "/barangays"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), errLoadRecords) {
		t.Fatalf("inline error missing")
	}
	if mock.lastList != models.ResourceBarangays {
		t.Fatalf("listed %q", mock.lastList)
	}

	w = env.do(http.MethodGet, tabURL(tab.ID, "/dashboard"), nil)
	if !strings.Contains(w.Body.String(), errLoadStats) {
		t.Fatalf("inline stats error missing")
	}
}

func TestPage_FallbackColumns(t *testing.T) {
	env := newTestEnv(t)
	tab := env.openTab(t)
	env.signIn(t, tab)
	tab.Services.Resources = &mockResources{recs: []models.Record{{"id": float64(7), "name": "San Isidro"}}}

	w := env.do(http.MethodGet, tabURL(tab.ID, "/barangays"), nil)
	body := w.Body.String()
	for _, want := range []string{"San Isidro", "Not Assigned", "N/A"} {
		if !strings.Contains(body, want) {
			t.Fatalf("barangays page lacks %q", want)
		}
	}
}

func TestDeleteRecord(t *testing.T) {
	env := newTestEnv(t)
	env.api.Seed(models.ResourceContractors,
		models.Record{"id": float64(1), "name": "Acme"},
		models.Record{"id": float64(2), "name": "Builders"},
	)
	tab := env.openTab(t)

	// Signed out: no delete, back to the landing page.
	w := env.do(http.MethodPost, tabURL(tab.ID, "/records/contractors/1/delete"), url.Values{})
	expectRedirect(t, w, tabURL(tab.ID, "/"))
	if n := len(env.api.Records(models.ResourceContractors)); n != 2 {
		t.Fatalf("records=%d", n)
	}

	env.signIn(t, tab)
	w = env.do(http.MethodPost, tabURL(tab.ID, "/records/contractors/1/delete"), url.Values{})
	expectRedirect(t, w, tabURL(tab.ID, "/contractors"))
	if n := len(env.api.Records(models.ResourceContractors)); n != 1 {
		t.Fatalf("records=%d", n)
	}

	w = env.do(http.MethodPost, tabURL(tab.ID, "/records/contractors/99/delete"), url.Values{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), errDelete) {
		t.Fatalf("inline delete error missing")
	}

	w = env.do(http.MethodPost, tabURL(tab.ID, "/records/widgets/1/delete"), url.Values{})
	expectRedirect(t, w, tabURL(tab.ID, "/dashboard"))
}

func TestTabStatus(t *testing.T) {
	env := newTestEnv(t)
	tab := env.openTab(t)

	var st TabStatus
	w := env.do(http.MethodGet, "/api/v1/tabs/"+tab.ID, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if st.ID != tab.ID || st.State != "unauthenticated" {
		t.Fatalf("unexpected status %+v", st)
	}

	env.signIn(t, tab)
	w = env.do(http.MethodGet, "/api/v1/tabs/"+tab.ID, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.State != "authenticated" || st.Location != "/dashboard" || st.DisplayName != testName {
		t.Fatalf("unexpected status %+v", st)
	}
}
