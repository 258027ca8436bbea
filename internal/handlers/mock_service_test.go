package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"traceper/internal/apiclient/apitest"
	"traceper/internal/guard"
	"traceper/internal/models"
	"traceper/internal/repository"
	"traceper/internal/storage"
	"traceper/internal/tabs"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockResources struct {
	recs      []models.Record
	stats     models.Stats
	listErr   error
	statsErr  error
	deleteErr error

	lastList   string
	lastDelete [2]string
}

func (m *mockResources) List(ctx context.Context, resource string) ([]models.Record, error) {
	m.lastList = resource
	return m.recs, m.listErr
}
func (m *mockResources) Stats(ctx context.Context) (models.Stats, error) {
	return m.stats, m.statsErr
}
func (m *mockResources) Delete(ctx context.Context, resource, id string) error {
	m.lastDelete = [2]string{resource, id}
	return m.deleteErr
}

// ---- Shared Test Helpers ----

const (
	testName     = "Alice"
	testEmail    = "alice@example.com"
	testPassword = "s3cr3t"
)

type testEnv struct {
	api    *apitest.Server
	tabs   *tabs.Registry
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := apitest.NewServer()
	t.Cleanup(api.Close)
	api.AddUser(testName, testEmail, testPassword)

	origin := storage.NewOrigin("http://localhost:8080", repository.NewMemory(), nil)
	reg, err := tabs.NewRegistry(origin, tabs.Config{Routes: guard.DefaultRoutes(), APIBaseURL: api.URL}, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	t.Cleanup(reg.CloseAll)

	gin.SetMode(gin.TestMode)
	return &testEnv{api: api, tabs: reg, router: NewHandler(reg, nil).InitRoutes()}
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// openTab opens a tab through the router and returns it.
func (e *testEnv) openTab(t *testing.T) *tabs.Tab {
	t.Helper()
	w := e.do(http.MethodGet, "/", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("open tab status=%d", w.Code)
	}
	loc := w.Header().Get("Location")
	id := strings.TrimSuffix(strings.TrimPrefix(loc, "/t/"), "/")
	tab, ok := e.tabs.Get(id)
	if !ok {
		t.Fatalf("tab %q from %q not registered", id, loc)
	}
	return tab
}

func (e *testEnv) signIn(t *testing.T, tab *tabs.Tab) {
	t.Helper()
	w := e.do(http.MethodPost, tabURL(tab.ID, "/actions/login"), url.Values{
		"email":    {testEmail},
		"password": {testPassword},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d, body=%s", w.Code, w.Body.String())
	}
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if w.Code != http.StatusFound && w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect to %s, got %d, body=%s", want, w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != want {
		t.Fatalf("Location=%q, want %q", got, want)
	}
}
