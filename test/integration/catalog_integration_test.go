//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-finder/internal/app"
	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/platform/config"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// remoteArchive serves a two-page catalog and counts requests.
type remoteArchive struct {
	requests   atomic.Int32
	failFirst  atomic.Int32
	down       atomic.Bool
	requestIDs chan string
}

func newRemoteArchive(t *testing.T) (*remoteArchive, *httptest.Server) {
	t.Helper()

	archive := &remoteArchive{requestIDs: make(chan string, 16)}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		archive.requests.Add(1)

		select {
		case archive.requestIDs <- r.Header.Get(middleware.HeaderRequestID):
		default:
		}

		if archive.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		if archive.failFirst.Load() > 0 {
			archive.failFirst.Add(-1)
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.RequestURI() {
		case "/v1/quotations":
			_, _ = io.WriteString(w, `{
				"data": [
					{"id": "remote-1", "author": {"firstName": "Marcus", "lastName": "Aurelius"}, "topic": "mind",
					 "quote": "The happiness of your life depends upon the quality of your thoughts."},
					{"id": "twain-truth", "quote": "A duplicate that must lose to the file copy."}
				],
				"next": "/v1/quotations?page=2"
			}`)
		case "/v1/quotations?page=2":
			_, _ = io.WriteString(w, `{
				"data": [{"author": {"lastName": "Seneca"}, "quote": "Luck is what happens when preparation meets opportunity."}]
			}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return archive, server
}

func remoteConfig(server *httptest.Server, optional bool) config.RemoteSourceConfig {
	return config.RemoteSourceConfig{
		Name:     "archive",
		BaseURL:  server.URL,
		Path:     "/v1/quotations",
		Optional: optional,
	}
}

func postSearch(t *testing.T, s *stack, body string) dto.SearchResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func ids(resp dto.SearchResponse) []string {
	out := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, item.ID)
	}

	return out
}

func readiness(t *testing.T, s *stack) (int, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return w.Code, body
}

func TestCatalog_FileAndRemoteMerge(t *testing.T) {
	archive, server := newRemoteArchive(t)

	s := mustStack(t, config.CatalogConfig{
		Files:   []string{sampleCatalog},
		Remotes: []config.RemoteSourceConfig{remoteConfig(server, false)},
	})

	catalog, _ := s.store.Snapshot(context.Background())
	last := catalog[len(catalog)-1]

	assert.Equal(t, "Seneca", last.DisplayName())
	assert.Equal(t, domain.StableID("", "Seneca", last.Text), last.ID)

	q, err := s.store.Get(context.Background(), "twain-truth")
	require.NoError(t, err)
	assert.Equal(t, "Mark Twain", q.DisplayName(), "the file copy of a duplicate ID wins")

	resp := postSearch(t, s, `{"keyword": "life"}`)
	assert.Equal(t, []string{"kierkegaard-life", "descartes-doubt", "remote-1"}, ids(resp))

	resp = postSearch(t, s, `{"author": "aurelius"}`)
	assert.Equal(t, []string{"remote-1"}, ids(resp))

	assert.GreaterOrEqual(t, archive.requests.Load(), int32(2))
}

func TestCatalog_RemoteRetriesTransientFailures(t *testing.T) {
	archive, server := newRemoteArchive(t)
	archive.failFirst.Store(1)

	s := mustStack(t, config.CatalogConfig{
		Remotes: []config.RemoteSourceConfig{remoteConfig(server, false)},
	})

	assert.Equal(t, 3, s.store.Len(), "both pages load after the retry")
	assert.Equal(t, int32(3), archive.requests.Load(), "one retry plus two pages")
}

func TestCatalog_RequiredRemoteDownFailsLoad(t *testing.T) {
	archive, server := newRemoteArchive(t)
	archive.down.Store(true)

	s, err := newStack(config.CatalogConfig{
		Files:   []string{sampleCatalog},
		Remotes: []config.RemoteSourceConfig{remoteConfig(server, false)},
	}, config.AuthConfig{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "remote:archive")
	assert.Zero(t, s.store.Len())

	status, body := readiness(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])

	assert.Empty(t, postSearch(t, s, `{"keyword": "truth"}`).Items, "nothing to search until a load succeeds")
}

func TestCatalog_OptionalRemoteDownIsSkipped(t *testing.T) {
	archive, server := newRemoteArchive(t)
	archive.down.Store(true)

	s, err := newStack(config.CatalogConfig{
		Files:   []string{sampleCatalog},
		Remotes: []config.RemoteSourceConfig{remoteConfig(server, true)},
	}, config.AuthConfig{})
	require.NoError(t, err)

	report, err := s.catalog.Reload(context.Background(), app.TriggerAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"remote:archive"}, report.Skipped)
	assert.Equal(t, uint64(2), report.Generation)

	status, body := readiness(t, s)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "degraded", body["status"])

	archive.down.Store(false)

	report, err = s.catalog.Reload(context.Background(), app.TriggerAdmin)
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, 1, report.Duplicates)
}

func TestCatalog_AdminReloadPicksUpFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotations.yaml")

	write := func(text string) {
		t.Helper()

		doc := "quotations:\n  - id: only\n    last_name: Heraclitus\n    text: " + text + "\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	}

	write("No man ever steps in the same river twice.")

	s := mustStack(t, config.CatalogConfig{Files: []string{path}})
	server := s.serve(t)

	assert.Equal(t, []string{"only"}, ids(postSearch(t, s, `{"keyword": "river"}`)))

	write("The only constant in life is change.")

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL+"/api/v1/admin/reload", http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report app.ReloadReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, app.TriggerAdmin, report.Trigger)
	assert.Equal(t, uint64(2), report.Generation)

	assert.Empty(t, ids(postSearch(t, s, `{"keyword": "river"}`)), "cached result must not survive a reload")
	assert.Equal(t, []string{"only"}, ids(postSearch(t, s, `{"keyword": "change"}`)))
}

func TestCatalog_AdminReloadRequiresRole(t *testing.T) {
	s, err := newStack(config.CatalogConfig{Files: []string{sampleCatalog}}, config.AuthConfig{
		Enabled:       true,
		RolesHeader:   "X-User-Roles",
		SubjectHeader: "X-User-ID",
		AdminRole:     "admin",
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"reader", map[string]string{"X-User-ID": "u1", "X-User-Roles": "reader"}, http.StatusForbidden},
		{"admin", map[string]string{"X-User-ID": "u1", "X-User-Roles": "reader,admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", http.NoBody)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestCatalog_ReloadPropagatesRequestID(t *testing.T) {
	archive, server := newRemoteArchive(t)

	s := mustStack(t, config.CatalogConfig{
		Remotes: []config.RemoteSourceConfig{remoteConfig(server, false)},
	})

	for len(archive.requestIDs) > 0 {
		<-archive.requestIDs
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "reload-42")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "reload-42", <-archive.requestIDs)
}

func TestCatalog_SearchServiceCapsAcrossShards(t *testing.T) {
	s := mustStack(t, config.CatalogConfig{Files: []string{sampleCatalog}})

	all, err := s.search.Search(context.Background(), search.Request{Keyword: "e"})
	require.NoError(t, err)
	require.Greater(t, all.Len(), 3)

	capped, err := s.search.Search(context.Background(), search.Request{Keyword: "e", LimitEnabled: true, LimitValue: "3"})
	require.NoError(t, err)
	assert.True(t, capped.Capped)
	assert.Equal(t, all.Records[:3], capped.Records, "sharded scans keep catalog order")
}
