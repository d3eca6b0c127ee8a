// ABOUTME: Tests for the web server
// ABOUTME: Exercises pages, form actions and the JSON API through httptest
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/closex/logging"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/scraper"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelinePage = `<table>
  <thead><tr><th>Opportunity</th><th>Value</th><th>Status</th><th>Close Date</th></tr></thead>
  <tbody>
    <tr class="DataTable_row_a"><td>Acme</td><td>$1,200.50</td><td>Won</td><td>2026-10-12</td></tr>
    <tr class="DataTable_row_a"><td>Globex</td><td>$800</td><td>Qualified</td><td>2026-11-02</td></tr>
  </tbody>
</table>`

const leadsPage = `<table>
  <thead><tr><th>Name</th><th>Status</th><th>Owner</th><th>Contacts</th></tr></thead>
  <tbody>
    <tr class="DataTable_row_a"><td>Acme</td><td>Potential</td><td>Me</td><td>Ann <a href="mailto:ann@acme.com">mail</a></td></tr>
  </tbody>
</table>`

func newTestServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()
	logger := logging.Discard()
	svc := service.New(store.NewGateway(store.NewMemoryBackend(), "", logger), logger)
	t.Cleanup(func() { _ = svc.Close() })

	srv, err := NewServer(svc, nil, logger)
	require.NoError(t, err)
	return srv, svc
}

func seed(t *testing.T, svc *service.Service, pageURL, html string) {
	t.Helper()
	resp, _ := svc.Extract(context.Background(), models.ExtractRequest{
		Type:   models.ExtractMessageType,
		Source: scraper.ReaderSource{Reader: strings.NewReader(html), URL: pageURL},
	})
	require.True(t, resp.Success, resp.Message)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDashboardRendersMetrics(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/opportunities/", pipelinePage)

	rec := get(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "$2,001")
	assert.Contains(t, body, "Leads by stage")
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv.Handler(), "/companies/42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPipelineSearch(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/opportunities/", pipelinePage)

	rec := get(t, srv.Handler(), "/pipeline?q=glob")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Globex")
	assert.NotContains(t, rec.Body.String(), "Acme")
}

func TestContactsAndTasksPages(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/leads/", leadsPage)

	rec := get(t, srv.Handler(), "/contacts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ann@acme.com")

	rec = get(t, srv.Handler(), "/tasks")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No tasks found.")
}

func TestDeleteFormRedirectsWithStatus(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/leads/", leadsPage)

	rec := postForm(t, srv.Handler(), "/delete", url.Values{"kind": {"contacts"}, "id": {"ann@acme.com"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/contacts?status=")
	assert.Empty(t, svc.Refresh(context.Background()).Snapshot.Contacts)

	rec = postForm(t, srv.Handler(), "/delete", url.Values{"kind": {"companies"}, "id": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, srv.Handler(), "/delete")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestClearRequiresConfirm(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/leads/", leadsPage)

	rec := postForm(t, srv.Handler(), "/clear", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, svc.Refresh(context.Background()).Snapshot.Contacts, 1)

	rec = postForm(t, srv.Handler(), "/clear", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape(models.StatusWiped))
	assert.Zero(t, svc.Refresh(context.Background()).Snapshot.LastSync)
}

func TestExtractFormWithPastedHTML(t *testing.T) {
	srv, svc := newTestServer(t)

	rec := postForm(t, srv.Handler(), "/extract", url.Values{
		"url":  {"https://app.close.com/leads/"},
		"html": {leadsPage},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, svc.Refresh(context.Background()).Snapshot.Contacts, 1)

	rec = postForm(t, srv.Handler(), "/extract", url.Values{"url": {"https://app.close.com/leads/"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "live extraction is unavailable without a source factory")
}

func TestAPIExtract(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"type": models.ExtractMessageType,
		"url":  "https://app.close.com/leads/",
		"html": leadsPage,
	})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/extract", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Extracted 1 contacts.", resp.Message)
}

func TestAPIExtractRejectsWrongType(t *testing.T) {
	srv, svc := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"type": "PING", "html": leadsPage})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/extract", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.Refresh(context.Background()).Snapshot.Contacts)
}

func TestAPISnapshotAndMetrics(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/opportunities/", pipelinePage)

	rec := get(t, srv.Handler(), "/api/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Opportunities, 2)
	assert.NotZero(t, snap.LastSync)

	rec = get(t, srv.Handler(), "/api/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.InDelta(t, 2000.50, metrics["pipelineValue"], 0.001)
	assert.Len(t, metrics["revenueTrend"], 5)
}

func TestGraphPartial(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/opportunities/", pipelinePage)

	rec := get(t, srv.Handler(), "/partials/graph?type=all")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph")

	rec = get(t, srv.Handler(), "/partials/graph?type=company")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrossOriginPostsRefused(t *testing.T) {
	srv, svc := newTestServer(t)
	seed(t, svc, "https://app.close.com/leads/", leadsPage)
	h := srv.Handler()

	post := func(target string, form url.Values, headers map[string]string) int {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	confirm := url.Values{"confirm": {"yes"}}
	assert.Equal(t, http.StatusForbidden, post("/clear", confirm, map[string]string{"Origin": "https://evil.example"}))
	assert.Equal(t, http.StatusForbidden, post("/clear", confirm, map[string]string{"Sec-Fetch-Site": "cross-site"}))
	assert.Equal(t, http.StatusForbidden, post("/extract", url.Values{"url": {"https://evil.example/"}}, map[string]string{"Origin": "null"}))
	assert.Len(t, svc.Refresh(context.Background()).Snapshot.Contacts, 1)

	apiReq := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"type":"EXTRACT_DATA","url":"https://evil.example/"}`))
	apiReq.Header.Set("Sec-Fetch-Site", "same-site")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, apiReq)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Reads stay open to any origin
	getReq := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	getReq.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, getReq)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The dashboard's own forms carry its origin
	same := map[string]string{"Origin": "http://example.com", "Sec-Fetch-Site": "same-origin"}
	assert.Equal(t, http.StatusSeeOther, post("/clear", confirm, same))
	assert.Empty(t, svc.Refresh(context.Background()).Snapshot.Contacts)
}

func TestListenAddrDefaultsToLoopback(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", ListenAddr("", 8080))
	assert.Equal(t, "127.0.0.1:9000", ListenAddr("127.0.0.1", 9000))
	assert.Equal(t, "0.0.0.0:8080", ListenAddr("0.0.0.0", 8080))
	assert.Equal(t, "[::1]:8080", ListenAddr("::1", 8080))
}

func TestStartReturnsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx, "127.0.0.1", 0) }()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
