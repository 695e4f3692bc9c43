package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aretw0/transit"
	"github.com/aretw0/transit/internal/testutils"
	"github.com/aretw0/transit/pkg/adapters/file"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *file.Directory) {
	t.Helper()
	p := testutils.NewPlatform()
	testutils.SeedSite(t, p)

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng, err := transit.New(
		transit.WithServices(p.Services()),
		transit.WithDefinitions(testutils.Defs()...),
		transit.WithHooks(m.Hooks()),
	)
	require.NoError(t, err)

	journals := file.NewDirectory(t.TempDir())
	return &Server{Engine: eng, Journals: journals, Gatherer: reg, Version: "1.2.3"}, journals
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	rr := get(t, NewHandler(&Server{}), "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	s, _ := newServer(t)
	rr := get(t, NewHandler(s), "/info")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "transit-http", resp["app"])
	assert.Equal(t, "1.2.3", resp["version"])
	assert.Equal(t, APIVersion, resp["api_version"])
}

func TestTypes(t *testing.T) {
	s, _ := newServer(t)
	h := NewHandler(s)

	rr := get(t, h, "/types")
	require.Equal(t, http.StatusOK, rr.Code)
	var types []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &types))
	assert.Contains(t, types, "Page")

	rr = get(t, h, "/types/Page")
	require.Equal(t, http.StatusOK, rr.Code)
	var def domain.DependencyDef
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &def))
	assert.Equal(t, "Page", def.Type)

	rr = get(t, h, "/types/Ghost")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoots(t *testing.T) {
	s, _ := newServer(t)
	h := NewHandler(s)

	rr := get(t, h, "/types/Template/roots")
	require.Equal(t, http.StatusOK, rr.Code)
	var roots []domain.Dependency
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &roots))
	require.Len(t, roots, 1)
	assert.Equal(t, "3", roots[0].ID)

	rr = get(t, h, "/types/Template/roots?include_users=maybe")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClosure(t *testing.T) {
	s, _ := newServer(t)
	h := NewHandler(s)

	rr := get(t, h, "/closure?type=Folder&id="+url.QueryEscape("/Site"))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp ClosureResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Closure.Len())
	assert.Empty(t, resp.Errors)

	rr = get(t, h, "/closure?type=Page&id=5&format=mermaid")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph TD"))

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/closure?type=Page").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/closure?type=Page&id=404").Code)
}

func TestJournals(t *testing.T) {
	s, dir := newServer(t)
	h := NewHandler(s)

	j, err := dir.Journal("op-7")
	require.NoError(t, err)
	require.NoError(t, j.Append(context.Background(), domain.NewLogEntry(domain.Dependency{Type: "Template", ID: "3"}, domain.ActionCreated)))

	rr := get(t, h, "/journals")
	require.Equal(t, http.StatusOK, rr.Code)
	var ids []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ids))
	assert.Equal(t, []string{"op-7"}, ids)

	rr = get(t, h, "/journals/op-7")
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []domain.LogEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionCreated, entries[0].Action)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/journals/nope").Code)
}

func TestMetrics(t *testing.T) {
	s, _ := newServer(t)
	h := NewHandler(s)

	// Populate a metric family by computing a closure first.
	require.Equal(t, http.StatusOK, get(t, h, "/closure?type=Template&id=3").Code)

	rr := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "transit_dependencies_discovered_total")
}
