package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"godoe/adapters/ledger"
	"godoe/adapters/rng"
	"godoe/app"
	"godoe/domain/core"
	"godoe/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	l, err := ledger.Open(context.Background(), ledger.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	srv := httptest.NewServer(NewServer(app.NewCampaignService(l, rng.NewStreamAdapter(), nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCampaignRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	surface, err := testkit.Lookup("ridge")
	require.NoError(t, err)

	resp := do(t, http.MethodPost, srv.URL+"/api/campaigns", strings.NewReader(surface.Campaign))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var info app.CampaignInfo
	decode(t, resp, &info)
	base := srv.URL + "/api/campaigns/" + info.ID.String()

	resp = do(t, http.MethodPost, base+"/design", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload SheetPayload
	decode(t, resp, &payload)
	sheet, err := payload.Sheet()
	require.NoError(t, err)
	require.Positive(t, sheet.Rows())

	responses, err := testkit.NewSimulator(surface, testkit.DefaultSimulatorConfig()).Respond(sheet)
	require.NoError(t, err)
	body, err := json.Marshal(NewSheetPayload(responses))
	require.NoError(t, err)
	resp = do(t, http.MethodPost, base+"/responses", bytes.NewReader(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out app.IterationOutcome
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Seq)
	assert.NotNil(t, out.Best)

	resp = do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &info)
	assert.EqualValues(t, "optimization", info.Phase)
	assert.Equal(t, 1, info.Iterations)

	resp = do(t, http.MethodGet, base+"/iterations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/reevaluate", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "Campaign ridge")

	resp = do(t, http.MethodGet, base+"/report?format=markdown", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	md, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Campaign ridge"))

	resp = do(t, http.MethodGet, srv.URL+"/api/campaigns?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]interface{}
	decode(t, resp, &list)
	assert.Len(t, list, 1)
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t)
	missing := srv.URL + "/api/campaigns/" + core.NewCampaignID().String()

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		status int
		code   string
	}{
		{"bad id", http.MethodGet, srv.URL + "/api/campaigns/not-a-uuid", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown campaign", http.MethodGet, missing, "", http.StatusNotFound, "NOT_FOUND"},
		{"invalid campaign", http.MethodPost, srv.URL + "/api/campaigns", "name: x\n", http.StatusBadRequest, "CONFIG_INVALID"},
		{"bad limit", http.MethodGet, srv.URL + "/api/campaigns?limit=x", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad responses", http.MethodPost, missing + "/responses", "{", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, strings.NewReader(tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)
			var e errorResponse
			decode(t, resp, &e)
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestSubmitBeforeDesignConflicts(t *testing.T) {
	srv := newTestServer(t)
	surface, _ := testkit.Lookup("ridge")
	resp := do(t, http.MethodPost, srv.URL+"/api/campaigns", strings.NewReader(surface.Campaign))
	var info app.CampaignInfo
	decode(t, resp, &info)

	resp = do(t, http.MethodPost, srv.URL+"/api/campaigns/"+info.ID.String()+"/responses",
		strings.NewReader(`{"numeric": {"y": [1, null, 3]}}`))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSheetPayload_NullCells(t *testing.T) {
	p := SheetPayload{Numeric: map[string][]*float64{"y": {nil, ptr(2)}}}
	sheet, err := p.Sheet()
	require.NoError(t, err)
	assert.Equal(t, 2, sheet.Rows())
	y, _ := sheet.Numeric("y")
	assert.True(t, y[0] != y[0])
	assert.Equal(t, 2.0, y[1])

	back := NewSheetPayload(sheet)
	assert.Nil(t, back.Numeric["y"][0])
	assert.Equal(t, 2.0, *back.Numeric["y"][1])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotImplemented, statusFor("NOT_IMPLEMENTED"))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor("DESIGN_ERROR"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("DATABASE_ERROR"))
}

func ptr(v float64) *float64 { return &v }
