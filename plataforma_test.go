package plataforma

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjecz/plataforma-web/api/webapi"
	"github.com/pjecz/plataforma-web/internal/blob"
	"github.com/pjecz/plataforma-web/internal/hashid"
	"github.com/pjecz/plataforma-web/internal/metrics"
	"github.com/pjecz/plataforma-web/internal/testutil"
	"github.com/pjecz/plataforma-web/internal/version"
	"github.com/pjecz/plataforma-web/internal/workflow"
)

func newTestServer(t *testing.T, gatherer prometheus.Gatherer, m *metrics.Metrics) *Plataforma {
	t.Helper()
	s := testutil.NewStorage(t)
	blobs, err := blob.NewBadger(m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })
	h, err := hashid.New("server test", 8)
	require.NoError(t, err)
	backs := s.Backends()
	p, err := NewPlataforma(
		ServerConf{
			Port:        8765,
			ExternalURL: "https://plataforma.example.org/",
		}, webapi.Deps{
			Backends:   backs,
			Submission: workflow.NewSubmission(backs, blobs, h, m, workflow.NewClock(time.UTC)),
			Blobs:      blobs,
		}, Options{Gatherer: gatherer},
	)
	require.NoError(t, err)
	return p
}

func TestVersionEndpoint(t *testing.T) {
	p := newTestServer(t, nil, nil)
	resp, err := p.App().Test(httptest.NewRequest("GET", "/api/v1/version", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var body version.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, version.Current(), body)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := newTestServer(t, reg, m)

	resp, err := p.App().Test(httptest.NewRequest("GET", "/api/v1/distritos", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	m.BulkRow("feed", "nueva")
	resp, err = p.App().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plataforma_bulk_rows_total")
}

func TestMetricsDisabled(t *testing.T) {
	p := newTestServer(t, nil, nil)
	resp, err := p.App().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestOpenAPIServerURL(t *testing.T) {
	p := newTestServer(t, nil, nil)
	resp, err := p.App().Test(httptest.NewRequest("GET", "/api/v1/openapi.yaml", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://plataforma.example.org/api/v1")
}
