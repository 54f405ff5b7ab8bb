package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporterDisabled(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, reader)
	assert.Nil(t, mux)

	server, err := StartPrometheusServer(nil, "0")
	require.NoError(t, err)
	assert.Nil(t, server)
}

func TestPrometheusExporterServesEndpoint(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{Enabled: true, Endpoint: "/metrics", Port: "0"})
	require.NoError(t, err)
	require.NotNil(t, reader)
	t.Cleanup(func() { _ = reader.Shutdown(context.Background()) })

	for _, path := range []string{"/metrics", "/healthz"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	server, err := StartPrometheusServer(mux, "0")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.NoError(t, server.Shutdown(context.Background()))
}
