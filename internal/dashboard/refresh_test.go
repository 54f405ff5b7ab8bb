package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/apiclient"
	"hrintake/internal/config"
	"hrintake/internal/types"
)

// Superseded list calls are canceled by the board and must not count as
// intake API failures.
func TestSupersededRefreshesKeepBreakerClosed(t *testing.T) {
	release := make(chan struct{})
	received := make(chan struct{}, 8)
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		if calls.Add(1) <= 2 {
			select {
			case <-r.Context().Done():
				return
			case <-release:
			}
		}
		_ = json.NewEncoder(w).Encode(types.ListResponse{TotalPages: 1})
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := apiclient.New(config.APIConfig{
		BaseURL:  srv.URL,
		ListPath: "/api/getApplications",
		Timeout:  5 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}, newTestLogger())
	require.NoError(t, err)

	b := newTestBoard(client)

	var wg sync.WaitGroup
	superseded := make([]error, 2)
	for i := range superseded {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, superseded[i] = b.Refresh(context.Background())
		}()
		<-received
	}

	_, err = b.Refresh(context.Background())
	require.NoError(t, err)
	wg.Wait()

	for _, err := range superseded {
		assert.ErrorIs(t, err, ErrSuperseded)
	}
	assert.True(t, client.Healthy())
	assert.Equal(t, "closed", client.BreakerStats()["state"])

	_, err = b.Refresh(context.Background())
	assert.NoError(t, err)
}
