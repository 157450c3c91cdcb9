package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/core"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "test-key", 2*time.Second, zap.NewNop())
	return server, client
}

func TestClientCheckMatch(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/check", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req checkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phone", req.Type)
		assert.Equal(t, "+250788123456", req.Identifier)

		json.NewEncoder(w).Encode(checkResponse{
			Success:   true,
			IsScammer: true,
			Data: &core.ScammerRecord{
				ID:         "rec-1",
				Type:       "phone",
				Identifier: "+250788123456",
				Status:     "confirmed",
			},
			Message: "identifier found",
		})
	})

	result, err := client.Check(context.Background(), "+250788123456")
	require.NoError(t, err)
	assert.True(t, result.IsMatch)
	require.NotNil(t, result.Match)
	assert.Equal(t, "rec-1", result.Match.ID)
	assert.WithinDuration(t, time.Now(), result.ResolvedAt, time.Minute)
}

func TestClientCheckMiss(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(checkResponse{Success: true, IsScammer: false, Message: "not found"})
	})

	result, err := client.Check(context.Background(), "+250788123456")
	require.NoError(t, err)
	assert.False(t, result.IsMatch)
	assert.Nil(t, result.Match)
}

func TestClientCheckNon2xx(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over quota", http.StatusTooManyRequests)
	})

	_, err := client.Check(context.Background(), "+250788123456")
	require.Error(t, err)
	var lookupErr *core.LookupError
	assert.ErrorAs(t, err, &lookupErr)
}

func TestClientCheckTimeout(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(checkResponse{Success: true})
	})
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.Check(context.Background(), "+250788123456")
	require.Error(t, err)
	var lookupErr *core.LookupError
	assert.ErrorAs(t, err, &lookupErr)
}

func TestClientCheckMatchWithoutDetailRejected(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(checkResponse{Success: true, IsScammer: true})
	})

	_, err := client.Check(context.Background(), "+250788123456")
	require.Error(t, err, "a match without its record must not be served")
}

func TestClientReport(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report", r.URL.Path)

		var req core.ReportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phone", req.Type)

		json.NewEncoder(w).Encode(reportResponse{
			Success: true,
			Data:    &core.ScammerRecord{ID: "rec-9", Identifier: req.Identifier},
			Message: "report received",
		})
	})

	record, err := client.Report(context.Background(), core.ReportRequest{
		Identifier:  "+250788123456",
		Description: "asked for my banking PIN",
		Source:      "mobile_app",
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-9", record.ID)
}

func TestClientReportShortDescriptionRejectedLocally(t *testing.T) {
	called := false
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Report(context.Background(), core.ReportRequest{
		Identifier:  "+250788123456",
		Description: "scam",
	})
	require.Error(t, err)
	assert.False(t, called, "short descriptions never reach the service")
}

func TestClientRemoteStats(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/stats", r.URL.Path)
		json.NewEncoder(w).Encode(statsResponse{
			Success: true,
			Data:    core.RemoteStats{TotalReports: 42, ConfirmedScammers: 7},
		})
	})

	stats, err := client.RemoteStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalReports)
	assert.Equal(t, int64(7), stats.ConfirmedScammers)
}
