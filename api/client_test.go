package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estfeed/metering_sdk/config"
)

// feedServer fakes the token endpoint and both API endpoints.
type feedServer struct {
	*httptest.Server

	tokenCalls atomic.Int32
	dataCalls  atomic.Int32

	pointsBody string
	dataBody   string
	dataStatus int
	lastQuery  atomic.Value // url.Values of the last metering-data request
	lastAuth   atomic.Value // Authorization header of the last API request
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{
		pointsBody: `[]`,
		dataBody:   `[]`,
		dataStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		n := fs.tokenCalls.Add(1)
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":600}`, n)
	})
	mux.HandleFunc(pathMeteringPointEICs, func(w http.ResponseWriter, r *http.Request) {
		fs.lastAuth.Store(r.Header.Get("Authorization"))
		fmt.Fprint(w, fs.pointsBody)
	})
	mux.HandleFunc(pathMeteringData, func(w http.ResponseWriter, r *http.Request) {
		fs.dataCalls.Add(1)
		fs.lastAuth.Store(r.Header.Get("Authorization"))
		fs.lastQuery.Store(r.URL.Query())
		if fs.dataStatus != http.StatusOK {
			http.Error(w, "error", fs.dataStatus)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", "42")
		fmt.Fprint(w, fs.dataBody)
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func newTestClient(t *testing.T, fs *feedServer) (*Client, *fakeClock) {
	t.Helper()
	estCfg := config.NewEstfeedConfig().
		WithCredentials("test-id", "test-secret").
		WithAPIHost(fs.URL).
		WithTokenURL(fs.URL + "/token").
		WithHTTPClient(fs.Client())

	client, err := NewClient(estCfg, config.DefaultConfig())
	require.NoError(t, err)

	// Fake clock so tests never wait out the request spacing
	clock := newFakeClock()
	client.now = clock.Now
	client.limiter.now = clock.Now
	client.limiter.sleep = clock.Sleep
	client.tokens.now = clock.Now
	return client, clock
}

func TestNewClientValidation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewClient(nil, nil)
		assert.Error(t, err)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewClient(config.NewEstfeedConfig(), nil)
		assert.Error(t, err)
	})

	t.Run("valid config", func(t *testing.T) {
		client, err := NewClient(config.NewEstfeedConfig().WithCredentials("id", "secret"), nil)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClientGetMeteringData(t *testing.T) {
	fs := newFeedServer(t)
	fs.dataBody = `[
		{"timestamp":"2025-06-01T01:00:00+0000","energyIn":2.0},
		{"timestamp":"2025-06-01T00:00:00+0000","energyIn":1.5}
	]`

	client, clock := newTestClient(t, fs)
	ctx := context.Background()

	start := clock.Now().Add(-2 * time.Hour)
	got, err := client.GetMeteringData(ctx, "EIC1", start, clock.Now(), "HOUR")
	require.NoError(t, err)

	// Result is sorted ascending by timestamp
	require.Len(t, got, 2)
	assert.Equal(t, "2025-06-01T00:00:00+0000", got[0].Timestamp())
	assert.Equal(t, "2025-06-01T01:00:00+0000", got[1].Timestamp())

	// Request carried the expected parameters and a bearer token
	query := fs.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"HOUR"}, query["resolution"])
	assert.Equal(t, []string{"EIC1"}, query["meteringPointEics"])
	assert.NotEmpty(t, query["startDateTime"])
	assert.NotEmpty(t, query["endDateTime"])
	assert.Equal(t, "Bearer tok-1", fs.lastAuth.Load().(string))
}

func TestClientListMeteringPoints(t *testing.T) {
	fs := newFeedServer(t)
	fs.pointsBody = `{"meteringPoints":[
		{"eic":"EIC1","commodityType":"ELECTRICITY","validFrom":"2024-01-01","validTo":"2026-01-01"},
		{"eic":"EIC2","commodityType":"GAS"},
		{"commodityType":"GAS"}
	]}`

	client, _ := newTestClient(t, fs)

	points, err := client.ListMeteringPoints(context.Background())
	require.NoError(t, err)

	// The entry without an EIC is dropped
	require.Len(t, points, 2)
	assert.Equal(t, "EIC1", points[0].EIC)
	assert.Equal(t, "ELECTRICITY", string(points[0].CommodityType))
	assert.Equal(t, "2024-01-01", points[0].ValidFrom)
	assert.Equal(t, "EIC2", points[1].EIC)
}

func TestClientRateLimitsRequests(t *testing.T) {
	fs := newFeedServer(t)
	client, clock := newTestClient(t, fs)
	ctx := context.Background()

	_, err := client.GetMeteringData(ctx, "EIC1", clock.Now(), clock.Now(), "HOUR")
	require.NoError(t, err)

	// Immediate second request has to wait out the full interval
	_, err = client.GetMeteringData(ctx, "EIC1", clock.Now(), clock.Now(), "HOUR")
	require.NoError(t, err)

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, rateLimitInterval, clock.sleeps[0])

	info := client.RateLimitInfo()
	assert.Equal(t, int64(1), info.BlockedRequestsCount)
	require.NotNil(t, info.Remaining)
	assert.Equal(t, 42, *info.Remaining)
}

func TestClientReusesToken(t *testing.T) {
	fs := newFeedServer(t)
	client, clock := newTestClient(t, fs)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.GetMeteringData(ctx, "EIC1", clock.Now(), clock.Now(), "HOUR")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), fs.tokenCalls.Load(), "token should be fetched once and cached")
	assert.Equal(t, int32(3), fs.dataCalls.Load())
}

func TestClientInvalidatesTokenOnAuthFailure(t *testing.T) {
	fs := newFeedServer(t)
	fs.dataStatus = http.StatusUnauthorized
	client, clock := newTestClient(t, fs)
	ctx := context.Background()

	_, err := client.GetMeteringData(ctx, "EIC1", clock.Now(), clock.Now(), "HOUR")
	assert.ErrorIs(t, err, ErrAuth)

	// Next request fetches a fresh token
	fs.dataStatus = http.StatusOK
	_, err = client.GetMeteringData(ctx, "EIC1", clock.Now(), clock.Now(), "HOUR")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fs.tokenCalls.Load())
	assert.Equal(t, "Bearer tok-2", fs.lastAuth.Load().(string))
}

func TestClientProtocolError(t *testing.T) {
	fs := newFeedServer(t)
	fs.dataStatus = http.StatusBadGateway
	client, clock := newTestClient(t, fs)

	_, err := client.GetMeteringData(context.Background(), "EIC1", clock.Now(), clock.Now(), "HOUR")
	assert.ErrorIs(t, err, ErrProtocol)
	assert.ErrorIs(t, err, ErrEstfeed)
}

func TestClientMalformedJSON(t *testing.T) {
	fs := newFeedServer(t)
	fs.dataBody = `{"meteringData": not json`
	client, clock := newTestClient(t, fs)

	_, err := client.GetMeteringData(context.Background(), "EIC1", clock.Now(), clock.Now(), "HOUR")
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestClientConnectionError(t *testing.T) {
	fs := newFeedServer(t)
	client, clock := newTestClient(t, fs)
	fs.Close()

	_, err := client.GetMeteringData(context.Background(), "EIC1", clock.Now(), clock.Now(), "HOUR")
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, ErrEstfeed)
}

func TestClientGetAccessToken(t *testing.T) {
	fs := newFeedServer(t)
	client, _ := newTestClient(t, fs)

	token, err := client.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}
