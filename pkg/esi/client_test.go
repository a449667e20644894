package esi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/characters/95093260/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "telescope-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"name":"Rain Agnon","corporation_id":98000001,"alliance_id":99000001}`))
	})
	mux.HandleFunc("/characters/95093260/portrait/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"px64x64":"https://images.evetech.net/characters/95093260/portrait?size=64","px128x128":"https://images.evetech.net/characters/95093260/portrait?size=128"}`))
	})
	mux.HandleFunc("/characters/95093260/location/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"token is not valid for scope(s): [esi-location.read_location.v1]"}`))
			return
		}
		_, _ = w.Write([]byte(`{"solar_system_id":30000142}`))
	})
	mux.HandleFunc("/corporations/98000001/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Alfa Corporation","ticker":"ALFA"}`))
	})
	mux.HandleFunc("/alliances/99000001/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Test Alliance","ticker":"TEST"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Lookups(t *testing.T) {
	server := newTestServer(t)
	c := NewClient("telescope-test", WithBaseURL(server.URL+"/"), WithHTTPClient(server.Client()), WithRateLimit(0))
	ctx := context.Background()

	info, err := c.CharacterInfo(ctx, 95093260)
	require.NoError(t, err)
	assert.Equal(t, "Rain Agnon", info.Name)
	assert.Equal(t, int64(98000001), info.CorporationID)
	assert.Equal(t, int64(99000001), info.AllianceID)

	corp, err := c.CorporationName(ctx, 98000001)
	require.NoError(t, err)
	assert.Equal(t, "Alfa Corporation", corp)

	ally, err := c.AllianceName(ctx, 99000001)
	require.NoError(t, err)
	assert.Equal(t, "Test Alliance", ally)

	portrait, err := c.Portrait(ctx, 95093260)
	require.NoError(t, err)
	assert.Contains(t, portrait.Px128, "size=128")

	loc, err := c.Location(ctx, 95093260, "access-token")
	require.NoError(t, err)
	assert.Equal(t, int64(30000142), loc.SolarSystemID)
}

func TestClient_APIError(t *testing.T) {
	server := newTestServer(t)
	c := NewClient("telescope-test", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithRateLimit(0))

	_, err := c.Location(context.Background(), 95093260, "wrong-token")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "esi-location.read_location.v1")

	_, err = c.CorporationName(context.Background(), 1)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := newTestServer(t)
	c := NewClient("telescope-test", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithRateLimit(1))
	ctx := context.Background()

	// The burst of 2 is consumed immediately, the third call has to wait ~1s.
	_, err := c.CorporationName(ctx, 98000001)
	require.NoError(t, err)
	_, err = c.CorporationName(ctx, 98000001)
	require.NoError(t, err)

	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = c.CorporationName(shortCtx, 98000001)
	assert.Error(t, err)
}
