package oauth

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telescope/internal/metrics"
)

func startTestServer(t *testing.T) (*CallbackServer, *DeliverySlot) {
	t.Helper()
	slot := NewDeliverySlot()
	server := NewCallbackServer(CallbackConfig{Port: 0}, slot)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })
	return server, slot
}

func get(t *testing.T, rawURL string) (int, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestCallbackServer_ValidRedirect(t *testing.T) {
	server, _ := startTestServer(t)
	assert.Equal(t, StateListening, server.State())

	status, body := get(t, server.RedirectURL()+"?code=abc&state=xyz")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Login received")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := server.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, AuthorizationResult{Code: "abc", State: "xyz"}, result)
	assert.Equal(t, StateDelivered, server.State())

	require.NoError(t, server.Stop())
	assert.Equal(t, StateStopped, server.State())
}

func TestCallbackServer_ExactlyOnceUnderConcurrency(t *testing.T) {
	server, slot := startTestServer(t)

	const requests = 20
	var wg sync.WaitGroup
	statuses := make(chan int, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Get(fmt.Sprintf("%s?code=code-%d&state=s", server.RedirectURL(), i))
			if err != nil {
				statuses <- -1
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			statuses <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := server.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Code, "code-"))

	select {
	case extra := <-slot.C():
		t.Fatalf("second delivery: %+v", extra)
	default:
	}
}

func TestCallbackServer_RoutesOtherRequestsTo404(t *testing.T) {
	server, _ := startTestServer(t)

	resp, err := http.Post(server.RedirectURL()+"?code=a&state=b", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	base := strings.TrimSuffix(server.RedirectURL(), DefaultCallbackPath)
	status, _ := get(t, base+"/callback?code=a&state=b")
	assert.Equal(t, http.StatusNotFound, status)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = server.Wait(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCallbackServer_MissingParameterIs422(t *testing.T) {
	m := metrics.New()
	slot := NewDeliverySlot()
	server := NewCallbackServer(CallbackConfig{Metrics: m}, slot)
	require.NoError(t, server.Start())
	defer server.Stop()

	for _, query := range []string{"?code=abc", "?state=xyz", "?code=&state=xyz", ""} {
		status, body := get(t, server.RedirectURL()+query)
		assert.Equal(t, http.StatusUnprocessableEntity, status, query)
		assert.Equal(t, rejectedBody, body)
	}
	assert.Empty(t, slot.C())

	// The listener keeps waiting for a well-formed redirect.
	status, _ := get(t, server.RedirectURL()+"?code=abc&state=xyz")
	assert.Equal(t, http.StatusOK, status)

	result, err := server.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", result.Code)

	samples, err := m.Snapshot()
	require.NoError(t, err)
	for _, s := range samples {
		if s.Name == "telescope_callbacks_rejected_total" {
			assert.Equal(t, 4.0, s.Value)
		}
	}
}

func TestCallbackServer_CustomValidator(t *testing.T) {
	slot := NewDeliverySlot()
	server := NewCallbackServer(CallbackConfig{
		Path:     "/cb",
		Validate: func(q url.Values) bool { return q.Get("code") != "" },
	}, slot)
	require.NoError(t, server.Start())
	defer server.Stop()

	assert.True(t, strings.HasSuffix(server.RedirectURL(), "/cb"))
	status, _ := get(t, server.RedirectURL()+"?code=only")
	assert.Equal(t, http.StatusOK, status)
}

func TestCallbackServer_TimeoutReleasesPort(t *testing.T) {
	server, _ := startTestServer(t)
	port := server.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := server.Wait(ctx)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StateTimedOut, server.State())

	require.NoError(t, server.Stop())
	assert.Less(t, time.Since(start), 250*time.Millisecond)

	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err, "port should be free right after Stop")
	l.Close()
}

func TestCallbackServer_Cancellation(t *testing.T) {
	server, _ := startTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := server.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateListening, server.State())
}

func TestCallbackServer_Lifecycle(t *testing.T) {
	server := NewCallbackServer(CallbackConfig{}, NewDeliverySlot())
	assert.Equal(t, StateIdle, server.State())
	assert.Nil(t, server.Addr())
	assert.Empty(t, server.RedirectURL())

	_, err := server.Wait(context.Background())
	assert.ErrorIs(t, err, ErrNotListening)

	require.NoError(t, server.Start())
	assert.ErrorIs(t, server.Start(), ErrListenerReused)

	require.NoError(t, server.Stop())
	require.NoError(t, server.Stop())
	assert.ErrorIs(t, server.Start(), ErrListenerReused)

	_, err = server.Wait(context.Background())
	assert.ErrorIs(t, err, ErrNotListening)
}

func TestCallbackServer_BindError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	server := NewCallbackServer(CallbackConfig{Port: busy.Addr().(*net.TCPAddr).Port}, NewDeliverySlot())
	err = server.Start()

	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Contains(t, bindErr.Addr, "127.0.0.1:")
	assert.Equal(t, StateIdle, server.State())
}

func TestListenerState_String(t *testing.T) {
	assert.Equal(t, "timed_out", StateTimedOut.String())
	assert.Equal(t, "unknown", ListenerState(42).String())
}
