package restapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware_Shutdown(t *testing.T) {
	middleware := NewRateLimitMiddleware(10, time.Second)
	defer middleware.Stop()

	assert.NotNil(t, middleware)
	assert.NotNil(t, middleware.Handler())

	done := make(chan struct{})
	go func() {
		middleware.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown took too long")
	}
}

func TestRateLimitMiddleware_ShutdownIdempotent(t *testing.T) {
	middleware := NewRateLimitMiddleware(10, time.Second)

	middleware.Stop()
	middleware.Stop()
	middleware.Stop()
}

func TestRestAPI_Shutdown(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	done := make(chan struct{})
	go func() {
		api.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("API shutdown took too long")
	}
}

func TestRestAPI_ShutdownIdempotent(t *testing.T) {
	api := createTestApi(t)

	api.Shutdown()
	api.Shutdown()
	api.Shutdown()
}

func TestRestAPI_ShutdownWaitsForBackgroundWork(t *testing.T) {
	api := createTestApi(t)

	release := make(chan struct{})
	api.runInBackground(time.Minute, func(context.Context) {
		<-release
	})

	done := make(chan struct{})
	go func() {
		api.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Shutdown returned before background work finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("API shutdown took too long")
	}
}

func TestRestAPI_ShutdownCancelsBackgroundWork(t *testing.T) {
	api := createTestApi(t)

	started := make(chan struct{})
	var workErr error
	api.runInBackground(time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		workErr = ctx.Err()
	})
	<-started

	done := make(chan struct{})
	go func() {
		api.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not cancel background work")
	}
	assert.ErrorIs(t, workErr, context.Canceled)
}

func TestRecomputeTransitsAsyncAfterShutdown(t *testing.T) {
	api := createTestApi(t)
	api.Shutdown()

	body := `{"bands":[{"id":"wide","name":"Wide","lower":0,"upper":10,"enabled":true}]}`
	resp, _ := serveApiAndSendRequest(t, api, http.MethodPost, "/api/bands?key=TEST&async=true", body)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	// The recompute starts on a cancelled context and leaves the bands alone.
	api.background.Wait()
	assert.Len(t, api.Manager.Bands(), 3)
}
