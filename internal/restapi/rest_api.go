package restapi

import (
	"context"
	"sync"
	"time"

	"starnav.teamgannon.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware

	// background tracks transit recomputations started by the API. Shutdown
	// cancels backgroundCtx before waiting on them.
	background       sync.WaitGroup
	backgroundCtx    context.Context
	cancelBackground context.CancelFunc
	shutdownOnce     sync.Once
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	ctx, cancel := context.WithCancel(context.Background())
	return &RestAPI{
		Application:      app,
		rateLimiter:      NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
		backgroundCtx:    ctx,
		cancelBackground: cancel,
	}
}

// runInBackground runs fn on its own goroutine with a context that is
// cancelled by Shutdown or after timeout.
func (api *RestAPI) runInBackground(timeout time.Duration, fn func(ctx context.Context)) {
	api.background.Add(1)
	go func() {
		defer api.background.Done()
		ctx, cancel := context.WithTimeout(api.backgroundCtx, timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Shutdown cancels background work, waits for it to return and stops the
// rate limiter. It is safe to call more than once.
func (api *RestAPI) Shutdown() {
	api.shutdownOnce.Do(func() {
		api.cancelBackground()
		api.background.Wait()
		if api.rateLimiter != nil {
			api.rateLimiter.Stop()
		}
	})
}
