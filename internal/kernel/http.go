package kernel

import (
	"time"

	"github.com/asadazo/asadazo/config"
	"github.com/asadazo/asadazo/pkg/metrics"
	"github.com/asadazo/asadazo/pkg/middleware"
	"github.com/asadazo/asadazo/pkg/reqid"
	"github.com/asadazo/asadazo/pkg/router"
)

// newRouter returns a router carrying the global middleware stack and
// /metrics. Routes are mounted by the caller.
func newRouter() *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics  outermost for accurate total latency
	//  2. Recovery            catches panics before they kill the goroutine
	//  3. Request ID          inject unique ID before anything logs
	//  4. Logger              logs request_id from context
	//  5. Session             verify the session cookie, attach claims
	//  6. CORS                headers and OPTIONS preflight
	//  7. Rate limiter        reject abusers early
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Session)

	cors := middleware.DefaultCORSOptions()
	cors.AllowedOrigins = config.CORSAllowedOrigins()
	r.Use(middleware.CORS(cors))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	// Unauthenticated.
	r.HandleFunc("/metrics", metrics.Handler())

	return r
}
