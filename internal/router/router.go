package router

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/clubhub-dev/clubhub/internal/middleware"
	"github.com/clubhub-dev/clubhub/internal/middleware/metrics"
	rl "github.com/clubhub-dev/clubhub/internal/middleware/ratelimiter"
	"github.com/clubhub-dev/clubhub/internal/setup"
)

// New creates and configures the mux router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints combined in that subrouter
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()
	cfg := deps.Config

	// Enable gzip compression for all responses
	r.Use(handlers.CompressHandler)

	r.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.Public.CORSOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	))

	// JSON API only, no scripts/styles needed
	apiCSP := "default-src 'none'; frame-ancestors 'none'"
	r.Use(mw.SecurityHeadersWithCSP(cfg.Public.SecureCookies, apiCSP))
	r.Use(metrics.Middleware)

	// wildcard OPTIONS handler to avoid 404s for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := deps.Handler
	jwt := deps.Jwt

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/healthz", h.Health).Methods("GET")

	// Forum management
	v1.HandleFunc("/forums", mw.NeedAuth(jwt)(h.CreateForum)).Methods("POST")
	v1.HandleFunc("/forums", mw.NeedAuth(jwt)(h.ListForums)).Methods("GET")
	v1.HandleFunc("/forums/{forum}", mw.NeedAuth(jwt)(h.GetForum)).Methods("GET")
	// moderator checks live in the service layer, the route only needs auth
	v1.HandleFunc("/forums/{forum}", mw.NeedAuth(jwt)(h.DeleteForum)).Methods("DELETE")
	v1.HandleFunc("/forums/{forum}/members", mw.NeedAuth(jwt)(h.JoinForum)).Methods("POST")
	v1.HandleFunc("/forums/{forum}/members", mw.NeedAuth(jwt)(h.LeaveForum)).Methods("DELETE")

	// Messages: creation is rate limited per user, listing per user at a
	// higher budget. Limiters sit inside auth so the user id is available.
	createLimiter := mw.RateLimit(rl.New(1, 3, 1*time.Hour), mw.GetUserIdFromContext)
	readLimiter := mw.RateLimit(rl.Rps10(), mw.GetUserIdFromContext)
	voteLimiter := mw.RateLimit(rl.New(2, 5, 1*time.Hour), mw.GetUserIdFromContext)

	v1.HandleFunc("/forums/{forum}/messages",
		mw.NeedAuth(jwt)(createLimiter(http.HandlerFunc(h.CreateMessage)).ServeHTTP)).Methods("POST")
	v1.HandleFunc("/forums/{forum}/messages",
		mw.NeedAuth(jwt)(readLimiter(http.HandlerFunc(h.ListMessages)).ServeHTTP)).Methods("GET")
	v1.HandleFunc("/messages/{message}", mw.NeedAuth(jwt)(h.DeleteMessage)).Methods("DELETE")
	v1.HandleFunc("/messages/{message}/votes",
		mw.NeedAuth(jwt)(voteLimiter(http.HandlerFunc(h.CastVote)).ServeHTTP)).Methods("POST")

	// Attachment blobs: downloads share one instance-wide cap, purging
	// orphaned blobs is an admin maintenance operation.
	downloadLimiter := mw.GlobalRateLimit(rl.Rps100())
	v1.HandleFunc("/attachments/{filename}",
		mw.NeedAuth(jwt)(downloadLimiter(http.HandlerFunc(h.GetAttachment)).ServeHTTP)).Methods("GET")
	v1.HandleFunc("/attachments/{filename}", mw.AdminOnly(jwt)(h.PurgeAttachment)).Methods("DELETE")

	// Realtime room subscription
	v1.HandleFunc("/forums/{forum}/live", mw.NeedAuth(jwt)(h.Live)).Methods("GET")

	return r
}
