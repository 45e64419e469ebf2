package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rh "github.com/growsocial/orbit/route-handlers"
	"github.com/growsocial/orbit/webutil"
)

const (
	apiBasePath              = "/api"
	channelsBasePath         = "/channels"
	eligibleChannelsBasePath = "/eligible-channels"
	trackSubscriptionPath    = "/track-subscription"
	loginPath                = "/login"
	usersBasePath            = "/users"
	rewardsSubPath           = "/rewards"
	consentSubPath           = "/consent"
)

const paramEmail = "email"

func SetupRoutes(
	catalogHandler *rh.CatalogHandler,
	rewardHandler *rh.RewardHandler,
	userHandler *rh.UserHandler,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Get(channelsBasePath, webutil.MakeHandler(catalogHandler.HandleBrowseChannels))
		r.Post(eligibleChannelsBasePath, webutil.MakeHandler(catalogHandler.HandleEligibleChannels))
		r.Post(trackSubscriptionPath, webutil.MakeHandler(rewardHandler.HandleTrackSubscription))
		r.Post(loginPath, webutil.MakeHandler(userHandler.HandleLogin))

		r.Route(usersBasePath+"/{"+paramEmail+"}", func(r chi.Router) {
			r.Get(rewardsSubPath, webutil.MakeHandler(rewardHandler.HandleGetUserRewards))
			r.Patch(consentSubPath, webutil.MakeHandler(userHandler.HandleSetConsent))
		})
	})

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// SetHeader is a middleware to set a response header.
func SetHeader(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, value)
			next.ServeHTTP(w, r)
		})
	}
}
