package routehandlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/growsocial/orbit/datastore"
	"github.com/growsocial/orbit/models"
	"github.com/growsocial/orbit/webutil"
)

type CatalogHandler struct {
	Repo *datastore.ChannelRepository
}

func NewCatalogHandler(repo *datastore.ChannelRepository) *CatalogHandler {
	return &CatalogHandler{Repo: repo}
}

// HandleBrowseChannels serves GET /api/channels?email=&category=&search=.
// An empty result is not an error; it gets its own status so clients can
// show a tailored message.
func (h *CatalogHandler) HandleBrowseChannels(w http.ResponseWriter, r *http.Request) error {
	email := r.URL.Query().Get("email")
	if email == "" {
		return webutil.ErrBadRequest("Email is required")
	}
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	channels, err := h.Repo.BrowseChannels(r.Context(), email, category, search)
	if err != nil {
		return fmt.Errorf("failed to browse channels for %s: %w", email, err)
	}

	if len(channels) == 0 {
		webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status":  models.StatusEmpty,
			"message": emptyCatalogMessage(category, search),
		})
		return nil
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status": models.StatusSuccess,
		"data":   channels,
	})
	return nil
}

// HandleEligibleChannels serves POST /api/eligible-channels. The response
// lists the postings the user can still be rewarded for; the reconciler
// diffs the user's live subscriptions against it.
func (h *CatalogHandler) HandleEligibleChannels(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		UserEmail string `json:"user_email"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.UserEmail == "" {
		return webutil.ErrBadRequest("User email is required")
	}

	channels, err := h.Repo.GetEligibleChannels(r.Context(), requestData.UserEmail)
	if err != nil {
		return fmt.Errorf("failed to get eligible channels for %s: %w", requestData.UserEmail, err)
	}
	if channels == nil {
		channels = []models.EligibleChannel{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":   models.StatusSuccess,
		"channels": channels,
	})
	return nil
}

func emptyCatalogMessage(category, search string) string {
	switch {
	case search != "":
		return "No channels found for your search query"
	case category != "" && category != "All":
		return "No channels found for the " + category + " category"
	default:
		return "No channels available"
	}
}
