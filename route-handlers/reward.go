package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/growsocial/orbit/datastore"
	"github.com/growsocial/orbit/models"
	"github.com/growsocial/orbit/webutil"
)

type RewardHandler struct {
	Repo *datastore.RewardRepository
}

func NewRewardHandler(repo *datastore.RewardRepository) *RewardHandler {
	return &RewardHandler{Repo: repo}
}

// HandleTrackSubscription serves POST /api/track-subscription: the reward
// issuance endpoint. Amount and currency come from the channel record, never
// from the request. A duplicate (user, channel) pair responds 409 with
// status "already-rewarded", which callers treat as the invariant holding.
func (h *RewardHandler) HandleTrackSubscription(w http.ResponseWriter, r *http.Request) error {
	var req models.TrackSubscriptionRequest
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if req.UserEmail == "" || req.ChannelID == "" {
		return webutil.ErrBadRequest("user_email and channel_id are required")
	}
	if req.Event != models.TrackEventSubscribed {
		return webutil.ErrBadRequest("Unsupported event type")
	}

	method := models.RewardMethod(req.Method)
	if method != models.RewardMethodAPI && method != models.RewardMethodClick {
		method = models.RewardMethodClick
	}

	reward, err := h.Repo.CreateReward(r.Context(), req.UserEmail, req.ChannelID, req.URL, method)
	if err != nil {
		switch {
		case errors.Is(err, datastore.ErrAlreadyRewarded):
			webutil.RespondWithJSON(w, http.StatusConflict, models.TrackSubscriptionResponse{
				Status: models.StatusAlreadyRewarded,
			})
			return nil
		case errors.Is(err, datastore.ErrUnknownChannel):
			return webutil.ErrNotFound("Unknown channel")
		default:
			return fmt.Errorf("failed to create reward for %s on %s: %w", req.UserEmail, req.ChannelID, err)
		}
	}

	webutil.RespondWithJSON(w, http.StatusCreated, models.TrackSubscriptionResponse{
		Status:   models.StatusSuccess,
		Amount:   reward.Amount,
		Currency: reward.Currency,
	})
	return nil
}

// HandleGetUserRewards serves GET /api/users/{email}/rewards.
func (h *RewardHandler) HandleGetUserRewards(w http.ResponseWriter, r *http.Request) error {
	email := chi.URLParam(r, "email")
	if email == "" {
		return webutil.ErrBadRequest("Email is required")
	}

	rewards, err := h.Repo.GetRewardsByUser(r.Context(), email)
	if err != nil {
		return fmt.Errorf("failed to retrieve rewards for %s: %w", email, err)
	}
	if rewards == nil {
		rewards = []models.RewardSummary{}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":  models.StatusSuccess,
		"rewards": rewards,
	})
	return nil
}
