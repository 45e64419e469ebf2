package routehandlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/growsocial/orbit/datastore"
	"github.com/growsocial/orbit/models"
	"github.com/growsocial/orbit/webutil"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserHandler struct {
	Repo *datastore.UserRepository
}

func NewUserHandler(repo *datastore.UserRepository) *UserHandler {
	return &UserHandler{Repo: repo}
}

// HandleLogin serves POST /api/login. A successful login returns the user
// profile the client builds its session from.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Email == "" || requestData.Password == "" {
		return webutil.ErrBadRequest("Email and password are required")
	}
	if !emailPattern.MatchString(requestData.Email) {
		return webutil.ErrBadRequest("Invalid email format")
	}
	if len(requestData.Password) < 6 {
		return webutil.ErrBadRequest("Password must be at least 6 characters")
	}

	user, err := h.Repo.GetUserByEmail(r.Context(), requestData.Email)
	if err != nil {
		// Indistinguishable from a bad password on purpose.
		return webutil.ErrUnauthorized("Invalid email or password")
	}

	if !webutil.HashMatches(requestData.Password, user.PasswordHash) {
		return webutil.ErrUnauthorized("Invalid email or password")
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":    models.StatusSuccess,
		"user_data": user,
	})
	return nil
}

// HandleSetConsent serves PATCH /api/users/{email}/consent. The consent
// flag gates whether the agent sends tracking events at all.
func (h *UserHandler) HandleSetConsent(w http.ResponseWriter, r *http.Request) error {
	email := chi.URLParam(r, "email")
	if email == "" {
		return webutil.ErrBadRequest("Email is required")
	}

	var requestData struct {
		DataConsent bool `json:"data_consent"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if err := h.Repo.SetDataConsent(r.Context(), email, requestData.DataConsent); err != nil {
		return fmt.Errorf("failed to set consent for %s: %w", email, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":       models.StatusSuccess,
		"data_consent": requestData.DataConsent,
	})
	return nil
}
