package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/growsocial/orbit/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackSubscription_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/track-subscription", r.URL.Path)

		var req models.TrackSubscriptionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "viewer@example.com", req.UserEmail)
		assert.Equal(t, models.TrackEventSubscribed, req.Event)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"status":"success","amount":"150","currency":"NGN"}`)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	resp, err := client.TrackSubscription(context.Background(), models.TrackSubscriptionRequest{
		UserEmail: "viewer@example.com",
		Event:     models.TrackEventSubscribed,
		ChannelID: "UCabc",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, "NGN", resp.Currency)
}

func TestTrackSubscription_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"status":"already-rewarded"}`)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	resp, err := client.TrackSubscription(context.Background(), models.TrackSubscriptionRequest{
		UserEmail: "viewer@example.com",
		Event:     models.TrackEventSubscribed,
		ChannelID: "UCabc",
	})
	// Conflict is a definitive outcome, not an error.
	require.NoError(t, err)
	assert.Equal(t, models.StatusAlreadyRewarded, resp.Status)
}

func TestTrackSubscription_UnknownChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status":"error","message":"Unknown channel"}`)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.TrackSubscription(context.Background(), models.TrackSubscriptionRequest{
		UserEmail: "viewer@example.com",
		Event:     models.TrackEventSubscribed,
		ChannelID: "UCgone",
	})
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestGetEligibleChannels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/eligible-channels", r.URL.Path)
		fmt.Fprint(w, `{"status":"success","channels":[
			{"id":1,"channelId":"UCabc","channelName":"Cooking With Ada","rate":"150","currency":"NGN"}
		]}`)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	channels, err := client.GetEligibleChannels(context.Background(), "viewer@example.com")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "UCabc", channels[0].YouTubeChannelID)
}

func TestGetEligibleChannels_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>gateway error</html>`)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.GetEligibleChannels(context.Background(), "viewer@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		fmt.Fprint(w, `{"status":"success","user_data":{"email":"viewer@example.com","data_consent":true}}`)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	user, err := client.Login(context.Background(), "viewer@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "viewer@example.com", user.Email)
	assert.True(t, user.DataConsent)
}

func TestLogin_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status":"error","message":"Invalid email or password"}`)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.Login(context.Background(), "viewer@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
}
