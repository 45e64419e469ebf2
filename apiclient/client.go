package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/growsocial/orbit/models"
)

// ErrUnknownChannel means the ledger has no posting for the channel id.
var ErrUnknownChannel = errors.New("unknown channel")

// Client talks to the Orbit reward API on behalf of the agent.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login authenticates the user and returns their profile.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	payload := map[string]string{"email": email, "password": password}

	var response struct {
		Status   string       `json:"status"`
		Message  string       `json:"message"`
		UserData *models.User `json:"user_data"`
	}
	status, err := c.postJSON(ctx, "/api/login", payload, &response)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || response.UserData == nil {
		if response.Message != "" {
			return nil, fmt.Errorf("login failed: %s", response.Message)
		}
		return nil, fmt.Errorf("login failed with status %d", status)
	}
	return response.UserData, nil
}

// GetEligibleChannels returns the postings the user can still earn a
// reward for.
func (c *Client) GetEligibleChannels(ctx context.Context, userEmail string) ([]models.EligibleChannel, error) {
	payload := map[string]string{"user_email": userEmail}

	var response struct {
		Status   string                   `json:"status"`
		Message  string                   `json:"message"`
		Channels []models.EligibleChannel `json:"channels"`
	}
	status, err := c.postJSON(ctx, "/api/eligible-channels", payload, &response)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || response.Status != models.StatusSuccess {
		if response.Status == models.StatusEmpty {
			return nil, nil
		}
		return nil, fmt.Errorf("eligible-channels query failed (status %d): %s", status, response.Message)
	}
	return response.Channels, nil
}

// TrackSubscription requests a reward issuance. An already-rewarded outcome
// is returned as a normal response, not an error: the invariant holds either
// way.
func (c *Client) TrackSubscription(ctx context.Context, req models.TrackSubscriptionRequest) (*models.TrackSubscriptionResponse, error) {
	var response models.TrackSubscriptionResponse
	status, err := c.postJSON(ctx, "/api/track-subscription", req, &response)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusCreated, http.StatusOK:
		return &response, nil
	case http.StatusConflict:
		response.Status = models.StatusAlreadyRewarded
		return &response, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, req.ChannelID)
	default:
		return nil, fmt.Errorf("track-subscription failed with status %d: %s", status, response.Message)
	}
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("malformed response from %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}
