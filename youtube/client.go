package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/growsocial/orbit/models"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

const maxResultsPerPage = 50

// ErrInvalidCredential means the API rejected the access token. Callers
// should invalidate the cached credential and re-acquire before retrying.
var ErrInvalidCredential = errors.New("subscription source rejected credential")

// Client fetches the authenticated user's subscription list from the
// YouTube Data API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListSubscriptions returns every subscription of the credential's owner,
// following page tokens until the API reports no more.
func (c *Client) ListSubscriptions(ctx context.Context, accessToken string) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	pageToken := ""

	for {
		page, err := c.fetchPage(ctx, accessToken, pageToken)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			subscribedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			if err != nil {
				subscribedAt = time.Time{}
			}
			subscriptions = append(subscriptions, models.Subscription{
				ChannelID:    item.Snippet.ResourceID.ChannelID,
				ChannelTitle: item.Snippet.Title,
				SubscribedAt: subscribedAt,
			})
		}

		if page.NextPageToken == "" {
			return subscriptions, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) fetchPage(ctx context.Context, accessToken, pageToken string) (*subscriptionListResponse, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("mine", "true")
	params.Set("maxResults", fmt.Sprintf("%d", maxResultsPerPage))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	endpoint := c.baseURL + "/subscriptions?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscriptions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidCredential, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("YouTube API returned status %d: %s", resp.StatusCode, string(body))
	}

	var page subscriptionListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions response: %w", err)
	}
	return &page, nil
}

// YouTube Data API v3 subscriptions.list response types.
type subscriptionListResponse struct {
	Items         []subscriptionItem `json:"items"`
	NextPageToken string             `json:"nextPageToken"`
}

type subscriptionItem struct {
	Snippet subscriptionSnippet `json:"snippet"`
}

type subscriptionSnippet struct {
	Title       string               `json:"title"`
	PublishedAt string               `json:"publishedAt"`
	ResourceID  subscriptionResource `json:"resourceId"`
}

type subscriptionResource struct {
	ChannelID string `json:"channelId"`
}
