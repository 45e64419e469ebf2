package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/growsocial/orbit/apiclient"
	"github.com/growsocial/orbit/models"
	"github.com/growsocial/orbit/rewardcache"
	"github.com/growsocial/orbit/session"
	"github.com/growsocial/orbit/youtube"
)

// SubscriptionSource returns the user's current subscription list given an
// access credential.
type SubscriptionSource interface {
	ListSubscriptions(ctx context.Context, accessToken string) ([]models.Subscription, error)
}

// LedgerAPI is the slice of the reward API the reconciler needs.
type LedgerAPI interface {
	GetEligibleChannels(ctx context.Context, userEmail string) ([]models.EligibleChannel, error)
	TrackSubscription(ctx context.Context, req models.TrackSubscriptionRequest) (*models.TrackSubscriptionResponse, error)
}

// Reconciler detects newly-qualifying channel subscriptions for the
// session's user and causes exactly one reward to be issued per channel.
// A subscription qualifies when its channel id is in the eligible catalog
// set and not in the rewarded-set cache.
type Reconciler struct {
	session *session.Session
	creds   session.CredentialManager
	source  SubscriptionSource
	ledger  LedgerAPI
	cache   rewardcache.Store
}

func New(
	sess *session.Session,
	creds session.CredentialManager,
	source SubscriptionSource,
	ledger LedgerAPI,
	cache rewardcache.Store,
) *Reconciler {
	return &Reconciler{
		session: sess,
		creds:   creds,
		source:  source,
		ledger:  ledger,
		cache:   cache,
	}
}

// RunCycle executes one poll cycle. A missing or ended session is a logged
// no-op, not an error. On a credential failure the cached credential is
// invalidated, re-acquired interactively, and the entire cycle is retried
// exactly once; a second failure ends the cycle until the next tick.
func (r *Reconciler) RunCycle(ctx context.Context) error {
	if r.session == nil || !r.session.Active() {
		log.Println("INFO (Reconciler): no active session, skipping poll")
		return nil
	}
	if !r.session.DataConsent() {
		log.Println("INFO (Reconciler): data consent not granted, skipping poll")
		return nil
	}

	err := r.runCycleOnce(ctx)
	if err == nil {
		return nil
	}
	if !isCredentialError(err) {
		return err
	}

	log.Printf("WARN (Reconciler): credential error, forcing refresh and retrying cycle: %v", err)
	r.creds.Invalidate()
	if _, acquireErr := r.creds.Acquire(ctx, true); acquireErr != nil {
		log.Printf("ERROR (Reconciler): interactive re-authorization failed: %v", acquireErr)
		return nil
	}

	if retryErr := r.runCycleOnce(ctx); retryErr != nil {
		// No third attempt; the next scheduled tick is the retry policy.
		log.Printf("ERROR (Reconciler): cycle retry failed: %v", retryErr)
	}
	return nil
}

func (r *Reconciler) runCycleOnce(ctx context.Context) error {
	email := r.session.Email()

	rewarded, err := r.cache.Load(ctx, email)
	if err != nil {
		// Advisory only; the ledger still dedupes.
		log.Printf("WARN (Reconciler): failed to load rewarded set: %v", err)
		rewarded = nil
	}
	rewardedSet := make(map[string]struct{}, len(rewarded))
	for _, id := range rewarded {
		rewardedSet[id] = struct{}{}
	}

	accessToken, err := r.creds.Acquire(ctx, false)
	if err != nil {
		return fmt.Errorf("credential fetch failed: %w", err)
	}

	subscriptions, eligible, err := r.fetchInputs(ctx, email, accessToken)
	if err != nil {
		return err
	}

	newRewards := qualify(subscriptions, eligible, rewardedSet)
	log.Printf("INFO (Reconciler): %d subscriptions, %d eligible channels, %d newly qualifying",
		len(subscriptions), len(eligible), len(newRewards))
	if len(newRewards) == 0 {
		return nil
	}

	issued := 0
	for _, candidate := range newRewards {
		// A logout mid-cycle lets the in-flight issuance finish but stops
		// the rest of the batch.
		if !r.session.Active() {
			log.Println("INFO (Reconciler): session ended, stopping cycle")
			break
		}

		if r.issueReward(ctx, email, candidate) {
			issued++
		}
	}

	if issued > 0 {
		log.Printf("INFO (Reconciler): rewarded %d new subscriptions", issued)
	}
	return nil
}

// fetchInputs runs the two read-only fetches concurrently; neither mutates
// shared state and the results are only combined after both complete.
func (r *Reconciler) fetchInputs(ctx context.Context, email, accessToken string) ([]models.Subscription, []models.EligibleChannel, error) {
	var (
		wg            sync.WaitGroup
		subscriptions []models.Subscription
		eligible      []models.EligibleChannel
		subErr        error
		eligibleErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		subscriptions, subErr = r.source.ListSubscriptions(ctx, accessToken)
	}()
	go func() {
		defer wg.Done()
		eligible, eligibleErr = r.ledger.GetEligibleChannels(ctx, email)
	}()
	wg.Wait()

	if subErr != nil {
		return nil, nil, fmt.Errorf("subscription fetch failed: %w", subErr)
	}
	if eligibleErr != nil {
		return nil, nil, fmt.Errorf("eligible-channels fetch failed: %w", eligibleErr)
	}
	return subscriptions, eligible, nil
}

// issueReward sends one reward request and, on a definitive outcome
// (success or already-rewarded), appends the channel id to the rewarded-set
// immediately so an interruption cannot re-issue it next cycle. Reports
// whether a new reward was recorded.
func (r *Reconciler) issueReward(ctx context.Context, email string, candidate models.Subscription) bool {
	req := models.TrackSubscriptionRequest{
		UserEmail: email,
		Event:     models.TrackEventSubscribed,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       "https://www.youtube.com/channel/" + candidate.ChannelID,
		ChannelID: candidate.ChannelID,
		Method:    string(models.RewardMethodAPI),
	}

	resp, err := r.ledger.TrackSubscription(ctx, req)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnknownChannel) {
			// Catalog raced with a posting removal; nothing to retry.
			log.Printf("WARN (Reconciler): channel %s unknown to ledger, skipping", candidate.ChannelID)
			return false
		}
		// Transport error: the channel stays unqualified-for-cache and is
		// retried on the next tick.
		log.Printf("ERROR (Reconciler): reward issuance failed for %s: %v", candidate.ChannelID, err)
		return false
	}

	switch resp.Status {
	case models.StatusSuccess:
		log.Printf("INFO (Reconciler): rewarded channel %s (%s %s)", candidate.ChannelID, resp.Amount, resp.Currency)
	case models.StatusAlreadyRewarded:
		// Success-equivalent: the invariant already holds.
		log.Printf("INFO (Reconciler): channel %s already rewarded", candidate.ChannelID)
	default:
		log.Printf("WARN (Reconciler): unexpected issuance status %q for %s", resp.Status, candidate.ChannelID)
		return false
	}

	if err := r.cache.Add(ctx, email, candidate.ChannelID); err != nil {
		log.Printf("WARN (Reconciler): failed to persist rewarded set: %v", err)
	}
	return resp.Status == models.StatusSuccess
}

// qualify computes the set difference: subscriptions that are in the
// eligible catalog and not yet in the rewarded set, deduplicated.
func qualify(subscriptions []models.Subscription, eligible []models.EligibleChannel, rewardedSet map[string]struct{}) []models.Subscription {
	eligibleSet := make(map[string]struct{}, len(eligible))
	for _, ch := range eligible {
		eligibleSet[ch.YouTubeChannelID] = struct{}{}
	}

	var qualifying []models.Subscription
	seen := make(map[string]struct{})
	for _, sub := range subscriptions {
		if sub.ChannelID == "" {
			continue
		}
		if _, ok := eligibleSet[sub.ChannelID]; !ok {
			continue
		}
		if _, ok := rewardedSet[sub.ChannelID]; ok {
			continue
		}
		if _, ok := seen[sub.ChannelID]; ok {
			continue
		}
		seen[sub.ChannelID] = struct{}{}
		qualifying = append(qualifying, sub)
	}
	return qualifying
}

func isCredentialError(err error) bool {
	return errors.Is(err, youtube.ErrInvalidCredential) ||
		errors.Is(err, session.ErrNoCachedCredential) ||
		errors.Is(err, session.ErrProviderError) ||
		errors.Is(err, session.ErrUserDeclined)
}
