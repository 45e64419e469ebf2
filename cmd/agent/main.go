package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/growsocial/orbit/apiclient"
	"github.com/growsocial/orbit/reconciler"
	"github.com/growsocial/orbit/rewardcache"
	"github.com/growsocial/orbit/session"
	"github.com/growsocial/orbit/youtube"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
)

// Google's OAuth 2.0 endpoints.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

const (
	defaultAPIBaseURL   = "http://localhost:8080"
	defaultPollInterval = 5 * time.Minute
	defaultHTTPTimeout  = 15 * time.Second
)

type config struct {
	apiBaseURL        string
	pollInterval      time.Duration
	httpTimeout       time.Duration
	email             string
	password          string
	redisAddr         string
	redisPassword     string
	redisDB           int
	oauthClientID     string
	oauthClientSecret string
}

func main() {
	cfg := loadConfig()

	ledger := apiclient.New(cfg.apiBaseURL, cfg.httpTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	user, err := ledger.Login(ctx, cfg.email, cfg.password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	sess := session.New(user.Email, user.DataConsent)
	log.Printf("INFO (Agent): logged in as %s", sess.Email())

	cache := setupCache(cfg)

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.oauthClientID,
		ClientSecret: cfg.oauthClientSecret,
		Endpoint:     googleEndpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
	}
	creds := session.NewOAuthCredentialManager(oauthConfig, promptForAuthCode)

	source := youtube.NewClient(cfg.httpTimeout)
	rec := reconciler.New(sess, creds, source, ledger, cache)
	runner := reconciler.NewRunner(rec, cfg.pollInterval)

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go runner.Start(ctx)

	<-shutdownSignal
	log.Println("INFO (Agent): shutdown signal received, ending session")
	sess.End()
	cancel()
}

func loadConfig() config {
	viper.SetEnvPrefix("ORBIT")
	viper.AutomaticEnv()
	viper.SetDefault("api_base_url", defaultAPIBaseURL)
	viper.SetDefault("poll_interval", defaultPollInterval)
	viper.SetDefault("http_timeout", defaultHTTPTimeout)
	viper.SetDefault("redis_db", 0)

	cfg := config{
		apiBaseURL:        viper.GetString("api_base_url"),
		pollInterval:      viper.GetDuration("poll_interval"),
		httpTimeout:       viper.GetDuration("http_timeout"),
		email:             viper.GetString("email"),
		password:          viper.GetString("password"),
		redisAddr:         viper.GetString("redis_addr"),
		redisPassword:     viper.GetString("redis_password"),
		redisDB:           viper.GetInt("redis_db"),
		oauthClientID:     viper.GetString("oauth_client_id"),
		oauthClientSecret: viper.GetString("oauth_client_secret"),
	}

	if cfg.email == "" || cfg.password == "" {
		log.Fatal("ORBIT_EMAIL and ORBIT_PASSWORD are required")
	}
	if cfg.oauthClientID == "" {
		log.Println("WARNING: ORBIT_OAUTH_CLIENT_ID not set. YouTube authorization will fail at runtime.")
	}

	return cfg
}

func setupCache(cfg config) rewardcache.Store {
	if cfg.redisAddr == "" {
		log.Println("WARNING: ORBIT_REDIS_ADDR not set, rewarded-set cache will not survive restarts.")
		return rewardcache.NewMemoryStore()
	}

	store, err := rewardcache.NewRedisStore(cfg.redisAddr, cfg.redisPassword, cfg.redisDB)
	if err != nil {
		log.Fatalf("Redis setup failed: %v", err)
	}
	log.Printf("INFO (Agent): rewarded-set cache on Redis at %s", cfg.redisAddr)
	return store
}

// promptForAuthCode is the interactive leg of the OAuth flow: print the
// consent URL and read the resulting code from stdin.
func promptForAuthCode(ctx context.Context, authURL string) (string, error) {
	fmt.Printf("Authorize YouTube access by visiting:\n\n  %s\n\nEnter the authorization code: ", authURL)

	type result struct {
		code string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		ch <- result{code: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("failed to read authorization code: %w", res.err)
		}
		if res.code == "" {
			return "", session.ErrUserDeclined
		}
		return res.code, nil
	}
}
