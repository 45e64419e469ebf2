package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/growsocial/orbit/api"
	"github.com/growsocial/orbit/datastore"
	rh "github.com/growsocial/orbit/route-handlers"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
)

const (
	defaultPort        = "8080"
	defaultDatabaseURL = "user=postgres password=password dbname=orbit host=localhost port=5432 sslmode=disable"
	dbPingTimeout      = 5 * time.Second
	shutdownTimeout    = 15 * time.Second
	dbMaxOpenConns     = 25
	dbMaxIdleConns     = 25
	dbConnMaxLifetime  = 5 * time.Minute
)

type config struct {
	port        string
	databaseURL string
}

func main() {
	cfg := loadConfig()

	db, err := setupDatabase(cfg.databaseURL)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	channelRepo := datastore.NewChannelRepository(db)
	rewardRepo := datastore.NewRewardRepository(db)
	userRepo := datastore.NewUserRepository(db)

	catalogHandler := rh.NewCatalogHandler(channelRepo)
	rewardHandler := rh.NewRewardHandler(rewardRepo)
	userHandler := rh.NewUserHandler(userRepo)

	router := api.SetupRoutes(catalogHandler, rewardHandler, userHandler)

	startServer(cfg.port, router)
}

func loadConfig() config {
	viper.SetEnvPrefix("ORBIT")
	viper.AutomaticEnv()
	viper.SetDefault("port", defaultPort)

	dbURL := viper.GetString("db_connection_string")
	if dbURL == "" {
		dbURL = defaultDatabaseURL
		log.Println("WARNING: ORBIT_DB_CONNECTION_STRING not set, using default local connection string.")
	}

	return config{
		port:        viper.GetString("port"),
		databaseURL: dbURL,
	}
}

func setupDatabase(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close unusable connection pool
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
