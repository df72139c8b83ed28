package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/api"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/config"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/database"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/logger"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/services"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/store"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/uploads"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up upload storage
	storage, err := uploads.NewStorage(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}

	// Set up stores and services
	userStore := store.NewUserStore(db)
	catStore := store.NewCatStore(db)
	eventStore := store.NewEventStore(db)

	eventService := services.NewEventService(eventStore)
	userService := services.NewUserService(userStore, eventService)
	catService := services.NewCatService(catStore)

	tokens := auth.NewService(cfg.JWTSecret)

	// Set up and run the background upload pruner
	pruner, err := uploads.NewPruner(storage, catStore, cfg.UploadPruneSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid upload prune schedule")
	}
	go pruner.Run()

	// Set up router
	router := api.NewRouter(tokens, userService, catService, eventService, storage, cfg.AppEnv)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	pruner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
