package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ASamedWalker/breakfast-buddy/internal/api"
	"github.com/ASamedWalker/breakfast-buddy/internal/platform/gemini"
	"github.com/ASamedWalker/breakfast-buddy/internal/platform/openai"
	"github.com/ASamedWalker/breakfast-buddy/internal/platform/ubereats"
	"github.com/ASamedWalker/breakfast-buddy/internal/suggestion"
)

// Config represents the application configuration. Values from
// config.json can be overridden by environment variables.
type Config struct {
	OpenAIAPIKey     string `json:"openai_api_key"`
	GeminiAPIKey     string `json:"gemini_api_key"`
	DatabaseURL      string `json:"DATABASE_URL"`
	UberClientID     string `json:"uber_client_id"`
	UberClientSecret string `json:"uber_client_secret"`
	Port             string `json:"port"`
}

func loadConfig() (Config, error) {
	var config Config
	configData, err := os.ReadFile("config.json")
	if err == nil {
		if err := json.Unmarshal(configData, &config); err != nil {
			return config, fmt.Errorf("failed to unmarshal config.json: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to read config.json: %w", err)
	}

	overlay := func(dst *string, env string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	overlay(&config.OpenAIAPIKey, "OPENAI_API_KEY")
	overlay(&config.GeminiAPIKey, "GEMINI_API_KEY")
	overlay(&config.DatabaseURL, "DATABASE_URL")
	overlay(&config.UberClientID, "UBER_CLIENT_ID")
	overlay(&config.UberClientSecret, "UBER_CLIENT_SECRET")
	overlay(&config.Port, "PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	return config, nil
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	ctx := context.Background()

	config, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	openaiClient := openai.NewClient(config.OpenAIAPIKey)

	geminiClient, err := gemini.NewClient(ctx, config.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating gemini client")
	}

	uberClient := ubereats.NewClient(config.UberClientID, config.UberClientSecret)

	dbStore, err := suggestion.NewPostgresStore(config.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating postgres store")
	}

	pipeline := suggestion.NewPipeline(openaiClient, log.With().Str("provider", "openai").Logger())
	pipelineV2 := suggestion.NewPipeline(geminiClient, log.With().Str("provider", "gemini").Logger())

	handler := api.NewHandler(pipeline, pipelineV2, dbStore, uberClient)

	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/suggestion", handler.GenerateSuggestion)
	r.POST("/v2/suggestion", handler.GenerateSuggestionV2)
	r.POST("/suggestions", handler.SaveSuggestion)
	r.GET("/suggestions", handler.ListSuggestions)
	r.PUT("/suggestions/:id/rating", handler.UpdateRating)
	r.PUT("/suggestions/:id/favorite", handler.ToggleFavorite)
	r.DELETE("/suggestions/:id", handler.DeleteSuggestion)
	r.PUT("/mealplan/:date", handler.SetMealPlanEntry)
	r.GET("/mealplan", handler.GetMealPlan)
	r.GET("/analytics", handler.GetAnalytics)
	r.GET("/restaurants/search", handler.SearchRestaurants)

	server := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      r,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan bool, 1)
	go gracefulShutdown(server, done)

	log.Info().Str("addr", server.Addr).Msg("starting server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}

func gracefulShutdown(server *http.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop()

	// Give in-flight requests five seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	done <- true
}
