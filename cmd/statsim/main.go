package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LocationStatsResponse mirrors the payload the contact service returns for
// GET /api/v1/locations/stats.
type LocationStatsResponse struct {
	Location         string `json:"location"`
	PersonCount      int    `json:"personCount"`
	PhoneNumberCount int    `json:"phoneNumberCount"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string    `json:"status"`
	InstanceID  string    `json:"instance_id"`
	Timestamp   time.Time `json:"timestamp"`
	FailureRate float64   `json:"failure_rate"`
}

// MockDirectory simulates the contact service's location stats endpoint. It
// hands out stable counts per location so repeated requests for the same
// location agree with each other, the way a real directory would.
type MockDirectory struct {
	mu          sync.Mutex
	known       map[string]LocationStatsResponse
	failureRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	instanceID  string
	rng         *rand.Rand
}

// NewMockDirectory creates a new mock directory instance
func NewMockDirectory(failureRate float64, minDelay, maxDelay time.Duration) *MockDirectory {
	return &MockDirectory{
		known:       make(map[string]LocationStatsResponse),
		failureRate: failureRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		instanceID:  "MOCK_DIRECTORY_" + uuid.New().String()[:8],
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// lookup fabricates stats for a location on first sight and replays them on
// every request after that.
func (m *MockDirectory) lookup(location string) LocationStatsResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(location))
	if stats, ok := m.known[key]; ok {
		return stats
	}

	persons := m.rng.Intn(500)
	phones := 0
	if persons > 0 {
		phones = persons + m.rng.Intn(persons*2)
	}
	stats := LocationStatsResponse{
		Location:         location,
		PersonCount:      persons,
		PhoneNumberCount: phones,
	}
	m.known[key] = stats
	return stats
}

func (m *MockDirectory) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	randomDelta := time.Duration(m.rng.Int63n(int64(delta)))
	return m.minDelay + randomDelta
}

func (m *MockDirectory) shouldFail() bool {
	return m.rng.Float64() < m.failureRate
}

// Handler struct holds the mock directory and routes
type Handler struct {
	directory *MockDirectory
}

func NewHandler(directory *MockDirectory) *Handler {
	return &Handler{directory: directory}
}

// GetLocationStats handles stats lookups
func (h *Handler) GetLocationStats(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "location is required",
		})
		return
	}

	// Simulate lookup latency
	time.Sleep(h.directory.randomDelay())

	if h.directory.shouldFail() {
		log.Warn().
			Str("location", location).
			Msg("Simulated stats lookup failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Directory temporarily unavailable",
		})
		return
	}

	stats := h.directory.lookup(location)

	log.Info().
		Str("location", location).
		Int("person_count", stats.PersonCount).
		Int("phone_number_count", stats.PhoneNumberCount).
		Msg("Stats lookup served")

	c.JSON(http.StatusOK, stats)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		InstanceID:  h.directory.instanceID,
		Timestamp:   time.Now(),
		FailureRate: h.directory.failureRate,
	})
}

// UpdateConfig allows changing directory configuration at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		FailureRate *float64 `json:"failure_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.FailureRate != nil {
		if *config.FailureRate >= 0 && *config.FailureRate <= 1.0 {
			h.directory.failureRate = *config.FailureRate
			log.Info().Float64("rate", *config.FailureRate).Msg("Updated failure rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Configuration updated",
		"failure_rate": h.directory.failureRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/locations/stats", handler.GetLocationStats)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8082")
	failureRate := getEnvFloat("FAILURE_RATE", 0)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("failure_rate", failureRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Contact Directory")

	// Create mock directory
	directory := NewMockDirectory(failureRate, minDelay, maxDelay)
	handler := NewHandler(directory)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
