package http

import (
	"os"
	"strconv"
	"time"

	"entangle_backend/internal/config"
	"entangle_backend/internal/http/handlers"
	"entangle_backend/internal/http/middleware"
	"entangle_backend/internal/service"
	"entangle_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the HTTP API: session lifecycle, the three game
// phases, the matchmaking queue and the session event socket.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, hub *ws.Hub, sessions *service.SessionService, games *service.GameService, queue *service.QueueService, version string, cfg *config.Config) {
	h := handlers.NewHandler(sessions, games, queue)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 30
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	gameRateLimit := 60
	gameRateWindow := time.Minute
	if cfg != nil {
		gameRateLimit = cfg.GameRateLimit
		gameRateWindow = time.Duration(cfg.GameRateWindow) * time.Second
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, gameRateLimit, gameRateWindow)

	// WebSocket session watch; in-memory limiter since the redis one is
	// keyed per request and upgrades are long-lived
	r.GET("/ws", middleware.SimpleRateLimit(apiRateLimit, apiRateWindow), h.WS(hub))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, gameRateLimit int, gameRateWindow time.Duration) {
	// Matchmaking queue
	api.POST("/queue/enqueue", h.Enqueue)

	// Session lifecycle
	api.GET("/sessions", h.ListSessions)
	api.POST("/sessions", h.CreateSession)
	api.POST("/sessions/:id/join", h.JoinSession)
	api.POST("/sessions/:id/leave", h.LeaveSession)
	api.POST("/sessions/:id/start", h.StartSession)
	api.POST("/sessions/:id/end", h.EndSession)

	// Game action limiter (per player, not per IP)
	gameRL := middleware.PlayerRateLimit(gameRateLimit, gameRateWindow)

	// Phase 1: seating
	api.GET("/game/:id/seating", h.SeatingState)
	api.POST("/game/:id/seating/pick", gameRL, h.PickSeat)

	// Phase 2: rounds
	api.GET("/game/:id/round", h.RoundState)
	api.POST("/game/:id/round/intent", gameRL, h.SubmitIntent)
	api.POST("/game/:id/round/close", gameRL, h.CloseRound)

	// Phase 3: final choice
	api.GET("/game/:id/final", h.FinalState)
	api.POST("/game/:id/final/propose", gameRL, h.Propose)
	api.POST("/game/:id/final/respond", gameRL, h.Respond)
}
