package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Halfis/Connect4/internal/analytics"
	"github.com/Halfis/Connect4/internal/game"
	"github.com/Halfis/Connect4/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type Server struct {
	router        *gin.Engine
	manager       *game.Manager
	store         storage.Store
	analytics     *analytics.Producer
	connections   map[string]*wsClient
	connMu        sync.RWMutex
	sweepInterval time.Duration
}

type Config struct {
	Rows           int
	Cols           int
	IdleTimeout    time.Duration
	SweepInterval  time.Duration
	ParallelSearch bool
	Seed           int64
	// Store defaults to an in-memory store.
	Store     storage.Store
	Analytics *analytics.Producer
}

func New(cfg Config) *Server {
	if cfg.Store == nil {
		cfg.Store = storage.NewMemoryStore()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Second
	}
	router := gin.Default()
	s := &Server{
		router:        router,
		store:         cfg.Store,
		analytics:     cfg.Analytics,
		connections:   make(map[string]*wsClient),
		sweepInterval: cfg.SweepInterval,
	}
	s.manager = game.NewManager(game.ManagerConfig{
		Rows:           cfg.Rows,
		Cols:           cfg.Cols,
		IdleTimeout:    cfg.IdleTimeout,
		ParallelSearch: cfg.ParallelSearch,
		Seed:           cfg.Seed,
		OnFinish:       s.onFinish,
	})

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/leaderboard", s.handleLeaderboard)
	router.GET("/stats", s.handleStats)
	router.GET("/ws", s.handleWS)

	api := router.Group("/api/games")
	api.POST("", s.handleCreateGame)
	api.GET("/:id", s.handleGetGame)
	api.POST("/:id/moves", s.handleMove)
	api.GET("/:id/hint", s.handleHint)

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Run(ctx context.Context, addr string) error {
	go s.sweeper(ctx)
	srv := &http.Server{Addr: addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) sweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.manager.SweepIdle()
		}
	}
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	limit := defaultLeaderboardLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}
	rows, err := s.store.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Printf("leaderboard error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}
	if rows == nil {
		rows = []storage.LeaderboardRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.GetDifficultyStats(c.Request.Context())
	if err != nil {
		log.Printf("stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	if stats == nil {
		stats = []storage.DifficultyStats{}
	}
	c.JSON(http.StatusOK, stats)
}

type createGameRequest struct {
	Username   string `json:"username" binding:"required"`
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := parseDifficulty(req.Difficulty)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := s.manager.StartGame(req.Username, d)
	if err != nil {
		writeError(c, err)
		return
	}
	s.publishStart(res)
	status := http.StatusCreated
	if res.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func (s *Server) handleGetGame(c *gin.Context) {
	snap, ok := s.manager.GetGame(c.Param("id"))
	if !ok {
		writeError(c, game.ErrGameNotFound)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type moveRequest struct {
	Username string `json:"username" binding:"required"`
	Column   *int   `json:"column" binding:"required"`
}

func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.manager.HandleMove(game.Move{
		Username: req.Username,
		GameID:   c.Param("id"),
		Column:   *req.Column,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	s.publishMove(res)
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleHint(c *gin.Context) {
	col, err := s.manager.Hint(c.Param("id"), c.Query("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": col})
}

// onFinish runs once per finished game, off the manager lock.
func (s *Server) onFinish(snap game.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.SaveGame(ctx, storage.FromSnapshot(snap)); err != nil {
		log.Printf("save game %s: %v", snap.ID, err)
	}
	s.analytics.Publish(ctx, analytics.GameFinished(snap))
}

func (s *Server) publishStart(res game.MoveResult) {
	if s.analytics == nil || res.Resumed {
		return
	}
	go func() {
		ctx := context.Background()
		s.analytics.Publish(ctx, analytics.GameStarted(res.Game))
		if e, ok := analytics.MovePlayed(res); ok {
			s.analytics.Publish(ctx, e)
		}
	}()
}

func (s *Server) publishMove(res game.MoveResult) {
	if s.analytics == nil {
		return
	}
	if e, ok := analytics.MovePlayed(res); ok {
		go s.analytics.Publish(context.Background(), e)
	}
}

// parseDifficulty defaults an empty value to medium.
func parseDifficulty(v string) (game.Difficulty, error) {
	if v == "" {
		return game.Medium, nil
	}
	return game.ParseDifficulty(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidColumn), errors.Is(err, game.ErrInvalidDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrColumnFull), errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrNotInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
