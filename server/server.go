package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/minicasino/config"
	"github.com/Ashenafi-pixel/minicasino/games"
	"github.com/Ashenafi-pixel/minicasino/monitoring"
	"github.com/Ashenafi-pixel/minicasino/profile"
	"github.com/Ashenafi-pixel/minicasino/session"
)

type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	accounts *profile.Accounts
	sessions *session.Registry
	catalog  *games.Registry
	tokens   tokens
	router   *gin.Engine
	http     *http.Server
}

func New(cfg *config.Config, accounts *profile.Accounts, sessions *session.Registry, metrics *monitoring.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.New()
	}
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		accounts: accounts,
		sessions: sessions,
		catalog:  games.Default(),
		tokens:   tokens{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL},
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	r.GET("/api/games", s.listGames)
	r.GET("/api/games/:id", s.getGame)

	auth := r.Group("/api/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/guest", s.guest)

	api := r.Group("/api", s.requireSession())
	api.POST("/auth/logout", s.logout)
	api.GET("/profile", s.getProfile)
	api.GET("/rounds", s.listRounds)
	api.GET("/rounds/:id", s.getRound)

	bj := api.Group("/blackjack")
	bj.GET("", s.blackjackState)
	bj.POST("/bet", s.blackjackBet)
	bj.POST("/clear", s.blackjackAction((*session.Session).ClearBet))
	bj.POST("/start", s.blackjackAction((*session.Session).Start))
	bj.POST("/hit", s.blackjackAction((*session.Session).Hit))
	bj.POST("/stand", s.blackjackAction((*session.Session).Stand))
	bj.POST("/reset", s.blackjackAction((*session.Session).ResetBlackjack))

	cr := api.Group("/crash")
	cr.GET("", s.crashState)
	cr.GET("/history", s.crashHistory)
	cr.POST("/arm", s.crashArm)
	cr.POST("/auto", s.crashAuto)
	cr.POST("/cashout", s.crashAction((*session.Session).CashOut))
	cr.POST("/skip", s.crashAction((*session.Session).SkipToCrash))
	cr.POST("/reset", s.crashAction((*session.Session).ResetCrash))
	return r
}

func (s *Server) Run() error {
	port := s.cfg.Port
	if port <= 0 {
		port = 8080
	}
	addr := ":" + strconv.Itoa(port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("casino listening", zap.String("addr", addr), zap.String("profile_backend", s.cfg.ProfileBackend))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes every player session.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.sessions.CloseAll()
	return err
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger logs method, route and status for each request (no body or secrets)
// and counts it.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) requestFields(c *gin.Context, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	}
	if v, ok := c.Get(sessionKey); ok {
		fields = append(fields, zap.String("player_id", v.(*session.Session).PlayerID()))
	}
	return fields
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "casino"})
}

func (s *Server) listGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": s.catalog.List()})
}

func (s *Server) getGame(c *gin.Context) {
	g, ok := s.catalog.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "game not found", "GAME_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, g)
}
