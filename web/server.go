// Package web is the HTTP surface of the room bot: the dashboard REST API
// and the websocket upgrade endpoint.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kokexgggguu/haxball/auth"
	"github.com/kokexgggguu/haxball/broadcast"
	"github.com/kokexgggguu/haxball/contract"
)

// Server bundles everything the HTTP handlers reach into.
type Server struct {
	log        *slog.Logger
	store      contract.Store
	room       contract.Room
	dispatcher contract.Dispatcher
	notifier   contract.Notifier
	hub        *broadcast.Hub
	auth       *auth.Service
	archive    contract.Archiver
	startedAt  time.Time
}

func NewServer(
	log *slog.Logger,
	store contract.Store,
	room contract.Room,
	dispatcher contract.Dispatcher,
	notifier contract.Notifier,
	hub *broadcast.Hub,
	authService *auth.Service,
	archive contract.Archiver,
) *Server {
	return &Server{
		log:        log.With(slog.String("component", "web")),
		store:      store,
		room:       room,
		dispatcher: dispatcher,
		notifier:   notifier,
		hub:        hub,
		auth:       authService,
		archive:    archive,
		startedAt:  time.Now(),
	}
}

// Router builds the gin engine with all dashboard routes mounted.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(s.requestLogger())

	api := router.Group("/api")
	{
		api.GET("/stats", s.getStats)
		api.GET("/chat", s.getChat)
		api.POST("/chat", s.postChat)
		api.POST("/command", s.postCommand)
		api.GET("/players", s.getPlayers)
		api.GET("/games", s.getGames)
		api.GET("/games/archive", s.getArchivedGames)
		api.GET("/commands", s.getCommands)
		api.GET("/discord/activity", s.getDiscordActivity)
		api.GET("/discord/status", s.getDiscordStatus)
		api.POST("/discord/test", s.postDiscordTest)
		api.GET("/settings", s.getSettings)
		api.PATCH("/settings", s.requireAuth(), s.patchSettings)
		api.GET("/room/status", s.getRoomStatus)
		api.GET("/dashboard", s.getDashboard)

		actions := api.Group("/actions")
		{
			actions.POST("/clear-bans", s.action("!clearbans"))
			actions.POST("/reset-game", s.action("!rr"))
			actions.POST("/start-game", s.action("!start"))
			actions.POST("/pause-game", s.action("!pause"))
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.postRegister)
			authGroup.POST("/login", s.postLogin)
		}
	}

	router.GET("/ws", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}

// fail writes the uniform error body.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// requireAuth guards mutating endpoints with a dashboard bearer token.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			fail(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := s.auth.Verify(header[len(prefix):])
		if err != nil {
			fail(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set("username", claims.Username)
		c.Next()
	}
}
