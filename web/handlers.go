package web

import (
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kokexgggguu/haxball/dispatch"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
	"github.com/kokexgggguu/haxball/errors"
)

var validateSettings = validator.New()

// limitQuery parses ?limit= with a fallback; 0 means everything.
func limitQuery(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}

func (s *Server) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.RoomStats())
}

func (s *Server) getChat(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ChatMessages(limitQuery(c, 50)))
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "message is required")
		return
	}
	s.dispatcher.SendDashboardChat(req.Message)
	c.JSON(http.StatusCreated, gin.H{"message": "sent"})
}

type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

func (s *Server) postCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "command is required")
		return
	}
	if !strings.HasPrefix(req.Command, "!") {
		fail(c, http.StatusBadRequest, "commands start with !")
		return
	}
	s.dispatcher.Dispatch(dispatch.DashboardInvoker(), req.Command)
	c.JSON(http.StatusOK, gin.H{"message": "executed"})
}

func (s *Server) getPlayers(c *gin.Context) {
	if c.Query("active") == "true" {
		c.JSON(http.StatusOK, s.store.ActivePlayers())
		return
	}
	c.JSON(http.StatusOK, s.store.AllPlayers())
}

func (s *Server) getGames(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.AllGames())
}

func (s *Server) getArchivedGames(c *gin.Context) {
	if s.archive == nil {
		fail(c, http.StatusServiceUnavailable, "archive not configured")
		return
	}
	games, err := s.archive.RecentGames(limitQuery(c, 20))
	if err != nil {
		s.log.Error("archive scan failed", slog.Any("error", err))
		fail(c, http.StatusInternalServerError, "archive unavailable")
		return
	}
	c.JSON(http.StatusOK, games)
}

func (s *Server) getCommands(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Commands(limitQuery(c, 50)))
}

func (s *Server) getDiscordActivity(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.DiscordActivity(limitQuery(c, 20)))
}

func (s *Server) getDiscordStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.notifier.Status())
}

func (s *Server) postDiscordTest(c *gin.Context) {
	ok := s.notifier.SendTestMessage()
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.RoomSettings())
}

func (s *Server) patchSettings(c *gin.Context) {
	var update domain.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, http.StatusBadRequest, "malformed settings payload")
		return
	}
	if err := validateSettings.Struct(update); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	settings := s.store.UpdateRoomSettings(update)
	if update.AdminPassword != nil {
		s.hub.Broadcast(event.PasswordChanged{})
		s.log.Info("admin password changed", slog.String("by", c.GetString("username")))
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) getRoomStatus(c *gin.Context) {
	settings := s.store.RoomSettings()
	scores := s.room.Scores()
	c.JSON(http.StatusOK, gin.H{
		"roomName":       settings.RoomName,
		"isPublic":       settings.IsPublic,
		"playerCount":    len(s.room.PlayerList()),
		"maxPlayers":     settings.MaxPlayers,
		"gameInProgress": scores != nil,
		"scores":         scores,
		"uptimeSeconds":  int(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":         s.store.RoomStats(),
		"chat":          s.store.ChatMessages(50),
		"activity":      s.store.DiscordActivity(10),
		"players":       s.store.ActivePlayers(),
		"settings":      s.store.RoomSettings(),
		"commands":      s.store.Commands(20),
		"discordStatus": s.notifier.Status(),
		"roster":        s.room.PlayerList(),
	})
}

// action returns a handler that runs one fixed command as the dashboard.
func (s *Server) action(command string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.dispatcher.Dispatch(dispatch.DashboardInvoker(), command)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) postRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "username and password are required")
		return
	}
	user, err := s.auth.Register(req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user)
	case goerrors.Is(err, errors.ErrUserAlreadyExists):
		fail(c, http.StatusConflict, "username already taken")
	default:
		fail(c, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) postLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "username and password are required")
		return
	}
	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
