package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/kokexgggguu/haxball/auth"
	"github.com/kokexgggguu/haxball/broadcast"
	"github.com/kokexgggguu/haxball/dispatch"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/internal"
	"github.com/kokexgggguu/haxball/moderation"
	"github.com/kokexgggguu/haxball/notify"
	"github.com/kokexgggguu/haxball/repositories/archive"
	"github.com/kokexgggguu/haxball/room"
	"github.com/kokexgggguu/haxball/store"
	"github.com/kokexgggguu/haxball/web"
	"github.com/kokexgggguu/haxball/workers"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and manages the lifecycle, so defers execute and
// the shutdown path stays in one place.
func run() error {
	// Configuration & logger. A missing .env file is fine, the environment
	// may carry everything already.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// Durable game archive (BadgerDB)
	arc, err := archive.Open(config.BadgerFilepath, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing archive...")
		_ = arc.Close()
	}()

	// Volatile store, room, fan-out hub
	st := store.NewMemStore()
	rm := room.NewLocal(log)
	hub := broadcast.NewHub(log, st)

	// Discord sink; a missing token leaves it disconnected, never fatal
	notifier, err := notify.NewDiscordNotifier(log, st, hub, config.DiscordBotToken, config.DiscordChannelID, config.DiscordInviteLink)
	if err != nil {
		return err
	}
	if err := notifier.Connect(); err != nil {
		log.Warn("Discord connection failed, continuing without notifications", "error", err)
	}
	defer func() { _ = notifier.Close() }()

	// Chat moderation, only when a dictionary is configured
	var moderator *moderation.Moderator
	if words := config.CensoredWordList(); len(words) > 0 {
		censoredRune, err := config.CensoredRune()
		if err != nil {
			return err
		}
		if moderator, err = moderation.NewModerator(words, censoredRune, log); err != nil {
			return err
		}
	}

	// Command dispatcher and room-event bridge
	svc := dispatch.NewService(log, st, rm, notifier, hub, moderator, arc, config.DiscordInviteLink, config.WebsiteURL)
	hub.SetDispatcher(svc)
	rm.Bind(room.Hooks{
		OnPlayerJoin:  svc.HandlePlayerJoin,
		OnPlayerLeave: svc.HandlePlayerLeave,
		OnPlayerChat:  svc.HandleChat,
		OnGameStart:   svc.HandleGameStart,
		OnGameStop:    func(sc domain.Scores) { svc.HandleGameStop(&sc) },
		OnGamePause:   svc.HandleGamePause,
		OnTeamGoal:    svc.HandleTeamGoal,
	})

	// Dashboard auth and HTTP surface
	authService := auth.NewService(log, st, auth.NewTokens(config.JWTSecret, config.AuthTokenExpiry))
	server := web.NewServer(log, st, rm, svc, notifier, hub, authService, arc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background loops under supervision
	sup := workers.NewSupervisor(log)
	sup.Add(
		hub,
		workers.NewReminderWorker(log, st, rm, notifier, hub),
		workers.NewDailyResetWorker(log, st),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	httpServer := &http.Server{Addr: config.Address(), Handler: server.Router()}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", config.Address())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
