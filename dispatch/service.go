// Package dispatch turns room chat into moderation and statistics actions.
// It owns the chat command catalogue, the in-session admin and mute sets,
// and the bridge that translates raw room events into store writes,
// dashboard broadcasts and notification channel messages.
package dispatch

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
	"github.com/kokexgggguu/haxball/moderation"
)

const (
	// Version is the bot version reported by !version.
	Version = "2.0"

	dashboardPlayerName = "Dashboard Admin"
	restartDelay        = time.Second
	clearChatLines      = 20
)

// DashboardInvoker is the synthetic identity used when a command originates
// from the web dashboard instead of a seated player. It always carries the
// admin flag.
func DashboardInvoker() domain.RoomPlayer {
	return domain.RoomPlayer{ID: 0, Name: dashboardPlayerName, Admin: true}
}

// Service is the command dispatcher and room-event bridge.
type Service struct {
	log       *slog.Logger
	store     contract.Store
	room      contract.Room
	notifier  contract.Notifier
	hub       contract.Broadcaster
	moderator *moderation.Moderator
	archive   contract.Archiver

	inviteLink string
	websiteURL string
	startedAt  time.Time

	mu            sync.Mutex
	admins        map[int]struct{}
	muted         map[int]struct{}
	currentGameID string
	goalTape      []goalEvent
}

type goalEvent struct {
	team   domain.Team
	scorer string
}

// NewService wires the dispatcher. The moderator and the archive may be nil:
// without a moderator the chat relay is uncensored, without an archive
// finished games simply stay volatile.
func NewService(
	log *slog.Logger,
	store contract.Store,
	room contract.Room,
	notifier contract.Notifier,
	hub contract.Broadcaster,
	moderator *moderation.Moderator,
	archive contract.Archiver,
	inviteLink string,
	websiteURL string,
) *Service {
	return &Service{
		log:        log.With(slog.String("component", "dispatch")),
		store:      store,
		room:       room,
		notifier:   notifier,
		hub:        hub,
		moderator:  moderator,
		archive:    archive,
		inviteLink: inviteLink,
		websiteURL: websiteURL,
		startedAt:  time.Now(),
		admins:     make(map[int]struct{}),
		muted:      make(map[int]struct{}),
	}
}

// isAdmin reports whether the invoker may run admin-only commands, either
// through the room admin flag or through a grant made this session.
func (s *Service) isAdmin(invoker domain.RoomPlayer) bool {
	if invoker.Admin {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.admins[invoker.ID]
	return ok
}

func (s *Service) grantAdmin(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[id] = struct{}{}
}

func (s *Service) revokeAdmin(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.admins, id)
}

// IsMuted reports whether the player's non-command chat is suppressed.
func (s *Service) IsMuted(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.muted[id]
	return ok
}

func (s *Service) setMuted(id int, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if muted {
		s.muted[id] = struct{}{}
	} else {
		delete(s.muted, id)
	}
}

// forget drops every in-session flag held for a player who left or was
// removed from the room.
func (s *Service) forget(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.admins, id)
	delete(s.muted, id)
}

// findPlayer resolves a player by case-insensitive substring match against
// the current room roster, first match in roster order.
func (s *Service) findPlayer(name string) (domain.RoomPlayer, bool) {
	needle := strings.ToLower(name)
	return lo.Find(s.room.PlayerList(), func(p domain.RoomPlayer) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
}

// ensurePlayer returns the stored record for a name, creating one lazily
// when stats are first touched for a player the join hook never saw.
func (s *Service) ensurePlayer(name string) domain.Player {
	if p, ok := s.store.GetPlayerByName(name); ok {
		return p
	}
	return s.store.CreatePlayer(name)
}

// SendDashboardChat pushes a system message from the dashboard into room
// chat and mirrors it to dashboard clients.
func (s *Service) SendDashboardChat(message string) {
	s.room.SendChat(fmt.Sprintf("📢 %s", message))
	s.store.CreateChatMessage(dashboardPlayerName, message, false, true)
	s.hub.Broadcast(event.ChatMessage{Player: dashboardPlayerName, Message: message, IsCommand: false})
}

// HandlePlayerJoin is the room join hook. It upserts the player record,
// bumps the live and daily counters and greets the newcomer.
func (s *Service) HandlePlayerJoin(p domain.RoomPlayer) {
	if existing, ok := s.store.GetPlayerByName(p.Name); ok {
		var cleared *time.Time
		_, _ = s.store.UpdatePlayer(existing.ID, domain.PlayerUpdate{LeftAt: &cleared, IsAdmin: &p.Admin})
	} else {
		created := s.store.CreatePlayer(p.Name)
		if p.Admin {
			admin := true
			_, _ = s.store.UpdatePlayer(created.ID, domain.PlayerUpdate{IsAdmin: &admin})
		}
	}

	stats := s.store.RoomStats()
	current := stats.CurrentPlayers + 1
	total := stats.TotalPlayersToday + 1
	s.store.UpdateRoomStats(domain.StatsUpdate{CurrentPlayers: &current, TotalPlayersToday: &total})

	s.room.SendChat(fmt.Sprintf("👋 Welcome %s! Type !help for commands. Join our Discord: !discord", p.Name))
	s.notifier.SendPlayerJoin(p.Name)
	s.hub.Broadcast(event.PlayerJoin{Player: p.Name})
	s.log.Info("player joined", slog.String("player", p.Name))
}

// HandlePlayerLeave is the room leave hook.
func (s *Service) HandlePlayerLeave(p domain.RoomPlayer) {
	if existing, ok := s.store.GetPlayerByName(p.Name); ok {
		now := time.Now()
		left := &now
		_, _ = s.store.UpdatePlayer(existing.ID, domain.PlayerUpdate{LeftAt: &left})
	}

	stats := s.store.RoomStats()
	current := stats.CurrentPlayers - 1
	if current < 0 {
		current = 0
	}
	s.store.UpdateRoomStats(domain.StatsUpdate{CurrentPlayers: &current})

	s.forget(p.ID)
	s.notifier.SendPlayerLeave(p.Name)
	s.hub.Broadcast(event.PlayerLeave{Player: p.Name})
	s.log.Info("player left", slog.String("player", p.Name))
}

// HandleChat is the room chat hook. Commands are dispatched, muted players
// are silenced before the relay path, everything else is mirrored to the
// dashboard and the notification channel.
func (s *Service) HandleChat(p domain.RoomPlayer, message string) {
	isCommand := strings.HasPrefix(message, "!")
	s.store.CreateChatMessage(p.Name, message, isCommand, false)

	if isCommand {
		s.Dispatch(p, message)
		return
	}
	if s.IsMuted(p.ID) {
		s.log.Debug("muted chat dropped", slog.String("player", p.Name))
		return
	}

	relayed := message
	if s.moderator != nil {
		censored, matches := s.moderator.Censor(message)
		if len(matches) > 0 {
			s.log.Info("chat censored", slog.String("player", p.Name), slog.Any("words", matches))
		}
		relayed = censored
	}
	s.notifier.SendChatRelay(p.Name, relayed)
	s.hub.Broadcast(event.ChatMessage{Player: p.Name, Message: message, IsCommand: false})
}

// HandleGameStart is the room game start hook. It opens the game record,
// resets the goal tape and bumps the daily counter.
func (s *Service) HandleGameStart() {
	game := s.store.CreateGame()

	s.mu.Lock()
	s.currentGameID = game.ID
	s.goalTape = s.goalTape[:0]
	s.mu.Unlock()

	stats := s.store.RoomStats()
	games := stats.GamesToday + 1
	s.store.UpdateRoomStats(domain.StatsUpdate{GamesToday: &games})

	s.notifier.SendEmbed("🎮 Game Started!", "A new game has begun in the room.", 0x00ff00)
	s.hub.Broadcast(event.GameStart{GameID: game.ID})
	s.log.Info("game started", slog.String("game_id", game.ID))
}

// HandleGameStop is the room game stop hook. It finalizes the game record
// with winner, score, duration and MVP, then folds the result into the
// career stats of every seated player.
func (s *Service) HandleGameStop(scores *domain.Scores) {
	s.mu.Lock()
	gameID := s.currentGameID
	s.currentGameID = ""
	tape := make([]goalEvent, len(s.goalTape))
	copy(tape, s.goalTape)
	s.goalTape = s.goalTape[:0]
	s.mu.Unlock()

	if gameID == "" {
		return
	}

	var red, blue, duration int
	if scores != nil {
		red, blue = scores.Red, scores.Blue
		duration = scores.Time
	}
	winner := winnerOf(red, blue)
	mvp := mvpOf(tape)
	var mvpID string
	if mvp != "" {
		if p, ok := s.store.GetPlayerByName(mvp); ok {
			mvpID = p.ID
		}
	}

	ended := time.Now()
	finalized, _ := s.store.UpdateGame(gameID, domain.GameUpdate{
		EndedAt:     &ended,
		RedScore:    &red,
		BlueScore:   &blue,
		WinnerTeam:  &winner,
		MVPPlayerID: &mvpID,
		Duration:    &duration,
	})
	s.creditGameResult(winner, mvp)
	s.archiveGame(finalized)

	s.notifier.SendGameResult(winner, red, blue, mvp, duration)
	s.hub.Broadcast(event.GameEnd{
		GameID:     gameID,
		WinnerTeam: winner,
		RedScore:   red,
		BlueScore:  blue,
		Duration:   duration,
		MVP:        mvp,
	})
	s.log.Info("game ended",
		slog.String("game_id", gameID),
		slog.String("winner", winner),
		slog.Int("red", red),
		slog.Int("blue", blue))
}

// HandleGamePause is the room pause hook.
func (s *Service) HandleGamePause(paused bool) {
	if paused {
		s.notifier.Send("⏸️ Game paused")
	} else {
		s.notifier.Send("▶️ Game resumed")
	}
}

// HandleTeamGoal is the room goal hook. The scorer is credited immediately
// so career goal totals survive an aborted game.
func (s *Service) HandleTeamGoal(team domain.Team, scorer domain.RoomPlayer) {
	if scorer.Name == "" {
		s.notifier.Send(fmt.Sprintf("⚽ **GOAL!** %s team scored!", team))
		return
	}

	s.mu.Lock()
	s.goalTape = append(s.goalTape, goalEvent{team: team, scorer: scorer.Name})
	s.mu.Unlock()

	p := s.ensurePlayer(scorer.Name)
	goals := p.TotalGoals + 1
	_, _ = s.store.UpdatePlayer(p.ID, domain.PlayerUpdate{TotalGoals: &goals})

	s.notifier.Send(fmt.Sprintf("⚽ **GOAL!** %s scored for %s!", scorer.Name, team))
	s.log.Debug("goal scored", slog.String("scorer", scorer.Name), slog.String("team", team.String()))
}

// creditGameResult updates games played, wins and MVP count for everyone
// seated on a team when the game closed.
func (s *Service) creditGameResult(winner, mvp string) {
	for _, rp := range s.room.PlayerList() {
		if rp.Team == domain.TeamSpectator {
			continue
		}
		p := s.ensurePlayer(rp.Name)
		games := p.GamesPlayed + 1
		update := domain.PlayerUpdate{GamesPlayed: &games}
		if (winner == "red" && rp.Team == domain.TeamRed) ||
			(winner == "blue" && rp.Team == domain.TeamBlue) {
			wins := p.Wins + 1
			update.Wins = &wins
		}
		if mvp != "" && rp.Name == mvp {
			count := p.MVPCount + 1
			update.MVPCount = &count
		}
		_, _ = s.store.UpdatePlayer(p.ID, update)
	}
}

// archiveGame persists the finalized game and the career snapshot of every
// player still seated. Archive failures are logged, never fatal.
func (s *Service) archiveGame(game domain.Game) {
	if s.archive == nil || game.ID == "" {
		return
	}
	if err := s.archive.SaveGame(game); err != nil {
		s.log.Error("game archive failed", slog.String("game_id", game.ID), slog.Any("error", err))
	}
	for _, rp := range s.room.PlayerList() {
		if p, ok := s.store.GetPlayerByName(rp.Name); ok {
			if err := s.archive.SavePlayer(p); err != nil {
				s.log.Error("player archive failed", slog.String("player", p.Name), slog.Any("error", err))
			}
		}
	}
}

func winnerOf(red, blue int) string {
	switch {
	case red > blue:
		return "red"
	case blue > red:
		return "blue"
	default:
		return "draw"
	}
}

// mvpOf returns the scorer with the most goals on the tape. Ties go to
// whoever reached the count first.
func mvpOf(tape []goalEvent) string {
	counts := make(map[string]int)
	best := ""
	bestCount := 0
	for _, g := range tape {
		counts[g.scorer]++
		if counts[g.scorer] > bestCount {
			best = g.scorer
			bestCount = counts[g.scorer]
		}
	}
	return best
}

// formatClock renders elapsed seconds as an M:SS match clock.
func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
