// Package room provides the in-process game room. The real haxball room runs
// as a headless browser script; everything this process needs from it is
// modeled by contract.Room, and Local implements that contract while keeping
// roster, bans and game state itself. Production and tests share it.
package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/kokexgggguu/haxball/domain"
)

// Hooks are the room event callbacks. Unset hooks are skipped. They are
// invoked outside the room lock, so a hook may call back into the room.
type Hooks struct {
	OnPlayerJoin  func(p domain.RoomPlayer)
	OnPlayerLeave func(p domain.RoomPlayer)
	// OnPlayerChat fires for every player message, commands included.
	OnPlayerChat func(p domain.RoomPlayer, message string)
	OnGameStart  func()
	OnGameStop   func(scores domain.Scores)
	OnGamePause  func(paused bool)
	OnTeamGoal   func(team domain.Team, scorer domain.RoomPlayer)
}

type gameState struct {
	startedAt time.Time
	red       int
	blue      int
	paused    bool
}

// Local is an in-memory room.
type Local struct {
	mu         sync.Mutex
	log        *slog.Logger
	hooks      Hooks
	nextID     int
	roster     []domain.RoomPlayer
	banned     map[string]struct{} // by player name
	game       *gameState
	transcript []string
	scoreLimit int
	timeLimit  int
}

func NewLocal(log *slog.Logger) *Local {
	return &Local{
		log:        log,
		nextID:     1,
		banned:     make(map[string]struct{}),
		scoreLimit: 3,
		timeLimit:  3,
	}
}

// Bind installs the event hooks. Call once during wiring, before traffic.
func (l *Local) Bind(h Hooks) {
	l.mu.Lock()
	l.hooks = h
	l.mu.Unlock()
}

// Join adds a player to the roster and fires OnPlayerJoin. A banned name is
// rejected and the returned bool is false.
func (l *Local) Join(name string) (domain.RoomPlayer, bool) {
	l.mu.Lock()
	if _, ok := l.banned[name]; ok {
		l.mu.Unlock()
		l.log.Info("banned player rejected", "name", name)
		return domain.RoomPlayer{}, false
	}
	p := domain.RoomPlayer{ID: l.nextID, Name: name, Team: domain.TeamSpectator}
	l.nextID++
	l.roster = append(l.roster, p)
	hook := l.hooks.OnPlayerJoin
	l.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return p, true
}

// Leave removes a player voluntarily.
func (l *Local) Leave(playerID int) {
	l.remove(playerID)
}

// Chat feeds one player message through the room, firing OnPlayerChat.
func (l *Local) Chat(playerID int, message string) {
	l.mu.Lock()
	p, ok := l.find(playerID)
	hook := l.hooks.OnPlayerChat
	l.mu.Unlock()

	if ok && hook != nil {
		hook(p, message)
	}
}

func (l *Local) SendChat(message string) {
	l.mu.Lock()
	l.transcript = append(l.transcript, message)
	l.mu.Unlock()
	l.log.Info("room chat", "message", message)
}

func (l *Local) SendChatTo(message string, playerID int) {
	l.mu.Lock()
	l.transcript = append(l.transcript, message)
	l.mu.Unlock()
	l.log.Info("room chat", "message", message, "to", playerID)
}

func (l *Local) SetPlayerAdmin(playerID int, admin bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.roster {
		if l.roster[i].ID == playerID {
			l.roster[i].Admin = admin
			return
		}
	}
}

func (l *Local) SetPlayerTeam(playerID int, team domain.Team) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.roster {
		if l.roster[i].ID == playerID {
			l.roster[i].Team = team
			return
		}
	}
}

func (l *Local) KickPlayer(playerID int, reason string, ban bool) {
	l.mu.Lock()
	p, ok := l.find(playerID)
	if ok && ban {
		l.banned[p.Name] = struct{}{}
	}
	l.mu.Unlock()

	if ok {
		l.log.Info("player kicked", "name", p.Name, "reason", reason, "ban", ban)
		l.remove(playerID)
	}
}

func (l *Local) ClearBans() {
	l.mu.Lock()
	l.banned = make(map[string]struct{})
	l.mu.Unlock()
}

// BanCount reports the size of the ban list.
func (l *Local) BanCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.banned)
}

func (l *Local) StartGame() {
	l.mu.Lock()
	if l.game != nil {
		l.mu.Unlock()
		return
	}
	l.game = &gameState{startedAt: time.Now()}
	hook := l.hooks.OnGameStart
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (l *Local) StopGame() {
	l.mu.Lock()
	if l.game == nil {
		l.mu.Unlock()
		return
	}
	final := l.scores()
	l.game = nil
	hook := l.hooks.OnGameStop
	l.mu.Unlock()

	if hook != nil {
		hook(final)
	}
}

func (l *Local) PauseGame(pause bool) {
	l.mu.Lock()
	if l.game == nil || l.game.paused == pause {
		l.mu.Unlock()
		return
	}
	l.game.paused = pause
	hook := l.hooks.OnGamePause
	l.mu.Unlock()

	if hook != nil {
		hook(pause)
	}
}

// ScoreGoal credits a goal to a team, optionally by a known scorer, and fires
// OnTeamGoal. scorerID 0 means the scorer is unknown.
func (l *Local) ScoreGoal(team domain.Team, scorerID int) {
	l.mu.Lock()
	if l.game == nil {
		l.mu.Unlock()
		return
	}
	switch team {
	case domain.TeamRed:
		l.game.red++
	case domain.TeamBlue:
		l.game.blue++
	}
	scorer, _ := l.find(scorerID)
	hook := l.hooks.OnTeamGoal
	l.mu.Unlock()

	if hook != nil {
		hook(team, scorer)
	}
}

func (l *Local) PlayerList() []domain.RoomPlayer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.RoomPlayer, len(l.roster))
	copy(out, l.roster)
	return out
}

func (l *Local) Scores() *domain.Scores {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.game == nil {
		return nil
	}
	s := l.scores()
	return &s
}

// Transcript returns everything the bot has said in the room.
func (l *Local) Transcript() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.transcript))
	copy(out, l.transcript)
	return out
}

func (l *Local) scores() domain.Scores {
	return domain.Scores{
		Red:        l.game.red,
		Blue:       l.game.blue,
		Time:       int(time.Since(l.game.startedAt).Seconds()),
		ScoreLimit: l.scoreLimit,
		TimeLimit:  l.timeLimit,
	}
}

func (l *Local) find(playerID int) (domain.RoomPlayer, bool) {
	return lo.Find(l.roster, func(p domain.RoomPlayer) bool {
		return p.ID == playerID
	})
}

func (l *Local) remove(playerID int) {
	l.mu.Lock()
	p, ok := l.find(playerID)
	if ok {
		l.roster = lo.Reject(l.roster, func(rp domain.RoomPlayer, _ int) bool {
			return rp.ID == playerID
		})
	}
	hook := l.hooks.OnPlayerLeave
	l.mu.Unlock()

	if ok && hook != nil {
		hook(p)
	}
}
