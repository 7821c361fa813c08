package contract

import (
	"context"
	"reflect"

	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
)

// Room is the capability handle onto the live game room. The production
// in-process room and the test room both satisfy it; the dispatcher never
// sees anything more concrete.
type Room interface {
	SendChat(message string)
	// SendChatTo delivers a message visible only to one player.
	SendChatTo(message string, playerID int)
	SetPlayerAdmin(playerID int, admin bool)
	SetPlayerTeam(playerID int, team domain.Team)
	KickPlayer(playerID int, reason string, ban bool)
	ClearBans()
	StartGame()
	StopGame()
	PauseGame(pause bool)
	PlayerList() []domain.RoomPlayer
	// Scores returns nil when no game is running.
	Scores() *domain.Scores
}

// Store is the volatile store contract (capped, insertion-ordered lists and
// two singletons). All methods are synchronous; the implementation guards
// itself so callers stay effectively single-threaded.
type Store interface {
	CreatePlayer(name string) domain.Player
	GetPlayer(id string) (domain.Player, bool)
	GetPlayerByName(name string) (domain.Player, bool)
	AllPlayers() []domain.Player
	ActivePlayers() []domain.Player
	UpdatePlayer(id string, u domain.PlayerUpdate) (domain.Player, bool)

	CreateGame() domain.Game
	GetGame(id string) (domain.Game, bool)
	AllGames() []domain.Game
	UpdateGame(id string, u domain.GameUpdate) (domain.Game, bool)

	CreateChatMessage(playerName, message string, isCommand, isSystem bool) domain.ChatMessage
	ChatMessages(limit int) []domain.ChatMessage

	CreateCommand(name, playerName, parameters string, success bool) domain.CommandRecord
	Commands(limit int) []domain.CommandRecord

	RoomStats() domain.RoomStats
	UpdateRoomStats(u domain.StatsUpdate) domain.RoomStats

	CreateDiscordActivity(activityType, message string, success bool) domain.DiscordActivity
	DiscordActivity(limit int) []domain.DiscordActivity

	RoomSettings() domain.RoomSettings
	UpdateRoomSettings(u domain.SettingsUpdate) domain.RoomSettings

	CreateUser(username, passwordHash string) (domain.User, error)
	GetUserByUsername(username string) (domain.User, bool)
}

// Archiver persists finished games and career snapshots across the restarts
// that wipe the volatile store.
type Archiver interface {
	SaveGame(game domain.Game) error
	SavePlayer(player domain.Player) error
	RecentGames(limit int) ([]domain.Game, error)
}

// Broadcaster fans dashboard events out to live connections, best effort.
type Broadcaster interface {
	Broadcast(e event.DashboardEvent)
}

// EmbedField is one field of a structured notification.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// NotifierStatus is what the dashboard shows about the external channel.
type NotifierStatus struct {
	Connected bool   `json:"connected"`
	ChannelID string `json:"channelId"`
}

// Notifier delivers formatted messages to the external chat channel.
// Delivery is a single best-effort attempt; the returned bool reports the
// outcome and the attempt is always recorded in the activity log.
type Notifier interface {
	Send(content string) bool
	SendEmbed(title, description string, color int, fields ...EmbedField) bool
	SendChatRelay(playerName, message string) bool
	SendPlayerJoin(playerName string) bool
	SendPlayerLeave(playerName string) bool
	SendReminder() bool
	SendGameResult(winnerTeam string, redScore, blueScore int, mvp string, duration int) bool
	SendTestMessage() bool
	Status() NotifierStatus
}

// Dispatcher parses and executes !commands, and accepts dashboard-originated
// chat. Split out as an interface so the hub and the HTTP layer do not
// depend on the concrete service.
type Dispatcher interface {
	Dispatch(invoker domain.RoomPlayer, raw string)
	SendDashboardChat(message string)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming in
// the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
