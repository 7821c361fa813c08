// Package domain holds the record types stored by the volatile store and the
// live room types exchanged with the game room.
package domain

import "time"

// Player is the session-cumulative record for one room visitor.
// It is created on join (or lazily on first stat access) and never deleted;
// LeftAt marks departure.
type Player struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	IsAdmin      bool       `json:"isAdmin"`
	JoinedAt     time.Time  `json:"joinedAt"`
	LeftAt       *time.Time `json:"leftAt"`
	TotalGoals   int        `json:"totalGoals"`
	TotalAssists int        `json:"totalAssists"`
	GamesPlayed  int        `json:"gamesPlayed"`
	Wins         int        `json:"wins"`
	MVPCount     int        `json:"mvpCount"`
}

// PlayerUpdate carries a partial player mutation; nil fields are untouched.
// LeftAt is doubly indirected so a rejoin can reset it to nil.
type PlayerUpdate struct {
	IsAdmin      *bool
	LeftAt       **time.Time
	TotalGoals   *int
	TotalAssists *int
	GamesPlayed  *int
	Wins         *int
	MVPCount     *int
}

// Game is created on game start and finalized on stop.
type Game struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
	RedScore    int        `json:"redScore"`
	BlueScore   int        `json:"blueScore"`
	WinnerTeam  string     `json:"winnerTeam"` // "red", "blue" or "draw"; empty while running
	MVPPlayerID string     `json:"mvpPlayerId"`
	Duration    int        `json:"duration"` // seconds
}

type GameUpdate struct {
	EndedAt     *time.Time
	RedScore    *int
	BlueScore   *int
	WinnerTeam  *string
	MVPPlayerID *string
	Duration    *int
}

type ChatMessage struct {
	ID              string    `json:"id"`
	PlayerName      string    `json:"playerName"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
	IsCommand       bool      `json:"isCommand"`
	IsSystemMessage bool      `json:"isSystemMessage"`
}

// CommandRecord is the audit trail entry for one command invocation.
type CommandRecord struct {
	ID          string    `json:"id"`
	CommandName string    `json:"commandName"`
	PlayerName  string    `json:"playerName"`
	Timestamp   time.Time `json:"timestamp"`
	Success     bool      `json:"success"`
	Parameters  string    `json:"parameters"`
}

// RoomStats is the singleton aggregate mutated by partial merges.
type RoomStats struct {
	ID                   string    `json:"id"`
	CurrentPlayers       int       `json:"currentPlayers"`
	TotalPlayersToday    int       `json:"totalPlayersToday"`
	CommandsUsedToday    int       `json:"commandsUsedToday"`
	DiscordMessagesToday int       `json:"discordMessagesToday"`
	GamesToday           int       `json:"gamesToday"`
	LastUpdated          time.Time `json:"lastUpdated"`
}

type StatsUpdate struct {
	CurrentPlayers       *int
	TotalPlayersToday    *int
	CommandsUsedToday    *int
	DiscordMessagesToday *int
	GamesToday           *int
}

// DiscordActivity types mirror the sink call shapes.
const (
	ActivityMessage    = "message"
	ActivityEmbed      = "embed"
	ActivityGameResult = "game_result"
	ActivityReminder   = "reminder"
	ActivityPlayerJoin = "player_join"
)

type DiscordActivity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// RoomSettings is the singleton configuration record.
type RoomSettings struct {
	ID                      string    `json:"id"`
	AdminPassword           string    `json:"adminPassword"`
	DiscordReminderInterval int       `json:"discordReminderInterval"` // seconds
	MaxPlayers              int       `json:"maxPlayers"`
	RoomName                string    `json:"roomName"`
	IsPublic                bool      `json:"isPublic"`
	LastPasswordChange      time.Time `json:"lastPasswordChange"`
}

type SettingsUpdate struct {
	AdminPassword           *string `json:"adminPassword" validate:"omitempty,min=4"`
	DiscordReminderInterval *int    `json:"discordReminderInterval" validate:"omitempty,min=10"`
	MaxPlayers              *int    `json:"maxPlayers" validate:"omitempty,min=2,max=30"`
	RoomName                *string `json:"roomName" validate:"omitempty,min=1"`
	IsPublic                *bool   `json:"isPublic"`
}

// User is a dashboard account.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
