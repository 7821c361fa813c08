// Package event defines the typed events pushed to connected dashboards and
// the wire envelope they are serialized into.
package event

import "time"

// DashboardEvent is anything the hub can fan out to dashboard connections.
type DashboardEvent interface {
	EventType() string
}

// Envelope is the wire format of every server push: {type, data, timestamp}.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Wrap builds the wire envelope for a dashboard event, stamping now.
func Wrap(e DashboardEvent) Envelope {
	return Envelope{Type: e.EventType(), Data: e, Timestamp: time.Now()}
}

type ChatMessage struct {
	Player    string `json:"player"`
	Message   string `json:"message"`
	IsCommand bool   `json:"isCommand"`
}

func (ChatMessage) EventType() string { return "chatMessage" }

type PlayerJoin struct {
	Player string `json:"player"`
}

func (PlayerJoin) EventType() string { return "playerJoin" }

type PlayerLeave struct {
	Player string `json:"player"`
}

func (PlayerLeave) EventType() string { return "playerLeave" }

type CommandExecuted struct {
	Player  string   `json:"player"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Success bool     `json:"success"`
}

func (CommandExecuted) EventType() string { return "command" }

type GameStart struct {
	GameID string `json:"gameId"`
}

func (GameStart) EventType() string { return "gameStart" }

type GameEnd struct {
	GameID     string `json:"gameId"`
	WinnerTeam string `json:"winnerTeam"`
	RedScore   int    `json:"redScore"`
	BlueScore  int    `json:"blueScore"`
	Duration   int    `json:"duration"`
	MVP        string `json:"mvp"`
}

func (GameEnd) EventType() string { return "gameEnd" }

type DiscordStatus struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

func (DiscordStatus) EventType() string { return "discordStatus" }

type DiscordReminder struct{}

func (DiscordReminder) EventType() string { return "discordReminder" }

type PasswordChanged struct{}

func (PasswordChanged) EventType() string { return "passwordChanged" }
