package domain

import "strings"

// Team is the haxball team slot.
type Team int

const (
	TeamSpectator Team = 0
	TeamRed       Team = 1
	TeamBlue      Team = 2
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "Red"
	case TeamBlue:
		return "Blue"
	default:
		return "Spectators"
	}
}

// ParseTeam maps the chat-command token to a team slot. Anything that is not
// red or blue lands on the spectator bench.
func ParseTeam(token string) Team {
	switch strings.ToLower(token) {
	case "red":
		return TeamRed
	case "blue":
		return TeamBlue
	default:
		return TeamSpectator
	}
}

// RoomPlayer is a live roster entry as reported by the game room.
type RoomPlayer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	Team  Team   `json:"team"`
}

// Scores is the live score snapshot of a running game.
type Scores struct {
	Red        int `json:"red"`
	Blue       int `json:"blue"`
	Time       int `json:"time"` // elapsed seconds
	ScoreLimit int `json:"scoreLimit"`
	TimeLimit  int `json:"timeLimit"`
}
