// Package store implements the volatile in-memory store backing the room
// bot and the dashboard. Lists are insertion-ordered and capped with FIFO
// eviction; the two singletons exist from construction.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/errors"
)

const (
	maxChatMessages    = 1000
	maxCommandRecords  = 1000
	maxDiscordActivity = 500

	defaultAdminPassword    = "1234"
	defaultReminderInterval = 180
	defaultMaxPlayers       = 16
	defaultRoomName         = "Haxball Room"
)

// MemStore is safe for concurrent use; a single mutex keeps every mutation
// serialized, which is all the concurrency the system needs.
type MemStore struct {
	mu sync.RWMutex

	players     map[string]domain.Player
	playerOrder []string
	games       map[string]domain.Game
	gameOrder   []string
	chat        []domain.ChatMessage
	commands    []domain.CommandRecord
	activity    []domain.DiscordActivity
	stats       domain.RoomStats
	settings    domain.RoomSettings
	users       map[string]domain.User
}

func NewMemStore() *MemStore {
	now := time.Now()
	return &MemStore{
		players: make(map[string]domain.Player),
		games:   make(map[string]domain.Game),
		users:   make(map[string]domain.User),
		stats: domain.RoomStats{
			ID:          uuid.NewString(),
			LastUpdated: now,
		},
		settings: domain.RoomSettings{
			ID:                      uuid.NewString(),
			AdminPassword:           defaultAdminPassword,
			DiscordReminderInterval: defaultReminderInterval,
			MaxPlayers:              defaultMaxPlayers,
			RoomName:                defaultRoomName,
			IsPublic:                true,
			LastPasswordChange:      now,
		},
	}
}

func (s *MemStore) CreatePlayer(name string) domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.Player{
		ID:       uuid.NewString(),
		Name:     name,
		JoinedAt: time.Now(),
	}
	s.players[p.ID] = p
	s.playerOrder = append(s.playerOrder, p.ID)
	return p
}

func (s *MemStore) GetPlayer(id string) (domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	return p, ok
}

// GetPlayerByName matches on the exact name; within a session names are
// unique, and the oldest record wins if a name was ever reused.
func (s *MemStore) GetPlayerByName(name string) (domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.playerOrder {
		if strings.EqualFold(s.players[id].Name, name) {
			return s.players[id], true
		}
	}
	return domain.Player{}, false
}

func (s *MemStore) AllPlayers() []domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.playerOrder, func(id string, _ int) domain.Player {
		return s.players[id]
	})
}

func (s *MemStore) ActivePlayers() []domain.Player {
	return lo.Filter(s.AllPlayers(), func(p domain.Player, _ int) bool {
		return p.LeftAt == nil
	})
}

func (s *MemStore) UpdatePlayer(id string, u domain.PlayerUpdate) (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return domain.Player{}, false
	}
	if u.IsAdmin != nil {
		p.IsAdmin = *u.IsAdmin
	}
	if u.LeftAt != nil {
		p.LeftAt = *u.LeftAt
	}
	if u.TotalGoals != nil {
		p.TotalGoals = *u.TotalGoals
	}
	if u.TotalAssists != nil {
		p.TotalAssists = *u.TotalAssists
	}
	if u.GamesPlayed != nil {
		p.GamesPlayed = *u.GamesPlayed
	}
	if u.Wins != nil {
		p.Wins = *u.Wins
	}
	if u.MVPCount != nil {
		p.MVPCount = *u.MVPCount
	}
	s.players[id] = p
	return p, true
}

func (s *MemStore) CreateGame() domain.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := domain.Game{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	s.games[g.ID] = g
	s.gameOrder = append(s.gameOrder, g.ID)
	return g
}

func (s *MemStore) GetGame(id string) (domain.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	return g, ok
}

func (s *MemStore) AllGames() []domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.gameOrder, func(id string, _ int) domain.Game {
		return s.games[id]
	})
}

func (s *MemStore) UpdateGame(id string, u domain.GameUpdate) (domain.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return domain.Game{}, false
	}
	if u.EndedAt != nil {
		g.EndedAt = u.EndedAt
	}
	if u.RedScore != nil {
		g.RedScore = *u.RedScore
	}
	if u.BlueScore != nil {
		g.BlueScore = *u.BlueScore
	}
	if u.WinnerTeam != nil {
		g.WinnerTeam = *u.WinnerTeam
	}
	if u.MVPPlayerID != nil {
		g.MVPPlayerID = *u.MVPPlayerID
	}
	if u.Duration != nil {
		g.Duration = *u.Duration
	}
	s.games[id] = g
	return g, true
}

func (s *MemStore) CreateChatMessage(playerName, message string, isCommand, isSystem bool) domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.ChatMessage{
		ID:              uuid.NewString(),
		PlayerName:      playerName,
		Message:         message,
		Timestamp:       time.Now(),
		IsCommand:       isCommand,
		IsSystemMessage: isSystem,
	}
	s.chat = append(s.chat, m)
	if len(s.chat) > maxChatMessages {
		s.chat = s.chat[len(s.chat)-maxChatMessages:]
	}
	return m
}

func (s *MemStore) ChatMessages(limit int) []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lastN(s.chat, limit)
}

func (s *MemStore) CreateCommand(name, playerName, parameters string, success bool) domain.CommandRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.CommandRecord{
		ID:          uuid.NewString(),
		CommandName: name,
		PlayerName:  playerName,
		Timestamp:   time.Now(),
		Success:     success,
		Parameters:  parameters,
	}
	s.commands = append(s.commands, c)
	if len(s.commands) > maxCommandRecords {
		s.commands = s.commands[len(s.commands)-maxCommandRecords:]
	}
	return c
}

func (s *MemStore) Commands(limit int) []domain.CommandRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lastN(s.commands, limit)
}

func (s *MemStore) RoomStats() domain.RoomStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats
}

func (s *MemStore) UpdateRoomStats(u domain.StatsUpdate) domain.RoomStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CurrentPlayers != nil {
		s.stats.CurrentPlayers = *u.CurrentPlayers
	}
	if u.TotalPlayersToday != nil {
		s.stats.TotalPlayersToday = *u.TotalPlayersToday
	}
	if u.CommandsUsedToday != nil {
		s.stats.CommandsUsedToday = *u.CommandsUsedToday
	}
	if u.DiscordMessagesToday != nil {
		s.stats.DiscordMessagesToday = *u.DiscordMessagesToday
	}
	if u.GamesToday != nil {
		s.stats.GamesToday = *u.GamesToday
	}
	s.stats.LastUpdated = time.Now()
	return s.stats
}

func (s *MemStore) CreateDiscordActivity(activityType, message string, success bool) domain.DiscordActivity {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := domain.DiscordActivity{
		ID:        uuid.NewString(),
		Type:      activityType,
		Message:   message,
		Timestamp: time.Now(),
		Success:   success,
	}
	s.activity = append(s.activity, a)
	if len(s.activity) > maxDiscordActivity {
		s.activity = s.activity[len(s.activity)-maxDiscordActivity:]
	}
	return a
}

func (s *MemStore) DiscordActivity(limit int) []domain.DiscordActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lastN(s.activity, limit)
}

func (s *MemStore) RoomSettings() domain.RoomSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

func (s *MemStore) UpdateRoomSettings(u domain.SettingsUpdate) domain.RoomSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.AdminPassword != nil {
		s.settings.AdminPassword = *u.AdminPassword
		s.settings.LastPasswordChange = time.Now()
	}
	if u.DiscordReminderInterval != nil {
		s.settings.DiscordReminderInterval = *u.DiscordReminderInterval
	}
	if u.MaxPlayers != nil {
		s.settings.MaxPlayers = *u.MaxPlayers
	}
	if u.RoomName != nil {
		s.settings.RoomName = *u.RoomName
	}
	if u.IsPublic != nil {
		s.settings.IsPublic = *u.IsPublic
	}
	return s.settings
}

func (s *MemStore) CreateUser(username, passwordHash string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return domain.User{}, errors.ErrUserAlreadyExists
		}
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *MemStore) GetUserByUsername(username string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return domain.User{}, false
}

// lastN returns the most recent n items, oldest first. A copy is returned so
// callers never alias the internal slice.
func lastN[T any](items []T, n int) []T {
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	out := make([]T, n)
	copy(out, items[len(items)-n:])
	return out
}
