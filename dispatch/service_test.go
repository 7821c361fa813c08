package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
	"github.com/kokexgggguu/haxball/room"
	"github.com/kokexgggguu/haxball/store"
)

// fakeNotifier records every delivery attempt as a flat string.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) record(s string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
	return true
}

func (f *fakeNotifier) Send(content string) bool { return f.record("send:" + content) }
func (f *fakeNotifier) SendEmbed(title, description string, color int, fields ...contract.EmbedField) bool {
	return f.record("embed:" + title)
}
func (f *fakeNotifier) SendChatRelay(playerName, message string) bool {
	return f.record(fmt.Sprintf("relay:%s:%s", playerName, message))
}
func (f *fakeNotifier) SendPlayerJoin(playerName string) bool { return f.record("join:" + playerName) }
func (f *fakeNotifier) SendPlayerLeave(playerName string) bool {
	return f.record("leave:" + playerName)
}
func (f *fakeNotifier) SendReminder() bool { return f.record("reminder") }
func (f *fakeNotifier) SendGameResult(winnerTeam string, redScore, blueScore int, mvp string, duration int) bool {
	return f.record(fmt.Sprintf("result:%s:%d-%d:%s", winnerTeam, redScore, blueScore, mvp))
}
func (f *fakeNotifier) SendTestMessage() bool { return f.record("test") }
func (f *fakeNotifier) Status() contract.NotifierStatus {
	return contract.NotifierStatus{Connected: true}
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeNotifier) has(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// fakeHub records broadcast events in order.
type fakeHub struct {
	mu     sync.Mutex
	events []event.DashboardEvent
}

func (f *fakeHub) Broadcast(e event.DashboardEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeHub) ofType(eventType string) []event.DashboardEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event.DashboardEvent
	for _, e := range f.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type rig struct {
	store    *store.MemStore
	room     *room.Local
	notifier *fakeNotifier
	hub      *fakeHub
	svc      *Service
}

func newRig(t *testing.T) *rig {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := store.NewMemStore()
	rm := room.NewLocal(log)
	notifier := &fakeNotifier{}
	hub := &fakeHub{}
	svc := NewService(log, st, rm, notifier, hub, nil, nil, "https://discord.gg/6eBcNfD4Fn", "https://haxball.example.com")
	rm.Bind(room.Hooks{
		OnPlayerJoin:  svc.HandlePlayerJoin,
		OnPlayerLeave: svc.HandlePlayerLeave,
		OnPlayerChat:  svc.HandleChat,
		OnGameStart:   svc.HandleGameStart,
		OnGameStop:    func(sc domain.Scores) { svc.HandleGameStop(&sc) },
		OnGamePause:   svc.HandleGamePause,
		OnTeamGoal:    svc.HandleTeamGoal,
	})
	return &rig{store: st, room: rm, notifier: notifier, hub: hub, svc: svc}
}

func (r *rig) lastChat(t *testing.T) string {
	t.Helper()
	transcript := r.room.Transcript()
	require.NotEmpty(t, transcript)
	return transcript[len(transcript)-1]
}

func (r *rig) lastCommand(t *testing.T) domain.CommandRecord {
	t.Helper()
	records := r.store.Commands(1)
	require.Len(t, records, 1)
	return records[0]
}

func TestDispatch_AdminPassword(t *testing.T) {
	req := require.New(t)
	r := newRig(t)

	// Given Alice seated without admin
	alice, ok := r.room.Join("Alice")
	req.True(ok)

	// When she presents the default password
	r.room.Chat(alice.ID, "!admin 1234")

	// Then she holds room admin, the grant is audited and notified
	roster := r.room.PlayerList()
	req.True(roster[0].Admin)
	rec := r.lastCommand(t)
	req.Equal("admin", rec.CommandName)
	req.True(rec.Success)
	req.Equal(1, r.store.RoomStats().CommandsUsedToday)
	req.True(r.notifier.has("send:👑"))

	stored, found := r.store.GetPlayerByName("Alice")
	req.True(found)
	req.True(stored.IsAdmin)
}

func TestDispatch_AdminGrantNotifiesOnceWithoutPassword(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")

	// When Alice presents the room password
	r.room.Chat(alice.ID, "!admin 1234")

	// Then the grant reaches the sink exactly once and the password never does
	var sends []string
	for _, call := range r.notifier.all() {
		if strings.HasPrefix(call, "send:") {
			sends = append(sends, call)
		}
	}
	req.Equal([]string{"send:👑 **Alice** became an admin"}, sends)
	for _, call := range r.notifier.all() {
		req.NotContains(call, "1234")
	}
}

func TestDispatch_AdminWrongPassword(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")

	// When the password is wrong
	r.room.Chat(alice.ID, "!admin letmein")

	// Then no grant happens and the audit records the failure
	req.False(r.room.PlayerList()[0].Admin)
	rec := r.lastCommand(t)
	req.False(rec.Success)
	req.Equal(0, r.store.RoomStats().CommandsUsedToday)
	req.Equal("❌ Wrong password!", r.lastChat(t))
}

func TestDispatch_AdminOnlyDenied(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	r.room.Join("Alice")
	bob, _ := r.room.Join("Bob")

	// When Bob tries to kick without privileges
	r.room.Chat(bob.ID, "!kick Alice")

	// Then nobody is removed and the denial is audited
	req.Len(r.room.PlayerList(), 2)
	rec := r.lastCommand(t)
	req.Equal("kick", rec.CommandName)
	req.False(rec.Success)
	req.Equal(0, r.store.RoomStats().CommandsUsedToday)
	req.Equal("❌ This command requires admin privileges!", r.lastChat(t))
}

func TestDispatch_UnknownCommand(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")

	r.room.Chat(alice.ID, "!frobnicate now")

	rec := r.lastCommand(t)
	req.Equal("frobnicate", rec.CommandName)
	req.False(rec.Success)
	req.Equal(0, r.store.RoomStats().CommandsUsedToday)
	req.Contains(r.lastChat(t), "❓ Unknown command: !frobnicate")
}

func TestDispatch_KickBanClearbans(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	r.room.Join("Bob")

	admin := DashboardInvoker()

	// When Bob is banned by substring match, case-insensitive
	r.svc.Dispatch(admin, "!ban bO")

	// Then he is out, cannot rejoin, and the action was notified once
	req.Empty(r.room.PlayerList())
	_, ok := r.room.Join("Bob")
	req.False(ok)
	bans := lo.CountBy(r.notifier.all(), func(call string) bool {
		return strings.HasPrefix(call, "send:🔨")
	})
	req.Equal(1, bans)

	// When bans are cleared, twice
	r.svc.Dispatch(admin, "!clearbans")
	r.svc.Dispatch(admin, "!clearbans")

	// Then rejoining works and the second clear stayed a no-op success
	_, ok = r.room.Join("Bob")
	req.True(ok)
	req.Equal(0, r.room.BanCount())
	req.True(r.notifier.has("send:🧹"))
}

func TestDispatch_BanTargetNotFound(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")
	r.room.Chat(alice.ID, "!admin 1234")

	r.room.Chat(alice.ID, "!ban Carol")

	rec := r.lastCommand(t)
	req.False(rec.Success)
	req.Equal("❌ Player \"Carol\" not found!", r.lastChat(t))
	req.Len(r.room.PlayerList(), 1)
}

func TestDispatch_MuteSuppressesRelay(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	bob, _ := r.room.Join("Bob")

	r.svc.Dispatch(DashboardInvoker(), "!mute Bob")
	req.True(r.svc.IsMuted(bob.ID))

	// When the muted player chats
	r.room.Chat(bob.ID, "hello there")

	// Then nothing reaches the relay or the dashboard chat feed
	req.False(r.notifier.has("relay:Bob"))
	for _, e := range r.hub.ofType("chatMessage") {
		msg := e.(event.ChatMessage)
		req.NotEqual("hello there", msg.Message)
	}

	// But commands still go through
	r.room.Chat(bob.ID, "!ping")
	req.Contains(r.lastChat(t), "🏓 Pong! Bob")

	// And a second mute fails
	r.svc.Dispatch(DashboardInvoker(), "!mute Bob")
	req.False(r.lastCommand(t).Success)

	// Until unmuted
	r.svc.Dispatch(DashboardInvoker(), "!unmute Bob")
	req.False(r.svc.IsMuted(bob.ID))
	r.room.Chat(bob.ID, "back again")
	req.True(r.notifier.has("relay:Bob:back again"))
}

func TestDispatch_TopRanking(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	viewer, _ := r.room.Join("Viewer")

	// Given career goals A=5, B=9, C=7 in insertion order
	for _, entry := range []struct {
		name  string
		goals int
	}{{"A", 5}, {"B", 9}, {"C", 7}} {
		p := r.store.CreatePlayer(entry.name)
		g := entry.goals
		_, ok := r.store.UpdatePlayer(p.ID, domain.PlayerUpdate{TotalGoals: &g})
		req.True(ok)
	}

	r.room.Chat(viewer.ID, "!top")

	req.Equal("🏆 Top Players: 1. B (9 goals) | 2. C (7 goals) | 3. A (5 goals)", r.lastChat(t))
}

func TestDispatch_StatsDefaultsToInvoker(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")

	r.room.Chat(alice.ID, "!stats")

	req.Equal("📊 Alice: 0 goals, 0 assists, 0 games, 0 wins, 0 MVP", r.lastChat(t))
}

func TestDispatch_MoveAndTeams(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")
	r.room.Join("Bob")

	admin := DashboardInvoker()
	r.svc.Dispatch(admin, "!move Alice red")
	r.svc.Dispatch(admin, "!move Bob blue")

	roster := r.room.PlayerList()
	req.Equal(domain.TeamRed, roster[0].Team)
	req.Equal(domain.TeamBlue, roster[1].Team)

	// Swap flips Bob back to red
	r.svc.Dispatch(admin, "!swap Bob")
	req.Equal(domain.TeamRed, r.room.PlayerList()[1].Team)

	r.room.Chat(alice.ID, "!teams")
	req.Contains(r.lastChat(t), "🔴 Red: Alice, Bob")
}

func TestGameLifecycle_FinalizeAndCredit(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")
	bob, _ := r.room.Join("Bob")

	admin := DashboardInvoker()
	r.svc.Dispatch(admin, "!move Alice red")
	r.svc.Dispatch(admin, "!move Bob blue")

	// Given a running game with red winning 3-1, Alice scoring all red goals
	r.svc.Dispatch(admin, "!start")
	r.room.ScoreGoal(domain.TeamRed, alice.ID)
	r.room.ScoreGoal(domain.TeamRed, alice.ID)
	r.room.ScoreGoal(domain.TeamBlue, bob.ID)
	r.room.ScoreGoal(domain.TeamRed, alice.ID)

	// When the game stops
	r.svc.Dispatch(admin, "!stop")

	// Then the record is finalized
	games := r.store.AllGames()
	req.Len(games, 1)
	g := games[0]
	req.NotNil(g.EndedAt)
	req.Equal(3, g.RedScore)
	req.Equal(1, g.BlueScore)
	req.Equal("red", g.WinnerTeam)

	// And career stats are credited
	aliceStored, _ := r.store.GetPlayerByName("Alice")
	req.Equal(3, aliceStored.TotalGoals)
	req.Equal(1, aliceStored.GamesPlayed)
	req.Equal(1, aliceStored.Wins)
	req.Equal(1, aliceStored.MVPCount)
	req.Equal(g.MVPPlayerID, aliceStored.ID)

	bobStored, _ := r.store.GetPlayerByName("Bob")
	req.Equal(1, bobStored.TotalGoals)
	req.Equal(1, bobStored.GamesPlayed)
	req.Equal(0, bobStored.Wins)

	// And the result reached the notification channel and the dashboard
	req.True(r.notifier.has("result:red:3-1:Alice"))
	ends := r.hub.ofType("gameEnd")
	req.Len(ends, 1)
	end := ends[0].(event.GameEnd)
	req.Equal("Alice", end.MVP)
	req.Equal(1, r.store.RoomStats().GamesToday)
}

func TestHandlePlayerJoinLeave_Counters(t *testing.T) {
	req := require.New(t)
	r := newRig(t)

	alice, _ := r.room.Join("Alice")
	r.room.Join("Bob")

	stats := r.store.RoomStats()
	req.Equal(2, stats.CurrentPlayers)
	req.Equal(2, stats.TotalPlayersToday)
	req.True(r.notifier.has("join:Alice"))

	r.room.Leave(alice.ID)

	stats = r.store.RoomStats()
	req.Equal(1, stats.CurrentPlayers)
	req.Equal(2, stats.TotalPlayersToday)
	req.True(r.notifier.has("leave:Alice"))

	stored, _ := r.store.GetPlayerByName("Alice")
	req.NotNil(stored.LeftAt)

	// Rejoining reuses the record and clears the departure mark
	r.room.Join("Alice")
	stored, _ = r.store.GetPlayerByName("Alice")
	req.Nil(stored.LeftAt)
	req.Len(r.store.AllPlayers(), 2)
}

func TestHandleChat_RelayAndAudit(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")

	r.room.Chat(alice.ID, "nice goal!")

	req.True(r.notifier.has("relay:Alice:nice goal!"))
	messages := r.store.ChatMessages(1)
	req.Len(messages, 1)
	req.Equal("nice goal!", messages[0].Message)
	req.False(messages[0].IsCommand)

	events := r.hub.ofType("chatMessage")
	req.NotEmpty(events)
}

func TestSendDashboardChat(t *testing.T) {
	req := require.New(t)
	r := newRig(t)

	r.svc.SendDashboardChat("server restart in 5 minutes")

	req.Equal("📢 server restart in 5 minutes", r.lastChat(t))
	messages := r.store.ChatMessages(1)
	req.Len(messages, 1)
	req.True(messages[0].IsSystemMessage)
	req.Equal(dashboardPlayerName, messages[0].PlayerName)
}

func TestDispatch_HelpListsPublicCommands(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")

	r.room.Chat(alice.ID, "!help")
	first := r.lastChat(t)
	r.room.Chat(alice.ID, "!help")

	// Deterministic output, leading with the public commands
	req.Equal(first, r.lastChat(t))
	req.Contains(first, "!admin")
	req.NotContains(first, "!kick")
}

func TestDispatch_HelpDescribesSingleCommand(t *testing.T) {
	req := require.New(t)
	r := newRig(t)
	alice, _ := r.room.Join("Alice")

	r.room.Chat(alice.ID, "!help kick")
	req.Equal("📖 !kick [player] - Kick a player", r.lastChat(t))

	// The leading bang is optional
	r.room.Chat(alice.ID, "!help !top")
	req.Equal("📖 !top - Show top players", r.lastChat(t))

	r.room.Chat(alice.ID, "!help frobnicate")
	req.Contains(r.lastChat(t), "❓ Unknown command: !frobnicate")
}

func TestFormatClock(t *testing.T) {
	req := require.New(t)

	req.Equal("0:05", formatClock(5))
	req.Equal("1:00", formatClock(60))
	req.Equal("3:27", formatClock(207))
}
