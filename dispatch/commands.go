package dispatch

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
)

// Dispatch parses a raw "!" prefixed chat line and executes it on behalf of
// the invoker. Every invocation is audited; the daily command counter only
// moves on success.
func (s *Service) Dispatch(invoker domain.RoomPlayer, raw string) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "!") {
		return
	}
	fields := strings.Fields(raw[1:])
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	entry, known := catalogue[name]
	if !known {
		s.room.SendChatTo(fmt.Sprintf("❓ Unknown command: !%s. Type !help for available commands.", name), invoker.ID)
		s.audit(invoker, name, args, false)
		return
	}
	if entry.adminOnly && !s.isAdmin(invoker) {
		s.room.SendChatTo("❌ This command requires admin privileges!", invoker.ID)
		s.audit(invoker, name, args, false)
		return
	}
	if len(args) < entry.minArgs {
		s.room.SendChatTo(fmt.Sprintf("❌ Usage: %s", entry.usage), invoker.ID)
		s.audit(invoker, name, args, false)
		return
	}

	success := s.execute(invoker, name, args)
	s.audit(invoker, name, args, success)
	if !success {
		return
	}

	stats := s.store.RoomStats()
	used := stats.CommandsUsedToday + 1
	s.store.UpdateRoomStats(domain.StatsUpdate{CommandsUsedToday: &used})

	s.log.Info("command executed",
		slog.String("command", name),
		slog.String("invoker", invoker.Name))
}

// audit records the invocation and mirrors it to dashboard clients.
func (s *Service) audit(invoker domain.RoomPlayer, name string, args []string, success bool) {
	s.store.CreateCommand(name, invoker.Name, strings.Join(args, " "), success)
	s.hub.Broadcast(event.CommandExecuted{
		Player:  invoker.Name,
		Command: name,
		Args:    args,
		Success: success,
	})
}

func (s *Service) execute(invoker domain.RoomPlayer, name string, args []string) bool {
	switch name {
	case "admin":
		return s.cmdAdmin(invoker, args[0])
	case "kick":
		return s.cmdRemove(invoker, strings.Join(args, " "), false)
	case "ban", "bb":
		return s.cmdRemove(invoker, strings.Join(args, " "), true)
	case "clearbans":
		s.room.ClearBans()
		s.room.SendChat(fmt.Sprintf("🧹 All bans cleared by %s", invoker.Name))
		s.notifier.Send(fmt.Sprintf("🧹 **%s** cleared all bans", invoker.Name))
		return true
	case "mute":
		return s.cmdMute(invoker, strings.Join(args, " "), true)
	case "unmute":
		return s.cmdMute(invoker, strings.Join(args, " "), false)
	case "swap":
		return s.cmdSwap(invoker, strings.Join(args, " "))
	case "move":
		return s.cmdMove(invoker, args)
	case "start":
		s.room.StartGame()
		s.room.SendChat(fmt.Sprintf("▶️ Game started by %s", invoker.Name))
		return true
	case "stop":
		s.room.StopGame()
		s.room.SendChat(fmt.Sprintf("⏹️ Game stopped by %s", invoker.Name))
		return true
	case "pause":
		s.room.PauseGame(true)
		s.room.SendChat(fmt.Sprintf("⏸️ Game paused by %s", invoker.Name))
		return true
	case "rr", "reset":
		s.room.StopGame()
		time.AfterFunc(restartDelay, s.room.StartGame)
		s.room.SendChat(fmt.Sprintf("🔄 Game restarted by %s", invoker.Name))
		return true
	case "setadmin":
		return s.cmdSetAdmin(invoker, strings.Join(args, " "), true)
	case "unadmin":
		return s.cmdSetAdmin(invoker, strings.Join(args, " "), false)
	case "clear":
		for i := 0; i < clearChatLines; i++ {
			s.room.SendChat("")
		}
		s.room.SendChat(fmt.Sprintf("🧹 Chat cleared by %s", invoker.Name))
		return true
	case "help", "commands":
		s.cmdHelp(invoker, args)
		return true
	case "stats":
		s.cmdStats(invoker, args)
		return true
	case "games":
		s.room.SendChatTo(fmt.Sprintf("🎮 Total games played: %d", len(s.store.AllGames())), invoker.ID)
		return true
	case "wins", "goals", "assists", "mvp":
		s.cmdSingleStat(invoker, name, args)
		return true
	case "top":
		s.cmdTop(invoker)
		return true
	case "rank":
		s.cmdRank(invoker)
		return true
	case "discord":
		s.room.SendChatTo(fmt.Sprintf("💬 Join our Discord server: %s", s.inviteLink), invoker.ID)
		return true
	case "rules":
		s.room.SendChatTo("📜 Rules: 1. No insults 2. No spam 3. Play fair 4. Have fun!", invoker.ID)
		return true
	case "teams":
		s.cmdTeams(invoker)
		return true
	case "score":
		return s.cmdScore(invoker)
	case "time":
		return s.cmdTime(invoker)
	case "ping":
		s.room.SendChatTo(fmt.Sprintf("🏓 Pong! %s, your connection is stable.", invoker.Name), invoker.ID)
		return true
	case "online":
		settings := s.store.RoomSettings()
		s.room.SendChatTo(fmt.Sprintf("👥 %d/%d players online", len(s.room.PlayerList()), settings.MaxPlayers), invoker.ID)
		return true
	case "uptime":
		up := time.Since(s.startedAt)
		s.room.SendChatTo(fmt.Sprintf("⏰ Room uptime: %dh %dm", int(up.Hours()), int(up.Minutes())%60), invoker.ID)
		return true
	case "version":
		s.room.SendChatTo(fmt.Sprintf("🤖 Haxball Pro Bot v%s - Advanced room management system", Version), invoker.ID)
		return true
	case "afk":
		s.room.SetPlayerTeam(invoker.ID, domain.TeamSpectator)
		s.room.SendChat(fmt.Sprintf("💤 %s is now AFK", invoker.Name))
		return true
	case "website":
		s.room.SendChatTo(fmt.Sprintf("🌐 Website: %s", s.websiteURL), invoker.ID)
		return true
	case "donate":
		s.room.SendChatTo("💖 Support the room! Ask an admin for donation info.", invoker.ID)
		return true
	}
	return false
}

func (s *Service) cmdAdmin(invoker domain.RoomPlayer, password string) bool {
	settings := s.store.RoomSettings()
	if password != settings.AdminPassword {
		s.room.SendChatTo("❌ Wrong password!", invoker.ID)
		return false
	}
	s.room.SetPlayerAdmin(invoker.ID, true)
	s.grantAdmin(invoker.ID)
	if p, ok := s.store.GetPlayerByName(invoker.Name); ok {
		admin := true
		_, _ = s.store.UpdatePlayer(p.ID, domain.PlayerUpdate{IsAdmin: &admin})
	}
	s.room.SendChat(fmt.Sprintf("✅ %s is now an admin!", invoker.Name))
	s.notifier.Send(fmt.Sprintf("👑 **%s** became an admin", invoker.Name))
	return true
}

func (s *Service) cmdRemove(invoker domain.RoomPlayer, target string, ban bool) bool {
	p, ok := s.findPlayer(target)
	if !ok {
		s.room.SendChatTo(fmt.Sprintf("❌ Player \"%s\" not found!", target), invoker.ID)
		return false
	}
	if ban {
		s.forget(p.ID)
		s.room.KickPlayer(p.ID, fmt.Sprintf("Banned by %s", invoker.Name), true)
		s.room.SendChat(fmt.Sprintf("🔨 %s was banned by %s", p.Name, invoker.Name))
		s.notifier.Send(fmt.Sprintf("🔨 **%s** was banned by **%s**", p.Name, invoker.Name))
	} else {
		s.room.KickPlayer(p.ID, fmt.Sprintf("Kicked by %s", invoker.Name), false)
		s.room.SendChat(fmt.Sprintf("🦵 %s was kicked by %s", p.Name, invoker.Name))
		s.notifier.Send(fmt.Sprintf("🦵 **%s** was kicked by **%s**", p.Name, invoker.Name))
	}
	return true
}

func (s *Service) cmdMute(invoker domain.RoomPlayer, target string, mute bool) bool {
	p, ok := s.findPlayer(target)
	if !ok {
		s.room.SendChatTo(fmt.Sprintf("❌ Player \"%s\" not found!", target), invoker.ID)
		return false
	}
	if mute {
		if s.IsMuted(p.ID) {
			s.room.SendChatTo(fmt.Sprintf("❌ %s is already muted!", p.Name), invoker.ID)
			return false
		}
		s.setMuted(p.ID, true)
		s.room.SendChat(fmt.Sprintf("🔇 %s was muted by %s", p.Name, invoker.Name))
	} else {
		if !s.IsMuted(p.ID) {
			s.room.SendChatTo(fmt.Sprintf("❌ %s is not muted!", p.Name), invoker.ID)
			return false
		}
		s.setMuted(p.ID, false)
		s.room.SendChat(fmt.Sprintf("🔊 %s was unmuted by %s", p.Name, invoker.Name))
	}
	return true
}

func (s *Service) cmdSwap(invoker domain.RoomPlayer, target string) bool {
	p, ok := s.findPlayer(target)
	if !ok {
		s.room.SendChatTo(fmt.Sprintf("❌ Player \"%s\" not found!", target), invoker.ID)
		return false
	}
	var to domain.Team
	switch p.Team {
	case domain.TeamRed:
		to = domain.TeamBlue
	case domain.TeamBlue:
		to = domain.TeamRed
	default:
		s.room.SendChatTo(fmt.Sprintf("❌ %s is not on a team!", p.Name), invoker.ID)
		return false
	}
	s.room.SetPlayerTeam(p.ID, to)
	s.room.SendChat(fmt.Sprintf("↔️ %s was swapped to %s by %s", p.Name, to, invoker.Name))
	return true
}

func (s *Service) cmdMove(invoker domain.RoomPlayer, args []string) bool {
	team := args[len(args)-1]
	target := strings.Join(args[:len(args)-1], " ")
	p, ok := s.findPlayer(target)
	if !ok {
		s.room.SendChatTo(fmt.Sprintf("❌ Player \"%s\" not found!", target), invoker.ID)
		return false
	}
	to := domain.ParseTeam(team)
	s.room.SetPlayerTeam(p.ID, to)
	s.room.SendChat(fmt.Sprintf("↔️ %s was moved to %s by %s", p.Name, to, invoker.Name))
	return true
}

func (s *Service) cmdSetAdmin(invoker domain.RoomPlayer, target string, grant bool) bool {
	p, ok := s.findPlayer(target)
	if !ok {
		s.room.SendChatTo(fmt.Sprintf("❌ Player \"%s\" not found!", target), invoker.ID)
		return false
	}
	s.room.SetPlayerAdmin(p.ID, grant)
	if stored, found := s.store.GetPlayerByName(p.Name); found {
		_, _ = s.store.UpdatePlayer(stored.ID, domain.PlayerUpdate{IsAdmin: &grant})
	}
	if grant {
		s.grantAdmin(p.ID)
		s.room.SendChat(fmt.Sprintf("👑 %s was given admin by %s", p.Name, invoker.Name))
		s.notifier.Send(fmt.Sprintf("👑 **%s** was given admin by **%s**", p.Name, invoker.Name))
	} else {
		s.revokeAdmin(p.ID)
		s.room.SendChat(fmt.Sprintf("👑 %s's admin was removed by %s", p.Name, invoker.Name))
		s.notifier.Send(fmt.Sprintf("👑 **%s**'s admin was removed by **%s**", p.Name, invoker.Name))
	}
	return true
}

func (s *Service) cmdHelp(invoker domain.RoomPlayer, args []string) {
	if len(args) > 0 {
		name := strings.TrimPrefix(strings.ToLower(args[0]), "!")
		entry, known := catalogue[name]
		if !known {
			s.room.SendChatTo(fmt.Sprintf("❓ Unknown command: !%s. Type !help for available commands.", name), invoker.ID)
			return
		}
		s.room.SendChatTo(fmt.Sprintf("📖 %s - %s", entry.usage, entry.desc), invoker.ID)
		return
	}
	public := lo.Filter(catalogueOrder, func(n string, _ int) bool {
		return !catalogue[n].adminOnly
	})
	shown := public
	if len(shown) > 8 {
		shown = shown[:8]
	}
	listed := lo.Map(shown, func(n string, _ int) string { return "!" + n })
	s.room.SendChatTo(fmt.Sprintf("📋 Commands: %s and more! Join Discord: !discord", strings.Join(listed, ", ")), invoker.ID)
}

func (s *Service) cmdStats(invoker domain.RoomPlayer, args []string) {
	target := invoker.Name
	if len(args) > 0 {
		target = strings.Join(args, " ")
	}
	p, _ := s.store.GetPlayerByName(target)
	s.room.SendChatTo(fmt.Sprintf("📊 %s: %d goals, %d assists, %d games, %d wins, %d MVP",
		target, p.TotalGoals, p.TotalAssists, p.GamesPlayed, p.Wins, p.MVPCount), invoker.ID)
}

func (s *Service) cmdSingleStat(invoker domain.RoomPlayer, stat string, args []string) {
	target := invoker.Name
	if len(args) > 0 {
		target = strings.Join(args, " ")
	}
	p, _ := s.store.GetPlayerByName(target)
	switch stat {
	case "wins":
		s.room.SendChatTo(fmt.Sprintf("🏆 %s has %d wins", target, p.Wins), invoker.ID)
	case "goals":
		s.room.SendChatTo(fmt.Sprintf("⚽ %s has scored %d goals", target, p.TotalGoals), invoker.ID)
	case "assists":
		s.room.SendChatTo(fmt.Sprintf("🤝 %s has %d assists", target, p.TotalAssists), invoker.ID)
	case "mvp":
		s.room.SendChatTo(fmt.Sprintf("⭐ %s has been MVP %d times", target, p.MVPCount), invoker.ID)
	}
}

// rankedByGoals returns all stored players sorted by career goals, ties kept
// in insertion order.
func (s *Service) rankedByGoals() []domain.Player {
	players := s.store.AllPlayers()
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TotalGoals > players[j].TotalGoals
	})
	return players
}

func (s *Service) cmdTop(invoker domain.RoomPlayer) {
	ranked := s.rankedByGoals()
	if len(ranked) == 0 {
		s.room.SendChatTo("🏆 No player data yet!", invoker.ID)
		return
	}
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	lines := lo.Map(ranked, func(p domain.Player, i int) string {
		return fmt.Sprintf("%d. %s (%d goals)", i+1, p.Name, p.TotalGoals)
	})
	s.room.SendChatTo(fmt.Sprintf("🏆 Top Players: %s", strings.Join(lines, " | ")), invoker.ID)
}

func (s *Service) cmdRank(invoker domain.RoomPlayer) {
	ranked := s.rankedByGoals()
	for i, p := range ranked {
		if strings.EqualFold(p.Name, invoker.Name) {
			s.room.SendChatTo(fmt.Sprintf("📊 %s, you are ranked #%d of %d players", invoker.Name, i+1, len(ranked)), invoker.ID)
			return
		}
	}
	s.room.SendChatTo("📊 You are not ranked yet. Score some goals!", invoker.ID)
}

func (s *Service) cmdTeams(invoker domain.RoomPlayer) {
	roster := s.room.PlayerList()
	names := func(team domain.Team) []string {
		return lo.FilterMap(roster, func(p domain.RoomPlayer, _ int) (string, bool) {
			return p.Name, p.Team == team
		})
	}
	red := names(domain.TeamRed)
	blue := names(domain.TeamBlue)
	specs := names(domain.TeamSpectator)
	s.room.SendChatTo(fmt.Sprintf("🔴 Red: %s | 🔵 Blue: %s | 👥 Specs: %d",
		joinOrNone(red), joinOrNone(blue), len(specs)), invoker.ID)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func (s *Service) cmdScore(invoker domain.RoomPlayer) bool {
	scores := s.room.Scores()
	if scores == nil {
		s.room.SendChatTo("❌ No game in progress!", invoker.ID)
		return false
	}
	s.room.SendChatTo(fmt.Sprintf("⚽ Score: Red %d - %d Blue | Time: %s",
		scores.Red, scores.Blue, formatClock(scores.Time)), invoker.ID)
	return true
}

func (s *Service) cmdTime(invoker domain.RoomPlayer) bool {
	scores := s.room.Scores()
	if scores == nil {
		s.room.SendChatTo("❌ No game in progress!", invoker.ID)
		return false
	}
	s.room.SendChatTo(fmt.Sprintf("⏱️ Elapsed time: %s", formatClock(scores.Time)), invoker.ID)
	return true
}
