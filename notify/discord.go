// Package notify delivers room happenings to a Discord channel. Every
// delivery is a single best-effort attempt recorded in the activity log;
// a missing token simply leaves the notifier disconnected.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
)

const (
	colorGreen = 0x00ff00
	colorBlue  = 0x0099ff
	colorGold  = 0xffd700
)

// channelSender is the slice of the Discord session the notifier needs.
// *discordgo.Session satisfies it.
type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier implements contract.Notifier over a Discord bot session.
type DiscordNotifier struct {
	log        *slog.Logger
	store      contract.Store
	hub        contract.Broadcaster
	channelID  string
	inviteLink string

	mu        sync.Mutex
	sender    channelSender
	session   *discordgo.Session
	connected bool
}

// NewDiscordNotifier builds the notifier without connecting. An empty token
// or channel ID yields a permanently disconnected notifier; every send then
// records a failed attempt and returns false.
func NewDiscordNotifier(log *slog.Logger, store contract.Store, hub contract.Broadcaster, token, channelID, inviteLink string) (*DiscordNotifier, error) {
	n := &DiscordNotifier{
		log:        log.With(slog.String("component", "notify")),
		store:      store,
		hub:        hub,
		channelID:  channelID,
		inviteLink: inviteLink,
	}
	if token == "" || channelID == "" {
		n.log.Warn("discord disabled, token or channel missing")
		return n, nil
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages
	n.session = session
	return n, nil
}

// Connect opens the Discord gateway. Safe to call on a disabled notifier.
func (n *DiscordNotifier) Connect() error {
	n.mu.Lock()
	session := n.session
	n.mu.Unlock()
	if session == nil {
		return nil
	}

	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Ready) {
		n.setConnected(true, "")
	})
	session.AddHandler(func(_ *discordgo.Session, d *discordgo.Disconnect) {
		n.setConnected(false, "gateway disconnected")
	})

	if err := session.Open(); err != nil {
		n.setConnected(false, err.Error())
		return fmt.Errorf("opening discord session: %w", err)
	}

	n.mu.Lock()
	n.sender = session
	n.mu.Unlock()
	return nil
}

// Close shuts the gateway down.
func (n *DiscordNotifier) Close() error {
	n.mu.Lock()
	session := n.session
	n.mu.Unlock()
	if session == nil {
		return nil
	}
	n.setConnected(false, "")
	return session.Close()
}

func (n *DiscordNotifier) setConnected(connected bool, reason string) {
	n.mu.Lock()
	changed := n.connected != connected
	n.connected = connected
	n.mu.Unlock()

	if !changed {
		return
	}
	if connected {
		n.log.Info("discord connected", slog.String("channel", n.channelID))
	} else {
		n.log.Warn("discord disconnected", slog.String("reason", reason))
	}
	n.hub.Broadcast(event.DiscordStatus{Connected: connected, Error: reason})
}

func (n *DiscordNotifier) isConnected() (channelSender, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sender, n.connected && n.sender != nil
}

// deliver runs one send attempt and books the outcome.
func (n *DiscordNotifier) deliver(activityType, logMessage string, attempt func(channelSender) error) bool {
	sender, ok := n.isConnected()
	if !ok {
		n.store.CreateDiscordActivity(activityType, logMessage, false)
		return false
	}

	if err := attempt(sender); err != nil {
		n.log.Error("discord send failed", slog.String("type", activityType), slog.Any("error", err))
		n.store.CreateDiscordActivity(activityType, logMessage, false)
		return false
	}

	n.store.CreateDiscordActivity(activityType, logMessage, true)
	stats := n.store.RoomStats()
	sent := stats.DiscordMessagesToday + 1
	n.store.UpdateRoomStats(domain.StatsUpdate{DiscordMessagesToday: &sent})
	return true
}

func (n *DiscordNotifier) Send(content string) bool {
	return n.deliver(domain.ActivityMessage, content, func(s channelSender) error {
		_, err := s.ChannelMessageSend(n.channelID, content)
		return err
	})
}

func (n *DiscordNotifier) SendEmbed(title, description string, color int, fields ...contract.EmbedField) bool {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	}
	for _, f := range fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return n.deliver(domain.ActivityEmbed, title, func(s channelSender) error {
		_, err := s.ChannelMessageSendEmbed(n.channelID, embed)
		return err
	})
}

func (n *DiscordNotifier) SendChatRelay(playerName, message string) bool {
	return n.Send(fmt.Sprintf("💬 **%s**: %s", playerName, message))
}

func (n *DiscordNotifier) SendPlayerJoin(playerName string) bool {
	return n.deliver(domain.ActivityPlayerJoin, playerName, func(s channelSender) error {
		_, err := s.ChannelMessageSend(n.channelID, fmt.Sprintf("🟢 **%s** joined the room", playerName))
		return err
	})
}

func (n *DiscordNotifier) SendPlayerLeave(playerName string) bool {
	return n.Send(fmt.Sprintf("🔴 **%s** left the room", playerName))
}

// SendReminder posts the periodic room promotion embed.
func (n *DiscordNotifier) SendReminder() bool {
	embed := &discordgo.MessageEmbed{
		Title:       "🎮 Haxball Room Active!",
		Description: fmt.Sprintf("Join us for some games! Invite: %s", n.inviteLink),
		Color:       colorBlue,
	}
	return n.deliver(domain.ActivityReminder, "room reminder", func(s channelSender) error {
		_, err := s.ChannelMessageSendEmbed(n.channelID, embed)
		return err
	})
}

func (n *DiscordNotifier) SendGameResult(winnerTeam string, redScore, blueScore int, mvp string, duration int) bool {
	description := "🤝 The game ended in a draw!"
	switch winnerTeam {
	case "red":
		description = "🔴 Red team wins!"
	case "blue":
		description = "🔵 Blue team wins!"
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Game Results",
		Description: description,
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score", Value: fmt.Sprintf("🔴 %d - %d 🔵", redScore, blueScore), Inline: true},
			{Name: "Duration", Value: formatClock(duration), Inline: true},
		},
	}
	if mvp != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "MVP", Value: fmt.Sprintf("⭐ %s", mvp), Inline: true,
		})
	}
	return n.deliver(domain.ActivityGameResult, fmt.Sprintf("%s %d-%d", winnerTeam, redScore, blueScore), func(s channelSender) error {
		_, err := s.ChannelMessageSendEmbed(n.channelID, embed)
		return err
	})
}

func (n *DiscordNotifier) SendTestMessage() bool {
	return n.Send("🤖 Test message from dashboard - connection working!")
}

func (n *DiscordNotifier) Status() contract.NotifierStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return contract.NotifierStatus{Connected: n.connected, ChannelID: n.channelID}
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
