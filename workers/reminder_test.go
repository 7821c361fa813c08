package workers

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
	"github.com/kokexgggguu/haxball/room"
	"github.com/kokexgggguu/haxball/store"
)

// stubNotifier counts reminder deliveries.
type stubNotifier struct {
	reminders atomic.Int32
}

func (s *stubNotifier) Send(string) bool                                           { return true }
func (s *stubNotifier) SendEmbed(string, string, int, ...contract.EmbedField) bool { return true }
func (s *stubNotifier) SendChatRelay(string, string) bool                          { return true }
func (s *stubNotifier) SendPlayerJoin(string) bool                                 { return true }
func (s *stubNotifier) SendPlayerLeave(string) bool                                { return true }
func (s *stubNotifier) SendReminder() bool {
	s.reminders.Add(1)
	return true
}
func (s *stubNotifier) SendGameResult(string, int, int, string, int) bool { return true }
func (s *stubNotifier) SendTestMessage() bool                             { return true }
func (s *stubNotifier) Status() contract.NotifierStatus                   { return contract.NotifierStatus{} }

// stubHub counts broadcasts per event type.
type stubHub struct {
	reminders atomic.Int32
}

func (s *stubHub) Broadcast(e event.DashboardEvent) {
	if e.EventType() == (event.DiscordReminder{}).EventType() {
		s.reminders.Add(1)
	}
}

func TestReminder_SkippedWhenRoomEmpty(t *testing.T) {
	req := require.New(t)
	rm := room.NewLocal(discardLogger())
	notifier := &stubNotifier{}
	w := NewReminderWorker(discardLogger(), store.NewMemStore(), rm, notifier, &stubHub{})

	// When a round fires with nobody seated
	w.remind()

	// Then nothing is sent anywhere
	req.Equal(int32(0), notifier.reminders.Load())
	req.Empty(rm.Transcript())
}

func TestReminder_SentWhenPlayersOnline(t *testing.T) {
	req := require.New(t)
	rm := room.NewLocal(discardLogger())
	rm.Join("Alice")
	notifier := &stubNotifier{}
	hub := &stubHub{}
	w := NewReminderWorker(discardLogger(), store.NewMemStore(), rm, notifier, hub)

	w.remind()

	req.Equal(int32(1), notifier.reminders.Load())
	req.Equal(int32(1), hub.reminders.Load())
	transcript := rm.Transcript()
	req.Len(transcript, 1)
	req.Contains(transcript[0], "!discord")
}

func TestReminder_IntervalFollowsSettings(t *testing.T) {
	req := require.New(t)
	st := store.NewMemStore()
	w := NewReminderWorker(discardLogger(), st, room.NewLocal(discardLogger()), &stubNotifier{}, &stubHub{})

	// Default settings carry the stock reminder interval
	req.Equal(st.RoomSettings().DiscordReminderInterval, int(w.interval().Seconds()))

	// A settings change moves the next tick
	secs := 60
	st.UpdateRoomSettings(domain.SettingsUpdate{DiscordReminderInterval: &secs})
	req.Equal(60, int(w.interval().Seconds()))
}
