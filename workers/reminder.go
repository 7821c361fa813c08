package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain/event"
)

const reminderChat = "🎮 Having fun? Invite your friends! Discord: !discord"

// ReminderWorker periodically promotes the Discord server, both in room chat
// and on the notification channel. Reminders are skipped while the room is
// empty. The interval follows the live room settings, so a dashboard change
// takes effect at the next tick.
type ReminderWorker struct {
	log      *slog.Logger
	store    contract.Store
	room     contract.Room
	notifier contract.Notifier
	hub      contract.Broadcaster
}

func NewReminderWorker(log *slog.Logger, store contract.Store, room contract.Room, notifier contract.Notifier, hub contract.Broadcaster) *ReminderWorker {
	return &ReminderWorker{
		log:      log.With(slog.String("component", "reminder")),
		store:    store,
		room:     room,
		notifier: notifier,
		hub:      hub,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	timer := time.NewTimer(w.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			w.remind()
			timer.Reset(w.interval())
		}
	}
}

func (w *ReminderWorker) interval() time.Duration {
	return time.Duration(w.store.RoomSettings().DiscordReminderInterval) * time.Second
}

// remind runs one reminder round. Sequential on purpose: a slow delivery
// delays the next tick instead of overlapping it.
func (w *ReminderWorker) remind() {
	if len(w.room.PlayerList()) == 0 {
		w.log.Debug("room empty, reminder skipped")
		return
	}
	w.room.SendChat(reminderChat)
	w.notifier.SendReminder()
	w.hub.Broadcast(event.DiscordReminder{})
	w.log.Info("reminder sent")
}
