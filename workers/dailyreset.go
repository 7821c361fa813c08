package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
)

// DailyResetWorker zeroes the "today" aggregates at local midnight.
// CurrentPlayers is left alone; it tracks the live roster, not a day.
type DailyResetWorker struct {
	log   *slog.Logger
	store contract.Store
}

func NewDailyResetWorker(log *slog.Logger, store contract.Store) *DailyResetWorker {
	return &DailyResetWorker{
		log:   log.With(slog.String("component", "dailyreset")),
		store: store,
	}
}

func (w *DailyResetWorker) Run(ctx context.Context) error {
	for {
		timer := time.NewTimer(time.Until(nextMidnight(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			w.reset()
		}
	}
}

func (w *DailyResetWorker) reset() {
	zero := 0
	w.store.UpdateRoomStats(domain.StatsUpdate{
		TotalPlayersToday:    &zero,
		CommandsUsedToday:    &zero,
		DiscordMessagesToday: &zero,
		GamesToday:           &zero,
	})
	w.log.Info("daily counters reset")
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
