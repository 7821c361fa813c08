package archive

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kokexgggguu/haxball/domain"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := Open(t.TempDir(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func finishedGame(endedAt time.Time, winner string) domain.Game {
	started := endedAt.Add(-5 * time.Minute)
	return domain.Game{
		ID:         uuid.NewString(),
		StartedAt:  started,
		EndedAt:    &endedAt,
		RedScore:   3,
		BlueScore:  1,
		WinnerTeam: winner,
		Duration:   300,
	}
}

func TestArchive_SaveAndListGames(t *testing.T) {
	req := require.New(t)
	a := openTestArchive(t)

	// Given three games finished a minute apart
	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		g := finishedGame(base.Add(time.Duration(i)*time.Minute), "red")
		ids = append(ids, g.ID)
		req.NoError(a.SaveGame(g))
	}

	// Then RecentGames returns most recent first
	games, err := a.RecentGames(10)
	req.NoError(err)
	req.Len(games, 3)
	req.Equal(ids[2], games[0].ID)
	req.Equal(ids[0], games[2].ID)
	req.Equal("red", games[0].WinnerTeam)
	req.NotNil(games[0].EndedAt)
}

func TestArchive_RecentGamesLimit(t *testing.T) {
	req := require.New(t)
	a := openTestArchive(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		req.NoError(a.SaveGame(finishedGame(base.Add(time.Duration(i)*time.Minute), "blue")))
	}

	games, err := a.RecentGames(2)
	req.NoError(err)
	req.Len(games, 2)
}

func TestArchive_EmptyScan(t *testing.T) {
	req := require.New(t)
	a := openTestArchive(t)

	games, err := a.RecentGames(10)
	req.NoError(err)
	req.Empty(games)
}

func TestArchive_PlayerSnapshotUpsert(t *testing.T) {
	req := require.New(t)
	a := openTestArchive(t)

	player := domain.Player{ID: uuid.NewString(), Name: "Alice", TotalGoals: 3}
	req.NoError(a.SavePlayer(player))

	// A later snapshot for the same name wins
	player.TotalGoals = 7
	req.NoError(a.SavePlayer(player))

	loaded, found, err := a.GetPlayer("Alice")
	req.NoError(err)
	req.True(found)
	req.Equal(7, loaded.TotalGoals)

	_, found, err = a.GetPlayer("Nobody")
	req.NoError(err)
	req.False(found)
}

func TestArchive_SurvivesReopen(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	a, err := Open(dir, log)
	req.NoError(err)
	g := finishedGame(time.Now(), "draw")
	req.NoError(a.SaveGame(g))
	req.NoError(a.Close())

	reopened, err := Open(dir, log)
	req.NoError(err)
	defer func() { req.NoError(reopened.Close()) }()

	games, err := reopened.RecentGames(1)
	req.NoError(err)
	req.Len(games, 1)
	req.Equal(g.ID, games[0].ID)
}

func TestArchive_KeyOrderingAcrossNanos(t *testing.T) {
	req := require.New(t)
	a := openTestArchive(t)

	// Padded stamps keep lexicographic and chronological order aligned even
	// across digit-count boundaries
	early := time.Unix(0, 999)
	late := time.Unix(0, 1000)
	g1 := finishedGame(early, "red")
	g2 := finishedGame(late, "blue")
	req.NoError(a.SaveGame(g1))
	req.NoError(a.SaveGame(g2))

	games, err := a.RecentGames(0)
	req.NoError(err)
	req.Len(games, 2)
	req.Equal(g2.ID, games[0].ID, fmt.Sprintf("expected %s first", g2.ID))
}
