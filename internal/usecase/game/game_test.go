package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "maedn/internal/domain/game"
	"maedn/internal/errors"
	"maedn/internal/random"
)

var allColors = []domain.PlayerColor{domain.Red, domain.Green, domain.Yellow, domain.Blue}

func newTestGame(roller domain.Roller) *Game {
	return NewGame(zap.NewNop().Sugar(), func() domain.Roller { return roller })
}

func startedGame(t *testing.T, roller domain.Roller) *Game {
	t.Helper()
	g := newTestGame(roller)
	for i := 0; i < domain.TableSize; i++ {
		_, err := g.Register(domain.NoColor, "player", "test", 1.0)
		require.NoError(t, err)
	}
	for i, c := range allColors {
		started := g.SetReady(c, true)
		require.Equal(t, i == len(allColors)-1, started)
	}
	return g
}

func selection(i int) *int {
	return &i
}

func TestRegisterAssignsColorsInSlotOrder(t *testing.T) {
	g := newTestGame(random.NewSequence(1))
	for _, want := range allColors {
		got, err := g.Register(domain.NoColor, "p", "test", 1.0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := g.Register(domain.Red, "fifth", "test", 1.0)
	assert.ErrorIs(t, err, errors.ErrGameFull)
	assert.Equal(t, domain.NoColor, got)
}

func TestRegisterSubstitutesTakenColor(t *testing.T) {
	g := newTestGame(random.NewSequence(1))
	requests := []domain.PlayerColor{domain.Blue, domain.Blue, domain.Green, domain.Green}
	want := []domain.PlayerColor{domain.Blue, domain.Red, domain.Green, domain.Yellow}

	seen := map[domain.PlayerColor]bool{}
	for i, req := range requests {
		got, err := g.Register(req, "p", "test", 1.0)
		require.NoError(t, err)
		assert.Equal(t, want[i], got)
		seen[got] = true
	}
	assert.Len(t, seen, domain.TableSize)
}

func TestFifthRegisterFailsWhileRunning(t *testing.T) {
	g := startedGame(t, random.NewSequence(1))
	_, err := g.Register(domain.NoColor, "late", "test", 1.0)
	assert.ErrorIs(t, err, errors.ErrGameFull)
}

func TestRemoveInLobbyFreesSeat(t *testing.T) {
	g := newTestGame(random.NewSequence(1))
	_, err := g.Register(domain.NoColor, "a", "test", 1.0)
	require.NoError(t, err)
	_, err = g.Register(domain.NoColor, "b", "test", 1.0)
	require.NoError(t, err)

	g.Remove(domain.Red)
	assert.Len(t, g.Snapshot().Players, 1)

	got, err := g.Register(domain.NoColor, "c", "test", 1.0)
	require.NoError(t, err)
	assert.Equal(t, domain.Red, got)
}

func TestStaleColorReferencesAreIgnored(t *testing.T) {
	g := newTestGame(random.NewSequence(1))
	g.Remove(domain.Yellow)
	assert.False(t, g.SetReady(domain.Yellow, true))
	assert.Equal(t, domain.StateWaitingForPlayers, g.State())
}

func TestRemoveWhileRunningKeepsSeat(t *testing.T) {
	g := startedGame(t, random.NewSequence(1))
	g.Remove(domain.Green)

	snap := g.Snapshot()
	require.Len(t, snap.Players, domain.TableSize)
	assert.Equal(t, domain.Green, snap.Players[1].Color)
	assert.False(t, snap.Players[1].Connected)
	assert.Equal(t, domain.ControllerHuman, snap.Players[1].Controller)
	assert.Equal(t, domain.StateRunning, g.State())
}

func TestSetReadyStartsOnlyWithFullReadyTable(t *testing.T) {
	g := newTestGame(random.NewSequence(1))
	for i := 0; i < 3; i++ {
		c, err := g.Register(domain.NoColor, "p", "test", 1.0)
		require.NoError(t, err)
		assert.False(t, g.SetReady(c, true))
	}
	assert.Equal(t, domain.StateWaitingForPlayers, g.State())
	assert.Equal(t, domain.NoColor, g.CurrentPlayer())

	blue, err := g.Register(domain.NoColor, "p", "test", 1.0)
	require.NoError(t, err)
	assert.False(t, g.SetReady(domain.Red, true))
	assert.Equal(t, domain.StateWaitingForPlayers, g.State())

	assert.True(t, g.SetReady(blue, true))
	assert.Equal(t, domain.StateRunning, g.State())
	assert.Equal(t, domain.Red, g.CurrentPlayer())

	snap := g.Snapshot()
	assert.Equal(t, domain.Six, snap.Players[0].Dice)
	assert.False(t, g.SetReady(blue, false))
}

func TestOpeningTurn(t *testing.T) {
	g := startedGame(t, random.NewSequence(3))

	first := g.Turn(nil)
	require.Len(t, first.Options, 1)
	opt := first.Options[0]
	assert.Equal(t, 0, opt.Figure)
	assert.Equal(t, domain.At(domain.ZoneStart, 0), opt.Position)
	assert.Equal(t, domain.At(domain.ZoneField, 0), *opt.NewPosition)
	assert.Equal(t, first, g.Turn(nil))

	assert.Equal(t, domain.OKResponse(), g.Turn(selection(0)))
	assert.Equal(t, domain.Red, g.CurrentPlayer())
	assert.Equal(t, 3, g.Snapshot().Players[0].Dice)

	second := g.Turn(nil)
	require.Len(t, second.Options, 1)
	assert.Equal(t, domain.At(domain.ZoneField, 3), *second.Options[0].NewPosition)

	assert.Equal(t, domain.OKResponse(), g.Turn(selection(0)))
	assert.Equal(t, domain.Green, g.CurrentPlayer())

	snap := g.Snapshot()
	assert.Equal(t, domain.Unrolled, snap.Players[0].Dice)
	assert.Equal(t, domain.Six, snap.Players[1].Dice)
}

func TestPassRequiresNoLegalMove(t *testing.T) {
	g := startedGame(t, random.NewSequence(1))
	assert.True(t, g.Turn(selection(-1)).Empty())
	assert.Equal(t, domain.Red, g.CurrentPlayer())

	red := g.players[domain.Red]
	for i := 0; i < 3; i++ {
		place(red.Figures[i], domain.ZoneHome, i)
	}
	place(red.Figures[3], domain.ZoneField, 39)
	setRoll(red, 5)

	assert.Empty(t, g.Turn(nil).Options)
	assert.Equal(t, domain.OKResponse(), g.Turn(selection(-1)))
	assert.Equal(t, domain.Green, g.CurrentPlayer())
	assert.Equal(t, domain.Six, g.Snapshot().Players[1].Dice)
}

func TestPassOnSixKeepsPlayer(t *testing.T) {
	g := startedGame(t, random.NewSequence(6, 2))
	red := g.players[domain.Red]
	for i := 0; i < 3; i++ {
		place(red.Figures[i], domain.ZoneHome, i)
	}
	place(red.Figures[3], domain.ZoneField, 39)
	require.Equal(t, 6, red.Dice.Roll())

	assert.Empty(t, g.Turn(nil).Options)
	assert.Equal(t, domain.OKResponse(), g.Turn(selection(-1)))
	assert.Equal(t, domain.Red, g.CurrentPlayer())
	assert.Equal(t, 2, g.Snapshot().Players[0].Dice)
}

func TestInvalidSelectionIsNoop(t *testing.T) {
	g := startedGame(t, random.NewSequence(1))
	before := g.Snapshot()

	assert.True(t, g.Turn(selection(0)).Empty(), "submit without query")
	require.Len(t, g.Turn(nil).Options, 1)
	assert.True(t, g.Turn(selection(3)).Empty(), "index not offered")
	assert.True(t, g.Turn(selection(7)).Empty(), "index out of range")
	assert.Equal(t, before, g.Snapshot())
}

func TestStaleOptionIsRevalidated(t *testing.T) {
	g := startedGame(t, random.NewSequence(1))
	require.Len(t, g.Turn(nil).Options, 1)

	// The entry square fills up between query and submit.
	place(g.players[domain.Red].Figures[1], domain.ZoneField, domain.EntrySquare(domain.Red))
	assert.True(t, g.Turn(selection(0)).Empty())
	assert.Equal(t, domain.ZoneStart, g.players[domain.Red].Figures[0].Zone())
	assert.Equal(t, domain.Red, g.CurrentPlayer())
}

func TestTurnBeforeStartIsIgnored(t *testing.T) {
	g := newTestGame(random.NewSequence(1))
	assert.True(t, g.Turn(nil).Empty())
	assert.True(t, g.Turn(selection(-1)).Empty())
}

func TestWinFinishesGame(t *testing.T) {
	g := startedGame(t, random.NewSequence(1))
	red := g.players[domain.Red]
	for i := 0; i < 3; i++ {
		place(red.Figures[i], domain.ZoneHome, i)
	}
	place(red.Figures[3], domain.ZoneField, 38)
	setRoll(red, 5)

	opts := g.Turn(nil)
	require.Len(t, opts.Options, 1)
	assert.Equal(t, 3, opts.Options[0].Figure)

	assert.Equal(t, domain.FinishedResponse(), g.Turn(selection(3)))
	assert.Equal(t, domain.StateFinished, g.State())
	assert.Equal(t, domain.Red, g.Winner())
	assert.Equal(t, domain.NoColor, g.CurrentPlayer())

	before := g.Snapshot()
	assert.True(t, g.Turn(nil).Empty())
	assert.True(t, g.Turn(selection(3)).Empty())
	assert.Equal(t, before, g.Snapshot())

	raw, err := json.Marshal(before)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "RED", decoded["winner"])
	assert.Equal(t, "null", decoded["currentPlayer"])
	assert.Equal(t, "FINISHED", decoded["state"])

	result, ok := g.Result()
	require.True(t, ok)
	assert.Equal(t, domain.Red, result.Winner)
	assert.Equal(t, g.MatchID(), result.MatchID)
	assert.Equal(t, 1, result.Turns)
}

func TestTurnOrderIsCyclic(t *testing.T) {
	g := startedGame(t, random.NewSeededDie(7))
	g.Remove(domain.Yellow)

	sequence := []domain.PlayerColor{g.CurrentPlayer()}
	for step := 0; step < 5000 && g.State() == domain.StateRunning; step++ {
		resp := g.Turn(nil)
		if len(resp.Options) > 0 {
			require.False(t, g.Turn(selection(resp.Options[0].Figure)).Empty())
		} else {
			require.Equal(t, domain.OKResponse(), g.Turn(selection(-1)))
		}
		if c := g.CurrentPlayer(); c != domain.NoColor && c != sequence[len(sequence)-1] {
			sequence = append(sequence, c)
		}
	}

	for i, c := range sequence {
		assert.Equal(t, allColors[i%len(allColors)], c, "position %d", i)
	}
	if g.State() == domain.StateFinished {
		winner := g.Snapshot().Players[g.Winner().Slot()]
		for _, f := range winner.Figures {
			assert.Equal(t, domain.ZoneHome, f.Position.Zone)
		}
	}
}

func TestSnapshotJSON(t *testing.T) {
	g := newTestGame(random.NewSequence(1))
	raw, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"WAITINGFORPLAYERS","currentPlayer":"null","winner":"null","players":[]}`, string(raw))

	_, err = g.Register(domain.NoColor, "alice", "cli", 1.5)
	require.NoError(t, err)
	raw, err = json.Marshal(g.Snapshot().Players[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"color":"RED","name":"alice","clientName":"cli","clientVersion":1.5,
		"ready":false,"connected":true,"controller":"human","dice":0,
		"figures":[
			{"figure":0,"color":"RED","position":["start",0]},
			{"figure":1,"color":"RED","position":["start",1]},
			{"figure":2,"color":"RED","position":["start",2]},
			{"figure":3,"color":"RED","position":["start",3]}
		]}`, string(raw))
}

func TestConcurrentPlayersReachRunning(t *testing.T) {
	g := NewGame(zap.NewNop().Sugar(), func() domain.Roller { return random.NewDie() })

	colors := make(chan domain.PlayerColor, domain.TableSize)
	var wg sync.WaitGroup
	for i := 0; i < domain.TableSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			color, err := g.Register(domain.NoColor, "player", "test", 1.0)
			if !assert.NoError(t, err) {
				return
			}
			colors <- color
			for j := 0; j < 10; j++ {
				g.Turn(nil)
				_ = g.Snapshot()
			}
			g.SetReady(color, true)
			for j := 0; j < 10; j++ {
				g.Turn(nil)
				_ = g.CurrentPlayer()
			}
		}()
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = json.Marshal(g.Snapshot())
				g.Remove(domain.NoColor)
			}
		}()
	}
	wg.Wait()
	close(colors)

	seen := make(map[domain.PlayerColor]bool)
	for c := range colors {
		assert.False(t, seen[c], "color %s assigned twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, domain.TableSize)
	assert.Equal(t, domain.StateRunning, g.State())
	assert.Len(t, g.Snapshot().Players, domain.TableSize)
	assert.NotEqual(t, domain.NoColor, g.CurrentPlayer())
}
