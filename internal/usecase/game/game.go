package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "maedn/internal/domain/game"
	"maedn/internal/errors"
)

// RollerFactory hands every new player its own die.
type RollerFactory func() domain.Roller

// Game is the authoritative state machine of one match. Every exported
// method holds the game lock for its whole duration and never blocks on I/O.
type Game struct {
	mu sync.Mutex

	log     *zap.SugaredLogger
	rules   RuleSet
	rollers RollerFactory
	now     func() time.Time

	matchID       string
	colors        *domain.ColorRegistry
	players       Players
	currentTurn   map[int]*domain.Figure
	state         domain.GameState
	currentPlayer domain.PlayerColor
	winner        domain.PlayerColor

	startedAt  time.Time
	finishedAt time.Time
	turns      int
}

func NewGame(log *zap.SugaredLogger, rollers RollerFactory) *Game {
	return &Game{
		log:           log,
		rollers:       rollers,
		now:           time.Now,
		matchID:       uuid.New().String(),
		colors:        domain.NewColorRegistry(),
		players:       make(Players, domain.TableSize),
		currentTurn:   make(map[int]*domain.Figure),
		state:         domain.StateWaitingForPlayers,
		currentPlayer: domain.NoColor,
		winner:        domain.NoColor,
	}
}

// Register seats a new player. A taken or absent requested color is replaced
// by the lowest free one.
func (g *Game) Register(requested domain.PlayerColor, name, clientName string, clientVersion float64) (domain.PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= domain.TableSize {
		return domain.NoColor, errors.ErrGameFull
	}
	if g.state != domain.StateWaitingForPlayers {
		return domain.NoColor, errors.ErrRegistrationClosed
	}
	assigned, ok := g.colors.Claim(requested)
	if !ok {
		return domain.NoColor, errors.ErrGameFull
	}

	player := domain.NewPlayer(assigned, name, clientName, clientVersion, g.rollers())
	g.players[assigned] = player
	g.log.Infof("New player registered: %s", player)
	return assigned, nil
}

// Remove handles a disconnect. In the lobby the seat is freed; in a running
// match the player stays so turn order is unaffected.
func (g *Game) Remove(color domain.PlayerColor) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, ok := g.players[color]
	if !ok {
		g.log.Debugf("Remove ignored, no player for %s", color)
		return
	}
	g.log.Infof("Player disconnected: %s", player)

	switch g.state {
	case domain.StateWaitingForPlayers:
		g.colors.Release(color)
		delete(g.players, color)
	case domain.StateRunning:
		g.colors.Release(color)
		player.Disconnect()
	}
}

// SetReady updates a player's ready flag and starts the match once a full
// table is ready. It reports whether the match started with this call.
func (g *Game) SetReady(color domain.PlayerColor, ready bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != domain.StateWaitingForPlayers {
		return false
	}
	player, ok := g.players[color]
	if !ok {
		g.log.Debugf("Ready ignored, no player for %s", color)
		return false
	}
	player.Ready = ready

	readyCount := 0
	for _, p := range g.players {
		if p.Ready {
			readyCount++
		}
	}
	// A table only starts full until seats can be filled with bots.
	if readyCount < len(g.players) || len(g.players) != domain.TableSize {
		g.log.Debugf("Player ready %t: %s", ready, player)
		return false
	}

	g.start()
	return true
}

func (g *Game) start() {
	g.state = domain.StateRunning
	g.startedAt = g.now()
	g.currentPlayer = g.occupied()[0]
	g.players[g.currentPlayer].Dice.StartRoll()
	g.log.Infof("Game started, %s begins", g.currentPlayer)
}

// Turn is the single in-turn entry point. A nil selection queries the
// options, -1 passes when no move exists, any other value submits the
// option with that figure index. Requests that do not apply return an
// empty response and change nothing.
func (g *Game) Turn(selected *int) domain.TurnResponse {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != domain.StateRunning {
		return domain.TurnResponse{}
	}

	if selected == nil {
		options := g.queryOptions()
		g.log.Debugf("Turn for %s: %d options", g.currentPlayer, len(options))
		return domain.QueryResponse(options)
	}

	if *selected == -1 {
		if len(g.queryOptions()) > 0 {
			return domain.TurnResponse{}
		}
		g.clearTurn()
		g.turns++
		g.nextPlayer()
		return domain.OKResponse()
	}

	figure, ok := g.currentTurn[*selected]
	if !ok || !g.rules.Execute(g.currentPlayer, figure, g.players) {
		return domain.TurnResponse{}
	}
	g.log.Debugf("Executed turn: %s figure %d -> %s", figure.Color, figure.Index, figure.Position)
	g.clearTurn()
	g.turns++

	if g.gameWon() {
		return domain.FinishedResponse()
	}
	g.nextPlayer()
	return domain.OKResponse()
}

func (g *Game) queryOptions() []domain.Option {
	g.clearTurn()
	options := make([]domain.Option, 0, domain.FiguresPerPlayer)
	for i, figure := range g.players[g.currentPlayer].Figures {
		opt := g.rules.DryRun(g.currentPlayer, figure, g.players)
		if opt.Legal() {
			g.currentTurn[i] = figure
			options = append(options, opt)
		}
	}
	return options
}

func (g *Game) clearTurn() {
	for k := range g.currentTurn {
		delete(g.currentTurn, k)
	}
}

func (g *Game) gameWon() bool {
	if !g.players[g.currentPlayer].AllIn(domain.ZoneHome) {
		return false
	}
	g.winner = g.currentPlayer
	g.currentPlayer = domain.NoColor
	g.state = domain.StateFinished
	g.finishedAt = g.now()
	g.log.Infof("Game finished, winner %s", g.winner)
	return true
}

// nextPlayer keeps the turn on a six and otherwise hands it to the next
// occupied slot in ascending order. The new acting player gets a forced six
// while all of their figures wait in start.
func (g *Game) nextPlayer() {
	current := g.players[g.currentPlayer]
	if current.Dice.Value() != domain.Six {
		current.Dice.Reset()
		g.currentPlayer = g.following(g.currentPlayer)
	}

	next := g.players[g.currentPlayer]
	if next.AllIn(domain.ZoneStart) {
		next.Dice.StartRoll()
	} else {
		next.Dice.Roll()
	}
	g.log.Debugf("Next: %s with dice %d", next, next.Dice.Value())
}

func (g *Game) following(color domain.PlayerColor) domain.PlayerColor {
	for i := 1; i <= domain.TableSize; i++ {
		next, _ := domain.ColorBySlot((color.Slot() + i) % domain.TableSize)
		if _, ok := g.players[next]; ok {
			return next
		}
	}
	return color
}

// occupied lists registered colors by ascending slot.
func (g *Game) occupied() []domain.PlayerColor {
	colors := make([]domain.PlayerColor, 0, len(g.players))
	for slot := 0; slot < domain.TableSize; slot++ {
		color, _ := domain.ColorBySlot(slot)
		if _, ok := g.players[color]; ok {
			colors = append(colors, color)
		}
	}
	return colors
}

func (g *Game) State() domain.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) CurrentPlayer() domain.PlayerColor {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentPlayer
}

func (g *Game) Winner() domain.PlayerColor {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner
}

func (g *Game) MatchID() string {
	return g.matchID
}

// Snapshot builds the read model with players ordered by slot.
func (g *Game) Snapshot() domain.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() domain.Snapshot {
	views := make([]domain.PlayerView, 0, len(g.players))
	for _, color := range g.occupied() {
		views = append(views, g.players[color].View())
	}
	return domain.Snapshot{
		State:         g.state,
		CurrentPlayer: g.currentPlayer,
		Winner:        g.winner,
		Players:       views,
	}
}

// Result returns the archive record once the match is finished.
func (g *Game) Result() (domain.MatchResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != domain.StateFinished {
		return domain.MatchResult{}, false
	}
	return domain.MatchResult{
		MatchID:    g.matchID,
		Winner:     g.winner,
		Players:    g.snapshot().Players,
		StartedAt:  g.startedAt,
		FinishedAt: g.finishedAt,
		Turns:      g.turns,
	}, true
}
