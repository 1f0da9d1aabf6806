// Package server runs the authoritative per-game tick loop, the
// connection/game registry, and the lobby clients choose from.
//
// Grounded on the teacher's pkg/network/gameserver.go (tick-driven
// authoritative loop, per-client command queue, logrus structured
// logging under a "system_name" field), generalized from a generic
// engine.World to DISSONANCE's two-Player, audio-driven match.
package server

import (
	"fmt"
	"time"

	"github.com/georgbuechner/dissonance/pkg/audio"
	"github.com/georgbuechner/dissonance/pkg/field"
	"github.com/georgbuechner/dissonance/pkg/history"
	"github.com/georgbuechner/dissonance/pkg/opponent"
	"github.com/georgbuechner/dissonance/pkg/player"
	"github.com/georgbuechner/dissonance/pkg/resource"
	"github.com/georgbuechner/dissonance/pkg/unit"
	"github.com/georgbuechner/dissonance/pkg/wire"
	"github.com/sirupsen/logrus"
)

// GameState is one game's lifecycle stage, per spec §5's cancellation
// and teardown rules.
type GameState int

const (
	StateSettingUp GameState = iota
	StateRunning
	StateClosing
	StateClosed
)

func (s GameState) String() string {
	switch s {
	case StateSettingUp:
		return "setting_up"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// inboundQueueSize bounds each side's pending-command channel; a client
// that floods past this has its newly arriving commands dropped while the
// queue is full, rather than blocking the tick, per spec §5.
const inboundQueueSize = 64

// resourceViewOrder fixes the iteration order Snapshot.Resources is
// built in; map iteration alone would make the published JSON's key
// order (harmless) jitter test fixtures (not harmless for testing).
var resourceViewOrder = append([]resource.Kind{resource.Iron}, resource.AccumulatingKinds...)

// PlayerSide is one connected (or opponent-controlled) side of a Game.
type PlayerSide struct {
	Name     string
	Player   *player.Player
	Opponent *opponent.Opponent // nil when human-controlled
	Inbound  chan wire.Envelope
	Outbound chan wire.Envelope
	Resigned bool
	Closing  bool

	tick               *player.TickState
	lastConsumedBeatMS int64
	NeuronsBuilt       int
	PotentialsLaunched int
}

// NewPlayerSide creates a human or opponent-controlled side backed by p,
// dripping iron per ironDripIntervalMS (see player.NewTickState).
func NewPlayerSide(name string, p *player.Player, startMS, ironDripIntervalMS int64) *PlayerSide {
	return &PlayerSide{
		Name:     name,
		Player:   p,
		Inbound:  make(chan wire.Envelope, inboundQueueSize),
		Outbound: make(chan wire.Envelope, inboundQueueSize),
		tick:     player.NewTickState(startMS, ironDripIntervalMS),
	}
}

// Send enqueues an outbound envelope without blocking the tick worker; a
// side whose outbound queue is full is marked Closing and the envelope
// is dropped, per spec §5's "slow client is dropped, never blocks the
// tick".
func (s *PlayerSide) Send(env wire.Envelope) {
	select {
	case s.Outbound <- env:
	default:
		s.Closing = true
	}
}

// Game is one authoritative match: two sides sharing a Field and an
// AnalyzedAudio track.
type Game struct {
	ID        string
	AudioFile string
	Field     *field.Field
	Audio     *audio.AnalyzedAudio
	Sides     [2]*PlayerSide
	State     GameState
	CursorMS  int64

	startedAtMS        int64
	baseGain           float64
	ironDripIntervalMS int64
	history            *history.History
	winnerIdx          int
}

// NewGame builds a SettingUp game for two sides over f and aa, dripping
// iron every ironDripIntervalMS of simulated time.
func NewGame(id, audioFile string, f *field.Field, aa *audio.AnalyzedAudio, baseGain float64, ironDripIntervalMS int64, hist *history.History) *Game {
	return &Game{
		ID:                 id,
		AudioFile:          audioFile,
		Field:              f,
		Audio:              aa,
		State:              StateSettingUp,
		baseGain:           baseGain,
		ironDripIntervalMS: ironDripIntervalMS,
		history:            hist,
		winnerIdx:          -1,
	}
}

// Start wires both sides' Player.Opponent pointers and transitions to
// Running. nowMS anchors cursor_ms (spec §4.7 step 1) and each side's
// iron-drip interval (spec §4.5).
func (g *Game) Start(nowMS int64) {
	g.Sides[0].Player.Opponent = g.Sides[1].Player
	g.Sides[1].Player.Opponent = g.Sides[0].Player
	g.Sides[0].tick = player.NewTickState(nowMS, g.ironDripIntervalMS)
	g.Sides[1].tick = player.NewTickState(nowMS, g.ironDripIntervalMS)
	g.startedAtMS = nowMS
	g.State = StateRunning
}

// Tick runs one step of spec §4.7's six-step loop and returns the
// per-side Snapshot to publish. gameOver is true the first tick a
// Nucleus is destroyed; Tick itself then resolves the result, moving the
// game to Closing and persisting the match (see resolveGameOver).
func (g *Game) Tick(nowMS int64) (snapshots [2]wire.Snapshot, gameOver bool) {
	g.CursorMS = nowMS - g.startedAtMS

	for _, side := range g.Sides {
		g.drainInbound(side, nowMS)
	}

	for _, side := range g.Sides {
		if side.Opponent == nil {
			continue
		}
		beats := g.Audio.BeatsBetween(side.lastConsumedBeatMS, g.CursorMS)
		for _, beat := range beats {
			side.Opponent.DoAction(beat, nowMS)
		}
		if len(beats) > 0 {
			side.lastConsumedBeatMS = beats[len(beats)-1].TimeMS
		}
	}

	for _, side := range g.Sides {
		p := side.Player
		p.TickResources(g.baseGain, 0)
		if p.TickPotentials(nowMS) {
			gameOver = true
		}
		p.TickInterceptions()
		p.TickIronDrip(side.tick, nowMS)
	}

	if gameOver {
		g.resolveGameOver(nowMS)
	}

	for i := range g.Sides {
		snapshots[i] = g.buildSnapshot(i)
	}
	return snapshots, gameOver
}

// drainInbound applies every currently-queued command for side,
// non-blocking, in arrival order, per spec §5's ordering guarantee.
func (g *Game) drainInbound(side *PlayerSide, nowMS int64) {
	for {
		select {
		case env, ok := <-side.Inbound:
			if !ok {
				return
			}
			resp := applyCommand(side.Player, side, env, nowMS)
			side.Send(resp)
		default:
			return
		}
	}
}

// resolveGameOver determines which Nucleus was destroyed and persists
// the match, per spec §4.7 step 5.
func (g *Game) resolveGameOver(nowMS int64) {
	for i, side := range g.Sides {
		if _, alive := side.Player.Neurons[side.Player.NucleusPos]; alive {
			continue
		}
		g.winnerIdx = 1 - i
		break
	}
	if g.winnerIdx < 0 {
		return
	}
	winner, loser := g.Sides[g.winnerIdx], g.Sides[1-g.winnerIdx]
	g.State = StateClosing

	for _, side := range g.Sides {
		env := wire.Envelope{
			Command:  string(wire.RespGameOver),
			Username: side.Name,
			Data:     mustMarshal(map[string]string{"winner": winner.Name}),
		}
		side.Send(env)
	}

	if g.history == nil {
		return
	}
	rec := history.MatchRecord{
		WinnerName:         winner.Name,
		LoserName:          loser.Name,
		WinnerNeuronsBuilt: winner.NeuronsBuilt,
		LoserNeuronsBuilt:  loser.NeuronsBuilt,
		PotentialsLaunched: winner.PotentialsLaunched + loser.PotentialsLaunched,
		DurationMS:         nowMS - g.startedAtMS,
		AudioFile:          g.AudioFile,
		FinishedAt:         time.UnixMilli(nowMS).UTC(),
	}
	if _, err := g.history.RecordMatch(rec); err != nil {
		logrus.WithFields(logrus.Fields{
			"system_name": "game",
			"game_id":     g.ID,
		}).WithError(err).Warn("failed to persist match record")
	}
}

// buildSnapshot renders side idx's view: own resources/technologies in
// full, the shared field, and every still-flying potential on the
// field, per spec §4.8.
func (g *Game) buildSnapshot(idx int) wire.Snapshot {
	side := g.Sides[idx]
	p := side.Player

	rows, cols := g.Field.Rows(), g.Field.Cols()
	cells := make([][]wire.Cell, rows)
	for r := 0; r < rows; r++ {
		cells[r] = make([]wire.Cell, cols)
		for c := 0; c < cols; c++ {
			pos := field.Position{Row: r, Col: c}
			cells[r][c] = wire.Cell{Symbol: int(g.Field.SymbolAt(pos)), Color: g.colorAt(pos)}
		}
	}

	resources := map[string]wire.ResourceView{}
	for _, kind := range resourceViewOrder {
		res := p.Ledger.Get(kind)
		resources[kind.String()] = wire.ResourceView{
			Value: res.Free, Bound: res.Bound, Limit: res.Limit,
			Iron: res.DistributedIron, Active: res.Active(),
		}
	}

	technologies := map[string]wire.TechnologyView{}
	for name, unitID := range techUnitNames {
		t, ok := p.Technologies[unitID]
		if !ok {
			continue
		}
		technologies[name] = wire.TechnologyView{Current: t.Level, Max: t.Cap, Active: t.Level > 0}
	}

	var potentials []wire.PotentialView
	potentials = appendPotentialViews(potentials, p.Potentials, "own")
	if p.Opponent != nil {
		potentials = appendPotentialViews(potentials, p.Opponent.Potentials, "enemy")
	}

	return wire.Snapshot{
		Field:          cells,
		PlayersSummary: fmt.Sprintf("%s vs %s", g.Sides[0].Name, g.Sides[1].Name),
		Resources:      resources,
		Technologies:   technologies,
		Potentials:     potentials,
		AudioCursorSec: float64(g.CursorMS) / 1000.0,
	}
}

func appendPotentialViews(out []wire.PotentialView, pots map[int]*unit.Potential, color string) []wire.PotentialView {
	for _, pot := range pots {
		out = append(out, wire.PotentialView{
			Row: pot.Position.Row, Col: pot.Position.Col,
			Symbol: potentialSymbol(pot.Kind), Color: color,
		})
	}
	return out
}

func potentialSymbol(kind unit.PotentialKind) string {
	if kind == unit.KindIpsp {
		return "ipsp"
	}
	return "epsp"
}

func (g *Game) colorAt(pos field.Position) string {
	for i, side := range g.Sides {
		if _, ok := side.Player.Neurons[pos]; ok {
			if i == 0 {
				return "p1"
			}
			return "p2"
		}
	}
	return ""
}
