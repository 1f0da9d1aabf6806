package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/georgbuechner/dissonance/pkg/audio"
	"github.com/georgbuechner/dissonance/pkg/field"
	"github.com/georgbuechner/dissonance/pkg/history"
	"github.com/georgbuechner/dissonance/pkg/opponent"
	"github.com/georgbuechner/dissonance/pkg/player"
	"github.com/georgbuechner/dissonance/pkg/wire"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// DefaultTickInterval is the target granularity of spec §4.7's server
// loop, absent a configured override.
const DefaultTickInterval = 50 * time.Millisecond

// ErrGameCapReached is returned when a new game is requested while
// maxGames are already registered.
var ErrGameCapReached = errors.New("server: max concurrent games reached")

// upgrader accepts any origin: the server has no browser-hosted client
// to apply same-origin restrictions against.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server accepts websocket connections, matches pairs of clients into
// games, and runs each game's tick loop on its own goroutine.
//
// Grounded on the teacher's GameServer (pkg/network/gameserver.go):
// same accept-loop/per-client-goroutine/ticker-driven-loop shape, with
// net.Listener replaced by an http.Server + websocket.Upgrader and one
// engine.World replaced by one Game per match.
type Server struct {
	Registry *Registry
	Lobby    *Lobby
	History  *history.History

	fieldRows, fieldCols int
	baseGain             float64
	tickInterval         time.Duration
	ironDripIntervalMS   int64
	maxGames             int

	mu      sync.Mutex
	pending *Game // a SettingUp game with one side waiting for an opponent

	wg sync.WaitGroup
}

// NewServer creates a Server backed by hist (may be nil to disable match
// persistence) using an rows x cols Field for every new game. tickInterval
// <= 0 falls back to DefaultTickInterval; ironDripIntervalMS <= 0 falls
// back to player.DefaultIronDripIntervalMS; maxGames <= 0 means unbounded.
func NewServer(hist *history.History, fieldRows, fieldCols int, baseGain float64, tickInterval time.Duration, ironDripIntervalMS int64, maxGames int) *Server {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	registry := NewRegistry()
	return &Server{
		Registry:           registry,
		Lobby:              NewLobby(registry),
		History:            hist,
		fieldRows:          fieldRows,
		fieldCols:          fieldCols,
		baseGain:           baseGain,
		tickInterval:       tickInterval,
		ironDripIntervalMS: ironDripIntervalMS,
		maxGames:           maxGames,
	}
}

// HandleLobby writes the current lobby listing as JSON, per spec §4.8.
func (s *Server) HandleLobby(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Lobby.Entries()); err != nil {
		logrus.WithError(err).Error("failed to encode lobby listing")
	}
}

// HandleWebSocket upgrades r and joins the connection to a game: the
// first player to arrive opens a new SettingUp game and waits; the
// second fills it and the game Starts.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade failed")
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		username = "player"
	}
	audioFile := r.URL.Query().Get("audio")
	single := r.URL.Query().Get("mode") == "single"

	conn := NewConnection(ws, username)
	s.Registry.AddConnection(conn)

	var (
		game    *Game
		sideIdx int
	)
	if single {
		game, sideIdx, err = s.newSinglePlayerGame(username, audioFile)
	} else {
		game, sideIdx, err = s.assignGame(username, audioFile)
	}
	if err != nil {
		logrus.WithError(err).Warn("failed to assign connection to a game")
		conn.Close()
		s.Registry.RemoveConnection(conn.ID)
		return
	}

	conn.GameID = game.ID
	conn.Side = game.Sides[sideIdx]

	if single || sideIdx == 1 {
		game.Start(nowMS())
		s.wg.Add(1)
		go s.runGame(game)
	}

	stop := make(chan struct{})
	go conn.WriteLoop(stop)
	conn.ReadLoop(nil)
	close(stop)

	s.Registry.RemoveConnection(conn.ID)
}

// assignGame places the caller into the single waiting SettingUp game,
// or opens a fresh one (per spec §6's MultiPlayer host + waiting lobby).
func (s *Server) assignGame(username, audioFile string) (*Game, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		g := s.pending
		s.pending = nil
		p := player.NewPlayer(1, g.Field, s.gameOverHook(g))
		p.SpawnNucleus(1)
		g.Sides[1] = NewPlayerSide(username, p, nowMS(), g.ironDripIntervalMS)
		return g, 1, nil
	}

	if s.maxGames > 0 && s.Registry.GameCount() >= s.maxGames {
		return nil, 0, ErrGameCapReached
	}

	f, aa, err := s.newMatchAssets(audioFile)
	if err != nil {
		return nil, 0, err
	}

	g := NewGame("", audioFile, f, aa, s.baseGain, s.ironDripIntervalMS, s.History)
	s.Registry.AddGame(g)

	p := player.NewPlayer(0, f, s.gameOverHook(g))
	p.SpawnNucleus(0)
	g.Sides[0] = NewPlayerSide(username, p, nowMS(), g.ironDripIntervalMS)
	s.pending = g
	return g, 0, nil
}

// newSinglePlayerGame opens a two-sided game where side 1 is driven by
// the music-derived Opponent instead of a second connection, per spec
// §4.6 and the SinglePlayer game mode of §6.
func (s *Server) newSinglePlayerGame(username, audioFile string) (*Game, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxGames > 0 && s.Registry.GameCount() >= s.maxGames {
		return nil, 0, ErrGameCapReached
	}

	f, aa, err := s.newMatchAssets(audioFile)
	if err != nil {
		return nil, 0, err
	}

	g := NewGame("", audioFile, f, aa, s.baseGain, s.ironDripIntervalMS, s.History)
	s.Registry.AddGame(g)

	human := player.NewPlayer(0, f, s.gameOverHook(g))
	human.SpawnNucleus(0)
	g.Sides[0] = NewPlayerSide(username, human, nowMS(), g.ironDripIntervalMS)

	ai := player.NewPlayer(1, f, s.gameOverHook(g))
	ai.SpawnNucleus(1)
	aiSide := NewPlayerSide("opponent", ai, nowMS(), g.ironDripIntervalMS)
	aiSide.Opponent = opponent.New(ai, aa)
	g.Sides[1] = aiSide

	return g, 0, nil
}

func (s *Server) gameOverHook(g *Game) player.GameOverFunc {
	return func(loser *player.Player) {
		logrus.WithFields(logrus.Fields{
			"system_name": "game",
			"game_id":     g.ID,
		}).Info("nucleus destroyed")
	}
}

// newMatchAssets builds a fresh Field (with its Graph) and loads or
// analyzes the audio track driving the match.
func (s *Server) newMatchAssets(audioFile string) (*field.Field, *audio.AnalyzedAudio, error) {
	f := field.NewField(s.fieldRows, s.fieldCols, rand.New(rand.NewSource(time.Now().UnixNano())))
	f.AddHills(3)
	centers := f.GetAllCenterPositionsOfSections()
	if len(centers) >= 2 {
		if _, err := f.BuildGraph(centers[0], centers[1]); err != nil {
			return nil, nil, err
		}
	}

	aa, err := audio.Analyze(audioFile)
	if err != nil {
		return nil, nil, err
	}
	return f, aa, nil
}

// runGame drives one game's tick loop at s.tickInterval until it reaches
// Closing, per spec §4.7 and §5's "sleeps between ticks (target 50ms)".
func (s *Server) runGame(g *Game) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	closingSince := time.Time{}
	for range ticker.C {
		snapshots, gameOver := g.Tick(nowMS())

		for i, side := range g.Sides {
			snap := snapshots[i]
			raw, err := marshalSnapshot(snap)
			if err != nil {
				continue
			}
			side.Send(wire.Envelope{Command: string(wire.RespSnapshot), Username: side.Name, Data: raw})
		}

		if gameOver && closingSince.IsZero() {
			closingSince = time.Now()
		}
		if !closingSince.IsZero() && time.Since(closingSince) > 5*time.Second {
			break
		}
	}

	g.State = StateClosed
	s.Registry.RemoveGame(g.ID)
}

func nowMS() int64 { return time.Now().UnixMilli() }

func marshalSnapshot(s wire.Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// Shutdown stops accepting new ticks for every registered game and
// waits for their goroutines to exit, within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
