package server

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the server's single source of truth for live connections
// and games. It is guarded by two reader-writer locks, connMu for
// connections and gameMu for games, taken in a fixed order — connections
// before games — so two goroutines locking both never deadlock.
type Registry struct {
	connMu sync.RWMutex
	conns  map[string]*Connection

	gameMu sync.RWMutex
	games  map[string]*Game
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: map[string]*Connection{},
		games: map[string]*Game{},
	}
}

// AddConnection registers c under its own ID (c.ID).
func (r *Registry) AddConnection(c *Connection) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	r.conns[c.ID] = c
}

// RemoveConnection unregisters the connection with the given ID.
func (r *Registry) RemoveConnection(id string) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	delete(r.conns, id)
}

// Connection looks up a connection by ID.
func (r *Registry) Connection(id string) (*Connection, bool) {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// ConnectionCount reports how many connections are currently registered.
func (r *Registry) ConnectionCount() int {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	return len(r.conns)
}

// AddGame registers g under a fresh UUID-derived ID if it has none, and
// returns the assigned ID. Acquires connMu first, then gameMu, matching
// the registry-wide lock order even though this call touches no
// connection state — callers that hold both locks at once must follow
// the same order to avoid deadlock.
func (r *Registry) AddGame(g *Game) string {
	r.connMu.RLock()
	defer r.connMu.RUnlock()

	r.gameMu.Lock()
	defer r.gameMu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	r.games[g.ID] = g
	return g.ID
}

// RemoveGame unregisters the game with the given ID.
func (r *Registry) RemoveGame(id string) {
	r.gameMu.Lock()
	defer r.gameMu.Unlock()
	delete(r.games, id)
}

// Game looks up a game by ID.
func (r *Registry) Game(id string) (*Game, bool) {
	r.gameMu.RLock()
	defer r.gameMu.RUnlock()
	g, ok := r.games[id]
	return g, ok
}

// GameCount reports how many games are currently registered.
func (r *Registry) GameCount() int {
	r.gameMu.RLock()
	defer r.gameMu.RUnlock()
	return len(r.games)
}

// Games returns a snapshot slice of all currently registered games.
func (r *Registry) Games() []*Game {
	r.gameMu.RLock()
	defer r.gameMu.RUnlock()
	out := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g)
	}
	return out
}
