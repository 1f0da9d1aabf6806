package server

import "github.com/georgbuechner/dissonance/pkg/wire"

// maxPlayersPerGame is fixed: DISSONANCE is strictly a 1v1 game, no
// teams and no matchmaking across multiple hosts.
const maxPlayersPerGame = 2

// Lobby lists open games a client can join — one host waiting for a
// second player, per game_id. There is no skill rating, no team
// balancing, and no cross-host matching: replaces the teacher's
// Elo-based pkg/network/matchmaking.go, which has no counterpart here
// (see DESIGN.md).
type Lobby struct {
	registry *Registry
}

// NewLobby wraps registry for lobby listing.
func NewLobby(registry *Registry) *Lobby {
	return &Lobby{registry: registry}
}

// Entries lists every game still in SettingUp with room for a second
// player, in spec §4.8's LobbyEntry shape.
func (l *Lobby) Entries() []wire.LobbyEntry {
	var out []wire.LobbyEntry
	for _, g := range l.registry.Games() {
		if g.State != StateSettingUp {
			continue
		}
		cur := 0
		for _, side := range g.Sides {
			if side != nil {
				cur++
			}
		}
		if cur >= maxPlayersPerGame {
			continue
		}
		out = append(out, wire.LobbyEntry{
			MaxPlayers:   maxPlayersPerGame,
			CurPlayers:   cur,
			GameID:       g.ID,
			AudioMapName: g.AudioFile,
		})
	}
	return out
}
