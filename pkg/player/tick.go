package player

import (
	"github.com/georgbuechner/dissonance/pkg/field"
	"github.com/georgbuechner/dissonance/pkg/resource"
	"github.com/georgbuechner/dissonance/pkg/unit"
)

// DefaultIronDripIntervalMS is how often a player accrues one free iron
// unit, independent of distribution, while below the overall cap, absent
// a configured override.
const DefaultIronDripIntervalMS = 10_000

// ironDripCap stops the iron drip once the player's total distributed iron
// reaches it; free, undistributed iron does not count toward it.
const ironDripCap = 30

// TickState carries the mutable per-player clock state the tick handlers
// need across calls; it lives outside Player so a fresh game can reset it
// without touching resource/neuron state.
type TickState struct {
	lastIronDripMS     int64
	ironDripIntervalMS int64
}

// NewTickState creates a TickState anchored at startMS, dripping iron every
// ironDripIntervalMS of simulated time (DefaultIronDripIntervalMS if <= 0).
func NewTickState(startMS, ironDripIntervalMS int64) *TickState {
	if ironDripIntervalMS <= 0 {
		ironDripIntervalMS = DefaultIronDripIntervalMS
	}
	return &TickState{lastIronDripMS: startMS, ironDripIntervalMS: ironDripIntervalMS}
}

// TickResources advances every accumulating resource by one tick, using
// the base gain and the boosted/saturating formula already implemented in
// pkg/resource.
func (p *Player) TickResources(baseGain, slowdown float64) {
	p.Ledger.TickResources(baseGain, slowdown)
}

// TickPotentials first clears the block on any of this player's own
// neurons whose block has expired (TickBlockExpiry), then advances every
// in-flight potential one step (if its cooldown has elapsed), resolves
// arrivals against the opponent's neurons, and removes arrived potentials.
// An arriving Epsp raises its target's voltage; an arriving Ipsp blocks its
// target neuron until nowMS + DurationMS.
//
// Grounded on original_source/src/player/player.cc Player::update_potentials,
// generalized from its switch-on-subclass dispatch to the tagged Potential
// model (Design Notes §9).
func (p *Player) TickPotentials(nowMS int64) (gameOver bool) {
	for _, n := range p.Neurons {
		n.TickBlockExpiry(nowMS)
	}
	for id, pot := range p.Potentials {
		if !pot.TickStep(nowMS) {
			continue
		}
		if !pot.Arrived() {
			continue
		}
		gameOver = gameOver || p.resolveArrival(pot, nowMS)
		delete(p.Potentials, id)
	}
	return gameOver
}

// resolveArrival applies a just-arrived potential's effect to whatever
// neuron (if any) occupies its final cell, and reports whether that
// neuron was a Nucleus that is now destroyed.
func (p *Player) resolveArrival(pot *unit.Potential, nowMS int64) bool {
	if p.Opponent == nil {
		return false
	}
	target, ok := p.Opponent.Neurons[pot.Position]
	if !ok {
		return false
	}
	switch pot.Kind {
	case unit.KindEpsp:
		destroyed := target.IncreaseVoltage(pot.Strength)
		if destroyed {
			p.Opponent.destroyNeuron(pot.Position)
			if target.Kind == unit.KindNucleus && p.Opponent.onGameOver != nil {
				p.Opponent.onGameOver(p.Opponent)
			}
			return target.Kind == unit.KindNucleus
		}
	case unit.KindIpsp:
		pot.ArrivedAtMS = nowMS
		target.SetBlocked(nowMS + pot.DurationMS)
	}
	return false
}

// destroyNeuron removes a destroyed neuron and vacates its field cell. It
// does not touch the owner's ledger: the resources bound when the neuron
// was built stay in Bound and are not returned to Free, since the ledger
// keeps only an aggregate bound total per resource (see
// pkg/resource.Resource.Decrease).
func (p *Player) destroyNeuron(pos field.Position) {
	delete(p.Neurons, pos)
	p.Field.Vacate(pos)
}

// TickInterceptions runs each ActivatedNeuron's collision check against
// the opponent's in-flight potentials within range, reducing their
// strength and decrementing movement cooldowns.
//
// Grounded on original_source/src/player/player.cc
// Player::update_activated_neurons.
func (p *Player) TickInterceptions() {
	if p.Opponent == nil {
		return
	}
	for _, n := range p.Neurons {
		if n.Kind != unit.KindActivatedNeuron {
			continue
		}
		n.DecreaseMovementCooldown()
		if n.MovementCooldown > 0 {
			continue
		}
		for id, pot := range p.Opponent.Potentials {
			if pot.Position.Distance(n.Position) > 1.5 {
				continue
			}
			if pot.ReduceStrength(n.PotentialSlowdown) {
				delete(p.Opponent.Potentials, id)
			}
			n.ResetMovementCooldown()
			break
		}
	}
}

// TickIronDrip grants one free iron unit every ts.ironDripIntervalMS of
// simulated time, so long as the player's total distributed iron has not
// reached ironDripCap.
//
// Grounded on original_source/src/player/player.cc Player::distribute_iron
// being called periodically from the server's own tick loop, rather than
// on-demand only.
func (p *Player) TickIronDrip(ts *TickState, nowMS int64) {
	if nowMS-ts.lastIronDripMS < ts.ironDripIntervalMS {
		return
	}
	ts.lastIronDripMS = nowMS
	if p.Ledger.TotalDistributedIron() >= ironDripCap {
		return
	}
	p.Ledger.Get(resource.Iron).Free++ // drip is a direct free-pool top-up, not a distribution
}
