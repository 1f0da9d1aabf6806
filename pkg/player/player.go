// Package player implements per-player game state: resources, neurons,
// potentials, researched technologies, and the commands and tick handlers
// that mutate them.
package player

import (
	"errors"
	"fmt"

	"github.com/georgbuechner/dissonance/pkg/field"
	"github.com/georgbuechner/dissonance/pkg/resource"
	"github.com/georgbuechner/dissonance/pkg/unit"
)

// Sentinel errors matching spec §7's non-fatal error kinds.
var (
	ErrInvalidTarget = errors.New("player: invalid target")
	ErrBlocked       = errors.New("player: neuron blocked")
)

// TechCaps is the per-technology level cap; every researchable technology
// in costTable caps at 5 absent a more specific entry.
var TechCaps = map[resource.Unit]int{
	resource.TechTotalOxygen:   2,
	resource.TechTotalResource: 5,
	resource.TechCurve:         5,
	resource.TechAtkPotential:  5,
	resource.TechAtkSpeed:      5,
	resource.TechAtkDuration:   5,
	resource.TechDefPotential:  5,
	resource.TechDefSpeed:      5,
	resource.TechNucleusRange:  5,
	resource.TechWay:           1,
	resource.TechSwarm:         1,
	resource.TechTarget:        1,
}

// Technology is one researched upgrade's current level.
type Technology struct {
	Level int
	Cap   int
}

// GameOverFunc is invoked when this player's Nucleus is destroyed.
type GameOverFunc func(loser *Player)

// Player owns one side's full mutable state. The Field and its Graph are
// shared, read-only references; Opponent is set once by the server after
// both players exist.
//
// Grounded on original_source/src/player/ki.h (the resource/neuron/
// technology bookkeeping) and share/game/field.h's ownership split, with
// the bronze_/silver_ gatherer bug of the older src/player.cc intentionally
// not carried over (Design Notes §9's "Open questions").
type Player struct {
	Ledger       *resource.Ledger
	Neurons      map[field.Position]*unit.Neuron
	Potentials   map[int]*unit.Potential
	Technologies map[resource.Unit]*Technology

	Field    *field.Field
	Opponent *Player
	Index    int

	nextPotentialID int
	onGameOver      GameOverFunc

	NucleusPos field.Position
}

// NewPlayer creates a Player with an empty ledger and no neurons.
func NewPlayer(index int, f *field.Field, onGameOver GameOverFunc) *Player {
	return &Player{
		Ledger:       resource.NewLedger(),
		Neurons:      map[field.Position]*unit.Neuron{},
		Potentials:   map[int]*unit.Potential{},
		Technologies: map[resource.Unit]*Technology{},
		Field:        f,
		Index:        index,
		onGameOver:   onGameOver,
	}
}

// SpawnNucleus places this player's starting Nucleus in field section,
// free of the usual build cost: the opening Nucleus is dealt, not bought.
func (p *Player) SpawnNucleus(section int) field.Position {
	pos := p.Field.AddNucleus(section)
	p.NucleusPos = pos
	p.Neurons[pos] = unit.NewNucleus(pos)
	return pos
}

// adjacentToOwnedTerritory reports whether pos neighbors an existing own
// neuron (or is the very first neuron, i.e. no neurons yet).
func (p *Player) adjacentToOwnedTerritory(pos field.Position) bool {
	if len(p.Neurons) == 0 {
		return true
	}
	for _, n := range pos.Neighbors() {
		if _, ok := p.Neurons[n]; ok {
			return true
		}
	}
	return false
}

// BuildNeuron validates pos is free and adjacent to owned territory,
// charges the unit's cost (bound), and records the new neuron.
func (p *Player) BuildNeuron(kind unit.NeuronKind, costUnit resource.Unit, pos field.Position, maxStored, numWays int) (*unit.Neuron, error) {
	if !p.Field.IsFree(pos) {
		return nil, fmt.Errorf("%w: %v is not free", ErrInvalidTarget, pos)
	}
	if !p.adjacentToOwnedTerritory(pos) {
		return nil, fmt.Errorf("%w: %v is not adjacent to owned territory", ErrInvalidTarget, pos)
	}
	cost, err := resource.CostOf(costUnit, 1)
	if err != nil {
		return nil, err
	}
	if err := p.Ledger.Charge(cost, true); err != nil {
		return nil, err
	}

	var n *unit.Neuron
	switch kind {
	case unit.KindNucleus:
		n = unit.NewNucleus(pos)
		p.NucleusPos = pos
	case unit.KindSynapse:
		n = unit.NewSynapse(pos, maxStored, numWays)
	case unit.KindActivatedNeuron:
		n = unit.NewActivatedNeuron(pos, p.Technologies[resource.TechAtkSpeed].levelOr0(), p.Technologies[resource.TechDefSpeed].levelOr0())
	default:
		return nil, fmt.Errorf("%w: cannot directly build neuron kind %v", ErrInvalidTarget, kind)
	}
	p.Neurons[pos] = n
	p.Field.Occupy(pos, fieldSymbolFor(kind))
	return n, nil
}

func (t *Technology) levelOr0() int {
	if t == nil {
		return 0
	}
	return t.Level
}

func fieldSymbolFor(kind unit.NeuronKind) field.Symbol {
	switch kind {
	case unit.KindNucleus:
		return field.SymbolNucleus
	case unit.KindSynapse:
		return field.SymbolSynapse
	case unit.KindActivatedNeuron:
		return field.SymbolActivatedNeuron
	default:
		return field.SymbolResourceNeuron
	}
}

// AddPotential requires the synapse at synapsePos to exist and not be
// blocked, charges its cost, computes a path for each potential to emit
// (per the synapse's swarm rules), and enqueues each with
// next_step_deadline = nowMS + step_cooldown_ms.
func (p *Player) AddPotential(synapsePos field.Position, kind unit.PotentialKind, costUnit resource.Unit, nowMS int64) ([]*unit.Potential, error) {
	syn, ok := p.Neurons[synapsePos]
	if !ok || syn.Kind != unit.KindSynapse {
		return nil, fmt.Errorf("%w: no synapse at %v", ErrInvalidTarget, synapsePos)
	}
	if syn.Blocked {
		return nil, fmt.Errorf("%w: synapse at %v is blocked", ErrBlocked, synapsePos)
	}

	count := syn.AddEpsp()
	if count == 0 {
		return nil, nil
	}

	cost, err := resource.CostOf(costUnit, 1)
	if err != nil {
		return nil, err
	}
	if err := p.Ledger.Charge(cost, false); err != nil {
		return nil, err
	}

	waypoints := syn.GetWayPoints(kind)
	graph := p.Field.Graph()
	if graph == nil {
		return nil, fmt.Errorf("%w: field graph not built", ErrInvalidTarget)
	}
	path, err := graph.FindWayThrough(synapsePos, waypoints)
	if err != nil {
		return nil, err
	}

	potBoost := p.Technologies[resource.TechAtkPotential].levelOr0()
	speedBoost := p.Technologies[resource.TechAtkSpeed].levelOr0()
	durationBoost := p.Technologies[resource.TechAtkDuration].levelOr0()

	out := make([]*unit.Potential, 0, count)
	for i := 0; i < count; i++ {
		var pot *unit.Potential
		if kind == unit.KindEpsp {
			pot = unit.NewEpsp(p.Index, synapsePos, append([]field.Position(nil), path...), potBoost, speedBoost, nowMS)
		} else {
			pot = unit.NewIpsp(p.Index, synapsePos, append([]field.Position(nil), path...), potBoost, speedBoost, durationBoost, nowMS)
		}
		p.nextPotentialID++
		p.Potentials[p.nextPotentialID] = pot
		out = append(out, pot)
	}
	return out, nil
}

// AddTechnology increments tech's level up to its cap, charging cost
// (linear in current level).
func (p *Player) AddTechnology(tech resource.Unit) error {
	t, ok := p.Technologies[tech]
	if !ok {
		cap := TechCaps[tech]
		if cap == 0 {
			cap = 5
		}
		t = &Technology{Cap: cap}
		p.Technologies[tech] = t
	}
	if t.Level >= t.Cap {
		return fmt.Errorf("%w: %v already at cap", ErrInvalidTarget, tech)
	}
	cost, err := resource.CostOf(tech, t.Level+1)
	if err != nil {
		return err
	}
	if err := p.Ledger.Charge(cost, false); err != nil {
		return err
	}
	t.Level++
	return nil
}

// DistributeIron and RemoveIron delegate to the ledger.
func (p *Player) DistributeIron(kind resource.Kind) error { return p.Ledger.DistributeIron(kind) }
func (p *Player) RemoveIron(kind resource.Kind)           { p.Ledger.RemoveIron(kind) }

// SetWayPoints validates against the researched "way" cap before updating
// a synapse's way-points.
func (p *Player) SetWayPoints(synapsePos field.Position, points []field.Position) error {
	syn, ok := p.Neurons[synapsePos]
	if !ok || syn.Kind != unit.KindSynapse {
		return fmt.Errorf("%w: no synapse at %v", ErrInvalidTarget, synapsePos)
	}
	if t, ok := p.Technologies[resource.TechWay]; !ok || t.Level == 0 {
		return fmt.Errorf("%w: way-points not researched", ErrInvalidTarget)
	}
	syn.WayPoints = points
	return nil
}

// SetSwarm validates against the researched "swarm" cap before toggling a
// synapse's swarm mode.
func (p *Player) SetSwarm(synapsePos field.Position, on bool) error {
	syn, ok := p.Neurons[synapsePos]
	if !ok || syn.Kind != unit.KindSynapse {
		return fmt.Errorf("%w: no synapse at %v", ErrInvalidTarget, synapsePos)
	}
	if on {
		if t, ok := p.Technologies[resource.TechSwarm]; !ok || t.Level == 0 {
			return fmt.Errorf("%w: swarm not researched", ErrInvalidTarget)
		}
	}
	syn.Swarm = on
	return nil
}

// SetTarget validates against the researched "target" cap before updating
// a synapse's epsp or ipsp target.
func (p *Player) SetTarget(synapsePos field.Position, potential unit.PotentialKind, pos field.Position) error {
	syn, ok := p.Neurons[synapsePos]
	if !ok || syn.Kind != unit.KindSynapse {
		return fmt.Errorf("%w: no synapse at %v", ErrInvalidTarget, synapsePos)
	}
	if t, ok := p.Technologies[resource.TechTarget]; !ok || t.Level == 0 {
		return fmt.Errorf("%w: target selection not researched", ErrInvalidTarget)
	}
	if potential == unit.KindEpsp {
		syn.EpspTarget = pos
	} else {
		syn.IpspTarget = pos
	}
	return nil
}
