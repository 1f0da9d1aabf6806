// Package unit implements the tagged-variant Neuron and Potential models:
// stationary entities with voltage, and moving projectiles with pathed
// trajectories. Per Design Notes §9, polymorphism is limited to a small
// behavior table ({IncreaseVoltage, TickStep}) rather than a class
// hierarchy with virtual dispatch.
package unit

import "github.com/georgbuechner/dissonance/pkg/field"

// NeuronKind tags which Neuron variant a value holds.
type NeuronKind int

const (
	KindNucleus NeuronKind = iota
	KindSynapse
	KindActivatedNeuron
	KindResourceNeuron
)

// Neuron is a stationary entity with voltage. Fields specific to one
// variant are zero-valued on the others; Kind discriminates which fields
// are meaningful.
//
// Grounded on original_source/src/share/objects/units.h/.cc Neuron and its
// Synapse/ActivatedNeuron/ResourceNeuron specializations, collapsed from a
// virtual class hierarchy into one tagged struct per Design Notes §9.
type Neuron struct {
	Kind        NeuronKind
	Position    field.Position
	MaxVoltage  int
	Voltage     int
	Blocked     bool
	BlockExpiry int64 // unix ms; valid only while Blocked

	// Synapse fields
	Swarm            bool
	MaxStored        int
	Stored           int
	EpspTarget       field.Position
	IpspTarget       field.Position
	WayPoints        []field.Position
	NumAvailableWays int

	// ActivatedNeuron fields
	MovementCooldown  int
	MovementReset     int
	PotentialSlowdown int

	// ResourceNeuron fields
	ResourceKind string
}

// NewNucleus builds a Nucleus at pos. max_voltage is fixed at 9.
func NewNucleus(pos field.Position) *Neuron {
	return &Neuron{Kind: KindNucleus, Position: pos, MaxVoltage: 9}
}

// NewSynapse builds a Synapse at pos. max_voltage is fixed at 5.
func NewSynapse(pos field.Position, maxStored, numAvailableWays int) *Neuron {
	return &Neuron{
		Kind:             KindSynapse,
		Position:         pos,
		MaxVoltage:       5,
		MaxStored:        maxStored,
		NumAvailableWays: numAvailableWays,
		EpspTarget:       field.Position{Row: -1, Col: -1},
		IpspTarget:       field.Position{Row: -1, Col: -1},
	}
}

// NewActivatedNeuron builds an ActivatedNeuron at pos. max_voltage is fixed
// at 17; speedBoost/slowdownBoost come from researched technologies.
func NewActivatedNeuron(pos field.Position, speedBoost, slowdownBoost int) *Neuron {
	reset := 5 - speedBoost
	if reset < 0 {
		reset = 0
	}
	return &Neuron{
		Kind:              KindActivatedNeuron,
		Position:          pos,
		MaxVoltage:        17,
		MovementReset:     reset,
		PotentialSlowdown: 1 + slowdownBoost,
	}
}

// NewResourceNeuron builds a ResourceNeuron at pos tagging resourceKind.
func NewResourceNeuron(pos field.Position, resourceKind string) *Neuron {
	return &Neuron{Kind: KindResourceNeuron, Position: pos, ResourceKind: resourceKind}
}

// IncreaseVoltage raises voltage by amount (ignored if negative) and
// reports whether the neuron is now destroyed (voltage >= max_voltage).
func (n *Neuron) IncreaseVoltage(amount int) bool {
	if amount < 0 {
		return false
	}
	n.Voltage += amount
	return n.Voltage >= n.MaxVoltage
}

// SetBlocked marks the neuron blocked until expiryMS (unix ms); expiry is
// checked by TickBlockExpiry.
func (n *Neuron) SetBlocked(expiryMS int64) {
	n.Blocked = true
	n.BlockExpiry = expiryMS
}

// TickBlockExpiry clears Blocked once nowMS has passed BlockExpiry.
func (n *Neuron) TickBlockExpiry(nowMS int64) {
	if n.Blocked && nowMS >= n.BlockExpiry {
		n.Blocked = false
	}
}

// GetWayPoints returns this Synapse's way-points plus the target position
// for the given potential kind. The Ipsp branch returns ipsp_target, not
// epsp_target — original_source's units.h has one file where this branch
// is copy-pasted wrong (Design Notes §9's "Open questions" flags it); the
// fix is applied here, not the bug.
func (n *Neuron) GetWayPoints(potential PotentialKind) []field.Position {
	way := append([]field.Position(nil), n.WayPoints...)
	switch potential {
	case KindEpsp:
		return append(way, n.EpspTarget)
	case KindIpsp:
		return append(way, n.IpspTarget)
	default:
		return way
	}
}

// AddEpsp returns how many potentials to spawn for this add_potential
// command: if swarm is off, always 1. If swarm is on, the Synapse buffers
// up to MaxStored requests, returning 0 until the buffer fills, then
// returning MaxStored all at once and resetting.
func (n *Neuron) AddEpsp() int {
	if !n.Swarm {
		return 1
	}
	n.Stored++
	if n.Stored >= n.MaxStored {
		n.Stored = 0
		return n.MaxStored
	}
	return 0
}

// DecreaseMovementCooldown ticks an ActivatedNeuron's cooldown toward 0.
func (n *Neuron) DecreaseMovementCooldown() {
	if n.MovementCooldown > 0 {
		n.MovementCooldown--
	}
}

// ResetMovementCooldown restores an ActivatedNeuron's cooldown to its
// configured reset value, after it successfully intercepts a potential.
func (n *Neuron) ResetMovementCooldown() {
	n.MovementCooldown = n.MovementReset
}
