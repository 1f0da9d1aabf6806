package unit

import "github.com/georgbuechner/dissonance/pkg/field"

// PotentialKind tags which Potential variant a value holds.
type PotentialKind int

const (
	KindEpsp PotentialKind = iota
	KindIpsp
)

// Potential is a moving projectile with a pathed trajectory. Path holds
// only the cells still ahead of Position; consuming the path advances
// Position, and an empty path means the potential has arrived.
//
// Grounded on original_source/src/objects/units.h Potential/Epsp/Ipsp,
// collapsed into one tagged struct per Design Notes §9.
type Potential struct {
	Kind               PotentialKind
	Owner              int // player index this potential belongs to
	Position           field.Position
	Strength           int
	StepCooldownMS     int64
	NextStepDeadlineMS int64
	Path               []field.Position

	// Ipsp only
	DurationMS  int64
	ArrivedAtMS int64 // unix ms this Ipsp landed on its target; 0 until arrival
}

// dropStart removes path's leading element when it duplicates pos:
// FindWay/FindWayThrough return a path inclusive of the starting
// position, but Path here holds only the cells still ahead of Position.
func dropStart(pos field.Position, path []field.Position) []field.Position {
	if len(path) > 0 && path[0] == pos {
		return path[1:]
	}
	return path
}

// NewEpsp builds an Epsp: strength = 2+potentialBoost,
// step_cooldown_ms = 370-speedBoost, no duration.
func NewEpsp(owner int, pos field.Position, path []field.Position, potentialBoost, speedBoost int, nowMS int64) *Potential {
	p := &Potential{
		Kind:           KindEpsp,
		Owner:          owner,
		Position:       pos,
		Strength:       2 + potentialBoost,
		StepCooldownMS: int64(370 - speedBoost),
		Path:           dropStart(pos, path),
	}
	p.NextStepDeadlineMS = nowMS + p.StepCooldownMS
	return p
}

// NewIpsp builds an Ipsp: strength = 3+potentialBoost,
// step_cooldown_ms = 420-speedBoost, duration_ms = 4000+durationBoost*1000.
// Duration applies only after arrival, blocking the target neuron.
func NewIpsp(owner int, pos field.Position, path []field.Position, potentialBoost, speedBoost, durationBoost int, nowMS int64) *Potential {
	p := &Potential{
		Kind:           KindIpsp,
		Owner:          owner,
		Position:       pos,
		Strength:       3 + potentialBoost,
		StepCooldownMS: int64(420 - speedBoost),
		DurationMS:     int64(4000 + durationBoost*1000),
		Path:           dropStart(pos, path),
	}
	p.NextStepDeadlineMS = nowMS + p.StepCooldownMS
	return p
}

// Arrived reports whether this potential's path is empty (it has reached
// its final cell).
func (p *Potential) Arrived() bool {
	return len(p.Path) == 0
}

// TickStep advances the potential one cell along its path if nowMS has
// reached NextStepDeadlineMS, returning true if a step was taken.
func (p *Potential) TickStep(nowMS int64) bool {
	if nowMS < p.NextStepDeadlineMS || p.Arrived() {
		return false
	}
	p.Position = p.Path[0]
	p.Path = p.Path[1:]
	p.NextStepDeadlineMS += p.StepCooldownMS
	return true
}

// ReduceStrength lowers strength by amount (used by ActivatedNeuron
// interception) and reports whether the potential is now destroyed
// (strength <= 0).
func (p *Potential) ReduceStrength(amount int) bool {
	p.Strength -= amount
	return p.Strength <= 0
}
