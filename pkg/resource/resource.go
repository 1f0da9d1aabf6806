// Package resource implements the per-player resource ledger: bounded
// saturating accumulation, iron-boost distribution, and the static cost
// table used to afford and charge units and technologies.
package resource

import (
	"errors"
	"fmt"
)

// Kind identifies one of the seven resources. Iron has no field position
// and is never itself gathered by accumulation — it only boosts the other
// six.
type Kind int

const (
	Iron Kind = iota
	Oxygen
	Potassium
	Chloride
	Glutamate
	Dopamine
	Serotonin
)

var kindNames = map[Kind]string{
	Iron: "iron", Oxygen: "oxygen", Potassium: "potassium", Chloride: "chloride",
	Glutamate: "glutamate", Dopamine: "dopamine", Serotonin: "serotonin",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AccumulatingKinds are the six resources that accrue via tick_resources;
// Iron is excluded, it only boosts them.
var AccumulatingKinds = []Kind{Oxygen, Potassium, Chloride, Glutamate, Dopamine, Serotonin}

// ErrNegativeAccumulation signals Increase was asked to add a negative
// delta, which never happens under valid inputs and indicates a caller
// bug rather than a game-state condition.
var ErrNegativeAccumulation = errors.New("resource: negative accumulation delta")

// Resource is one player's account for a single Kind: free (spendable),
// bound (committed to a living structure), a saturation limit, and the
// iron distributed to boost its accumulation rate.
//
// Grounded on original_source/src/share/objects/resource.h/.cc Resource.
type Resource struct {
	Kind            Kind
	Free            float64
	Bound           float64
	Limit           float64
	DistributedIron int
}

// NewResource creates a Resource starting at init free units with the
// given saturation limit.
func NewResource(kind Kind, init, limit float64) *Resource {
	return &Resource{Kind: kind, Free: init, Limit: limit}
}

// Active reports whether this resource has enough iron distributed to
// accumulate on tick_resources (distributed_iron >= 2).
func (r *Resource) Active() bool {
	return r.DistributedIron >= 2
}

// Increase applies one tick of boosted, saturating accumulation:
//
//	delta = (1 + distributed_iron/10) * gain * (1 - (free+bound)/limit) / slowdown
//
// and rejects the update (no-op) if it would push free+bound past limit.
// slowdown <= 0 is treated as 1 (no slowdown) rather than dividing by zero.
func (r *Resource) Increase(gain, slowdown float64) error {
	if slowdown <= 0 {
		slowdown = 1
	}
	boost := 1 + float64(r.DistributedIron)/10
	negFactor := 1 - (r.Free+r.Bound)/r.Limit
	delta := boost * gain * negFactor / slowdown
	if delta < 0 {
		return fmt.Errorf("%w: boost=%v gain=%v neg_factor=%v", ErrNegativeAccumulation, boost, gain, negFactor)
	}
	if r.Free+r.Bound+delta > r.Limit {
		return nil
	}
	r.Free += delta
	return nil
}

// Decrease subtracts val from free; if bind is true, val is additionally
// committed to bound (representing resources locked into a structure for
// as long as that structure lives).
func (r *Resource) Decrease(val float64, bind bool) {
	r.Free -= val
	if bind {
		r.Bound += val
	}
}

// DistributeIron increments this resource's DistributedIron. It does not
// touch the Iron pool: the caller is responsible for checking and debiting
// the player's free Iron (Ledger.DistributeIron does both).
func (r *Resource) DistributeIron() {
	r.DistributedIron++
}

// RemoveIron reverses one unit of iron distribution. A no-op below zero.
func (r *Resource) RemoveIron() {
	if r.DistributedIron > 0 {
		r.DistributedIron--
	}
}
