package resource

import (
	"errors"
	"fmt"
)

// Unit identifies a unit or technology that can be built/researched, with
// a static resource cost. Values match
// original_source/src/constants/codes.h UnitsTech.
type Unit int

const (
	UnitActivatedNeuron Unit = iota
	UnitSynapse
	UnitNucleus
	UnitEpsp
	UnitIpsp
	TechWay
	TechSwarm
	TechTarget
	TechTotalOxygen
	TechTotalResource
	TechCurve
	TechAtkPotential
	TechAtkSpeed
	TechAtkDuration
	TechDefPotential
	TechDefSpeed
	TechNucleusRange
)

// costTable is the authoritative static unit/technology cost table, taken
// from original_source/src/constants/costs.h (the later, Iron-inclusive
// table the REDESIGN FLAGS identify as authoritative over the older
// bronze_/silver_ gatherer scheme).
var costTable = map[Unit]map[Kind]float64{
	UnitNucleus: {
		Iron: 1, Oxygen: 30, Potassium: 30, Chloride: 30, Glutamate: 30, Dopamine: 30, Serotonin: 30,
	},
	UnitActivatedNeuron: {
		Oxygen: 8.9, Glutamate: 19.1,
	},
	UnitSynapse: {
		Oxygen: 13.4, Potassium: 6.6,
	},
	UnitEpsp: {
		Potassium: 4.4,
	},
	UnitIpsp: {
		Potassium: 3.4, Chloride: 6.8,
	},
	TechWay: {
		Iron: 1, Dopamine: 17.7,
	},
	TechSwarm: {
		Iron: 1, Dopamine: 19.9,
	},
	TechTarget: {
		Iron: 1, Dopamine: 16.5,
	},
	TechTotalResource: {
		Iron: 1, Dopamine: 18.5, Serotonin: 17.9,
	},
	TechCurve: {
		Iron: 1, Dopamine: 21.0, Serotonin: 21.2,
	},
	TechAtkPotential: {
		Iron: 1, Potassium: 10, Dopamine: 16.0, Serotonin: 11.2,
	},
	TechAtkSpeed: {
		Iron: 1, Potassium: 10, Dopamine: 19.0, Serotonin: 13.2,
	},
	TechAtkDuration: {
		Iron: 1, Potassium: 10, Dopamine: 17.5, Serotonin: 12.2,
	},
	TechDefSpeed: {
		Iron: 1, Glutamate: 15.8, Dopamine: 16.5, Serotonin: 6.6,
	},
	TechDefPotential: {
		Iron: 1, Glutamate: 15.9, Dopamine: 14.5, Serotonin: 17.6,
	},
	TechNucleusRange: {
		Iron: 1, Oxygen: 10, Dopamine: 13.5, Serotonin: 17.9,
	},
}

// ErrInsufficientResources is returned by Charge when one or more
// resources lack enough free amount to cover cost. Missing names the
// resources that were short.
type ErrInsufficientResources struct {
	Missing []Kind
}

func (e *ErrInsufficientResources) Error() string {
	return fmt.Sprintf("resource: insufficient resources: %v", e.Missing)
}

var errUnknownUnit = errors.New("resource: unknown unit")

// CostOf returns the static cost map for unit, scaled by level for
// technologies (cost grows linearly with the current research level,
// level 0 meaning "not yet researched" costs the base table value).
func CostOf(unit Unit, level int) (map[Kind]float64, error) {
	base, ok := costTable[unit]
	if !ok {
		return nil, fmt.Errorf("%w: %v", errUnknownUnit, unit)
	}
	if level <= 0 {
		level = 1
	}
	scaled := make(map[Kind]float64, len(base))
	for k, v := range base {
		if k == Iron {
			scaled[k] = v // iron cost never scales with level
			continue
		}
		scaled[k] = v * float64(level)
	}
	return scaled, nil
}

// Afford returns the set of resources in cost for which free is
// insufficient. An empty result means the ledger can afford the cost.
func (l *Ledger) Afford(cost map[Kind]float64) []Kind {
	var missing []Kind
	for k, amount := range cost {
		if l.resources[k].Free < amount {
			missing = append(missing, k)
		}
	}
	return missing
}

// Charge atomically decreases every resource in cost: either every
// resource has enough free and all are decreased, or nothing changes.
func (l *Ledger) Charge(cost map[Kind]float64, bind bool) error {
	if missing := l.Afford(cost); len(missing) > 0 {
		return &ErrInsufficientResources{Missing: missing}
	}
	for k, amount := range cost {
		l.resources[k].Decrease(amount, bind)
	}
	return nil
}
