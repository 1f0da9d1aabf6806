package server

import (
	"encoding/json"
	"fmt"

	"github.com/georgbuechner/dissonance/pkg/field"
	"github.com/georgbuechner/dissonance/pkg/resource"
	"github.com/georgbuechner/dissonance/pkg/unit"
)

// neuronKindNames and potentialKindNames translate the wire protocol's
// string enums into the typed constants pkg/unit and pkg/resource use.
var neuronKindNames = map[string]unit.NeuronKind{
	"synapse":          unit.KindSynapse,
	"activated_neuron": unit.KindActivatedNeuron,
	"nucleus":          unit.KindNucleus,
}

var potentialKindNames = map[string]unit.PotentialKind{
	"epsp": unit.KindEpsp,
	"ipsp": unit.KindIpsp,
}

var resourceKindNames = map[string]resource.Kind{
	"iron": resource.Iron, "oxygen": resource.Oxygen, "potassium": resource.Potassium,
	"chloride": resource.Chloride, "glutamate": resource.Glutamate,
	"dopamine": resource.Dopamine, "serotonin": resource.Serotonin,
}

var techUnitNames = map[string]resource.Unit{
	"way": resource.TechWay, "swarm": resource.TechSwarm, "target": resource.TechTarget,
	"total_oxygen": resource.TechTotalOxygen, "total_resource": resource.TechTotalResource,
	"curve": resource.TechCurve, "atk_potential": resource.TechAtkPotential,
	"atk_speed": resource.TechAtkSpeed, "atk_duration": resource.TechAtkDuration,
	"def_potential": resource.TechDefPotential, "def_speed": resource.TechDefSpeed,
	"nucleus_range": resource.TechNucleusRange,
}

func unitCostFor(kind unit.NeuronKind) resource.Unit {
	switch kind {
	case unit.KindSynapse:
		return resource.UnitSynapse
	case unit.KindActivatedNeuron:
		return resource.UnitActivatedNeuron
	default:
		return resource.UnitNucleus
	}
}

func potentialCostFor(kind unit.PotentialKind) resource.Unit {
	if kind == unit.KindIpsp {
		return resource.UnitIpsp
	}
	return resource.UnitEpsp
}

// buildNeuronPayload is CmdBuildNeuron's data.
type buildNeuronPayload struct {
	Kind      string         `json:"kind"`
	Position  field.Position `json:"position"`
	MaxStored int            `json:"max_stored"`
	NumWays   int            `json:"num_ways"`
}

// addPotentialPayload is CmdAddPotential's data.
type addPotentialPayload struct {
	SynapsePosition field.Position `json:"synapse_position"`
	Kind            string         `json:"kind"`
}

// addTechPayload is CmdAddTech's data.
type addTechPayload struct {
	Tech string `json:"tech"`
}

// ironPayload is CmdAddIron/CmdRemoveIron's data.
type ironPayload struct {
	Kind string `json:"kind"`
}

// wayPointsPayload is CmdSetWayPoints's data.
type wayPointsPayload struct {
	SynapsePosition field.Position   `json:"synapse_position"`
	Points          []field.Position `json:"points"`
}

// swarmPayload is CmdSetSwarm's data.
type swarmPayload struct {
	SynapsePosition field.Position `json:"synapse_position"`
	On              bool           `json:"on"`
}

// targetPayload is CmdSetTarget's data.
type targetPayload struct {
	SynapsePosition field.Position `json:"synapse_position"`
	Potential       string         `json:"potential"`
	Position        field.Position `json:"position"`
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("server: malformed command payload: %w", err)
	}
	return v, nil
}

// mustMarshal marshals v, which is always one of this package's own
// plain data types — a failure here would be a programming error, not a
// runtime condition callers need to handle.
func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
