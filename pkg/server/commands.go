package server

import (
	"encoding/json"
	"fmt"

	"github.com/georgbuechner/dissonance/pkg/player"
	"github.com/georgbuechner/dissonance/pkg/wire"
)

// applyCommand validates and dispatches one inbound envelope to p, per
// spec §4.5's command set. It returns a response envelope (print_msg on
// success or failure) to echo back to the sender.
//
// Grounded on the teacher's validateAndApplyCommand dispatch shape
// (pkg/network/gameserver.go), generalized from one PlayerCommand.Type
// switch into DISSONANCE's nine named game commands.
func applyCommand(p *player.Player, side *PlayerSide, env wire.Envelope, nowMS int64) wire.Envelope {
	if err := dispatch(p, side, wire.Command(env.Command), env.Data, nowMS); err != nil {
		return wire.Envelope{
			Command:  string(wire.RespPrintMsg),
			Username: env.Username,
			Data:     mustMarshal(map[string]string{"error": err.Error()}),
		}
	}
	return wire.Envelope{Command: string(wire.RespPrintMsg), Username: env.Username}
}

func dispatch(p *player.Player, side *PlayerSide, cmd wire.Command, raw json.RawMessage, nowMS int64) error {
	switch cmd {
	case wire.CmdBuildNeuron:
		payload, err := decode[buildNeuronPayload](raw)
		if err != nil {
			return err
		}
		kind, ok := neuronKindNames[payload.Kind]
		if !ok {
			return fmt.Errorf("server: unknown neuron kind %q", payload.Kind)
		}
		if _, err := p.BuildNeuron(kind, unitCostFor(kind), payload.Position, payload.MaxStored, payload.NumWays); err != nil {
			return err
		}
		side.NeuronsBuilt++
		return nil

	case wire.CmdAddPotential:
		payload, err := decode[addPotentialPayload](raw)
		if err != nil {
			return err
		}
		kind, ok := potentialKindNames[payload.Kind]
		if !ok {
			return fmt.Errorf("server: unknown potential kind %q", payload.Kind)
		}
		pots, err := p.AddPotential(payload.SynapsePosition, kind, potentialCostFor(kind), nowMS)
		if err != nil {
			return err
		}
		side.PotentialsLaunched += len(pots)
		return nil

	case wire.CmdAddTech:
		payload, err := decode[addTechPayload](raw)
		if err != nil {
			return err
		}
		tech, ok := techUnitNames[payload.Tech]
		if !ok {
			return fmt.Errorf("server: unknown technology %q", payload.Tech)
		}
		return p.AddTechnology(tech)

	case wire.CmdAddIron:
		payload, err := decode[ironPayload](raw)
		if err != nil {
			return err
		}
		kind, ok := resourceKindNames[payload.Kind]
		if !ok {
			return fmt.Errorf("server: unknown resource kind %q", payload.Kind)
		}
		return p.DistributeIron(kind)

	case wire.CmdRemoveIron:
		payload, err := decode[ironPayload](raw)
		if err != nil {
			return err
		}
		kind, ok := resourceKindNames[payload.Kind]
		if !ok {
			return fmt.Errorf("server: unknown resource kind %q", payload.Kind)
		}
		p.RemoveIron(kind)
		return nil

	case wire.CmdSetWayPoints:
		payload, err := decode[wayPointsPayload](raw)
		if err != nil {
			return err
		}
		return p.SetWayPoints(payload.SynapsePosition, payload.Points)

	case wire.CmdSetSwarm:
		payload, err := decode[swarmPayload](raw)
		if err != nil {
			return err
		}
		return p.SetSwarm(payload.SynapsePosition, payload.On)

	case wire.CmdSetTarget:
		payload, err := decode[targetPayload](raw)
		if err != nil {
			return err
		}
		potential, ok := potentialKindNames[payload.Potential]
		if !ok {
			return fmt.Errorf("server: unknown potential kind %q", payload.Potential)
		}
		return p.SetTarget(payload.SynapsePosition, potential, payload.Position)

	case wire.CmdResign:
		side.Resigned = true
		return nil

	default:
		return fmt.Errorf("server: unhandled command %q", cmd)
	}
}
