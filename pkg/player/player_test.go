package player

import (
	"math/rand"
	"testing"

	"github.com/georgbuechner/dissonance/pkg/field"
	"github.com/georgbuechner/dissonance/pkg/resource"
	"github.com/georgbuechner/dissonance/pkg/unit"
)

func newTestPlayers(t *testing.T) (*Player, *Player) {
	t.Helper()
	f := field.NewField(10, 10, rand.New(rand.NewSource(1)))
	a := NewPlayer(0, f, nil)
	b := NewPlayer(1, f, nil)
	a.Opponent = b
	b.Opponent = a

	if _, err := f.BuildGraph(field.Position{Row: 0, Col: 0}, field.Position{Row: 9, Col: 9}); err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return a, b
}

func grant(p *Player, cost map[resource.Kind]float64) {
	for k, v := range cost {
		p.Ledger.Get(k).Free += v
	}
}

func TestBuildNeuron_FirstNucleusAnywhereFree(t *testing.T) {
	a, _ := newTestPlayers(t)
	cost, _ := resource.CostOf(resource.UnitNucleus, 1)
	grant(a, cost)

	n, err := a.BuildNeuron(unit.KindNucleus, resource.UnitNucleus, field.Position{Row: 0, Col: 0}, 0, 0)
	if err != nil {
		t.Fatalf("BuildNeuron: %v", err)
	}
	if n.Kind != unit.KindNucleus {
		t.Errorf("Kind = %v, want Nucleus", n.Kind)
	}
	if a.Field.IsFree(field.Position{Row: 0, Col: 0}) {
		t.Error("cell should no longer be free")
	}
}

func TestBuildNeuron_RejectsNonAdjacentSecondNeuron(t *testing.T) {
	a, _ := newTestPlayers(t)
	cost, _ := resource.CostOf(resource.UnitNucleus, 1)
	grant(a, cost)
	if _, err := a.BuildNeuron(unit.KindNucleus, resource.UnitNucleus, field.Position{Row: 0, Col: 0}, 0, 0); err != nil {
		t.Fatalf("first build: %v", err)
	}

	cost2, _ := resource.CostOf(resource.UnitSynapse, 1)
	grant(a, cost2)
	if _, err := a.BuildNeuron(unit.KindSynapse, resource.UnitSynapse, field.Position{Row: 9, Col: 9}, 1, 1); err == nil {
		t.Error("expected rejection: not adjacent to owned territory")
	}
}

func TestBuildNeuron_RejectsInsufficientResources(t *testing.T) {
	a, _ := newTestPlayers(t)
	if _, err := a.BuildNeuron(unit.KindNucleus, resource.UnitNucleus, field.Position{Row: 0, Col: 0}, 0, 0); err == nil {
		t.Error("expected rejection: no resources granted")
	}
}

// TestEpspArrivalReducesNucleusVoltage encodes the round-trip scenario:
// a Synapse 5 cells from an enemy Nucleus, step_cooldown_ms=100 (forced via
// a zero speed boost and a pre-set cooldown), fires an Epsp that arrives
// after 500ms of simulated ticking and reduces the Nucleus's voltage by its
// strength.
func TestEpspArrivalReducesNucleusVoltage(t *testing.T) {
	a, b := newTestPlayers(t)

	nucleusPos := field.Position{Row: 0, Col: 5}
	ncost, _ := resource.CostOf(resource.UnitNucleus, 1)
	grant(b, ncost)
	if _, err := b.BuildNeuron(unit.KindNucleus, resource.UnitNucleus, nucleusPos, 0, 0); err != nil {
		t.Fatalf("enemy nucleus build: %v", err)
	}

	synPos := field.Position{Row: 0, Col: 0}
	scost, _ := resource.CostOf(resource.UnitSynapse, 1)
	grant(a, scost)
	syn, err := a.BuildNeuron(unit.KindSynapse, resource.UnitSynapse, synPos, 1, 1)
	if err != nil {
		t.Fatalf("synapse build: %v", err)
	}
	syn.EpspTarget = nucleusPos

	ecost, _ := resource.CostOf(resource.UnitEpsp, 1)
	grant(a, ecost)

	pots, err := a.AddPotential(synPos, unit.KindEpsp, resource.UnitEpsp, 0)
	if err != nil {
		t.Fatalf("AddPotential: %v", err)
	}
	if len(pots) != 1 {
		t.Fatalf("len(pots) = %d, want 1", len(pots))
	}
	pot := pots[0]
	pot.StepCooldownMS = 100
	pot.NextStepDeadlineMS = 100

	startVoltage := b.Neurons[nucleusPos].Voltage
	for ms := int64(100); ms <= 500; ms += 100 {
		a.TickPotentials(ms)
	}

	if _, stillFlying := a.Potentials[1]; stillFlying {
		t.Fatal("expected the epsp to have arrived by 500ms over a 5-cell path at 100ms/step")
	}
	got := b.Neurons[nucleusPos].Voltage
	if got-startVoltage != pot.Strength {
		t.Errorf("Voltage delta = %d, want %d (epsp strength)", got-startVoltage, pot.Strength)
	}
}

func TestAddPotential_RejectsBlockedSynapse(t *testing.T) {
	a, _ := newTestPlayers(t)
	scost, _ := resource.CostOf(resource.UnitSynapse, 1)
	grant(a, scost)
	syn, err := a.BuildNeuron(unit.KindSynapse, resource.UnitSynapse, field.Position{Row: 0, Col: 0}, 1, 1)
	if err != nil {
		t.Fatalf("synapse build: %v", err)
	}
	syn.SetBlocked(1000)

	ecost, _ := resource.CostOf(resource.UnitEpsp, 1)
	grant(a, ecost)
	if _, err := a.AddPotential(field.Position{Row: 0, Col: 0}, unit.KindEpsp, resource.UnitEpsp, 0); err == nil {
		t.Error("expected rejection: synapse is blocked")
	}
}

func TestAddTechnology_RespectsCapAndCost(t *testing.T) {
	a, _ := newTestPlayers(t)
	for i := 0; i < 2; i++ {
		cost, _ := resource.CostOf(resource.TechTotalOxygen, i+1)
		grant(a, cost)
		if err := a.AddTechnology(resource.TechTotalOxygen); err != nil {
			t.Fatalf("AddTechnology call %d: %v", i, err)
		}
	}
	if err := a.AddTechnology(resource.TechTotalOxygen); err == nil {
		t.Error("expected rejection: technology already at its cap of 2")
	}
}

func TestSetSwarm_RejectsWithoutResearch(t *testing.T) {
	a, _ := newTestPlayers(t)
	scost, _ := resource.CostOf(resource.UnitSynapse, 1)
	grant(a, scost)
	if _, err := a.BuildNeuron(unit.KindSynapse, resource.UnitSynapse, field.Position{Row: 0, Col: 0}, 1, 1); err != nil {
		t.Fatalf("synapse build: %v", err)
	}
	if err := a.SetSwarm(field.Position{Row: 0, Col: 0}, true); err == nil {
		t.Error("expected rejection: swarm not researched")
	}
}

func TestDistributeIronAndRemoveIron_RoundTrip(t *testing.T) {
	a, _ := newTestPlayers(t)
	a.Ledger.Get(resource.Iron).Free = 1
	if err := a.DistributeIron(resource.Oxygen); err != nil {
		t.Fatalf("DistributeIron: %v", err)
	}
	if a.Ledger.Get(resource.Oxygen).DistributedIron != 1 {
		t.Fatalf("DistributedIron = %d, want 1", a.Ledger.Get(resource.Oxygen).DistributedIron)
	}
	a.RemoveIron(resource.Oxygen)
	if a.Ledger.Get(resource.Oxygen).DistributedIron != 0 {
		t.Errorf("DistributedIron after remove = %d, want 0", a.Ledger.Get(resource.Oxygen).DistributedIron)
	}
	if a.Ledger.Get(resource.Iron).Free != 1 {
		t.Errorf("Iron.Free after round trip = %v, want 1", a.Ledger.Get(resource.Iron).Free)
	}
}

func TestTickIronDrip_GrantsIronAfterInterval(t *testing.T) {
	a, _ := newTestPlayers(t)
	ts := NewTickState(0, DefaultIronDripIntervalMS)
	a.TickIronDrip(ts, 5000)
	if a.Ledger.Get(resource.Iron).Free != 0 {
		t.Fatal("drip should not have fired before the interval elapsed")
	}
	a.TickIronDrip(ts, 10_000)
	if a.Ledger.Get(resource.Iron).Free != 1 {
		t.Errorf("Iron.Free = %v, want 1 after one drip interval", a.Ledger.Get(resource.Iron).Free)
	}
}
