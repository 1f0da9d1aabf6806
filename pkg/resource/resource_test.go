package resource

import "testing"

func TestIncrease_NoopAtSaturation(t *testing.T) {
	r := NewResource(Oxygen, 10, 10)
	if err := r.Increase(1, 1); err != nil {
		t.Fatalf("Increase: %v", err)
	}
	if r.Free != 10 {
		t.Errorf("Free = %v, want 10 (no-op at saturation)", r.Free)
	}
}

func TestIncrease_BoostedByDistributedIron(t *testing.T) {
	base := NewResource(Oxygen, 0, 100)
	boosted := NewResource(Oxygen, 0, 100)
	boosted.DistributedIron = 5

	base.Increase(10, 1)
	boosted.Increase(10, 1)

	if boosted.Free <= base.Free {
		t.Errorf("boosted.Free = %v, want > base.Free = %v", boosted.Free, base.Free)
	}
}

func TestActive_RequiresTwoDistributedIron(t *testing.T) {
	r := NewResource(Oxygen, 0, 100)
	if r.Active() {
		t.Error("fresh resource should not be active")
	}
	r.DistributedIron = 1
	if r.Active() {
		t.Error("distributed_iron=1 should not be active")
	}
	r.DistributedIron = 2
	if !r.Active() {
		t.Error("distributed_iron=2 should be active")
	}
}

func TestDecrease_BindsWhenRequested(t *testing.T) {
	r := NewResource(Oxygen, 50, 100)
	r.Decrease(20, true)
	if r.Free != 30 {
		t.Errorf("Free = %v, want 30", r.Free)
	}
	if r.Bound != 20 {
		t.Errorf("Bound = %v, want 20", r.Bound)
	}
}

func TestLedger_TickResources_InactiveDoesNotAccumulate(t *testing.T) {
	l := NewLedger()
	l.TickResources(10, 1)
	if l.Get(Oxygen).Free != 0 {
		t.Errorf("inactive resource accumulated: Free = %v, want 0", l.Get(Oxygen).Free)
	}
}

func TestLedger_TickResources_ActiveAccumulates(t *testing.T) {
	l := NewLedger()
	l.Get(Oxygen).DistributedIron = 2
	l.TickResources(10, 1)
	if l.Get(Oxygen).Free <= 0 {
		t.Errorf("active resource did not accumulate: Free = %v", l.Get(Oxygen).Free)
	}
}

func TestLedger_DistributeAndRemoveIron_RoundTrip(t *testing.T) {
	l := NewLedger()
	l.Get(Iron).Free = 5

	before := *l.Get(Iron)
	beforeOxygen := *l.Get(Oxygen)

	if err := l.DistributeIron(Oxygen); err != nil {
		t.Fatalf("DistributeIron: %v", err)
	}
	l.RemoveIron(Oxygen)

	after := *l.Get(Iron)
	afterOxygen := *l.Get(Oxygen)
	if after != before {
		t.Errorf("Iron ledger not restored: before=%+v after=%+v", before, after)
	}
	if afterOxygen != beforeOxygen {
		t.Errorf("Oxygen ledger not restored: before=%+v after=%+v", beforeOxygen, afterOxygen)
	}
}

func TestLedger_DistributeIron_FailsWithoutFreeIron(t *testing.T) {
	l := NewLedger()
	if err := l.DistributeIron(Oxygen); err == nil {
		t.Error("expected an error distributing iron with none free")
	}
}

func TestCharge_AtomicAllOrNothing(t *testing.T) {
	l := NewLedger()
	l.Get(Oxygen).Free = 100
	l.Get(Potassium).Free = 0 // insufficient

	cost := map[Kind]float64{Oxygen: 10, Potassium: 10}
	err := l.Charge(cost, false)
	if err == nil {
		t.Fatal("expected ErrInsufficientResources")
	}
	if l.Get(Oxygen).Free != 100 {
		t.Errorf("Oxygen.Free changed despite failed charge: %v", l.Get(Oxygen).Free)
	}
}

func TestCharge_SucceedsAndBinds(t *testing.T) {
	l := NewLedger()
	l.Get(Oxygen).Free = 100
	l.Get(Potassium).Free = 100

	cost := map[Kind]float64{Oxygen: 10, Potassium: 20}
	if err := l.Charge(cost, true); err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if l.Get(Oxygen).Free != 90 || l.Get(Oxygen).Bound != 10 {
		t.Errorf("Oxygen after charge = free:%v bound:%v, want free:90 bound:10", l.Get(Oxygen).Free, l.Get(Oxygen).Bound)
	}
	if l.Get(Potassium).Free != 80 || l.Get(Potassium).Bound != 20 {
		t.Errorf("Potassium after charge = free:%v bound:%v, want free:80 bound:20", l.Get(Potassium).Free, l.Get(Potassium).Bound)
	}
}

func TestCostOf_NucleusMatchesAuthoritativeTable(t *testing.T) {
	cost, err := CostOf(UnitNucleus, 1)
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}
	if cost[Iron] != 1 || cost[Oxygen] != 30 {
		t.Errorf("UnitNucleus cost = %+v, want iron:1 oxygen:30", cost)
	}
}

func TestCostOf_UnknownUnit(t *testing.T) {
	if _, err := CostOf(Unit(999), 1); err == nil {
		t.Error("expected error for unknown unit")
	}
}
