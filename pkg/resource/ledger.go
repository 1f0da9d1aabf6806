package resource

import "fmt"

// defaultLimit is the saturation cap new ledgers start with for each
// accumulating resource. No code path changes a Limit after creation;
// researching TOTAL_RESOURCE does not raise it.
const defaultLimit = 100

// Ledger owns one player's full set of Resources, keyed by Kind.
type Ledger struct {
	resources map[Kind]*Resource
}

// NewLedger creates a Ledger with Iron starting at 0 (uncapped spendable
// pool) and the six accumulating resources starting empty at defaultLimit.
func NewLedger() *Ledger {
	l := &Ledger{resources: map[Kind]*Resource{
		Iron: NewResource(Iron, 0, 1_000_000),
	}}
	for _, k := range AccumulatingKinds {
		l.resources[k] = NewResource(k, 0, defaultLimit)
	}
	return l
}

// Get returns the Resource for kind.
func (l *Ledger) Get(kind Kind) *Resource {
	return l.resources[kind]
}

// TickResources runs Increase(baseGain, slowdown) on every active
// accumulating resource. Inactive resources (distributed_iron < 2) do not
// accumulate.
func (l *Ledger) TickResources(baseGain, slowdown float64) {
	for _, k := range AccumulatingKinds {
		r := l.resources[k]
		if r.Active() {
			r.Increase(baseGain, slowdown)
		}
	}
}

// DistributeIron consumes one unit of Iron.Free and boosts kind's
// distributed_iron. Returns an error if Iron has no free unit to give.
func (l *Ledger) DistributeIron(kind Kind) error {
	iron := l.resources[Iron]
	if iron.Free < 1 {
		return fmt.Errorf("resource: no free iron to distribute to %s", kind)
	}
	iron.Free--
	l.resources[kind].DistributeIron()
	return nil
}

// RemoveIron reverses one unit of iron distribution from kind, returning
// it to the Iron pool.
func (l *Ledger) RemoveIron(kind Kind) {
	r := l.resources[kind]
	if r.DistributedIron == 0 {
		return
	}
	r.RemoveIron()
	l.resources[Iron].Free++
}

// TotalDistributedIron sums distributed_iron across every accumulating
// resource, used by tick_iron_drip's cap check.
func (l *Ledger) TotalDistributedIron() int {
	total := 0
	for _, k := range AccumulatingKinds {
		total += l.resources[k].DistributedIron
	}
	return total
}
