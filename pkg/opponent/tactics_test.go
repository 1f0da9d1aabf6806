package opponent

import "testing"

func TestSeedScore_NeverZero(t *testing.T) {
	var weights [12]int
	if got := seedScore(weights, 0, 5); got != 1 {
		t.Errorf("seedScore with all-zero weights = %d, want 1 (floor)", got)
	}
}

func TestPickAndDecrement_PicksHighestThenLowers(t *testing.T) {
	scores := map[AttackStrategy]int{EpspFocused: 5, IpspFocused: 9, Balanced: 2, Overwhelm: 1, Harass: 1}
	got := pickAndDecrement(scores, allAttackStrategies)
	if got != IpspFocused {
		t.Fatalf("pickAndDecrement = %v, want IpspFocused", got)
	}
	if scores[IpspFocused] != 8 {
		t.Errorf("score after pick = %d, want 8 (decremented from 9)", scores[IpspFocused])
	}
}

func TestPickAndDecrement_NeverGoesNegative(t *testing.T) {
	scores := map[DefStrategy]int{DefIpspBlock: 0, DefAnBlock: 0}
	got := pickAndDecrement(scores, allDefStrategies)
	if scores[got] != 0 {
		t.Errorf("score = %d, want floor at 0", scores[got])
	}
}

func TestNewTactics_SeedsAllFiveTables(t *testing.T) {
	var weights [12]int
	for i := range weights {
		weights[i] = i + 1
	}
	tac := NewTactics(weights)
	if len(tac.attack) != len(allAttackStrategies) {
		t.Errorf("attack table has %d entries, want %d", len(tac.attack), len(allAttackStrategies))
	}
	if len(tac.epspTarget) != len(allEpspTargetStrategies) {
		t.Errorf("epspTarget table has %d entries, want %d", len(tac.epspTarget), len(allEpspTargetStrategies))
	}
	if len(tac.def) != len(allDefStrategies) {
		t.Errorf("def table has %d entries, want %d", len(tac.def), len(allDefStrategies))
	}
}
