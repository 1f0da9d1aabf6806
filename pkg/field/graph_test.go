package field

import "testing"

func straightLineCells(n int) map[Position]bool {
	cells := map[Position]bool{}
	for i := 0; i < n; i++ {
		cells[Position{Row: 0, Col: i}] = true
	}
	return cells
}

func TestFindWay_SamePosition(t *testing.T) {
	g := NewGraph(straightLineCells(3))
	way, err := g.FindWay(Position{0, 0}, Position{0, 0})
	if err != nil {
		t.Fatalf("FindWay(a,a): %v", err)
	}
	if len(way) != 1 || way[0] != (Position{0, 0}) {
		t.Errorf("FindWay(a,a) = %v, want [a]", way)
	}
}

func TestFindWay_ShortestPathAlongLine(t *testing.T) {
	g := NewGraph(straightLineCells(5))
	way, err := g.FindWay(Position{0, 0}, Position{0, 4})
	if err != nil {
		t.Fatalf("FindWay: %v", err)
	}
	if len(way) != 5 {
		t.Errorf("len(way) = %d, want 5", len(way))
	}
	if way[0] != (Position{0, 0}) || way[len(way)-1] != (Position{0, 4}) {
		t.Errorf("way = %v, want to start at (0,0) and end at (0,4)", way)
	}
}

func TestFindWay_UnreachableEndpoint(t *testing.T) {
	g := NewGraph(straightLineCells(3))
	_, err := g.FindWay(Position{0, 0}, Position{9, 9})
	if err == nil {
		t.Fatal("expected ErrUnreachableEndpoints for an out-of-graph endpoint")
	}
}

func TestReduceToGreatestComponent_KeepsOnlyLargest(t *testing.T) {
	cells := map[Position]bool{
		{0, 0}: true, {0, 1}: true, {0, 2}: true, // component of 3
		{5, 5}: true, // isolated single node
	}
	g := NewGraph(cells)
	g.ReduceToGreatestComponent()

	if len(g.Nodes()) != 3 {
		t.Fatalf("expected the 3-node component to survive, got %d nodes", len(g.Nodes()))
	}
	if g.InGraph(Position{5, 5}) {
		t.Error("isolated node should have been discarded")
	}
}

func TestFindWayThrough_VisitsAllTargets(t *testing.T) {
	cells := map[Position]bool{}
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			cells[Position{Row: r, Col: c}] = true
		}
	}
	g := NewGraph(cells)
	targets := []Position{{4, 4}, {0, 4}}
	way, err := g.FindWayThrough(Position{0, 0}, targets)
	if err != nil {
		t.Fatalf("FindWayThrough: %v", err)
	}
	if way[0] != (Position{0, 0}) {
		t.Errorf("way should start at start position, got %v", way[0])
	}
	last := way[len(way)-1]
	if last != targets[0] && last != targets[1] {
		t.Errorf("way should end at one of the targets, got %v", last)
	}
	seen := map[Position]bool{}
	for _, p := range way {
		seen[p] = true
	}
	for _, target := range targets {
		if !seen[target] {
			t.Errorf("way never visits target %v", target)
		}
	}
}
