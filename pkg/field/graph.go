package field

import (
	"errors"
	"fmt"
)

// ErrUnreachableEndpoints is returned by BuildGraph when the two endpoints
// it is asked to connect do not both survive reduction to the largest
// connected component.
var ErrUnreachableEndpoints = errors.New("field: unreachable endpoints")

// Graph holds one node per non-Hill cell, with edges to each cell's
// 8-connected neighbors that are also nodes. After construction it is
// reduced to its single largest connected component.
//
// Grounded on original_source/src/share/tools/graph.h Graph, with FindWay
// returning an error instead of throwing a C string literal (Design Notes
// §9's guidance to replace the original's exception-for-control-flow habit
// with an explicit Go error return).
type Graph struct {
	nodes map[Position][]Position
}

// NewGraph builds a Graph over every cell in cells that is not itself a
// Hill, wiring edges between 8-neighbors that are also present.
func NewGraph(cells map[Position]bool) *Graph {
	g := &Graph{nodes: make(map[Position][]Position, len(cells))}
	for pos, open := range cells {
		if !open {
			continue
		}
		g.nodes[pos] = nil
	}
	for pos := range g.nodes {
		for _, n := range pos.Neighbors() {
			if _, ok := g.nodes[n]; ok {
				g.nodes[pos] = append(g.nodes[pos], n)
			}
		}
	}
	return g
}

// InGraph reports whether pos survived as a node.
func (g *Graph) InGraph(pos Position) bool {
	_, ok := g.nodes[pos]
	return ok
}

// Nodes returns every surviving node position.
func (g *Graph) Nodes() []Position {
	out := make([]Position, 0, len(g.nodes))
	for pos := range g.nodes {
		out = append(out, pos)
	}
	return out
}

// ReduceToGreatestComponent repeatedly finds connected components via BFS
// and discards every node not in the largest one, until only a single
// component remains.
func (g *Graph) ReduceToGreatestComponent() {
	if len(g.nodes) == 0 {
		return
	}
	for {
		unvisited := g.Nodes()
		var components [][]Position
		seen := make(map[Position]bool, len(g.nodes))
		for _, start := range unvisited {
			if seen[start] {
				continue
			}
			comp := g.bfsComponent(start)
			for _, p := range comp {
				seen[p] = true
			}
			components = append(components, comp)
		}
		if len(components) <= 1 {
			return
		}
		biggest := 0
		for i, c := range components {
			if len(c) > len(components[biggest]) {
				biggest = i
			}
			_ = i
		}
		for i, c := range components {
			if i == biggest {
				continue
			}
			for _, p := range c {
				delete(g.nodes, p)
			}
		}
		g.pruneDanglingEdges()
	}
}

func (g *Graph) pruneDanglingEdges() {
	for pos, edges := range g.nodes {
		kept := edges[:0]
		for _, e := range edges {
			if _, ok := g.nodes[e]; ok {
				kept = append(kept, e)
			}
		}
		g.nodes[pos] = kept
	}
}

func (g *Graph) bfsComponent(start Position) []Position {
	visited := map[Position]bool{start: true}
	queue := []Position{start}
	var out []Position
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		for _, n := range g.nodes[cur] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return out
}

// FindWay returns the breadth-first shortest path from a to b, inclusive of
// both endpoints. FindWay(a, a) returns [a].
func (g *Graph) FindWay(a, b Position) ([]Position, error) {
	if !g.InGraph(a) || !g.InGraph(b) {
		return nil, fmt.Errorf("%w: %v -> %v", ErrUnreachableEndpoints, a, b)
	}
	if a == b {
		return []Position{a}, nil
	}
	prev := map[Position]Position{a: a}
	queue := []Position{a}
	found := false
	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.nodes[cur] {
			if _, ok := prev[n]; ok {
				continue
			}
			prev[n] = cur
			if n == b {
				found = true
				break
			}
			queue = append(queue, n)
		}
	}
	if _, ok := prev[b]; !ok {
		return nil, fmt.Errorf("%w: %v -> %v", ErrUnreachableEndpoints, a, b)
	}

	var way []Position
	for cur := b; ; {
		way = append(way, cur)
		if cur == a {
			break
		}
		cur = prev[cur]
	}
	for i, j := 0, len(way)-1; i < j; i, j = i+1, j-1 {
		way[i], way[j] = way[j], way[i]
	}
	return way, nil
}

// FindWayThrough returns a path starting at start, visiting every position
// in targets (in an order chosen greedily to reduce cumulative remaining
// distance), and ending at the last target visited.
func (g *Graph) FindWayThrough(start Position, targets []Position) ([]Position, error) {
	if len(targets) == 0 {
		return []Position{start}, nil
	}
	remaining := append([]Position(nil), targets...)
	cur := start
	var full []Position
	for len(remaining) > 0 {
		nextIdx := nearestIndex(cur, remaining)
		next := remaining[nextIdx]
		leg, err := g.FindWay(cur, next)
		if err != nil {
			return nil, err
		}
		if len(full) > 0 {
			leg = leg[1:] // drop duplicate join point
		}
		full = append(full, leg...)
		remaining = append(remaining[:nextIdx], remaining[nextIdx+1:]...)
		cur = next
	}
	return full, nil
}

func nearestIndex(from Position, candidates []Position) int {
	best, bestDist := 0, from.Distance(candidates[0])
	for i := 1; i < len(candidates); i++ {
		if d := from.Distance(candidates[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
