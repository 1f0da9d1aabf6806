package field

import (
	"fmt"
	"math"
	"math/rand"
)

// Symbol identifies what occupies a cell.
type Symbol int

const (
	SymbolFree Symbol = iota
	SymbolHill
	SymbolNucleus
	SymbolSynapse
	SymbolActivatedNeuron
	SymbolResourceNeuron
)

// resourceOrder is the six non-Iron resource kinds placed as a ring around
// a nucleus, in the fixed order of original_source/src/share/constants/codes.h
// Resources (Iron excluded — Iron has no fixed field position).
var resourceOrder = []string{"oxygen", "potassium", "chloride", "glutamate", "dopamine", "serotonin"}

// Field is the 2D grid of cells the game is played on: every cell is either
// a Hill (impassable), Free, or occupied by a neuron. A Field owns at most
// one Graph, set by BuildGraph; AddHills does not rebuild it.
//
// Grounded on original_source/src/game/field.h Field and the hill-placement
// shapes of original_source/src/field.cc Field::add_hills.
type Field struct {
	rows, cols int
	occupied   map[Position]Symbol
	hills      map[Position]bool
	rng        *rand.Rand
	graph      *Graph
}

// NewField creates an empty rows x cols field.
func NewField(rows, cols int, rng *rand.Rand) *Field {
	return &Field{
		rows:     rows,
		cols:     cols,
		occupied: map[Position]Symbol{},
		hills:    map[Position]bool{},
		rng:      rng,
	}
}

func (f *Field) inBounds(p Position) bool {
	return p.Row >= 0 && p.Row < f.rows && p.Col >= 0 && p.Col < f.cols
}

// IsFree reports whether pos is in bounds, not a hill, and not occupied.
func (f *Field) IsFree(pos Position) bool {
	if !f.inBounds(pos) {
		return false
	}
	if f.hills[pos] {
		return false
	}
	_, occ := f.occupied[pos]
	return !occ
}

// AddHills scatters (rows*cols)/(40/denseness) blob-shaped obstacles (at
// least one; heap, horizontal, vertical) across the grid, mirroring the three shapes the original
// prototype places.
func (f *Field) AddHills(denseness int) {
	if denseness <= 0 {
		denseness = 1
	}
	count := (f.rows * f.cols) / (40 / denseness)
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		start := Position{Row: f.rng.Intn(f.rows), Col: f.rng.Intn(f.cols)}
		f.setHill(start)
		switch f.rng.Intn(3) {
		case 0: // heap
			f.setHill(Position{start.Row + 1, start.Col + 1})
			f.setHill(Position{start.Row, start.Col + 1})
			f.setHill(Position{start.Row - 1, start.Col})
			f.setHill(Position{start.Row - 1, start.Col - 1})
		case 1: // vertical run
			for d := -2; d <= 2; d++ {
				f.setHill(Position{f.clampRow(start.Row + d), start.Col})
			}
		default: // horizontal run
			for d := -2; d <= 2; d++ {
				f.setHill(Position{start.Row, f.clampCol(start.Col + d)})
			}
		}
	}
}

func (f *Field) setHill(p Position) {
	if f.inBounds(p) {
		if _, occ := f.occupied[p]; !occ {
			f.hills[p] = true
		}
	}
}

func (f *Field) clampRow(r int) int {
	if r < 0 {
		return 0
	}
	if r >= f.rows {
		return f.rows - 1
	}
	return r
}

func (f *Field) clampCol(c int) int {
	if c < 0 {
		return 0
	}
	if c >= f.cols {
		return f.cols - 1
	}
	return c
}

// sectionBounds returns the row/col ranges of one of the 8 compass sectors
// the grid is divided into (a 3x3 layout with the center band excluded).
func (f *Field) sectionBounds(section int) (rowLo, rowHi, colLo, colHi int) {
	rowThird, colThird := f.rows/3, f.cols/3
	type band struct{ row, col int }
	order := []band{{0, 1}, {0, 2}, {1, 2}, {2, 2}, {2, 1}, {2, 0}, {1, 0}, {0, 0}}
	b := order[((section%8)+8)%8]
	rowLo = b.row * rowThird
	rowHi = rowLo + rowThird
	colLo = b.col * colThird
	colHi = colLo + colThird
	if b.row == 2 {
		rowHi = f.rows
	}
	if b.col == 2 {
		colHi = f.cols
	}
	return
}

// AddNucleus places a Nucleus at the center of the named sector (0-7,
// compass order starting North, clockwise) and returns the chosen cell.
func (f *Field) AddNucleus(section int) Position {
	rowLo, rowHi, colLo, colHi := f.sectionBounds(section)
	center := Position{Row: (rowLo + rowHi) / 2, Col: (colLo + colHi) / 2}
	pos, ok := f.nearestFreeWithin(center, rowLo, rowHi, colLo, colHi)
	if !ok {
		pos = center
	}
	f.occupied[pos] = SymbolNucleus
	delete(f.hills, pos)
	return pos
}

func (f *Field) nearestFreeWithin(center Position, rowLo, rowHi, colLo, colHi int) (Position, bool) {
	if f.IsFree(center) {
		return center, true
	}
	for radius := 1; radius < f.rows+f.cols; radius++ {
		for dr := -radius; dr <= radius; dr++ {
			for dc := -radius; dc <= radius; dc++ {
				p := Position{Row: center.Row + dr, Col: center.Col + dc}
				if p.Row < rowLo || p.Row >= rowHi || p.Col < colLo || p.Col >= colHi {
					continue
				}
				if f.IsFree(p) {
					return p, true
				}
			}
		}
	}
	return Position{}, false
}

// AddResources places the six non-Iron resource cells as a ring around
// near, at fixed 60-degree offsets (one per entry of resourceOrder).
func (f *Field) AddResources(near Position, ringRadius float64) map[string]Position {
	placed := make(map[string]Position, len(resourceOrder))
	for i, kind := range resourceOrder {
		angle := float64(i) * (2 * math.Pi / float64(len(resourceOrder)))
		dr := int(math.Round(ringRadius * math.Sin(angle)))
		dc := int(math.Round(ringRadius * math.Cos(angle)))
		wanted := Position{Row: near.Row + dr, Col: near.Col + dc}
		pos, ok := f.FindFree(wanted, 0, int(ringRadius)+3)
		if !ok {
			continue
		}
		f.occupied[pos] = SymbolResourceNeuron
		delete(f.hills, pos)
		placed[kind] = pos
	}
	return placed
}

// FindFree returns the nearest free cell to center within the annulus
// [min, max], scanning in widening rings.
func (f *Field) FindFree(center Position, min, max int) (Position, bool) {
	for radius := min; radius <= max; radius++ {
		for dr := -radius; dr <= radius; dr++ {
			for dc := -radius; dc <= radius; dc++ {
				if int(math.Round(math.Hypot(float64(dr), float64(dc)))) != radius {
					continue
				}
				p := Position{Row: center.Row + dr, Col: center.Col + dc}
				if f.IsFree(p) {
					return p, true
				}
			}
		}
	}
	return Position{}, false
}

// InRange reports whether pos is within r_min..r_max Euclidean distance of
// start.
func (f *Field) InRange(pos, start Position, rMax, rMin float64) bool {
	d := pos.Distance(start)
	return d >= rMin && d <= rMax
}

// GetAllInRange returns every cell within [rMin, rMax] of start; if
// requireFree is set, only free cells are returned.
func (f *Field) GetAllInRange(start Position, rMax, rMin float64, requireFree bool) []Position {
	var out []Position
	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			p := Position{Row: r, Col: c}
			if !f.InRange(p, start, rMax, rMin) {
				continue
			}
			if requireFree && !f.IsFree(p) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// GetAllCenterPositionsOfSections returns the center position of each of
// the 8 compass sectors.
func (f *Field) GetAllCenterPositionsOfSections() []Position {
	out := make([]Position, 8)
	for s := 0; s < 8; s++ {
		rowLo, rowHi, colLo, colHi := f.sectionBounds(s)
		out[s] = Position{Row: (rowLo + rowHi) / 2, Col: (colLo + colHi) / 2}
	}
	return out
}

// BuildGraph constructs this field's connectivity Graph over all non-Hill
// cells, reduces it to the largest connected component, and verifies both
// endpoints survived.
func (f *Field) BuildGraph(a, b Position) (*Graph, error) {
	cells := make(map[Position]bool, f.rows*f.cols)
	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			p := Position{Row: r, Col: c}
			cells[p] = !f.hills[p]
		}
	}
	g := NewGraph(cells)
	g.ReduceToGreatestComponent()
	if !g.InGraph(a) || !g.InGraph(b) {
		return nil, fmt.Errorf("%w: %v, %v", ErrUnreachableEndpoints, a, b)
	}
	// Any cell that did not survive reduction reverts to a Hill, so the
	// field and graph are never allowed to disagree about reachability.
	for p := range cells {
		if !g.InGraph(p) {
			f.hills[p] = true
		}
	}
	f.graph = g
	return g, nil
}

// Graph returns the most recently built connectivity graph, or nil if
// BuildGraph has not yet been called.
func (f *Field) Graph() *Graph { return f.graph }

// Occupy marks pos with the given symbol (used when a player builds a
// neuron on an already-free cell).
func (f *Field) Occupy(pos Position, sym Symbol) {
	f.occupied[pos] = sym
}

// Vacate clears any occupant at pos (used when a neuron is destroyed).
func (f *Field) Vacate(pos Position) {
	delete(f.occupied, pos)
}

// SymbolAt reports what occupies pos: SymbolHill, SymbolFree, or a neuron
// symbol.
func (f *Field) SymbolAt(pos Position) Symbol {
	if f.hills[pos] {
		return SymbolHill
	}
	if sym, ok := f.occupied[pos]; ok {
		return sym
	}
	return SymbolFree
}

// Rows returns the grid's row count.
func (f *Field) Rows() int { return f.rows }

// Cols returns the grid's column count.
func (f *Field) Cols() int { return f.cols }
