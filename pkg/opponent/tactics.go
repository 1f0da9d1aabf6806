// Package opponent implements the music-driven AI: tactic tables seeded
// once at game start, scored and decremented beat by beat, driving the
// same Player command surface a human would use.
//
// Grounded on original_source/src/player/audio_ki.h's AudioKi, with its
// std::map<size_t,size_t> score tables replaced by small typed enums and
// Go maps per Design Notes §9's preference for explicit types over opaque
// integer keys.
package opponent

// AttackStrategy is one of the five attack-focus tactics, each carrying a
// pitch-class-weighted score.
type AttackStrategy int

const (
	EpspFocused AttackStrategy = iota
	IpspFocused
	Balanced
	Overwhelm
	Harass
)

var allAttackStrategies = []AttackStrategy{EpspFocused, IpspFocused, Balanced, Overwhelm, Harass}

// EpspTargetStrategy selects what an Epsp volley aims at.
type EpspTargetStrategy int

const (
	AimNucleus EpspTargetStrategy = iota
	DestroyActivatedNeurons
	DestroySynapses
	DestroyResources
)

var allEpspTargetStrategies = []EpspTargetStrategy{AimNucleus, DestroyActivatedNeurons, DestroySynapses, DestroyResources}

// IpspTargetStrategy selects what an Ipsp volley blocks.
type IpspTargetStrategy int

const (
	BlockActivatedNeuron IpspTargetStrategy = iota
	BlockSynapses
	BlockResources
)

var allIpspTargetStrategies = []IpspTargetStrategy{BlockActivatedNeuron, BlockSynapses, BlockResources}

// ActivatedNeuronStrategy governs where newly built ActivatedNeurons are
// placed relative to the nucleus.
type ActivatedNeuronStrategy int

const (
	DefFrontFocus ActivatedNeuronStrategy = iota
	DefSurroundFocus
)

var allActivatedNeuronStrategies = []ActivatedNeuronStrategy{DefFrontFocus, DefSurroundFocus}

// DefStrategy governs the balance between defensive Ipsp blocks and
// ActivatedNeuron interception.
type DefStrategy int

const (
	DefIpspBlock DefStrategy = iota
	DefAnBlock
)

var allDefStrategies = []DefStrategy{DefIpspBlock, DefAnBlock}

// Tactics holds every scored tactic table, seeded once at game start from
// a deterministic per-pitch-class weighting and mutated beat by beat: the
// winning tactic in each category is chosen, then decremented, so no
// single tactic runs forever.
type Tactics struct {
	attack          map[AttackStrategy]int
	epspTarget      map[EpspTargetStrategy]int
	ipspTarget      map[IpspTargetStrategy]int
	activatedNeuron map[ActivatedNeuronStrategy]int
	def             map[DefStrategy]int
}

// NewTactics seeds every table from the twelve pitch-class weights
// (derived from the analyzed audio's dominant pitch classes at game
// start), one entry per strategy each table defines; the tables differ in
// size.
func NewTactics(pitchClassWeights [12]int) *Tactics {
	t := &Tactics{
		attack:          map[AttackStrategy]int{},
		epspTarget:      map[EpspTargetStrategy]int{},
		ipspTarget:      map[IpspTargetStrategy]int{},
		activatedNeuron: map[ActivatedNeuronStrategy]int{},
		def:             map[DefStrategy]int{},
	}
	for i, s := range allAttackStrategies {
		t.attack[s] = seedScore(pitchClassWeights, i, len(allAttackStrategies))
	}
	for i, s := range allEpspTargetStrategies {
		t.epspTarget[s] = seedScore(pitchClassWeights, i, len(allEpspTargetStrategies))
	}
	for i, s := range allIpspTargetStrategies {
		t.ipspTarget[s] = seedScore(pitchClassWeights, i, len(allIpspTargetStrategies))
	}
	for i, s := range allActivatedNeuronStrategies {
		t.activatedNeuron[s] = seedScore(pitchClassWeights, i, len(allActivatedNeuronStrategies))
	}
	for i, s := range allDefStrategies {
		t.def[s] = seedScore(pitchClassWeights, i, len(allDefStrategies))
	}
	return t
}

// seedScore distributes the twelve pitch-class weights across n strategy
// slots, giving slot i the sum of every pitch class congruent to i mod n.
func seedScore(weights [12]int, slot, n int) int {
	sum := 0
	for pc := slot; pc < 12; pc += n {
		sum += weights[pc]
	}
	if sum == 0 {
		sum = 1
	}
	return sum
}

// bestAttack returns the highest-scoring attack strategy and decrements it.
func (t *Tactics) bestAttack() AttackStrategy {
	return pickAndDecrement(t.attack, allAttackStrategies)
}

func (t *Tactics) bestEpspTarget() EpspTargetStrategy {
	return pickAndDecrement(t.epspTarget, allEpspTargetStrategies)
}

func (t *Tactics) bestIpspTarget() IpspTargetStrategy {
	return pickAndDecrement(t.ipspTarget, allIpspTargetStrategies)
}

func (t *Tactics) bestActivatedNeuron() ActivatedNeuronStrategy {
	return pickAndDecrement(t.activatedNeuron, allActivatedNeuronStrategies)
}

func (t *Tactics) bestDef() DefStrategy {
	return pickAndDecrement(t.def, allDefStrategies)
}

func pickAndDecrement[K comparable](scores map[K]int, order []K) K {
	best := order[0]
	for _, k := range order {
		if scores[k] > scores[best] {
			best = k
		}
	}
	if scores[best] > 0 {
		scores[best]--
	}
	return best
}
