package opponent

import (
	"github.com/georgbuechner/dissonance/pkg/audio"
	"github.com/georgbuechner/dissonance/pkg/field"
	"github.com/georgbuechner/dissonance/pkg/player"
	"github.com/georgbuechner/dissonance/pkg/resource"
	"github.com/georgbuechner/dissonance/pkg/unit"
)

// darknessThreshold is the minimum interval darkness that triggers the
// "New technology" predicate.
const darknessThreshold = 40

// oxygenNearLimitRatio is how close to its saturation limit Oxygen must be
// before the "Keep oxygen low" heuristic fires.
const oxygenNearLimitRatio = 0.85

// kSwarm multiplies the potassium launchAttack requires before firing. At
// 1 it adds nothing for swarming synapses: they are not required to afford
// max_stored epsps at once.
const kSwarm = 1

// maxActivatedNeurons bounds how many ActivatedNeurons the opponent will
// ever build, mirroring AudioKi's max_activated_neurons_.
const maxActivatedNeurons = 6

// techCandidates is the fixed priority order "New technology" cycles
// through; ties in score fall back to this order.
var techCandidates = []resource.Unit{
	resource.TechTotalResource, resource.TechCurve, resource.TechAtkPotential,
	resource.TechAtkSpeed, resource.TechAtkDuration, resource.TechDefSpeed,
	resource.TechDefPotential, resource.TechNucleusRange, resource.TechWay,
	resource.TechSwarm, resource.TechTarget,
}

// Opponent drives one Player's commands from analyzed audio, exactly
// mirroring the commands a human player could issue.
//
// Grounded on original_source/src/player/audio_ki.h AudioKi.
type Opponent struct {
	Player    *player.Player
	Analysis  *audio.AnalyzedAudio
	tactics   *Tactics
	techScore map[resource.Unit]int
}

// New creates an Opponent for p, seeding its tactic tables from the
// analyzed audio's overall pitch-class distribution.
func New(p *player.Player, aa *audio.AnalyzedAudio) *Opponent {
	var weights [12]int
	for _, beat := range aa.Beats {
		for _, n := range beat.Notes {
			weights[n.PitchClass]++
		}
	}
	o := &Opponent{
		Player:    p,
		Analysis:  aa,
		tactics:   NewTactics(weights),
		techScore: map[resource.Unit]int{},
	}
	for i, tech := range techCandidates {
		o.techScore[tech] = seedScore(weights, i, len(techCandidates))
	}
	return o
}

// DoAction runs every decision predicate for one consumed beat, issuing
// whatever Player commands fire, in this order: handle iron, keep oxygen
// low, create synapse, create activated neuron, new technology, launch
// attack.
func (o *Opponent) DoAction(beat audio.BeatPoint, nowMS int64) {
	o.handleIron(beat)
	o.keepOxygenLow()
	o.createSynapse(beat)
	o.createActivatedNeuron(beat)
	o.newTechnology(beat)
	o.launchAttack(beat, nowMS)
}

func (o *Opponent) synapses() []field.Position {
	var out []field.Position
	for pos, n := range o.Player.Neurons {
		if n.Kind == unit.KindSynapse {
			out = append(out, pos)
		}
	}
	return out
}

// createSynapse fires when there are no synapses yet, or every note in
// beat belongs to the current interval's key (MoreOfNotes(off=false)).
func (o *Opponent) createSynapse(beat audio.BeatPoint) {
	syns := o.synapses()
	if len(syns) != 0 && !audio.MoreOfNotes(o.Analysis, beat, false) {
		return
	}
	cost, err := resource.CostOf(resource.UnitSynapse, 1)
	if err != nil || len(o.Player.Ledger.Afford(cost)) > 0 {
		return
	}
	pos, ok := o.nextBuildSite()
	if !ok {
		return
	}
	o.Player.BuildNeuron(unit.KindSynapse, resource.UnitSynapse, pos, 3, 1)
}

// createActivatedNeuron fires when under the build cap and the beat's
// level is at or above the running average.
func (o *Opponent) createActivatedNeuron(beat audio.BeatPoint) {
	count := 0
	for _, n := range o.Player.Neurons {
		if n.Kind == unit.KindActivatedNeuron {
			count++
		}
	}
	if count >= maxActivatedNeurons || float64(beat.Level) < o.Analysis.AverageLevel {
		return
	}
	cost, err := resource.CostOf(resource.UnitActivatedNeuron, 1)
	if err != nil || len(o.Player.Ledger.Afford(cost)) > 0 {
		return
	}
	pos, ok := o.nextBuildSite()
	if !ok {
		return
	}
	o.Player.BuildNeuron(unit.KindActivatedNeuron, resource.UnitActivatedNeuron, pos, 0, 0)
	o.tactics.bestActivatedNeuron()
}

// nextBuildSite picks the nearest free cell adjacent to owned territory
// (or the nucleus, if nothing is built yet).
func (o *Opponent) nextBuildSite() (field.Position, bool) {
	if len(o.Player.Neurons) == 0 {
		return o.Player.NucleusPos, o.Player.Field.IsFree(o.Player.NucleusPos)
	}
	for _, n := range o.Player.Neurons {
		for _, cand := range n.Position.Neighbors() {
			if o.Player.Field.IsFree(cand) {
				return cand, true
			}
		}
	}
	return field.Position{}, false
}

// newTechnology fires when the beat's interval darkness exceeds
// darknessThreshold, researching the highest-scoring affordable
// technology not yet at its cap.
func (o *Opponent) newTechnology(beat audio.BeatPoint) {
	interval, ok := o.Analysis.Intervals[beat.IntervalID]
	if !ok || interval.Darkness <= darknessThreshold {
		return
	}
	for _, tech := range rankByScore(o.techScore, techCandidates) {
		if o.Player.AddTechnology(tech) == nil {
			o.techScore[tech]--
			return
		}
	}
}

func rankByScore(scores map[resource.Unit]int, order []resource.Unit) []resource.Unit {
	out := append([]resource.Unit(nil), order...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && scores[out[j]] > scores[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// keepOxygenLow immediately fires a potential from the first available
// synapse if Oxygen is near its saturation limit and at least one synapse
// exists.
func (o *Opponent) keepOxygenLow() {
	ox := o.Player.Ledger.Get(resource.Oxygen)
	if ox.Free+ox.Bound < ox.Limit*oxygenNearLimitRatio {
		return
	}
	syns := o.synapses()
	if len(syns) == 0 {
		return
	}
	o.Player.AddPotential(syns[0], unit.KindEpsp, resource.UnitEpsp, 0)
}

// handleIron pushes one free iron to Oxygen until it reaches
// distributed_iron==2, then to the resource implied by the beat's
// dominant pitch class.
func (o *Opponent) handleIron(beat audio.BeatPoint) {
	iron := o.Player.Ledger.Get(resource.Iron)
	if iron.Free < 1 {
		return
	}
	if ox := o.Player.Ledger.Get(resource.Oxygen); ox.DistributedIron < 2 {
		o.Player.DistributeIron(resource.Oxygen)
		return
	}
	if len(beat.Notes) == 0 {
		return
	}
	dominant := dominantPitchClass(beat)
	kind := resource.AccumulatingKinds[dominant%len(resource.AccumulatingKinds)]
	o.Player.DistributeIron(kind)
}

func dominantPitchClass(beat audio.BeatPoint) int {
	var counts [12]int
	for _, n := range beat.Notes {
		counts[n.PitchClass]++
	}
	best := 0
	for pc, c := range counts {
		if c > counts[best] {
			best = pc
		}
	}
	return best
}

// launchAttack fires when the beat's level is at or above the running
// average and potassium covers epsp_cost*ipsps_to_create*k_swarm; it picks
// the synapse whose precomputed path to the chosen target is shortest and
// synchronizes the Ipsp/Epsp launch.
func (o *Opponent) launchAttack(beat audio.BeatPoint, nowMS int64) {
	if float64(beat.Level) < o.Analysis.AverageLevel {
		return
	}
	epspCost, err := resource.CostOf(resource.UnitEpsp, 1)
	if err != nil {
		return
	}
	ipspsToCreate := 1
	needed := epspCost[resource.Potassium] * float64(ipspsToCreate) * float64(kSwarm)
	if o.Player.Ledger.Get(resource.Potassium).Free < needed {
		return
	}

	syns := o.synapses()
	if len(syns) == 0 || o.Player.Opponent == nil {
		return
	}
	target := o.epspTarget()

	var best field.Position
	bestLen := -1
	graph := o.Player.Field.Graph()
	if graph == nil {
		return
	}
	for _, s := range syns {
		path, err := graph.FindWay(s, target)
		if err != nil {
			continue
		}
		if bestLen < 0 || len(path) < bestLen {
			bestLen = len(path)
			best = s
		}
	}
	if bestLen < 0 {
		return
	}

	strategy := o.tactics.bestAttack()
	if syn := o.Player.Neurons[best]; syn != nil {
		syn.EpspTarget = target
		syn.IpspTarget = o.ipspTarget()
	}

	epsps, err := o.Player.AddPotential(best, unit.KindEpsp, resource.UnitEpsp, nowMS)
	if err != nil {
		o.tactics.bestDef()
		return
	}
	if strategy != EpspFocused {
		if ipsps, err := o.Player.AddPotential(best, unit.KindIpsp, resource.UnitIpsp, nowMS); err == nil {
			syncLaunch(epsps, ipsps)
		}
	}
	o.tactics.bestDef()
}

// syncLaunch staggers each Ipsp/Epsp pair's first-step deadline so both
// arrive within one step of each other: wait = |epsp_path|·epsp_step −
// |ipsp_path|·ipsp_step, applied to whichever volley would otherwise land
// first.
func syncLaunch(epsps, ipsps []*unit.Potential) {
	for i := 0; i < len(epsps) && i < len(ipsps); i++ {
		e, ip := epsps[i], ipsps[i]
		wait := int64(len(e.Path))*e.StepCooldownMS - int64(len(ip.Path))*ip.StepCooldownMS
		switch {
		case wait > 0:
			ip.NextStepDeadlineMS += wait
		case wait < 0:
			e.NextStepDeadlineMS += -wait
		}
	}
}

// epspTarget resolves the current highest-scoring Epsp target strategy
// into an actual opponent position.
func (o *Opponent) epspTarget() field.Position {
	opp := o.Player.Opponent
	switch o.tactics.bestEpspTarget() {
	case DestroyActivatedNeurons:
		if pos, ok := firstOfKind(opp, unit.KindActivatedNeuron); ok {
			return pos
		}
	case DestroySynapses:
		if pos, ok := firstOfKind(opp, unit.KindSynapse); ok {
			return pos
		}
	case DestroyResources:
		if pos, ok := firstOfKind(opp, unit.KindResourceNeuron); ok {
			return pos
		}
	}
	return opp.NucleusPos
}

func (o *Opponent) ipspTarget() field.Position {
	opp := o.Player.Opponent
	switch o.tactics.bestIpspTarget() {
	case BlockActivatedNeuron:
		if pos, ok := firstOfKind(opp, unit.KindActivatedNeuron); ok {
			return pos
		}
	case BlockSynapses:
		if pos, ok := firstOfKind(opp, unit.KindSynapse); ok {
			return pos
		}
	case BlockResources:
		if pos, ok := firstOfKind(opp, unit.KindResourceNeuron); ok {
			return pos
		}
	}
	return opp.NucleusPos
}

func firstOfKind(p *player.Player, kind unit.NeuronKind) (field.Position, bool) {
	for pos, n := range p.Neurons {
		if n.Kind == kind {
			return pos, true
		}
	}
	return field.Position{}, false
}
