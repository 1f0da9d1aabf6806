package audio

import (
	"math"
)

const (
	defaultIntervalCount = 8
	silenceRMS           = 0.015
	onsetFluxThreshold   = 1.3
	minBeatGapMS         = 120
	minPitchHz           = 60.0
	maxPitchHz           = 1200.0
	autocorrPeakRatio    = 0.30
)

// analyzerState carries the rolling detector state across hop-windows for
// one source file. Kept separate from Analyze so the hop-processing step can
// be driven directly by tests with synthetic windows.
type analyzerState struct {
	sampleRate    int
	energyHistory []float64
	historyCap    int
	lastBeatMS    int64
	havePrevBeat  bool
	pendingNotes  []Note
}

func newAnalyzerState(sampleRate int) *analyzerState {
	historyCap := sampleRate / hopSize
	if historyCap < 8 {
		historyCap = 8
	}
	return &analyzerState{sampleRate: sampleRate, historyCap: historyCap}
}

// step feeds one hop-window through the tempo detector, note onset detector
// and RMS-level estimator. It returns a BeatPoint and true when this hop
// lands on a beat.
//
// Grounded on original_source/src/audio/audio.cc Audio::Analyze (the hop
// loop over aubio's tempo/pitch/level objects), re-expressed without aubio
// as a justified standalone DSP implementation — see DESIGN.md.
func (st *analyzerState) step(hop hopWindow) (BeatPoint, bool) {
	rms := rmsOf(hop.samples)

	if midi, ok := detectPitch(hop.samples, st.sampleRate); ok {
		st.pendingNotes = append(st.pendingNotes, NoteFromMIDI(midi))
	}

	avg := st.averageEnergy()
	st.pushEnergy(rms)

	isBeat := false
	if rms > silenceRMS && (avg == 0 || rms > avg*onsetFluxThreshold) {
		if !st.havePrevBeat || hop.timeMS-st.lastBeatMS >= minBeatGapMS {
			isBeat = true
		}
	}
	if !isBeat {
		return BeatPoint{}, false
	}

	bpm := 0
	if st.havePrevBeat {
		deltaMS := hop.timeMS - st.lastBeatMS
		if deltaMS > 0 {
			bpm = int(math.Round(60000.0 / float64(deltaMS)))
		}
	}
	st.lastBeatMS = hop.timeMS
	st.havePrevBeat = true

	level := rmsToLevel(rms)
	notes := st.pendingNotes
	st.pendingNotes = nil

	return BeatPoint{
		TimeMS: hop.timeMS,
		BPM:    bpm,
		Level:  level,
		Notes:  notes,
	}, true
}

func (st *analyzerState) pushEnergy(rms float64) {
	st.energyHistory = append(st.energyHistory, rms)
	if len(st.energyHistory) > st.historyCap {
		st.energyHistory = st.energyHistory[len(st.energyHistory)-st.historyCap:]
	}
}

func (st *analyzerState) averageEnergy() float64 {
	if len(st.energyHistory) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range st.energyHistory {
		sum += v
	}
	return sum / float64(len(st.energyHistory))
}

// rmsOf computes the root-mean-square of a hop window.
func rmsOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// rmsToLevel maps an RMS amplitude to the spec's 0-100 level, via
// level = 100 - (-level_db), clamped.
func rmsToLevel(rms float64) int {
	if rms <= 0 {
		return 0
	}
	levelDB := 20 * math.Log10(rms)
	level := 100 + levelDB
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return int(math.Round(level))
}

// detectPitch estimates the fundamental frequency of a window via
// normalized autocorrelation and converts it to a MIDI note number. Returns
// false when the window is too quiet or has no clear periodicity.
func detectPitch(samples []float64, sampleRate int) (int, bool) {
	if rmsOf(samples) < silenceRMS {
		return 0, false
	}
	minLag := sampleRate / int(maxPitchHz)
	maxLag := sampleRate / int(minPitchHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(samples) {
		maxLag = len(samples) - 1
	}
	if minLag >= maxLag {
		return 0, false
	}

	zeroLag := autocorr(samples, 0)
	if zeroLag <= 0 {
		return 0, false
	}

	// Raw autocorrelation is highest at lag 0 and decays smoothly before
	// ever reaching the fundamental period, so a plain global-max search
	// tends to lock onto a short lag that has nothing to do with pitch.
	// Skip past that initial decay (the first trough), then take the first
	// local maximum after it — the fundamental's periodic peak, not one of
	// its octave-below subharmonics further out.
	curve := make([]float64, maxLag-minLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		curve[lag-minLag] = autocorr(samples, lag)
	}

	troughIdx := 0
	for troughIdx+1 < len(curve) && curve[troughIdx+1] <= curve[troughIdx] {
		troughIdx++
	}

	bestLag := -1
	for i := troughIdx + 1; i < len(curve); i++ {
		if curve[i] >= curve[i-1] && (i+1 >= len(curve) || curve[i] >= curve[i+1]) {
			if curve[i]/zeroLag >= autocorrPeakRatio {
				bestLag = minLag + i
			}
			break
		}
	}
	if bestLag < 0 {
		return 0, false
	}

	freq := float64(sampleRate) / float64(bestLag)
	midi := int(math.Round(69 + 12*math.Log2(freq/440.0)))
	return midi, true
}

func autocorr(samples []float64, lag int) float64 {
	sum := 0.0
	for i := 0; i+lag < len(samples); i++ {
		sum += samples[i] * samples[i+lag]
	}
	return sum
}

// Analyze decodes path into hop-windows and runs the detector pipeline over
// every hop, producing the full AnalyzedAudio. It first checks for a
// companion persisted JSON (see persist.go) and loads from it instead of
// redecoding when present.
func Analyze(path string) (*AnalyzedAudio, error) {
	if cached, ok, err := loadCached(path); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	stream, err := openDecodedStream(path)
	if err != nil {
		return nil, err
	}

	state := newAnalyzerState(stream.SampleRate())
	var beats []BeatPoint
	var lastTimeMS int64
	for {
		hop, err := stream.NextHop()
		if err != nil {
			break
		}
		lastTimeMS = hop.timeMS
		if bp, ok := state.step(hop); ok {
			beats = append(beats, bp)
		}
	}

	aa := summarize(path, lastTimeMS, beats)
	if err := saveCache(aa); err != nil {
		return nil, err
	}
	return aa, nil
}

// summarize computes the averages, extrema, peak run, and interval
// segmentation from a completed beat timeline. Grounded on
// original_source/src/audio/audio.cc Audio::CreateLevels.
func summarize(path string, durationMS int64, beats []BeatPoint) *AnalyzedAudio {
	aa := &AnalyzedAudio{
		SourcePath: path,
		DurationMS: durationMS,
		Beats:      beats,
		Intervals:  map[int]Interval{},
	}
	if len(beats) == 0 {
		return aa
	}

	levelSum := 0.0
	minLevel, maxLevel := beats[0].Level, beats[0].Level
	bpmTotal, bpmCount := 0.0, 0
	for _, b := range beats {
		levelSum += float64(b.Level)
		if b.Level < minLevel {
			minLevel = b.Level
		}
		if b.Level > maxLevel {
			maxLevel = b.Level
		}
		if b.BPM > 0 {
			bpmTotal += float64(b.BPM)
			bpmCount++
		}
	}
	aa.AverageLevel = levelSum / float64(len(beats))
	if bpmCount > 0 {
		aa.AverageBPM = bpmTotal / float64(bpmCount)
	}
	aa.MinLevel = minLevel
	aa.MaxLevel = maxLevel
	aa.MaxPeak = maxPeakRun(beats, aa.AverageLevel)

	assignIntervals(aa, defaultIntervalCount)
	return aa
}

func maxPeakRun(beats []BeatPoint, average float64) int {
	best, cur := 0, 0
	for _, b := range beats {
		if float64(b.Level) > average {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}

// assignIntervals splits beats into n contiguous, equal-count groups (the
// last group absorbing any remainder so the tail is never silently
// dropped), then computes one Interval per group.
func assignIntervals(aa *AnalyzedAudio, n int) {
	total := len(aa.Beats)
	if total == 0 || n <= 0 {
		return
	}
	size := total / n
	if size == 0 {
		size = 1
		n = total
	}
	start := 0
	for id := 0; id < n; id++ {
		end := start + size
		if id == n-1 || end > total {
			end = total
		}
		group := aa.Beats[start:end]
		var counts [12]int
		darkSum, octaveSum := 0, 0
		for i := range group {
			for _, note := range group[i].Notes {
				counts[note.PitchClass]++
				darkSum += note.Octave * note.Octave
				octaveSum += note.Octave
			}
			group[i].IntervalID = id
		}
		darkness := 0
		if octaveSum > 0 {
			darkness = darkSum / octaveSum
		}
		aa.Intervals[id] = buildInterval(id, counts, darkness)
		start = end
		if start >= total {
			break
		}
	}
}

