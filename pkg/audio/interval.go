package audio

import "strings"

// Signature is the key signature of an Interval's root note.
type Signature int

const (
	SignatureUnsigned Signature = iota
	SignatureSharp
	SignatureFlat
)

func (s Signature) String() string {
	switch s {
	case SignatureSharp:
		return "Sharp"
	case SignatureFlat:
		return "Flat"
	default:
		return "Unsigned"
	}
}

// majorSteps and minorSteps are semitone offsets from the root defining the
// diatonic scale used to pick a key's mode.
var majorSteps = [7]int{0, 2, 4, 5, 7, 9, 11}
var minorSteps = [7]int{0, 2, 3, 5, 7, 8, 10}

// Interval is a contiguous block of beats sharing one estimated key.
type Interval struct {
	ID            int       `json:"id"`
	Key           string    `json:"key"`
	KeyNote       int       `json:"key_note"`
	Signature     Signature `json:"signature"`
	IsMajor       bool      `json:"is_major"`
	NotesInKey    int       `json:"notes_in_key"`
	NotesOutKey   int       `json:"notes_out_key"`
	Darkness      int       `json:"darkness"`
}

// buildInterval computes one Interval from the notes accumulated across the
// beats that belong to it. Grounded on
// original_source/src/audio/audio.cc Audio::CreateLevels/CalcLevel.
func buildInterval(id int, notesByPitchClass [12]int, darkness int) Interval {
	root := dominantPitchClass(notesByPitchClass)

	majorCount, minorCount := 0, 0
	for _, step := range majorSteps {
		majorCount += notesByPitchClass[mod12(root+step)]
	}
	for _, step := range minorSteps {
		minorCount += notesByPitchClass[mod12(root+step)]
	}
	isMajor := majorCount >= minorCount

	scale := majorSteps
	mode := "Major"
	if !isMajor {
		scale = minorSteps
		mode = "Minor"
	}
	inKey := map[int]bool{}
	for _, step := range scale {
		inKey[mod12(root+step)] = true
	}

	notesInKey, notesOutKey := 0, 0
	for pc, count := range notesByPitchClass {
		if count == 0 {
			continue
		}
		if inKey[pc] {
			notesInKey++
		} else {
			notesOutKey++
		}
	}

	name := noteNames[root]
	sig := SignatureUnsigned
	if strings.Contains(name, "#") {
		sig = SignatureSharp
	} else if strings.Contains(name, "b") {
		sig = SignatureFlat
	}

	return Interval{
		ID:          id,
		Key:         name + mode,
		KeyNote:     root,
		Signature:   sig,
		IsMajor:     isMajor,
		NotesInKey:  notesInKey,
		NotesOutKey: notesOutKey,
		Darkness:    darkness,
	}
}

// dominantPitchClass returns the most frequent pitch class, breaking ties by
// the fixed name order (lowest pitch-class index wins).
func dominantPitchClass(counts [12]int) int {
	best, bestCount := 0, -1
	for pc, c := range counts {
		if c > bestCount {
			best, bestCount = pc, c
		}
	}
	return best
}

// MoreOfNotes reports whether every note in beat belongs to (off=false) or
// falls outside (off=true) the key of its own interval. Used by the
// music-driven opponent's synapse-creation heuristic.
//
// Grounded on original_source/src/player/audio_ki.h AudioKi::MoreOffNotes /
// original_source/src/share/audio/audio.h Audio::MoreOffNotes.
func MoreOfNotes(aa *AnalyzedAudio, beat BeatPoint, off bool) bool {
	if len(beat.Notes) == 0 {
		return false
	}
	interval, ok := aa.Intervals[beat.IntervalID]
	if !ok {
		return false
	}
	scale := majorSteps
	if !interval.IsMajor {
		scale = minorSteps
	}
	inKey := map[int]bool{}
	for _, step := range scale {
		inKey[mod12(interval.KeyNote+step)] = true
	}
	for _, n := range beat.Notes {
		isIn := inKey[n.PitchClass]
		if off && isIn {
			return false
		}
		if !off && !isIn {
			return false
		}
	}
	return true
}
