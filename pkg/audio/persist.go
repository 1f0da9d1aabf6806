package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// cachePath returns the companion JSON path for a source file: same
// basename, extension swapped, per spec's persisted-audio-analysis format.
func cachePath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + ".json"
}

// persistedAnalysis mirrors the on-disk companion file's shape:
// {average_bpm, average_level, bpms, levels, notes, intervals}. It is kept
// distinct from AnalyzedAudio so the wire format can evolve independently of
// the in-memory representation used by the opponent and server loop.
type persistedAnalysis struct {
	SourcePath   string           `json:"source_path"`
	DurationMS   int64            `json:"duration_ms"`
	AverageBPM   float64          `json:"average_bpm"`
	AverageLevel float64          `json:"average_level"`
	MinLevel     int              `json:"min_level"`
	MaxLevel     int              `json:"max_level"`
	MaxPeak      int              `json:"max_peak"`
	BPMs         []int            `json:"bpms"`
	Levels       []int            `json:"levels"`
	Notes        [][]Note         `json:"notes"`
	Times        []int64          `json:"times_ms"`
	IntervalIDs  []int            `json:"interval_ids"`
	Intervals    map[int]Interval `json:"intervals"`
}

func toPersisted(aa *AnalyzedAudio) persistedAnalysis {
	p := persistedAnalysis{
		SourcePath:   aa.SourcePath,
		DurationMS:   aa.DurationMS,
		AverageBPM:   aa.AverageBPM,
		AverageLevel: aa.AverageLevel,
		MinLevel:     aa.MinLevel,
		MaxLevel:     aa.MaxLevel,
		MaxPeak:      aa.MaxPeak,
		Intervals:    aa.Intervals,
	}
	for _, b := range aa.Beats {
		p.BPMs = append(p.BPMs, b.BPM)
		p.Levels = append(p.Levels, b.Level)
		p.Notes = append(p.Notes, b.Notes)
		p.Times = append(p.Times, b.TimeMS)
		p.IntervalIDs = append(p.IntervalIDs, b.IntervalID)
	}
	return p
}

func fromPersisted(p persistedAnalysis) *AnalyzedAudio {
	aa := &AnalyzedAudio{
		SourcePath:   p.SourcePath,
		DurationMS:   p.DurationMS,
		AverageBPM:   p.AverageBPM,
		AverageLevel: p.AverageLevel,
		MinLevel:     p.MinLevel,
		MaxLevel:     p.MaxLevel,
		MaxPeak:      p.MaxPeak,
		Intervals:    p.Intervals,
	}
	if aa.Intervals == nil {
		aa.Intervals = map[int]Interval{}
	}
	for i := range p.Times {
		aa.Beats = append(aa.Beats, BeatPoint{
			TimeMS:     p.Times[i],
			BPM:        p.BPMs[i],
			Level:      p.Levels[i],
			Notes:      p.Notes[i],
			IntervalID: p.IntervalIDs[i],
		})
	}
	return aa
}

// saveCache writes the analysis to its companion JSON so a later Analyze of
// the same source skips redecoding entirely.
func saveCache(aa *AnalyzedAudio) error {
	data, err := json.MarshalIndent(toPersisted(aa), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis cache for %q: %w", aa.SourcePath, err)
	}
	if err := os.WriteFile(cachePath(aa.SourcePath), data, 0o644); err != nil {
		return fmt.Errorf("write analysis cache for %q: %w", aa.SourcePath, err)
	}
	return nil
}

// loadCached loads a previously persisted analysis for path, if its
// companion JSON exists. ok is false (with a nil error) when no cache file
// is present, in which case the caller should decode and analyze from
// scratch.
func loadCached(path string) (*AnalyzedAudio, bool, error) {
	data, err := os.ReadFile(cachePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read analysis cache for %q: %w", path, err)
	}
	var p persistedAnalysis
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("parse analysis cache for %q: %w", path, err)
	}
	return fromPersisted(p), true, nil
}
