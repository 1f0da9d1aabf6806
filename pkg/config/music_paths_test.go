package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeMusicPathsFile(t *testing.T, entries []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "music_paths.json")
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestLoadMusicPaths_ExpandsDissonanceToken(t *testing.T) {
	path := writeMusicPathsFile(t, []string{"$(DISSONANCE)/data/songs/one.mp3"})

	got, err := LoadMusicPaths(path, "/opt/dissonance")
	if err != nil {
		t.Fatalf("LoadMusicPaths() failed: %v", err)
	}
	want := "/opt/dissonance/data/songs/one.mp3"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%q]", got, want)
	}
}

func TestLoadMusicPaths_ExpandsHomeToken(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available in this environment")
	}
	path := writeMusicPathsFile(t, []string{"$(HOME)/Music/two.flac"})

	got, err := LoadMusicPaths(path, "/opt/dissonance")
	if err != nil {
		t.Fatalf("LoadMusicPaths() failed: %v", err)
	}
	want := home + "/Music/two.flac"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%q]", got, want)
	}
}

func TestLoadMusicPaths_LeavesPlainPathsVerbatim(t *testing.T) {
	path := writeMusicPathsFile(t, []string{"/absolute/song.wav", "relative/song.ogg"})

	got, err := LoadMusicPaths(path, "/opt/dissonance")
	if err != nil {
		t.Fatalf("LoadMusicPaths() failed: %v", err)
	}
	if len(got) != 2 || got[0] != "/absolute/song.wav" || got[1] != "relative/song.ogg" {
		t.Errorf("got %v, want unchanged entries", got)
	}
}

func TestLoadMusicPaths_MissingFileErrors(t *testing.T) {
	if _, err := LoadMusicPaths("/nonexistent/music_paths.json", "."); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMusicPaths_InvalidJSONErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "music_paths.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, err := LoadMusicPaths(path, "."); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadMusicPaths_BothTokensInOneEntry(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available in this environment")
	}
	path := writeMusicPathsFile(t, []string{"$(HOME)/music/$(DISSONANCE)/extra.mp3"})

	got, err := LoadMusicPaths(path, "base")
	if err != nil {
		t.Fatalf("LoadMusicPaths() failed: %v", err)
	}
	want := home + "/music/base/extra.mp3"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %v, want [%q]", got, want)
	}
}
