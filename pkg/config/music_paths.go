package config

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// errNoHome is returned by LoadMusicPaths when $(HOME) is used but the
// process has no home directory.
var errNoHome = errors.New("config: $(HOME) used but no home directory is available")

// LoadMusicPaths reads a JSON array of audio source paths from path,
// expanding the tokens $(HOME) and $(DISSONANCE) to the caller's home
// directory and basePath respectively; any other string is taken
// verbatim.
func LoadMusicPaths(path, basePath string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	home, homeErr := os.UserHomeDir()
	out := make([]string, len(entries))
	for i, e := range entries {
		if strings.Contains(e, "$(HOME)") {
			if homeErr != nil {
				return nil, errNoHome
			}
			e = strings.ReplaceAll(e, "$(HOME)", home)
		}
		e = strings.ReplaceAll(e, "$(DISSONANCE)", basePath)
		out[i] = e
	}
	return out, nil
}
