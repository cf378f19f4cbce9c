package scenario

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// Parse parses a scenario from YAML bytes.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if sc.Name == "" {
		return nil, &LoadError{Message: "scenario name is required"}
	}
	if len(sc.Steps) == 0 {
		return nil, &LoadError{Message: "scenario must have at least one step"}
	}

	var last time.Duration
	for i, st := range sc.Steps {
		if st.Run == "" && st.Event == nil && st.As == "" && st.In == "" {
			return nil, &LoadError{Step: i + 1, Message: "step does nothing"}
		}
		if st.Run != "" && st.Event != nil {
			return nil, &LoadError{Step: i + 1, Message: "step has both run and event"}
		}
		if st.Event != nil {
			if _, err := presence.ParseEventKind(st.Event.Kind); err != nil {
				return nil, &LoadError{Step: i + 1, Message: "bad event", Cause: err}
			}
		}
		if st.At == "" {
			continue
		}
		at, err := time.ParseDuration(st.At)
		if err != nil {
			return nil, &LoadError{Step: i + 1, Message: "bad offset", Cause: err}
		}
		if at < last {
			return nil, &LoadError{Step: i + 1, Message: "offset goes back in time"}
		}
		last = at
	}

	return &sc, nil
}

// Load loads a scenario from a file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	sc, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return sc, nil
}

// LoadDirectory loads all scenarios from a directory, sorted by file name.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var out []*Scenario
	for _, name := range names {
		sc, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
