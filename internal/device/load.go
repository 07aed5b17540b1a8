package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadState reads a YAML state file and overlays it on Defaults.
// An empty path returns the defaults unchanged.
func LoadState(path string) (State, error) {
	st := Defaults()
	if path == "" {
		return st, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrStateFile, err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("%w: parsing %s: %w", ErrStateFile, path, err)
	}
	if err := st.validate(); err != nil {
		return State{}, fmt.Errorf("%w: %s: %w", ErrStateFile, path, err)
	}
	st.Normalize()
	return st, nil
}

func (s *State) validate() error {
	for i, send := range s.Sends {
		if send.Input < 1 || send.Input > NumInputs {
			return fmt.Errorf("send %d: %w: %d", i+1, ErrInvalidInput, send.Input)
		}
	}
	return nil
}
