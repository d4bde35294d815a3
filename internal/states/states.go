// Package states maps injection states to the event database group and legacy injection type
// of the injections they perform.
package states

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ubuntu/decorate"
)

// ErrUnknownState is returned when looking up a state missing from the table.
var ErrUnknownState = errors.New("unknown injection state")

// State describes what an injection state reports.
type State struct {
	// Group is the event database group of events created in this state.
	Group string `toml:"group"`
	// TypeCode is the legacy injection type written to the injection type channel.
	TypeCode int `toml:"type_code"`
}

// Table maps state names to their description.
type Table map[string]State

// stateFile is the TOML layout of a state table file.
type stateFile struct {
	States Table `toml:"states"`
}

// Default returns the built-in state table.
func Default() Table {
	return Table{
		"INJECT_CBC_ACTIVE":        {Group: "CBC", TypeCode: 1},
		"INJECT_BURST_ACTIVE":      {Group: "Burst", TypeCode: 2},
		"INJECT_DETCHAR_ACTIVE":    {Group: "Burst", TypeCode: 3},
		"INJECT_STOCHASTIC_ACTIVE": {Group: "Stochastic", TypeCode: 4},
	}
}

// Load returns the default table updated with the states of the TOML file at path.
// States of the file replace default states with the same name.
func Load(path string) (t Table, err error) {
	defer decorate.OnError(&err, "could not load state table %s", path)

	var f stateFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	t = Default()
	for name, s := range f.States {
		if s.Group == "" {
			return nil, fmt.Errorf("state %s has no group", name)
		}
		t[name] = s
	}
	slog.Debug("Loaded state table", "file", path, "states", len(f.States))

	return t, nil
}

// Get returns the description of state.
func (t Table) Get(state string) (State, error) {
	s, ok := t[state]
	if !ok {
		return State{}, fmt.Errorf("%w %q, known states are %s", ErrUnknownState, state, strings.Join(t.Names(), ", "))
	}
	return s, nil
}

// Group returns the event database group of state.
func (t Table) Group(state string) (string, error) {
	s, err := t.Get(state)
	return s.Group, err
}

// Names returns the sorted state names of the table.
func (t Table) Names() []string {
	return slices.Sorted(maps.Keys(t))
}

// Encode writes the table to w in the format read by Load.
func (t Table) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(stateFile{States: t})
}
