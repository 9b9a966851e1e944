// Package config loads named rANS coder profiles — (HeadBits, TailBits,
// PrecBits, Lanes) presets — from a YAML file, so cmd/msc callers can
// select a coding configuration by name instead of four flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ha1tch/msc/pkg/rans"
)

// Profile is one named coder configuration.
type Profile struct {
	Name     string `yaml:"name"`
	HeadBits uint   `yaml:"head_bits"`
	TailBits uint   `yaml:"tail_bits"`
	PrecBits uint   `yaml:"prec_bits"`
	Lanes    int    `yaml:"lanes"`
}

// Params converts the profile to rans.Params, validating it in the
// process.
func (p Profile) Params() (rans.Params, error) {
	params := rans.Params{HeadBits: p.HeadBits, TailBits: p.TailBits, PrecBits: p.PrecBits}
	if err := params.Validate(); err != nil {
		return rans.Params{}, fmt.Errorf("config: profile %q: %w", p.Name, err)
	}
	if p.Lanes < 1 {
		return rans.Params{}, fmt.Errorf("config: profile %q: lanes must be >= 1, got %d", p.Name, p.Lanes)
	}
	return params, nil
}

// Set is a named collection of profiles, as loaded from a YAML document.
type Set struct {
	Profiles []Profile `yaml:"profiles"`
}

// Default is the built-in profile set used when no file is given: a
// scalar profile sized for the §8 scenarios, an 8-lane variant of it, and
// a wider-precision 4-lane profile for larger multisets and alphabets.
var Default = Set{
	Profiles: []Profile{
		{Name: "scalar", HeadBits: 32, TailBits: 16, PrecBits: 14, Lanes: 1},
		{Name: "vector8", HeadBits: 32, TailBits: 16, PrecBits: 14, Lanes: 8},
		{Name: "wide", HeadBits: 32, TailBits: 16, PrecBits: 16, Lanes: 4},
	},
}

// Load reads a Set from a YAML file at path.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("config: %w", err)
	}
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if len(s.Profiles) == 0 {
		return Set{}, fmt.Errorf("config: %s defines no profiles", path)
	}
	return s, nil
}

// Find returns the named profile, or an error if the set has none by
// that name.
func (s Set) Find(name string) (Profile, error) {
	for _, p := range s.Profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("config: no profile named %q", name)
}
