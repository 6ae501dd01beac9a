// Package fleet loads the ship presets offered to planners.
package fleet

import (
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/a-bouts/passage-server/trajectory"
)

// Preset is a named ship with its handling characteristics.
type Preset struct {
	Name          string  `yaml:"name" json:"name"`
	Length        float64 `yaml:"length" json:"length"`
	Beam          float64 `yaml:"beam" json:"beam"`
	TurningRadius float64 `yaml:"turningRadius" json:"turningRadius"`
	ServiceSpeed  float64 `yaml:"serviceSpeed,omitempty" json:"serviceSpeed,omitempty"`
}

// Ship converts the preset to the planner's ship model.
func (p Preset) Ship() trajectory.Ship {
	return trajectory.Ship{
		Length:        p.Length,
		Beam:          p.Beam,
		TurningRadius: p.TurningRadius,
	}
}

// Fleet is the set of presets, keyed by name.
type Fleet struct {
	presets map[string]Preset
}

// defaults used when no fleet file is configured.
var defaults = []Preset{
	{Name: "coaster", Length: 90, Beam: 14, TurningRadius: 180, ServiceSpeed: 11},
	{Name: "feeder", Length: 150, Beam: 24, TurningRadius: 300, ServiceSpeed: 16},
	{Name: "panamax", Length: 290, Beam: 32, TurningRadius: 600, ServiceSpeed: 20},
	{Name: "tug", Length: 30, Beam: 10, TurningRadius: 45, ServiceSpeed: 8},
}

// Load reads the presets from a YAML file. An empty path yields the
// built-in fleet.
func Load(path string) (*Fleet, error) {
	f := &Fleet{presets: map[string]Preset{}}

	presets := defaults
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		presets = nil
		if err := yaml.Unmarshal(content, &presets); err != nil {
			return nil, err
		}
	}

	for _, p := range presets {
		if err := p.Ship().Validate(); err != nil {
			log.WithError(err).Warnf("Skipping ship preset '%s'", p.Name)
			continue
		}
		f.presets[p.Name] = p
	}

	return f, nil
}

// Get returns the preset by name.
func (f *Fleet) Get(name string) (Preset, bool) {
	p, found := f.presets[name]
	return p, found
}

// List returns the presets sorted by name.
func (f *Fleet) List() []Preset {
	res := make([]Preset, 0, len(f.presets))
	for _, p := range f.presets {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}
