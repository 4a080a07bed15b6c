package bridge

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ImputeConfig tunes missing-sector imputation.
type ImputeConfig struct {
	// Targets are the value columns to fill: establishments, wages,
	// employment.
	Targets []string `yaml:"targets"`

	// KNeighbors is the donor count per imputed cell.
	KNeighbors int `yaml:"k_neighbors"`

	// SectorLevels are the sector-code prefix lengths used both as
	// similarity features and for donor-pool selection.
	SectorLevels []int `yaml:"sector_levels"`

	// AreaWeight repeats the area feature to emphasize geographic
	// proximity over sector-code proximity.
	AreaWeight int `yaml:"area_weight"`
}

// DefaultImputeConfig mirrors the parameters the crosswalk was
// originally calibrated with.
func DefaultImputeConfig() ImputeConfig {
	return ImputeConfig{
		Targets:      []string{WeightEstablishments, WeightWages, WeightEmployment},
		KNeighbors:   5,
		SectorLevels: []int{3, 4, 5, 6},
		AreaWeight:   5,
	}
}

// LoadImputeConfig reads imputation parameters from a YAML file.
// Omitted fields fall back to the defaults.
func LoadImputeConfig(path string) (ImputeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImputeConfig{}, eris.Wrapf(err, "impute: read config %s", path)
	}

	// The YAML has a top-level "impute" key
	var wrapper struct {
		Impute ImputeConfig `yaml:"impute"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return ImputeConfig{}, eris.Wrap(err, "impute: parse config")
	}

	cfg := wrapper.Impute.withDefaults()
	for _, t := range cfg.Targets {
		switch t {
		case WeightEstablishments, WeightWages, WeightEmployment:
		default:
			return ImputeConfig{}, eris.Errorf("impute: unknown target %q", t)
		}
	}
	return cfg, nil
}

func (c ImputeConfig) withDefaults() ImputeConfig {
	def := DefaultImputeConfig()
	if len(c.Targets) == 0 {
		c.Targets = def.Targets
	}
	if c.KNeighbors <= 0 {
		c.KNeighbors = def.KNeighbors
	}
	if len(c.SectorLevels) == 0 {
		c.SectorLevels = def.SectorLevels
	}
	if c.AreaWeight <= 0 {
		c.AreaWeight = def.AreaWeight
	}
	return c
}
