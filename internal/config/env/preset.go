package env

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"staking_sim/internal/config"
	"staking_sim/internal/model"

	"gopkg.in/yaml.v3"
)

// presetsFile формат файла пресетов
//
//	ladders:
//	  - name: L1
//	    stakes: [5, 10, 15]
//	presets:
//	  DEFAULT:
//	    bridging_policy: carry_over_index_delta
//	    recovery_target_pct: 0.5
//	    crossover_offset: 0
//	  aggressive:
//	    recovery_target_pct: 0.75
type presetsFile struct {
	Ladders []ladderEntry          `yaml:"ladders"`
	Presets map[string]presetEntry `yaml:"presets"`
}

type ladderEntry struct {
	Name   string    `yaml:"name"`
	Stakes []float64 `yaml:"stakes"`
}

// Поля-указатели: nil — значение берётся из DEFAULT
type presetEntry struct {
	BridgingPolicy    *string  `yaml:"bridging_policy"`
	RecoveryTargetPct *float64 `yaml:"recovery_target_pct"`
	CrossoverOffset   *int     `yaml:"crossover_offset"`
}

type presetsConfig struct {
	names   []string
	presets map[string]model.Preset
	ladders []model.Ladder
}

// NewPresetsConfigFromYAML читает пресеты из файла. Все пресеты проверяются сразу.
func NewPresetsConfigFromYAML(path string) (config.PresetsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var file presetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets file %s: %w", path, err)
	}

	return newPresetsConfig(file)
}

// NewBuiltinPresetsConfig только DEFAULT и стандартные лестницы, без файла
func NewBuiltinPresetsConfig() config.PresetsConfig {
	cfg, err := newPresetsConfig(presetsFile{})
	if err != nil {
		panic("builtin presets are invalid: " + err.Error())
	}
	return cfg
}

func newPresetsConfig(file presetsFile) (*presetsConfig, error) {
	cfg := &presetsConfig{
		presets: make(map[string]model.Preset, len(file.Presets)+1),
	}

	if len(file.Ladders) == 0 {
		cfg.ladders = model.DefaultLadders()
	} else {
		for _, l := range file.Ladders {
			ladder, err := model.NewLadder(l.Name, l.Stakes)
			if err != nil {
				return nil, err
			}
			cfg.ladders = append(cfg.ladders, ladder)
		}
	}

	base, err := applyPreset(model.BuiltinPreset(), file.Presets[model.DefaultPresetName])
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", model.DefaultPresetName, err)
	}
	cfg.presets[model.DefaultPresetName] = base

	named := make([]string, 0, len(file.Presets))
	for name := range file.Presets {
		if name != model.DefaultPresetName {
			named = append(named, name)
		}
	}
	slices.Sort(named)

	for _, name := range named {
		p, err := applyPreset(base, file.Presets[name])
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		p.Name = name
		cfg.presets[name] = p
	}
	cfg.names = append([]string{model.DefaultPresetName}, named...)

	for _, name := range cfg.names {
		if _, err := cfg.presets[name].Strategy(cfg.ladders); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
	}
	return cfg, nil
}

func applyPreset(base model.Preset, e presetEntry) (model.Preset, error) {
	p := base
	if e.BridgingPolicy != nil {
		policy, err := model.ParseBridgingPolicy(*e.BridgingPolicy)
		if err != nil {
			return model.Preset{}, err
		}
		p.Policy = policy
	}
	if e.RecoveryTargetPct != nil {
		p.RecoveryTargetFraction = *e.RecoveryTargetPct
	}
	if e.CrossoverOffset != nil {
		p.CrossoverOffset = *e.CrossoverOffset
	}
	return p, nil
}

// Names DEFAULT первым, остальные по алфавиту
func (c *presetsConfig) Names() []string {
	return slices.Clone(c.names)
}

var ErrPresetNotFound = errors.New("preset not found")

func (c *presetsConfig) Get(name string) (model.Preset, error) {
	p, ok := c.presets[name]
	if !ok {
		return model.Preset{}, fmt.Errorf("%w: %q, available presets: %s", ErrPresetNotFound, name, strings.Join(c.names, ", "))
	}
	return p, nil
}

func (c *presetsConfig) Ladders() []model.Ladder {
	out := make([]model.Ladder, len(c.ladders))
	for i, l := range c.ladders {
		out[i] = model.Ladder{Name: l.Name, Stakes: slices.Clone(l.Stakes)}
	}
	return out
}
