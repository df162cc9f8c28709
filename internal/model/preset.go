package model

const DefaultPresetName = "DEFAULT"

// Preset именованный набор параметров стратегии
type Preset struct {
	Name                   string
	Policy                 BridgingPolicy
	RecoveryTargetFraction float64
	CrossoverOffset        int
}

// BuiltinPreset значения по умолчанию, если в файле их нет
func BuiltinPreset() Preset {
	return Preset{
		Name:                   DefaultPresetName,
		Policy:                 CarryOverIndexDelta{},
		RecoveryTargetFraction: 0.5,
		CrossoverOffset:        0,
	}
}

// PresetOverrides переопределения из командной строки; nil — не задано
type PresetOverrides struct {
	Policy                 BridgingPolicy
	RecoveryTargetFraction *float64
	CrossoverOffset        *int
}

// Merge применяет переопределения, приоритет у переопределений
func (p Preset) Merge(o PresetOverrides) Preset {
	out := p
	out.Name = p.Name + "+cli"
	if o.Policy != nil {
		out.Policy = o.Policy
	}
	if o.RecoveryTargetFraction != nil {
		out.RecoveryTargetFraction = *o.RecoveryTargetFraction
	}
	if o.CrossoverOffset != nil {
		out.CrossoverOffset = *o.CrossoverOffset
	}
	return out
}

// Strategy стратегия из пресета и набора лестниц
func (p Preset) Strategy(ladders []Ladder) (Strategy, error) {
	return NewStrategy(ladders, p.Policy, p.RecoveryTargetFraction, p.CrossoverOffset)
}
