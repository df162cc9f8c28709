package model

import "fmt"

// Ladder упорядоченная таблица ставок
type Ladder struct {
	Name   string
	Stakes []float64
}

// NewLadder создаёт лестницу. Пустая таблица или неположительная ставка — ошибка.
func NewLadder(name string, stakes []float64) (Ladder, error) {
	l := Ladder{
		Name:   name,
		Stakes: append([]float64(nil), stakes...),
	}
	if err := l.validate(fmt.Sprintf("ladders[%s]", name)); err != nil {
		return Ladder{}, err
	}
	return l, nil
}

func (l Ladder) validate(field string) error {
	if len(l.Stakes) == 0 {
		return invalid(field+".stakes", l.Stakes, "must contain at least one stake")
	}
	for i, s := range l.Stakes {
		if s <= 0 {
			return invalid(fmt.Sprintf("%s.stakes[%d]", field, i), s, "must be positive")
		}
	}
	return nil
}

// MaxIndex индекс верхней ступени
func (l Ladder) MaxIndex() int {
	return len(l.Stakes) - 1
}

// StakeAt ставка на позиции index, index прижимается к [0, MaxIndex]
func (l Ladder) StakeAt(index int) float64 {
	return l.Stakes[clamp(index, 0, l.MaxIndex())]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DefaultLadders три пересекающиеся лестницы Фибоначчи
func DefaultLadders() []Ladder {
	return []Ladder{
		{Name: "L1", Stakes: []float64{5, 10, 15, 25, 40, 65, 105, 170, 275}},
		{Name: "L2", Stakes: []float64{50, 100, 150, 250, 400, 650, 1050, 1750}},
		{Name: "L3", Stakes: []float64{500, 1000, 1500, 2500, 4000, 6500, 10500, 17000, 27500, 44500}},
	}
}
