package model

// Game игра с фиксированным преимуществом казино и выплатой payout_ratio:1
type Game struct {
	Name           string
	PayoutRatio    float64
	WinProbability float64
}

// NewGame создаёт игру и проверяет параметры
func NewGame(name string, payoutRatio, winProbability float64) (Game, error) {
	g := Game{
		Name:           name,
		PayoutRatio:    payoutRatio,
		WinProbability: winProbability,
	}
	if err := g.Validate(); err != nil {
		return Game{}, err
	}
	return g, nil
}

// EvenMoneyGame ставка 1:1 с преимуществом казино 1%
func EvenMoneyGame() Game {
	return Game{Name: "even_money", PayoutRatio: 1.0, WinProbability: 0.495}
}

func (g Game) Validate() error {
	if g.PayoutRatio <= 0 {
		return invalid("payout_ratio", g.PayoutRatio, "must be positive")
	}
	if g.WinProbability <= 0 || g.WinProbability >= 1 {
		return invalid("win_probability", g.WinProbability, "must be in (0, 1)")
	}
	return nil
}

// Resolve разыгрывает одну ставку по равномерному числу u из [0, 1).
// Возвращает исход и изменение баланса.
func (g Game) Resolve(stake, u float64) (bool, float64) {
	if u < g.WinProbability {
		return true, stake * g.PayoutRatio
	}
	return false, -stake
}

// ExpectedValue математическое ожидание одной ставки
func (g Game) ExpectedValue(stake float64) float64 {
	return stake * (g.PayoutRatio*g.WinProbability - (1 - g.WinProbability))
}

// HouseEdge преимущество казино в долях от ставки
func (g Game) HouseEdge() float64 {
	return 1 - g.WinProbability*(g.PayoutRatio+1)
}
