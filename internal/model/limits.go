package model

// SessionLimits ограничения одной сессии
type SessionLimits struct {
	Bankroll         float64
	ProfitTarget     float64
	StopLossAbsolute float64
	MaxRounds        int
	// TableMax nil — лимит стола не задан
	TableMax *float64
	Seed     uint64
}

// NewSessionLimits создаёт ограничения и проверяет их
func NewSessionLimits(bankroll, profitTarget, stopLoss float64, maxRounds int, tableMax *float64, seed uint64) (SessionLimits, error) {
	l := SessionLimits{
		Bankroll:         bankroll,
		ProfitTarget:     profitTarget,
		StopLossAbsolute: stopLoss,
		MaxRounds:        maxRounds,
		Seed:             seed,
	}
	if tableMax != nil {
		v := *tableMax
		l.TableMax = &v
	}
	if err := l.Validate(); err != nil {
		return SessionLimits{}, err
	}
	return l, nil
}

func (l SessionLimits) Validate() error {
	if l.Bankroll <= 0 {
		return invalid("bankroll", l.Bankroll, "must be positive")
	}
	if l.ProfitTarget <= 0 {
		return invalid("profit_target", l.ProfitTarget, "must be positive")
	}
	if l.StopLossAbsolute <= 0 {
		return invalid("stop_loss_absolute", l.StopLossAbsolute, "must be positive")
	}
	if l.MaxRounds <= 0 {
		return invalid("max_rounds", l.MaxRounds, "must be positive")
	}
	if l.TableMax != nil && *l.TableMax <= 0 {
		return invalid("table_max", *l.TableMax, "must be positive if specified")
	}
	return nil
}

// WithProfitTarget копия ограничений с другой целью по прибыли
func (l SessionLimits) WithProfitTarget(target float64) SessionLimits {
	out := l
	if l.TableMax != nil {
		v := *l.TableMax
		out.TableMax = &v
	}
	out.ProfitTarget = target
	return out
}
