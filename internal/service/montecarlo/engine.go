package montecarlo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"staking_sim/internal/model"
	"staking_sim/internal/service/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StreamMode способ раздачи случайных чисел сессиям
type StreamMode int

const (
	// SharedStream один поток на весь прогон, сессии берут числа по порядку
	SharedStream StreamMode = iota
	// SplitStreams у каждой сессии свой поток, ключ (seed, номер сессии).
	// Результат не зависит от числа воркеров.
	SplitStreams
)

func (m StreamMode) String() string {
	switch m {
	case SharedStream:
		return "shared"
	case SplitStreams:
		return "split"
	}
	return fmt.Sprintf("StreamMode(%d)", int(m))
}

// ParseStreamMode "shared" или "split"
func ParseStreamMode(s string) (StreamMode, error) {
	switch s {
	case "", "shared":
		return SharedStream, nil
	case "split":
		return SplitStreams, nil
	}
	return SharedStream, &model.ValidationError{Field: "stream_mode", Value: s, Reason: "expected shared or split"}
}

// Engine прогон Монте-Карло для одной конфигурации сессии
type Engine struct {
	machine  *session.Machine
	sessions int
	workers  int
	mode     StreamMode
	traces   bool
	log      *zap.Logger
}

type Option func(*Engine)

// WithWorkers число горутин для SplitStreams, 0 — по числу процессоров
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithStreamMode(m StreamMode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithTraces сохранить PnL и длину каждой сессии в результате
func WithTraces() Option {
	return func(e *Engine) { e.traces = true }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(machine *session.Machine, sessions int, opts ...Option) (*Engine, error) {
	e := &Engine{
		machine:  machine,
		sessions: sessions,
		mode:     SharedStream,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if sessions <= 0 {
		return nil, &model.ValidationError{Field: "sessions", Value: sessions, Reason: "must be positive"}
	}
	if e.workers < 0 {
		return nil, &model.ValidationError{Field: "workers", Value: e.workers, Reason: "must not be negative"}
	}
	if e.workers == 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e, nil
}

func (e *Engine) Sessions() int { return e.sessions }

// Run прогоняет все сессии и сводит их в статистику
func (e *Engine) Run(ctx context.Context) (model.AggregateResult, error) {
	start := time.Now()

	outcomes, err := e.Outcomes(ctx)
	if err != nil {
		return model.AggregateResult{}, err
	}

	res := Aggregate(outcomes, len(e.machine.Strategy().Ladders), e.traces)

	e.log.Debug("monte carlo run finished",
		zap.Int("sessions", e.sessions),
		zap.Stringer("mode", e.mode),
		zap.Float64("profit_target", e.machine.Limits().ProfitTarget),
		zap.Float64("ruin", res.Probabilities.Ruin()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Outcomes результаты сессий в порядке номеров.
// Контекст проверяется только между сессиями: начатая сессия всегда доигрывается.
func (e *Engine) Outcomes(ctx context.Context) ([]model.SessionOutcome, error) {
	if e.mode == SplitStreams {
		return e.splitOutcomes(ctx)
	}

	seed := e.machine.Limits().Seed
	rng := rand.New(rand.NewPCG(seed, 0))

	out := make([]model.SessionOutcome, e.sessions)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("monte carlo stopped after %d sessions: %w", i, err)
		}
		out[i] = e.machine.Run(rng)
	}
	return out, nil
}

func (e *Engine) splitOutcomes(ctx context.Context) ([]model.SessionOutcome, error) {
	seed := e.machine.Limits().Seed
	out := make([]model.SessionOutcome, e.sessions)

	workers := min(e.workers, e.sessions)
	chunk := (e.sessions + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for from := 0; from < e.sessions; from += chunk {
		to := min(from+chunk, e.sessions)
		g.Go(func() error {
			for i := from; i < to; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = e.machine.Run(sessionStream(seed, i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("monte carlo stopped: %w", err)
	}
	return out, nil
}

// sessionStream отдельный поток для сессии i.
// Второе слово PCG смещено на 1, чтобы не совпадать с общим потоком.
func sessionStream(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(i)+1))
}
