package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	dto "staking_sim/internal/api/dto/simulation"
	"staking_sim/internal/converter"
	"staking_sim/internal/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const timestampLayout = "20060102_150405"

// Report результат поиска и то, чего нет в RunRecord
type Report struct {
	Record  *model.RunRecord
	Game    model.Game
	Ladders []string
}

func (r Report) stopLossPct() float64 {
	return r.Record.StopLossAbsolute / r.Record.Bankroll * 100
}

func (r Report) ladderName(i int) string {
	if i < len(r.Ladders) {
		return r.Ladders[i]
	}
	return "L" + strconv.Itoa(i+1)
}

// WriteSummary текстовая сводка для терминала
func WriteSummary(w io.Writer, r Report) error {
	p := message.NewPrinter(language.English)
	rec := r.Record
	res := rec.Result.Result
	line := strings.Repeat("=", 80)
	sep := strings.Repeat("-", 80)

	var b strings.Builder
	b.WriteString("\n" + line + "\nSAFE PROFIT TARGET ANALYSIS\n" + line + "\n")

	b.WriteString("\nSimulation Parameters:\n")
	p.Fprintf(&b, "  Bankroll:              $%.0f\n", rec.Bankroll)
	p.Fprintf(&b, "  Stop Loss:             $%.0f (%.1f%% of bankroll)\n", rec.StopLossAbsolute, r.stopLossPct())
	p.Fprintf(&b, "  Max Rounds:            %d\n", rec.MaxRounds)
	p.Fprintf(&b, "  Sessions Simulated:    %d\n", res.Sessions)
	p.Fprintf(&b, "  Bridging Policy:       %s\n", rec.Policy)
	p.Fprintf(&b, "  House Edge:            %.2f%%\n", r.Game.HouseEdge()*100)

	b.WriteString("\n" + sep + "\n")
	p.Fprintf(&b, "RECOMMENDED SAFE PROFIT TARGET: $%.0f\n", rec.Result.SafeTarget)
	b.WriteString(sep + "\n")

	b.WriteString("\nSuccess Metrics:\n")
	p.Fprintf(&b, "  P(Hit Target):         %.2f%%\n", res.Probabilities.ProfitTarget*100)
	p.Fprintf(&b, "  P(Hit Stop Loss):      %.2f%%\n", res.Probabilities.StopLoss*100)
	p.Fprintf(&b, "  P(Table Limit):        %.2f%%\n", res.Probabilities.TableLimit*100)
	p.Fprintf(&b, "  P(Bankroll Exhausted): %.2f%%\n", res.Probabilities.BankrollExhausted*100)
	p.Fprintf(&b, "  P(Max Rounds):         %.2f%%\n", res.Probabilities.MaxRounds*100)
	p.Fprintf(&b, "  Ruin Probability:      %.4f%%\n", rec.Result.RuinProbability*100)

	b.WriteString("\nPnL Metrics:\n")
	p.Fprintf(&b, "  Expected PnL:          $%.2f\n", res.PnL.Mean)
	p.Fprintf(&b, "  Median PnL:            $%.2f\n", res.PnL.Median)
	p.Fprintf(&b, "  Std Dev:               $%.2f\n", res.PnL.StdDev)
	p.Fprintf(&b, "  95%% CI:                [$%.2f, $%.2f]\n", res.PnL.CI95Lower, res.PnL.CI95Upper)
	p.Fprintf(&b, "  Skewness:              %.3f\n", res.PnL.Skewness)
	p.Fprintf(&b, "  Kurtosis:              %.3f\n", res.PnL.ExcessKurtosis)

	b.WriteString("\nSession Length:\n")
	p.Fprintf(&b, "  Mean Rounds:           %.1f\n", res.Rounds.Mean)
	p.Fprintf(&b, "  Median Rounds:         %.1f\n", res.Rounds.Median)
	if res.Probabilities.ProfitTarget > 0 {
		p.Fprintf(&b, "  Mean Rounds to Target: %.1f\n", res.Rounds.MeanToTarget)
		p.Fprintf(&b, "  Median Rounds to Target: %.1f\n", res.Rounds.MedianToTarget)
	}

	b.WriteString("\nRisk Metrics:\n")
	p.Fprintf(&b, "  Mean Max Stake:        $%.2f\n", res.Risk.MeanMaxStake)
	p.Fprintf(&b, "  Median Max Stake:      $%.2f\n", res.Risk.MedianMaxStake)
	p.Fprintf(&b, "  Mean Max Drawdown:     $%.2f\n", res.Risk.MeanMaxDrawdown)
	p.Fprintf(&b, "  Median Max Drawdown:   $%.2f\n", res.Risk.MedianMaxDrawdown)
	p.Fprintf(&b, "  Mean Total Wagered:    $%.2f\n", res.MeanTotalWagered)
	for i, prob := range res.Risk.LadderTouchProb {
		p.Fprintf(&b, "  P(Touch Ladder %s):%s%.1f%%\n", r.ladderName(i), pad(r.ladderName(i)), prob*100)
	}
	p.Fprintf(&b, "  P(Hit Top of Ladder):  %.2f%%\n", res.Risk.TopOfLadderProb*100)
	b.WriteString("\n" + line + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// выравнивание значений по колонке
func pad(name string) string {
	n := 6 - len(name)
	if n < 1 {
		n = 1
	}
	return strings.Repeat(" ", n)
}

type fileParameters struct {
	dto.Parameters
	StopLossPct float64 `json:"stop_loss_pct"`
	HouseEdge   float64 `json:"house_edge"`
}

type resultsFile struct {
	Timestamp       string                `json:"timestamp"`
	Parameters      fileParameters        `json:"parameters"`
	SafeTarget      float64               `json:"safe_target"`
	RuinProbability float64               `json:"ruin_probability"`
	Results         dto.AggregateResponse `json:"results"`
}

// WriteJSON файл результатов в формате simulation_results_*.json
func WriteJSON(w io.Writer, r Report, at time.Time) error {
	rec := r.Record
	out := resultsFile{
		Timestamp: at.Format(timestampLayout),
		Parameters: fileParameters{
			Parameters:  converter.ToParameters(rec),
			StopLossPct: r.stopLossPct(),
			HouseEdge:   r.Game.HouseEdge() * 100,
		},
		SafeTarget:      rec.Result.SafeTarget,
		RuinProbability: rec.Result.RuinProbability,
		Results:         converter.ToAggregateResponse(rec.Result.Result),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var curveHeader = []string{
	"profit_target",
	"ruin_probability",
	"prob_hit_target",
	"mean_pnl",
	"std_pnl",
	"mean_rounds",
	"median_rounds_to_target",
}

// WriteCSV кривая риск/доходность, пустая кривая — пустой файл
func WriteCSV(w io.Writer, curve []model.CurvePoint) error {
	if len(curve) == 0 {
		return nil
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	cw := csv.NewWriter(w)
	if err := cw.Write(curveHeader); err != nil {
		return err
	}
	for _, p := range curve {
		row := []string{
			f(p.ProfitTarget),
			f(p.RuinProbability),
			f(p.ProbHitTarget),
			f(p.MeanPnL),
			f(p.StdPnL),
			f(p.MeanRounds),
			f(p.MedianRoundsToTarget),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type Paths struct {
	JSON string
	CSV  string
}

// Save пишет JSON и CSV в dir, создаёт dir при необходимости
func Save(dir string, r Report, at time.Time) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}

	ts := at.Format(timestampLayout)
	paths := Paths{
		JSON: filepath.Join(dir, "simulation_results_"+ts+".json"),
		CSV:  filepath.Join(dir, "trade_off_curve_"+ts+".csv"),
	}

	if err := writeFile(paths.JSON, func(w io.Writer) error { return WriteJSON(w, r, at) }); err != nil {
		return Paths{}, err
	}
	if err := writeFile(paths.CSV, func(w io.Writer) error { return WriteCSV(w, r.Record.Result.Curve) }); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
