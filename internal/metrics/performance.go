package metrics

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"portfoliolab/internal/drawdown"
	"portfoliolab/types"
)

// Ratio is a float that may be +Inf; it encodes that as the JSON string "Infinity".
type Ratio float64

func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(r))
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == `"Infinity"` {
		*r = Ratio(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

type Performance struct {
	Observations     int     `json:"observations"`
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	SortinoRatio     float64 `json:"sortinoRatio"`
	CalmarRatio      float64 `json:"calmarRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	Exposure         float64 `json:"exposure"`

	HasBenchmark     bool    `json:"hasBenchmark"`
	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha"`
	InformationRatio float64 `json:"informationRatio"`

	TotalTrades     int             `json:"totalTrades"`
	ClosedTrades    int             `json:"closedTrades"`
	WinRate         float64         `json:"winRate"`
	ProfitFactor    Ratio           `json:"profitFactor"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
	TotalSlippage   decimal.Decimal `json:"totalSlippage"`
}

// Compute derives the performance statistics from a finished run. benchmark
// may be nil; when present it is matched to history by date.
func Compute(history []types.Snapshot, trades []types.Trade, benchmark []types.PricePoint, riskFreeRate float64) Performance {
	values := equity(history)
	returns := Returns(values)
	dailyRF := riskFreeRate / TradingDaysPerYear

	perf := Performance{Observations: len(returns)}
	if len(values) > 0 {
		perf.TotalReturn = safeDiv(values[len(values)-1]-values[0], values[0])
	}
	perf.AnnualizedReturn = AnnualizedReturn(perf.TotalReturn, len(returns))
	perf.Volatility = SampleStdDev(returns) * math.Sqrt(TradingDaysPerYear)
	perf.SharpeRatio = SharpeRatio(returns, dailyRF)
	perf.SortinoRatio = SortinoRatio(returns, dailyRF)
	perf.MaxDrawdown = drawdown.MaxDrawdown(values)
	if perf.MaxDrawdown < 0 {
		perf.CalmarRatio = perf.AnnualizedReturn / math.Abs(perf.MaxDrawdown)
	}
	perf.Exposure = exposure(history)

	if len(benchmark) > 0 {
		port, bench := alignReturns(history, benchmark)
		perf.HasBenchmark = len(port) > 0
		perf.Beta = Beta(port, bench)
		perf.Alpha = Alpha(port, bench, perf.Beta, dailyRF)
		perf.InformationRatio = InformationRatio(port, bench)
	}

	perf.TotalTrades = len(trades)
	perf.TotalCommission = decimal.Zero
	perf.TotalSlippage = decimal.Zero
	for _, t := range trades {
		perf.TotalCommission = perf.TotalCommission.Add(t.Commission)
		perf.TotalSlippage = perf.TotalSlippage.Add(t.Slippage)
	}
	perf.WinRate, perf.ClosedTrades = WinRate(trades)
	perf.ProfitFactor = ProfitFactor(trades)
	return perf
}

// Returns are simple period returns; a zero previous value yields 0.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		out = append(out, safeDiv(values[i]-values[i-1], values[i-1]))
	}
	return out
}

// AnnualizedReturn compounds totalReturn over n daily observations.
func AnnualizedReturn(totalReturn float64, n int) float64 {
	if n == 0 {
		return 0
	}
	base := 1 + totalReturn
	if base <= 0 {
		return -1
	}
	return math.Pow(base, TradingDaysPerYear/float64(n)) - 1
}

// SharpeRatio annualises mean over sample deviation of excess daily returns.
// Zero deviation gives 0.
func SharpeRatio(returns []float64, dailyRiskFree float64) float64 {
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRiskFree
	}
	return safeDiv(Mean(excess), SampleStdDev(excess)) * math.Sqrt(TradingDaysPerYear)
}

// SortinoRatio uses the downside deviation below the daily risk-free rate.
func SortinoRatio(returns []float64, dailyRiskFree float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	excess := Mean(returns) - dailyRiskFree
	return safeDiv(excess, DownsideDeviation(returns, dailyRiskFree)) * math.Sqrt(TradingDaysPerYear)
}

func Beta(returns, benchmark []float64) float64 {
	return safeDiv(SampleCovariance(returns, benchmark), SampleVariance(benchmark))
}

// Alpha is the daily Jensen's alpha.
func Alpha(returns, benchmark []float64, beta, dailyRiskFree float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return Mean(returns) - dailyRiskFree - beta*(Mean(benchmark)-dailyRiskFree)
}

func InformationRatio(returns, benchmark []float64) float64 {
	if len(returns) == 0 || len(returns) != len(benchmark) {
		return 0
	}
	active := make([]float64, len(returns))
	for i := range returns {
		active[i] = returns[i] - benchmark[i]
	}
	return safeDiv(Mean(active), SampleStdDev(active))
}

// WinRate counts sells with positive realised P&L over all sells.
func WinRate(trades []types.Trade) (float64, int) {
	var wins, closed int
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		closed++
		if t.RealizedPnL.IsPositive() {
			wins++
		}
	}
	return safeDiv(float64(wins), float64(closed)), closed
}

// ProfitFactor is gross gains over gross losses of closed trades. With gains
// and no losses it is +Inf; with neither it is 0.
func ProfitFactor(trades []types.Trade) Ratio {
	gains, losses := decimal.Zero, decimal.Zero
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		switch {
		case t.RealizedPnL.IsPositive():
			gains = gains.Add(t.RealizedPnL)
		case t.RealizedPnL.IsNegative():
			losses = losses.Add(t.RealizedPnL.Abs())
		}
	}
	if losses.IsZero() {
		if gains.IsPositive() {
			return Ratio(math.Inf(1))
		}
		return 0
	}
	return Ratio(gains.Div(losses).InexactFloat64())
}

func equity(history []types.Snapshot) []float64 {
	out := make([]float64, len(history))
	for i, s := range history {
		out[i] = s.TotalValue.InexactFloat64()
	}
	return out
}

// exposure is the average share of total value held in positions.
func exposure(history []types.Snapshot) float64 {
	if len(history) == 0 {
		return 0
	}
	shares := make([]float64, len(history))
	for i, s := range history {
		total := s.TotalValue.InexactFloat64()
		shares[i] = safeDiv(total-s.Cash.InexactFloat64(), total)
	}
	return Mean(shares)
}

// alignReturns pairs portfolio and benchmark returns over consecutive
// snapshots whose dates both have a benchmark quote.
func alignReturns(history []types.Snapshot, benchmark []types.PricePoint) ([]float64, []float64) {
	byDate := make(map[time.Time]float64, len(benchmark))
	for _, p := range benchmark {
		byDate[types.Day(p.Date)] = p.Price.InexactFloat64()
	}

	var port, bench []float64
	for i := 1; i < len(history); i++ {
		prevB, okPrev := byDate[types.Day(history[i-1].Date)]
		curB, okCur := byDate[types.Day(history[i].Date)]
		if !okPrev || !okCur || prevB == 0 {
			continue
		}
		prev := history[i-1].TotalValue.InexactFloat64()
		cur := history[i].TotalValue.InexactFloat64()
		port = append(port, safeDiv(cur-prev, prev))
		bench = append(bench, (curB-prevB)/prevB)
	}
	return port, bench
}
