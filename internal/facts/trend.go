package facts

import (
	"fmt"
	"math"
)

// Trend is a direction label.
type Trend string

// Trend directions.
const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Short-term window bounds, in quarters.
const (
	DefaultWindow = 3
	MinWindow     = 1
	MaxWindow     = 6
)

const (
	// shortTermBand is the percent change a window must exceed to count as a move.
	shortTermBand = 5.0
	// minDeterminant guards the normal-equation solve. The system is built on
	// axes scaled to [0,1] so the cut-off does not depend on value magnitude.
	minDeterminant = 1e-3
	// flatTolerance is the relative fitted change treated as no change.
	flatTolerance = 1e-9
	// curveBaseTolerance is the relative fitted value treated as zero.
	curveBaseTolerance = 1e-6
	// quarterlyDeltas is the number of curve deltas reported in extended results.
	quarterlyDeltas = 6
)

// QuarterTrend is the fitted curve's percent change into one recent quarter.
type QuarterTrend struct {
	Quarter      string  `json:"quarter"`
	TrendPercent float64 `json:"trendPercent"`
}

// TrendResult summarizes a metric's direction.
type TrendResult struct {
	OverallTrend    Trend          `json:"overallTrend"`
	ShortTermTrend  Trend          `json:"shortTermTrend"`
	LatestValue     float64        `json:"latestValue"`
	QuarterlyTrends []QuarterTrend `json:"quarterlyTrends,omitempty"`
}

// Quadratic is y = A + B·x + C·x².
type Quadratic struct {
	A, B, C float64
}

// At evaluates the curve.
func (q Quadratic) At(x float64) float64 {
	return q.A + q.B*x + q.C*x*x
}

// ClampWindow bounds a short-term window to [MinWindow, MaxWindow];
// non-positive values select DefaultWindow.
func ClampWindow(w int) int {
	switch {
	case w <= 0:
		return DefaultWindow
	case w < MinWindow:
		return MinWindow
	case w > MaxWindow:
		return MaxWindow
	default:
		return w
	}
}

// FitQuadratic fits a least-squares parabola to values indexed 0..n-1 by
// solving the 3×3 normal equations with Cramer's rule. x is scaled to [0,1]
// and y by its largest magnitude before solving; the returned coefficients
// are in the original units. It reports false for a degenerate system.
func FitQuadratic(values []float64) (Quadratic, bool) {
	n := len(values)
	if n < 3 {
		return Quadratic{}, false
	}

	span := float64(n - 1)
	scale := 0.0
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		scale = 1
	}

	var s0, s1, s2, s3, s4, t0, t1, t2 float64
	for i, v := range values {
		x := float64(i) / span
		y := v / scale
		x2 := x * x
		s0++
		s1 += x
		s2 += x2
		s3 += x2 * x
		s4 += x2 * x2
		t0 += y
		t1 += x * y
		t2 += x2 * y
	}

	m := [3][3]float64{
		{s0, s1, s2},
		{s1, s2, s3},
		{s2, s3, s4},
	}
	rhs := [3]float64{t0, t1, t2}

	det := det3(m)
	if math.Abs(det) < minDeterminant {
		return Quadratic{}, false
	}

	var coef [3]float64
	for col := range 3 {
		mc := m
		for row := range 3 {
			mc[row][col] = rhs[row]
		}
		coef[col] = det3(mc) / det
	}

	return Quadratic{
		A: scale * coef[0],
		B: scale * coef[1] / span,
		C: scale * coef[2] / (span * span),
	}, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Classify derives the overall and short-term trend of a metric.
func Classify(m Metric, window int) TrendResult {
	res, _, _ := classify(m, window)
	return res
}

// ClassifyExtended is Classify plus per-quarter deltas of the fitted curve
// over the last six quarters, oldest first. Deltas need at least six points;
// the curve is only read inside the observed range, so six points give five
// deltas.
func ClassifyExtended(m Metric, window int) TrendResult {
	res, fit, ok := classify(m, window)
	n := len(m.DataPoints)
	if !ok || n < quarterlyDeltas {
		return res
	}

	start := max(0, n-1-quarterlyDeltas)
	fitted := make([]float64, n-start)
	for i := range fitted {
		fitted[i] = fit.At(float64(start + i))
	}

	scale := 0.0
	for _, dp := range m.DataPoints {
		scale = math.Max(scale, math.Abs(dp.Value))
	}

	deltas := len(fitted) - 1
	res.QuarterlyTrends = make([]QuarterTrend, 0, deltas)
	for i := range deltas {
		res.QuarterlyTrends = append(res.QuarterlyTrends, QuarterTrend{
			Quarter:      fmt.Sprintf("%dQ ago", deltas-i),
			TrendPercent: curveChange(fitted[i], fitted[i+1], scale),
		})
	}
	return res
}

// curveChange is percentChange for fitted values. A base that is zero
// relative to the series scale has no meaningful percentage and yields 0.
func curveChange(from, to, scale float64) float64 {
	if math.Abs(from) <= curveBaseTolerance*math.Max(scale, 1) {
		return 0
	}
	return percentChange(from, to)
}

func classify(m Metric, window int) (TrendResult, Quadratic, bool) {
	points := m.Ascending()
	res := TrendResult{OverallTrend: TrendNeutral, ShortTermTrend: TrendNeutral}
	if len(points) == 0 {
		return res, Quadratic{}, false
	}

	values := make([]float64, len(points))
	scale := 0.0
	for i, dp := range points {
		values[i] = dp.Value
		scale = math.Max(scale, math.Abs(dp.Value))
	}
	res.LatestValue = values[len(values)-1]
	if len(values) < 2 {
		return res, Quadratic{}, false
	}

	fit, ok := FitQuadratic(values)
	if ok {
		first, last := fit.At(0), fit.At(float64(len(values)-1))
		switch diff := last - first; {
		case math.Abs(diff) <= flatTolerance*math.Max(scale, 1):
			res.OverallTrend = TrendNeutral
		case diff > 0:
			res.OverallTrend = TrendUp
		default:
			res.OverallTrend = TrendDown
		}
	}

	res.ShortTermTrend = shortTerm(values, ClampWindow(window))
	return res, fit, ok
}

// shortTerm compares the first and last raw values of the trailing window.
func shortTerm(values []float64, window int) Trend {
	if len(values) > window {
		values = values[len(values)-window:]
	}
	if len(values) < 2 {
		return TrendNeutral
	}

	first, last := values[0], values[len(values)-1]
	if first == 0 {
		switch {
		case last > 0:
			return TrendUp
		case last < 0:
			return TrendDown
		default:
			return TrendNeutral
		}
	}

	change := (last - first) / math.Abs(first) * 100
	switch {
	case change > shortTermBand:
		return TrendUp
	case change < -shortTermBand:
		return TrendDown
	default:
		return TrendNeutral
	}
}

func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / math.Abs(from) * 100
}
