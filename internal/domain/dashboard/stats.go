// Package dashboard summarizes the historical churn dataset for the
// exploratory dashboard.
package dashboard

import (
	"churn-service/internal/domain/customer"
	"math"
	"slices"
	"strconv"
)

const HistogramBins = 30

// CorrelationFeatures lists the numeric columns of the correlation matrix.
var CorrelationFeatures = []string{
	"CreditScore", "Age", "Tenure", "Balance", "NumOfProducts",
	"HasCrCard", "IsActiveMember", "EstimatedSalary", "Exited",
}

type Summary struct {
	Total     int     `json:"total"`
	Stayed    int     `json:"stayed"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churn_rate"`
}

type GroupRate struct {
	Value     string  `json:"value"`
	Total     int     `json:"total"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churn_rate"`
}

type GroupBreakdown struct {
	Feature string      `json:"feature"`
	Groups  []GroupRate `json:"groups"`
}

type Bin struct {
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Stayed  int     `json:"stayed"`
	Churned int     `json:"churned"`
}

type Histogram struct {
	Feature string `json:"feature"`
	Bins    []Bin  `json:"bins"`
}

// BoxSummary is a five-number summary. Quantiles interpolate linearly
// between order statistics.
type BoxSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

type StatusBox struct {
	Feature string     `json:"feature"`
	Stayed  BoxSummary `json:"stayed"`
	Churned BoxSummary `json:"churned"`
}

type Correlation struct {
	Features []string    `json:"features"`
	Matrix   [][]float64 `json:"matrix"`
}

type Stats struct {
	Summary     Summary          `json:"summary"`
	ChurnRates  []GroupBreakdown `json:"churn_rates"`
	Histograms  []Histogram      `json:"histograms"`
	Balance     StatusBox        `json:"balance"`
	Correlation Correlation      `json:"correlation"`
}

// Compute derives every dashboard figure from records.
func Compute(records []customer.HistoricalRecord) Stats {
	return Stats{
		Summary: Summarize(records),
		ChurnRates: []GroupBreakdown{
			ChurnRateBy(records, "Geography", func(r customer.HistoricalRecord) (string, float64) {
				return string(r.Geography), 0
			}),
			ChurnRateBy(records, "Gender", func(r customer.HistoricalRecord) (string, float64) {
				return r.Gender, 0
			}),
			ChurnRateBy(records, "NumOfProducts", intKey(func(r customer.HistoricalRecord) int { return r.NumOfProducts })),
			ChurnRateBy(records, "IsActiveMember", intKey(func(r customer.HistoricalRecord) int { return r.IsActiveMember })),
			ChurnRateBy(records, "Tenure", intKey(func(r customer.HistoricalRecord) int { return r.Tenure })),
		},
		Histograms: []Histogram{
			HistogramOf(records, "Age", HistogramBins, func(r customer.HistoricalRecord) float64 { return float64(r.Age) }),
			HistogramOf(records, "CreditScore", HistogramBins, func(r customer.HistoricalRecord) float64 { return float64(r.CreditScore) }),
		},
		Balance:     BoxByStatus(records, "Balance", func(r customer.HistoricalRecord) float64 { return r.Balance }),
		Correlation: CorrelationMatrix(records),
	}
}

func Summarize(records []customer.HistoricalRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Exited {
			s.Churned++
		}
	}
	s.Stayed = s.Total - s.Churned
	s.ChurnRate = rate(s.Churned, s.Total)
	return s
}

func intKey(field func(customer.HistoricalRecord) int) func(customer.HistoricalRecord) (string, float64) {
	return func(r customer.HistoricalRecord) (string, float64) {
		v := field(r)
		return strconv.Itoa(v), float64(v)
	}
}

// ChurnRateBy groups records by key. Groups are ordered by the numeric order
// key, ties broken by the group name.
func ChurnRateBy(records []customer.HistoricalRecord, feature string, key func(customer.HistoricalRecord) (string, float64)) GroupBreakdown {
	type acc struct {
		order          float64
		total, churned int
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		name, order := key(r)
		g, ok := groups[name]
		if !ok {
			g = &acc{order: order}
			groups[name] = g
		}
		g.total++
		if r.Exited {
			g.churned++
		}
	}

	out := GroupBreakdown{Feature: feature, Groups: make([]GroupRate, 0, len(groups))}
	for name, g := range groups {
		out.Groups = append(out.Groups, GroupRate{Value: name, Total: g.total, Churned: g.churned, ChurnRate: rate(g.churned, g.total)})
	}
	slices.SortFunc(out.Groups, func(a, b GroupRate) int {
		oa, ob := groups[a.Value].order, groups[b.Value].order
		switch {
		case oa < ob:
			return -1
		case oa > ob:
			return 1
		}
		if a.Value < b.Value {
			return -1
		}
		if a.Value > b.Value {
			return 1
		}
		return 0
	})
	return out
}

// HistogramOf splits [min, max] of the field into equal-width bins counted
// separately for stayed and churned customers. The maximum falls in the
// last bin.
func HistogramOf(records []customer.HistoricalRecord, feature string, bins int, field func(customer.HistoricalRecord) float64) Histogram {
	h := Histogram{Feature: feature}
	if len(records) == 0 || bins <= 0 {
		return h
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range records {
		v := field(r)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		bins = 1
	}
	width := (hi - lo) / float64(bins)
	h.Bins = make([]Bin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi

	for _, r := range records {
		i := bins - 1
		if width > 0 {
			i = min(int((field(r)-lo)/width), bins-1)
		}
		if r.Exited {
			h.Bins[i].Churned++
		} else {
			h.Bins[i].Stayed++
		}
	}
	return h
}

func BoxByStatus(records []customer.HistoricalRecord, feature string, field func(customer.HistoricalRecord) float64) StatusBox {
	var stayed, churned []float64
	for _, r := range records {
		if r.Exited {
			churned = append(churned, field(r))
		} else {
			stayed = append(stayed, field(r))
		}
	}
	return StatusBox{Feature: feature, Stayed: FiveNumber(stayed), Churned: FiveNumber(churned)}
}

func FiveNumber(values []float64) BoxSummary {
	if len(values) == 0 {
		return BoxSummary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return BoxSummary{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// CorrelationMatrix computes pairwise Pearson coefficients over
// CorrelationFeatures. A constant column correlates 1 with itself and 0 with
// every other column.
func CorrelationMatrix(records []customer.HistoricalRecord) Correlation {
	n := len(CorrelationFeatures)
	columns := make([][]float64, n)
	for i := range columns {
		columns[i] = make([]float64, len(records))
	}
	for j, r := range records {
		exited := 0.0
		if r.Exited {
			exited = 1
		}
		row := []float64{
			float64(r.CreditScore), float64(r.Age), float64(r.Tenure), r.Balance, float64(r.NumOfProducts),
			float64(r.HasCrCard), float64(r.IsActiveMember), r.EstimatedSalary, exited,
		}
		for i, v := range row {
			columns[i][j] = v
		}
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for k := i + 1; k < n; k++ {
			c := pearson(columns[i], columns[k])
			matrix[i][k] = c
			matrix[k][i] = c
		}
	}
	return Correlation{Features: slices.Clone(CorrelationFeatures), Matrix: matrix}
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(len(x))
	meanY /= float64(len(y))

	var cov, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
