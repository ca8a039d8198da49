package features

import (
	"math"
	"sort"

	"priceflow/internal/frame"
)

// numericColumns are the monetary/count fields subject to null filling
// and the non-negativity clip.
var numericColumns = []string{"start_price", "final_price", "shipping_cost", "watchers", "bids"}

// monetaryColumns additionally get winsorized and log1p-transformed.
var monetaryColumns = []string{"start_price", "final_price", "shipping_cost"}

// Numeric normalizes the monetary/count columns present in the frame:
// nulls become 0, values are clipped to >= 0, and each monetary column
// gains <col>_win (clipped to the batch percentile window) and
// log1p_<col>. Percentiles use nearest-rank selection over the full
// batch; for a single row they equal the value itself and winsorization
// is a no-op.
func Numeric(f *frame.Frame, lower, upper float64) *frame.Frame {
	for _, name := range numericColumns {
		c := f.Column(name)
		if c == nil {
			continue
		}
		clipNonNegative(c)
	}

	for _, name := range monetaryColumns {
		c := f.Column(name)
		if c == nil {
			continue
		}
		winsorize(f, c, lower, upper)
	}
	return f
}

// clipNonNegative fills nulls with 0 and clips negatives to 0 in place.
func clipNonNegative(c *frame.Column) {
	for i := 0; i < c.Len(); i++ {
		v, ok := c.NumberAt(i)
		if !ok || v < 0 {
			v = 0
		}
		switch c.Kind() {
		case frame.Int:
			c.SetInt(i, int64(v))
		default:
			c.SetFloat(i, v)
		}
	}
}

func winsorize(f *frame.Frame, c *frame.Column, lower, upper float64) {
	n := c.Len()
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if v, ok := c.NumberAt(i); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return
	}
	sort.Float64s(values)
	lo := nearestRank(values, lower)
	hi := nearestRank(values, upper)

	win := frame.NewColumn(c.Name()+"_win", frame.Float, n)
	logc := frame.NewColumn("log1p_"+c.Name(), frame.Float, n)
	for i := 0; i < n; i++ {
		v, ok := c.NumberAt(i)
		if !ok {
			continue
		}
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		win.SetFloat(i, v)
		logc.SetFloat(i, math.Log1p(v))
	}
	f.SetColumn(win)
	f.SetColumn(logc)
}

// nearestRank picks the percentile by rounding to the nearest index of
// the ascending sort, with no interpolation between neighbors. This
// stays deterministic for arbitrarily small batches.
func nearestRank(sorted []float64, p float64) float64 {
	idx := int(math.Round(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
