package features

import (
	"math"
	"testing"

	"priceflow/internal/frame"
)

func floatColumn(name string, values []*float64) *frame.Column {
	c := frame.NewColumn(name, frame.Float, len(values))
	for i, v := range values {
		if v != nil {
			c.SetFloat(i, *v)
		}
	}
	return c
}

func fp(v float64) *float64 { return &v }

func TestNumericFillsAndClips(t *testing.T) {
	f := frame.New(3)
	f.SetColumn(floatColumn("start_price", []*float64{fp(-5), nil, fp(12.5)}))

	out := Numeric(f, 0.01, 0.99)
	c := out.Column("start_price")

	want := []float64{0, 0, 12.5}
	for i, w := range want {
		v, ok := c.FloatAt(i)
		if !ok {
			t.Fatalf("row %d should be non-null after fill", i)
		}
		if v != w {
			t.Errorf("start_price[%d] = %v, want %v", i, v, w)
		}
		if v < 0 {
			t.Errorf("start_price[%d] = %v violates non-negativity", i, v)
		}
	}
}

func TestNumericCountColumnsStayInt(t *testing.T) {
	f := frame.New(2)
	bids := frame.NewColumn("bids", frame.Int, 2)
	bids.SetInt(0, -3)
	f.SetColumn(bids)

	out := Numeric(f, 0.01, 0.99)
	c := out.Column("bids")
	if c.Kind() != frame.Int {
		t.Fatalf("bids kind = %v, want Int", c.Kind())
	}
	if v, _ := c.IntAt(0); v != 0 {
		t.Errorf("bids[0] = %d, want 0", v)
	}
	if v, _ := c.IntAt(1); v != 0 {
		t.Errorf("bids[1] = %d, want 0 (null filled)", v)
	}
}

func TestNumericWinsorizeAndLog(t *testing.T) {
	values := make([]*float64, 101)
	for i := range values {
		values[i] = fp(float64(i))
	}
	f := frame.New(101)
	f.SetColumn(floatColumn("final_price", values))

	out := Numeric(f, 0.01, 0.99)

	win := out.Column("final_price_win")
	logc := out.Column("log1p_final_price")
	if win == nil || logc == nil {
		t.Fatal("winsorized and log columns must exist")
	}
	// Nearest-rank percentiles over 0..100: lo=1, hi=99.
	if v, _ := win.FloatAt(0); v != 1 {
		t.Errorf("win[0] = %v, want 1 (clipped to lower percentile)", v)
	}
	if v, _ := win.FloatAt(100); v != 99 {
		t.Errorf("win[100] = %v, want 99 (clipped to upper percentile)", v)
	}
	if v, _ := win.FloatAt(50); v != 50 {
		t.Errorf("win[50] = %v, want 50 (inside window untouched)", v)
	}
	if v, _ := logc.FloatAt(50); math.Abs(v-math.Log1p(50)) > 1e-12 {
		t.Errorf("log1p[50] = %v, want %v", v, math.Log1p(50))
	}
}

func TestNumericSingleRowWinsorNoop(t *testing.T) {
	f := frame.New(1)
	f.SetColumn(floatColumn("shipping_cost", []*float64{fp(7.25)}))

	out := Numeric(f, 0.01, 0.99)
	if v, _ := out.Column("shipping_cost_win").FloatAt(0); v != 7.25 {
		t.Errorf("single-row winsorize changed value: %v", v)
	}
	if v, _ := out.Column("log1p_shipping_cost").FloatAt(0); math.Abs(v-math.Log1p(7.25)) > 1e-12 {
		t.Errorf("log1p = %v", v)
	}
}

func TestNumericAbsentColumnsSkipped(t *testing.T) {
	f := frame.New(2)
	out := Numeric(f, 0.01, 0.99)
	if len(out.Names()) != 0 {
		t.Fatalf("no columns should be created for an empty frame, got %v", out.Names())
	}
}

func TestNearestRank(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if v := nearestRank(sorted, 0); v != 1 {
		t.Errorf("p=0: %v", v)
	}
	if v := nearestRank(sorted, 1); v != 5 {
		t.Errorf("p=1: %v", v)
	}
	if v := nearestRank(sorted, 0.5); v != 3 {
		t.Errorf("p=0.5: %v", v)
	}
}
