package features

import (
	"math"
	"testing"

	"priceflow/internal/frame"
)

func TestLabelEncodeDiscoveryOrder(t *testing.T) {
	f := frame.New(4)
	f.SetColumn(stringColumn("brand", []*string{sp("Apple"), sp("Sony"), sp("Apple"), nil}))

	out, maps := LabelEncode(f)

	c := out.Column("brand_le")
	want := []int64{0, 1, 0, UnseenCategory}
	for i, w := range want {
		if v, _ := c.IntAt(i); v != w {
			t.Errorf("brand_le[%d] = %d, want %d", i, v, w)
		}
	}
	if maps["brand"]["Apple"] != 0 || maps["brand"]["Sony"] != 1 {
		t.Errorf("mapping = %v", maps["brand"])
	}
	if !out.Has("brand") {
		t.Error("original column must be retained")
	}
}

func TestLabelEncodeDeterministic(t *testing.T) {
	build := func() *frame.Frame {
		f := frame.New(3)
		f.SetColumn(stringColumn("condition", []*string{sp("Used"), sp("New"), sp("Used")}))
		return f
	}
	a, _ := LabelEncode(build())
	b, _ := LabelEncode(build())
	for i := 0; i < 3; i++ {
		av, _ := a.Column("condition_le").IntAt(i)
		bv, _ := b.Column("condition_le").IntAt(i)
		if av != bv {
			t.Fatalf("row %d: %d vs %d across identical runs", i, av, bv)
		}
	}
}

func TestApplyLabelEncodingUnseenValue(t *testing.T) {
	maps := map[string]map[string]int64{"brand": {"Apple": 0, "Sony": 1}}
	f := frame.New(3)
	f.SetColumn(stringColumn("brand", []*string{sp("Sony"), sp("Nokia"), nil}))

	out := ApplyLabelEncoding(f, maps)

	c := out.Column("brand_le")
	want := []int64{1, UnseenCategory, UnseenCategory}
	for i, w := range want {
		if v, _ := c.IntAt(i); v != w {
			t.Errorf("brand_le[%d] = %d, want %d", i, v, w)
		}
	}
}

func TestTargetEncodeSmoothing(t *testing.T) {
	// Two brands: A has prices {10, 20}, B has {40}. Global mean 70/3.
	f := frame.New(3)
	f.SetColumn(stringColumn("brand", []*string{sp("A"), sp("A"), sp("B")}))
	price := frame.NewColumn("final_price", frame.Float, 3)
	price.SetFloat(0, 10)
	price.SetFloat(1, 20)
	price.SetFloat(2, 40)
	f.SetColumn(price)

	m := 10.0
	out := TargetEncode(f, m)

	c := out.Column("brand__te_final_price")
	if c == nil {
		t.Fatal("brand__te_final_price not created")
	}
	gmean := 70.0 / 3.0
	wantA := (2*15.0 + m*gmean) / (2 + m)
	wantB := (1*40.0 + m*gmean) / (1 + m)
	if v, _ := c.FloatAt(0); math.Abs(v-wantA) > 1e-12 {
		t.Errorf("te[A] = %v, want %v", v, wantA)
	}
	if v, _ := c.FloatAt(2); math.Abs(v-wantB) > 1e-12 {
		t.Errorf("te[B] = %v, want %v", v, wantB)
	}
}

func TestTargetEncodeWithoutTargetIsNoop(t *testing.T) {
	f := frame.New(2)
	f.SetColumn(stringColumn("brand", []*string{sp("A"), sp("B")}))

	out := TargetEncode(f, 10)

	for _, name := range out.Names() {
		if name != "brand" {
			t.Errorf("unexpected column %q added without a target", name)
		}
	}
}

func TestTargetEncodeNullCategoryStaysNull(t *testing.T) {
	f := frame.New(2)
	f.SetColumn(stringColumn("brand", []*string{nil, sp("A")}))
	price := frame.NewColumn("final_price", frame.Float, 2)
	price.SetFloat(0, 5)
	price.SetFloat(1, 15)
	f.SetColumn(price)

	out := TargetEncode(f, 10)
	c := out.Column("brand__te_final_price")
	if !c.IsNull(0) {
		t.Error("null brand row should stay null in the encoding")
	}
	if c.IsNull(1) {
		t.Error("observed brand row should be encoded")
	}
}

func TestTargetEncodeBoolTarget(t *testing.T) {
	f := frame.New(4)
	f.SetColumn(stringColumn("category_path", []*string{sp("x"), sp("x"), sp("y"), sp("y")}))
	sold := frame.NewColumn("sold", frame.Bool, 4)
	sold.SetBool(0, true)
	sold.SetBool(1, false)
	sold.SetBool(2, true)
	sold.SetBool(3, true)
	f.SetColumn(sold)

	m := 2.0
	out := TargetEncode(f, m)
	c := out.Column("category_path__te_sold")
	if c == nil {
		t.Fatal("category_path__te_sold not created")
	}
	gmean := 0.75
	wantX := (2*0.5 + m*gmean) / (2 + m)
	if v, _ := c.FloatAt(0); math.Abs(v-wantX) > 1e-12 {
		t.Errorf("te[x] = %v, want %v", v, wantX)
	}
}
