package features

import (
	"fmt"

	"priceflow/internal/frame"
)

// nominalColumns is the fixed set of label-encoded fields.
var nominalColumns = []string{"brand", "model", "condition", "listing_type", "category_path"}

// targetEncodeCats and targetEncodeTargets define which category/target
// pairs receive a smoothed target encoding during training builds.
var (
	targetEncodeCats    = []string{"brand", "category_path"}
	targetEncodeTargets = []string{"final_price", "sold"}
)

// UnseenCategory is the sentinel code for null and previously unseen
// category values.
const UnseenCategory = -1

// LabelEncode assigns each distinct non-null value of the nominal
// columns an integer code in discovery order, written to <col>_le. The
// original column is retained. Nulls map to the -1 sentinel.
//
// The mappings are rebuilt on every call and returned so callers can
// persist them; without that, inference-time codes are not guaranteed to
// match training-time codes for the same value.
func LabelEncode(f *frame.Frame) (*frame.Frame, map[string]map[string]int64) {
	maps := make(map[string]map[string]int64)
	for _, name := range nominalColumns {
		c := f.Column(name)
		if c == nil || c.Kind() != frame.String {
			continue
		}
		mapping := make(map[string]int64)
		out := frame.NewColumn(name+"_le", frame.Int, f.Rows())
		for i := 0; i < f.Rows(); i++ {
			v, ok := c.StringAt(i)
			if !ok {
				out.SetInt(i, UnseenCategory)
				continue
			}
			code, seen := mapping[v]
			if !seen {
				code = int64(len(mapping))
				mapping[v] = code
			}
			out.SetInt(i, code)
		}
		f.SetColumn(out)
		maps[name] = mapping
	}
	return f, maps
}

// ApplyLabelEncoding encodes the nominal columns against previously
// built mappings; values absent from a mapping get the -1 sentinel.
func ApplyLabelEncoding(f *frame.Frame, maps map[string]map[string]int64) *frame.Frame {
	for _, name := range nominalColumns {
		c := f.Column(name)
		mapping := maps[name]
		if c == nil || c.Kind() != frame.String || mapping == nil {
			continue
		}
		out := frame.NewColumn(name+"_le", frame.Int, f.Rows())
		for i := 0; i < f.Rows(); i++ {
			code := int64(UnseenCategory)
			if v, ok := c.StringAt(i); ok {
				if mapped, seen := mapping[v]; seen {
					code = mapped
				}
			}
			out.SetInt(i, code)
		}
		f.SetColumn(out)
	}
	return f
}

// TargetEncode adds smoothed mean target encodings for the configured
// category/target pairs:
//
//	enc = (count*mean + m*global_mean) / (count + m)
//
// written to <cat>__te_<target>. It is a training-only transform; when a
// target column is absent the pair is silently skipped, so calling it on
// inference input is a no-op. Rows whose category has no observed target
// value stay null.
func TargetEncode(f *frame.Frame, smoothing float64) *frame.Frame {
	for _, cat := range targetEncodeCats {
		for _, target := range targetEncodeTargets {
			targetEncodePair(f, cat, target, smoothing)
		}
	}
	return f
}

func targetEncodePair(f *frame.Frame, cat, target string, m float64) {
	cc := f.Column(cat)
	tc := f.Column(target)
	if cc == nil || tc == nil || cc.Kind() != frame.String {
		return
	}

	n := f.Rows()
	var gsum float64
	var gcount int
	type agg struct {
		count int
		sum   float64
		seen  int
	}
	groups := make(map[string]*agg)

	for i := 0; i < n; i++ {
		v, ok := tc.NumberAt(i)
		if ok {
			gsum += v
			gcount++
		}
		cv, cok := cc.StringAt(i)
		if !cok {
			continue
		}
		g := groups[cv]
		if g == nil {
			g = &agg{}
			groups[cv] = g
		}
		g.count++
		if ok {
			g.sum += v
			g.seen++
		}
	}
	if gcount == 0 {
		return
	}
	gmean := gsum / float64(gcount)

	out := frame.NewColumn(fmt.Sprintf("%s__te_%s", cat, target), frame.Float, n)
	for i := 0; i < n; i++ {
		cv, ok := cc.StringAt(i)
		if !ok {
			continue
		}
		g := groups[cv]
		if g == nil || g.seen == 0 {
			continue
		}
		mean := g.sum / float64(g.seen)
		out.SetFloat(i, (float64(g.count)*mean+m*gmean)/(float64(g.count)+m))
	}
	f.SetColumn(out)
}
