package features

import "priceflow/internal/frame"

// Align reshapes a feature table to exactly match an ordered column
// manifest: columns named by the manifest but absent from the table are
// added as constant 0.0, extra columns are dropped, and the output order
// follows the manifest. Aligning an already-aligned table is a no-op.
//
// Zero-fill applies uniformly to every column kind, including
// label-encoded categorical columns where 0 is a valid class index
// rather than a neutral "absent" value; a missing <col>_le therefore
// aliases to the first discovered category. Kept for compatibility with
// the persisted manifests.
func Align(f *frame.Frame, cols []string) *frame.Frame {
	out := frame.New(f.Rows())
	for _, name := range cols {
		if c := f.Column(name); c != nil {
			out.SetColumn(c)
			continue
		}
		zero := frame.NewColumn(name, frame.Float, f.Rows())
		for i := 0; i < f.Rows(); i++ {
			zero.SetFloat(i, 0.0)
		}
		out.SetColumn(zero)
	}
	return out
}
