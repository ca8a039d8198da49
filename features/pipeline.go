package features

import (
	"time"

	"priceflow/config"
	"priceflow/internal/frame"
)

// BuildTraining runs the full feature chain on a listings table in the
// fixed composition order: temporal, label encoding, target encoding,
// numeric normalization, text features. Order matters: later steps
// consume columns created by earlier ones and the output column order
// must stay stable across runs.
func BuildTraining(cfg *config.Config, f *frame.Frame) *frame.Frame {
	out := Temporal(f)
	out, _ = LabelEncode(out)
	out = TargetEncode(out, cfg.Pipeline.TargetSmoothing)
	out = Numeric(out, cfg.Pipeline.WinsorLower, cfg.Pipeline.WinsorUpper)
	out = Text(out)
	return out
}

// TrainingTable projects a built feature table down to the columns a
// model can consume: Float, Int and Bool columns, which includes the
// target columns when present. Strings and timestamps are dropped so no
// non-numeric artifact reaches the model.
func TrainingTable(f *frame.Frame) *frame.Frame {
	return f.Select(f.ModelColumns())
}

// BuildInference featurizes a partial payload (one or many rows): fill
// defaults first, then run the same chain as training minus target
// encoding, then project to model columns. The result typically has a
// narrower column set than training, since target-encoded columns are
// absent; Align closes that gap against the persisted manifest.
func BuildInference(cfg *config.Config, f *frame.Frame, now time.Time) *frame.Frame {
	out := FillDefaults(f, cfg.Pipeline.Defaults, now)
	out = Temporal(out)
	out, _ = LabelEncode(out)
	out = Numeric(out, cfg.Pipeline.WinsorLower, cfg.Pipeline.WinsorUpper)
	out = Text(out)
	return out.Select(out.ModelColumns())
}
