// Package train fits the baseline models on a built training table and
// persists everything inference needs: model artifacts, the ordered
// column manifest per target, and a metrics report.
package train

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"priceflow/config"
	"priceflow/internal/frame"
	"priceflow/logger"
	"priceflow/model"
	"priceflow/writer"
)

// Artifact file names. The column manifests are the hinge that lets
// inference-time alignment reproduce the exact matrix a model was
// trained on.
const (
	RegColumnsFile = "reg_feature_columns.json"
	RegLinearFile  = "reg_linear.json"
	RegBoostedFile = "reg_gbrt.json"
	RegMetricsFile = "reg_metrics.json"

	ClfColumnsFile = "clf_feature_columns.json"
	ClfLogitFile   = "clf_logit.json"
	ClfBoostedFile = "clf_gbrt.json"
	ClfMetricsFile = "clf_metrics.json"
)

const (
	skipTinyTrain = "skipped: training set < 2 rows"
	skipOneClass  = "skipped: one class"
)

// MetricValue marshals NaN and infinities as null so degenerate
// AUC-family metrics survive the trip through encoding/json.
type MetricValue float64

func (v MetricValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%g", f)), nil
}

// ModelReport is either a metric map or a structured skip status, so
// downstream reporting never special-cases a missing artifact.
type ModelReport struct {
	Skipped string
	Metrics map[string]float64
}

func (r ModelReport) MarshalJSON() ([]byte, error) {
	if r.Skipped != "" {
		return []byte(fmt.Sprintf("%q", r.Skipped)), nil
	}
	out := make(map[string]MetricValue, len(r.Metrics))
	for k, v := range r.Metrics {
		out[k] = MetricValue(v)
	}
	raw := []byte("{")
	first := true
	// Deterministic key order keeps the artifact diffable.
	for _, k := range []string{"mae", "rmse", "r2", "mape", "accuracy", "roc_auc", "avg_precision"} {
		v, ok := out[k]
		if !ok {
			continue
		}
		b, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if !first {
			raw = append(raw, ',')
		}
		raw = append(raw, fmt.Sprintf("%q:", k)...)
		raw = append(raw, b...)
		first = false
	}
	return append(raw, '}'), nil
}

// Result summarizes one training run over a single target.
type Result struct {
	RunID   string
	Target  string
	Columns []string
	Reports map[string]ModelReport
}

// Harness trains the baselines against the feature pipeline's output.
type Harness struct {
	cfg   *config.Config
	store *writer.Artifacts
	log   *logger.Log
}

func NewHarness(cfg *config.Config) *Harness {
	return &Harness{
		cfg:   cfg,
		store: writer.NewArtifacts(cfg.Storage.ArtifactsDir),
		log:   logger.GetLogger(),
	}
}

func (h *Harness) Store() *writer.Artifacts { return h.store }

// featureTargetSplit projects the training table into a matrix of every
// model column except the target, plus the target vector.
func featureTargetSplit(f *frame.Frame, target string) ([]string, [][]float64, []float64, error) {
	var names []string
	for _, name := range f.ModelColumns() {
		if name != target {
			names = append(names, name)
		}
	}
	X, err := f.Matrix(names)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := f.Numbers(target)
	if err != nil {
		return nil, nil, nil, err
	}
	return names, X, y, nil
}

// TrainRegression fits the price models: the linear baseline always,
// the boosted baseline when the training split has at least two rows.
func (h *Harness) TrainRegression(f *frame.Frame, target string) (*Result, error) {
	log := h.log.WithComponent("train_regression")
	if !f.Has(target) {
		return nil, fmt.Errorf("target %q not in training data", target)
	}

	names, X, y, err := featureTargetSplit(f, target)
	if err != nil {
		return nil, err
	}
	if err := h.store.SaveJSON(RegColumnsFile, names); err != nil {
		return nil, err
	}

	XTr, XVa, yTr, yVa := model.TrainValSplit(X, y, h.cfg.Training.TestSize, h.cfg.Training.Seed)

	result := &Result{
		RunID:   uuid.New().String(),
		Target:  target,
		Columns: names,
		Reports: make(map[string]ModelReport),
	}

	linear := model.NewLinearRegression()
	if err := linear.Fit(XTr, yTr); err != nil {
		return nil, fmt.Errorf("fit linear baseline: %w", err)
	}
	result.Reports["linear"] = ModelReport{Metrics: model.RegressionMetrics(yVa, linear.Predict(XVa))}
	if err := h.store.SaveJSON(RegLinearFile, linear); err != nil {
		return nil, err
	}

	if len(XTr) >= 2 {
		gbrt := model.NewGradientBoostedRegressor(boostingParams(h.cfg))
		if err := gbrt.Fit(XTr, yTr); err != nil {
			return nil, fmt.Errorf("fit boosted baseline: %w", err)
		}
		result.Reports["gbrt"] = ModelReport{Metrics: model.RegressionMetrics(yVa, gbrt.Predict(XVa))}
		if err := h.store.SaveJSON(RegBoostedFile, gbrt); err != nil {
			return nil, err
		}
	} else {
		result.Reports["gbrt"] = ModelReport{Skipped: skipTinyTrain}
		log.WithFields(logger.Fields{"rows": len(XTr)}).Warn("boosted baseline skipped for tiny training set")
	}

	if err := h.store.SaveJSON(RegMetricsFile, result.Reports); err != nil {
		return nil, err
	}
	h.logResult(log, result, len(XTr), len(XVa))
	return result, nil
}

// TrainClassification fits the sale-probability models. A single-class
// dataset skips training entirely but still writes a metrics artifact
// with structured skip statuses.
func (h *Harness) TrainClassification(f *frame.Frame, target string) (*Result, error) {
	log := h.log.WithComponent("train_classification")
	if !f.Has(target) {
		return nil, fmt.Errorf("target %q not in training data", target)
	}

	names, X, y, err := featureTargetSplit(f, target)
	if err != nil {
		return nil, err
	}
	if err := h.store.SaveJSON(ClfColumnsFile, names); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:   uuid.New().String(),
		Target:  target,
		Columns: names,
		Reports: make(map[string]ModelReport),
	}

	if model.DistinctClasses(y) < 2 {
		result.Reports["logit"] = ModelReport{Skipped: skipOneClass}
		result.Reports["gbrt"] = ModelReport{Skipped: skipOneClass}
		if err := h.store.SaveJSON(ClfMetricsFile, result.Reports); err != nil {
			return nil, err
		}
		log.Warn("classification skipped: only one class present in full dataset")
		return result, nil
	}

	XTr, XVa, yTr, yVa := model.StratifiedSplit(X, y, h.cfg.Training.TestSize, h.cfg.Training.Seed)
	threshold := h.cfg.Training.Threshold

	logit := model.NewLogisticRegression()
	if err := logit.Fit(XTr, yTr); err != nil {
		return nil, fmt.Errorf("fit logit baseline: %w", err)
	}
	result.Reports["logit"] = ModelReport{Metrics: model.ClassificationMetrics(yVa, logit.PredictProba(XVa), threshold)}
	if err := h.store.SaveJSON(ClfLogitFile, logit); err != nil {
		return nil, err
	}

	if len(XTr) >= 2 && model.DistinctClasses(yTr) >= 2 {
		gbc := model.NewGradientBoostedClassifier(boostingParams(h.cfg))
		if err := gbc.Fit(XTr, yTr); err != nil {
			return nil, fmt.Errorf("fit boosted classifier: %w", err)
		}
		result.Reports["gbrt"] = ModelReport{Metrics: model.ClassificationMetrics(yVa, gbc.PredictProba(XVa), threshold)}
		if err := h.store.SaveJSON(ClfBoostedFile, gbc); err != nil {
			return nil, err
		}
	} else {
		result.Reports["gbrt"] = ModelReport{Skipped: skipTinyTrain}
		log.WithFields(logger.Fields{"rows": len(XTr)}).Warn("boosted classifier skipped for tiny training set")
	}

	if err := h.store.SaveJSON(ClfMetricsFile, result.Reports); err != nil {
		return nil, err
	}
	h.logResult(log, result, len(XTr), len(XVa))
	return result, nil
}

func boostingParams(cfg *config.Config) model.BoostingParams {
	return model.BoostingParams{
		Estimators:   cfg.Training.Boosting.Estimators,
		LearningRate: cfg.Training.Boosting.LearningRate,
		MaxDepth:     cfg.Training.Boosting.MaxDepth,
	}
}

func (h *Harness) logResult(log *logger.Entry, r *Result, nTrain, nVal int) {
	fields := logger.Fields{
		"run_id":   r.RunID,
		"target":   r.Target,
		"features": len(r.Columns),
		"train":    nTrain,
		"val":      nVal,
	}
	for name, rep := range r.Reports {
		if rep.Skipped != "" {
			fields[name] = rep.Skipped
			continue
		}
		for k, v := range rep.Metrics {
			fields[name+"_"+k] = v
		}
	}
	log.WithFields(fields).Info("training run complete")
}
