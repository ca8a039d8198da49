package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestGradientBoostedRegressorFitsStepFunction(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{5, 5, 5, 50, 50, 50}

	m := NewGradientBoostedRegressor(BoostingParams{Estimators: 50, LearningRate: 0.3, MaxDepth: 2})
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred := m.Predict(X)
	for i := range y {
		if math.Abs(pred[i]-y[i]) > 2 {
			t.Errorf("pred[%d] = %v, want close to %v", i, pred[i], y[i])
		}
	}
}

func TestGradientBoostedRegressorDeterministic(t *testing.T) {
	X := [][]float64{{1, 5}, {2, 4}, {3, 3}, {4, 2}, {5, 1}}
	y := []float64{1, 4, 9, 16, 25}
	p := BoostingParams{Estimators: 20, LearningRate: 0.2, MaxDepth: 3}

	a := NewGradientBoostedRegressor(p)
	b := NewGradientBoostedRegressor(p)
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pa, pb := a.Predict(X), b.Predict(X)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("pred[%d] differs across identical fits: %v vs %v", i, pa[i], pb[i])
		}
	}
}

func TestGradientBoostedRegressorTinyTrainingSet(t *testing.T) {
	m := NewGradientBoostedRegressor(BoostingParams{})
	if err := m.Fit([][]float64{{1}}, []float64{1}); err == nil {
		t.Error("expected error for a single training row")
	}
	if err := m.Fit(nil, nil); err == nil {
		t.Error("expected error for an empty training set")
	}
}

func TestGradientBoostedClassifierSeparableData(t *testing.T) {
	X := [][]float64{{-2}, {-1}, {-0.5}, {0.5}, {1}, {2}}
	y := []float64{0, 0, 0, 1, 1, 1}

	m := NewGradientBoostedClassifier(BoostingParams{Estimators: 30, LearningRate: 0.3, MaxDepth: 2})
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	proba := m.PredictProba(X)
	for i := range y {
		if y[i] == 1 && proba[i] <= 0.5 {
			t.Errorf("positive row %d probability = %v", i, proba[i])
		}
		if y[i] == 0 && proba[i] >= 0.5 {
			t.Errorf("negative row %d probability = %v", i, proba[i])
		}
	}
	labels := m.Predict(X, 0.5)
	for i := range y {
		if labels[i] != y[i] {
			t.Errorf("label[%d] = %v, want %v", i, labels[i], y[i])
		}
	}
}

func TestGradientBoostedClassifierOneClass(t *testing.T) {
	m := NewGradientBoostedClassifier(BoostingParams{})
	if err := m.Fit([][]float64{{1}, {2}}, []float64{1, 1}); err == nil {
		t.Error("expected error when all rows share one class")
	}
}

func TestBoostingParamsDefaults(t *testing.T) {
	m := NewGradientBoostedRegressor(BoostingParams{})
	if m.Params.Estimators != 100 || m.Params.LearningRate != 0.1 || m.Params.MaxDepth != 3 {
		t.Errorf("defaults = %+v", m.Params)
	}
}

func TestGradientBoostedRegressorArtifactRoundTrip(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{2, 4, 6, 8}

	m := NewGradientBoostedRegressor(BoostingParams{Estimators: 10})
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	loaded := &GradientBoostedRegressor{}
	if err := json.Unmarshal(raw, loaded); err != nil {
		t.Fatal(err)
	}
	a, b := m.Predict(X), loaded.Predict(X)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("pred[%d]: loaded %v, original %v", i, b[i], a[i])
		}
	}
}
