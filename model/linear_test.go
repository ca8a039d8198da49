package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestLinearRegressionExactFit(t *testing.T) {
	// y = 2x + 1, recoverable exactly by the closed-form solve.
	X := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{1, 3, 5, 7}

	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.Intercept-1) > 1e-6 {
		t.Errorf("intercept = %v, want 1", m.Intercept)
	}
	if math.Abs(m.Coef[0]-2) > 1e-6 {
		t.Errorf("coef = %v, want 2", m.Coef[0])
	}

	pred := m.Predict([][]float64{{10}})
	if math.Abs(pred[0]-21) > 1e-5 {
		t.Errorf("predict(10) = %v, want 21", pred[0])
	}
}

func TestLinearRegressionMultiFeature(t *testing.T) {
	// y = 3a - 2b + 5
	X := [][]float64{{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2}}
	y := make([]float64, len(X))
	for i, x := range X {
		y[i] = 3*x[0] - 2*x[1] + 5
	}

	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	for i, x := range X {
		if got := m.Predict([][]float64{x})[0]; math.Abs(got-y[i]) > 1e-5 {
			t.Errorf("predict(%v) = %v, want %v", x, got, y[i])
		}
	}
}

func TestLinearRegressionCollinearFeatures(t *testing.T) {
	// Second feature duplicates the first; the ridge term keeps the
	// normal equations solvable.
	X := [][]float64{{1, 1}, {2, 2}, {3, 3}}
	y := []float64{2, 4, 6}

	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if got := m.Predict([][]float64{{4, 4}})[0]; math.Abs(got-8) > 1e-3 {
		t.Errorf("predict = %v, want 8", got)
	}
}

func TestLinearRegressionErrors(t *testing.T) {
	m := NewLinearRegression()
	if err := m.Fit(nil, nil); err == nil {
		t.Error("expected error on empty training set")
	}
	if err := m.Fit([][]float64{{1}}, []float64{1, 2}); err == nil {
		t.Error("expected error on row/target mismatch")
	}
}

func TestLinearRegressionArtifactRoundTrip(t *testing.T) {
	m := NewLinearRegression()
	if err := m.Fit([][]float64{{0}, {1}, {2}}, []float64{1, 3, 5}); err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	loaded := &LinearRegression{}
	if err := json.Unmarshal(raw, loaded); err != nil {
		t.Fatal(err)
	}
	a := m.Predict([][]float64{{7}})[0]
	b := loaded.Predict([][]float64{{7}})[0]
	if a != b {
		t.Errorf("loaded artifact predicts %v, original %v", b, a)
	}
}
