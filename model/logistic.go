package model

import (
	"errors"
	"fmt"
	"math"
)

// LogisticRegression is a binary classifier fit with full-batch gradient
// descent. Features are standardized internally so the fixed learning
// rate behaves across monetary-scale inputs; the scaler is part of the
// persisted artifact.
type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`

	LearningRate float64 `json:"learning_rate"`
	Iterations   int     `json:"iterations"`
}

func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{LearningRate: 0.1, Iterations: 500}
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Fit trains on rows of features and 0/1 targets.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("logistic regression: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("logistic regression: %d rows vs %d targets", len(X), len(y))
	}
	n := len(X)
	d := len(X[0])

	m.Mean = make([]float64, d)
	m.Scale = make([]float64, d)
	for j := 0; j < d; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += X[i][j]
		}
		m.Mean[j] = sum / float64(n)
		var ss float64
		for i := 0; i < n; i++ {
			dev := X[i][j] - m.Mean[j]
			ss += dev * dev
		}
		m.Scale[j] = math.Sqrt(ss / float64(n))
		if m.Scale[j] == 0 {
			m.Scale[j] = 1
		}
	}

	Z := make([][]float64, n)
	for i, x := range X {
		if len(x) != d {
			return fmt.Errorf("logistic regression: row %d has %d features, want %d", i, len(x), d)
		}
		z := make([]float64, d)
		for j, v := range x {
			z[j] = (v - m.Mean[j]) / m.Scale[j]
		}
		Z[i] = z
	}

	m.Coef = make([]float64, d)
	m.Intercept = 0
	grad := make([]float64, d)

	for it := 0; it < m.Iterations; it++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradB float64
		for i, z := range Z {
			sum := m.Intercept
			for j, v := range z {
				sum += m.Coef[j] * v
			}
			diff := sigmoid(sum) - y[i]
			for j, v := range z {
				grad[j] += diff * v
			}
			gradB += diff
		}
		scale := m.LearningRate / float64(n)
		for j := range m.Coef {
			m.Coef[j] -= scale * grad[j]
		}
		m.Intercept -= scale * gradB
	}
	return nil
}

// PredictProba returns the positive-class probability for each row.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		sum := m.Intercept
		for j, v := range x {
			if j < len(m.Coef) {
				sum += m.Coef[j] * (v - m.Mean[j]) / m.Scale[j]
			}
		}
		out[i] = sigmoid(sum)
	}
	return out
}

// Predict returns 0/1 labels at the given probability threshold.
func (m *LogisticRegression) Predict(X [][]float64, threshold float64) []float64 {
	proba := m.PredictProba(X)
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= threshold {
			out[i] = 1
		}
	}
	return out
}
