// Package model provides the baseline estimators and evaluation metrics
// used by the training harness. Everything is deterministic: fits with
// the same data and seed produce identical artifacts.
package model

import (
	"errors"
	"fmt"
	"math"
)

// LinearRegression is an ordinary least squares baseline solved in
// closed form via the normal equations, with a tiny ridge term on the
// diagonal to keep near-collinear feature sets solvable.
type LinearRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit estimates coefficients from rows of features and targets.
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("linear regression: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("linear regression: %d rows vs %d targets", len(X), len(y))
	}
	d := len(X[0]) + 1 // leading intercept column

	// Normal equations: (A'A + ridge*I) w = A'y
	ata := make([][]float64, d)
	for i := range ata {
		ata[i] = make([]float64, d)
	}
	aty := make([]float64, d)

	row := make([]float64, d)
	for i, x := range X {
		if len(x) != d-1 {
			return fmt.Errorf("linear regression: row %d has %d features, want %d", i, len(x), d-1)
		}
		row[0] = 1
		copy(row[1:], x)
		for j := 0; j < d; j++ {
			aty[j] += row[j] * y[i]
			for k := j; k < d; k++ {
				ata[j][k] += row[j] * row[k]
			}
		}
	}
	for j := 0; j < d; j++ {
		for k := 0; k < j; k++ {
			ata[j][k] = ata[k][j]
		}
		ata[j][j] += 1e-8
	}

	w, err := solve(ata, aty)
	if err != nil {
		return fmt.Errorf("linear regression: %w", err)
	}
	m.Intercept = w[0]
	m.Coef = w[1:]
	return nil
}

// Predict returns predictions for rows in X.
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		sum := m.Intercept
		for j, v := range x {
			if j < len(m.Coef) {
				sum += m.Coef[j] * v
			}
		}
		out[i] = sum
	}
	return out
}

// solve performs Gaussian elimination with partial pivoting on a copy of
// the inputs.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	m := make([][]float64, n)
	for i := range a {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, errors.New("singular design matrix")
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, nil
}
