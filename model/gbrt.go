package model

import (
	"errors"
	"math"
)

// BoostingParams are the shared hyperparameters of the gradient-boosted
// baselines.
type BoostingParams struct {
	Estimators   int     `json:"estimators"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
}

func (p BoostingParams) withDefaults() BoostingParams {
	if p.Estimators == 0 {
		p.Estimators = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = 3
	}
	return p
}

// GradientBoostedRegressor boosts depth-limited regression trees on
// squared loss. No row or feature subsampling, so fits are fully
// deterministic.
type GradientBoostedRegressor struct {
	Params BoostingParams `json:"params"`
	Base   float64        `json:"base"`
	Trees  []*treeNode    `json:"trees"`
}

func NewGradientBoostedRegressor(p BoostingParams) *GradientBoostedRegressor {
	return &GradientBoostedRegressor{Params: p.withDefaults()}
}

func (m *GradientBoostedRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) < 2 {
		return errors.New("gbrt: need at least 2 training rows")
	}
	n := len(X)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var sum float64
	for _, v := range y {
		sum += v
	}
	m.Base = sum / float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.Base
	}
	residual := make([]float64, n)

	m.Trees = m.Trees[:0]
	for t := 0; t < m.Params.Estimators; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := buildTree(X, residual, idx, 0, m.Params.MaxDepth, 1, meanLeaf(residual))
		m.Trees = append(m.Trees, tree)
		for i := range pred {
			pred[i] += m.Params.LearningRate * tree.predict(X[i])
		}
	}
	return nil
}

func (m *GradientBoostedRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		sum := m.Base
		for _, tree := range m.Trees {
			sum += m.Params.LearningRate * tree.predict(x)
		}
		out[i] = sum
	}
	return out
}

// GradientBoostedClassifier boosts regression trees on the logistic
// loss: each tree fits the probability residual and leaves take a Newton
// step, the standard binomial-deviance update.
type GradientBoostedClassifier struct {
	Params BoostingParams `json:"params"`
	Base   float64        `json:"base"` // initial log-odds
	Trees  []*treeNode    `json:"trees"`
}

func NewGradientBoostedClassifier(p BoostingParams) *GradientBoostedClassifier {
	return &GradientBoostedClassifier{Params: p.withDefaults()}
}

func (m *GradientBoostedClassifier) Fit(X [][]float64, y []float64) error {
	if len(X) < 2 {
		return errors.New("gbrt: need at least 2 training rows")
	}
	pos := 0
	for _, v := range y {
		if v >= 0.5 {
			pos++
		}
	}
	if pos == 0 || pos == len(y) {
		return errors.New("gbrt: need at least 2 distinct classes")
	}

	n := len(X)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	p := float64(pos) / float64(n)
	m.Base = math.Log(p / (1 - p))

	score := make([]float64, n)
	for i := range score {
		score[i] = m.Base
	}
	residual := make([]float64, n)

	m.Trees = m.Trees[:0]
	for t := 0; t < m.Params.Estimators; t++ {
		for i := range residual {
			residual[i] = y[i] - sigmoid(score[i])
		}
		leaf := func(subset []int) float64 {
			var num, den float64
			for _, i := range subset {
				pi := sigmoid(score[i])
				num += y[i] - pi
				den += pi * (1 - pi)
			}
			if den < 1e-12 {
				return 0
			}
			return num / den
		}
		tree := buildTree(X, residual, idx, 0, m.Params.MaxDepth, 1, leaf)
		m.Trees = append(m.Trees, tree)
		for i := range score {
			score[i] += m.Params.LearningRate * tree.predict(X[i])
		}
	}
	return nil
}

func (m *GradientBoostedClassifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		sum := m.Base
		for _, tree := range m.Trees {
			sum += m.Params.LearningRate * tree.predict(x)
		}
		out[i] = sigmoid(sum)
	}
	return out
}

func (m *GradientBoostedClassifier) Predict(X [][]float64, threshold float64) []float64 {
	proba := m.PredictProba(X)
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= threshold {
			out[i] = 1
		}
	}
	return out
}
