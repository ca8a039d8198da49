package model

import (
	"math"
	"sort"
)

// RegressionMetrics computes MAE, RMSE, R² and MAPE for a validation
// split. The MAPE denominator is floored at 1e-8 so near-zero targets
// cannot divide by zero. R² degrades to NaN for a constant target.
func RegressionMetrics(yTrue, yPred []float64) map[string]float64 {
	n := float64(len(yTrue))
	var mae, mse, mape, sum float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		mae += math.Abs(d)
		mse += d * d
		denom := math.Max(math.Abs(yTrue[i]), 1e-8)
		mape += math.Abs(d / denom)
		sum += yTrue[i]
	}
	mae /= n
	mse /= n
	mape = mape / n * 100.0

	mean := sum / n
	var ssTot float64
	for _, v := range yTrue {
		ssTot += (v - mean) * (v - mean)
	}
	r2 := math.NaN()
	if ssTot > 0 {
		r2 = 1.0 - mse*n/ssTot
	}

	return map[string]float64{
		"mae":  mae,
		"rmse": math.Sqrt(mse),
		"r2":   r2,
		"mape": mape,
	}
}

// ClassificationMetrics computes accuracy at the given threshold plus
// ROC-AUC and average precision from probabilities. Both AUC-family
// metrics degrade to NaN (never panic) when the validation split holds a
// single class.
func ClassificationMetrics(yTrue, yProb []float64, threshold float64) map[string]float64 {
	var correct int
	for i := range yTrue {
		pred := 0.0
		if yProb[i] >= threshold {
			pred = 1.0
		}
		if (yTrue[i] >= 0.5) == (pred == 1.0) {
			correct++
		}
	}
	return map[string]float64{
		"accuracy":      float64(correct) / float64(len(yTrue)),
		"roc_auc":       rocAUC(yTrue, yProb),
		"avg_precision": averagePrecision(yTrue, yProb),
	}
}

// rocAUC is the Mann-Whitney statistic: the probability a random
// positive scores above a random negative, with ties counting half.
func rocAUC(yTrue, yProb []float64) float64 {
	idx := make([]int, len(yProb))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return yProb[idx[a]] < yProb[idx[b]] })

	// Average ranks over tied scores.
	ranks := make([]float64, len(idx))
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && yProb[idx[j]] == yProb[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2.0 // 1-based average rank
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var nPos, nNeg, rankSum float64
	for i := range yTrue {
		if yTrue[i] >= 0.5 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return math.NaN()
	}
	return (rankSum - nPos*(nPos+1)/2.0) / (nPos * nNeg)
}

// averagePrecision is the precision averaged over recall steps when
// ranking by descending probability.
func averagePrecision(yTrue, yProb []float64) float64 {
	var nPos int
	for _, v := range yTrue {
		if v >= 0.5 {
			nPos++
		}
	}
	if nPos == 0 || nPos == len(yTrue) {
		return math.NaN()
	}

	idx := make([]int, len(yProb))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if yProb[idx[a]] != yProb[idx[b]] {
			return yProb[idx[a]] > yProb[idx[b]]
		}
		return idx[a] < idx[b]
	})

	var tp int
	var sum float64
	for k, i := range idx {
		if yTrue[i] >= 0.5 {
			tp++
			sum += float64(tp) / float64(k+1)
		}
	}
	return sum / float64(nPos)
}
