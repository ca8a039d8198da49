package model

import (
	"math"
	"math/rand"
)

// TrainValSplit shuffles rows with the given seed and carves off
// ceil(testSize*n) validation rows. Datasets with fewer than two rows
// are returned whole as both train and validation so callers never see
// an empty fit set.
func TrainValSplit(X [][]float64, y []float64, testSize float64, seed int64) (XTr, XVa [][]float64, yTr, yVa []float64) {
	n := len(X)
	if n < 2 {
		return X, X, y, y
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	nVal := int(math.Ceil(testSize * float64(n)))
	if nVal >= n {
		nVal = n - 1
	}
	for i, p := range perm {
		if i < nVal {
			XVa = append(XVa, X[p])
			yVa = append(yVa, y[p])
		} else {
			XTr = append(XTr, X[p])
			yTr = append(yTr, y[p])
		}
	}
	return
}

// StratifiedSplit splits per class so the validation share of each class
// mirrors testSize. Classes with a single row stay in the training set.
func StratifiedSplit(X [][]float64, y []float64, testSize float64, seed int64) (XTr, XVa [][]float64, yTr, yVa []float64) {
	n := len(X)
	if n < 2 {
		return X, X, y, y
	}
	rng := rand.New(rand.NewSource(seed))

	byClass := make(map[float64][]int)
	var order []float64
	for i, v := range y {
		if _, ok := byClass[v]; !ok {
			order = append(order, v)
		}
		byClass[v] = append(byClass[v], i)
	}

	for _, class := range order {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nVal := int(math.Round(testSize * float64(len(idx))))
		if len(idx) < 2 {
			nVal = 0
		} else if nVal == 0 {
			nVal = 1
		} else if nVal >= len(idx) {
			nVal = len(idx) - 1
		}
		for i, p := range idx {
			if i < nVal {
				XVa = append(XVa, X[p])
				yVa = append(yVa, y[p])
			} else {
				XTr = append(XTr, X[p])
				yTr = append(yTr, y[p])
			}
		}
	}
	return
}

// DistinctClasses counts the unique values of a 0/1 target.
func DistinctClasses(y []float64) int {
	seen := make(map[float64]struct{}, 2)
	for _, v := range y {
		seen[v] = struct{}{}
	}
	return len(seen)
}
