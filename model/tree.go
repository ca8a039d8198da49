package model

import "sort"

// treeNode is one node of a depth-limited regression tree. Leaves carry
// the prediction value; internal nodes split on x[Feature] <= Threshold.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

func (t *treeNode) predict(x []float64) float64 {
	for !t.Leaf {
		if x[t.Feature] <= t.Threshold {
			t = t.Left
		} else {
			t = t.Right
		}
	}
	return t.Value
}

// leafValue computes a leaf's output; for plain regression trees it is
// the mean target, for boosted classification a Newton step supplied by
// the caller.
type leafValue func(idx []int) float64

// buildTree grows a CART-style regression tree on the index subset idx,
// splitting greedily by squared-error reduction. Candidate thresholds
// are midpoints between consecutive distinct feature values, scanned in
// feature order, so the structure is deterministic.
func buildTree(X [][]float64, target []float64, idx []int, depth, maxDepth, minLeaf int, leaf leafValue) *treeNode {
	if depth >= maxDepth || len(idx) < 2*minLeaf || constantTarget(target, idx) {
		return &treeNode{Leaf: true, Value: leaf(idx)}
	}

	bestFeature := -1
	var bestThreshold, bestScore float64
	baseScore := sumSquaredError(target, idx)

	nFeatures := len(X[idx[0]])
	order := make([]int, len(idx))
	for feat := 0; feat < nFeatures; feat++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][feat] < X[order[b]][feat] })

		// Prefix sums over the sorted order let each candidate split be
		// scored in O(1).
		var leftSum, leftSq float64
		totalSum, totalSq := sums(target, idx)
		for i := 0; i < len(order)-1; i++ {
			v := target[order[i]]
			leftSum += v
			leftSq += v * v
			if X[order[i]][feat] == X[order[i+1]][feat] {
				continue
			}
			nl := i + 1
			nr := len(order) - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			score := (leftSq - leftSum*leftSum/float64(nl)) +
				(rightSq - rightSum*rightSum/float64(nr))
			if bestFeature == -1 || score < bestScore {
				bestFeature = feat
				bestThreshold = (X[order[i]][feat] + X[order[i+1]][feat]) / 2
				bestScore = score
			}
		}
	}

	if bestFeature == -1 || bestScore >= baseScore {
		return &treeNode{Leaf: true, Value: leaf(idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Value: leaf(idx)}
	}

	return &treeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      buildTree(X, target, left, depth+1, maxDepth, minLeaf, leaf),
		Right:     buildTree(X, target, right, depth+1, maxDepth, minLeaf, leaf),
	}
}

func constantTarget(target []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if target[i] != target[idx[0]] {
			return false
		}
	}
	return true
}

func sums(target []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += target[i]
		sq += target[i] * target[i]
	}
	return
}

func sumSquaredError(target []float64, idx []int) float64 {
	sum, sq := sums(target, idx)
	return sq - sum*sum/float64(len(idx))
}

func meanLeaf(target []float64) leafValue {
	return func(idx []int) float64 {
		sum := 0.0
		for _, i := range idx {
			sum += target[i]
		}
		return sum / float64(len(idx))
	}
}
