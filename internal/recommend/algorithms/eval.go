// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Evaluation reports hold-out quality of a regressor.
type Evaluation struct {
	Evaluated bool    `json:"evaluated"`
	Reason    string  `json:"reason,omitempty"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	RMSE      float64 `json:"rmse"`
	MAE       float64 `json:"mae"`
	R2        float64 `json:"r2"`
	AUC       float64 `json:"auc"`
}

// StratifiedSplit shuffles the positive and negative indices separately and
// moves fraction of each into the test set. Each stratum keeps at least one
// index on both sides, so every stratum needs two or more members; otherwise
// ok is false.
func StratifiedSplit(labels []bool, fraction float64, seed int64) (train, test []int, ok bool) {
	var pos, neg []int
	for i, l := range labels {
		if l {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	if len(pos) < 2 || len(neg) < 2 || fraction <= 0 || fraction >= 1 {
		return nil, nil, false
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split, not security sensitive
	for _, stratum := range [][]int{pos, neg} {
		rng.Shuffle(len(stratum), func(i, j int) { stratum[i], stratum[j] = stratum[j], stratum[i] })
		nTest := int(math.Round(fraction * float64(len(stratum))))
		nTest = max(1, min(nTest, len(stratum)-1))
		test = append(test, stratum[:nTest]...)
		train = append(train, stratum[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, true
}

// RMSE returns the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var s float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(yTrue)))
}

// MAE returns the mean absolute error.
func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var s float64
	for i := range yTrue {
		s += math.Abs(yTrue[i] - yPred[i])
	}
	return s / float64(len(yTrue))
}

// RSquared returns the coefficient of determination. A constant target
// gives 0.
func RSquared(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var mean float64
	for _, y := range yTrue {
		mean += y
	}
	mean /= float64(len(yTrue))

	var ssRes, ssTot float64
	for i, y := range yTrue {
		ssRes += (y - yPred[i]) * (y - yPred[i])
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// AUC returns the area under the ROC curve of scores separating positive
// from negative labels, using average ranks for ties. ok is false when
// either class is absent.
func AUC(labels []bool, scores []float64) (auc float64, ok bool) {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg int
	var rankSum float64
	for i, l := range labels {
		if l {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, false
	}
	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), true
}

// Evaluate fits a fresh regressor on a stratified split of (X, y) and
// scores it on the held-out rows. labels mark rows with engagement.
//
//nolint:gocritic // X follows standard linear algebra notation
func Evaluate(ctx context.Context, newModel func() Regressor, X [][]float64, y []float64, labels []bool, fraction float64, seed int64) (Evaluation, error) {
	train, test, ok := StratifiedSplit(labels, fraction, seed)
	if !ok {
		return Evaluation{Reason: "fewer than 2 items in a stratum"}, nil
	}

	pick := func(idx []int) ([][]float64, []float64, []bool) {
		xs := make([][]float64, len(idx))
		ys := make([]float64, len(idx))
		ls := make([]bool, len(idx))
		for i, j := range idx {
			xs[i], ys[i], ls[i] = X[j], y[j], labels[j]
		}
		return xs, ys, ls
	}
	xTrain, yTrain, _ := pick(train)
	xTest, yTest, lTest := pick(test)

	model := newModel()
	if err := model.Fit(ctx, xTrain, yTrain); err != nil {
		return Evaluation{}, fmt.Errorf("fit on training split: %w", err)
	}
	pred, err := model.Predict(xTest)
	if err != nil {
		return Evaluation{}, fmt.Errorf("predict held-out split: %w", err)
	}

	ev := Evaluation{
		Evaluated: true,
		TrainSize: len(train),
		TestSize:  len(test),
		RMSE:      RMSE(yTest, pred),
		MAE:       MAE(yTest, pred),
		R2:        RSquared(yTest, pred),
	}
	ev.AUC, _ = AUC(lTest, pred)
	return ev, nil
}

// TypeAverage estimates each target item as the mean observed score of
// its type, or of all observed items when its type has none.
func TypeAverage(itemType map[string]string, observed map[string]float64, targets []string) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var global float64
	// Sum in sorted order so results are bit-for-bit reproducible.
	ids := make([]string, 0, len(observed))
	for id := range observed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := observed[id]
		t := itemType[id]
		sums[t] += s
		counts[t]++
		global += s
	}
	if len(observed) > 0 {
		global /= float64(len(observed))
	}

	out := make(map[string]float64, len(targets))
	for _, id := range targets {
		t := itemType[id]
		if counts[t] > 0 {
			out[id] = sums[t] / float64(counts[t])
		} else {
			out[id] = global
		}
	}
	return out
}
