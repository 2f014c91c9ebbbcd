// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"math"
	"testing"
)

func TestStratifiedSplit(t *testing.T) {
	labels := make([]bool, 20)
	for i := 0; i < 10; i++ {
		labels[i] = true
	}

	train, test, ok := StratifiedSplit(labels, 0.2, 42)
	if !ok {
		t.Fatal("StratifiedSplit() ok = false")
	}
	if len(test) != 4 || len(train) != 16 {
		t.Errorf("split sizes = %d/%d, want 16/4", len(train), len(test))
	}
	pos := 0
	for _, i := range test {
		if labels[i] {
			pos++
		}
	}
	if pos != 2 {
		t.Errorf("positives in test = %d, want 2", pos)
	}

	again, _, _ := StratifiedSplit(labels, 0.2, 42)
	for i := range train {
		if train[i] != again[i] {
			t.Fatal("split is not reproducible for the same seed")
		}
	}

	tests := []struct {
		name   string
		labels []bool
	}{
		{"single positive", []bool{true, false, false, false}},
		{"no negatives", []bool{true, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := StratifiedSplit(tt.labels, 0.2, 1); ok {
				t.Error("StratifiedSplit() ok = true, want false")
			}
		})
	}
}

func TestErrorMetrics(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{1, 2, 3, 6}

	if got := RMSE(yTrue, yPred); got != 1 {
		t.Errorf("RMSE() = %v, want 1", got)
	}
	if got := MAE(yTrue, yPred); got != 0.5 {
		t.Errorf("MAE() = %v, want 0.5", got)
	}
	// ssRes = 4, ssTot = 5
	if got := RSquared(yTrue, yPred); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("RSquared() = %v, want 0.2", got)
	}
	if got := RSquared([]float64{2, 2}, []float64{1, 3}); got != 0 {
		t.Errorf("RSquared(constant) = %v, want 0", got)
	}
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name   string
		labels []bool
		scores []float64
		want   float64
		ok     bool
	}{
		{"perfect", []bool{true, true, false, false}, []float64{0.9, 0.8, 0.2, 0.1}, 1, true},
		{"inverted", []bool{true, false}, []float64{0.1, 0.9}, 0, true},
		{"all tied", []bool{true, false, true, false}, []float64{1, 1, 1, 1}, 0.5, true},
		{"partial tie", []bool{true, false, false}, []float64{0.5, 0.5, 0.1}, 0.75, true},
		{"one class", []bool{true, true}, []float64{0.1, 0.2}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AUC(tt.labels, tt.scores)
			if ok != tt.ok || math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AUC() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	var X [][]float64
	var y []float64
	var labels []bool
	for i := 0; i < 30; i++ {
		x := float64(i) / 10
		engaged := i >= 15
		target := 0.0
		if engaged {
			target = x
		}
		X = append(X, []float64{x, 1 - x})
		y = append(y, target)
		labels = append(labels, engaged)
	}

	newModel := func() Regressor { return NewRidge(RidgeConfig{Lambda: 0.1}) }
	ev, err := Evaluate(context.Background(), newModel, X, y, labels, 0.2, 42)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !ev.Evaluated {
		t.Fatalf("Evaluated = false, reason %q", ev.Reason)
	}
	if ev.TrainSize+ev.TestSize != 30 || ev.TestSize != 6 {
		t.Errorf("sizes = %d/%d, want 24/6", ev.TrainSize, ev.TestSize)
	}
	if ev.AUC != 1 {
		t.Errorf("AUC = %v, want 1 for a monotone signal", ev.AUC)
	}

	skipped, err := Evaluate(context.Background(), newModel, X[:3], y[:3], []bool{true, false, false}, 0.2, 42)
	if err != nil || skipped.Evaluated || skipped.Reason == "" {
		t.Errorf("Evaluate(tiny) = %+v, %v; want skipped with reason", skipped, err)
	}
}

func TestTypeAverage(t *testing.T) {
	types := map[string]string{"a": "paper", "b": "paper", "c": "talk", "d": "paper", "e": "book"}
	observed := map[string]float64{"a": 2, "b": 4, "c": 9}
	got := TypeAverage(types, observed, []string{"d", "e"})
	if got["d"] != 3 {
		t.Errorf("paper average = %v, want 3", got["d"])
	}
	if got["e"] != 5 {
		t.Errorf("global average = %v, want 5", got["e"])
	}
}

func TestNormalizeScores(t *testing.T) {
	got := NormalizeScores(map[string]float64{"a": 2, "b": 4, "c": 3})
	if got["a"] != 0 || got["b"] != 1 || got["c"] != 0.5 {
		t.Errorf("NormalizeScores() = %v", got)
	}
	flat := NormalizeScores(map[string]float64{"a": 7, "b": 7})
	if flat["a"] != 0.5 || flat["b"] != 0.5 {
		t.Errorf("NormalizeScores(equal) = %v, want all 0.5", flat)
	}
	if got := NormalizeScores(map[string]float64{}); len(got) != 0 {
		t.Errorf("NormalizeScores(empty) = %v, want empty", got)
	}
	neg := NormalizeScores(map[string]float64{"a": -1, "b": 0, "c": 3})
	if neg["a"] != 0 || neg["b"] != 0.25 || neg["c"] != 1 {
		t.Errorf("NormalizeScores(negative) = %v, want a=0 b=0.25 c=1", neg)
	}
	if CosineSimilarity([]float64{1, 0}, []float64{0, 0}) != 0 {
		t.Error("CosineSimilarity with zero vector should be 0")
	}
}
