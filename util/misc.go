package util

import "fmt"

func CopyIntSlice(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func CopyStringSlice(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func CopyIntGrid(g [][]int) [][]int {
	out := make([][]int, len(g))
	for i, row := range g {
		out[i] = CopyIntSlice(row)
	}
	return out
}

// MovingAverage smooths xs over a trailing window of at most size values.
func MovingAverage(xs []int, size int) []float64 {
	if size <= 0 {
		size = 1
	}
	out := make([]float64, len(xs))
	sum := 0
	for i, x := range xs {
		sum += x
		if i >= size {
			sum -= xs[i-size]
		}
		out[i] = float64(sum) / float64(MinInt(i+1, size))
	}
	return out
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ExperimentName names the run-th experiment of a comparison.
func ExperimentName(run int) string {
	return fmt.Sprintf("run-%d", run)
}
