package vector

import (
	"cmp"
	"slices"
)

// SquaredL2 is the squared euclidean distance between two embeddings. Vectors
// of unequal length are compared over their common prefix.
func SquaredL2(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := range n {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// RankByDistance stable-sorts results by ascending distance and truncates to
// topK. Equal distances keep the order the caller supplied, which in-process
// drivers use to preserve insertion order.
func RankByDistance(results []QueryResult, topK int) []QueryResult {
	slices.SortStableFunc(results, func(a, b QueryResult) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
