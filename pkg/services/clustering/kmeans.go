package clustering

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const convergenceTolerance = 1e-4

type kmeansResult struct {
	labels    []int
	centroids [][]float64
	inertia   float64
}

// kmeans runs Lloyd's algorithm from restarts k-means++ seedings and keeps
// the run with the lowest inertia.
func kmeans(X [][]float64, k, restarts, maxIter int, rng *rand.Rand) kmeansResult {
	var best kmeansResult
	best.inertia = math.Inf(1)
	for r := 0; r < restarts; r++ {
		res := lloyd(X, seedPlusPlus(X, k, rng), maxIter)
		if res.inertia < best.inertia {
			best = res
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// seedPlusPlus picks k initial centroids, each new one sampled with
// probability proportional to its squared distance from the nearest chosen.
func seedPlusPlus(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(X)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), X[rng.Intn(n)]...))

	dist := make([]float64, n)
	for i := range X {
		dist[i] = sqDist(X[i], centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(dist)
		next := rng.Intn(n)
		if total > 0 {
			target := rng.Float64() * total
			cum := 0.0
			for i, d := range dist {
				cum += d
				if cum >= target && d > 0 {
					next = i
					break
				}
			}
		}
		c := append([]float64(nil), X[next]...)
		centroids = append(centroids, c)
		for i := range X {
			if d := sqDist(X[i], c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

func lloyd(X [][]float64, centroids [][]float64, maxIter int) kmeansResult {
	n, k := len(X), len(centroids)
	width := len(X[0])
	labels := make([]int, n)

	for iter := 0; iter < maxIter; iter++ {
		assign(X, centroids, labels)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, width)
		}
		for i, row := range X {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				// Empty cluster: move it onto the point farthest from its centroid.
				far, farDist := 0, -1.0
				for i, row := range X {
					if d := sqDist(row, centroids[labels[i]]); d > farDist {
						far, farDist = i, d
					}
				}
				copy(next[c], X[far])
				labels[far] = c
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		shift := 0.0
		for c := range next {
			shift += sqDist(next[c], centroids[c])
		}
		centroids = next
		if shift <= convergenceTolerance*convergenceTolerance {
			break
		}
	}

	inertia := assign(X, centroids, labels)
	return kmeansResult{labels: labels, centroids: centroids, inertia: inertia}
}

// assign labels each row with its nearest centroid and returns the inertia.
func assign(X, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, row := range X {
		bestC, bestD := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := sqDist(row, centroid); d < bestD {
				bestC, bestD = c, d
			}
		}
		labels[i] = bestC
		inertia += bestD
	}
	return inertia
}

// silhouette returns the mean silhouette coefficient of the labelling.
// Points in singleton clusters score 0.
func silhouette(X [][]float64, labels []int) float64 {
	n := len(X)
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}

	total := 0.0
	for i := 0; i < n; i++ {
		if sizes[labels[i]] <= 1 {
			continue
		}
		sums := make(map[int]float64)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(X[i], X[j], 2)
		}
		a := sums[labels[i]] / float64(sizes[labels[i]]-1)
		b := math.Inf(1)
		for l, s := range sums {
			if l == labels[i] {
				continue
			}
			if mean := s / float64(sizes[l]); mean < b {
				b = mean
			}
		}
		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(n)
}
