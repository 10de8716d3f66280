package mastery

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const learningRate = 0.5

// logisticModel is an L2-regularized binary logistic regression trained by
// full-batch gradient descent on standardized features.
type logisticModel struct {
	weights []float64
	bias    float64
	mean    []float64
	scale   []float64

	// constant is set when the training labels contain a single class.
	constant *float64
}

// fitLogistic trains on X (rows of equal width) and binary labels y.
// c is the inverse regularization strength.
func fitLogistic(X [][]float64, y []int, maxIter int, c float64) *logisticModel {
	n := len(X)
	positives := 0
	for _, label := range y {
		positives += label
	}
	if positives == 0 || positives == n {
		p := float64(positives) / float64(n)
		return &logisticModel{constant: &p}
	}

	width := len(X[0])
	m := &logisticModel{
		weights: make([]float64, width),
		mean:    make([]float64, width),
		scale:   make([]float64, width),
	}

	col := make([]float64, n)
	for j := 0; j < width; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mu, sd := stat.PopMeanStdDev(col, nil)
		m.mean[j] = mu
		if sd == 0 {
			sd = 1
		}
		m.scale[j] = sd
	}

	Z := make([][]float64, n)
	for i := range X {
		Z[i] = m.standardize(X[i])
	}

	grad := make([]float64, width)
	for iter := 0; iter < maxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, z := range Z {
			residual := sigmoid(floats.Dot(m.weights, z)+m.bias) - float64(y[i])
			floats.AddScaled(grad, residual, z)
			gradBias += residual
		}
		for j := range grad {
			grad[j] = grad[j]/float64(n) + m.weights[j]/(c*float64(n))
		}
		floats.AddScaled(m.weights, -learningRate, grad)
		m.bias -= learningRate * gradBias / float64(n)
	}

	return m
}

func (m *logisticModel) standardize(x []float64) []float64 {
	z := make([]float64, len(x))
	for j, v := range x {
		z[j] = (v - m.mean[j]) / m.scale[j]
	}
	return z
}

// probability returns P(label = 1 | x).
func (m *logisticModel) probability(x []float64) float64 {
	if m.constant != nil {
		return *m.constant
	}
	return sigmoid(floats.Dot(m.weights, m.standardize(x)) + m.bias)
}

func (m *logisticModel) predict(x []float64) int {
	if m.probability(x) >= 0.5 {
		return 1
	}
	return 0
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// imputeColumnMeans replaces NaN cells with the mean of the column's other
// values, or 0 when the whole column is missing.
func imputeColumnMeans(X [][]float64) {
	if len(X) == 0 {
		return
	}
	for j := range X[0] {
		sum, count := 0.0, 0
		for i := range X {
			if !math.IsNaN(X[i][j]) {
				sum += X[i][j]
				count++
			}
		}
		fill := 0.0
		if count > 0 {
			fill = sum / float64(count)
		}
		for i := range X {
			if math.IsNaN(X[i][j]) {
				X[i][j] = fill
			}
		}
	}
}
