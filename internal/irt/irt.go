// Package irt estimates latent skill ability with a two-parameter
// logistic item response model.
package irt

import "math"

const (
	DefaultLearningRate = 0.01
	DefaultSteps        = 15

	// DefaultAlpha is the discrimination of uncalibrated items.
	DefaultAlpha = 1.0

	thetaSpan = 6.0 // theta in [-3,3] maps onto the level scale
	MaxLevel  = 5.0
)

// Response is one graded item.
type Response struct {
	Alpha      float64
	Difficulty float64
	Correct    bool
}

// P is the probability of a correct answer at ability theta for an item
// with discrimination alpha and difficulty beta.
func P(theta, alpha, beta float64) float64 {
	return 1 / (1 + math.Exp(-alpha*(theta-beta)))
}

// Update runs a fixed number of gradient ascent steps on the response
// log-likelihood starting from theta0. lr <= 0 and steps <= 0 select the
// defaults.
func Update(theta0 float64, responses []Response, lr float64, steps int) float64 {
	if lr <= 0 {
		lr = DefaultLearningRate
	}
	if steps <= 0 {
		steps = DefaultSteps
	}
	theta := theta0
	for range steps {
		var grad float64
		for _, r := range responses {
			var y float64
			if r.Correct {
				y = 1
			}
			grad += r.Alpha * (y - P(theta, r.Alpha, r.Difficulty))
		}
		theta += lr * grad
	}
	return theta
}

// Level maps theta onto the 0-5 proficiency scale.
func Level(theta float64) float64 {
	return clamp((theta+3)/thetaSpan*MaxLevel, 0, MaxLevel)
}

// Readiness maps theta onto [0,1].
func Readiness(theta float64) float64 {
	return clamp((theta+3)/thetaSpan, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
