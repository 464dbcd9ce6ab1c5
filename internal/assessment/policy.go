package assessment

import (
	"math"

	"github.com/abhisek/skillmap/internal/irt"
)

// DifficultyBand maps readiness in [0,1] to a base difficulty in [1,4]
// and the band around it. Lower readiness gives an easier band.
func DifficultyBand(readiness float64) (float64, Band) {
	readiness = math.Max(0, math.Min(1, readiness))
	base := 1 + (1-readiness)*3
	return base, Band{Min: math.Max(1, base-0.5), Max: math.Min(5, base+1.5)}
}

// ScoreFromPercentage maps percentage correct onto 1-5 using half-open
// bands of 20 points; 100 falls in the top band.
func ScoreFromPercentage(pct float64) float64 {
	switch {
	case pct < 20:
		return 1
	case pct < 40:
		return 2
	case pct < 60:
		return 3
	case pct < 80:
		return 4
	default:
		return 5
	}
}

// Reconcile combines the raw score with the IRT level: the higher of the
// two at 80% or more, their mean from 60% to 80%, and the IRT level below.
func Reconcile(pct, score, irtLevel float64) float64 {
	var v float64
	switch {
	case pct >= 80:
		v = math.Max(score, irtLevel)
	case pct >= 60:
		v = (score + irtLevel) / 2
	default:
		v = irtLevel
	}
	return math.Max(0, math.Min(irt.MaxLevel, v))
}

func estimatedMinutes(n int) int {
	return int(math.Round(float64(n) * MinutesPerQuestion))
}
