package pathplan

import "math"

// MinViableMinutes is the shortest truncated item the budget will accept.
const MinViableMinutes = 15

// EstimateDuration derives study minutes from a module's shape. Words are
// approximated as chars/5 and read at 150 words per minute; exercises,
// check items and a comprehension buffer scale with the target level.
func EstimateDuration(contentChars, exercises, checkItems, targetLevel int) float64 {
	l := float64(targetLevel)
	reading := float64(contentChars) / 5 / 150
	exercise := float64(exercises) * (5 + 2.5*l)
	check := float64(checkItems) * (3 + 0.8*l)
	buffer := reading * (0.2 + 0.1*l)
	return clampDuration(reading+exercise+check+buffer, targetLevel)
}

// fallbackDuration is used for modules that carry neither a duration nor
// content.
func fallbackDuration(targetLevel int, gap float64) float64 {
	l := float64(targetLevel)
	return clampDuration((20+10*l)*(1+0.2*gap), targetLevel)
}

func clampDuration(d float64, targetLevel int) float64 {
	l := float64(targetLevel)
	return math.Max(15+10*l, math.Min(45+30*l, d))
}
