package engine

import (
	"math"

	"github.com/piwi3910/BarNest/internal/model"
)

// SlopeClass is the classification of a bar end cut.
type SlopeClass int

const (
	Straight SlopeClass = iota
	Sloped
)

func (s SlopeClass) String() string {
	if s == Sloped {
		return "sloped"
	}
	return "straight"
}

const (
	// slopeMinDeviationDeg is the minimum deviation from a straight cut for an
	// end to count as sloped. Smaller deviations are saw tolerance noise.
	slopeMinDeviationDeg = 5.0
	// slopeMinConfidence is the minimum upstream measurement confidence
	// required before a slope claim is trusted for kerf sharing.
	slopeMinConfidence = 0.5
)

// DeviationFromStraight returns how far an end-cut angle deviates from a
// straight (perpendicular) cut, auto-detecting the angle convention: angles
// with |angle| in [60°,120°] are absolute (90° = straight), anything else is
// already a deviation (0° = straight).
func DeviationFromStraight(angleDeg float64) float64 {
	abs := math.Abs(angleDeg)
	if abs >= 60 && abs <= 120 {
		return math.Abs(angleDeg - 90.0)
	}
	return abs
}

// Classify decides whether an end cut is sloped or effectively straight.
// A nil cut is straight: with no measured angle there is no kerf-sharing
// claim to make.
func Classify(cut *model.CutEnd) SlopeClass {
	if cut == nil {
		return Straight
	}
	if DeviationFromStraight(cut.AngleDeg) > slopeMinDeviationDeg && cut.Confidence > slopeMinConfidence {
		return Sloped
	}
	return Straight
}

// HasSlope reports whether the cut classifies as sloped.
func HasSlope(cut *model.CutEnd) bool {
	return Classify(cut) == Sloped
}

// HasAnySlope reports whether either end of the part classifies as sloped.
func HasAnySlope(p model.Part) bool {
	return HasSlope(p.StartCut) || HasSlope(p.EndCut)
}
