package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/BarNest/internal/model"
)

func TestDeviationFromStraight_AbsoluteConvention(t *testing.T) {
	// Angles between 60 and 120 degrees are absolute: 90 means straight.
	assert.InDelta(t, 0.0, DeviationFromStraight(90), 1e-9)
	assert.InDelta(t, 45.0, DeviationFromStraight(45), 1e-9, "45 is below 60, deviation convention")
	assert.InDelta(t, 28.28, DeviationFromStraight(61.72), 0.01)
	assert.InDelta(t, 30.0, DeviationFromStraight(120), 1e-9)
}

func TestDeviationFromStraight_DeviationConvention(t *testing.T) {
	// Angles outside [60,120] are already deviations: 0 means straight.
	assert.InDelta(t, 0.0, DeviationFromStraight(0), 1e-9)
	assert.InDelta(t, 3.0, DeviationFromStraight(3), 1e-9)
	assert.InDelta(t, 45.0, DeviationFromStraight(-45), 1e-9)
	assert.InDelta(t, 130.0, DeviationFromStraight(130), 1e-9)
}

func TestClassify_NilIsStraight(t *testing.T) {
	assert.Equal(t, Straight, Classify(nil))
}

func TestClassify_SlopeNeedsDeviationAndConfidence(t *testing.T) {
	// Clear slope with high confidence
	assert.Equal(t, Sloped, Classify(&model.CutEnd{AngleDeg: 45, Confidence: 0.9}))

	// Same angle but confidence too low to trust
	assert.Equal(t, Straight, Classify(&model.CutEnd{AngleDeg: 45, Confidence: 0.5}))

	// High confidence but deviation within saw tolerance
	assert.Equal(t, Straight, Classify(&model.CutEnd{AngleDeg: 4, Confidence: 0.95}))

	// Absolute convention: 90 degrees is a straight cut however confident
	assert.Equal(t, Straight, Classify(&model.CutEnd{AngleDeg: 90, Confidence: 1.0}))

	// Absolute convention: 62 degrees is 28 off straight
	assert.Equal(t, Sloped, Classify(&model.CutEnd{AngleDeg: 62, Confidence: 0.8}))
}

func TestHasAnySlope(t *testing.T) {
	plain := model.NewPart("B-1", "IPE200", 4000)
	assert.False(t, HasAnySlope(plain))

	mitred := model.NewPart("B-2", "IPE200", 4000)
	mitred.EndCut = &model.CutEnd{AngleDeg: 30, Confidence: 0.8}
	assert.True(t, HasAnySlope(mitred))
}
