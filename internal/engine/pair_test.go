package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BarNest/internal/model"
)

func testSettings(stocks ...float64) model.NestSettings {
	s := model.DefaultSettings()
	if len(stocks) > 0 {
		s.StockLengths = stocks
	}
	return s
}

func slopedPart(ref, profile string, length float64, start, end *model.CutEnd) model.Part {
	p := model.NewPart(ref, profile, length)
	p.StartCut = start
	p.EndCut = end
	return p
}

func TestMatch_EndStartPair(t *testing.T) {
	m := NewMatcher(testSettings(6000, 12000))

	p1 := slopedPart("B-1", "IPE400", 5000, nil, &model.CutEnd{AngleDeg: 45, Confidence: 0.9})
	p2 := slopedPart("B-2", "IPE400", 5000, &model.CutEnd{AngleDeg: -45, Confidence: 0.9}, nil)

	match, ok := m.Match(p1, p2)
	require.True(t, ok)
	assert.Equal(t, EndStart, match.Case)
	// IPE400 depth 400mm at 45 degrees shares 400mm of bar
	assert.InDelta(t, 400.0, match.SharedMM, 0.01)
	assert.InDelta(t, 9600.0, match.CombinedLength, 0.01)
	// Longest stock that accommodates the pair
	assert.Equal(t, 12000.0, match.StockLength)
}

func TestMatch_StartStartRequiresOppositeSigns(t *testing.T) {
	m := NewMatcher(testSettings(12000))

	p1 := slopedPart("B-1", "IPE300", 4000, &model.CutEnd{AngleDeg: 30, Confidence: 0.8}, nil)
	p2 := slopedPart("B-2", "IPE300", 4000, &model.CutEnd{AngleDeg: 30, Confidence: 0.8}, nil)

	_, ok := m.Match(p1, p2)
	assert.False(t, ok, "same-sign start/start cuts cannot nest")

	p2.StartCut.AngleDeg = -30
	match, ok := m.Match(p1, p2)
	require.True(t, ok)
	assert.Equal(t, StartStart, match.Case)
}

func TestMatch_EndEndAllowsSameSign(t *testing.T) {
	// A part can be flipped on the bar, so end/end pairs match on magnitude.
	m := NewMatcher(testSettings(12000))

	p1 := slopedPart("B-1", "HEA220", 3000, nil, &model.CutEnd{AngleDeg: 40, Confidence: 0.9})
	p2 := slopedPart("B-2", "HEA220", 3500, nil, &model.CutEnd{AngleDeg: 42, Confidence: 0.9})

	match, ok := m.Match(p1, p2)
	require.True(t, ok)
	assert.Equal(t, EndEnd, match.Case)
	assert.InDelta(t, 220*math.Tan(40*math.Pi/180), match.SharedMM, 0.01)
}

func TestMatch_AngleMagnitudesMustAgree(t *testing.T) {
	m := NewMatcher(testSettings(12000))

	p1 := slopedPart("B-1", "IPE300", 4000, nil, &model.CutEnd{AngleDeg: 45, Confidence: 0.9})
	p2 := slopedPart("B-2", "IPE300", 4000, &model.CutEnd{AngleDeg: -52, Confidence: 0.9}, nil)

	_, ok := m.Match(p1, p2)
	assert.False(t, ok, "7 degree difference exceeds the 5 degree pairing tolerance")
}

func TestMatch_NoStockFitsPair(t *testing.T) {
	// Scenario: the pair would need 9600mm but only 6m bars exist.
	m := NewMatcher(testSettings(6000))

	p1 := slopedPart("B-1", "IPE400", 5000, nil, &model.CutEnd{AngleDeg: 45, Confidence: 0.9})
	p2 := slopedPart("B-2", "IPE400", 5000, &model.CutEnd{AngleDeg: -45, Confidence: 0.9}, nil)

	_, ok := m.Match(p1, p2)
	assert.False(t, ok, "pair must be passed over when no stock accommodates it")
}

func TestMatch_SharedCapped(t *testing.T) {
	// A steep cut on a short part: depth*tan(80deg) far exceeds the part, so
	// the shared length caps at 90% of the shorter part.
	m := NewMatcher(testSettings(12000))

	p1 := slopedPart("B-1", "IPE600", 900, nil, &model.CutEnd{AngleDeg: 80, Confidence: 0.9})
	p2 := slopedPart("B-2", "IPE600", 2000, &model.CutEnd{AngleDeg: -80, Confidence: 0.9}, nil)

	match, ok := m.Match(p1, p2)
	require.True(t, ok)
	assert.InDelta(t, 810.0, match.SharedMM, 0.01, "capped at 90% of the 900mm part")
	assert.InDelta(t, 2090.0, match.CombinedLength, 0.01)
	assert.Greater(t, match.CombinedLength, 0.0)
}

func TestMatch_UnknownProfileUsesDefaultDepth(t *testing.T) {
	m := NewMatcher(testSettings(12000))

	p1 := slopedPart("B-1", "WEIRD-PROFILE", 5000, nil, &model.CutEnd{AngleDeg: 45, Confidence: 0.9})
	p2 := slopedPart("B-2", "WEIRD-PROFILE", 5000, &model.CutEnd{AngleDeg: -45, Confidence: 0.9}, nil)

	match, ok := m.Match(p1, p2)
	require.True(t, ok)
	assert.InDelta(t, model.DefaultProfileDepth, match.SharedMM, 0.01)
}

func TestMatch_StraightPartsNeverPair(t *testing.T) {
	m := NewMatcher(testSettings(12000))

	p1 := model.NewPart("B-1", "IPE300", 4000)
	p2 := model.NewPart("B-2", "IPE300", 4000)

	_, ok := m.Match(p1, p2)
	assert.False(t, ok)
}

func TestCanShareBoundary(t *testing.T) {
	straight := (*model.CutEnd)(nil)
	sloped45 := &model.CutEnd{AngleDeg: 45, Confidence: 0.9}
	slopedNeg45 := &model.CutEnd{AngleDeg: -45, Confidence: 0.9}
	sloped60 := &model.CutEnd{AngleDeg: 60, Confidence: 0.9}

	assert.True(t, CanShareBoundary(straight, straight), "two straight cuts share one through-cut")
	assert.True(t, CanShareBoundary(sloped45, slopedNeg45))
	assert.True(t, CanShareBoundary(sloped45, sloped45), "magnitude rule allows flipped parts")
	assert.False(t, CanShareBoundary(sloped45, straight))
	assert.False(t, CanShareBoundary(straight, sloped45))
	assert.False(t, CanShareBoundary(sloped45, sloped60), "angles too far apart")
}
