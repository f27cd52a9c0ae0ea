package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/BarNest/internal/model"
)

// BoundaryCase identifies which two part ends meet at a shared saw cut.
type BoundaryCase int

const (
	StartEnd   BoundaryCase = iota // first part's start against second part's end
	EndStart                       // first part's end against second part's start
	EndEnd                         // both end cuts; one part conceptually flipped
	StartStart                     // both start cuts; requires opposite angle signs
)

func (b BoundaryCase) String() string {
	switch b {
	case StartEnd:
		return "start_end"
	case EndStart:
		return "end_start"
	case EndEnd:
		return "end_end"
	case StartStart:
		return "start_start"
	default:
		return "unknown"
	}
}

// boundaryCases is the evaluation order when probing two parts for a match.
var boundaryCases = []BoundaryCase{StartEnd, EndStart, EndEnd, StartStart}

const (
	// pairAngleToleranceDeg is the maximum difference between the two cut
	// angle magnitudes for the cuts to nest against each other.
	pairAngleToleranceDeg = 5.0
	// pairMinAngleDeg filters out near-zero angles that carry no real slope.
	pairMinAngleDeg = 1.0
	// maxSharedFraction caps the shared cut at 90% of the shorter part, so an
	// extreme angle on a short part cannot swallow the part entirely.
	maxSharedFraction = 0.9
	// negativeSharedFraction is the fallback cap applied when the raw
	// geometric overlap would drive the combined length negative.
	negativeSharedFraction = 0.5
)

// PairMatch describes two parts whose sloped ends share a saw cut.
type PairMatch struct {
	First          model.Part
	Second         model.Part
	Case           BoundaryCase
	AngleDeg       float64 // cut angle magnitude used for the overlap geometry
	SharedMM       float64 // bar length saved by sharing the sloped cut
	CombinedLength float64 // First + Second - SharedMM
	StockLength    float64 // longest available stock accommodating the pair
}

// Matcher finds complementary slope pairs among bar parts.
type Matcher struct {
	stockLengths []float64 // descending
	toleranceMM  float64
}

// NewMatcher creates a Matcher for the given settings. Stock lengths are
// scanned longest-first when searching a home for a pair.
func NewMatcher(settings model.NestSettings) *Matcher {
	lengths := append([]float64(nil), settings.StockLengths...)
	sort.Sort(sort.Reverse(sort.Float64Slice(lengths)))
	return &Matcher{
		stockLengths: lengths,
		toleranceMM:  settings.ToleranceMM,
	}
}

// caseCuts returns the two cut ends that would meet for the given case.
func caseCuts(p1, p2 model.Part, bc BoundaryCase) (*model.CutEnd, *model.CutEnd) {
	switch bc {
	case StartEnd:
		return p1.StartCut, p2.EndCut
	case EndStart:
		return p1.EndCut, p2.StartCut
	case EndEnd:
		return p1.EndCut, p2.EndCut
	default:
		return p1.StartCut, p2.StartCut
	}
}

// anglesMatch reports whether two sloped cuts can nest against each other.
// The magnitudes must agree within tolerance; only the start/start case
// demands opposite signs, since in the other cases a part can be flipped on
// the bar without changing its cut list.
func anglesMatch(c1, c2 *model.CutEnd, bc BoundaryCase) bool {
	a1, a2 := c1.AngleDeg, c2.AngleDeg
	if math.Abs(math.Abs(a1)-math.Abs(a2)) >= pairAngleToleranceDeg {
		return false
	}
	if math.Abs(a1) <= pairMinAngleDeg {
		return false
	}
	if bc == StartStart && a1*a2 >= 0 {
		return false
	}
	return true
}

// Match probes two parts for a complementary slope pair. Both parts need at
// least one sloped end. On a geometric match the pair still needs a stock bar
// long enough for the combined length; when no stock accommodates it the pair
// is not an error, just unusable for now, and Match reports no match.
func (m *Matcher) Match(p1, p2 model.Part) (PairMatch, bool) {
	if !HasAnySlope(p1) || !HasAnySlope(p2) {
		return PairMatch{}, false
	}

	for _, bc := range boundaryCases {
		c1, c2 := caseCuts(p1, p2, bc)
		if !HasSlope(c1) || !HasSlope(c2) {
			continue
		}
		if !anglesMatch(c1, c2, bc) {
			continue
		}

		shared, combined := m.sharedLength(p1, p2, c1.AngleDeg)
		stock, ok := m.stockFor(combined)
		if !ok {
			return PairMatch{}, false
		}
		return PairMatch{
			First:          p1,
			Second:         p2,
			Case:           bc,
			AngleDeg:       math.Abs(c1.AngleDeg),
			SharedMM:       shared,
			CombinedLength: combined,
			StockLength:    stock,
		}, true
	}
	return PairMatch{}, false
}

// sharedLength computes the bar length saved by nesting two sloped cuts.
// The overlap along the bar axis is depth x tan(angle), where depth is the
// profile's nominal cross-section depth.
func (m *Matcher) sharedLength(p1, p2 model.Part, angleDeg float64) (shared, combined float64) {
	shorter := math.Min(p1.LengthMM, p2.LengthMM)
	angleRad := math.Abs(angleDeg) * (math.Pi / 180.0)
	if angleRad <= 0.01 {
		return 0, p1.LengthMM + p2.LengthMM
	}

	depth := model.ProfileDepth(p1.ProfileName)
	shared = depth * math.Tan(angleRad)
	if shared > shorter*maxSharedFraction {
		shared = shorter * maxSharedFraction
	}

	combined = p1.LengthMM + p2.LengthMM - shared
	if combined < 0 {
		shared = shorter * negativeSharedFraction
		combined = p1.LengthMM + p2.LengthMM - shared
	}
	return shared, combined
}

// stockFor returns the longest stock length that accommodates the combined
// pair length, preferring fewer, larger bars.
func (m *Matcher) stockFor(combined float64) (float64, bool) {
	for _, stock := range m.stockLengths {
		if combined <= stock+m.toleranceMM {
			return stock, true
		}
	}
	return 0, false
}

// CanShareBoundary reports whether a part boundary needs no kerf: either both
// meeting cuts are straight (one through-cut separates them), or both are
// sloped with nesting angles.
func CanShareBoundary(prevEnd, curStart *model.CutEnd) bool {
	prevSloped := HasSlope(prevEnd)
	curSloped := HasSlope(curStart)
	switch {
	case !prevSloped && !curSloped:
		return true
	case prevSloped && curSloped:
		return math.Abs(math.Abs(prevEnd.AngleDeg)-math.Abs(curStart.AngleDeg)) < pairAngleToleranceDeg &&
			math.Abs(prevEnd.AngleDeg) > pairMinAngleDeg
	default:
		return false
	}
}
