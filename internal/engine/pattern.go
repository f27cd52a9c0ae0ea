package engine

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/piwi3910/BarNest/internal/model"
)

// PatternBuilder fills one stock bar with parts: complementary slope pairs
// first, then a greedy length-descending fill, never exceeding the stock
// length beyond the float tolerance.
type PatternBuilder struct {
	matcher     *Matcher
	kerfMM      float64
	toleranceMM float64
	log         zerolog.Logger
}

// NewPatternBuilder creates a builder for the given settings. The logger is
// observational only; results never depend on it.
func NewPatternBuilder(settings model.NestSettings, log zerolog.Logger) *PatternBuilder {
	return &PatternBuilder{
		matcher:     NewMatcher(settings),
		kerfMM:      settings.KerfMM,
		toleranceMM: settings.ToleranceMM,
		log:         log.With().Str("component", "pattern").Logger(),
	}
}

// placement tracks a placed part plus its exact material contribution, which
// differs from the part length for pair members and kerf-charged singles.
type placement struct {
	placed       model.PlacedPart
	contribution float64
	pairFirst    bool
}

// Build assembles one cutting pattern against stockLength from the remaining
// parts. Parts not consumed stay eligible for later patterns. A returned
// pattern with zero parts signals the caller to stop this profile's loop.
func (b *PatternBuilder) Build(stockLength float64, remaining []model.Part) model.CuttingPattern {
	eligible := make([]model.Part, 0, len(remaining))
	for _, p := range remaining {
		if p.LengthMM <= stockLength+b.toleranceMM {
			eligible = append(eligible, p)
		}
	}
	// Longest first; ties broken by ID so identical inputs nest identically.
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].LengthMM != eligible[j].LengthMM {
			return eligible[i].LengthMM > eligible[j].LengthMM
		}
		return eligible[i].ID < eligible[j].ID
	})

	var placements []placement
	used := 0.0
	taken := make(map[string]bool, len(eligible))

	// Pairing pass: commit complementary pairs while any fit the budget.
	for {
		match, ok := b.findPair(eligible, taken, stockLength-used)
		if !ok {
			break
		}
		firstPos := used
		secondPos := firstPos + match.First.LengthMM - match.SharedMM
		placements = append(placements,
			placement{
				placed: model.PlacedPart{
					Part:          match.First,
					CutPositionMM: firstPos,
					LengthUsedMM:  match.First.LengthMM,
				},
				contribution: match.CombinedLength,
				pairFirst:    true,
			},
			placement{
				placed: model.PlacedPart{
					Part:          match.Second,
					CutPositionMM: secondPos,
					LengthUsedMM:  match.Second.LengthMM,
					PairSecond:    true,
				},
			})
		used += match.CombinedLength
		taken[match.First.ID] = true
		taken[match.Second.ID] = true
		b.log.Debug().
			Str("case", match.Case.String()).
			Float64("shared_mm", match.SharedMM).
			Float64("combined_mm", match.CombinedLength).
			Msg("committed complementary pair")
	}

	// Fill pass: append remaining parts greedily, charging kerf whenever the
	// boundary against the previous part cannot be shared.
	for _, p := range eligible {
		if taken[p.ID] {
			continue
		}
		kerf := 0.0
		if len(placements) > 0 {
			prev := placements[len(placements)-1].placed.Part
			if !CanShareBoundary(prev.EndCut, p.StartCut) {
				kerf = b.kerfMM
			}
		}
		if used+p.LengthMM+kerf > stockLength+b.toleranceMM {
			// Bar is full; everything after this rolls over to the next bar.
			break
		}
		placements = append(placements, placement{
			placed: model.PlacedPart{
				Part:          p,
				CutPositionMM: used + kerf,
				LengthUsedMM:  p.LengthMM,
			},
			contribution: p.LengthMM + kerf,
		})
		used += p.LengthMM + kerf
		taken[p.ID] = true
	}

	validated, usedLength := b.validate(stockLength, placements)

	waste := stockLength - usedLength
	if waste < 0 {
		waste = 0
	}
	pattern := model.CuttingPattern{
		StockLength: stockLength,
		Parts:       validated,
		WasteMM:     waste,
	}
	if stockLength > 0 {
		pattern.WastePercentage = waste / stockLength * 100.0
	}
	return pattern
}

// findPair scans untaken parts for the first complementary pair whose
// combined length fits the remaining budget. Candidates are snapshotted by
// the caller's sort; the scan order is deterministic.
func (b *PatternBuilder) findPair(eligible []model.Part, taken map[string]bool, budget float64) (PairMatch, bool) {
	for i := 0; i < len(eligible); i++ {
		if taken[eligible[i].ID] || !HasAnySlope(eligible[i]) {
			continue
		}
		for j := i + 1; j < len(eligible); j++ {
			if taken[eligible[j].ID] {
				continue
			}
			match, ok := b.matcher.Match(eligible[i], eligible[j])
			if !ok {
				continue
			}
			if match.CombinedLength > budget+b.toleranceMM {
				continue
			}
			return match, true
		}
	}
	return PairMatch{}, false
}

// validate replays the assembled placements independently and recomputes the
// used length. Plain parts trust the replay: any part that would overflow the
// bar is dropped (it stays eligible for a later pattern). Complementary pairs
// trust the geometric combined length recorded at pairing time, because the
// replay's kerf heuristic cannot see shared cuts; when a pair overflows, both
// halves are reverted together.
func (b *PatternBuilder) validate(stockLength float64, placements []placement) ([]model.PlacedPart, float64) {
	var kept []model.PlacedPart
	used := 0.0

	for i := 0; i < len(placements); i++ {
		pl := placements[i]

		if pl.pairFirst {
			// Pair halves are adjacent; contribution covers both.
			if i+1 >= len(placements) || !placements[i+1].placed.PairSecond {
				b.log.Error().Str("part", pl.placed.Part.ID).Msg("pair first without second, dropping")
				continue
			}
			if used+pl.contribution > stockLength+b.toleranceMM {
				b.log.Warn().
					Str("first", pl.placed.Part.ID).
					Str("second", placements[i+1].placed.Part.ID).
					Msg("pair overflows bar, reverting both halves")
				i++
				continue
			}
			kept = append(kept, pl.placed, placements[i+1].placed)
			used += pl.contribution
			i++
			continue
		}

		// Plain part: recompute the kerf against the previous kept part.
		kerf := 0.0
		if len(kept) > 0 {
			if !CanShareBoundary(kept[len(kept)-1].Part.EndCut, pl.placed.Part.StartCut) {
				kerf = b.kerfMM
			}
		}
		if used+pl.placed.LengthUsedMM+kerf > stockLength+b.toleranceMM {
			b.log.Warn().
				Str("part", pl.placed.Part.ID).
				Float64("length_mm", pl.placed.LengthUsedMM).
				Msg("part overflows bar on replay, dropping")
			continue
		}
		kept = append(kept, pl.placed)
		used += pl.placed.LengthUsedMM + kerf
	}

	return kept, used
}
