package engine

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/piwi3910/BarNest/internal/model"
)

// iterationFactor bounds each profile's nesting loop at this multiple of its
// initial part count, as an absolute safety stop on adversarial inputs.
const iterationFactor = 10

// Nester drives the per-profile nesting loop: select a stock length, build a
// pattern, retire the placed parts, repeat until nothing remains.
type Nester struct {
	settings model.NestSettings
	selector *StockSelector
	builder  *PatternBuilder
	log      zerolog.Logger
}

// New creates a Nester. The logger is observational only; identical inputs
// produce identical reports regardless of the log level.
func New(settings model.NestSettings, log zerolog.Logger) *Nester {
	return &Nester{
		settings: settings,
		selector: NewStockSelector(settings),
		builder:  NewPatternBuilder(settings, log),
		log:      log.With().Str("component", "nester").Logger(),
	}
}

// Nest runs the engine over the given parts, keeping only profiles named in
// the filter. Profile keys are normalized with model.BaseProfileName, so
// "beam_IPE100" and "column_IPE100" nest as one group. Returns an InputError
// before any computation when the request cannot be served.
func (n *Nester) Nest(parts []model.Part, profileFilter []string) (model.NestingReport, error) {
	if len(n.settings.StockLengths) == 0 {
		return model.NestingReport{}, NewInputError("at least one stock length is required")
	}
	if len(profileFilter) == 0 {
		return model.NestingReport{}, NewInputError("at least one profile is required")
	}

	selected := make(map[string]bool, len(profileFilter))
	for _, name := range profileFilter {
		selected[model.BaseProfileName(name)] = true
	}

	grouped := make(map[string][]model.Part)
	for _, p := range parts {
		base := model.BaseProfileName(p.ProfileName)
		if !selected[base] {
			continue
		}
		grouped[base] = append(grouped[base], p)
	}
	if len(grouped) == 0 {
		return model.NestingReport{}, NewInputError(
			fmt.Sprintf("no parts found for selected profiles: %v", profileFilter))
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	report := model.NestingReport{Settings: n.settings}
	for _, name := range names {
		result := n.NestProfile(name, grouped[name])
		report.Profiles = append(report.Profiles, result)
	}
	report.Summary = Summarize(report.Profiles)

	n.log.Info().
		Int("profiles", report.Summary.TotalProfiles).
		Int("parts", report.Summary.TotalParts).
		Int("bars", report.Summary.TotalStockBars).
		Float64("waste_mm", report.Summary.TotalWaste).
		Msg("nesting complete")
	return report, nil
}

// NestProfile nests all parts of a single profile group. Every input part
// ends up either in exactly one pattern or in exactly one rejection record.
func (n *Nester) NestProfile(profileName string, parts []model.Part) model.ProfileNestingResult {
	log := n.log.With().Str("profile", profileName).Logger()

	result := model.ProfileNestingResult{
		ProfileName: profileName,
		TotalParts:  len(parts),
	}
	for _, p := range parts {
		result.TotalLength += p.LengthMM
	}

	tracker := &RejectionTracker{}
	remaining := append([]model.Part(nil), parts...)
	maxIterations := iterationFactor * len(parts)

	for iteration := 0; len(remaining) > 0; iteration++ {
		if iteration >= maxIterations {
			// Loop guard: convert leftovers to rejections so no part goes
			// unaccounted for.
			log.Error().Int("leftover", len(remaining)).Msg("iteration limit exceeded")
			for _, p := range remaining {
				tracker.Reject(p, n.selector.Longest(), "iteration limit exceeded")
			}
			break
		}

		fit, oversized := n.selector.FilterOversized(remaining)
		tracker.Add(oversized...)
		remaining = fit
		if len(remaining) == 0 {
			break
		}

		stock, ok := n.selector.Select(remaining)
		if !ok {
			// Should be impossible after FilterOversized; reject the leftovers
			// rather than losing them.
			log.Error().Int("leftover", len(remaining)).Msg("no stock length selectable")
			for _, p := range remaining {
				tracker.Reject(p, n.selector.Longest(), "no suitable stock length available")
			}
			break
		}

		pattern := n.builder.Build(stock, remaining)
		if len(pattern.Parts) == 0 {
			// An empty pattern means no remaining part fits the chosen bar;
			// stop rather than loop forever, rejecting what is left.
			log.Warn().Int("leftover", len(remaining)).Float64("stock", stock).
				Msg("empty pattern, stopping profile loop")
			for _, p := range remaining {
				tracker.Reject(p, stock, "could not be placed on any stock bar")
			}
			break
		}

		placed := make(map[string]bool, len(pattern.Parts))
		for _, pp := range pattern.Parts {
			placed[pp.Part.ID] = true
		}
		next := remaining[:0]
		for _, p := range remaining {
			if !placed[p.ID] {
				next = append(next, p)
			}
		}
		remaining = next

		result.Patterns = append(result.Patterns, pattern)
		log.Debug().
			Float64("stock", stock).
			Int("parts", len(pattern.Parts)).
			Float64("waste_mm", pattern.WasteMM).
			Msg("pattern committed")
	}

	result.Rejected = tracker.Rejected()
	AccountProfile(&result)
	return result
}
