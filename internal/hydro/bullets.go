package hydro

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/timing"
)

// Bullets are the hydrologic bullets of one point section.
type Bullets struct {
	Observed     string
	FloodStage   string
	Forecast     string
	FloodHistory string
	Impacts      []string
	// Branch names the forecast decision taken, for tests and provenance.
	Branch Branch
}

// Branch identifies one leaf of the forecast-stage decision tree.
type Branch int

const (
	BranchNone Branch = iota
	BranchEnded
	BranchMissingRiseAbove
	BranchMissingBelow
	BranchMissingNoForecast
	BranchBelowRiseAndFall
	BranchBelowRiseAbove
	BranchBelowRiseBelow
	BranchBelowSteady
	BranchAboveCrestAndFall
	BranchAboveCrestRemain
	BranchAboveFallBelow
	BranchAboveFallRemain
	BranchAboveSteady
)

// Writer renders bullets relative to an issue time in the point's zone.
type Writer struct {
	issue time.Time
	loc   *time.Location
}

// NewWriter returns a Writer for products issued at issue in loc.
func NewWriter(issue time.Time, loc *time.Location) *Writer {
	if loc == nil {
		loc = time.UTC
	}
	return &Writer{issue: issue, loc: loc}
}

// when renders " <fuzzy time>" for t, or "" when t is unknown, so it can
// trail a clause directly.
func (w *Writer) when(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if s := timing.Describe(w.issue, t, w.loc, timing.Fuzzy4).String(); s != "" {
		return " " + s
	}
	return ""
}

func (w *Writer) explicit(t time.Time) string {
	return timing.Describe(w.issue, t, w.loc, timing.Explicit).String()
}

func stage(v float64, units string) string {
	return fmt.Sprintf("%.1f %s", v, units)
}

// Build writes every bullet for the point. selected filters the impact
// stages the forecaster kept; nil keeps all impacts at or below the
// maximum forecast stage.
func (w *Writer) Build(p ForecastPoint, act domain.Action, selected []float64) Bullets {
	units := p.StageUnits()
	var b Bullets

	b.Observed = w.observed(p, units)
	b.FloodStage = floodStage(p, units)

	b.Forecast, b.Branch = w.forecast(p, act)
	b.FloodHistory = floodHistory(p, units)
	b.Impacts = impacts(p, units, selected)
	return b
}

// observed renders the latest observation. The trend is appended when known.
func (w *Writer) observed(p ForecastPoint, units string) string {
	if IsMissing(p.ObservedStage) {
		return ""
	}
	s := "The stage was " + stage(p.ObservedStage, units)
	if !p.ObservedTime.IsZero() {
		s = fmt.Sprintf("At %s the stage was %s", w.explicit(p.ObservedTime), stage(p.ObservedStage, units))
	}
	switch p.StageTrend {
	case TrendRising, TrendFalling:
		s += " and " + string(p.StageTrend)
	case TrendSteady:
		s += " and steady"
	}
	return s + "."
}

func floodStage(p ForecastPoint, units string) string {
	if IsMissing(p.FloodStage) || p.FloodStage <= 0 {
		return ""
	}
	if !IsMissing(p.FloodFlow) && p.FloodFlow > 0 {
		return fmt.Sprintf("Flood stage is %s, or a flow of %.0f cfs.", stage(p.FloodStage, units), p.FloodFlow)
	}
	return fmt.Sprintf("Flood stage is %s.", stage(p.FloodStage, units))
}

// forecast walks the decision tree over observed stage against flood stage
// crossed with the forecast behavior.
func (w *Writer) forecast(p ForecastPoint, act domain.Action) (string, Branch) {
	units := p.StageUnits()
	fs := p.FloodStage
	maxFcst := p.MaximumForecastStage
	crest := p.ForecastCrestStage
	if IsMissing(crest) {
		crest = maxFcst
	}
	hasFall := !p.ForecastFallBelowTime.IsZero()
	hasFcst := !IsMissing(maxFcst)

	if act == domain.ActionCan || act == domain.ActionExp {
		return "The river has fallen below flood stage and will continue to fall.", BranchEnded
	}
	if IsMissing(fs) {
		return "", BranchNone
	}

	obs := p.ObservedStage
	switch {
	case IsMissing(obs):
		switch {
		case !hasFcst:
			return "No forecast is available for this location.", BranchMissingNoForecast
		case maxFcst >= fs:
			s := fmt.Sprintf("The river is expected to rise above flood stage%s to a crest of %s%s.",
				w.when(p.ForecastRiseAboveTime), stage(crest, units), w.when(p.ForecastCrestTime))
			return s, BranchMissingRiseAbove
		default:
			return fmt.Sprintf("The river is expected to crest at %s%s.",
				stage(crest, units), w.when(p.ForecastCrestTime)), BranchMissingBelow
		}

	case obs < fs:
		switch {
		case !hasFcst || (maxFcst <= obs && p.StageTrend != TrendRising):
			return "The river will continue near its current level.", BranchBelowSteady
		case maxFcst >= fs && hasFall:
			s := fmt.Sprintf("The river is expected to rise above flood stage%s and continue to rise to a crest of %s%s. It will then fall below flood stage%s.",
				w.when(p.ForecastRiseAboveTime), stage(crest, units), w.when(p.ForecastCrestTime), w.when(p.ForecastFallBelowTime))
			return s, BranchBelowRiseAndFall
		case maxFcst >= fs:
			s := fmt.Sprintf("The river is expected to rise above flood stage%s to a crest of %s%s.",
				w.when(p.ForecastRiseAboveTime), stage(crest, units), w.when(p.ForecastCrestTime))
			return s, BranchBelowRiseAbove
		default:
			return fmt.Sprintf("The river is expected to rise to near %s%s.",
				stage(crest, units), w.when(p.ForecastCrestTime)), BranchBelowRiseBelow
		}

	default:
		switch {
		case hasFcst && maxFcst > obs && hasFall:
			s := fmt.Sprintf("The river will continue rising to a crest of %s%s. It will then fall below flood stage%s.",
				stage(crest, units), w.when(p.ForecastCrestTime), w.when(p.ForecastFallBelowTime))
			return s, BranchAboveCrestAndFall
		case hasFcst && maxFcst > obs:
			s := fmt.Sprintf("The river will continue rising to a crest of %s%s and remain above flood stage.",
				stage(crest, units), w.when(p.ForecastCrestTime))
			return s, BranchAboveCrestRemain
		case hasFall:
			return fmt.Sprintf("The river will continue to fall to below flood stage%s.",
				w.when(p.ForecastFallBelowTime)), BranchAboveFallBelow
		case p.StageTrend == TrendFalling:
			return "The river will continue to fall but remain above flood stage.", BranchAboveFallRemain
		default:
			return fmt.Sprintf("The river will remain near %s.", stage(obs, units)), BranchAboveSteady
		}
	}
}

func floodHistory(p ForecastPoint, units string) string {
	if p.HistoricalCrest == nil || p.HistoricalCrest.Date.IsZero() {
		return ""
	}
	level := p.MaximumForecastStage
	if IsMissing(level) {
		level = p.ObservedStage
	}
	if IsMissing(level) {
		return ""
	}
	return fmt.Sprintf("This crest compares to a previous crest of %s on %s.",
		stage(p.HistoricalCrest.Stage, units), p.HistoricalCrest.Date.Format("01/02/2006"))
}

func impacts(p ForecastPoint, units string, selected []float64) []string {
	limit := p.MaximumForecastStage
	if IsMissing(limit) {
		limit = p.ObservedStage
	}
	list := slices.Clone(p.Impacts)
	slices.SortFunc(list, func(a, b Impact) int {
		switch {
		case a.Stage > b.Stage:
			return -1
		case a.Stage < b.Stage:
			return 1
		}
		return 0
	})

	var out []string
	for _, im := range list {
		keep := selected == nil && !IsMissing(limit) && im.Stage <= limit
		if selected != nil {
			keep = slices.Contains(selected, im.Stage)
		}
		if keep {
			out = append(out, fmt.Sprintf("At %s, %s", stage(im.Stage, units), strings.TrimSpace(im.Text)))
		}
	}
	return out
}

// PointPhrase renders "the <river> <proximity> <point>".
func PointPhrase(p ForecastPoint) string {
	parts := []string{"the", p.RiverName}
	if p.Proximity != "" {
		parts = append(parts, p.Proximity)
	}
	parts = append(parts, p.Name)
	return strings.Join(slices.DeleteFunc(parts, func(s string) bool { return s == "" }), " ")
}
