// Package validation checks forecaster input on hazard events before
// issuance.
package validation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// Attribute names read by the rules.
const (
	RainAmount           = "rainAmt"
	RainEdit             = "rainEdit"
	RainSpanLower        = "rainSpanLower"
	RainSpanUpper        = "rainSpanUpper"
	AdditionalRain       = "additionalRain"
	AdditionalRainAmount = "additionalRainAmount"
	Emergency            = "ffwEmergency"
	EmergencyLocation    = "emergencyLocation"
	EndingOption         = "endingOption"
)

// Rule checks one event and returns a message when the input is invalid.
type Rule func(ev domain.HazardEvent) string

// Rules are applied in order; the first failing rule reports for the event.
var Rules = []Rule{RainRange, AdditionalRainfall, EmergencyLocationRequired, EndingOptions}

// Validate checks every event and returns one *domain.ValidationError per
// invalid event, joined. A nil return means issuance may proceed.
func Validate(events []domain.HazardEvent) error {
	var errs []error
	for _, ev := range events {
		if err := Event(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Event checks one event.
func Event(ev domain.HazardEvent) error {
	for _, rule := range Rules {
		if msg := rule(ev); msg != "" {
			return &domain.ValidationError{EventID: ev.EventID, Message: msg}
		}
	}
	return nil
}

// RainRange requires an edited rain span to be ascending.
func RainRange(ev domain.HazardEvent) string {
	if ev.Attributes.String(RainAmount) != RainEdit {
		return ""
	}
	lo, okLo := ev.Attributes.Float(RainSpanLower)
	hi, okHi := ev.Attributes.Float(RainSpanUpper)
	if !okLo || !okHi {
		return "rain span needs a lower and an upper amount"
	}
	if lo >= hi {
		return fmt.Sprintf("rain span must be ascending (%g to %g)", lo, hi)
	}
	return ""
}

// AdditionalRainfall requires an amount exactly when additional rain is
// selected.
func AdditionalRainfall(ev domain.HazardEvent) string {
	amt, has := ev.Attributes.Float(AdditionalRainAmount)
	switch selected := ev.Attributes.Bool(AdditionalRain); {
	case selected && (!has || amt <= 0):
		return "additional rain is selected but no amount was entered"
	case !selected && has && amt > 0:
		return "an additional rain amount was entered but additional rain is not selected"
	}
	return ""
}

// EmergencyLocationRequired requires a location for flash flood emergencies.
func EmergencyLocationRequired(ev domain.HazardEvent) string {
	if ev.Attributes.Bool(Emergency) && ev.Attributes.String(EmergencyLocation) == "" {
		return "a flash flood emergency needs an emergency location"
	}
	return ""
}

// EndingOptions allows at most one ending option.
func EndingOptions(ev domain.HazardEvent) string {
	opts := slices.Compact(slices.Sorted(slices.Values(ev.Attributes.Strings(EndingOption))))
	if len(opts) > 1 {
		return fmt.Sprintf("ending options are mutually exclusive: %v", opts)
	}
	return ""
}
