package product

import (
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

const (
	minExpireLead = time.Hour
	expireStep    = 15 * time.Minute
)

// ExpirationPolicy computes segment expiration times.
type ExpirationPolicy struct {
	// PurgeHours is the product's purge window. Zero or less means the
	// earliest record end is the baseline.
	PurgeHours float64
	// Fixed keeps the baseline without constraining it by record end times.
	Fixed bool
}

// Expire returns the expiration of a segment issued at issue. The result is
// at least an hour after issue and on a 15 minute boundary.
func (p ExpirationPolicy) Expire(issue time.Time, recs []domain.VTECRecord) time.Time {
	issue = issue.UTC()
	exp := issue.Add(time.Duration(p.PurgeHours * float64(time.Hour)))
	if p.PurgeHours <= 0 {
		exp = earliestEnd(recs, issue)
	}

	if !p.Fixed {
		var (
			latestActive time.Time
			hasActive    bool
		)
		for _, r := range recs {
			if !isActive(r.Action) {
				continue
			}
			hasActive = true
			if r.UFN() || r.EndTime.IsZero() {
				continue
			}
			if r.EndTime.After(latestActive) {
				latestActive = r.EndTime
			}
		}
		switch {
		case hasActive && !latestActive.IsZero() && latestActive.Before(exp):
			exp = latestActive
		case !hasActive && len(recs) > 0:
			exp = issue.Add(minExpireLead)
		}
	}

	if floor := issue.Add(minExpireLead); exp.Before(floor) {
		exp = floor
	}
	return ceilStep(exp)
}

func earliestEnd(recs []domain.VTECRecord, issue time.Time) time.Time {
	var out time.Time
	for _, r := range recs {
		if r.EndTime.IsZero() || r.UFN() {
			continue
		}
		if out.IsZero() || r.EndTime.Before(out) {
			out = r.EndTime
		}
	}
	if out.IsZero() {
		return issue.Add(minExpireLead)
	}
	return out
}

func ceilStep(t time.Time) time.Time {
	f := t.Truncate(expireStep)
	if f.Equal(t) {
		return t
	}
	return f.Add(expireStep)
}

// isActive reports the actions that keep a hazard in effect for expiration.
func isActive(a domain.Action) bool {
	switch a {
	case domain.ActionNew, domain.ActionCon, domain.ActionExt, domain.ActionExb, domain.ActionExa:
		return true
	}
	return false
}
