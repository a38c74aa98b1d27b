// Package product assembles product dictionaries: it builds segment and
// section state from VTEC segments and evaluates a product-parts recipe into
// an ordered dictionary with edit provenance.
package product

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/hydro"
	"github.com/couchcryptid/hazard-product-generator/internal/metadata"
	"github.com/couchcryptid/hazard-product-generator/internal/timing"
	"github.com/couchcryptid/hazard-product-generator/internal/ugc"
)

// Default purge windows in hours by product ID.
var defaultPurgeHours = map[string]float64{
	"FFA": 8, "FFW": 3, "FFS": 1, "FLW": 12, "FLS": 6, "ESF": 12,
}

// Site is the issuing office as product text needs it.
type Site struct {
	SiteID        string
	FullStationID string
	CCC           string
	WFOCity       string
	Location      *time.Location
	TTAAii        map[string]string
	PurgeHours    map[string]float64
	FixedExpire   map[string]bool
}

// Policy returns the expiration policy of productID.
func (s Site) Policy(productID string) ExpirationPolicy {
	hours, ok := s.PurgeHours[productID]
	if !ok {
		hours = defaultPurgeHours[productID]
	}
	return ExpirationPolicy{PurgeHours: hours, Fixed: s.FixedExpire[productID]}
}

func (s Site) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Deps are the collaborators a Builder reads from. Rivers may be nil in
// deployments without point hazards.
type Deps struct {
	Areas    *ugc.Dictionary
	Phraser  *timing.Phraser
	Resolver *metadata.Resolver
	Metadata metadata.Service
	Rivers   hydro.Service
}

// Builder turns product segment groups into product dictionaries.
type Builder struct {
	site     Site
	areas    *ugc.Dictionary
	phraser  *timing.Phraser
	resolver *metadata.Resolver
	meta     metadata.Service
	rivers   hydro.Service
	logger   *slog.Logger
}

// NewBuilder returns a Builder for site.
func NewBuilder(site Site, deps Deps, logger *slog.Logger) *Builder {
	if deps.Phraser == nil {
		deps.Phraser = timing.New()
	}
	if deps.Resolver == nil {
		deps.Resolver = metadata.NewResolver(nil)
	}
	return &Builder{
		site:     site,
		areas:    deps.Areas,
		phraser:  deps.Phraser,
		resolver: deps.Resolver,
		meta:     deps.Metadata,
		rivers:   deps.Rivers,
		logger:   logger,
	}
}
