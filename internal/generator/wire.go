package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/cancellation"
	"github.com/couchcryptid/hazard-product-generator/internal/config"
	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/grouping"
	"github.com/couchcryptid/hazard-product-generator/internal/hydro"
	"github.com/couchcryptid/hazard-product-generator/internal/lifecycle"
	"github.com/couchcryptid/hazard-product-generator/internal/metadata"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
	"github.com/couchcryptid/hazard-product-generator/internal/product"
	"github.com/couchcryptid/hazard-product-generator/internal/timing"
	"github.com/couchcryptid/hazard-product-generator/internal/ugc"
	"github.com/couchcryptid/hazard-product-generator/internal/vtec"
)

// EventStore reads and writes persisted hazard events.
type EventStore interface {
	cancellation.EventStore
	lifecycle.EventWriter
}

// RecordStore holds issued VTEC records and ETN counters.
type RecordStore interface {
	VTECStore
	vtec.History
}

// Collaborators are the external services a Generator depends on. Engine
// defaults to the built-in engine over Records. Metadata and Rivers may be
// nil.
type Collaborators struct {
	Engine    vtec.Factory
	Events    EventStore
	Records   RecordStore
	Metadata  metadata.Service
	Rivers    hydro.Service
	Templates map[string][]domain.Part
}

// New wires a Generator for site.
func New(site *config.Site, c Collaborators, logger *slog.Logger, metrics *observability.Metrics) (*Generator, error) {
	if c.Events == nil || c.Records == nil {
		return nil, errors.New("generator needs an event store and a record store")
	}
	loc, err := time.LoadLocation(site.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("site time zone: %w", err)
	}

	overrides := make(map[string]timing.Pair, len(site.HeadlinesTiming))
	for key, tp := range site.HeadlinesTiming {
		pair, err := timing.ParsePair(tp.Start, tp.End)
		if err != nil {
			return nil, fmt.Errorf("headlines timing %s: %w", key, err)
		}
		overrides[key] = pair
	}

	engine := c.Engine
	if engine == nil {
		engine = vtec.NewBasicFactory(c.Records)
	}

	areas := ugc.NewDictionary(site.Areas, site.TimeZone, logger)
	builder := product.NewBuilder(productSite(site, loc), product.Deps{
		Areas:    areas,
		Phraser:  timing.New(timing.WithOverrides(overrides), timing.WithOCONUS(site.OCONUS)),
		Resolver: metadata.NewResolver(nil),
		Metadata: c.Metadata,
		Rivers:   c.Rivers,
	}, logger)

	return &Generator{
		coordinator: vtec.NewCoordinator(engine, logger),
		policy:      grouping.New(c.Templates),
		builder:     builder,
		analyzer:    cancellation.NewAnalyzer(c.Events, c.Metadata, areas, logger),
		lifecycle:   lifecycle.NewManager(c.Events, logger),
		records:     c.Records,
		officeID:    site.FullStationID,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

func productSite(site *config.Site, loc *time.Location) product.Site {
	ps := product.Site{
		SiteID:        site.SiteID,
		FullStationID: site.FullStationID,
		CCC:           site.CCC,
		WFOCity:       site.WFOCity,
		Location:      loc,
		TTAAii:        make(map[string]string, len(site.Products)),
		PurgeHours:    make(map[string]float64, len(site.Products)),
		FixedExpire:   make(map[string]bool, len(site.Products)),
	}
	for id, p := range site.Products {
		ps.TTAAii[id] = p.TTAAii
		if p.PurgeHours > 0 {
			ps.PurgeHours[id] = p.PurgeHours
		}
		ps.FixedExpire[id] = p.FixedExpire
	}
	return ps
}
