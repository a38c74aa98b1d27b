package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/couchcryptid/hazard-product-generator/internal/ugc"
)

// Site is the deployment's site configuration.
type Site struct {
	SiteID        string `toml:"site_id"`
	FullStationID string `toml:"full_station_id"`
	CCC           string `toml:"ccc"`
	WFOCity       string `toml:"wfo_city"`
	TimeZone      string `toml:"time_zone"`
	OCONUS        bool   `toml:"oconus"`

	Products        map[string]Product    `toml:"products"`
	HeadlinesTiming map[string]TimingPair `toml:"headlines_timing"`
	Areas           map[string]ugc.Entry  `toml:"areas"`
}

// Product holds per-product settings.
type Product struct {
	TTAAii      string  `toml:"ttaaii"`
	PurgeHours  float64 `toml:"purge_hours"`
	FixedExpire bool    `toml:"fixed_expire"`
}

// TimingPair is a headlinesTiming override: timing type names such as
// "EXPLICIT" or "FUZZY".
type TimingPair struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// LoadSite parses the TOML site file at path. An empty path yields
// DefaultSite. Keys missing from the file keep their default values.
func LoadSite(path string) (*Site, error) {
	site := DefaultSite()
	if path == "" {
		return site, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site config: %w", err)
	}
	if err := toml.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("parsing site config %s: %w", path, err)
	}
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("site config %s: %w", path, err)
	}
	return site, nil
}

// Validate checks the fields every product needs.
func (s *Site) Validate() error {
	var errs []error
	if len(s.SiteID) != 3 {
		errs = append(errs, fmt.Errorf("site_id must be 3 characters, got %q", s.SiteID))
	}
	if s.FullStationID == "" {
		errs = append(errs, errors.New("full_station_id is required"))
	}
	if _, err := time.LoadLocation(s.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("time_zone: %w", err))
	}
	return errors.Join(errs...)
}

// DefaultSite is the Denver/Boulder office.
func DefaultSite() *Site {
	return &Site{
		SiteID:        "BOU",
		FullStationID: "KBOU",
		CCC:           "DEN",
		WFOCity:       "Denver",
		TimeZone:      "America/Denver",
		Products: map[string]Product{
			"FFA": {TTAAii: "WGUS65", PurgeHours: 8},
			"FFW": {TTAAii: "WGUS55", PurgeHours: 3},
			"FFS": {TTAAii: "WGUS75", PurgeHours: 1},
			"FLW": {TTAAii: "WGUS45", PurgeHours: 12},
			"FLS": {TTAAii: "WGUS85", PurgeHours: 6},
			"ESF": {TTAAii: "FGUS75", PurgeHours: 12},
			"NPW": {TTAAii: "WWUS75", PurgeHours: 12},
		},
		Areas: map[string]ugc.Entry{
			"COC001": {Name: "Adams", FullStateName: "Colorado", PartOfState: "northeast", TimeZone: "America/Denver", Cities: []string{"Brighton", "Thornton"}},
			"COC005": {Name: "Arapahoe", FullStateName: "Colorado", PartOfState: "northeast", TimeZone: "America/Denver", Cities: []string{"Aurora", "Littleton"}},
			"COC013": {Name: "Boulder", FullStateName: "Colorado", PartOfState: "north central", TimeZone: "America/Denver", Cities: []string{"Boulder", "Longmont"}},
			"COC031": {Name: "Denver", FullStateName: "Colorado", PartOfState: "north central", TimeZone: "America/Denver", Cities: []string{"Denver"}},
			"COC059": {Name: "Jefferson", FullStateName: "Colorado", PartOfState: "north central", TimeZone: "America/Denver", Cities: []string{"Golden", "Lakewood"}},
			"COC069": {Name: "Larimer", FullStateName: "Colorado", PartOfState: "north central", TimeZone: "America/Denver", Cities: []string{"Fort Collins", "Loveland"}},
			"COC123": {Name: "Weld", FullStateName: "Colorado", PartOfState: "northeast", TimeZone: "America/Denver", Cities: []string{"Greeley"}},
			"COZ039": {Name: "Denver", FullStateName: "Colorado", PartOfState: "north central", TimeZone: "America/Denver", Cities: []string{"Denver"}},
		},
	}
}
