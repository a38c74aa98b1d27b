package ugc

import (
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is one area dictionary record as stored in site configuration.
type Entry struct {
	Name          string   `toml:"name" json:"ugcName"`
	FullStateName string   `toml:"full_state_name" json:"fullStateName,omitempty"`
	PartOfState   string   `toml:"part_of_state" json:"partOfState,omitempty"`
	TimeZone      string   `toml:"time_zone" json:"ugcTimeZone,omitempty"`
	Cities        []string `toml:"cities" json:"ugcCities,omitempty"`
}

// Name is the resolved naming information of one UGC.
type Name struct {
	UGC           string `json:"ugc"`
	Name          string `json:"ugcName"`
	TypeSingular  string `json:"typeSingular"`
	TypePlural    string `json:"typePlural"`
	FullStateName string `json:"fullStateName"`
	StateAbbr     string `json:"stateAbbr"`
	PartOfState   string `json:"partOfState"`
	TimeZone      string `json:"timeZone"`
}

// Dictionary resolves UGCs against the site's area dictionary. Lookups of
// unknown codes are logged at INFO and answered with a synthetic entry.
type Dictionary struct {
	entries     map[string]Entry
	defaultZone string
	logger      *slog.Logger
}

// NewDictionary returns a Dictionary over entries. defaultZone is the IANA
// zone used when an entry names none.
func NewDictionary(entries map[string]Entry, defaultZone string, logger *slog.Logger) *Dictionary {
	return &Dictionary{
		entries:     entries,
		defaultZone: defaultZone,
		logger:      logger,
	}
}

// Entry returns the dictionary entry for code, synthesizing one when absent.
func (d *Dictionary) Entry(code string) Entry {
	if e, ok := d.entries[code]; ok {
		return e
	}
	d.logger.Info("ugc missing from area dictionary", "ugc", code)
	e := Entry{Name: code}
	if len(code) >= 2 {
		e.FullStateName = stateNames[code[:2]]
	}
	return e
}

// Name resolves the naming details of code.
func (d *Dictionary) Name(code string) Name {
	e := d.Entry(code)
	n := Name{
		UGC:           code,
		Name:          e.Name,
		FullStateName: e.FullStateName,
		PartOfState:   e.PartOfState,
		TimeZone:      e.TimeZone,
	}
	if e.Name != code {
		n.Name = normalize(e.Name)
	}
	if len(code) >= 2 {
		n.StateAbbr = code[:2]
		if n.FullStateName == "" {
			n.FullStateName = stateNames[n.StateAbbr]
		}
	}
	if n.TimeZone == "" {
		n.TimeZone = d.defaultZone
	}
	n.TypeSingular, n.TypePlural = areaType(code)
	return n
}

// normalize title-cases names stored in upper case ("DENVER" -> "Denver").
func normalize(name string) string {
	if name != strings.ToUpper(name) {
		return name
	}
	return title(strings.ToLower(name))
}

// title builds a Caser per call since Casers are stateful.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func areaType(code string) (string, string) {
	state, num, ok := split(code)
	switch {
	case ok && state[2] == 'Z':
		return "zone", "zones"
	case ok && (num >= 500 || state[:2] == "DC"):
		return "independent city", "independent cities"
	case ok && state[:2] == "LA":
		return "parish", "parishes"
	default:
		return "county", "counties"
	}
}

// TimeZones returns the distinct IANA zones of ugcs in first-seen order.
func (d *Dictionary) TimeZones(ugcs []string) []string {
	var out []string
	for _, code := range ugcs {
		tz := d.Name(code).TimeZone
		if tz != "" && !slices.Contains(out, tz) {
			out = append(out, tz)
		}
	}
	if len(out) == 0 && d.defaultZone != "" {
		out = append(out, d.defaultZone)
	}
	return out
}

// Cities returns the distinct city names of ugcs in order.
func (d *Dictionary) Cities(ugcs []string) []string {
	var out []string
	for _, code := range ugcs {
		for _, c := range d.Entry(code).Cities {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Area is one named area within an AreaGroup.
type Area struct {
	Name string
	Type string
}

// AreaGroup lists the areas of one state, optionally narrowed to a part of it.
type AreaGroup struct {
	State       string
	PartOfState string
	Areas       []Area
}

// DescribeAreas groups ugcs by state and part of state. With two or more
// states, a state spanning several parts loses its directional term.
func (d *Dictionary) DescribeAreas(ugcs []string) []AreaGroup {
	type key struct{ state, part string }
	byState := make(map[string]map[string][]Area)
	for _, code := range ugcs {
		n := d.Name(code)
		parts, ok := byState[n.FullStateName]
		if !ok {
			parts = make(map[string][]Area)
			byState[n.FullStateName] = parts
		}
		a := Area{Name: n.Name, Type: n.TypeSingular}
		if !slices.Contains(parts[n.PartOfState], a) {
			parts[n.PartOfState] = append(parts[n.PartOfState], a)
		}
	}

	groups := make(map[key][]Area)
	for state, parts := range byState {
		if len(byState) >= 2 && len(parts) > 1 {
			for _, areas := range parts {
				groups[key{state, ""}] = append(groups[key{state, ""}], areas...)
			}
			continue
		}
		for part, areas := range parts {
			groups[key{state, part}] = append(groups[key{state, part}], areas...)
		}
	}

	out := make([]AreaGroup, 0, len(groups))
	for k, areas := range groups {
		slices.SortFunc(areas, func(a, b Area) int { return strings.Compare(a.Name, b.Name) })
		out = append(out, AreaGroup{State: k.state, PartOfState: k.part, Areas: areas})
	}
	slices.SortFunc(out, func(a, b AreaGroup) int {
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(a.PartOfState, b.PartOfState)
	})
	return out
}

// Phrase renders grouped areas as running text:
// "Adams and Arapahoe Counties in northeast Colorado".
func (d *Dictionary) Phrase(groups []AreaGroup) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		s := d.namesPhrase(g.Areas)
		where := strings.TrimSpace(g.PartOfState + " " + g.State)
		if where != "" {
			s += " in " + where
		}
		parts = append(parts, s)
	}
	return JoinAnd(parts)
}

func (d *Dictionary) namesPhrase(areas []Area) string {
	if len(areas) == 0 {
		return ""
	}
	sameType := true
	for _, a := range areas[1:] {
		if a.Type != areas[0].Type {
			sameType = false
			break
		}
	}
	names := make([]string, len(areas))
	for i, a := range areas {
		names[i] = a.Name
		if !sameType {
			names[i] += " " + title(a.Type)
		}
	}
	s := JoinAnd(names)
	if sameType {
		typ := areas[0].Type
		if len(areas) > 1 {
			typ = pluralOf(typ)
		}
		s += " " + title(typ)
	}
	return s
}

func pluralOf(singular string) string {
	switch singular {
	case "zone":
		return "zones"
	case "parish":
		return "parishes"
	case "independent city":
		return "independent cities"
	default:
		return "counties"
	}
}

// JoinAnd joins items as "a", "a and b", or "a, b and c".
func JoinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// Bullets renders one line per UGC for bulleted warning layouts:
// "Denver County in north central Colorado".
func (d *Dictionary) Bullets(ugcs []string) []string {
	out := make([]string, 0, len(ugcs))
	for _, code := range ugcs {
		n := d.Name(code)
		s := n.Name + " " + title(n.TypeSingular)
		if where := strings.TrimSpace(n.PartOfState + " " + n.FullStateName); where != "" {
			s += " in " + where
		}
		out = append(out, s)
	}
	return out
}
