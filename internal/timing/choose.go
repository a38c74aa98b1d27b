package timing

import (
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

var tropicalPhenSigs = map[string]bool{
	"TY.A": true, "TY.W": true,
	"HU.A": true, "HU.S": true, "HU.W": true,
	"TR.A": true, "TR.W": true,
}

var marinePILs = map[string]bool{
	"CWF": true, "NSH": true, "GLF": true, "OFF": true, "MWW": true, "MWS": true, "SMW": true,
}

// marineHazards are phensigs that are phrased like watches in marine products.
var marineHazards = map[string]bool{
	"SC.Y": true, "SW.Y": true, "RB.Y": true, "SI.Y": true, "BW.Y": true,
	"MF.Y": true, "MS.Y": true, "MH.Y": true, "LO.Y": true, "UP.Y": true,
	"GL.A": true, "GL.W": true, "SR.A": true, "SR.W": true, "HF.A": true,
	"HF.W": true, "SE.A": true, "SE.W": true, "UP.A": true, "UP.W": true,
	"MH.W": true,
}

const (
	nearTerm = 3 * time.Hour
	midTerm  = 12 * time.Hour
)

// Phraser chooses timing types and renders timing phrases.
type Phraser struct {
	overrides map[string]Pair
	oconus    bool
}

// Option configures a Phraser.
type Option func(*Phraser)

// WithOverrides installs the deployment's headlinesTiming table, keyed by
// phen.sig[.subtype]. A matching entry replaces the computed pair.
func WithOverrides(o map[string]Pair) Option {
	return func(p *Phraser) { p.overrides = o }
}

// WithOCONUS marks an outside-CONUS deployment, whose marine products use
// eight-period fuzzy timing.
func WithOCONUS(oconus bool) Option {
	return func(p *Phraser) { p.oconus = oconus }
}

// New returns a Phraser.
func New(opts ...Option) *Phraser {
	p := &Phraser{}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ChooseTypes returns the (start, end) timing types for rec issued at issue.
func (p *Phraser) ChooseTypes(rec domain.VTECRecord, issue time.Time) Pair {
	switch rec.Action {
	case domain.ActionUpg, domain.ActionCan:
		return Pair{None, None}
	case domain.ActionExp:
		return Pair{None, Explicit}
	}

	if pair, ok := p.override(rec); ok {
		return pair
	}

	phenSig := rec.PhenSig()
	startDelta := rec.StartTime.Sub(issue)

	switch {
	case phenSig == "TO.A" || phenSig == "SV.A":
		if startDelta < nearTerm {
			return Pair{None, Explicit}
		}
		return Pair{Explicit, Explicit}
	case tropicalPhenSigs[phenSig]:
		return Pair{None, None}
	}

	if marinePILs[rec.PIL] && marineHazards[phenSig] {
		fuzzy := Fuzzy4
		if p.oconus {
			fuzzy = Fuzzy8
		}
		return watchTypes(rec, issue, fuzzy)
	}

	if rec.Sig == "A" {
		return watchTypes(rec, issue, Fuzzy4)
	}

	start := Explicit
	if startDelta < nearTerm {
		start = None
	}
	return Pair{start, Explicit}
}

func (p *Phraser) override(rec domain.VTECRecord) (Pair, bool) {
	if len(p.overrides) == 0 {
		return Pair{}, false
	}
	if rec.Key != "" {
		if pair, ok := p.overrides[rec.Key]; ok {
			return pair, true
		}
	}
	pair, ok := p.overrides[rec.PhenSig()]
	return pair, ok
}

func watchTypes(rec domain.VTECRecord, issue time.Time, fuzzy Type) Pair {
	var pair Pair
	switch d := rec.StartTime.Sub(issue); {
	case d < nearTerm:
		pair.Start = None
	case d <= midTerm:
		pair.Start = Explicit
	default:
		pair.Start = fuzzy
	}
	if rec.EndTime.Sub(issue) <= midTerm {
		pair.End = Explicit
	} else {
		pair.End = fuzzy
	}
	return pair
}
