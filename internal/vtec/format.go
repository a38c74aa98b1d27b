package vtec

import (
	"fmt"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

const (
	stampLayout = "060102T1504Z"
	zeroStamp   = "000000T0000Z"
)

func stamp(t time.Time) string {
	if t.IsZero() || domain.IsUFN(t) {
		return zeroStamp
	}
	return t.UTC().Format(stampLayout)
}

// FormatPVTEC renders "/O.NEW.KBOU.FF.A.0005.260615T1800Z-260616T0200Z/".
// Zero and UFN times render as 000000T0000Z.
func FormatPVTEC(mode string, r domain.VTECRecord) string {
	if mode == "" {
		mode = "O"
	}
	return fmt.Sprintf("/%s.%s.%s.%s.%s.%04d.%s-%s/",
		mode, r.Action, r.OfficeID, r.Phen, r.Sig, r.ETN, stamp(r.StartTime), stamp(r.EndTime))
}

// FormatHVTEC renders "/DENC2.1.ER.260616T0300Z.260616T1500Z.260617T0600Z.NO/".
func FormatHVTEC(h domain.HVTEC) string {
	sev, cause, rec := h.FloodSeverity, h.ImmediateCause, h.FloodRecord
	if sev == "" {
		sev = "N"
	}
	if cause == "" {
		cause = "UU"
	}
	if rec == "" {
		rec = "OO"
	}
	return fmt.Sprintf("/%s.%s.%s.%s.%s.%s.%s/",
		h.PointID, sev, cause, stamp(h.RiseAbove), stamp(h.Crest), stamp(h.FallBelow), rec)
}
