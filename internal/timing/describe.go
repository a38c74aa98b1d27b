package timing

import (
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// FurtherNotice is the end description of an open-ended event.
const FurtherNotice = "Further Notice"

// Description is the ("HHMM AM/PM", "TZ", "description") triple for one time
// in one zone. Fuzzy types leave Clock and Zone empty.
type Description struct {
	Clock string
	Zone  string
	Text  string
}

// String joins the non-empty parts: "1015 PM MDT this evening".
func (d Description) String() string {
	var parts []string
	for _, s := range []string{d.Clock, d.Zone, d.Text} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Describe phrases t relative to issue in loc using the given type.
func Describe(issue, t time.Time, loc *time.Location, typ Type) Description {
	if typ == None || t.IsZero() {
		return Description{}
	}
	if domain.IsUFN(t) {
		return Description{Text: FurtherNotice}
	}
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	days := dayDiff(issue.In(loc), lt)

	switch typ {
	case Explicit:
		return Description{Clock: ClockTime(lt), Zone: lt.Format("MST"), Text: explicitText(lt, days)}
	case Fuzzy4:
		return Description{Text: fuzzy4Text(lt, days)}
	case Fuzzy8:
		return Description{Text: fuzzy8Text(lt, days)}
	case DayNightOnly:
		return Description{Text: dayNightText(lt, days)}
	default:
		return Description{}
	}
}

// ClockTime renders a local time as "1015 PM", with 12:00 as "Noon" and 00:00 as "Midnight".
func ClockTime(lt time.Time) string {
	switch {
	case lt.Hour() == 12 && lt.Minute() == 0:
		return "Noon"
	case lt.Hour() == 0 && lt.Minute() == 0:
		return "Midnight"
	}
	return lt.Format("304 PM")
}

// dayDiff counts calendar days from the issue date to the event date, both local.
func dayDiff(issue, event time.Time) int {
	iy, im, id := issue.Date()
	ey, em, ed := event.Date()
	i := time.Date(iy, im, id, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(i).Hours() / 24)
}

func weekday(t time.Time) string { return t.Weekday().String() }

func previousWeekday(t time.Time) string { return t.AddDate(0, 0, -1).Weekday().String() }

func explicitText(lt time.Time, days int) string {
	h := lt.Hour()
	switch {
	case days == 0 && h < 6:
		return "early this morning"
	case days == 0 && h < 12:
		return "this morning"
	case days == 0 && h < 18:
		return "this afternoon"
	case days == 0:
		return "this evening"
	case days == 1 && h < 6:
		return "late tonight"
	default:
		return weekday(lt)
	}
}

func fuzzy4Text(lt time.Time, days int) string {
	h := lt.Hour()
	if days <= 0 {
		switch {
		case h < 6:
			return "early this morning"
		case h < 12:
			return "this morning"
		case h < 18:
			return "this afternoon"
		default:
			return "this evening"
		}
	}
	switch {
	case h < 6 && days == 1:
		return "late tonight"
	case h < 6:
		return "late " + previousWeekday(lt) + " night"
	case h < 12:
		return weekday(lt) + " morning"
	case h < 18:
		return weekday(lt) + " afternoon"
	default:
		return weekday(lt) + " evening"
	}
}

var fuzzy8Today = [8]string{
	"early this morning", "early this morning", "this morning", "late this morning",
	"early this afternoon", "late this afternoon", "this evening", "late this evening",
}

var fuzzy8Later = [8]string{
	"", "early %s morning", "%s morning", "late %s morning",
	"early %s afternoon", "late %s afternoon", "%s evening", "late %s evening",
}

func fuzzy8Text(lt time.Time, days int) string {
	period := lt.Hour() / 3
	if days <= 0 {
		return fuzzy8Today[period]
	}
	if period == 0 {
		if days == 1 {
			return "late tonight"
		}
		return "late " + previousWeekday(lt) + " night"
	}
	return strings.Replace(fuzzy8Later[period], "%s", weekday(lt), 1)
}

func dayNightText(lt time.Time, days int) string {
	h := lt.Hour()
	switch {
	case h < 6 && days <= 1:
		return "tonight"
	case h < 6:
		return previousWeekday(lt) + " night"
	case h < 18 && days <= 0:
		return "today"
	case h < 18:
		return weekday(lt)
	case days <= 0:
		return "tonight"
	default:
		return weekday(lt) + " night"
	}
}
