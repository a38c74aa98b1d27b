// Package domain models National Weather Service (NWS) hazard events and the
// product structures generated from them.
//
// # Hazard Events
//
// A hazard event is identified by its eventID and carries a phenomenon and
// significance pair (phen.sig, e.g. "FF.A" Flood Watch), an optional
// subtype ("FF.W.Convective"), a geometry, a start and end time, and a free-form
// attribute map. Area events list their geographic codes under the "ugcs"
// attribute; point events carry the river forecast point under "pointID".
//
// Lifecycle statuses:
//
//	pending -> proposed -> issued -> ending -> ended
//	                            \-> elapsed
//
// # VTEC Conventions
//
// Valid Time Event Code (VTEC) records describe what a product does to an
// event: the action code, the event tracking number (ETN), and the valid
// window. Action codes:
//
//	NEW  new event             CON  continued
//	EXT  extended in time      EXA  extended in area
//	EXB  extended in both      CAN  cancelled
//	EXP  expired               UPG  upgraded
//	ROU  routine (hydrologic statements)
//
// P-VTEC line:
//
//	/O.NEW.KBOU.FF.A.0003.240426T1510Z-240426T2310Z/
//
// Times are encoded yymmddThhmmZ in UTC. An event already in effect has a zero
// begin time and an open-ended event has a zero end time, both rendered
// "000000T0000Z".
//
// The external VTEC engine reports times in epoch seconds. They are converted
// to time.Time exactly once at the engine boundary; everything downstream works
// with time.Time. An end time at or beyond [UFNSeconds] means "until further
// notice".
//
// # UGC Codes
//
// Universal Geographic Codes take the form SSxNNN: a two letter state, "C" for
// county or "Z" for zone, and a three digit FIPS or zone number. Product headers
// compress sorted runs of codes: "COC001>003-005-DDHHMM-".
//
// # Product Dictionaries
//
// A product dictionary is an ordered mapping (see [Dict]) with product, segment
// and section levels. Writable fields carry [Provenance] so an editor can map
// edited text back to the events and segment it came from.
package domain
