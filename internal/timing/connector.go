package timing

import "github.com/couchcryptid/hazard-product-generator/internal/domain"

// Sentinel is emitted when no connector applies. It is meant to be seen and
// edited by the forecaster.
const Sentinel = "from <startPrefix?> to <endPrefix?>"

// Connector holds the words placed before the start and end descriptions.
// An empty Start means the start time is not phrased.
type Connector struct {
	Start string
	End   string
}

// ConnectorFor returns the connector pair for a timing pair and action.
// EXP always yields ("", "AT"). The boolean is false for unknown types.
func ConnectorFor(p Pair, act domain.Action) (Connector, bool) {
	if act == domain.ActionExp {
		return Connector{End: "AT"}, true
	}
	if !known(p.Start) || !known(p.End) {
		return Connector{}, false
	}

	switch {
	case p.Start == None && p.End == None:
		return Connector{}, true
	case p.Start == None && p.End == Explicit:
		return Connector{End: "until"}, true
	case p.Start == None:
		return Connector{End: "through"}, true
	case p.End == None:
		return Connector{Start: "from"}, true
	case p.Start == Explicit && p.End == Explicit:
		return Connector{Start: "from", End: "to"}, true
	case p.End == Explicit:
		return Connector{Start: "from", End: "until"}, true
	default:
		return Connector{Start: "from", End: "through"}, true
	}
}

func known(t Type) bool {
	_, ok := typeNames[t]
	return ok
}
