package vtec

import "github.com/couchcryptid/hazard-product-generator/internal/domain"

// PILFor returns the product category that carries a hazard type and action.
func PILFor(phenSig string, act domain.Action) string {
	followup := act != domain.ActionNew
	switch phenSig {
	case "FF.A", "FA.A", "FL.A":
		return "FFA"
	case "FF.W":
		if followup {
			return "FFS"
		}
		return "FFW"
	case "FA.W", "FL.W":
		if followup {
			return "FLS"
		}
		return "FLW"
	case "FA.Y", "FL.Y", "HY.S":
		return "FLS"
	case "HY.O":
		return "ESF"
	case "TO.W":
		if followup {
			return "SVS"
		}
		return "TOR"
	case "SV.W":
		if followup {
			return "SVS"
		}
		return "SVR"
	case "EW.W":
		return "EWW"
	case "TO.A", "SV.A":
		return "WCN"
	case "WS.A", "WS.W", "WW.Y":
		return "WSW"
	case "SC.Y", "GL.A", "GL.W", "SR.W", "HF.W", "SE.W", "MF.Y":
		return "MWW"
	case "HU.A", "HU.W", "HU.S", "TR.A", "TR.W", "TY.A", "TY.W":
		return "TCV"
	default:
		return "NPW"
	}
}
