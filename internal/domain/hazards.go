package domain

import "strings"

// hazardHeadlines maps phen.sig (optionally with subtype) to its headline text.
var hazardHeadlines = map[string]string{
	"FF.A":                "Flood Watch",
	"FA.A":                "Flood Watch",
	"FL.A":                "Flood Watch",
	"FF.W":                "Flash Flood Warning",
	"FF.W.Convective":     "Flash Flood Warning",
	"FF.W.NonConvective":  "Flash Flood Warning",
	"FF.W.BurnScar":       "Flash Flood Warning",
	"FA.W":                "Flood Warning",
	"FL.W":                "Flood Warning",
	"FA.Y":                "Flood Advisory",
	"FL.Y":                "Flood Advisory",
	"HY.S":                "Hydrologic Statement",
	"HY.O":                "Hydrologic Outlook",
	"TO.A":                "Tornado Watch",
	"SV.A":                "Severe Thunderstorm Watch",
	"TO.W":                "Tornado Warning",
	"SV.W":                "Severe Thunderstorm Warning",
	"EW.W":                "Extreme Wind Warning",
	"SM.Y":                "Dense Smoke Advisory",
	"HU.A":                "Hurricane Watch",
	"HU.W":                "Hurricane Warning",
	"HU.S":                "Hurricane Local Statement",
	"TR.A":                "Tropical Storm Watch",
	"TR.W":                "Tropical Storm Warning",
	"TY.A":                "Typhoon Watch",
	"TY.W":                "Typhoon Warning",
	"WS.A":                "Winter Storm Watch",
	"WS.W":                "Winter Storm Warning",
	"WW.Y":                "Winter Weather Advisory",
	"HW.W":                "High Wind Warning",
	"WI.Y":                "Wind Advisory",
	"SC.Y":                "Small Craft Advisory",
	"GL.W":                "Gale Warning",
	"GL.A":                "Gale Watch",
	"SR.W":                "Storm Warning",
	"HF.W":                "Hurricane Force Wind Warning",
	"SE.W":                "Hazardous Seas Warning",
	"MF.Y":                "Dense Fog Advisory",
}

// HazardHeadline returns the headline for a phen.sig[.subtype] key, falling
// back from the subtyped key to phen.sig. Unknown keys yield "".
func HazardHeadline(key string) string {
	if h, ok := hazardHeadlines[key]; ok {
		return h
	}
	parts := strings.Split(key, ".")
	if len(parts) > 2 {
		return hazardHeadlines[parts[0]+"."+parts[1]]
	}
	return ""
}
