// Package hydro models river forecast points and writes the hydrologic
// bullets of point flood products.
package hydro

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// Missing marks an unavailable stage or flow value.
const Missing = -9999.0

// IsMissing reports whether a stage value is unavailable.
func IsMissing(v float64) bool {
	return v <= Missing || math.IsNaN(v)
}

// Trend is the observed stage trend.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendSteady  Trend = "steady"
	TrendUnknown Trend = "unknown"
)

// Crest is a historical crest.
type Crest struct {
	Stage float64   `json:"stage"`
	Date  time.Time `json:"date"`
}

// Impact is a stage-keyed impact statement.
type Impact struct {
	Stage float64 `json:"stage"`
	Text  string  `json:"text"`
}

// ForecastPoint is the river forecast point data used by point products.
type ForecastPoint struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	RiverName             string    `json:"riverName"`
	GroupName             string    `json:"groupName"`
	Proximity             string    `json:"proximity"`
	Units                 string    `json:"stageFlowUnits"`
	ObservedStage         float64   `json:"observedStage"`
	ObservedTime          time.Time `json:"observedTime"`
	ObservedCategory      int       `json:"observedCategory"`
	FloodStage            float64   `json:"floodStage"`
	FloodFlow             float64   `json:"floodFlow"`
	MaximumForecastStage  float64   `json:"maximumForecastStage"`
	MaximumForecastCat    int       `json:"maximumForecastCategory"`
	ForecastCrestStage    float64   `json:"forecastCrestStage"`
	ForecastCrestTime     time.Time `json:"forecastCrestTime"`
	ForecastRiseAboveTime time.Time `json:"forecastRiseAboveFloodStageTime"`
	ForecastFallBelowTime time.Time `json:"forecastFallBelowFloodStageTime"`
	StageTrend            Trend     `json:"stageTrend"`
	HistoricalCrest       *Crest    `json:"historicalCrest,omitempty"`
	Impacts               []Impact  `json:"impacts,omitempty"`
}

// UnmarshalJSON decodes a point. Stage and flow values absent from data are
// Missing rather than zero.
func (p *ForecastPoint) UnmarshalJSON(data []byte) error {
	type plain ForecastPoint
	v := plain{
		ObservedStage:        Missing,
		FloodStage:           Missing,
		FloodFlow:            Missing,
		MaximumForecastStage: Missing,
		ForecastCrestStage:   Missing,
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ForecastPoint(v)
	return nil
}

// StageUnits returns the stage unit word, defaulting to feet.
func (p ForecastPoint) StageUnits() string {
	if p.Units == "" {
		return "feet"
	}
	return p.Units
}

// Service looks up river forecast points. deep requests the full time series.
type Service interface {
	ForecastPoint(ctx context.Context, pointID string, deep bool) (ForecastPoint, error)
}
