package scoring

import (
	"context"
	"fmt"
	"time"
)

// Tag is one alert marker from the fixed vocabulary shared with the
// scoring model and the escalation policy.
type Tag string

const (
	TagHighPain         Tag = "HIGH_PAIN"
	TagPoorWoundHealing Tag = "POOR_WOUND_HEALING"
	TagFever            Tag = "FEVER"
	TagLowMobility      Tag = "LOW_MOBILITY"
	TagWoundConcern     Tag = "WOUND_CONCERN"
	TagEmergency        Tag = "EMERGENCY"
	TagDoctorRequest    Tag = "DOCTOR_REQUEST"
)

func KnownTag(t Tag) bool {
	switch t {
	case TagHighPain, TagPoorWoundHealing, TagFever, TagLowMobility, TagWoundConcern, TagEmergency, TagDoctorRequest:
		return true
	}
	return false
}

// Vitals is one completed patient-reported collection round. Construct
// through NewVitals so out-of-range values are rejected at the boundary.
type Vitals struct {
	Pain         float64
	WoundHealing float64
	TemperatureC float64
	Mobility     float64
	CapturedAt   time.Time
}

const (
	ScaleMin = 1
	ScaleMax = 10
	TempMinC = 30
	TempMaxC = 45
)

func NewVitals(pain, woundHealing, temperatureC, mobility float64, capturedAt time.Time) (Vitals, error) {
	if pain < ScaleMin || pain > ScaleMax {
		return Vitals{}, fmt.Errorf("pain %g out of range [%d,%d]", pain, ScaleMin, ScaleMax)
	}
	if woundHealing < ScaleMin || woundHealing > ScaleMax {
		return Vitals{}, fmt.Errorf("wound healing %g out of range [%d,%d]", woundHealing, ScaleMin, ScaleMax)
	}
	if temperatureC < TempMinC || temperatureC > TempMaxC {
		return Vitals{}, fmt.Errorf("temperature %g out of range [%d,%d]", temperatureC, TempMinC, TempMaxC)
	}
	if mobility < ScaleMin || mobility > ScaleMax {
		return Vitals{}, fmt.Errorf("mobility %g out of range [%d,%d]", mobility, ScaleMin, ScaleMax)
	}
	return Vitals{
		Pain:         pain,
		WoundHealing: woundHealing,
		TemperatureC: temperatureC,
		Mobility:     mobility,
		CapturedAt:   capturedAt,
	}, nil
}

// Result is one scoring outcome. Severity is non-negative and unbounded
// above; RecoveryScore is always within [0,1]. The model is allowed to be
// non-deterministic, the shape and tag vocabulary are not.
type Result struct {
	Severity       float64
	RecoveryScore  float64
	Alerts         []Tag
	NeedsAttention bool
}

func (r Result) HasAlert(tag Tag) bool {
	for _, t := range r.Alerts {
		if t == tag {
			return true
		}
	}
	return false
}

type Scorer interface {
	Score(ctx context.Context, v Vitals) (Result, error)
}
