package alert

import "github.com/postcareplus/postcare-sms/internal/scoring"

type Level string

const (
	LevelLow       Level = "low"
	LevelMedium    Level = "medium"
	LevelHigh      Level = "high"
	LevelEmergency Level = "emergency"
)

type Type string

const (
	TypeRoutineFollowup Type = "routine_followup"
	TypeHealthConcern   Type = "health_concern"
	TypeEmergency       Type = "emergency"
)

// LevelFor maps a scoring result to an escalation tier. Rules are
// evaluated top-down and the first match wins; the conditions overlap,
// so the order is part of the contract.
func LevelFor(r scoring.Result) Level {
	switch {
	case r.Severity >= 9,
		r.HasAlert(scoring.TagHighPain) && r.HasAlert(scoring.TagFever),
		r.HasAlert(scoring.TagPoorWoundHealing) && r.Severity >= 7,
		r.RecoveryScore < 0.2:
		return LevelEmergency
	case r.Severity >= 7,
		len(r.Alerts) >= 3,
		r.HasAlert(scoring.TagHighPain),
		r.RecoveryScore < 0.4:
		return LevelHigh
	case r.Severity >= 4,
		len(r.Alerts) >= 2,
		r.RecoveryScore < 0.6:
		return LevelMedium
	default:
		return LevelLow
	}
}

func TypeFor(r scoring.Result, emergencyContext bool) Type {
	if emergencyContext {
		return TypeEmergency
	}
	switch {
	case r.Severity >= 8:
		return TypeEmergency
	case r.Severity >= 6, len(r.Alerts) >= 2:
		return TypeHealthConcern
	default:
		return TypeRoutineFollowup
	}
}
