package advisor

import (
	"context"

	"github.com/postcareplus/postcare-sms/internal/scoring"
)

type PatientContext struct {
	PatientRef string
	Name       string
	Region     string
	Language   string
}

// Advisor turns patient data into advice text. AdviseVitals follows a
// completed collection round; Reply answers free-conversation messages.
// Implementations must not fabricate scoring data; they render what they
// are given.
type Advisor interface {
	AdviseVitals(ctx context.Context, v scoring.Vitals, r scoring.Result, patient PatientContext) (string, error)
	Reply(ctx context.Context, freeText string, patient PatientContext) (string, error)
}
