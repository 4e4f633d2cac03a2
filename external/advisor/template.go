package advisor

import (
	"context"
	"strings"

	"github.com/postcareplus/postcare-sms/internal/advisor"
	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/postcareplus/postcare-sms/internal/scoring"
)

const goodRecoveryThreshold = 0.7

// TemplateAdvisor composes advice from the language table's fixed
// templates keyed by alert tag. Deterministic and offline; the default
// backend.
type TemplateAdvisor struct {
	table langtable.Table
}

func NewTemplateAdvisor(table langtable.Table) advisor.Advisor {
	return &TemplateAdvisor{table: table}
}

func (a *TemplateAdvisor) AdviseVitals(_ context.Context, _ scoring.Vitals, r scoring.Result, _ advisor.PatientContext) (string, error) {
	var parts []string
	if r.HasAlert(scoring.TagHighPain) {
		parts = append(parts, a.table.Render(langtable.KeyAdviceHighPain, nil))
	}
	if r.HasAlert(scoring.TagPoorWoundHealing) || r.HasAlert(scoring.TagWoundConcern) {
		parts = append(parts, a.table.Render(langtable.KeyAdvicePoorWound, nil))
	}
	if r.HasAlert(scoring.TagFever) {
		parts = append(parts, a.table.Render(langtable.KeyAdviceFever, nil))
	}
	if r.HasAlert(scoring.TagLowMobility) {
		parts = append(parts, a.table.Render(langtable.KeyAdviceLowMobility, nil))
	}
	if len(parts) == 0 {
		if r.RecoveryScore > goodRecoveryThreshold {
			parts = append(parts, a.table.Render(langtable.KeyAdviceGoodRecovery, nil))
		} else {
			parts = append(parts, a.table.Render(langtable.KeyAdviceGeneralCare, nil))
		}
	}
	return strings.Join(parts, " "), nil
}

func (a *TemplateAdvisor) Reply(_ context.Context, freeText string, patient advisor.PatientContext) (string, error) {
	key := langtable.KeyGeneralReply
	if a.table.IsQuestionPhrase(freeText) {
		key = langtable.KeyQuestionReply
	}
	return a.table.Render(key, map[string]string{
		"name":   patient.Name,
		"advice": a.table.Render(langtable.KeyAdviceGeneralCare, nil),
	}), nil
}
