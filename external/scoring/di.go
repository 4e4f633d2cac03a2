package scoring

import (
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/scoring"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (scoring.Scorer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPModelScorer(c.ScoringServiceURL), nil
	})
}
