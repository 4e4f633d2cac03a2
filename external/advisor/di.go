package advisor

import (
	"github.com/postcareplus/postcare-sms/internal/advisor"
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (advisor.Advisor, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.AdvisorBackend == config.AdvisorBackendOpenAI {
			return NewOpenAIAdvisor(c.OpenAIAPIKey, c.OpenAIModel), nil
		}
		table := do.MustInvoke[langtable.Table](i)
		return NewTemplateAdvisor(table), nil
	})
}
