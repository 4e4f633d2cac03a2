package session

import (
	"github.com/postcareplus/postcare-sms/internal/advisor"
	"github.com/postcareplus/postcare-sms/internal/alert"
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/postcareplus/postcare-sms/internal/repository"
	"github.com/postcareplus/postcare-sms/internal/scoring"
	"github.com/postcareplus/postcare-sms/internal/sms"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		return NewManager(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[repository.Repository](i),
			do.MustInvoke[sms.Sender](i),
			do.MustInvoke[scoring.Scorer](i),
			do.MustInvoke[advisor.Advisor](i),
			do.MustInvoke[langtable.Table](i),
			do.MustInvoke[*alert.Notifier](i),
		), nil
	})
}
