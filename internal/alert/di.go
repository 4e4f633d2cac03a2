package alert

import (
	"github.com/postcareplus/postcare-sms/internal/directory"
	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/postcareplus/postcare-sms/internal/repository"
	"github.com/postcareplus/postcare-sms/internal/sms"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Notifier, error) {
		dir := do.MustInvoke[directory.Directory](i)
		sender := do.MustInvoke[sms.Sender](i)
		table := do.MustInvoke[langtable.Table](i)
		repo := do.MustInvoke[repository.Repository](i)
		return NewNotifier(dir, sender, table, repo), nil
	})
}
