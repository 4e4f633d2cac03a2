package directory

import (
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/directory"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (directory.Directory, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewStaticDirectory([]byte(c.CaregiverDirectoryJSON))
	})
}
