package langtable

import (
	"github.com/postcareplus/postcare-sms/internal/langtable"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (langtable.Table, error) {
		return NewKinyarwandaTable(), nil
	})
}
