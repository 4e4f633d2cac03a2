package sms

import (
	"github.com/postcareplus/postcare-sms/internal/config"
	"github.com/postcareplus/postcare-sms/internal/sms"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (sms.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPGateway(c.SMSGatewayURL, c.SMSAPIKey, c.SMSSenderID), nil
	})
}
