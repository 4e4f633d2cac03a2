package sms

import "context"

// Sender delivers one outbound text to a phone number. Retries, carrier
// selection and cost accounting are the backend's concern; the core only
// needs success or failure.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}
