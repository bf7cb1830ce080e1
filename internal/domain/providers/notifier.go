package providers

import "context"

// AlertSender delivers an out-of-band alert message to a recipient
// address (a phone number for the WhatsApp implementation). Returns the
// provider's message id.
type AlertSender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}
