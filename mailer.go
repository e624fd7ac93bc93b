package authcore

import "context"

// Mail template identifiers passed to the external mail collaborator.
const (
	// MailTemplateVerifyEmail delivers the email-verification link.
	MailTemplateVerifyEmail = "verify-email"
	// MailTemplatePasswordReset delivers the password-reset link.
	MailTemplatePasswordReset = "password-reset"
)

// Mail payload keys.
const (
	// MailKeyToken carries the opaque single-use token.
	MailKeyToken = "token"
	// MailKeyFirstName carries the recipient's first name for templating.
	MailKeyFirstName = "first_name"
)

// Mailer is the external mail-delivery collaborator. The engine calls Send
// fire-and-forget: delivery failures are logged and never fail the
// originating operation.
type Mailer interface {
	Send(ctx context.Context, recipient, templateID string, payload map[string]string) error
}

// NoOpMailer discards all mail. It is the default when no Mailer is wired.
type NoOpMailer struct{}

// Send implements [Mailer].
func (NoOpMailer) Send(context.Context, string, string, map[string]string) error { return nil }

// MailMessage is one captured mail dispatch, as delivered to [ChannelMailer].
type MailMessage struct {
	Recipient  string
	TemplateID string
	Payload    map[string]string
}

// ChannelMailer buffers mail dispatches in a channel. Intended for tests and
// for integrations that bridge to an out-of-process delivery queue.
type ChannelMailer struct {
	messages chan MailMessage
}

// NewChannelMailer creates a [ChannelMailer] with the given buffer capacity.
func NewChannelMailer(buffer int) *ChannelMailer {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelMailer{messages: make(chan MailMessage, buffer)}
}

// Send implements [Mailer].
func (m *ChannelMailer) Send(ctx context.Context, recipient, templateID string, payload map[string]string) error {
	select {
	case m.messages <- MailMessage{Recipient: recipient, TemplateID: templateID, Payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages exposes the captured dispatches.
func (m *ChannelMailer) Messages() <-chan MailMessage {
	return m.messages
}
