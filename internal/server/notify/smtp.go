package notify

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	sc "github.com/regisync/regisync/internal/server/config"
)

// SMTPNotifier sends HTML email over SMTP with STARTTLS.
type SMTPNotifier struct {
	config *sc.Config
}

func NewSMTPNotifier(config *sc.Config) *SMTPNotifier {
	return &SMTPNotifier{config: config}
}

func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, body string) error {

	msg := gomail.NewMsg()
	if err := msg.From(n.config.SMTPFrom); err != nil {
		return fmt.Errorf("error setting sender: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("error setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	client, err := gomail.NewClient(n.config.SMTPHost,
		gomail.WithPort(n.config.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.config.SMTPUser),
		gomail.WithPassword(n.config.SMTPPassword),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("error creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	return nil
}
