package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/regisync/regisync/internal/server/participants"
)

// ConfirmationSubject is the subject line for registration confirmations.
const ConfirmationSubject = "Your event registration is confirmed"

// ConfirmationMessage builds the HTML body of the registration confirmation
// email. qrURL points at the participant's scannable badge and may be empty
// while the registration is still pending review.
func ConfirmationMessage(p *participants.Participant, qrURL string) string {

	var b strings.Builder

	name := html.EscapeString(p.FullName)
	email := html.EscapeString(p.Email)

	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<p>Hello <strong>%s</strong>,</p>", name)
	b.WriteString("<p>Thank you for registering for our event!</p>")
	b.WriteString("<p><strong>Your registration details:</strong></p><ul>")
	fmt.Fprintf(&b, "<li>Name: %s</li>", name)
	fmt.Fprintf(&b, "<li>Email: %s</li>", email)
	fmt.Fprintf(&b, "<li>Status: <strong>%s</strong></li>", capitalize(string(p.RegistrationStatus)))
	b.WriteString("</ul>")

	if p.RegistrationStatus == participants.StatusRegistered && qrURL != "" {
		escapedURL := html.EscapeString(qrURL)
		b.WriteString("<p>Please present this QR code at the venue for check-in:</p>")
		fmt.Fprintf(&b, `<p><img src="%s" alt="Check-in QR code" width="200"></p>`, escapedURL)
		fmt.Fprintf(&b, `<p>Or open it directly: <a href="%s">%s</a></p>`, escapedURL, escapedURL)
		b.WriteString("<p>We look forward to seeing you!</p>")
	} else if p.RegistrationStatus == participants.StatusPending {
		b.WriteString("<p>Your registration is under review. We will confirm it shortly.</p>")
	}

	b.WriteString("<p>Best regards,<br>The RegiSync Team</p>")
	b.WriteString("</body></html>")

	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
