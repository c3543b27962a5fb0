package notify

import (
	"strings"
	"testing"

	"github.com/regisync/regisync/internal/server/participants"
)

func TestConfirmationMessage_RegisteredIncludesQR(t *testing.T) {
	t.Parallel()

	p := &participants.Participant{
		FullName:           "Ana",
		Email:              "ana@example.com",
		RegistrationStatus: participants.StatusRegistered,
	}

	body := ConfirmationMessage(p, "http://localhost:8080/api/participants/p-1/qr")

	if !strings.Contains(body, "Ana") || !strings.Contains(body, "ana@example.com") {
		t.Fatalf("participant details missing: %s", body)
	}
	if !strings.Contains(body, `img src="http://localhost:8080/api/participants/p-1/qr"`) {
		t.Fatalf("QR image missing: %s", body)
	}
	if !strings.Contains(body, "Registered") {
		t.Fatalf("status not capitalized: %s", body)
	}
}

func TestConfirmationMessage_PendingHasNoQR(t *testing.T) {
	t.Parallel()

	p := &participants.Participant{
		FullName:           "Budi",
		Email:              "budi@example.com",
		RegistrationStatus: participants.StatusPending,
	}

	body := ConfirmationMessage(p, "")

	if strings.Contains(body, "<img") {
		t.Fatalf("pending confirmation must not carry a QR: %s", body)
	}
	if !strings.Contains(body, "under review") {
		t.Fatalf("pending note missing: %s", body)
	}
}

func TestConfirmationMessage_EscapesHTML(t *testing.T) {
	t.Parallel()

	p := &participants.Participant{
		FullName:           `<script>alert("x")</script>`,
		Email:              "x@example.com",
		RegistrationStatus: participants.StatusRegistered,
	}

	body := ConfirmationMessage(p, "http://example.com/qr")

	if strings.Contains(body, "<script>") {
		t.Fatalf("name not escaped: %s", body)
	}
}
