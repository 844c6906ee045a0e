package auth

import (
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// EmailSender interface allows applications to provide their own email
// sending implementation
type EmailSender interface {
	SendVerificationOTP(to string, code string) error
}

// ConsoleEmailSender is a development implementation that logs emails to console
type ConsoleEmailSender struct{}

func (c *ConsoleEmailSender) SendVerificationOTP(to string, code string) error {
	log.Printf("\n=== EMAIL: Verification code ===")
	log.Printf("To: %s", to)
	log.Printf("Subject: Your verification code")
	log.Printf("Body: Your verification code is: %s", code)
	log.Printf("================================\n")
	return nil
}

// ResendEmailSender delivers verification codes through the Resend
// transactional email API
type ResendEmailSender struct {
	client *resend.Client

	// From is the sender address, e.g. "onboarding@resend.dev"
	From string
}

func NewResendEmailSender(apiKey, from string) *ResendEmailSender {
	return &ResendEmailSender{
		client: resend.NewClient(apiKey),
		From:   from,
	}
}

func (s *ResendEmailSender) SendVerificationOTP(to string, code string) error {
	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: "Your verification code",
		Html:    fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p>", code),
	}
	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("Email sent to %s (id %s)", to, sent.Id)
	return nil
}
