package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"agentforge-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	opsEmail  string
}

func NewEmailService(apiKey, fromEmail, fromName, opsEmail string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		opsEmail:  opsEmail,
	}
}

// SendOpsDigest mails the operations inbox a daily marketplace digest.
// Renters are wallet addresses with no email on file, so reminders go to
// ops rather than to individual accounts.
func (s *emailService) SendOpsDigest(ctx context.Context, expiredRentals, unratedRentals int) error {
	if s.apiKey == "" || s.opsEmail == "" {
		logger.Debug("Email not configured, skipping ops digest")
		return nil
	}

	date := time.Now().UTC().Format("2006-01-02")
	subject := fmt.Sprintf("Marketplace digest for %s", date)
	plainText := fmt.Sprintf(
		"Rentals marked expired in the last sweep: %d\nExpired rentals still awaiting a rating: %d\n",
		expiredRentals, unratedRentals)
	htmlContent := fmt.Sprintf(`
		<html>
		<body>
			<h2>Marketplace digest for %s</h2>
			<ul>
				<li>Rentals marked expired in the last sweep: <strong>%d</strong></li>
				<li>Expired rentals still awaiting a rating: <strong>%d</strong></li>
			</ul>
		</body>
		</html>`, date, expiredRentals, unratedRentals)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("Operations", s.opsEmail)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send")
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("failed to send ops digest: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil)
	return nil
}
