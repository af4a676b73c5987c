package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"genpay/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(email, fullName string) error
	SendReceiptEmail(email string, receipt *models.Receipt) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, fullName string) error {
	if fullName == "" {
		fullName = email
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your operator account is ready")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>An operator account has been created for you on the generator payments system.</p>
		<p>You can now log in and start recording payments.</p>
	`, fullName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendReceiptEmail(email string, r *models.Receipt) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Payment receipt #%s", r.PaymentID))

	body := fmt.Sprintf(`
                <h3>Receipt #%s</h3>
                <p>Client: <strong>%s</strong><br>Date: %s</p>
                <table cellpadding="4">
                        <tr><td>Monthly fee</td><td>%s</td></tr>
                        <tr><td>Usage (%d kWh)</td><td>%s</td></tr>
                        <tr><td>Total due before payment</td><td>%s</td></tr>
                        <tr><td>Payment amount</td><td><strong>%s</strong></td></tr>
                        <tr><td>New balance</td><td><strong>%s</strong></td></tr>
                </table>
        `, r.PaymentID, r.ClientName, r.Date,
		r.MonthlyFee.StringFixed(2), r.TotalUsage, r.AmountUsage.StringFixed(2),
		r.TotalDueBefore.StringFixed(2), r.PaymentAmount.StringFixed(2), r.NewBalance.StringFixed(2))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send receipt email: %w", err)
	}
	return nil
}
