package email

import (
	"fmt"
	"net/smtp"

	"github.com/finsight/invoice-analytics/internal/config"
	"github.com/finsight/invoice-analytics/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder sends a reminder for an open invoice, carrying the
// risk flags and suggestions produced by the assessment
func (s *Sender) SendPaymentReminder(to, username string, inv *models.InvoiceRecord, assessment models.RiskAssessment) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if inv.Status == models.InvoiceStatusOverdue {
		e.Subject = fmt.Sprintf("Overdue Invoice Notification: %s", inv.Number)
	} else {
		e.Subject = fmt.Sprintf("Upcoming Invoice Payment Reminder: %s", inv.Number)
	}

	// Format email body
	body := fmt.Sprintf(
		"Dear %s,\n\n", username,
	)
	body += fmt.Sprintf(
		"Invoice %s for client %s over %.2f %s was due on %s.\n",
		inv.Number, inv.ClientID, inv.Amount, inv.Currency, inv.DueDate,
	)
	body += fmt.Sprintf("Current risk score: %d\n", assessment.RiskScore)
	if len(assessment.Flags) > 0 {
		body += "\nFindings:\n"
		for _, flag := range assessment.Flags {
			body += fmt.Sprintf("  - [%s] %s\n", flag.Severity, flag.Message)
		}
	}
	if len(assessment.Suggestions) > 0 {
		body += "\nSuggested actions:\n"
		for _, suggestion := range assessment.Suggestions {
			body += fmt.Sprintf("  - %s\n", suggestion)
		}
	}
	if assessment.PaymentPrediction != nil {
		body += fmt.Sprintf(
			"\nBased on this client's history, payment is expected around %s (confidence %d%%).\n",
			assessment.PaymentPrediction.PredictedPayDate, assessment.PaymentPrediction.Confidence,
		)
	}
	body += "\nBest regards,\nFinsight Billing"
	e.Text = []byte(body)

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
