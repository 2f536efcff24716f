package notify

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/config"
	"github.com/crediario/crediario-backend/internal/domain"
)

// OverdueNotifier delivers overdue notices to customers. The sweep reports
// delivery outcomes per notice, so senders return errors instead of logging
// and swallowing them.
type OverdueNotifier interface {
	SendOverdueNotice(notice *domain.OverdueNotice, lateFee decimal.Decimal) error
}

// EmailSender sends overdue notices via SMTP
type EmailSender struct {
	smtp config.SMTPConfig
}

// NewEmailSender creates a new email sender
func NewEmailSender(smtp config.SMTPConfig) *EmailSender {
	return &EmailSender{smtp: smtp}
}

// SendOverdueNotice emails the customer about an overdue installment
func (s *EmailSender) SendOverdueNotice(notice *domain.OverdueNotice, lateFee decimal.Decimal) error {
	if notice.CustomerEmail == nil || *notice.CustomerEmail == "" {
		return fmt.Errorf("customer %s has no email address", notice.CustomerName)
	}

	e := email.NewEmail()
	e.From = s.smtp.From
	e.To = []string{*notice.CustomerEmail}
	e.Subject = fmt.Sprintf("Overdue installment %d on contract %d", notice.InstallmentNumber, notice.ContractID)

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Installment %d of your contract %d, in the amount of %s, was due on %s and is now overdue.\n",
		notice.CustomerName,
		notice.InstallmentNumber,
		notice.ContractID,
		notice.Amount.StringFixed(2),
		notice.DueDate.Format("2006-01-02"),
	)
	if lateFee.GreaterThan(decimal.Zero) {
		body += fmt.Sprintf("A late fee of %s currently applies.\n", lateFee.StringFixed(2))
	}
	body += "Please visit the store to settle the payment and avoid further fees.\n\nBest regards"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.smtp.Host, s.smtp.Port)
	auth := smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send overdue notice: %w", err)
	}

	log.Info().
		Str("to", *notice.CustomerEmail).
		Int32("contract_id", notice.ContractID).
		Int32("installment", notice.InstallmentNumber).
		Time("due_date", notice.DueDate).
		Msg("Overdue notice sent")
	return nil
}

// NoOpNotifier drops all notices. Used when SMTP is not configured.
type NoOpNotifier struct{}

func (NoOpNotifier) SendOverdueNotice(*domain.OverdueNotice, decimal.Decimal) error {
	return nil
}
