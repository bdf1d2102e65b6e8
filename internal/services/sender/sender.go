// Package sender отправляет административные письма о платежах.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/lib/smtp"
	"github.com/somlabs/agentstore/internal/models"
)

// Service читает уведомления о платежах и пересылает их администратору.
type Service struct {
	transport  smtp.TransportInterface
	adminEmail string
	log        *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(transport smtp.TransportInterface, adminEmail string, log *slog.Logger) *Service {
	return &Service{
		transport:  transport,
		adminEmail: adminEmail,
		log:        log,
	}
}

// SendPaymentNotification разбирает сообщение из очереди и отправляет
// администратору письмо о завершенном платеже.
func (s *Service) SendPaymentNotification(body []byte) error {
	var message models.PaymentNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Новая покупка: %s", message.TransactionID)
	bodyText := fmt.Sprintf(`Оформлена новая покупка.

Покупатель: %s <%s>
Агенты: %s
Тариф: %s
Сумма: %s
Транзакция: %s`,
		message.UserName, message.UserEmail,
		strings.Join(message.AgentNames, ", "),
		message.PlanName,
		message.Amount.String(),
		message.TransactionID)

	return s.sendEmail([]string{s.adminEmail}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
