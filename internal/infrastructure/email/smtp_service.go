package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"elog-backend/pkg/logger"
)

// EntryNotificationData is the rendered content of an entry-created email.
type EntryNotificationData struct {
	EntryID    string
	Title      string
	LoggedBy   string
	Recipients []string
}

type EmailService interface {
	SendEntryNotification(ctx context.Context, data EntryNotificationData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
	baseURL  string
}

func NewSMTPEmailService(smtpHost, smtpPort, from, baseURL string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
		baseURL:  baseURL,
	}
}

func (s *smtpEmailService) SendEntryNotification(ctx context.Context, data EntryNotificationData) error {
	if len(data.Recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("New logbook entry: %s", data.Title)
	body := fmt.Sprintf(`A new entry was logged by %s.

Title: %s

%s/entries/%s`, data.LoggedBy, data.Title, s.baseURL, data.EntryID)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, strings.Join(data.Recipients, ", "), subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, data.Recipients, msg); err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        data.Recipients,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
