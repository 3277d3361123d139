package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"

	"github.com/warp/resource-engine/internal/domain"
)

// sendGridSink delivers operational notices to the staff inbox via
// SendGrid. Members are outside this engine's boundary, so the ops
// address is the only recipient.
type sendGridSink struct {
	apiKey    string
	fromEmail string
	fromName  string
	opsEmail  string
}

func NewSendGridSink(apiKey, fromEmail, fromName, opsEmail string) NotificationSink {
	return &sendGridSink{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		opsEmail:  opsEmail,
	}
}

func (s *sendGridSink) NotifyLateReturn(ctx context.Context, res *domain.Reservation, tool *domain.Tool, fees decimal.Decimal) error {
	subject := fmt.Sprintf("Late return: reservation %d", res.ID)
	body := fmt.Sprintf(
		"Tool %d (%s) was returned late by member %d.\n\nDue: %s\nLate fees assessed: %s\n",
		tool.ID, tool.Category, res.MemberID,
		res.EndDate.Format("2006-01-02"), fees.StringFixed(2))
	return s.send(subject, body)
}

func (s *sendGridSink) NotifyMaintenanceScheduled(ctx context.Context, w *domain.MaintenanceWindow, tool *domain.Tool) error {
	subject := fmt.Sprintf("Maintenance scheduled: tool %d", tool.ID)
	body := fmt.Sprintf(
		"A %s window was scheduled for tool %d (%s) on %s.\n\n%s\n",
		w.Type, tool.ID, tool.Category,
		w.ScheduledDate.Format("2006-01-02"), w.Description)
	return s.send(subject, body)
}

func (s *sendGridSink) send(subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("Operations", s.opsEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// noopSink is used when notifications are disabled.
type noopSink struct{}

func NewNoopSink() NotificationSink { return noopSink{} }

func (noopSink) NotifyLateReturn(context.Context, *domain.Reservation, *domain.Tool, decimal.Decimal) error {
	return nil
}

func (noopSink) NotifyMaintenanceScheduled(context.Context, *domain.MaintenanceWindow, *domain.Tool) error {
	return nil
}
