package utils

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"eshop/models"
)

// EmailService sends transactional mail through SendGrid.
type EmailService struct {
	apiKey string
	sender string
}

// NewEmailService returns nil when SENDGRID_API_KEY is not set, which
// disables outgoing mail.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return nil
	}
	return &EmailService{
		apiKey: apiKey,
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

func (es *EmailService) SendEmail(toEmail, subject, content string) error {
	from := mail.NewEmail("eshop", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, content, content)

	client := sendgrid.NewSendClient(es.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status %d", response.StatusCode)
	}
	return nil
}

// SendOrderConfirmation mails the order id and total to the buyer.
func (es *EmailService) SendOrderConfirmation(toEmail string, order *models.Order) error {
	subject := "Order Confirmation"
	content := fmt.Sprintf(
		"Dear Customer,\n\nThank you for your purchase! Your order (ID: %s) has been placed successfully.\n\nTotal Amount: $%.2f\nStatus: %s\n\nThank you for shopping with us!",
		order.ID.Hex(), order.TotalPrice, order.Status,
	)
	return es.SendEmail(toEmail, subject, content)
}
