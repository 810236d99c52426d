package mailer

import (
	"fmt"

	"github.com/diagnosis/doctors-portal/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("📧 [DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
	)
	return "dev-mail", nil
}

func (d *DevMailer) SendBookingConfirmation(email, treatment, date, slot string) error {
	logger.Info("📧 [DEV MAIL] Booking Confirmation",
		"to", email,
		"treatment", treatment,
		"date", date,
		"slot", slot,
	)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 BOOKING CONFIRMATION (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"To: %s\n"+
		"Subject: Your appointment is booked\n"+
		"\n"+
		"Treatment: %s\n"+
		"Date: %s\n"+
		"Slot: %s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		email, treatment, date, slot)

	return nil
}
