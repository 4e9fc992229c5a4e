// Package notify owns outbound delivery: channel adapters (email, SMS,
// WhatsApp) and the message templates rendered from the structured context
// the lifecycle engine passes. The engine itself never sees rendered text.
package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/workflow"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
)

// Dispatcher implements workflow.ChannelSender over SMTP and Twilio.
type Dispatcher struct {
	logger *logrus.Logger

	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
	fromAddr string

	twilioClient *twilio.RestClient
	twilioFrom   string // E.164 sender number, shared by SMS and WhatsApp
}

// NewDispatcherFromEnv builds a dispatcher from SMTP_* and TWILIO_* env
// vars. Missing credentials don't fail construction; the corresponding
// channel fails at send time and is recorded as FAILED.
func NewDispatcherFromEnv(logger *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		logger:   logger,
		smtpHost: os.Getenv("SMTP_HOST"),
		smtpPort: os.Getenv("SMTP_PORT"),
		smtpUser: os.Getenv("SMTP_USER"),
		smtpPass: os.Getenv("SMTP_PASSWORD"),
		fromAddr: os.Getenv("SMTP_FROM"),
	}
	if d.smtpPort == "" {
		d.smtpPort = "587"
	}
	if d.fromAddr == "" {
		d.fromAddr = d.smtpUser
	}

	// Twilio reads TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN itself.
	if os.Getenv("TWILIO_ACCOUNT_SID") != "" {
		d.twilioClient = twilio.NewRestClient()
		d.twilioFrom = os.Getenv("TWILIO_FROM_NUMBER")
	}

	return d
}

func (d *Dispatcher) Send(ctx context.Context, channel models.NotificationChannel, recipient string, notificationType models.NotificationType, msgCtx workflow.MessageContext) error {
	subject, body := Render(notificationType, channel, msgCtx)

	var err error
	switch channel {
	case models.NotificationChannelEmail:
		err = d.sendEmail(recipient, subject, body)
	case models.NotificationChannelSms:
		err = d.sendTwilio(recipient, body, false)
	case models.NotificationChannelWhatsapp:
		err = d.sendTwilio(recipient, body, true)
	case models.NotificationChannelDashboard:
		// Record-only channel; nothing to transmit.
		return nil
	default:
		err = fmt.Errorf("unknown channel %q", channel)
	}

	// The dispatch layer wraps send failures in a ChannelError; return the
	// transport error as-is.
	if err != nil {
		return err
	}

	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{
			"module":      "notify",
			"channel":     channel,
			"type":        notificationType,
			"contract_id": msgCtx.ContractId,
		}).Info("notification sent")
	}
	return nil
}
