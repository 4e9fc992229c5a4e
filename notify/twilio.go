package notify

import (
	"errors"

	"github.com/davide122/energy-sub000/utils"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// sendTwilio delivers via Twilio. WhatsApp uses the same API with a
// "whatsapp:" prefix on both numbers.
func (d *Dispatcher) sendTwilio(recipient, body string, whatsapp bool) error {
	if d.twilioClient == nil {
		return errors.New("twilio not configured (TWILIO_ACCOUNT_SID unset)")
	}
	if d.twilioFrom == "" {
		return errors.New("TWILIO_FROM_NUMBER not configured")
	}
	if err := utils.ValidatePhoneNumber(recipient, utils.CountryCode); err != nil {
		return err
	}

	to, from := recipient, d.twilioFrom
	if whatsapp {
		to = "whatsapp:" + to
		from = "whatsapp:" + from
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	_, err := d.twilioClient.Api.CreateMessage(params)
	return err
}
