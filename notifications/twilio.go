package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSink texts the shop owner when a service is completed. Numbers may
// carry the "whatsapp:" prefix to use the WhatsApp channel.
type TwilioSink struct {
	api      messageCreator
	from     string
	to       string
	currency string
	loc      *time.Location
}

func NewTwilioSink(accountSID, authToken, from, to, currency string, loc *time.Location) *TwilioSink {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSink{api: client.Api, from: from, to: to, currency: currency, loc: loc}
}

func (s *TwilioSink) Name() string { return "twilio" }

func (s *TwilioSink) Send(ctx context.Context, p Payload) error {
	return s.SendText(ctx, p.Message(s.currency, s.loc))
}

// SendText delivers an arbitrary body to the configured recipient.
func (s *TwilioSink) SendText(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp == nil || resp.Sid == nil {
		return fmt.Errorf("twilio send: no message sid returned")
	}
	return nil
}
