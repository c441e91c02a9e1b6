package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// MessageCreator часть клиента Twilio, которая нужна для SMS
type MessageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// SMSChannel отправка SMS через Twilio
type SMSChannel struct {
	api  MessageCreator
	from string
}

func NewSMSChannel(accountSID, authToken, from string) *SMSChannel {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSChannel{api: client.Api, from: from}
}

func (c *SMSChannel) Kind() model.NotificationChannel {
	return model.NotificationChannelSMS
}

func (c *SMSChannel) Recipient(account *model.Account) (string, bool) {
	return account.Phone, account.Phone != ""
}

func (c *SMSChannel) Send(_ context.Context, to string, msg Message) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(smsBody(msg))

	if _, err := c.api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

func smsBody(msg Message) string {
	if msg.Subject == "" {
		return msg.Body
	}
	return msg.Subject + ": " + msg.Body
}
