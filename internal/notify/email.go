package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// EmailChannel отправка писем через SendGrid
type EmailChannel struct {
	key  string
	host string
	from *sgmail.Email
}

func NewEmailChannel(key, fromName, fromEmail string) *EmailChannel {
	return &EmailChannel{
		key:  key,
		host: sendgridHost,
		from: sgmail.NewEmail(fromName, fromEmail),
	}
}

func (c *EmailChannel) Kind() model.NotificationChannel {
	return model.NotificationChannelEmail
}

func (c *EmailChannel) Recipient(account *model.Account) (string, bool) {
	return account.Email, account.Email != ""
}

func (c *EmailChannel) Send(_ context.Context, to string, msg Message) error {
	req := sendgrid.GetRequest(c.key, sendgridEndpoint, c.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(c.prepare(to, msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send email: status %d: %s", res.StatusCode, res.Body)
	}

	return nil
}

func (c *EmailChannel) prepare(to string, msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", to))

	m := sgmail.NewV3Mail()
	m.SetFrom(c.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))

	return m
}
