package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// EmailSender mails alerts to a fixed recipient list through SendGrid.
type EmailSender struct {
	key        string
	from       *sgmail.Email
	to         []string
	subjPrefix string
	api        func(rest.Request) (*rest.Response, error)
}

// NewEmailSender builds a SendGrid-backed sink.
func NewEmailSender(key, appName, fromEmail string, recipients []string) *EmailSender {
	return &EmailSender{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		to:         recipients,
		subjPrefix: "[" + appName + "] ",
		api:        sendgrid.API,
	}
}

// Name implements Sink.
func (s *EmailSender) Name() string { return "sendgrid" }

// Send implements Sink.
func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if len(s.to) == 0 {
		return nil
	}
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := s.api(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (s *EmailSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	for _, addr := range s.to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return m
}
