// Package notify sends transactional email.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

const subjectPrefix = "[AgriLearn] "

// Message is a plain text email
type Message struct {
	ToName  string
	To      string
	Subject string
	Text    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridMailer struct {
	key  string
	from *sgmail.Email
	log  *logger.Logger
}

// NewSendgridMailer sends through the SendGrid v3 API
func NewSendgridMailer(apiKey, from string, log *logger.Logger) Mailer {
	return &sendgridMailer{
		key:  apiKey,
		from: sgmail.NewEmail("AgriLearn", from),
		log:  log.With("service", "SendgridMailer"),
	}
}

func (m *sendgridMailer) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(m.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}
	m.log.Debug("email sent", "subject", msg.Subject)
	return nil
}

func (m *sendgridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = subjectPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	return v3
}

type logMailer struct {
	log *logger.Logger
}

// NewLogMailer logs messages instead of sending them
func NewLogMailer(log *logger.Logger) Mailer {
	return &logMailer{log: log.With("service", "LogMailer")}
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email", "to", msg.To, "subject", subjectPrefix+msg.Subject)
	return nil
}

// DonationDecision is the message telling an applicant about an investor's review
func DonationDecision(applicantName, email, projectTitle, status, notes string) Message {
	var b strings.Builder
	name := applicantName
	if name == "" {
		name = "applicant"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Your funding application %q has been %s.\n\n", projectTitle, status)
	if notes != "" {
		fmt.Fprintf(&b, "Reviewer notes:\n%s\n\n", notes)
	}
	b.WriteString("Thank you for growing with AgriLearn.\n")

	return Message{
		ToName:  applicantName,
		To:      email,
		Subject: "Application " + status,
		Text:    b.String(),
	}
}
