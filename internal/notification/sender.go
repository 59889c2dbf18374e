// Package notification delivers email notifications for lead events to
// the sales inbox.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, toEmail, subject, htmlContent string) error
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender with the given credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers one HTML email.
func (s *SMTPSender) Send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

var leadCapturedTmpl = template.Must(template.New("lead_captured").Parse(`
<h2>New lead: {{.Name}}</h2>
<p>A new inquiry just came in.</p>
<ul>
	<li>Phone: {{.Phone}}</li>
	{{if .Email}}<li>Email: {{.Email}}</li>{{end}}
	{{if .Source}}<li>Source: {{.Source}}</li>{{end}}
	{{if .PartnerAttributed}}<li>Referred by a channel partner</li>{{end}}
</ul>
`))

var followUpReminderTmpl = template.Must(template.New("follow_up_reminder").Parse(`
<h2>Follow-up due: {{.LeadName}}</h2>
<p>A {{.Type}} follow-up is scheduled for {{.ScheduledAt}}.</p>
<ul>
	<li>Lead: {{.LeadName}}</li>
	<li>Phone: {{.LeadPhone}}</li>
</ul>
`))

type leadCapturedData struct {
	Name              string
	Phone             string
	Email             string
	Source            string
	PartnerAttributed bool
}

type followUpReminderData struct {
	LeadName    string
	LeadPhone   string
	Type        string
	ScheduledAt string
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return buf.String(), nil
}
