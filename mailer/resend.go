/*
Package mailer relays contact-form submissions through the Resend
transactional email API.
*/
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ContactMessage is one validated contact-form submission
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// emailTemplate renders the contact email body. html/template escapes the
// user-supplied fields.
var emailTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #667eea; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
    .content { background: #f9f9f9; padding: 20px; border-radius: 0 0 8px 8px; }
    .info-box { background: white; padding: 15px; border-radius: 6px; margin: 10px 0; }
    .message-box { background: white; padding: 15px; border-radius: 6px; border-left: 4px solid #667eea; }
    .footer { color: #666; font-size: 12px; margin-top: 20px; text-align: center; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1 style="margin: 0;">New Contact Message</h1>
      <p style="margin: 5px 0 0 0;">From your portfolio website</p>
    </div>
    <div class="content">
      <div class="info-box">
        <h3 style="margin-top: 0;">Contact Details:</h3>
        <p><strong>Name:</strong> {{.Name}}</p>
        <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
        <p><strong>Subject:</strong> {{.Subject}}</p>
      </div>
      <div class="message-box">
        <h3 style="margin-top: 0;">Message:</h3>
        <p style="white-space: pre-wrap;">{{.Message}}</p>
      </div>
      <div class="footer">
        <p>You can reply directly to this email to respond to {{.Name}}</p>
        <p>This email was automatically generated from your portfolio contact form</p>
      </div>
    </div>
  </div>
</body>
</html>`))

// ResendMailer sends contact messages to a fixed recipient via Resend
type ResendMailer struct {
	client    *resend.Client
	from      string
	recipient string
	logger    *logrus.Logger
}

// NewResendMailer creates a mailer using the given API key
func NewResendMailer(apiKey, from, recipient string, logger *logrus.Logger) *ResendMailer {
	return &ResendMailer{
		client:    resend.NewClient(apiKey),
		from:      from,
		recipient: recipient,
		logger:    logger,
	}
}

// Send relays one contact message and returns the provider message ID
func (m *ResendMailer) Send(ctx context.Context, msg ContactMessage) (string, error) {
	html, err := RenderBody(msg)
	if err != nil {
		return "", fmt.Errorf("failed to render email body: %v", err)
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{m.recipient},
		ReplyTo: msg.Email,
		Subject: "Portfolio Contact: " + msg.Subject,
		Html:    html,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("resend API error: %v", err)
	}

	m.logger.WithFields(logrus.Fields{
		"message_id": sent.Id,
		"reply_to":   msg.Email,
	}).Info("Contact email relayed successfully")

	return sent.Id, nil
}

// RenderBody renders the HTML email body for a contact message
func RenderBody(msg ContactMessage) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
