package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/sprint-lab/scrumdesk/pkg/config"
	"github.com/sprint-lab/scrumdesk/pkg/logutils"
)

// Mailer sends transactional mail (team invites, password resets). When SMTP
// is not configured the mailer degrades to logging the message, so local
// development does not need a mail server.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New() *Mailer {
	smtpConfig := config.GetConfig().SMTP
	if smtpConfig.Host == "" {
		return &Mailer{}
	}
	return &Mailer{
		dialer: gomail.NewDialer(smtpConfig.Host, smtpConfig.Port, smtpConfig.User, smtpConfig.Password),
		from:   smtpConfig.From,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	if m.dialer == nil {
		logutils.Log.Infof("smtp not configured, skip mail to %s: %s", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

// SendInvite mails the initial credential to a newly invited team member.
func (m *Mailer) SendInvite(to, password string) error {
	body := fmt.Sprintf(
		"You have been invited to Scrumdesk.\n\nSign in with this email address and the temporary password: %s\n\nPlease change it after your first login.",
		password)
	return m.Send(to, "You have been invited to Scrumdesk", body)
}

// SendPasswordReset mails a reset token to the account owner.
func (m *Mailer) SendPasswordReset(to, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset token: %s\n\nThe token expires in one hour. If you did not request this, ignore this mail.",
		token)
	return m.Send(to, "Scrumdesk password reset", body)
}
