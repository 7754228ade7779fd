package app

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"

	"comlab_tool/config"
)

// SendInvite mails the registration link. Without SMTP settings the link is
// only logged.
func SendInvite(conf config.SMTPConfig, toEmail, link string, expiresDays int) error {
	if !conf.Enabled() {
		log.Info().Str("email", toEmail).Str("url", link).Int("expiresDays", expiresDays).
			Msg("smtp not configured; invite link logged only")
		return nil
	}
	fromAddr := conf.From
	if fromAddr == "" {
		fromAddr = conf.Username
	}

	subject := fmt.Sprintf("%s Invitation", conf.AppName)
	body := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello,</p>
  <p>You have been invited to <b>%s</b>. Open the link below to create your passkey and sign in:</p>
  <p><a href="%s">%s</a></p>
  <p>This invitation expires in %d day(s).</p>
  <hr/>
  <p style="color:#666">If you did not expect this email, you can ignore it.</p>
</div>
`, conf.AppName, link, link, expiresDays)

	msg := buildMIME(conf.AppName, fromAddr, toEmail, subject, body)
	auth := smtp.PlainAuth("", conf.Username, conf.Password, conf.Host)
	return smtp.SendMail(conf.Host+":"+conf.Port, auth, fromAddr, []string{toEmail}, []byte(msg))
}

func buildMIME(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}
