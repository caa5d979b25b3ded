package utils

import (
	"fmt"
	"os"

	"github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"crosspay_back/models"
)

// MailNotifier шлёт письмо о подтверждённом переводе: сначала Mailjet,
// при отсутствии ключей — SMTP. Доставка best-effort, перевод от неё не зависит
type MailNotifier struct {
	FromEmail string
	ToEmail   string
	SMTPHost  string
	SMTPPort  int
}

func NewMailNotifier(fromEmail, toEmail, smtpHost string, smtpPort int) *MailNotifier {
	return &MailNotifier{
		FromEmail: fromEmail,
		ToEmail:   toEmail,
		SMTPHost:  smtpHost,
		SMTPPort:  smtpPort,
	}
}

func (n *MailNotifier) TransferConfirmed(tx models.Transaction) {
	subject := "Перевод подтверждён"
	hash := ""
	if tx.TxHash != nil {
		hash = *tx.TxHash
	}
	body := fmt.Sprintf(`<body style="margin:0;padding:0;background:#f6f6f6;">
  <table width="100%%" cellpadding="0" cellspacing="0" border="0" style="max-width:600px;background:#f3f2f0;border-radius:28px;">
    <tr>
      <td style="padding:32px;text-align:left;">
        <h1 style="margin:0 0 12px 0;font-family:Arial,sans-serif;font-size:28px;color:#111;">Перевод подтверждён</h1>
        <table cellpadding="0" cellspacing="0" border="0" style="width:100%%;">
          <tr>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#555;padding:6px 0;">Кошелёк:</td>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#111;font-weight:bold;padding:6px 0;">%d</td>
          </tr>
          <tr>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#555;padding:6px 0;">Получатель:</td>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
          </tr>
          <tr>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#555;padding:6px 0;">Сумма:</td>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
          </tr>
          <tr>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#555;padding:6px 0;">Хэш:</td>
            <td style="font-family:Arial,sans-serif;font-size:16px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>`, tx.WalletID, tx.ToAddress, tx.Value.String(), hash)

	apiKey := os.Getenv("MAILJET_API_KEY")
	secretKey := os.Getenv("MAILJET_SECRET_KEY")
	if apiKey != "" && secretKey != "" {
		n.sendMailjet(apiKey, secretKey, subject, body)
		return
	}
	n.sendSMTP(subject, body)
}

func (n *MailNotifier) sendMailjet(apiKey, secretKey, subject, body string) {
	mj := mailjet.NewMailjetClient(apiKey, secretKey)
	messagesInfo := []mailjet.InfoMessagesV31{
		{
			From: &mailjet.RecipientV31{
				Email: n.FromEmail,
				Name:  "CrossPay",
			},
			To: &mailjet.RecipientsV31{
				{
					Email: n.ToEmail,
					Name:  "Получатель",
				},
			},
			Subject:  subject,
			HTMLPart: body,
		},
	}
	messages := &mailjet.MessagesV31{Info: messagesInfo}
	if _, err := mj.SendMailV31(messages); err != nil {
		logrus.Errorf("Ошибка при отправке письма через Mailjet: %s", err)
		return
	}
	logrus.Info("Письмо о подтверждении перевода отправлено через Mailjet")
}

func (n *MailNotifier) sendSMTP(subject, body string) {
	password := os.Getenv("SMTP_APP_PASSWORD")
	if password == "" {
		logrus.Info("Почтовые ключи не настроены, уведомление пропущено")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.FromEmail)
	m.SetHeader("To", n.ToEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.SMTPHost, n.SMTPPort, n.FromEmail, password)
	if err := d.DialAndSend(m); err != nil {
		logrus.Errorf("Ошибка при отправке письма: %s", err)
		return
	}
	logrus.Info("Письмо о подтверждении перевода отправлено")
}
