package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// Enabled reports whether SMTP is configured.
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != ""
}

// ReceiptLine is one line item on an emailed receipt.
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice int64
	Total     int64
}

// ReceiptData is the payload rendered into the settlement receipt email.
type ReceiptData struct {
	BillNumber     string
	PatientName    string
	Lines          []ReceiptLine
	Subtotal       int64
	TaxAmount      int64
	DiscountAmount int64
	TotalAmount    int64
}

// SendSettlementReceipt emails a bill receipt after a successful settlement.
func (s *EmailService) SendSettlementReceipt(toEmail string, data *ReceiptData) error {
	htmlContent, err := s.renderReceipt(data)
	if err != nil {
		return fmt.Errorf("failed to render receipt template: %w", err)
	}

	subject := fmt.Sprintf("Receipt %s - PharmaCare", data.BillNumber)
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)
	return []byte(headers + htmlBody)
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>PharmaCare Receipt</h2>
	<p>Bill <strong>{{.BillNumber}}</strong>{{if .PatientName}} for {{.PatientName}}{{end}}</p>
	<table width="100%" cellpadding="6" style="border-collapse: collapse;">
		<tr style="background: #f4f4f4;">
			<th align="left">Item</th>
			<th align="right">Qty</th>
			<th align="right">Unit Price</th>
			<th align="right">Total</th>
		</tr>
		{{range .Lines}}
		<tr>
			<td>{{.Name}}</td>
			<td align="right">{{.Quantity}}</td>
			<td align="right">{{.UnitPrice}}</td>
			<td align="right">{{.Total}}</td>
		</tr>
		{{end}}
	</table>
	<p align="right">
		Subtotal: {{.Subtotal}}<br/>
		Tax: {{.TaxAmount}}<br/>
		Discount: {{.DiscountAmount}}<br/>
		<strong>Total: {{.TotalAmount}}</strong>
	</p>
</body>
</html>`))

// renderReceipt renders the receipt HTML body
func (s *EmailService) renderReceipt(data *ReceiptData) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
