package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"argocrm/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// convertHTMLToText converts HTML content to plain text for email sending
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	result := strings.ReplaceAll(text.String(), "\n\n\n", "\n\n")
	return strings.TrimSpace(result)
}

// EmailService sends reminder and notification mail over SMTP.
type EmailService struct {
	host     string
	port     string
	from     string
	username string
	password string
}

// NewEmailServiceFromEnv builds the service from SMTP_* environment
// variables. Returns nil when SMTP_HOST is unset so reminder jobs can
// skip mail quietly in environments without an SMTP relay.
func NewEmailServiceFromEnv() *EmailService {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		logrus.Info("SMTP_HOST not set, email reminders disabled")
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &EmailService{
		host:     host,
		port:     port,
		from:     os.Getenv("SMTP_FROM"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
	}
}

// SendQuoteFollowUpReminder mails the quote's sales person that a pending
// quote has gone quiet.
func (es *EmailService) SendQuoteFollowUpReminder(quote models.QuoteGorm, daysSinceActivity int) error {
	if quote.SalesPerson == nil || quote.SalesPerson.Email == nil {
		return nil
	}

	clientName := "the client"
	if quote.Client != nil {
		clientName = quote.Client.Name
	}

	subject := fmt.Sprintf("Follow-up due: %s", quote.ReferenceNumber)
	body := fmt.Sprintf(`<p>Quote <b>%s</b> for %s (%s %.2f) has had no activity for %d days.</p>
<p>Please follow up and record the outcome.</p>`,
		quote.ReferenceNumber, clientName, quote.Currency, quote.Value, daysSinceActivity)

	return es.sendEmail(*quote.SalesPerson.Email, subject, convertHTMLToText(body), nil, nil)
}

// SendDeliveryReminder mails the quote's sales person ahead of a delivery
// date on a won quote.
func (es *EmailService) SendDeliveryReminder(quote models.QuoteGorm) error {
	if quote.SalesPerson == nil || quote.SalesPerson.Email == nil || quote.DeliveryDate == nil {
		return nil
	}

	clientName := "the client"
	if quote.Client != nil {
		clientName = quote.Client.Name
	}

	subject := fmt.Sprintf("Delivery approaching: %s", quote.ReferenceNumber)
	body := fmt.Sprintf(`<p>Quote <b>%s</b> for %s is due for delivery on %s.</p>`,
		quote.ReferenceNumber, clientName, quote.DeliveryDate.Format("2006-01-02"))

	return es.sendEmail(*quote.SalesPerson.Email, subject, convertHTMLToText(body), nil, nil)
}

// sendEmail sends an email using SMTP with optional CC and BCC
func (es *EmailService) sendEmail(to, subject, body string, cc, bcc []string) error {
	auth := smtp.PlainAuth("", es.username, es.password, es.host)

	toList := []string{to}
	toList = append(toList, cc...)
	toList = append(toList, bcc...)

	headers := []string{
		"From: " + es.from,
		"To: " + to,
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	headers = append(headers,
		"Subject: "+subject,
		"",
		body,
	)

	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(es.host+":"+es.port, auth, es.from, toList, msg)
}
