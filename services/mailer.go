package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/ordering"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var templateFuncs = template.FuncMap{"money": utils.FormatCurrency}

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(templateFuncs).Parse(
	`<p>Hello, your order <strong>{{.Reference}}</strong> for table {{.TableNumber}} has been confirmed.</p>
<ul>{{range .Items}}<li>{{.Quantity}} × {{.Name}} ({{money .Subtotal}})</li>{{end}}</ul>
<p>Total paid: <strong>{{money .Total}}</strong> (payment {{.PaymentID}})</p>`))

var bookingConfirmationTmpl = template.Must(template.New("booking").Parse(
	`<p>Your table is booked.</p>
<p>Table {{.Table.Number}} on {{.ReservationDate}} at {{.ReservationTime}} for {{.Guests}} guests ({{.DurationMinutes}} minutes).</p>
{{if .SpecialRequests}}<p>Special requests: {{.SpecialRequests}}</p>{{end}}`))

// RenderOrderConfirmation renders the HTML body of an order confirmation.
func RenderOrderConfirmation(c ordering.Confirmation) (string, error) {
	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderBookingConfirmation renders the HTML body of a booking confirmation.
func RenderBookingConfirmation(r models.Reservation) (string, error) {
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Sender delivers one message. gomail's dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends order and booking confirmations over SMTP. Without an SMTP host it
// only logs what it would have sent.
type Mailer struct {
	sender Sender
	from   string
	log    *logrus.Logger
}

func NewMailer(host string, port int, user, pass, from string, log *logrus.Logger) *Mailer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Mailer{from: from, log: log}
	if host != "" {
		m.sender = gomail.NewDialer(host, port, user, pass)
	}
	return m
}

// NewMailerWithSender is used by tests and alternative transports.
func NewMailerWithSender(sender Sender, from string, log *logrus.Logger) *Mailer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mailer{sender: sender, from: from, log: log}
}

func (m *Mailer) send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("missing recipient for %q", subject)
	}
	if m.sender == nil {
		m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("SMTP not configured, email skipped")
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	return nil
}

func (m *Mailer) SendOrderConfirmation(_ context.Context, to string, c ordering.Confirmation) error {
	body, err := RenderOrderConfirmation(c)
	if err != nil {
		return err
	}
	return m.send(to, "Order Confirmation "+c.Reference, body)
}

func (m *Mailer) SendBookingConfirmation(_ context.Context, to string, r models.Reservation) error {
	body, err := RenderBookingConfirmation(r)
	if err != nil {
		return err
	}
	return m.send(to, "Table Booking Confirmation", body)
}
