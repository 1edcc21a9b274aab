package notify

import (
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/Freeeeeet/makeup_scheduler/internal/events"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	SubjectBooked    = "Makeup Class Alert"
	SubjectCancelled = "Makeup Class Cancelled - Action Required"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// sender is the part of *mail.Client the notifier uses
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Email sends one message per student, plain text with an HTML alternative
type Email struct {
	client sender
	from   string
	now    func() time.Time
	logger *zap.Logger
}

func NewEmail(cfg SMTPConfig, logger *zap.Logger) (*Email, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return newEmail(client, cfg.Username, logger), nil
}

func newEmail(client sender, from string, logger *zap.Logger) *Email {
	return &Email{client: client, from: from, now: time.Now, logger: logger}
}

type emailData struct {
	CourseName string
	Day        string
	Start      string
	End        string
	Room       string
	Year       int
}

func (e *Email) Notify(ctx context.Context, ev events.Makeup) error {
	if len(ev.Recipients) == 0 {
		return nil
	}

	subject, name := SubjectBooked, "booked"
	if ev.Cancelled() {
		subject, name = SubjectCancelled, "cancelled"
	}

	data := emailData{
		CourseName: ev.Makeup.CourseName,
		Day:        string(ev.Makeup.Day),
		Start:      fmt.Sprintf("%02d:00", ev.Makeup.Slot.Start),
		End:        fmt.Sprintf("%02d:00", ev.Makeup.Slot.End),
		Room:       ev.Makeup.Room,
		Year:       e.now().Year(),
	}

	var (
		msgs   []*mail.Msg
		failed []string
		errs   []error
	)
	for _, to := range ev.Recipients {
		msg, err := e.message(to, subject, name, data)
		if err != nil {
			failed = append(failed, to)
			errs = append(errs, err)
			continue
		}
		msgs = append(msgs, msg)
	}

	if len(msgs) > 0 {
		sendErr := e.client.DialAndSendWithContext(ctx, msgs...)
		for _, msg := range msgs {
			// a dial failure leaves no per-message error, so every message counts as failed
			if sendErr != nil && (msg.HasSendError() || !anySendError(msgs)) {
				to, _ := msg.GetRecipients()
				failed = append(failed, to...)
			}
		}
		if sendErr != nil {
			errs = append(errs, sendErr)
		}
	}

	if len(failed) > 0 {
		e.logger.Error("Failed to send makeup emails",
			zap.String("event_id", ev.ID),
			zap.Strings("failed", failed),
			zap.Int("total", len(ev.Recipients)),
		)
		return &DeliveryError{Failed: failed, Err: errors.Join(errs...)}
	}

	e.logger.Info("Makeup emails sent",
		zap.String("event_id", ev.ID),
		zap.String("subject", subject),
		zap.Int("recipients", len(ev.Recipients)),
	)
	return nil
}

func (e *Email) message(to, subject, name string, data emailData) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(e.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient %s: %w", to, err)
	}
	msg.Subject(subject)

	if err := msg.SetBodyTextTemplate(textTemplates.Lookup(name+".txt.tmpl"), data); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	if err := msg.AddAlternativeHTMLTemplate(htmlTemplates.Lookup(name+".html.tmpl"), data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	return msg, nil
}

func anySendError(msgs []*mail.Msg) bool {
	for _, m := range msgs {
		if m.HasSendError() {
			return true
		}
	}
	return false
}
