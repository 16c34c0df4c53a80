package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"reserva-go/internal/config"
	"reserva-go/internal/queue"
	"reserva-go/pkg/logger"
)

// Sender delivers one text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// TwilioSender prefers WhatsApp for numbers in international E.164 form and
// falls back to plain SMS for everything else.
type TwilioSender struct {
	client   *twilio.RestClient
	whatsApp string
	sms      string
}

func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		whatsApp: cfg.WhatsAppNumber,
		sms:      cfg.PhoneNumber,
	}
}

func (s *TwilioSender) Send(ctx context.Context, phone, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(message)
	if strings.HasPrefix(phone, "+") && s.whatsApp != "" {
		params.SetTo("whatsapp:" + phone)
		params.SetFrom("whatsapp:" + s.whatsApp)
	} else {
		params.SetTo(phone)
		params.SetFrom(s.sms)
	}
	_, err := s.client.Api.CreateMessage(params)
	return err
}

// EventNotifier turns queue events into guest-facing messages.
type EventNotifier struct {
	sender Sender
	log    logger.Logger
}

func NewEventNotifier(sender Sender, log logger.Logger) *EventNotifier {
	return &EventNotifier{sender: sender, log: log}
}

func (n *EventNotifier) HandleReservationEvent(ctx context.Context, ev queue.Event) error {
	if ev.Phone == "" {
		return nil
	}
	var msg string
	switch ev.Type {
	case queue.TypeConfirmed:
		msg = fmt.Sprintf(
			"¡Hola %s! Tu reserva en %s (%s) para el %s quedó confirmada. Código: %s. Presenta tu QR al llegar.",
			firstName(ev.FullName), ev.UnitName, ev.AreaName,
			ev.ReservationDate.Format("02/01/2006 15:04"), ev.ReservationCode,
		)
	case queue.TypeCheckedIn:
		msg = fmt.Sprintf("¡Bienvenido %s! Registramos tu llegada a %s. Que lo disfrutes.",
			firstName(ev.FullName), ev.UnitName)
	case queue.TypeCancelled:
		msg = fmt.Sprintf("Hola %s, tu reserva %s en %s fue cancelada. Esperamos verte pronto.",
			firstName(ev.FullName), ev.ReservationCode, ev.UnitName)
	default:
		n.log.Warn("notify: unknown event type", "type", ev.Type)
		return nil
	}
	return n.sender.Send(ctx, ev.Phone, msg)
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
