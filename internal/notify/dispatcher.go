// Package notify formats alerts and delivers them to the session's
// configured channel. Delivery is best-effort: failures are logged and
// never surface to the code that triggered the notification.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
	"github.com/walkguardian/guardian-server-go/internal/model"
)

const deliveryTimeout = 5 * time.Second

// Event is one notification to push to an external channel. The in-memory
// log append has already happened by the time an Event reaches the
// dispatcher.
type Event struct {
	SessionID string
	Type      model.NotificationType
	Message   string
	Timestamp time.Time
	Contact   model.Contact
	Location  *model.Location
}

type Dispatcher struct {
	client   *http.Client
	ntfyBase string
}

func NewDispatcher(ntfyBaseURL string) *Dispatcher {
	return &Dispatcher{
		client: &http.Client{
			Timeout: deliveryTimeout,
		},
		ntfyBase: strings.TrimRight(ntfyBaseURL, "/"),
	}
}

// Dispatch sends the event to its contact channel without blocking the
// caller. Non-dispatchable contacts (phone, email) are informational only
// and produce no network traffic.
func (d *Dispatcher) Dispatch(ev Event) {
	if !ev.Contact.Type.Dispatchable() || ev.Contact.Value == "" {
		return
	}

	content := FormatMessage(ev)
	go d.deliver(ev, content)
}

func (d *Dispatcher) deliver(ev Event, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	start := time.Now()
	var err error
	switch ev.Contact.Type {
	case model.ContactDiscord:
		err = d.sendDiscord(ctx, ev.Contact.Value, content)
	case model.ContactNtfy:
		err = d.sendNtfy(ctx, ev.Contact.Value, ev.Type, content)
	}
	elapsed := time.Since(start)

	if err != nil {
		delivery := apperrors.DeliveryFailed(string(ev.Contact.Type), err)
		log.Error().
			Err(delivery).
			Str("session_id", ev.SessionID).
			Str("type", string(ev.Type)).
			Dur("elapsed", elapsed).
			Msg("notification delivery failed")
		return
	}

	log.Info().
		Str("session_id", ev.SessionID).
		Str("type", string(ev.Type)).
		Str("channel", string(ev.Contact.Type)).
		Dur("elapsed", elapsed).
		Msg("notification delivered")
}

// FormatMessage renders the human-readable channel message: an emoji keyed
// by the notification type, the event type and timestamp, the best-known
// location with a map link, then the message body.
func FormatMessage(ev Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s WalkGuardian: %s\n", typeEmoji(ev.Type), ev.Type)
	fmt.Fprintf(&b, "Time: %s\n", ev.Timestamp.Format(time.RFC1123))

	if ev.Location != nil {
		fmt.Fprintf(&b, "Location: %.5f, %.5f\n", ev.Location.Lat, ev.Location.Lng)
		fmt.Fprintf(&b, "Map: https://www.openstreetmap.org/?mlat=%.5f&mlon=%.5f\n", ev.Location.Lat, ev.Location.Lng)
	}

	b.WriteString(ev.Message)
	return b.String()
}

func typeEmoji(t model.NotificationType) string {
	switch {
	case strings.HasPrefix(string(t), "DANGER"):
		return "🚨"
	case t == model.NotificationSessionStarted:
		return "🚶"
	case t == model.NotificationSessionStopped:
		return "✅"
	default:
		return "ℹ️"
	}
}
