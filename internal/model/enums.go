package model

type RiskLevel string

const (
	RiskSafe   RiskLevel = "SAFE"
	RiskDanger RiskLevel = "DANGER"
)

type ContactType string

const (
	ContactPhone   ContactType = "phone"
	ContactEmail   ContactType = "email"
	ContactDiscord ContactType = "discord"
	ContactNtfy    ContactType = "ntfy"
)

// Dispatchable reports whether the contact can receive pushed messages.
// Phone and email are informational only.
func (t ContactType) Dispatchable() bool {
	return t == ContactDiscord || t == ContactNtfy
}

func (t ContactType) Valid() bool {
	switch t {
	case ContactPhone, ContactEmail, ContactDiscord, ContactNtfy:
		return true
	}
	return false
}

type NotificationType string

const (
	NotificationSessionStarted NotificationType = "SESSION_STARTED"
	NotificationSessionStopped NotificationType = "SESSION_STOPPED"
	NotificationDangerAudio    NotificationType = "DANGER_AUDIO"
	NotificationDangerMedical  NotificationType = "DANGER_MEDICAL"
	NotificationLocationStale  NotificationType = "LOCATION_STALE"
)
