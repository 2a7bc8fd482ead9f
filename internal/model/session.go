package model

import "time"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Contact struct {
	Type  ContactType `json:"type"`
	Value string      `json:"value"`
}

// Profile carries the walker's identity and medical details. It is immutable
// after session creation and only used to enrich alert content.
type Profile struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Age         *int   `json:"age,omitempty"`
	Diseases    string `json:"diseases,omitempty"`
	Allergies   string `json:"allergies,omitempty"`
	Medications string `json:"medications,omitempty"`
}

func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

type Notification struct {
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// Session is the unit of monitoring: one walk from start to stop. Values of
// this type returned by the registry are snapshots; mutating them has no
// effect on the registry's state.
type Session struct {
	ID               string         `json:"session_id"`
	IsActive         bool           `json:"is_active"`
	Risk             RiskLevel      `json:"risk"`
	NotificationSent bool           `json:"notification_sent"`
	Profile          Profile        `json:"profile"`
	StartLocation    Location       `json:"start_location"`
	CurrentLocation  *Location      `json:"current_location,omitempty"`
	Destination      string         `json:"destination"`
	Contact          Contact        `json:"contact"`
	AudioEnabled     bool           `json:"audio_enabled"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Notifications    []Notification `json:"notifications"`
}

// BestLocation returns the last reported position, falling back to the start
// location when no update has arrived yet.
func (s *Session) BestLocation() Location {
	if s.CurrentLocation != nil {
		return *s.CurrentLocation
	}
	return s.StartLocation
}
