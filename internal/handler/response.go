package handler

import (
	"net/http"

	"github.com/walkguardian/guardian-server-go/internal/httputil"
	"github.com/walkguardian/guardian-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func statusString(isActive bool) string {
	if isActive {
		return "ACTIVE"
	}
	return "FINISHED"
}

// sessionStatusResponse is the snapshot view returned by the status endpoint.
type sessionStatusResponse struct {
	SessionID       string          `json:"session_id"`
	IsActive        bool            `json:"is_active"`
	Status          string          `json:"status"`
	Risk            model.RiskLevel `json:"risk"`
	StartLocation   model.Location  `json:"start_location"`
	CurrentLocation *model.Location `json:"current_location,omitempty"`
	Destination     string          `json:"destination"`
	AudioEnabled    bool            `json:"audio_enabled"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func formatStatus(sess model.Session) sessionStatusResponse {
	return sessionStatusResponse{
		SessionID:       sess.ID,
		IsActive:        sess.IsActive,
		Status:          statusString(sess.IsActive),
		Risk:            sess.Risk,
		StartLocation:   sess.StartLocation,
		CurrentLocation: sess.CurrentLocation,
		Destination:     sess.Destination,
		AudioEnabled:    sess.AudioEnabled,
		CreatedAt:       sess.CreatedAt.Format(timeFormat),
		UpdatedAt:       sess.UpdatedAt.Format(timeFormat),
	}
}
