package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
	"github.com/walkguardian/guardian-server-go/internal/model"
	"github.com/walkguardian/guardian-server-go/internal/service"
)

const timeFormat = time.RFC3339

type SessionHandler struct {
	sessions   *service.SessionService
	escalation *service.EscalationService
}

func NewSessionHandler(sessions *service.SessionService, escalation *service.EscalationService) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		escalation: escalation,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/start", h.StartSession)
	r.Post("/location", h.UpdateLocation)
	r.Post("/audio-text", h.AudioText)
	r.Post("/stop", h.StopSession)
	r.Get("/status", h.GetStatus)
	r.Get("/notifications", h.GetNotifications)

	return r
}

type startSessionRequest struct {
	Profile       model.Profile  `json:"profile"`
	StartLocation model.Location `json:"start_location"`
	Destination   string         `json:"destination"`
	Contact       model.Contact  `json:"contact"`
	AudioEnabled  bool           `json:"audio_enabled"`
}

// POST /api/session/start
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	if req.Destination == "" {
		writeError(w, apperrors.MissingRequired("destination"))
		return
	}
	if err := validateCoordinates(req.StartLocation.Lat, req.StartLocation.Lng); err != nil {
		writeError(w, err)
		return
	}
	if !req.Contact.Type.Valid() {
		writeError(w, apperrors.InvalidInput("contact.type", "must be one of phone, email, discord, ntfy"))
		return
	}
	if req.Contact.Value == "" {
		writeError(w, apperrors.MissingRequired("contact.value"))
		return
	}

	sess, err := h.sessions.Create(r.Context(), service.CreateSessionParams{
		Profile:       req.Profile,
		StartLocation: req.StartLocation,
		Destination:   req.Destination,
		Contact:       req.Contact,
		AudioEnabled:  req.AudioEnabled,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"status":     statusString(sess.IsActive),
		"risk":       sess.Risk,
	})
}

type locationUpdateRequest struct {
	SessionID string  `json:"session_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp *string `json:"timestamp,omitempty"`
}

// POST /api/session/location
func (h *SessionHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	if req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("session_id"))
		return
	}
	if err := validateCoordinates(req.Lat, req.Lng); err != nil {
		writeError(w, err)
		return
	}

	var reportedAt *time.Time
	if req.Timestamp != nil {
		parsed, err := time.Parse(timeFormat, *req.Timestamp)
		if err != nil {
			writeError(w, apperrors.InvalidInput("timestamp", "must be RFC3339"))
			return
		}
		reportedAt = &parsed
	}

	sess, err := h.sessions.UpdateLocation(r.Context(), req.SessionID, req.Lat, req.Lng, reportedAt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusString(sess.IsActive),
		"risk":   sess.Risk,
	})
}

type audioTextRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// POST /api/session/audio-text
func (h *SessionHandler) AudioText(w http.ResponseWriter, r *http.Request) {
	var req audioTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	if req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("session_id"))
		return
	}
	if req.Text == "" {
		writeError(w, apperrors.MissingRequired("text"))
		return
	}

	verdict, err := h.escalation.ProcessTranscript(r.Context(), req.SessionID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

type stopSessionRequest struct {
	SessionID string `json:"session_id"`
}

// POST /api/session/stop
func (h *SessionHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	var req stopSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	if req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("session_id"))
		return
	}

	sess, err := h.sessions.Stop(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"status":     statusString(sess.IsActive),
		"risk":       sess.Risk,
	})
}

// GET /api/session/status?session_id=
func (h *SessionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, apperrors.MissingRequired("session_id"))
		return
	}

	sess, err := h.sessions.Snapshot(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, formatStatus(sess))
}

// GET /api/session/notifications?session_id=
func (h *SessionHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, apperrors.MissingRequired("session_id"))
		return
	}

	notifications, err := h.sessions.Notifications(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
	})
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return apperrors.InvalidInput("lat", "must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return apperrors.InvalidInput("lng", "must be between -180 and 180")
	}
	return nil
}
