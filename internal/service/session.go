package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
	"github.com/walkguardian/guardian-server-go/internal/model"
	"github.com/walkguardian/guardian-server-go/internal/notify"
	"github.com/walkguardian/guardian-server-go/internal/transcript"
)

// session is a live registry entry. All mutable fields are guarded by mu;
// the transcript buffer carries its own finer-grained lock.
type session struct {
	mu         sync.Mutex
	data       model.Session
	transcript *transcript.Buffer
}

// snapshotLocked copies the session record. Callers must hold s.mu.
func (s *session) snapshotLocked() model.Session {
	snap := s.data
	if s.data.CurrentLocation != nil {
		loc := *s.data.CurrentLocation
		snap.CurrentLocation = &loc
	}
	snap.Notifications = make([]model.Notification, len(s.data.Notifications))
	copy(snap.Notifications, s.data.Notifications)
	return snap
}

// SessionService is the registry of live walk sessions: a concurrent map of
// session id to state, each entry independently synchronized so unrelated
// sessions never contend. Sessions are kept for the process lifetime;
// stopping only clears is_active.
type SessionService struct {
	mu                 sync.RWMutex
	sessions           map[string]*session
	dispatcher         *notify.Dispatcher
	transcriptCapacity int
}

func NewSessionService(dispatcher *notify.Dispatcher, transcriptCapacity int) *SessionService {
	return &SessionService{
		sessions:           make(map[string]*session),
		dispatcher:         dispatcher,
		transcriptCapacity: transcriptCapacity,
	}
}

type CreateSessionParams struct {
	Profile       model.Profile
	StartLocation model.Location
	Destination   string
	Contact       model.Contact
	AudioEnabled  bool
}

// Create registers a fresh session with risk SAFE and an empty transcript
// and notification log, then fires the SESSION_STARTED notification.
func (s *SessionService) Create(ctx context.Context, params CreateSessionParams) (model.Session, error) {
	now := time.Now().UTC()
	startLoc := params.StartLocation

	sess := &session{
		data: model.Session{
			ID:              uuid.NewString(),
			IsActive:        true,
			Risk:            model.RiskSafe,
			Profile:         params.Profile,
			StartLocation:   params.StartLocation,
			CurrentLocation: &startLoc,
			Destination:     params.Destination,
			Contact:         params.Contact,
			AudioEnabled:    params.AudioEnabled,
			CreatedAt:       now,
			UpdatedAt:       now,
			Notifications:   make([]model.Notification, 0, 8),
		},
		transcript: transcript.NewBuffer(s.transcriptCapacity),
	}

	s.mu.Lock()
	s.sessions[sess.data.ID] = sess
	s.mu.Unlock()

	log.Info().
		Str("session_id", sess.data.ID).
		Str("destination", params.Destination).
		Bool("audio_enabled", params.AudioEnabled).
		Msg("session started")

	s.Notify(ctx, sess.data.ID, model.NotificationSessionStarted,
		fmt.Sprintf("%s started a monitored walk to %s.", sess.data.Profile.FullName(), params.Destination))

	return s.Snapshot(ctx, sess.data.ID)
}

// Snapshot returns a read-only copy of the session's current state.
func (s *SessionService) Snapshot(_ context.Context, sessionID string) (model.Session, error) {
	sess := s.lookup(sessionID)
	if sess == nil {
		return model.Session{}, apperrors.SessionNotFound(sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// UpdateLocation overwrites the session's current position. Risk is not
// touched. The reported timestamp, when present, becomes the update time.
func (s *SessionService) UpdateLocation(_ context.Context, sessionID string, lat, lng float64, reportedAt *time.Time) (model.Session, error) {
	sess := s.lookup(sessionID)
	if sess == nil {
		return model.Session{}, apperrors.SessionNotFound(sessionID)
	}

	when := time.Now().UTC()
	if reportedAt != nil {
		when = reportedAt.UTC()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.data.CurrentLocation = &model.Location{Lat: lat, Lng: lng}
	sess.data.UpdatedAt = when
	return sess.snapshotLocked(), nil
}

// Stop marks the session inactive and fires a SESSION_STOPPED notification.
// Stop is intentionally not idempotent: a second call fires the notification
// again, matching the registry's append-only policy.
func (s *SessionService) Stop(ctx context.Context, sessionID string) (model.Session, error) {
	sess := s.lookup(sessionID)
	if sess == nil {
		return model.Session{}, apperrors.SessionNotFound(sessionID)
	}

	sess.mu.Lock()
	sess.data.IsActive = false
	sess.data.UpdatedAt = time.Now().UTC()
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	log.Info().Str("session_id", sessionID).Msg("session stopped")

	s.Notify(ctx, sessionID, model.NotificationSessionStopped,
		fmt.Sprintf("%s finished the walk.", snap.Profile.FullName()))

	return snap, nil
}

// Notifications returns the session's append-only notification log.
func (s *SessionService) Notifications(_ context.Context, sessionID string) ([]model.Notification, error) {
	sess := s.lookup(sessionID)
	if sess == nil {
		return nil, apperrors.SessionNotFound(sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	notifications := make([]model.Notification, len(sess.data.Notifications))
	copy(notifications, sess.data.Notifications)
	return notifications, nil
}

// Notify appends to the session's notification log unconditionally, then
// hands the event to the dispatcher for best-effort channel delivery.
// Notifications for unknown sessions are dropped silently.
func (s *SessionService) Notify(_ context.Context, sessionID string, ntype model.NotificationType, message string) {
	sess := s.lookup(sessionID)
	if sess == nil {
		log.Debug().Str("session_id", sessionID).Str("type", string(ntype)).Msg("notification dropped for unknown session")
		return
	}

	sess.mu.Lock()
	n := model.Notification{
		Type:      ntype,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	sess.data.Notifications = append(sess.data.Notifications, n)
	sess.data.UpdatedAt = n.Timestamp

	loc := sess.data.BestLocation()
	ev := notify.Event{
		SessionID: sessionID,
		Type:      ntype,
		Message:   message,
		Timestamp: n.Timestamp,
		Contact:   sess.data.Contact,
		Location:  &loc,
	}
	sess.mu.Unlock()

	s.dispatcher.Dispatch(ev)
}

// StaleSessions returns ids of active sessions not updated since olderThan
// ago. The watchdog uses it to flag walkers who went quiet; the resulting
// notification bumps updated_at, which throttles repeat warnings.
func (s *SessionService) StaleSessions(olderThan time.Duration) []string {
	cutoff := time.Now().UTC().Add(-olderThan)

	s.mu.RLock()
	candidates := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.RUnlock()

	var stale []string
	for _, sess := range candidates {
		sess.mu.Lock()
		if sess.data.IsActive && sess.data.UpdatedAt.Before(cutoff) {
			stale = append(stale, sess.data.ID)
		}
		sess.mu.Unlock()
	}
	return stale
}

// lookup resolves a session id to its live entry. All per-session operations
// go through this single path.
func (s *SessionService) lookup(sessionID string) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}
