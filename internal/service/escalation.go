package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/walkguardian/guardian-server-go/internal/analysis"
	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
	"github.com/walkguardian/guardian-server-go/internal/model"
)

// escalationThreshold is the danger level at which a session escalates from
// SAFE to DANGER.
const escalationThreshold = 6

// Danger types that additionally fire a DANGER_MEDICAL notification with an
// emergency-call script.
var emergencyDangerTypes = map[string]struct{}{
	"medical_distress":     {},
	"mental_health_crisis": {},
}

// TranscriptVerdict is what an audio-text submission returns to the caller.
type TranscriptVerdict struct {
	Risk        model.RiskLevel `json:"risk"`
	DangerLevel int             `json:"danger_level"`
	Reason      string          `json:"reason"`
}

// EscalationService owns the per-session risk state machine. Risk is
// monotonic: once a session reaches DANGER it never reverts, and the
// escalation notifications fire at most once per session.
type EscalationService struct {
	sessions *SessionService
	analyzer analysis.Analyzer
}

func NewEscalationService(sessions *SessionService, analyzer analysis.Analyzer) *EscalationService {
	return &EscalationService{
		sessions: sessions,
		analyzer: analyzer,
	}
}

// ProcessTranscript buffers the utterance, runs risk analysis over the
// rolling window and applies the escalation decision. The session lock is
// never held across the analysis call, so slow backends do not block
// location updates or status reads. Analysis failures propagate as typed
// errors and leave risk untouched; "could not assess" is never conflated
// with "assessed safe".
func (s *EscalationService) ProcessTranscript(ctx context.Context, sessionID, text string) (*TranscriptVerdict, error) {
	sess := s.sessions.lookup(sessionID)
	if sess == nil {
		return nil, apperrors.SessionNotFound(sessionID)
	}

	sess.mu.Lock()
	if !sess.data.AudioEnabled {
		verdict := &TranscriptVerdict{
			Risk:   sess.data.Risk,
			Reason: "audio analysis disabled for this session",
		}
		sess.mu.Unlock()
		return verdict, nil
	}

	sess.transcript.Add(text)
	window := sess.transcript.Window()
	sess.data.UpdatedAt = time.Now().UTC()
	sess.mu.Unlock()

	raw, err := s.analyzer.Analyze(ctx, window)
	if err != nil {
		return nil, err
	}
	result, err := analysis.Parse(raw)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	escalate := result.DangerLevel >= escalationThreshold && !sess.data.NotificationSent
	if escalate {
		sess.data.Risk = model.RiskDanger
		sess.data.NotificationSent = true
		sess.data.UpdatedAt = time.Now().UTC()
	}
	risk := sess.data.Risk
	profile := sess.data.Profile
	location := sess.data.BestLocation()
	sess.mu.Unlock()

	if escalate {
		log.Warn().
			Str("session_id", sessionID).
			Int("danger_level", result.DangerLevel).
			Str("danger_type", result.DangerType).
			Msg("session escalated to DANGER")

		if isEmergencyType(result.DangerType) {
			s.sessions.Notify(ctx, sessionID, model.NotificationDangerMedical,
				buildEmergencyScript(profile, location, result))
		}
		s.sessions.Notify(ctx, sessionID, model.NotificationDangerAudio,
			fmt.Sprintf("Danger detected (level %d, %s): %s Recommended action: %s",
				result.DangerLevel, result.DangerType, result.Summary, result.RecommendedAction))
	}

	return &TranscriptVerdict{
		Risk:        risk,
		DangerLevel: result.DangerLevel,
		Reason:      result.Summary,
	}, nil
}

func isEmergencyType(dangerType string) bool {
	_, ok := emergencyDangerTypes[strings.ToLower(strings.TrimSpace(dangerType))]
	return ok
}

// buildEmergencyScript synthesizes an operator-readable emergency call
// script from the walker's profile, best-known position and the analysis.
func buildEmergencyScript(profile model.Profile, location model.Location, result analysis.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Emergency call script for %s.\n", profile.FullName())
	if profile.Age != nil {
		fmt.Fprintf(&b, "Age: %d.\n", *profile.Age)
	}
	if profile.Diseases != "" {
		fmt.Fprintf(&b, "Known conditions: %s.\n", profile.Diseases)
	}
	if profile.Allergies != "" {
		fmt.Fprintf(&b, "Allergies: %s.\n", profile.Allergies)
	}
	if profile.Medications != "" {
		fmt.Fprintf(&b, "Medications: %s.\n", profile.Medications)
	}
	fmt.Fprintf(&b, "Last known position: %.5f, %.5f.\n", location.Lat, location.Lng)
	fmt.Fprintf(&b, "Situation: %s\n", result.Summary)
	fmt.Fprintf(&b, "Recommended action: %s", result.RecommendedAction)

	return b.String()
}
