package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
	"github.com/walkguardian/guardian-server-go/internal/model"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, transcript string) (string, error) {
	args := m.Called(ctx, transcript)
	return args.String(0), args.Error(1)
}

func analysisReply(level int, dangerType string) string {
	return "danger_level: " + strconv.Itoa(level) + "\n" +
		"danger_type: " + dangerType + "\n" +
		"summary: Assessment of the transcript.\n" +
		"recommended_action: Check on the walker."
}

func newEscalationFixture(t *testing.T, audioEnabled bool) (*SessionService, *EscalationService, *mockAnalyzer, string) {
	t.Helper()

	sessions := newTestSessions()
	analyzer := &mockAnalyzer{}
	escalation := NewEscalationService(sessions, analyzer)

	params := testParams()
	params.AudioEnabled = audioEnabled
	sess, err := sessions.Create(context.Background(), params)
	require.NoError(t, err)

	return sessions, escalation, analyzer, sess.ID
}

func notificationTypes(t *testing.T, sessions *SessionService, id string) []model.NotificationType {
	t.Helper()
	notifications, err := sessions.Notifications(context.Background(), id)
	require.NoError(t, err)
	types := make([]model.NotificationType, len(notifications))
	for i, n := range notifications {
		types[i] = n.Type
	}
	return types
}

func TestProcessTranscript(t *testing.T) {
	ctx := context.Background()

	t.Run("benign results keep the session SAFE", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(2, "none"), nil)

		for i := 0; i < 5; i++ {
			verdict, err := escalation.ProcessTranscript(ctx, id, "lovely evening")
			require.NoError(t, err)
			assert.Equal(t, model.RiskSafe, verdict.Risk)
		}

		types := notificationTypes(t, sessions, id)
		assert.Equal(t, []model.NotificationType{model.NotificationSessionStarted}, types)
	})

	t.Run("danger level at threshold escalates once", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(8, "physical_threat"), nil)

		verdict, err := escalation.ProcessTranscript(ctx, id, "give me your phone")
		require.NoError(t, err)
		assert.Equal(t, model.RiskDanger, verdict.Risk)
		assert.Equal(t, 8, verdict.DangerLevel)

		snap, err := sessions.Snapshot(ctx, id)
		require.NoError(t, err)
		assert.True(t, snap.NotificationSent)

		types := notificationTypes(t, sessions, id)
		assert.Equal(t, []model.NotificationType{
			model.NotificationSessionStarted,
			model.NotificationDangerAudio,
		}, types)
	})

	t.Run("medical distress fires DANGER_MEDICAL before DANGER_AUDIO", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(9, "medical_distress"), nil)

		_, err := escalation.ProcessTranscript(ctx, id, "I can't breathe")
		require.NoError(t, err)

		types := notificationTypes(t, sessions, id)
		assert.Equal(t, []model.NotificationType{
			model.NotificationSessionStarted,
			model.NotificationDangerMedical,
			model.NotificationDangerAudio,
		}, types)
	})

	t.Run("medical script carries profile and location", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(9, "mental_health_crisis"), nil)

		_, err := escalation.ProcessTranscript(ctx, id, "...")
		require.NoError(t, err)

		notifications, err := sessions.Notifications(ctx, id)
		require.NoError(t, err)
		medical := notifications[1]
		assert.Equal(t, model.NotificationDangerMedical, medical.Type)
		assert.Contains(t, medical.Message, "Anna Kowalska")
		assert.Contains(t, medical.Message, "52.22970, 21.01220")
	})

	t.Run("latch prevents repeat escalation notifications", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(9, "physical_threat"), nil)

		for i := 0; i < 4; i++ {
			verdict, err := escalation.ProcessTranscript(ctx, id, "threat again")
			require.NoError(t, err)
			assert.Equal(t, model.RiskDanger, verdict.Risk)
		}

		dangerAudio := 0
		for _, ntype := range notificationTypes(t, sessions, id) {
			if ntype == model.NotificationDangerAudio {
				dangerAudio++
			}
		}
		assert.Equal(t, 1, dangerAudio)
	})

	t.Run("risk never reverts to SAFE", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(8, "physical_threat"), nil).Once()
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(0, "none"), nil)

		_, err := escalation.ProcessTranscript(ctx, id, "danger")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			verdict, err := escalation.ProcessTranscript(ctx, id, "all calm now")
			require.NoError(t, err)
			assert.Equal(t, model.RiskDanger, verdict.Risk)
		}

		snap, err := sessions.Snapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.RiskDanger, snap.Risk)
	})

	t.Run("backend failure propagates and leaves risk untouched", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).
			Return("", apperrors.AnalysisUnavailable(errors.New("timeout")))

		_, err := escalation.ProcessTranscript(ctx, id, "hello?")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAnalysisUnavailable, apperrors.GetCode(err))

		snap, err := sessions.Snapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.RiskSafe, snap.Risk)
		assert.False(t, snap.NotificationSent)
	})

	t.Run("malformed reply propagates and leaves risk untouched", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return("I refuse to answer in the expected format", nil)

		_, err := escalation.ProcessTranscript(ctx, id, "hello?")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMalformedAnalysis, apperrors.GetCode(err))

		snap, err := sessions.Snapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.RiskSafe, snap.Risk)
	})

	t.Run("audio disabled skips buffering and analysis", func(t *testing.T) {
		_, escalation, analyzer, id := newEscalationFixture(t, false)

		verdict, err := escalation.ProcessTranscript(ctx, id, "give me your phone")
		require.NoError(t, err)
		assert.Equal(t, model.RiskSafe, verdict.Risk)
		assert.Contains(t, verdict.Reason, "disabled")

		analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
	})

	t.Run("unknown session id", func(t *testing.T) {
		_, escalation, _, _ := newEscalationFixture(t, true)

		_, err := escalation.ProcessTranscript(ctx, "no-such-id", "text")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.GetCode(err))
	})

	t.Run("analysis sees the rolling window, not just the newest utterance", func(t *testing.T) {
		_, escalation, analyzer, id := newEscalationFixture(t, true)

		var windows []string
		analyzer.On("Analyze", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				windows = append(windows, args.String(1))
			}).
			Return(analysisReply(0, "none"), nil)

		_, err := escalation.ProcessTranscript(ctx, id, "first")
		require.NoError(t, err)
		_, err = escalation.ProcessTranscript(ctx, id, "second")
		require.NoError(t, err)

		require.Len(t, windows, 2)
		assert.Equal(t, "first", windows[0])
		assert.Equal(t, "first\nsecond", windows[1])
	})

	t.Run("concurrent submissions keep the latch one-shot", func(t *testing.T) {
		sessions, escalation, analyzer, id := newEscalationFixture(t, true)
		analyzer.On("Analyze", mock.Anything, mock.Anything).Return(analysisReply(9, "physical_threat"), nil)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				escalation.ProcessTranscript(ctx, id, "threat")
			}()
		}
		wg.Wait()

		dangerAudio := 0
		for _, ntype := range notificationTypes(t, sessions, id) {
			if ntype == model.NotificationDangerAudio {
				dangerAudio++
			}
		}
		assert.Equal(t, 1, dangerAudio)

		snap, err := sessions.Snapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.RiskDanger, snap.Risk)
	})
}
