package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/walkguardian/guardian-server-go/internal/model"
	"github.com/walkguardian/guardian-server-go/internal/service"
)

// StaleLocationWatchdog periodically sweeps active sessions and alerts the
// emergency contact when a walker has gone quiet for too long. A delivered
// alert bumps the session's last-update time, so a silent walker is pinged
// once per staleAfter window rather than on every tick.
type StaleLocationWatchdog struct {
	sessions   *service.SessionService
	interval   time.Duration
	staleAfter time.Duration
	done       chan struct{}
}

func NewStaleLocationWatchdog(sessions *service.SessionService, interval, staleAfter time.Duration) *StaleLocationWatchdog {
	return &StaleLocationWatchdog{
		sessions:   sessions,
		interval:   interval,
		staleAfter: staleAfter,
		done:       make(chan struct{}),
	}
}

func (j *StaleLocationWatchdog) Start() {
	if j.staleAfter <= 0 {
		log.Info().Msg("stale location watchdog disabled")
		return
	}
	go j.run()
	log.Info().
		Dur("interval", j.interval).
		Dur("stale_after", j.staleAfter).
		Msg("stale location watchdog started")
}

func (j *StaleLocationWatchdog) Stop() {
	if j.staleAfter <= 0 {
		return
	}
	close(j.done)
	log.Info().Msg("stale location watchdog stopped")
}

func (j *StaleLocationWatchdog) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *StaleLocationWatchdog) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stale := j.sessions.StaleSessions(j.staleAfter)
	for _, sessionID := range stale {
		log.Warn().Str("session_id", sessionID).Msg("no location update received recently")
		j.sessions.Notify(ctx, sessionID, model.NotificationLocationStale,
			"No location update has been received for a while. Please check in with the walker.")
	}
}
