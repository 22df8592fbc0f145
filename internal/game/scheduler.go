package game

import (
	"time"

	"mafia/internal/domain"
)

// Phase timer plumbing. Each session carries at most one pending
// time.AfterFunc; the session lock, together with the generation
// counter, decides whether a fire is still current. A fire that lost
// the race against ForceEndPhase or EndSession sees a stale generation
// and does nothing.

func (s *Session) scheduleTimerLocked(d time.Duration) {
	if d <= 0 {
		return
	}
	gen := s.timerGen
	s.timer = time.AfterFunc(d, func() { s.onPhaseTimeout(gen) })
}

// cancelTimerLocked invalidates the pending timer. Bumping the
// generation also suppresses a fire that is already in flight and
// waiting on the lock.
func (s *Session) cancelTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) onPhaseTimeout(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || gen != s.timerGen {
		return
	}
	s.timerGen++
	s.timer = nil
	s.safeFinalizeLocked()
}

// safeFinalizeLocked runs the phase finalizer. A panic in a resolver
// is caught here and converts this session, and only this session, to
// a cancelled outcome.
func (s *Session) safeFinalizeLocked() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("phase finalizer panicked", "phase", s.window.Phase, "panic", r)
			s.endLocked(domain.Outcome{Condition: domain.Cancelled}, "internal error")
		}
	}()
	s.finalizePhaseLocked()
}
