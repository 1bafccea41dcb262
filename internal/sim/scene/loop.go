package scene

import (
	"context"
	"sort"
	"time"

	"staminad.ai/internal/sim/stamina"
	"staminad.ai/internal/sim/tuning"
)

func (s *Scene) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval(s.tune.TickRateHz))
	defer ticker.Stop()

	start := time.Now()
	base := s.now
	wall := func() int64 { return base + time.Since(start).Milliseconds() }

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			s.advanceClock(wall())
			s.handleJoin(req)
		case id := <-s.leave:
			s.advanceClock(wall())
			s.handleLeave(id)
		case env := <-s.inbox:
			s.advanceClock(wall())
			s.handleEnvelope(env)
		case req := <-s.stateReq:
			s.handleStateReq(req)
		case t := <-s.tuneCh:
			s.advanceClock(wall())
			rate := s.tune.TickRateHz
			s.applyTuning(t)
			if s.tune.TickRateHz != rate {
				ticker.Reset(tickInterval(s.tune.TickRateHz))
			}
		case <-ticker.C:
			s.StepTo(wall())
		}
	}
}

func (s *Scene) Stop() { close(s.stop) }

func tickInterval(hz int) time.Duration {
	if hz <= 0 {
		hz = tuning.Defaults().TickRateHz
	}
	return time.Second / time.Duration(hz)
}

// StepTo advances the scene clock to now and runs due periodic tasks.
// It is the loop's tick and is also used directly by deterministic tests.
func (s *Scene) StepTo(now int64) {
	s.advanceClock(now)
	s.sched.Advance(s.now)
}

func (s *Scene) advanceClock(now int64) {
	if now > s.now {
		s.now = now
	}
}

func (s *Scene) applyTuning(t tuning.Tuning) {
	if err := t.Validate(); err != nil {
		s.log.Printf("tuning rejected: %v", err)
		return
	}
	s.tune = t
	cfg := stamina.ConfigFrom(t.Stamina)
	for _, id := range s.entityIDs() {
		if err := s.entities[id].Stamina.SetConfig(cfg); err != nil {
			s.log.Printf("tuning entity=%d: %v", id, err)
		}
	}
	s.log.Printf("tuning applied: tick_rate_hz=%d interval_ms=%d recover=%v",
		t.TickRateHz, t.Stamina.IntervalMs, t.Stamina.RecoverPerInterval)
}

func (s *Scene) playerIDs() []string {
	ids := make([]string, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scene) entityIDs() []uint32 {
	ids := make([]uint32, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
