package stamina

// Anchor is a running integrator baseline on the scene clock.
// The zero value is unset.
type Anchor struct {
	at  int64
	set bool
}

func (a *Anchor) Start(at int64) {
	a.at = at
	a.set = true
}

func (a *Anchor) Clear() { *a = Anchor{} }

func (a Anchor) IsSet() bool { return a.set }

func (a Anchor) At() (int64, bool) { return a.at, a.set }

// Accrue returns rate*elapsed/interval for the time since the baseline and
// moves the baseline to now, so a second call at the same now returns 0.
// A baseline in the future (delayed onset) accrues nothing and is kept until
// the clock passes it. It is not pulled back to now on such a call, so the
// whole onset delay elapses before anything accrues; re-baselining to now
// would cancel the delay at the first tick.
func (a *Anchor) Accrue(now, interval int64, rate float64) float64 {
	if !a.set || now <= a.at || interval <= 0 {
		return 0
	}
	elapsed := now - a.at
	a.at = now
	return float64(elapsed) / float64(interval) * rate
}
