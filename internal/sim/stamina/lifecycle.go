package stamina

// OnEnterScene (re)starts the periodic evaluation.
func (m *Manager) OnEnterScene() {
	if m.ticker != nil {
		m.OnLeaveScene()
	}
	if m.hooks.Schedule == nil {
		return
	}
	m.ticker = m.hooks.Schedule(m.cfg.IntervalMs, m.tick)
}

// OnLeaveScene stops the periodic evaluation. Stamina accrued since the last
// tick is dropped, not applied.
func (m *Manager) OnLeaveScene() {
	if m.ticker == nil {
		return
	}
	m.ticker.Cancel()
	m.ticker = nil
}

func (m *Manager) tick() {
	if err := m.Evaluate(); err != nil && m.log != nil {
		m.log.Printf("stamina tick (%s): %v", m.subject.Kind(), err)
	}
}

// SetConfig swaps accounting parameters. Pending accrual is flushed under the
// old parameters first, and a running ticker is restarted when the interval changes.
func (m *Manager) SetConfig(cfg Config) error {
	if cfg.IntervalMs <= 0 {
		cfg.IntervalMs = m.cfg.IntervalMs
	}
	if err := m.Evaluate(); err != nil {
		return err
	}
	restart := m.ticker != nil && cfg.IntervalMs != m.cfg.IntervalMs
	m.cfg = cfg
	if restart {
		m.OnEnterScene()
	}
	return nil
}
