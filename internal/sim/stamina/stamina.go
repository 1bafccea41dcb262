package stamina

import (
	"fmt"
	"log"

	"staminad.ai/internal/sim/motion"
	"staminad.ai/internal/sim/props"
	"staminad.ai/internal/sim/tuning"
)

// CauseDrown tags the safe return triggered when a swimmer runs out of stamina.
const CauseDrown = "STAMINA_DROWN"

// Kind selects where a subject keeps its stamina and who hears about writes.
type Kind uint8

const (
	KindAvatar Kind = iota + 1
	KindVehicle
)

func (k Kind) String() string {
	switch k {
	case KindAvatar:
		return "AVATAR"
	case KindVehicle:
		return "VEHICLE"
	}
	return "UNKNOWN"
}

type kindCaps struct {
	curProp   props.ID
	notify    bool
	broadcast bool
}

var capsByKind = map[Kind]kindCaps{
	KindAvatar:  {curProp: props.CurPersistStamina, notify: true},
	KindVehicle: {curProp: props.CurTemporaryStamina, broadcast: true},
}

// Subject is the entity owning a Manager. Its answers are read on every
// evaluation and never cached.
type Subject interface {
	Kind() Kind
	IsAlive() bool
	GodMode() bool
	Motion() motion.State
	// Attached reports whether the entity is registered with a live scene.
	Attached() bool
}

// PropStore is the owning player's property store.
type PropStore interface {
	Get(id props.ID) float64
	Set(id props.ID, v float64, notify bool) error
}

// Ticker is a cancellable periodic task.
type Ticker interface {
	Cancel()
}

type Hooks struct {
	// SceneTime returns the scene clock in ms; ok is false outside a live scene.
	SceneTime func() (now int64, ok bool)
	// Schedule runs fn every interval ms on the subject's scene loop.
	Schedule func(interval int64, fn func()) Ticker
	// Broadcast tells scene observers about a vehicle's stamina.
	Broadcast func(cur float64) error
	// SafeReturn moves the subject back to safety after drowning.
	SafeReturn func(cause string) error
	// OnEvent receives burst and drown events for auditing.
	OnEvent func(ev Event)
}

type Event struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount,omitempty"`
	Cur    float64 `json:"cur"`
	Max    float64 `json:"max"`
}

const (
	EventBurst = "BURST"
	EventDrown = "DROWN"
)

type Config struct {
	IntervalMs         int64
	RecoverPerInterval float64
	OnsetDelayMs       int64
}

func ConfigFrom(t tuning.Stamina) Config {
	return Config{
		IntervalMs:         t.IntervalMs,
		RecoverPerInterval: t.RecoverPerInterval,
		OnsetDelayMs:       t.OnsetDelayMs,
	}
}

func DefaultConfig() Config { return ConfigFrom(tuning.Defaults().Stamina) }

// Manager does stamina accounting for one subject.
// All methods must be called from the subject's scene loop.
type Manager struct {
	subject Subject
	props   PropStore
	hooks   Hooks
	cfg     Config
	log     *log.Logger

	consume     Anchor
	recovery    Anchor
	consumeRate float64

	ticker Ticker
}

func NewManager(subject Subject, store PropStore, cfg Config, hooks Hooks, logger *log.Logger) *Manager {
	if cfg.IntervalMs <= 0 {
		cfg.IntervalMs = DefaultConfig().IntervalMs
	}
	return &Manager{
		subject: subject,
		props:   store,
		hooks:   hooks,
		cfg:     cfg,
		log:     logger,
	}
}

func (m *Manager) caps() kindCaps { return capsByKind[m.subject.Kind()] }

func (m *Manager) MaxStamina() float64 { return m.props.Get(props.MaxStamina) }

func (m *Manager) CurStamina() float64 { return m.props.Get(m.caps().curProp) }

func (m *Manager) Consuming() bool      { return m.consume.IsSet() }
func (m *Manager) Recovering() bool     { return m.recovery.IsSet() }
func (m *Manager) ConsumeRate() float64 { return m.consumeRate }
func (m *Manager) Ticking() bool        { return m.ticker != nil }

func (m *Manager) sceneTime() (int64, bool) {
	if m.hooks.SceneTime == nil {
		return 0, false
	}
	return m.hooks.SceneTime()
}

func (m *Manager) emit(kind string, amount float64) {
	if m.hooks.OnEvent == nil {
		return
	}
	m.hooks.OnEvent(Event{Kind: kind, Amount: amount, Cur: m.CurStamina(), Max: m.MaxStamina()})
}

// Evaluate flushes recovery and consumption accrued since the last call into a
// single relative write, then runs the drowning failsafe.
func (m *Manager) Evaluate() error {
	now, ok := m.sceneTime()
	if !ok {
		return nil
	}
	iv := m.cfg.IntervalMs
	// Recovery first, then consumption; both re-baseline before the write.
	rec := m.recovery.Accrue(now, iv, m.cfg.RecoverPerInterval)
	con := m.consume.Accrue(now, iv, m.consumeRate)
	amount := rec - con
	if amount == 0 {
		return nil
	}
	if err := m.SetRelativeStamina(amount); err != nil {
		return err
	}

	if !m.subject.IsAlive() || m.CurStamina() > 0 {
		return nil
	}
	if m.subject.Kind() != KindAvatar || !m.subject.Motion().IsSwim() {
		return nil
	}
	m.consume.Clear()
	if err := m.SetStamina(m.MaxStamina()); err != nil {
		return fmt.Errorf("drown refill: %w", err)
	}
	m.emit(EventDrown, 0)
	if m.hooks.SafeReturn != nil {
		if err := m.hooks.SafeReturn(CauseDrown); err != nil {
			return fmt.Errorf("safe return: %w", err)
		}
	}
	return nil
}

// StartConsume switches to continuous consumption at rate per interval.
// A positive burst is taken immediately and continuous consumption begins
// after the onset delay.
func (m *Manager) StartConsume(rate, burst float64) error {
	if err := m.StopConsume(); err != nil {
		return err
	}
	if err := m.StopRecover(); err != nil {
		return err
	}
	now, ok := m.sceneTime()
	if m.consume.IsSet() || !ok {
		return nil
	}
	if burst > 0 {
		if err := m.SetRelativeStamina(-burst); err != nil {
			return fmt.Errorf("burst: %w", err)
		}
		m.emit(EventBurst, burst)
		m.consume.Start(now + m.cfg.OnsetDelayMs)
	} else {
		m.consume.Start(now)
	}
	m.consumeRate = rate
	return nil
}

func (m *Manager) StopConsume() error {
	if !m.consume.IsSet() {
		return nil
	}
	if err := m.Evaluate(); err != nil {
		return fmt.Errorf("flush consume: %w", err)
	}
	m.consume.Clear()
	return nil
}

func (m *Manager) StartRecover(delayed bool) error {
	if err := m.StopConsume(); err != nil {
		return err
	}
	now, ok := m.sceneTime()
	if m.recovery.IsSet() || !ok {
		return nil
	}
	if delayed {
		now += m.cfg.OnsetDelayMs
	}
	m.recovery.Start(now)
	return nil
}

func (m *Manager) StopRecover() error {
	if !m.recovery.IsSet() {
		return nil
	}
	if err := m.Evaluate(); err != nil {
		return fmt.Errorf("flush recover: %w", err)
	}
	m.recovery.Clear()
	return nil
}

// SetRelativeStamina adds delta, skipping writes that would only re-clamp at a bound.
func (m *Manager) SetRelativeStamina(delta float64) error {
	cur, limit := m.CurStamina(), m.MaxStamina()
	if delta == 0 || (delta < 0 && cur <= 0) || (delta > 0 && cur >= limit) {
		return nil
	}
	return m.SetStamina(cur + delta)
}

// SetStamina writes v clamped to [0, max]. In god mode nothing is written.
func (m *Manager) SetStamina(v float64) error {
	if m.subject.GodMode() {
		return nil
	}
	if limit := m.MaxStamina(); v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	c := m.caps()
	if err := m.props.Set(c.curProp, v, c.notify); err != nil {
		return fmt.Errorf("set %s: %w", c.curProp, err)
	}
	if c.broadcast && m.subject.Attached() && m.hooks.Broadcast != nil {
		if err := m.hooks.Broadcast(v); err != nil {
			return fmt.Errorf("broadcast stamina: %w", err)
		}
	}
	return nil
}
