package stamina

import (
	"errors"
	"math/rand"
	"testing"

	"staminad.ai/internal/sim/motion"
	"staminad.ai/internal/sim/props"
	"staminad.ai/internal/sim/sched"
)

type fakeSubject struct {
	kind     Kind
	alive    bool
	god      bool
	state    motion.State
	attached bool
}

func (s *fakeSubject) Kind() Kind           { return s.kind }
func (s *fakeSubject) IsAlive() bool        { return s.alive }
func (s *fakeSubject) GodMode() bool        { return s.god }
func (s *fakeSubject) Motion() motion.State { return s.state }
func (s *fakeSubject) Attached() bool       { return s.attached }

type write struct {
	id     props.ID
	v      float64
	notify bool
}

type fakeStore struct {
	vals   map[props.ID]float64
	writes []write
	err    error
}

func (s *fakeStore) Get(id props.ID) float64 { return s.vals[id] }

func (s *fakeStore) Set(id props.ID, v float64, notify bool) error {
	if s.err != nil {
		return s.err
	}
	s.vals[id] = v
	s.writes = append(s.writes, write{id: id, v: v, notify: notify})
	return nil
}

type harness struct {
	now     int64
	noClock bool

	subj    *fakeSubject
	store   *fakeStore
	sched   *sched.Scheduler
	returns []string
	casts   []float64
	events  []Event

	m *Manager
}

func newHarness(t *testing.T, kind Kind, maxStamina, cur float64) *harness {
	t.Helper()
	h := &harness{
		subj:  &fakeSubject{kind: kind, alive: true, state: motion.Standby, attached: true},
		store: &fakeStore{vals: map[props.ID]float64{props.MaxStamina: maxStamina}},
		sched: sched.New(),
	}
	h.store.vals[capsByKind[kind].curProp] = cur
	h.m = NewManager(h.subj, h.store, DefaultConfig(), Hooks{
		SceneTime: func() (int64, bool) { return h.now, !h.noClock },
		Schedule: func(interval int64, fn func()) Ticker {
			return h.sched.Every(h.now, interval, func(int64) { fn() })
		},
		Broadcast: func(cur float64) error {
			h.casts = append(h.casts, cur)
			return nil
		},
		SafeReturn: func(cause string) error {
			h.returns = append(h.returns, cause)
			return nil
		},
		OnEvent: func(ev Event) { h.events = append(h.events, ev) },
	}, nil)
	return h
}

func (h *harness) cur() float64 { return h.m.CurStamina() }

// advance moves the scene clock and runs due ticks.
func (h *harness) advance(to int64) {
	h.now = to
	h.sched.Advance(to)
}

func (h *harness) motion(t *testing.T, s motion.State) {
	t.Helper()
	h.subj.state = s
	if err := h.m.OnMotionStateChanged(s); err != nil {
		t.Fatalf("motion %v: %v", s, err)
	}
}

func TestAnchor_NoDoubleCounting(t *testing.T) {
	var a Anchor
	if got := a.Accrue(1000, 200, 80); got != 0 {
		t.Fatalf("unset anchor accrued %v", got)
	}
	a.Start(0)
	if got := a.Accrue(1000, 200, 80); got != 400 {
		t.Fatalf("expected (1000/200)*80=400, got %v", got)
	}
	if got := a.Accrue(1000, 200, 80); got != 0 {
		t.Fatalf("second read at same time should be 0, got %v", got)
	}
	if at, ok := a.At(); !ok || at != 1000 {
		t.Fatalf("expected re-baselined anchor at 1000, got %d,%v", at, ok)
	}
}

func TestAnchor_FutureBaselineHolds(t *testing.T) {
	var a Anchor
	a.Start(1000)
	if got := a.Accrue(400, 200, 100); got != 0 {
		t.Fatalf("future anchor accrued %v", got)
	}
	if at, _ := a.At(); at != 1000 {
		t.Fatalf("future anchor moved to %d", at)
	}
	if got := a.Accrue(1100, 200, 100); got != 50 {
		t.Fatalf("expected 50 after passing the anchor, got %v", got)
	}
}

func TestScenario_DashClampsToZero(t *testing.T) {
	h := newHarness(t, KindAvatar, 1000, 1000)
	h.motion(t, motion.Dash)
	h.now = 1000
	if err := h.m.Evaluate(); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if h.cur() != 0 {
		t.Fatalf("expected 1000-1800 clamped to 0, got %v", h.cur())
	}
	if len(h.returns) != 0 {
		t.Fatalf("no failsafe expected on land, got %v", h.returns)
	}
}

func TestClamping_RandomWrites(t *testing.T) {
	h := newHarness(t, KindAvatar, 2400, 1200)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		var err error
		if r.Intn(3) == 0 {
			err = h.m.SetStamina(float64(r.Intn(6000) - 3000))
		} else {
			err = h.m.SetRelativeStamina(float64(r.Intn(6000) - 3000))
		}
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if c := h.cur(); c < 0 || c > 2400 {
			t.Fatalf("write %d left stamina out of range: %v", i, c)
		}
	}
	for _, w := range h.store.writes {
		if w.v < 0 || w.v > 2400 {
			t.Fatalf("unclamped value written: %v", w.v)
		}
	}
}

func TestRelativeWrite_SkipsAtBounds(t *testing.T) {
	h := newHarness(t, KindAvatar, 1000, 1000)
	_ = h.m.SetRelativeStamina(50)
	_ = h.m.SetRelativeStamina(0)
	if len(h.store.writes) != 0 {
		t.Fatalf("expected no writes at ceiling, got %v", h.store.writes)
	}
	_ = h.m.SetStamina(0)
	_ = h.m.SetRelativeStamina(-50)
	if len(h.store.writes) != 1 {
		t.Fatalf("expected only the absolute write, got %v", h.store.writes)
	}
}

func TestMutualExclusion(t *testing.T) {
	h := newHarness(t, KindAvatar, 10000, 5000)
	h.motion(t, motion.Climb)
	if !h.m.Consuming() || h.m.Recovering() {
		t.Fatalf("climb should consume only")
	}
	h.now = 400
	h.motion(t, motion.PoweredFly)
	if h.m.Consuming() || !h.m.Recovering() {
		t.Fatalf("powered fly should recover only")
	}
	if h.cur() != 5000-300 {
		t.Fatalf("switch should flush 2 intervals of climb, got %v", h.cur())
	}
	h.now = 600
	h.motion(t, motion.Dash)
	if !h.m.Consuming() || h.m.Recovering() {
		t.Fatalf("dash should consume only")
	}
	if h.cur() != 5000-300+500 {
		t.Fatalf("switch should flush 1 interval of recovery, got %v", h.cur())
	}
	if h.m.ConsumeRate() != 360 {
		t.Fatalf("rate should be overwritten, got %v", h.m.ConsumeRate())
	}
}

func TestBurst_DelaysContinuousConsumption(t *testing.T) {
	h := newHarness(t, KindAvatar, 10000, 5000)
	h.motion(t, motion.DashBeforeShake)
	if h.cur() != 3200 {
		t.Fatalf("expected 5000-1800, got %v", h.cur())
	}
	if len(h.events) != 1 || h.events[0].Kind != EventBurst || h.events[0].Amount != 1800 {
		t.Fatalf("expected one burst event, got %+v", h.events)
	}

	h = newHarness(t, KindAvatar, 10000, 10000)
	h.motion(t, motion.SwimDash)
	if h.cur() != 8000 {
		t.Fatalf("expected 10000-2000, got %v", h.cur())
	}
	for _, now := range []int64{200, 600, 1000} {
		h.now = now
		if err := h.m.Evaluate(); err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if h.cur() != 8000 {
			t.Fatalf("consumption started early at t=%d: %v", now, h.cur())
		}
	}
	h.now = 1200
	_ = h.m.Evaluate()
	if h.cur() != 8000-204 {
		t.Fatalf("expected one interval of swim dash after onset, got %v", h.cur())
	}
}

func TestGodMode_Freezes(t *testing.T) {
	h := newHarness(t, KindAvatar, 1000, 700)
	h.subj.god = true
	_ = h.m.SetRelativeStamina(-300)
	_ = h.m.SetStamina(10)
	h.motion(t, motion.ClimbJump)
	h.now = 2000
	_ = h.m.Evaluate()
	if h.cur() != 700 || len(h.store.writes) != 0 {
		t.Fatalf("god mode should suppress writes, cur=%v writes=%v", h.cur(), h.store.writes)
	}
}

func TestDrownFailsafe(t *testing.T) {
	h := newHarness(t, KindAvatar, 2400, 1)
	h.motion(t, motion.SwimMove)
	h.now = 200
	if err := h.m.Evaluate(); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if h.cur() != 2400 {
		t.Fatalf("expected refill to max, got %v", h.cur())
	}
	if len(h.returns) != 1 || h.returns[0] != CauseDrown {
		t.Fatalf("expected exactly one drown safe return, got %v", h.returns)
	}
	if h.m.Consuming() {
		t.Fatalf("failsafe should stop consumption")
	}
	h.now = 400
	_ = h.m.Evaluate()
	if len(h.returns) != 1 {
		t.Fatalf("failsafe fired again: %v", h.returns)
	}
	if last := h.events[len(h.events)-1]; last.Kind != EventDrown {
		t.Fatalf("expected drown event, got %+v", last)
	}
}

func TestDrownFailsafe_OnlyForLivingSwimmingAvatars(t *testing.T) {
	cases := []struct {
		name  string
		kind  Kind
		alive bool
		state motion.State
	}{
		{"vehicle", KindVehicle, true, motion.SwimMove},
		{"dead", KindAvatar, false, motion.SwimMove},
		{"on land", KindAvatar, true, motion.Dash},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.kind, 1000, 10)
			h.subj.alive = tc.alive
			h.subj.state = tc.state
			if err := h.m.StartConsume(80, 0); err != nil {
				t.Fatalf("start: %v", err)
			}
			h.now = 200
			_ = h.m.Evaluate()
			if h.cur() != 0 || len(h.returns) != 0 {
				t.Fatalf("expected plain depletion, cur=%v returns=%v", h.cur(), h.returns)
			}
		})
	}
}

func TestFreezeStates_NoWritesWhenIdle(t *testing.T) {
	for _, s := range []motion.State{motion.Slip, motion.LadderSlip, motion.FlyIdle, motion.SwimIdle} {
		h := newHarness(t, KindAvatar, 1000, 500)
		h.motion(t, s)
		if len(h.store.writes) != 0 || h.m.Consuming() || h.m.Recovering() {
			t.Fatalf("%v: expected no writes and no anchors", s)
		}
	}
}

func TestFreeze_FlushesThenStops(t *testing.T) {
	h := newHarness(t, KindAvatar, 10000, 5000)
	h.motion(t, motion.Fly)
	h.now = 1000
	h.motion(t, motion.FlyIdle)
	if h.cur() != 5000-300 {
		t.Fatalf("expected 5 intervals of flight flushed, got %v", h.cur())
	}
	h.now = 5000
	_ = h.m.Evaluate()
	if h.cur() != 4700 {
		t.Fatalf("frozen stamina changed: %v", h.cur())
	}
}

func TestDelayedRecovery(t *testing.T) {
	h := newHarness(t, KindAvatar, 10000, 0)
	h.motion(t, motion.Walk)
	h.now = 1000
	_ = h.m.Evaluate()
	if h.cur() != 0 {
		t.Fatalf("recovery started before onset: %v", h.cur())
	}
	h.now = 1400
	_ = h.m.Evaluate()
	if h.cur() != 1000 {
		t.Fatalf("expected 2 intervals of recovery, got %v", h.cur())
	}
	// Repeated default states do not restart the delay.
	h.motion(t, motion.Run)
	h.now = 1600
	_ = h.m.Evaluate()
	if h.cur() != 1500 {
		t.Fatalf("expected recovery to continue, got %v", h.cur())
	}
}

func TestNoClock_StartIsIgnored(t *testing.T) {
	h := newHarness(t, KindAvatar, 1000, 1000)
	h.noClock = true
	h.motion(t, motion.ClimbJump)
	h.motion(t, motion.Walk)
	if h.m.Consuming() || h.m.Recovering() || len(h.store.writes) != 0 {
		t.Fatalf("expected nothing without a scene clock")
	}
}

func TestVehicle_WritesTemporaryAndBroadcasts(t *testing.T) {
	h := newHarness(t, KindVehicle, 1000, 1000)
	h.motion(t, motion.SkiffDash)
	h.now = 400
	_ = h.m.Evaluate()
	if h.cur() != 1000-408 {
		t.Fatalf("expected skiff dash consumption, got %v", h.cur())
	}
	w := h.store.writes[len(h.store.writes)-1]
	if w.id != props.CurTemporaryStamina || w.notify {
		t.Fatalf("vehicle write should go to temporary stamina without notify: %+v", w)
	}
	if len(h.casts) != 1 || h.casts[0] != 592 {
		t.Fatalf("expected one broadcast of 592, got %v", h.casts)
	}

	h.subj.attached = false
	_ = h.m.SetStamina(100)
	if len(h.casts) != 1 {
		t.Fatalf("detached vehicle should not broadcast")
	}
}

func TestAvatar_WritesPersistentWithNotify(t *testing.T) {
	h := newHarness(t, KindAvatar, 1000, 1000)
	_ = h.m.SetStamina(10)
	w := h.store.writes[0]
	if w.id != props.CurPersistStamina || !w.notify {
		t.Fatalf("avatar write should notify the persistent slot: %+v", w)
	}
	if len(h.casts) != 0 {
		t.Fatalf("avatars never broadcast")
	}
}

func TestErrors_Propagate(t *testing.T) {
	boom := errors.New("store down")
	h := newHarness(t, KindAvatar, 1000, 1000)
	h.motion(t, motion.Dash)
	h.store.err = boom
	h.now = 200
	if err := h.m.OnMotionStateChanged(motion.Walk); !errors.Is(err, boom) {
		t.Fatalf("expected flush error to propagate, got %v", err)
	}
	if err := h.m.StartConsume(0, 100); !errors.Is(err, boom) {
		t.Fatalf("expected burst error, got %v", err)
	}

	h = newHarness(t, KindVehicle, 1000, 1000)
	cast := errors.New("observers gone")
	h.m.hooks.Broadcast = func(float64) error { return cast }
	if err := h.m.SetStamina(1); !errors.Is(err, cast) {
		t.Fatalf("expected broadcast error, got %v", err)
	}
}

func TestLifecycle_TickAndRestart(t *testing.T) {
	h := newHarness(t, KindAvatar, 10000, 10000)
	h.m.OnEnterScene()
	h.m.OnEnterScene()
	if h.sched.Len() != 1 || !h.m.Ticking() {
		t.Fatalf("re-entering should replace the ticker, have %d", h.sched.Len())
	}
	h.motion(t, motion.Climb)
	h.advance(200)
	h.advance(400)
	if h.cur() != 10000-300 {
		t.Fatalf("expected two ticks of climbing, got %v", h.cur())
	}
	h.m.OnLeaveScene()
	h.m.OnLeaveScene()
	if h.sched.Len() != 0 || h.m.Ticking() {
		t.Fatalf("leave should cancel the ticker")
	}
}

func TestLifecycle_LeaveDropsUnflushedAccrual(t *testing.T) {
	h := newHarness(t, KindAvatar, 10000, 10000)
	h.m.OnEnterScene()
	h.motion(t, motion.Climb)
	h.advance(200)
	h.advance(350)
	h.m.OnLeaveScene()
	h.advance(1000)
	if h.cur() != 10000-150 {
		t.Fatalf("accrual after the last tick must not be applied on leave, got %v", h.cur())
	}
	if !h.m.Consuming() {
		t.Fatalf("leaving keeps the anchors")
	}
}

func TestSetConfig_RestartsTickerOnIntervalChange(t *testing.T) {
	h := newHarness(t, KindAvatar, 10000, 0)
	h.m.OnEnterScene()
	h.motion(t, motion.PoweredFly)
	h.now = 200
	cfg := DefaultConfig()
	cfg.IntervalMs = 100
	cfg.RecoverPerInterval = 10
	if err := h.m.SetConfig(cfg); err != nil {
		t.Fatalf("set config: %v", err)
	}
	if h.cur() != 500 {
		t.Fatalf("pending recovery should be flushed with the old rate, got %v", h.cur())
	}
	if h.sched.Len() != 1 {
		t.Fatalf("expected one ticker after restart, got %d", h.sched.Len())
	}
	h.advance(300)
	if h.cur() != 510 {
		t.Fatalf("expected new rate on 100ms ticker, got %v", h.cur())
	}
}
