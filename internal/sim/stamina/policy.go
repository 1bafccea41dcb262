package stamina

import "staminad.ai/internal/sim/motion"

type ActionKind uint8

const (
	// ActRecoverDelayed is the zero value: states missing from the table recover after the onset delay.
	ActRecoverDelayed ActionKind = iota
	ActConsume
	ActFreeze
	ActRecover
)

// Action is what a motion state does to stamina. Rate and Burst apply to ActConsume.
type Action struct {
	Kind  ActionKind
	Rate  float64
	Burst float64
}

func consume(rate, burst float64) Action { return Action{Kind: ActConsume, Rate: rate, Burst: burst} }

var freeze = Action{Kind: ActFreeze}

var policy = map[motion.State]Action{
	motion.Dash:            consume(360, 0),
	motion.DangerDash:      consume(360, 0),
	motion.DashBeforeShake: consume(0, 1800),
	motion.Climb:           consume(150, 0),
	motion.ClimbJump:       consume(0, 2500),
	motion.Fly:             consume(60, 0),
	motion.FlyFast:         consume(60, 0),
	motion.FlySlow:         consume(60, 0),
	motion.SwimDash:        consume(204, 2000),
	motion.SwimMove:        consume(80, 0),
	motion.SkiffDash:       consume(204, 0),

	motion.Slip:       freeze,
	motion.LadderSlip: freeze,
	motion.FlyIdle:    freeze,
	motion.SwimIdle:   freeze,

	motion.PoweredFly:       {Kind: ActRecover},
	motion.SkiffPoweredDash: {Kind: ActRecover},
}

// PolicyFor returns the stamina action for a motion state.
func PolicyFor(s motion.State) Action { return policy[s] }

// OnMotionStateChanged applies the policy for the entity's new motion state.
func (m *Manager) OnMotionStateChanged(s motion.State) error {
	act := PolicyFor(s)
	switch act.Kind {
	case ActConsume:
		return m.StartConsume(act.Rate, act.Burst)
	case ActFreeze:
		if err := m.StopConsume(); err != nil {
			return err
		}
		return m.StopRecover()
	case ActRecover:
		return m.StartRecover(false)
	default:
		return m.StartRecover(true)
	}
}
