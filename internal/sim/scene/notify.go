package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"staminad.ai/internal/protocol"
	"staminad.ai/internal/sim/props"
	"staminad.ai/internal/sim/stamina"
)

// RequestError is a client mistake reported back with a protocol code.
type RequestError struct {
	Code string
	Msg  string
}

func (e *RequestError) Error() string { return e.Code + ": " + e.Msg }

func reqErr(code, msg string) error { return &RequestError{Code: code, Msg: msg} }

func (s *Scene) replyError(p *Player, err error) {
	var re *RequestError
	if errors.As(err, &re) {
		s.sendTo(p, protocol.NewError(re.Code, re.Msg))
		return
	}
	s.log.Printf("player=%s: %v", p.ID, err)
	s.sendTo(p, protocol.NewError(protocol.ErrInternal, err.Error()))
}

func (s *Scene) staminaHooks(e *Entity) stamina.Hooks {
	return stamina.Hooks{
		SceneTime: func() (int64, bool) { return s.now, e.attached },
		Schedule: func(interval int64, fn func()) stamina.Ticker {
			return s.sched.Every(s.now, interval, func(int64) { fn() })
		},
		Broadcast: func(cur float64) error { return s.broadcastVehicleStamina(e, cur) },
		SafeReturn: func(cause string) error {
			return s.returnToSafePos(e, cause)
		},
		OnEvent: func(ev stamina.Event) {
			s.writeAudit(AuditEntry{
				Kind:     ev.Kind,
				PlayerID: e.Owner.ID,
				EntityID: e.ID,
				Amount:   ev.Amount,
				Cur:      ev.Cur,
				Max:      ev.Max,
				Motion:   e.motion.String(),
			})
		},
	}
}

func (s *Scene) notifyProps(p *Player, changes []props.Change) error {
	return s.sendTo(p, protocol.PropNotifyMsg{
		Type:            protocol.TypePropNotify,
		ProtocolVersion: protocol.Version,
		SceneTime:       s.now,
		Props:           propValues(changes),
	})
}

// broadcastVehicleStamina tells every observer in the scene about a vehicle's stamina.
func (s *Scene) broadcastVehicleStamina(v *Entity, cur float64) error {
	b, err := json.Marshal(protocol.VehicleStaminaMsg{
		Type:            protocol.TypeVehicleStamina,
		ProtocolVersion: protocol.Version,
		SceneTime:       s.now,
		EntityID:        v.ID,
		CurStamina:      cur,
	})
	if err != nil {
		return err
	}
	for _, id := range s.playerIDs() {
		if p := s.players[id]; p.out != nil {
			sendLatest(p.out, b)
		}
	}
	return nil
}

// returnToSafePos moves a drowned avatar to its owner's last safe position at
// the cost of some HP. The loss never kills.
func (s *Scene) returnToSafePos(e *Entity, cause string) error {
	p := e.Owner
	e.pos = p.LastSafePos

	maxHP := p.Props.Get(props.MaxHP)
	loss := math.Floor(maxHP * float64(s.tune.Drown.HPLossPermille) / 1000)
	hp := p.Props.Get(props.HP) - loss
	if hp < 1 {
		hp = 1
	}
	if err := p.Props.Set(props.HP, hp, true); err != nil {
		return fmt.Errorf("drown hp: %w", err)
	}

	s.writeAudit(AuditEntry{
		Kind:     AuditSafeReturn,
		PlayerID: p.ID,
		EntityID: e.ID,
		Amount:   loss,
		Reason:   cause,
		Pos:      e.pos,
	})
	return s.sendTo(p, protocol.SafeReturnMsg{
		Type:            protocol.TypeSafeReturn,
		ProtocolVersion: protocol.Version,
		SceneTime:       s.now,
		EntityID:        e.ID,
		Reason:          cause,
		Pos:             e.pos,
		HP:              hp,
	})
}

func (s *Scene) sendTo(p *Player, msg any) error {
	if p == nil || p.out == nil {
		return nil
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	sendLatest(p.out, b)
	return nil
}

// sendLatest never blocks the scene loop: when the queue is full the oldest
// message is dropped.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
