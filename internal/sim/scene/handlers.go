package scene

import (
	"fmt"

	"staminad.ai/internal/protocol"
	"staminad.ai/internal/sim/motion"
	"staminad.ai/internal/sim/props"
	"staminad.ai/internal/sim/stamina"
)

func (s *Scene) handleJoin(req JoinRequest) JoinResponse {
	s.nextPlayerNum++
	p := &Player{
		ID:   fmt.Sprintf("P%d", s.nextPlayerNum),
		Name: req.Name,
		out:  req.Out,
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	p.Props = props.NewStore(func(changes []props.Change) error {
		return s.notifyProps(p, changes)
	})
	maxStamina := s.tune.Stamina.DefaultMax
	p.Props.Seed(
		props.Change{ID: props.MaxHP, Value: defaultMaxHP},
		props.Change{ID: props.HP, Value: defaultMaxHP},
		props.Change{ID: props.MaxStamina, Value: maxStamina},
		props.Change{ID: props.CurPersistStamina, Value: maxStamina},
		props.Change{ID: props.CurTemporaryStamina, Value: maxStamina},
	)
	s.players[p.ID] = p

	p.Avatar = s.newEntity(p, stamina.KindAvatar)
	s.addEntity(p.Avatar)
	s.log.Printf("join player=%s name=%q avatar=%d", p.ID, p.Name, p.Avatar.ID)

	resp := JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        p.ID,
		AvatarEntityID:  p.Avatar.ID,
		SceneID:         s.cfg.ID,
		MaxStamina:      maxStamina,
		IntervalMs:      s.tune.Stamina.IntervalMs,
		Props:           propValues(p.Props.Snapshot()),
	}}
	if req.Resp != nil {
		req.Resp <- resp
	}
	return resp
}

func (s *Scene) handleLeave(playerID string) {
	p := s.players[playerID]
	if p == nil {
		return
	}
	if p.Vehicle != nil {
		s.removeEntity(p.Vehicle)
		p.Vehicle = nil
	}
	if p.Avatar != nil {
		s.removeEntity(p.Avatar)
	}
	delete(s.players, playerID)
	s.log.Printf("leave player=%s", playerID)
}

func (s *Scene) newEntity(owner *Player, kind stamina.Kind) *Entity {
	e := &Entity{
		ID:     s.newEntityID(),
		Owner:  owner,
		kind:   kind,
		motion: motion.Standby,
		alive:  true,
		pos:    owner.LastSafePos,
	}
	e.Stamina = stamina.NewManager(e, owner.Props, stamina.ConfigFrom(s.tune.Stamina), s.staminaHooks(e), s.log)
	return e
}

func (s *Scene) addEntity(e *Entity) {
	s.entities[e.ID] = e
	e.attached = true
	e.Stamina.OnEnterScene()
}

func (s *Scene) removeEntity(e *Entity) {
	e.Stamina.OnLeaveScene()
	e.attached = false
	delete(s.entities, e.ID)
}

func (s *Scene) handleEnvelope(env Envelope) {
	p := s.players[env.PlayerID]
	if p == nil {
		return
	}
	var err error
	switch m := env.Msg.(type) {
	case protocol.MotionMsg:
		err = s.handleMotion(p, m)
	case protocol.VehicleReqMsg:
		err = s.handleVehicle(p, m)
	case protocol.SetStaminaMsg:
		err = s.handleSetStamina(p, m)
	case protocol.GodModeMsg:
		p.GodMode = m.Enabled
		s.writeAudit(AuditEntry{Kind: AuditGodMode, PlayerID: p.ID, EntityID: p.Avatar.ID, Enabled: m.Enabled})
	default:
		err = reqErr(protocol.ErrBadRequest, fmt.Sprintf("unsupported message %T", env.Msg))
	}
	if err != nil {
		s.replyError(p, err)
	}
}

func (s *Scene) ownedEntity(p *Player, id uint32) (*Entity, error) {
	e := s.entities[id]
	if e == nil {
		return nil, reqErr(protocol.ErrUnknownEntity, fmt.Sprintf("entity %d not in scene", id))
	}
	if e.Owner != p {
		return nil, reqErr(protocol.ErrNoPermission, fmt.Sprintf("entity %d not owned by %s", id, p.ID))
	}
	return e, nil
}

func (s *Scene) handleMotion(p *Player, m protocol.MotionMsg) error {
	e, err := s.ownedEntity(p, m.EntityID)
	if err != nil {
		return err
	}
	st, ok := motion.Parse(m.State)
	if !ok {
		return reqErr(protocol.ErrBadRequest, fmt.Sprintf("unknown motion state %q", m.State))
	}
	e.motion = st
	if m.Pos != nil {
		e.pos = *m.Pos
		if e.kind == stamina.KindAvatar && st.IsGrounded() {
			p.LastSafePos = e.pos
		}
	}
	if err := e.Stamina.OnMotionStateChanged(st); err != nil {
		return fmt.Errorf("motion %s on %d: %w", st, e.ID, err)
	}
	return nil
}

func (s *Scene) handleVehicle(p *Player, m protocol.VehicleReqMsg) error {
	switch m.Type {
	case protocol.TypeSpawnVehicle:
		if p.Vehicle != nil {
			return reqErr(protocol.ErrConflict, fmt.Sprintf("vehicle %d already spawned", p.Vehicle.ID))
		}
		v := s.newEntity(p, stamina.KindVehicle)
		v.motion = motion.SkiffNormal
		v.pos = p.Avatar.pos
		if err := p.Props.Set(props.CurTemporaryStamina, p.Props.Get(props.MaxStamina), false); err != nil {
			return err
		}
		p.Vehicle = v
		s.addEntity(v)
		s.sendTo(p, s.vehicleMsg(v))
	case protocol.TypeDestroyVehicle:
		v := p.Vehicle
		if v == nil || (m.EntityID != 0 && m.EntityID != v.ID) {
			return reqErr(protocol.ErrUnknownEntity, "no such vehicle")
		}
		s.removeEntity(v)
		v.alive = false
		p.Vehicle = nil
		s.sendTo(p, s.vehicleMsg(v))
	default:
		return reqErr(protocol.ErrBadRequest, "bad vehicle request type")
	}
	return nil
}

func (s *Scene) vehicleMsg(v *Entity) protocol.VehicleMsg {
	return protocol.VehicleMsg{
		Type:            protocol.TypeVehicle,
		ProtocolVersion: protocol.Version,
		EntityID:        v.ID,
		Alive:           v.alive,
		CurStamina:      v.Stamina.CurStamina(),
	}
}

func (s *Scene) handleSetStamina(p *Player, m protocol.SetStaminaMsg) error {
	e, err := s.ownedEntity(p, m.EntityID)
	if err != nil {
		return err
	}
	before := e.Stamina.CurStamina()
	if m.Relative {
		err = e.Stamina.SetRelativeStamina(m.Value)
	} else {
		err = e.Stamina.SetStamina(m.Value)
	}
	if err != nil {
		return fmt.Errorf("set stamina on %d: %w", e.ID, err)
	}
	s.writeAudit(AuditEntry{
		Kind:     AuditSet,
		PlayerID: p.ID,
		EntityID: e.ID,
		Amount:   e.Stamina.CurStamina() - before,
		Cur:      e.Stamina.CurStamina(),
		Max:      e.Stamina.MaxStamina(),
	})
	return nil
}
