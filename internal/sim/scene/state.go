package scene

import (
	"context"
	"errors"
)

// EntityState is a read-only view of one entity's stamina.
type EntityState struct {
	EntityID    uint32  `json:"entity_id"`
	PlayerID    string  `json:"player_id"`
	Kind        string  `json:"kind"`
	Motion      string  `json:"motion"`
	CurStamina  float64 `json:"cur_stamina"`
	MaxStamina  float64 `json:"max_stamina"`
	Consuming   bool    `json:"consuming"`
	ConsumeRate float64 `json:"consume_rate,omitempty"`
	Recovering  bool    `json:"recovering"`
	GodMode     bool    `json:"god_mode,omitempty"`
}

type SceneState struct {
	SceneID   string        `json:"scene_id"`
	SceneTime int64         `json:"scene_time"`
	Players   int           `json:"players"`
	Entities  []EntityState `json:"entities"`
}

type stateReq struct {
	Resp chan SceneState
}

// RequestState asks the scene loop for a consistent view of every entity.
// It is safe to call from other goroutines (e.g. HTTP handlers).
func (s *Scene) RequestState(ctx context.Context) (SceneState, error) {
	if s == nil {
		return SceneState{}, errors.New("scene not available")
	}
	resp := make(chan SceneState, 1)
	select {
	case s.stateReq <- stateReq{Resp: resp}:
	case <-ctx.Done():
		return SceneState{}, ctx.Err()
	}
	select {
	case st := <-resp:
		return st, nil
	case <-ctx.Done():
		return SceneState{}, ctx.Err()
	}
}

func (s *Scene) handleStateReq(req stateReq) {
	select {
	case req.Resp <- s.state():
	default:
		// Caller timed out; don't block the scene loop.
	}
}

func (s *Scene) state() SceneState {
	st := SceneState{
		SceneID:   s.cfg.ID,
		SceneTime: s.now,
		Players:   len(s.players),
		Entities:  make([]EntityState, 0, len(s.entities)),
	}
	for _, id := range s.entityIDs() {
		e := s.entities[id]
		st.Entities = append(st.Entities, EntityState{
			EntityID:    e.ID,
			PlayerID:    e.Owner.ID,
			Kind:        e.kind.String(),
			Motion:      e.motion.String(),
			CurStamina:  e.Stamina.CurStamina(),
			MaxStamina:  e.Stamina.MaxStamina(),
			Consuming:   e.Stamina.Consuming(),
			ConsumeRate: e.Stamina.ConsumeRate(),
			Recovering:  e.Stamina.Recovering(),
			GodMode:     e.Owner.GodMode,
		})
	}
	return st
}
