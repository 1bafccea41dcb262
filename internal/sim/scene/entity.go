package scene

import (
	"staminad.ai/internal/sim/motion"
	"staminad.ai/internal/sim/props"
	"staminad.ai/internal/sim/stamina"
)

type Vec3 = [3]float64

// Player is a connected client. Its property store holds the stamina of its
// avatar and of the vehicle it drives.
type Player struct {
	ID   string
	Name string

	Props   *props.Store
	GodMode bool

	Avatar  *Entity
	Vehicle *Entity

	// LastSafePos is the latest position reported with a grounded motion state.
	LastSafePos Vec3

	out chan []byte
}

// Entity is an avatar or vehicle with its own stamina manager.
type Entity struct {
	ID    uint32
	Owner *Player

	kind     stamina.Kind
	motion   motion.State
	pos      Vec3
	alive    bool
	attached bool

	Stamina *stamina.Manager
}

func (e *Entity) Kind() stamina.Kind { return e.kind }

func (e *Entity) IsAlive() bool {
	if !e.alive {
		return false
	}
	if e.kind == stamina.KindAvatar {
		return e.Owner.Props.Get(props.HP) > 0
	}
	return true
}

func (e *Entity) GodMode() bool        { return e.Owner.GodMode }
func (e *Entity) Motion() motion.State { return e.motion }
func (e *Entity) Attached() bool       { return e.attached }
func (e *Entity) Pos() Vec3            { return e.pos }
