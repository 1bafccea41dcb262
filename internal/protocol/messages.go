package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        string      `json:"player_id"`
	AvatarEntityID  uint32      `json:"avatar_entity_id"`
	SceneID         string      `json:"scene_id"`
	MaxStamina      float64     `json:"max_stamina"`
	IntervalMs      int64       `json:"interval_ms"`
	Props           []PropValue `json:"props,omitempty"`
}

// MOTION (client -> server): the entity's motion state changed.
type MotionMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	EntityID        uint32      `json:"entity_id"`
	State           string      `json:"state"`
	Pos             *[3]float64 `json:"pos,omitempty"`
}

// SPAWN_VEHICLE / DESTROY_VEHICLE (client -> server)
type VehicleReqMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	EntityID        uint32 `json:"entity_id,omitempty"`
}

// VEHICLE (server -> client): reply to SPAWN_VEHICLE/DESTROY_VEHICLE.
type VehicleMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	EntityID        uint32  `json:"entity_id"`
	Alive           bool    `json:"alive"`
	CurStamina      float64 `json:"cur_stamina"`
}

// SET_STAMINA (client -> server): direct adjustment (items, abilities, debug).
type SetStaminaMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	EntityID        uint32  `json:"entity_id"`
	Value           float64 `json:"value"`
	Relative        bool    `json:"relative,omitempty"`
}

// GOD_MODE (client -> server, debug)
type GodModeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Enabled         bool   `json:"enabled"`
}

type PropValue struct {
	ID    uint32  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PROP_NOTIFY (server -> owning client)
type PropNotifyMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SceneTime       int64       `json:"scene_time"`
	Props           []PropValue `json:"props"`
}

// VEHICLE_STAMINA (server -> every observer of the scene)
type VehicleStaminaMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	SceneTime       int64   `json:"scene_time"`
	EntityID        uint32  `json:"entity_id"`
	CurStamina      float64 `json:"cur_stamina"`
}

// SAFE_RETURN (server -> owning client)
type SafeReturnMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	SceneTime       int64      `json:"scene_time"`
	EntityID        uint32     `json:"entity_id"`
	Reason          string     `json:"reason"`
	Pos             [3]float64 `json:"pos"`
	HP              float64    `json:"hp"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

func NewError(code, msg string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code, Message: msg}
}
