package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello          = "HELLO"
	TypeWelcome        = "WELCOME"
	TypeMotion         = "MOTION"
	TypeSpawnVehicle   = "SPAWN_VEHICLE"
	TypeDestroyVehicle = "DESTROY_VEHICLE"
	TypeVehicle        = "VEHICLE"
	TypeSetStamina     = "SET_STAMINA"
	TypeGodMode        = "GOD_MODE"
	TypePropNotify     = "PROP_NOTIFY"
	TypeVehicleStamina = "VEHICLE_STAMINA"
	TypeSafeReturn     = "SAFE_RETURN"
	TypeError          = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
