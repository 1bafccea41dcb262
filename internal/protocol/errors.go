package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Scene routing/state.
	ErrSceneBusy     = "E_SCENE_BUSY"
	ErrUnknownEntity = "E_UNKNOWN_ENTITY"

	// Request layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrNoPermission = "E_NO_PERMISSION"
	ErrConflict     = "E_CONFLICT"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrSceneBusy:       {},
	ErrUnknownEntity:   {},
	ErrBadRequest:      {},
	ErrNoPermission:    {},
	ErrConflict:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
