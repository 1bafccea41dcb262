package scene

const (
	AuditSet        = "SET"
	AuditGodMode    = "GOD_MODE"
	AuditSafeReturn = "SAFE_RETURN"
)

// AuditEntry records a stamina event. Kind is one of the Audit* constants or
// a stamina event kind (BURST, DROWN).
type AuditEntry struct {
	SceneID   string  `json:"scene_id" csv:"scene_id"`
	SceneTime int64   `json:"scene_time" csv:"scene_time"`
	Kind      string  `json:"kind" csv:"kind"`
	PlayerID  string  `json:"player_id" csv:"player_id"`
	EntityID  uint32  `json:"entity_id" csv:"entity_id"`
	Amount    float64 `json:"amount,omitempty" csv:"amount"`
	Cur       float64 `json:"cur,omitempty" csv:"cur"`
	Max       float64 `json:"max,omitempty" csv:"max"`
	Motion    string  `json:"motion,omitempty" csv:"motion"`
	Reason    string  `json:"reason,omitempty" csv:"reason"`
	Enabled   bool    `json:"enabled,omitempty" csv:"enabled"`
	Pos       Vec3    `json:"pos,omitempty" csv:"-"`
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

func (s *Scene) writeAudit(e AuditEntry) {
	e.SceneID = s.cfg.ID
	e.SceneTime = s.now
	for _, l := range s.audit {
		if err := l.WriteAudit(e); err != nil {
			s.log.Printf("audit %s: %v", e.Kind, err)
		}
	}
}
