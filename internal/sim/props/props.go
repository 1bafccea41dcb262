package props

import (
	"fmt"
	"sort"
)

// ID identifies a numeric player property.
type ID uint32

const (
	HP                  ID = 1010
	MaxHP               ID = 2000
	CurPersistStamina   ID = 10010
	CurTemporaryStamina ID = 10011
	MaxStamina          ID = 10048
)

var idNames = map[ID]string{
	HP:                  "PROP_HP",
	MaxHP:               "PROP_MAX_HP",
	CurPersistStamina:   "PROP_CUR_PERSIST_STAMINA",
	CurTemporaryStamina: "PROP_CUR_TEMPORARY_STAMINA",
	MaxStamina:          "PROP_MAX_STAMINA",
}

func (id ID) String() string {
	if n, ok := idNames[id]; ok {
		return n
	}
	return fmt.Sprintf("PROP_%d", uint32(id))
}

type Change struct {
	ID    ID
	Value float64
}

// NotifyFn delivers notified writes to the owning client.
type NotifyFn func(changes []Change) error

// Store holds the numeric properties of one player.
// It is not safe for concurrent use; callers serialise access on the scene loop.
type Store struct {
	values map[ID]float64
	notify NotifyFn
}

func NewStore(notify NotifyFn) *Store {
	return &Store{
		values: map[ID]float64{},
		notify: notify,
	}
}

func (s *Store) Get(id ID) float64 {
	if s == nil {
		return 0
	}
	return s.values[id]
}

// Seed stores initial values without notifying anyone.
func (s *Store) Seed(values ...Change) {
	for _, c := range values {
		s.values[c.ID] = c.Value
	}
}

// Set writes a value. With notify, the owning client is told about the change
// and a delivery failure is returned after the value has been stored.
func (s *Store) Set(id ID, v float64, notify bool) error {
	if s == nil {
		return fmt.Errorf("set %s: nil store", id)
	}
	s.values[id] = v
	if !notify || s.notify == nil {
		return nil
	}
	if err := s.notify([]Change{{ID: id, Value: v}}); err != nil {
		return fmt.Errorf("notify %s: %w", id, err)
	}
	return nil
}

// Snapshot returns all properties sorted by id.
func (s *Store) Snapshot() []Change {
	if s == nil {
		return nil
	}
	out := make([]Change, 0, len(s.values))
	for id, v := range s.values {
		out = append(out, Change{ID: id, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
