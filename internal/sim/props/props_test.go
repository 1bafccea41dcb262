package props

import (
	"errors"
	"testing"
)

func TestStore_SetNotify(t *testing.T) {
	var got []Change
	s := NewStore(func(changes []Change) error {
		got = append(got, changes...)
		return nil
	})

	if err := s.Set(CurTemporaryStamina, 5, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no notification, got %v", got)
	}
	if err := s.Set(CurPersistStamina, 42, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(got) != 1 || got[0].ID != CurPersistStamina || got[0].Value != 42 {
		t.Fatalf("unexpected notifications: %v", got)
	}
	if s.Get(CurPersistStamina) != 42 || s.Get(CurTemporaryStamina) != 5 {
		t.Fatalf("values not stored")
	}
}

func TestStore_NotifyErrorKeepsValue(t *testing.T) {
	boom := errors.New("client gone")
	s := NewStore(func([]Change) error { return boom })
	err := s.Set(HP, 3, true)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped notify error, got %v", err)
	}
	if s.Get(HP) != 3 {
		t.Fatalf("value should be stored even when notify fails")
	}
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore(nil)
	_ = s.Set(MaxStamina, 10000, false)
	_ = s.Set(HP, 20, false)
	snap := s.Snapshot()
	if len(snap) != 2 || snap[0].ID != HP || snap[1].ID != MaxStamina {
		t.Fatalf("unexpected snapshot order: %v", snap)
	}
	if MaxStamina.String() != "PROP_MAX_STAMINA" || ID(7).String() != "PROP_7" {
		t.Fatalf("unexpected names")
	}
}

func TestStore_SeedDoesNotNotify(t *testing.T) {
	calls := 0
	s := NewStore(func([]Change) error {
		calls++
		return errors.New("client gone")
	})
	s.Seed(Change{ID: MaxStamina, Value: 10000}, Change{ID: CurPersistStamina, Value: 10000})
	if calls != 0 {
		t.Fatalf("seed notified %d times", calls)
	}
	snap := s.Snapshot()
	if len(snap) != 2 || snap[0].ID != CurPersistStamina || snap[1].Value != 10000 {
		t.Fatalf("snapshot=%v", snap)
	}
}
