package tuning

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Stamina.IntervalMs != 200 || d.Stamina.RecoverPerInterval != 500 || d.Stamina.OnsetDelayMs != 1000 {
		t.Fatalf("unexpected stamina defaults: %+v", d.Stamina)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("stamina:\n  default_max: 2400\ntick_rate_hz: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Stamina.DefaultMax != 2400 || got.TickRateHz != 10 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Stamina.IntervalMs != 200 || got.Drown.HPLossPermille != 100 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("stamina:\n  interval_ms: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(p, []byte("tick_rate_hz: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Watch(p)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(p, []byte("tick_rate_hz: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-w.Updates:
			if got.TickRateHz == 7 {
				return
			}
		case err := <-w.Errors:
			t.Fatalf("watch error: %v", err)
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}
}
