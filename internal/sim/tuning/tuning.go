package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	Stamina   Stamina   `yaml:"stamina"`
	Drown     Drown     `yaml:"drown"`
	Observers Observers `yaml:"observers"`
}

type Stamina struct {
	// IntervalMs is the accounting interval; consume rates are per interval.
	IntervalMs         int64   `yaml:"interval_ms"`
	RecoverPerInterval float64 `yaml:"recover_per_interval"`
	OnsetDelayMs       int64   `yaml:"onset_delay_ms"`
	DefaultMax         float64 `yaml:"default_max"`
}

type Drown struct {
	HPLossPermille int `yaml:"hp_loss_permille"`
}

type Observers struct {
	MaxQueue int `yaml:"max_queue"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      20,
		Stamina: Stamina{
			IntervalMs:         200,
			RecoverPerInterval: 500,
			OnsetDelayMs:       1000,
			DefaultMax:         10000,
		},
		Drown:     Drown{HPLossPermille: 100},
		Observers: Observers{MaxQueue: 8},
	}
}

// Load overlays the yaml file at path on Defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0, got %d", t.TickRateHz)
	}
	if t.Stamina.IntervalMs <= 0 {
		return fmt.Errorf("stamina.interval_ms must be > 0, got %d", t.Stamina.IntervalMs)
	}
	if t.Stamina.RecoverPerInterval < 0 {
		return fmt.Errorf("stamina.recover_per_interval must be >= 0")
	}
	if t.Stamina.OnsetDelayMs < 0 {
		return fmt.Errorf("stamina.onset_delay_ms must be >= 0")
	}
	if t.Stamina.DefaultMax <= 0 {
		return fmt.Errorf("stamina.default_max must be > 0")
	}
	if t.Drown.HPLossPermille < 0 || t.Drown.HPLossPermille > 1000 {
		return fmt.Errorf("drown.hp_loss_permille must be in [0,1000], got %d", t.Drown.HPLossPermille)
	}
	return nil
}
