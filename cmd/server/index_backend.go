package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"staminad.ai/internal/persistence/indexdb"
	"staminad.ai/internal/sim/scene"
	"staminad.ai/internal/sim/tuning"
)

type runtimeIndex interface {
	scene.AuditLogger
	Close() error
	RecordTuning(tune tuning.Tuning) error
	Stats() indexdb.Stats
}

func openRuntimeIndex(sceneDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STAMINAD_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(sceneDir, "index", "stamina.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported STAMINAD_INDEX_BACKEND: %s", backend)
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
