package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "staminad.ai/internal/persistence/log"
	"staminad.ai/internal/sim/scene"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "export":
			exportCmd(os.Args[2:])
			return
		case "events":
			eventsCmd(os.Args[2:])
			return
		case "counts":
			countsCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "scenes"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Println(e.Name())
		}
	}
}

// auditCmd prints decoded audit entries as JSON lines.
func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	sceneID := fs.String("scene", "scene_1", "scene id")
	kind := fs.String("kind", "", "only entries of this kind (e.g. DROWN)")
	player := fs.String("player", "", "only entries of this player")
	_ = fs.Parse(args)

	recs, err := readAudit(persistlog.AuditDir(*dataDir, *sceneID), *kind, *player)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}
	for _, r := range recs {
		printJSON(r)
	}
}

func readAudit(dir, kind, player string) ([]scene.AuditEntry, error) {
	kind = strings.ToUpper(strings.TrimSpace(kind))
	player = strings.TrimSpace(player)
	var out []scene.AuditEntry
	err := persistlog.ReadAudit(dir, func(e scene.AuditEntry) error {
		if kind != "" && e.Kind != kind {
			return nil
		}
		if player != "" && e.PlayerID != player {
			return nil
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func printJSON(v any) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}
