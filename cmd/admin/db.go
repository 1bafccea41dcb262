package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"staminad.ai/internal/persistence/indexdb"
)

func openIndex(dataDir, sceneID, dbPath string) *indexdb.SQLiteIndex {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		path = filepath.Join(dataDir, "scenes", sceneID, "index", "stamina.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return idx
}

// eventsCmd lists the newest drowning events from the sqlite index.
func eventsCmd(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	sceneID := fs.String("scene", "scene_1", "scene id")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	player := fs.String("player", "", "player id filter")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	idx := openIndex(*dataDir, *sceneID, *dbPath)
	defer idx.Close()

	recs, err := idx.DrownEvents(context.Background(), strings.TrimSpace(*player), *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range recs {
		printJSON(r)
	}
}

func countsCmd(args []string) {
	fs := flag.NewFlagSet("counts", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	sceneID := fs.String("scene", "scene_1", "scene id")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	_ = fs.Parse(args)

	idx := openIndex(*dataDir, *sceneID, *dbPath)
	defer idx.Close()

	counts, err := idx.CountByKind(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("%-12s %d\n", k, counts[k])
	}
}
