package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	persistlog "staminad.ai/internal/persistence/log"
	"staminad.ai/internal/sim/scene"
)

// exportCmd writes audit entries as CSV for spreadsheet balancing work.
func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	sceneID := fs.String("scene", "scene_1", "scene id")
	kind := fs.String("kind", "", "only entries of this kind")
	player := fs.String("player", "", "only entries of this player")
	outPath := fs.String("out", "", "output csv path (default stdout)")
	appendOut := fs.Bool("append", false, "append to -out without a header row")
	_ = fs.Parse(args)

	recs, err := readAudit(persistlog.AuditDir(*dataDir, *sceneID), *kind, *player)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	header := true
	if *outPath != "" {
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if *appendOut {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			if st, err := os.Stat(*outPath); err == nil && st.Size() > 0 {
				header = false
			}
		}
		f, err := os.OpenFile(*outPath, flags, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := writeCSV(w, recs, header); err != nil {
		fmt.Fprintln(os.Stderr, "write csv:", err)
		os.Exit(1)
	}
}

func writeCSV(w io.Writer, recs []scene.AuditEntry, header bool) error {
	if len(recs) == 0 {
		return nil
	}
	if header {
		return gocsv.Marshal(recs, w)
	}
	return gocsv.MarshalWithoutHeaders(recs, w)
}
