package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "staminad.ai/internal/persistence/log"
	"staminad.ai/internal/sim/scene"
	"staminad.ai/internal/sim/tuning"
	"staminad.ai/internal/transport/observer"
	"staminad.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		sceneID    = flag.String("scene", "scene_1", "scene id")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite audit index")
		watch      = flag.Bool("watch_tuning", true, "reload tuning.yaml when it changes")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	sceneDir := filepath.Join(*dataDir, "scenes", *sceneID)
	_ = os.MkdirAll(sceneDir, 0o755)

	idx, err := openRuntimeIndex(sceneDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.RecordTuning(tune); err != nil {
			logger.Printf("index backend: record tuning: %v", err)
		}
	}

	sc, err := scene.New(scene.Config{ID: *sceneID, Tuning: tune}, log.New(os.Stdout, "[scene] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("scene: %v", err)
	}

	auditLog := persistlog.NewAuditLogger(*dataDir, *sceneID)
	defer auditLog.Close()
	if idx != nil {
		sc.SetAuditLoggers(auditLog, idx)
	} else {
		sc.SetAuditLoggers(auditLog)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if *watch {
		if err := watchTuning(ctx, tp, sc, idx, logger); err != nil {
			logger.Printf("tuning watch disabled: %v", err)
		}
	}

	go func() {
		if err := sc.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("scene stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		ctx2, cancel2 := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel2()
		st, err := sc.RequestState(ctx2)
		if err != nil {
			http.Error(rw, "scene unavailable", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, st, idx)
	})

	if envBool("STAMINAD_ENABLE_DEBUG_HTTP", defaultEnableDebugHTTP()) {
		obs := observer.NewServer(sc, logger)
		if idx != nil {
			obs.Extra = func() any { return idx.Stats() }
		}
		mux.HandleFunc("/debug/stamina", obs.StateHandler())
	} else {
		logger.Printf("debug endpoints disabled (STAMINAD_ENABLE_DEBUG_HTTP=false)")
	}
	if envBool("STAMINAD_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(sc, tune.Observers.MaxQueue, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s scene=%s", *addr, *sceneID)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// watchTuning forwards valid tuning reloads to the scene until ctx ends.
func watchTuning(ctx context.Context, path string, sc *scene.Scene, idx runtimeIndex, logger *log.Logger) error {
	w, err := tuning.Watch(path)
	if err != nil {
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-w.Updates:
				if idx != nil {
					if err := idx.RecordTuning(t); err != nil {
						logger.Printf("index backend: record tuning: %v", err)
					}
				}
				select {
				case sc.Tuning() <- t:
				case <-ctx.Done():
					return
				}
			case err := <-w.Errors:
				logger.Printf("tuning reload: %v", err)
			}
		}
	}()
	return nil
}

func writeMetrics(rw http.ResponseWriter, st scene.SceneState, idx runtimeIndex) {
	fmt.Fprintf(rw, "# HELP staminad_scene_time_ms Logical scene clock.\n")
	fmt.Fprintf(rw, "# TYPE staminad_scene_time_ms gauge\n")
	fmt.Fprintf(rw, "staminad_scene_time_ms{scene=%q} %d\n", st.SceneID, st.SceneTime)

	fmt.Fprintf(rw, "# HELP staminad_scene_players Connected players.\n")
	fmt.Fprintf(rw, "# TYPE staminad_scene_players gauge\n")
	fmt.Fprintf(rw, "staminad_scene_players{scene=%q} %d\n", st.SceneID, st.Players)

	var consuming, recovering int
	for _, e := range st.Entities {
		if e.Consuming {
			consuming++
		}
		if e.Recovering {
			recovering++
		}
	}
	fmt.Fprintf(rw, "# HELP staminad_stamina_entities Entities by stamina activity.\n")
	fmt.Fprintf(rw, "# TYPE staminad_stamina_entities gauge\n")
	fmt.Fprintf(rw, "staminad_stamina_entities{scene=%q,state=%q} %d\n", st.SceneID, "all", len(st.Entities))
	fmt.Fprintf(rw, "staminad_stamina_entities{scene=%q,state=%q} %d\n", st.SceneID, "consuming", consuming)
	fmt.Fprintf(rw, "staminad_stamina_entities{scene=%q,state=%q} %d\n", st.SceneID, "recovering", recovering)

	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP staminad_index_queue_depth Audit index queue depth.\n")
	fmt.Fprintf(rw, "# TYPE staminad_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "staminad_index_queue_depth %d\n", s.QueueDepth)
	fmt.Fprintf(rw, "# HELP staminad_index_dropped_total Audit entries dropped by the index.\n")
	fmt.Fprintf(rw, "# TYPE staminad_index_dropped_total counter\n")
	fmt.Fprintf(rw, "staminad_index_dropped_total %d\n", s.DropAuditTotal)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func defaultEnableDebugHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
