package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"staminad.ai/internal/sim/scene"
)

// StateSource is implemented by *scene.Scene.
type StateSource interface {
	RequestState(ctx context.Context) (scene.SceneState, error)
}

// Server exposes read-only debug views of a running scene to local tools.
type Server struct {
	scene StateSource
	log   *log.Logger

	// Extra is merged into the response under "extra" when set (e.g. index stats).
	Extra func() any
}

func NewServer(sc StateSource, logger *log.Logger) *Server {
	return &Server{scene: sc, log: logger}
}

type stateResponse struct {
	scene.SceneState
	Extra any `json:"extra,omitempty"`
}

func (s *Server) StateHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		st, err := s.scene.RequestState(ctx)
		if err != nil {
			if s.log != nil {
				s.log.Printf("debug state: %v", err)
			}
			http.Error(rw, "scene unavailable", http.StatusServiceUnavailable)
			return
		}
		resp := stateResponse{SceneState: st}
		if s.Extra != nil {
			resp.Extra = s.Extra()
		}

		if id := r.URL.Query().Get("player"); id != "" {
			kept := resp.Entities[:0]
			for _, e := range resp.Entities {
				if e.PlayerID == id {
					kept = append(kept, e)
				}
			}
			resp.Entities = kept
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
