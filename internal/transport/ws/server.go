package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"staminad.ai/internal/protocol"
	"staminad.ai/internal/sim/scene"
)

const (
	defaultMaxQueue = 8
	maxMaxQueue     = 64
)

type Server struct {
	scene *scene.Scene
	log   *log.Logger

	maxQueue int
	upgrader websocket.Upgrader
}

// NewServer serves players of one scene. maxQueue is the outbound queue
// length used when HELLO does not ask for one.
func NewServer(sc *scene.Scene, maxQueue int, logger *log.Logger) *Server {
	if maxQueue <= 0 {
		maxQueue = defaultMaxQueue
	}
	s := &Server{
		scene:    sc,
		log:      logger,
		maxQueue: maxQueue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(r.Context(), conn)
		if playerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			req, err := DecodeRequest(msg)
			if err != nil {
				reply(out, protocol.NewError(protocol.ErrProtoBadRequest, err.Error()))
				continue
			}
			select {
			case s.scene.Inbox() <- scene.Envelope{PlayerID: playerID, Msg: req}:
			default:
				reply(out, protocol.NewError(protocol.ErrSceneBusy, "scene inbox full"))
			}
		}

		// Cleanup.
		s.scene.Leave() <- playerID
		if s.log != nil {
			s.log.Printf("ws disconnect player=%s", playerID)
		}
	}
}

// DecodeRequest turns one client frame into the scene request it carries.
func DecodeRequest(msg []byte) (any, error) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return nil, fmt.Errorf("bad json: %w", err)
	}
	if base.ProtocolVersion != protocol.Version {
		return nil, fmt.Errorf("bad protocol_version %q", base.ProtocolVersion)
	}
	switch base.Type {
	case protocol.TypeMotion:
		var m protocol.MotionMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return m, nil
	case protocol.TypeSpawnVehicle, protocol.TypeDestroyVehicle:
		var m protocol.VehicleReqMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return m, nil
	case protocol.TypeSetStamina:
		var m protocol.SetStaminaMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return m, nil
	case protocol.TypeGodMode:
		var m protocol.GodModeMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unexpected message type %q", base.Type)
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (playerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}

	out = make(chan []byte, clampQueue(hello.MaxQueue, s.maxQueue))
	respCh := make(chan scene.JoinResponse, 1)
	select {
	case s.scene.Join() <- scene.JoinRequest{Name: hello.PlayerName, Out: out, Resp: respCh}:
	case <-ctx.Done():
		return "", nil
	}

	var resp scene.JoinResponse
	select {
	case resp = <-respCh:
	case <-time.After(5 * time.Second):
		// A late join still needs a matching leave.
		go func() { s.scene.Leave() <- (<-respCh).Welcome.PlayerID }()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "scene busy"), time.Now().Add(time.Second))
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.scene.Leave() <- resp.Welcome.PlayerID
		return "", nil
	}
	return resp.Welcome.PlayerID, out
}

func clampQueue(asked, def int) int {
	if asked <= 0 {
		asked = def
	}
	if asked > maxMaxQueue {
		asked = maxMaxQueue
	}
	return asked
}

// reply queues a transport-level error without blocking the reader.
func reply(out chan []byte, msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
